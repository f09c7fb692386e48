package models

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/waxlabs/marketengine/marketengine/market"
)

// Buyoffer is a negotiated purchase offer. The buyer's price is escrowed at
// creation and resolved on accept, cancel or decline.
type Buyoffer struct {
	bun.BaseModel `bun:"table:buyoffers,alias:bo"`

	BuyofferID int64   `bun:"buyoffer_id,pk"`
	Buyer      string  `bun:"buyer,notnull"`
	Recipient  string  `bun:"recipient,notnull"`
	AssetIDs   []int64 `bun:"asset_ids,array,notnull"`

	PriceAmount int64  `bun:"price_amount,notnull"`
	PriceSymbol string `bun:"price_symbol,notnull"` // "precision,CODE"
	Memo        string `bun:"memo,notnull,default:''"`

	ListingFees

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// Price returns the escrowed offer price as an asset value.
func (b *Buyoffer) Price() market.Asset {
	return market.NewAsset(b.PriceAmount, market.MustSymbol(b.PriceSymbol))
}
