package models

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/waxlabs/marketengine/marketengine/market"
)

// UnboundOffer marks a sale whose custody transfer-offer has not been
// observed yet. Such a sale cannot be purchased.
const UnboundOffer = -1

// Sale is a direct listing at a fixed price. The listing price may use a
// non-settlement currency when a symbol pair is registered for it.
type Sale struct {
	bun.BaseModel `bun:"table:sales,alias:s"`

	SaleID   int64   `bun:"sale_id,pk"`
	Seller   string  `bun:"seller,notnull"`
	AssetIDs []int64 `bun:"asset_ids,array,notnull"`

	// OfferID is the custody transfer-offer bound to this sale, or
	// UnboundOffer until the registry notification arrives.
	OfferID int64 `bun:"offer_id,notnull"`

	ListingAmount    int64  `bun:"listing_amount,notnull"`
	ListingSymbol    string `bun:"listing_symbol,notnull"`    // "precision,CODE"
	SettlementSymbol string `bun:"settlement_symbol,notnull"` // "precision,CODE"

	ListingFees

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// ListingPrice returns the announced price as an asset value.
func (s *Sale) ListingPrice() market.Asset {
	return market.NewAsset(s.ListingAmount, market.MustSymbol(s.ListingSymbol))
}
