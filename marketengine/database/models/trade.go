package models

import (
	"time"

	"github.com/uptrace/bun"
)

type TradeKind string

const (
	TradeKindSale     TradeKind = "sale"
	TradeKindAuction  TradeKind = "auction"
	TradeKindBuyoffer TradeKind = "buyoffer"
)

// TradeRecord is written once per completed trade and feeds the archive
// exporter. It is append-only history, never read back by the engines.
type TradeRecord struct {
	bun.BaseModel `bun:"table:trade_records,alias:tr"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Kind      TradeKind `bun:"kind,notnull"`
	ListingID int64     `bun:"listing_id,notnull"`
	Seller    string    `bun:"seller,notnull"`
	Buyer     string    `bun:"buyer,notnull"`
	AssetIDs  []int64   `bun:"asset_ids,array,notnull"`

	GrossAmount    int64  `bun:"gross_amount,notnull"`
	Symbol         string `bun:"symbol,notnull"` // "precision,CODE"
	CollectionName string `bun:"collection_name,notnull"`

	CompletedAt time.Time `bun:"completed_at,notnull"`
}
