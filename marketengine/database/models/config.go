package models

import (
	"time"

	"github.com/uptrace/bun"
)

// MarketConfig is the singleton configuration row the trade engines read.
// It is only written by administrative actions.
type MarketConfig struct {
	bun.BaseModel `bun:"table:market_config,alias:cfg"`

	ID      int64  `bun:"id,pk"`
	Version string `bun:"version,notnull"`

	MinimumBidIncrease   float64 `bun:"minimum_bid_increase,notnull"`
	MinAuctionDuration   int64   `bun:"min_auction_duration,notnull"` // seconds
	MaxAuctionDuration   int64   `bun:"max_auction_duration,notnull"` // seconds
	AuctionResetDuration int64   `bun:"auction_reset_duration,notnull"`

	MakerMarketFee float64 `bun:"maker_market_fee,notnull"`
	TakerMarketFee float64 `bun:"taker_market_fee,notnull"`

	AssetRegistryAccount string `bun:"asset_registry_account,notnull"`
	PriceFeedAccount     string `bun:"price_feed_account,notnull"`
	DefaultMarketCreator string `bun:"default_market_creator,notnull"`

	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// SupportedToken is a fungible token the engine accepts for deposits,
// settlement and bids. Symbol codes are unique across contracts.
type SupportedToken struct {
	bun.BaseModel `bun:"table:supported_tokens,alias:tok"`

	Code      string `bun:"code,pk"`
	Contract  string `bun:"contract,notnull"`
	Precision uint8  `bun:"precision,notnull"`
}

// SymbolPair binds a price-feed pair to a (listing symbol, settlement
// symbol) combination. Symbols are stored in "precision,CODE" notation.
// With Invert false the published median multiplies the listing amount,
// with Invert true it divides it.
type SymbolPair struct {
	bun.BaseModel `bun:"table:symbol_pairs,alias:sp"`

	ID               int64  `bun:"id,pk,autoincrement"`
	PairName         string `bun:"pair_name,notnull"`
	Invert           bool   `bun:"invert,notnull"`
	ListingSymbol    string `bun:"listing_symbol,notnull"`
	SettlementSymbol string `bun:"settlement_symbol,notnull"`
}

// Counter is a named monotonic id source. Values strictly increase and are
// never reused, including across cancellations.
type Counter struct {
	bun.BaseModel `bun:"table:counters,alias:cnt"`

	Name  string `bun:"name,pk"`
	Value int64  `bun:"value,notnull"`
}

// Counter names used by the engines.
const (
	CounterSale     = "sale"
	CounterAuction  = "auction"
	CounterBuyoffer = "buyoffer"
)
