package models

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/waxlabs/marketengine/marketengine/market"
)

// Auction is a time-boxed English auction. CurrentBid starts out as the
// minimum bid; CurrentBidder is empty until the first bid lands. The row is
// deleted once both parties have claimed.
type Auction struct {
	bun.BaseModel `bun:"table:auctions,alias:a"`

	AuctionID int64   `bun:"auction_id,pk"`
	Seller    string  `bun:"seller,notnull"`
	AssetIDs  []int64 `bun:"asset_ids,array,notnull"`

	EndTime           time.Time `bun:"end_time,notnull"`
	AssetsTransferred bool      `bun:"assets_transferred,notnull"`

	BidAmount     int64  `bun:"bid_amount,notnull"`
	BidSymbol     string `bun:"bid_symbol,notnull"` // "precision,CODE"
	CurrentBidder string `bun:"current_bidder,notnull,default:''"`

	ClaimedBySeller bool `bun:"claimed_by_seller,notnull"`
	ClaimedByBuyer  bool `bun:"claimed_by_buyer,notnull"`

	TakerMarketplace string `bun:"taker_marketplace,notnull,default:''"`
	ListingFees

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// CurrentBid returns the highest bid (or the starting bid when no bid has
// been placed yet) as an asset value.
func (a *Auction) CurrentBid() market.Asset {
	return market.NewAsset(a.BidAmount, market.MustSymbol(a.BidSymbol))
}

// HasBids reports whether at least one bid has been placed.
func (a *Auction) HasBids() bool {
	return a.CurrentBidder != ""
}

// Finished reports whether the auction has passed its end time.
func (a *Auction) Finished(now time.Time) bool {
	return !now.Before(a.EndTime)
}
