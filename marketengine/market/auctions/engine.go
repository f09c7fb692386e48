// Package auctions implements English auctions. An auction becomes active
// once the seller transfers the assets into engine custody; bids escrow the
// bidder's tokens and refund the previous bidder; after the end time both
// sides claim independently and the row is removed once both have.
package auctions

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/waxlabs/marketengine/marketengine/assetregistry"
	"github.com/waxlabs/marketengine/marketengine/database/models"
	"github.com/waxlabs/marketengine/marketengine/database/repositories"
	"github.com/waxlabs/marketengine/marketengine/market"
	"github.com/waxlabs/marketengine/marketengine/market/escrow"
	"github.com/waxlabs/marketengine/marketengine/market/fees"
	"github.com/waxlabs/marketengine/marketengine/market/marketplaces"
)

type Engine struct {
	auctions repositories.AuctionRepository
	counters repositories.CounterRepository
	config   repositories.ConfigRepository
	trades   repositories.TradeRepository

	registry     assetregistry.Client
	escrow       *escrow.Ledger
	fees         *fees.Distributor
	marketplaces *marketplaces.Registry

	now func() time.Time
}

func NewEngine(
	auctions repositories.AuctionRepository,
	counters repositories.CounterRepository,
	config repositories.ConfigRepository,
	trades repositories.TradeRepository,
	registry assetregistry.Client,
	esc *escrow.Ledger,
	dist *fees.Distributor,
	mkts *marketplaces.Registry,
	now func() time.Time,
) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{
		auctions:     auctions,
		counters:     counters,
		config:       config,
		trades:       trades,
		registry:     registry,
		escrow:       esc,
		fees:         dist,
		marketplaces: mkts,
		now:          now,
	}
}

// Announce creates an auction ending at now+duration. It stays inactive
// until the seller transfers the assets into engine custody.
func (e *Engine) Announce(ctx context.Context, seller string, assetIDs []int64, startingBid market.Asset, duration time.Duration, makerMarketplace string) (int64, error) {
	if err := market.ValidateAssetIDs(assetIDs); err != nil {
		return 0, err
	}
	if !startingBid.IsPositive() {
		return 0, market.ErrValidation("The starting bid must be greater than zero")
	}

	cfg, err := e.config.Get(ctx)
	if err != nil {
		return 0, err
	}
	if cfg == nil {
		return 0, market.ErrInvariant("engine configuration has not been initialized")
	}
	if duration < time.Duration(cfg.MinAuctionDuration)*time.Second {
		return 0, market.ErrValidation("The specified duration is shorter than the minimum auction duration")
	}
	if duration > time.Duration(cfg.MaxAuctionDuration)*time.Second {
		return 0, market.ErrValidation("The specified duration is longer than the maximum auction duration")
	}

	tok, err := e.config.SupportedToken(ctx, startingBid.Symbol.Code)
	if err != nil {
		return 0, err
	}
	if tok == nil || tok.Precision != startingBid.Symbol.Precision {
		return 0, market.ErrValidation("The specified starting bid token is not supported")
	}

	ok, err := e.marketplaces.Exists(ctx, makerMarketplace)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, market.ErrValidation("The maker marketplace is not a valid marketplace")
	}

	collectionName, err := e.checkAssets(ctx, seller, assetIDs)
	if err != nil {
		return 0, err
	}

	open, err := e.auctions.GetBySeller(ctx, seller)
	if err != nil {
		return 0, err
	}
	for _, a := range open {
		if market.SameAssetSet(a.AssetIDs, assetIDs) {
			return 0, market.ErrPrecondition("You have already announced an auction for these assets")
		}
	}

	collection, err := e.registry.Collection(ctx, collectionName)
	if err != nil {
		return 0, err
	}

	auctionID, err := e.counters.Next(ctx, models.CounterAuction)
	if err != nil {
		return 0, err
	}
	auction := &models.Auction{
		AuctionID: auctionID,
		Seller:    seller,
		AssetIDs:  assetIDs,
		EndTime:   e.now().Add(duration),
		BidAmount: startingBid.Amount,
		BidSymbol: startingBid.Symbol.String(),
		ListingFees: models.ListingFees{
			MakerMarketplace: makerMarketplace,
			CollectionName:   collectionName,
			CollectionFee:    collection.Fee,
		},
		CreatedAt: e.now(),
	}
	if err := e.auctions.Create(ctx, auction); err != nil {
		return 0, err
	}
	slog.Info("auction announced",
		slog.Int64("auction_id", auctionID),
		slog.String("seller", seller),
		slog.String("starting_bid", startingBid.String()),
		slog.Time("end_time", auction.EndTime))
	return auctionID, nil
}

// HandleAssetTransfer activates the sender's announced auction whose asset
// set exactly matches the transferred assets. Transfers that match no open,
// non-finished auction are rejected so assets never arrive unaccounted for.
func (e *Engine) HandleAssetTransfer(ctx context.Context, sender string, assetIDs []int64) error {
	open, err := e.auctions.GetBySeller(ctx, sender)
	if err != nil {
		return err
	}
	now := e.now()
	for _, a := range open {
		if a.AssetsTransferred || a.Finished(now) {
			continue
		}
		if !market.SameAssetSet(a.AssetIDs, assetIDs) {
			continue
		}
		a.AssetsTransferred = true
		if err := e.auctions.Update(ctx, a); err != nil {
			return err
		}
		slog.Info("auction activated", slog.Int64("auction_id", a.AuctionID))
		return nil
	}
	return market.ErrPrecondition("No announced, non-finished auction by the sender for these assets exists")
}

// Bid escrows the bidder's tokens and refunds the previous bidder in full.
// A bid close to the end time pushes the end time out to now plus the
// configured reset duration.
func (e *Engine) Bid(ctx context.Context, bidder string, auctionID int64, bid market.Asset, takerMarketplace string) error {
	auction, err := e.auctions.Get(ctx, auctionID)
	if err != nil {
		return err
	}
	if auction == nil {
		return market.ErrNotFound("auction", auctionID)
	}
	if bidder == auction.Seller {
		return market.ErrValidation("You can't bid on your own auction")
	}
	if !auction.AssetsTransferred {
		return market.ErrPrecondition("The auction is not yet active.")
	}
	now := e.now()
	if auction.Finished(now) {
		return market.ErrPrecondition("The auction is already finished")
	}

	currentBid := auction.CurrentBid()
	if bid.Symbol != currentBid.Symbol {
		return market.ErrValidation("The bid uses a different symbol than the current auction bid")
	}

	cfg, err := e.config.Get(ctx)
	if err != nil {
		return err
	}
	if cfg == nil {
		return market.ErrInvariant("engine configuration has not been initialized")
	}

	if !auction.HasBids() {
		if bid.Amount < currentBid.Amount {
			return market.ErrPrecondition("The bid must be at least as high as the minimum bid")
		}
	} else {
		minimum := currentBid.Decimal().
			Mul(decimal.NewFromFloat(1).Add(decimal.NewFromFloat(cfg.MinimumBidIncrease)))
		if bid.Decimal().LessThan(minimum) {
			return market.ErrPrecondition("The relative increase is less than the minimum bid increase specified in the config")
		}
	}

	ok, err := e.marketplaces.Exists(ctx, takerMarketplace)
	if err != nil {
		return err
	}
	if !ok {
		return market.ErrValidation("The taker marketplace is not a valid marketplace")
	}

	// The previous bidder is refunded before the new bid is debited, so a
	// bidder raising their own bid only needs the increment escrowed.
	required := bid
	if auction.HasBids() && bidder == auction.CurrentBidder {
		required = market.Asset{Symbol: bid.Symbol, Amount: bid.Amount - currentBid.Amount}
	}
	if err := e.escrow.CheckBalance(ctx, bidder, required); err != nil {
		return err
	}

	if auction.HasBids() {
		if err := e.escrow.Credit(ctx, auction.CurrentBidder, currentBid); err != nil {
			return err
		}
	}
	if err := e.escrow.Debit(ctx, bidder, bid); err != nil {
		return err
	}

	auction.BidAmount = bid.Amount
	auction.CurrentBidder = bidder
	auction.TakerMarketplace = takerMarketplace
	if reset := time.Duration(cfg.AuctionResetDuration) * time.Second; auction.EndTime.Sub(now) < reset {
		auction.EndTime = now.Add(reset)
	}
	if err := e.auctions.Update(ctx, auction); err != nil {
		return err
	}
	slog.Info("auction bid placed",
		slog.Int64("auction_id", auctionID),
		slog.String("bidder", bidder),
		slog.String("bid", bid.String()))
	return nil
}

// ClaimSeller distributes the winning bid. The seller's remainder stays in
// escrow for withdrawal.
func (e *Engine) ClaimSeller(ctx context.Context, actor string, auctionID int64) error {
	auction, err := e.claimable(ctx, auctionID)
	if err != nil {
		return err
	}
	if actor != auction.Seller {
		return market.ErrAuth(auction.Seller)
	}
	if auction.ClaimedBySeller {
		return market.ErrPrecondition("The auction has already been claimed by the seller")
	}

	if _, err := e.fees.Distribute(ctx, auction.CurrentBid(), auction.CollectionName, auction.CollectionFee, auction.MakerMarketplace, auction.TakerMarketplace, auction.Seller); err != nil {
		return err
	}
	if err := e.trades.Create(ctx, &models.TradeRecord{
		Kind:           models.TradeKindAuction,
		ListingID:      auctionID,
		Seller:         auction.Seller,
		Buyer:          auction.CurrentBidder,
		AssetIDs:       auction.AssetIDs,
		GrossAmount:    auction.BidAmount,
		Symbol:         auction.BidSymbol,
		CollectionName: auction.CollectionName,
		CompletedAt:    e.now(),
	}); err != nil {
		return err
	}

	auction.ClaimedBySeller = true
	if err := e.finishClaim(ctx, auction); err != nil {
		return err
	}
	slog.Info("auction claimed by seller", slog.Int64("auction_id", auctionID))
	return nil
}

// ClaimBuyer transfers the auctioned assets to the winning bidder.
func (e *Engine) ClaimBuyer(ctx context.Context, actor string, auctionID int64) error {
	auction, err := e.claimable(ctx, auctionID)
	if err != nil {
		return err
	}
	if actor != auction.CurrentBidder {
		return market.ErrAuth(auction.CurrentBidder)
	}
	if auction.ClaimedByBuyer {
		return market.ErrPrecondition("The auction has already been claimed by the buyer")
	}

	if err := e.registry.TransferAssets(ctx, auction.CurrentBidder, auction.AssetIDs, "You won an auction!"); err != nil {
		return err
	}

	auction.ClaimedByBuyer = true
	if err := e.finishClaim(ctx, auction); err != nil {
		return err
	}
	slog.Info("auction claimed by buyer", slog.Int64("auction_id", auctionID))
	return nil
}

func (e *Engine) claimable(ctx context.Context, auctionID int64) (*models.Auction, error) {
	auction, err := e.auctions.Get(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if auction == nil {
		return nil, market.ErrNotFound("auction", auctionID)
	}
	if !auction.AssetsTransferred {
		return nil, market.ErrPrecondition("The auction is not active")
	}
	if !auction.Finished(e.now()) {
		return nil, market.ErrPrecondition("The auction is not finished yet")
	}
	if !auction.HasBids() {
		return nil, market.ErrPrecondition("The auction does not have any bids")
	}
	return auction, nil
}

func (e *Engine) finishClaim(ctx context.Context, auction *models.Auction) error {
	if auction.ClaimedBySeller && auction.ClaimedByBuyer {
		return e.auctions.Delete(ctx, auction.AuctionID)
	}
	return e.auctions.Update(ctx, auction)
}

func (e *Engine) checkAssets(ctx context.Context, owner string, assetIDs []int64) (string, error) {
	var collectionName string
	for _, id := range assetIDs {
		asset, err := e.registry.Asset(ctx, id)
		if err != nil {
			return "", err
		}
		if asset.Owner != owner {
			return "", market.ErrPrecondition("You do not own at least one of the assets")
		}
		if !asset.Transferable {
			return "", market.ErrPrecondition("At least one of the assets is not transferable")
		}
		if collectionName == "" {
			collectionName = asset.CollectionName
		} else if asset.CollectionName != collectionName {
			return "", market.ErrValidation("You can only list multiple assets from the same collection")
		}
	}
	return collectionName, nil
}
