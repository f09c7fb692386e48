// Package buyoffers implements negotiated purchase offers. The buyer's
// price is escrowed at creation; the recipient accepts by staging a custody
// transfer-offer carrying the memo "buyoffer", or declines and the buyer is
// refunded.
package buyoffers

import (
	"context"
	"log/slog"
	"time"

	"github.com/waxlabs/marketengine/marketengine/assetregistry"
	"github.com/waxlabs/marketengine/marketengine/database/models"
	"github.com/waxlabs/marketengine/marketengine/database/repositories"
	"github.com/waxlabs/marketengine/marketengine/market"
	"github.com/waxlabs/marketengine/marketengine/market/escrow"
	"github.com/waxlabs/marketengine/marketengine/market/fees"
	"github.com/waxlabs/marketengine/marketengine/market/marketplaces"
)

// MaxMemoLength bounds buyoffer and decline memos.
const MaxMemoLength = 256

type Engine struct {
	engineAccount string

	buyoffers repositories.BuyofferRepository
	counters  repositories.CounterRepository
	config    repositories.ConfigRepository
	trades    repositories.TradeRepository

	registry     assetregistry.Client
	escrow       *escrow.Ledger
	fees         *fees.Distributor
	marketplaces *marketplaces.Registry

	now func() time.Time
}

func NewEngine(
	engineAccount string,
	buyoffers repositories.BuyofferRepository,
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
		engineAccount: engineAccount,
		buyoffers:     buyoffers,
		counters:      counters,
		config:        config,
		trades:        trades,
		registry:      registry,
		escrow:        esc,
		fees:          dist,
		marketplaces:  mkts,
		now:           now,
	}
}

// Create escrows the buyer's price and records the offer.
func (e *Engine) Create(ctx context.Context, buyer, recipient string, price market.Asset, assetIDs []int64, memo, makerMarketplace string) (int64, error) {
	if buyer == recipient {
		return 0, market.ErrValidation("buyer and recipient can't be the same account")
	}
	if err := market.ValidateAssetIDs(assetIDs); err != nil {
		return 0, err
	}
	if len(memo) > MaxMemoLength {
		return 0, market.ErrValidation("A buyoffer memo can only be 256 characters max")
	}
	if !price.IsPositive() {
		return 0, market.ErrValidation("The price must be greater than zero")
	}

	tok, err := e.config.SupportedToken(ctx, price.Symbol.Code)
	if err != nil {
		return 0, err
	}
	if tok == nil || tok.Precision != price.Symbol.Precision {
		return 0, market.ErrValidation("The symbol of the specified price is not supported")
	}

	ok, err := e.marketplaces.Exists(ctx, makerMarketplace)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, market.ErrValidation("The maker marketplace is not a valid marketplace")
	}

	var collectionName string
	for _, id := range assetIDs {
		asset, err := e.registry.Asset(ctx, id)
		if err != nil {
			return 0, err
		}
		if asset.Owner != recipient {
			return 0, market.ErrPrecondition("The specified account does not own at least one of the assets")
		}
		if !asset.Transferable {
			return 0, market.ErrPrecondition("At least one of the assets is not transferable")
		}
		if collectionName == "" {
			collectionName = asset.CollectionName
		} else if asset.CollectionName != collectionName {
			return 0, market.ErrValidation("The specified asset ids must all belong to the same collection")
		}
	}

	collection, err := e.registry.Collection(ctx, collectionName)
	if err != nil {
		return 0, err
	}

	if err := e.escrow.Debit(ctx, buyer, price); err != nil {
		return 0, err
	}
	buyofferID, err := e.counters.Next(ctx, models.CounterBuyoffer)
	if err != nil {
		return 0, err
	}
	buyoffer := &models.Buyoffer{
		BuyofferID:  buyofferID,
		Buyer:       buyer,
		Recipient:   recipient,
		AssetIDs:    assetIDs,
		PriceAmount: price.Amount,
		PriceSymbol: price.Symbol.String(),
		Memo:        memo,
		ListingFees: models.ListingFees{
			MakerMarketplace: makerMarketplace,
			CollectionName:   collectionName,
			CollectionFee:    collection.Fee,
		},
		CreatedAt: e.now(),
	}
	if err := e.buyoffers.Create(ctx, buyoffer); err != nil {
		return 0, err
	}
	slog.Info("buyoffer created",
		slog.Int64("buyoffer_id", buyofferID),
		slog.String("buyer", buyer),
		slog.String("recipient", recipient),
		slog.String("price", price.String()))
	return buyofferID, nil
}

// Cancel refunds the buyer and removes the offer. Buyer only.
func (e *Engine) Cancel(ctx context.Context, actor string, buyofferID int64) error {
	buyoffer, err := e.buyoffers.Get(ctx, buyofferID)
	if err != nil {
		return err
	}
	if buyoffer == nil {
		return market.ErrNotFound("buyoffer", buyofferID)
	}
	if actor != buyoffer.Buyer {
		return market.ErrAuth(buyoffer.Buyer)
	}
	if err := e.escrow.Credit(ctx, buyoffer.Buyer, buyoffer.Price()); err != nil {
		return err
	}
	if err := e.buyoffers.Delete(ctx, buyofferID); err != nil {
		return err
	}
	slog.Info("buyoffer cancelled", slog.Int64("buyoffer_id", buyofferID))
	return nil
}

// Decline refunds the buyer and removes the offer. Recipient only.
func (e *Engine) Decline(ctx context.Context, actor string, buyofferID int64, declineMemo string) error {
	buyoffer, err := e.buyoffers.Get(ctx, buyofferID)
	if err != nil {
		return err
	}
	if buyoffer == nil {
		return market.ErrNotFound("buyoffer", buyofferID)
	}
	if actor != buyoffer.Recipient {
		return market.ErrAuth(buyoffer.Recipient)
	}
	if len(declineMemo) > MaxMemoLength {
		return market.ErrValidation("A decline memo can only be 256 characters max")
	}
	if err := e.escrow.Credit(ctx, buyoffer.Buyer, buyoffer.Price()); err != nil {
		return err
	}
	if err := e.buyoffers.Delete(ctx, buyofferID); err != nil {
		return err
	}
	slog.Info("buyoffer declined", slog.Int64("buyoffer_id", buyofferID))
	return nil
}

// Accept settles the offer. The recipient restates the asset set and price
// they are agreeing to, so a concurrent change to the offer cannot be
// sprung on them, and must have staged a custody transfer-offer for exactly
// the offer's assets with memo "buyoffer".
func (e *Engine) Accept(ctx context.Context, actor string, buyofferID int64, expectedAssetIDs []int64, expectedPrice market.Asset, takerMarketplace string) error {
	buyoffer, err := e.buyoffers.Get(ctx, buyofferID)
	if err != nil {
		return err
	}
	if buyoffer == nil {
		return market.ErrNotFound("buyoffer", buyofferID)
	}
	if actor != buyoffer.Recipient {
		return market.ErrAuth(buyoffer.Recipient)
	}
	if !market.SameAssetSet(expectedAssetIDs, buyoffer.AssetIDs) {
		return market.ErrValidation("The asset ids of this buyoffer differ from the expected asset ids")
	}
	price := buyoffer.Price()
	if expectedPrice != price {
		return market.ErrValidation("The price of this buyoffer differ from the expected price")
	}
	ok, err := e.marketplaces.Exists(ctx, takerMarketplace)
	if err != nil {
		return err
	}
	if !ok {
		return market.ErrValidation("The taker marketplace is not a valid marketplace")
	}

	offer, err := e.registry.LastOffer(ctx)
	if err != nil {
		return err
	}
	if offer == nil || offer.Sender != buyoffer.Recipient || offer.Recipient != e.engineAccount {
		return market.ErrPrecondition("The last created custody offer must be from the buyoffer recipient to the market engine")
	}
	if !market.SameAssetSet(offer.SenderAssetIDs, buyoffer.AssetIDs) {
		return market.ErrPrecondition("The last created custody offer must contain the assets of the buyoffer")
	}
	if len(offer.RecipientAssetIDs) > 0 {
		return market.ErrPrecondition("The last created custody offer must not ask for any assets in return")
	}
	if offer.Memo != "buyoffer" {
		return market.ErrPrecondition("The last created custody offer must have the memo \"buyoffer\"")
	}

	dist, err := e.fees.Distribute(ctx, price, buyoffer.CollectionName, buyoffer.CollectionFee, buyoffer.MakerMarketplace, takerMarketplace, buyoffer.Recipient)
	if err != nil {
		return err
	}
	if err := e.escrow.PayOut(ctx, buyoffer.Recipient, dist.Beneficiary, "Buyoffer proceeds"); err != nil {
		return err
	}
	if err := e.registry.AcceptOffer(ctx, offer.ID); err != nil {
		return err
	}
	if err := e.registry.TransferAssets(ctx, buyoffer.Buyer, buyoffer.AssetIDs, "Your buyoffer was accepted!"); err != nil {
		return err
	}
	if err := e.buyoffers.Delete(ctx, buyofferID); err != nil {
		return err
	}
	if err := e.trades.Create(ctx, &models.TradeRecord{
		Kind:           models.TradeKindBuyoffer,
		ListingID:      buyofferID,
		Seller:         buyoffer.Recipient,
		Buyer:          buyoffer.Buyer,
		AssetIDs:       buyoffer.AssetIDs,
		GrossAmount:    price.Amount,
		Symbol:         price.Symbol.String(),
		CollectionName: buyoffer.CollectionName,
		CompletedAt:    e.now(),
	}); err != nil {
		return err
	}
	slog.Info("buyoffer accepted",
		slog.Int64("buyoffer_id", buyofferID),
		slog.String("price", price.String()))
	return nil
}
