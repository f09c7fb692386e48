// Package sales implements direct listings at a fixed price. A sale goes
// through three stages: announced (no custody yet), active (the seller's
// custody transfer-offer is bound to it) and completed or cancelled.
package sales

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
	"github.com/waxlabs/marketengine/marketengine/market/pricing"
)

type Engine struct {
	sales    repositories.SaleRepository
	counters repositories.CounterRepository
	config   repositories.ConfigRepository
	trades   repositories.TradeRepository

	registry     assetregistry.Client
	escrow       *escrow.Ledger
	fees         *fees.Distributor
	pricing      *pricing.Resolver
	marketplaces *marketplaces.Registry

	now func() time.Time
}

func NewEngine(
	sales repositories.SaleRepository,
	counters repositories.CounterRepository,
	config repositories.ConfigRepository,
	trades repositories.TradeRepository,
	registry assetregistry.Client,
	esc *escrow.Ledger,
	dist *fees.Distributor,
	resolver *pricing.Resolver,
	mkts *marketplaces.Registry,
	now func() time.Time,
) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{
		sales:        sales,
		counters:     counters,
		config:       config,
		trades:       trades,
		registry:     registry,
		escrow:       esc,
		fees:         dist,
		pricing:      resolver,
		marketplaces: mkts,
		now:          now,
	}
}

// Announce creates a sale for assets the seller owns. The custody
// transfer-offer is bound later through BindOffer; until then the sale
// cannot be purchased.
func (e *Engine) Announce(ctx context.Context, seller string, assetIDs []int64, listingPrice market.Asset, settlement market.Symbol, makerMarketplace string) (int64, error) {
	if err := market.ValidateAssetIDs(assetIDs); err != nil {
		return 0, err
	}
	if !listingPrice.IsPositive() {
		return 0, market.ErrValidation("The sale price must be greater than zero")
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

	if listingPrice.Symbol == settlement {
		tok, err := e.config.SupportedToken(ctx, settlement.Code)
		if err != nil {
			return 0, err
		}
		if tok == nil || tok.Precision != settlement.Precision {
			return 0, market.ErrValidation("The specified listing symbol is not supported")
		}
	} else {
		supported, err := e.pricing.SupportsCombination(ctx, listingPrice.Symbol, settlement)
		if err != nil {
			return 0, err
		}
		if !supported {
			return 0, market.ErrValidation("The specified listing - settlement symbol combination is not supported")
		}
	}

	open, err := e.sales.GetBySeller(ctx, seller)
	if err != nil {
		return 0, err
	}
	for _, s := range open {
		if market.SameAssetSet(s.AssetIDs, assetIDs) {
			return 0, market.ErrPrecondition("You have already announced a sale for these assets")
		}
	}

	collection, err := e.registry.Collection(ctx, collectionName)
	if err != nil {
		return 0, err
	}

	saleID, err := e.counters.Next(ctx, models.CounterSale)
	if err != nil {
		return 0, err
	}
	sale := &models.Sale{
		SaleID:           saleID,
		Seller:           seller,
		AssetIDs:         assetIDs,
		OfferID:          models.UnboundOffer,
		ListingAmount:    listingPrice.Amount,
		ListingSymbol:    listingPrice.Symbol.String(),
		SettlementSymbol: settlement.String(),
		ListingFees: models.ListingFees{
			MakerMarketplace: makerMarketplace,
			CollectionName:   collectionName,
			CollectionFee:    collection.Fee,
		},
		CreatedAt: e.now(),
	}
	if err := e.sales.Create(ctx, sale); err != nil {
		return 0, err
	}
	slog.Info("sale announced",
		slog.Int64("sale_id", saleID),
		slog.String("seller", seller),
		slog.String("price", listingPrice.String()))
	return saleID, nil
}

// BindOffer matches a newly created custody transfer-offer against the
// sender's announced sales and binds it to the one with the exact same
// asset set. Offers that match no sale are ignored.
func (e *Engine) BindOffer(ctx context.Context, n assetregistry.OfferCreated) error {
	if len(n.RecipientAssetIDs) > 0 {
		return market.ErrValidation("You must not ask for any assets in return in a sale offer")
	}
	open, err := e.sales.GetBySeller(ctx, n.Sender)
	if err != nil {
		return err
	}
	for _, s := range open {
		if !market.SameAssetSet(s.AssetIDs, n.SenderAssetIDs) {
			continue
		}
		if s.OfferID != models.UnboundOffer {
			return market.ErrPrecondition("An offer for this sale has already been created")
		}
		s.OfferID = n.OfferID
		if err := e.sales.Update(ctx, s); err != nil {
			return err
		}
		slog.Info("sale activated",
			slog.Int64("sale_id", s.SaleID),
			slog.Int64("offer_id", n.OfferID))
		return nil
	}
	return nil
}

// Purchase settles an active sale: the buyer's escrow covers the resolved
// settlement amount, fees are distributed, the seller is paid out and the
// custody offer is finalized.
func (e *Engine) Purchase(ctx context.Context, buyer string, saleID int64, intendedMedian uint64, takerMarketplace string) error {
	sale, err := e.sales.Get(ctx, saleID)
	if err != nil {
		return err
	}
	if sale == nil {
		return market.ErrNotFound("sale", saleID)
	}
	if buyer == sale.Seller {
		return market.ErrValidation("You can't purchase your own sale")
	}
	ok, err := e.marketplaces.Exists(ctx, takerMarketplace)
	if err != nil {
		return err
	}
	if !ok {
		return market.ErrValidation("The taker marketplace is not a valid marketplace")
	}
	if sale.OfferID == models.UnboundOffer {
		return market.ErrPrecondition("This sale is not active yet.")
	}
	offer, err := e.registry.Offer(ctx, sale.OfferID)
	if err != nil {
		return err
	}
	if offer == nil {
		return market.ErrPrecondition("The seller cancelled the offer related to this sale")
	}

	settlement, err := market.ParseSymbol(sale.SettlementSymbol)
	if err != nil {
		return market.ErrInvariant("sale %d has a malformed settlement symbol: %v", saleID, err)
	}
	price, err := e.pricing.Resolve(ctx, sale.ListingPrice(), settlement, intendedMedian)
	if err != nil {
		return err
	}
	if err := e.escrow.CheckBalance(ctx, buyer, price); err != nil {
		return err
	}

	if err := e.escrow.Debit(ctx, buyer, price); err != nil {
		return err
	}
	dist, err := e.fees.Distribute(ctx, price, sale.CollectionName, sale.CollectionFee, sale.MakerMarketplace, takerMarketplace, sale.Seller)
	if err != nil {
		return err
	}
	if err := e.escrow.PayOut(ctx, sale.Seller, dist.Beneficiary, "Sale proceeds"); err != nil {
		return err
	}
	if err := e.registry.AcceptOffer(ctx, sale.OfferID); err != nil {
		return err
	}
	if err := e.registry.TransferAssets(ctx, buyer, sale.AssetIDs, "You purchased these assets!"); err != nil {
		return err
	}
	if err := e.sales.Delete(ctx, saleID); err != nil {
		return err
	}
	if err := e.trades.Create(ctx, &models.TradeRecord{
		Kind:           models.TradeKindSale,
		ListingID:      saleID,
		Seller:         sale.Seller,
		Buyer:          buyer,
		AssetIDs:       sale.AssetIDs,
		GrossAmount:    price.Amount,
		Symbol:         price.Symbol.String(),
		CollectionName: sale.CollectionName,
		CompletedAt:    e.now(),
	}); err != nil {
		return err
	}
	slog.Info("sale completed",
		slog.Int64("sale_id", saleID),
		slog.String("buyer", buyer),
		slog.String("price", price.String()))
	return nil
}

// Cancel removes a sale. The seller may always cancel; anyone may clean up
// a sale whose bound custody offer vanished or whose assets the seller no
// longer owns.
func (e *Engine) Cancel(ctx context.Context, actor string, saleID int64) error {
	sale, err := e.sales.Get(ctx, saleID)
	if err != nil {
		return err
	}
	if sale == nil {
		return market.ErrNotFound("sale", saleID)
	}

	var offer *assetregistry.Offer
	if sale.OfferID != models.UnboundOffer {
		offer, err = e.registry.Offer(ctx, sale.OfferID)
		if err != nil {
			return err
		}
	}
	invalid := sale.OfferID != models.UnboundOffer && offer == nil
	if !invalid {
		for _, id := range sale.AssetIDs {
			asset, err := e.registry.Asset(ctx, id)
			if err != nil {
				return err
			}
			if asset.Owner != sale.Seller {
				invalid = true
				break
			}
		}
	}
	if !invalid && actor != sale.Seller {
		return market.ErrAuthf(sale.Seller, "The sale is not invalid, therefore the authorization of the seller is needed to cancel it")
	}

	if offer != nil {
		if err := e.registry.DeclineOffer(ctx, sale.OfferID); err != nil {
			return err
		}
	}
	if err := e.sales.Delete(ctx, saleID); err != nil {
		return err
	}
	slog.Info("sale cancelled", slog.Int64("sale_id", saleID), slog.String("actor", actor))
	return nil
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
