// Package fees splits the gross proceeds of a completed trade between the
// collection author, the maker and taker marketplaces, and the beneficiary.
package fees

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/waxlabs/marketengine/marketengine/assetregistry"
	"github.com/waxlabs/marketengine/marketengine/database/repositories"
	"github.com/waxlabs/marketengine/marketengine/market"
	"github.com/waxlabs/marketengine/marketengine/market/escrow"
	"github.com/waxlabs/marketengine/marketengine/market/marketplaces"
)

// Distribution reports where the gross amount went. All four amounts share
// the gross symbol and always sum to exactly the gross.
type Distribution struct {
	Collection  market.Asset
	Maker       market.Asset
	Taker       market.Asset
	Beneficiary market.Asset
}

type Distributor struct {
	escrow       *escrow.Ledger
	marketplaces *marketplaces.Registry
	registry     assetregistry.Client
	config       repositories.ConfigRepository
}

func NewDistributor(esc *escrow.Ledger, mkts *marketplaces.Registry, registry assetregistry.Client, config repositories.ConfigRepository) *Distributor {
	return &Distributor{
		escrow:       esc,
		marketplaces: mkts,
		registry:     registry,
		config:       config,
	}
}

// Distribute credits each party's share of the gross to their escrow
// balance. Shares are floored at the symbol's precision; the beneficiary
// receives whatever rounding leaves over, so no smallest unit is ever lost
// or created.
func (d *Distributor) Distribute(ctx context.Context, gross market.Asset, collectionName string, collectionFee float64, makerMarketplace, takerMarketplace, beneficiary string) (*Distribution, error) {
	cfg, err := d.config.Get(ctx)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, market.ErrInvariant("engine configuration has not been initialized")
	}
	collection, err := d.registry.Collection(ctx, collectionName)
	if err != nil {
		return nil, err
	}
	makerCreator, err := d.marketplaces.Creator(ctx, makerMarketplace)
	if err != nil {
		return nil, err
	}
	takerCreator, err := d.marketplaces.Creator(ctx, takerMarketplace)
	if err != nil {
		return nil, err
	}

	collectionCut := share(gross, collectionFee)
	makerCut := share(gross, cfg.MakerMarketFee)
	takerCut := share(gross, cfg.TakerMarketFee)

	remainder := gross.Amount - collectionCut.Amount - makerCut.Amount - takerCut.Amount
	if remainder < 0 {
		return nil, market.ErrInvariant("fee shares exceed the gross amount")
	}

	if err := d.escrow.Credit(ctx, collection.Author, collectionCut); err != nil {
		return nil, err
	}
	if err := d.escrow.Credit(ctx, makerCreator, makerCut); err != nil {
		return nil, err
	}
	if err := d.escrow.Credit(ctx, takerCreator, takerCut); err != nil {
		return nil, err
	}
	beneficiaryCut := market.NewAsset(remainder, gross.Symbol)
	if err := d.escrow.Credit(ctx, beneficiary, beneficiaryCut); err != nil {
		return nil, err
	}

	return &Distribution{
		Collection:  collectionCut,
		Maker:       makerCut,
		Taker:       takerCut,
		Beneficiary: beneficiaryCut,
	}, nil
}

// share computes floor(gross * rate) in smallest units.
func share(gross market.Asset, rate float64) market.Asset {
	amount := decimal.NewFromInt(gross.Amount).
		Mul(decimal.NewFromFloat(rate)).
		Truncate(0).
		IntPart()
	return market.NewAsset(amount, gross.Symbol)
}
