// Package pricing registers listing/settlement symbol pairs against the
// external price feed and converts listing prices into settlement amounts
// at a caller-committed median.
package pricing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/waxlabs/marketengine/marketengine/database/models"
	"github.com/waxlabs/marketengine/marketengine/database/repositories"
	"github.com/waxlabs/marketengine/marketengine/market"
	"github.com/waxlabs/marketengine/marketengine/pricefeed"
)

type Resolver struct {
	config repositories.ConfigRepository
	feed   pricefeed.Client
}

func NewResolver(config repositories.ConfigRepository, feed pricefeed.Client) *Resolver {
	return &Resolver{config: config, feed: feed}
}

// RegisterPair binds a feed pair to a listing/settlement symbol
// combination. The symbol precisions must line up with the feed pair so
// that conversions stay exact: non-inverted pairs multiply by the median
// (listing matches the feed base, settlement the feed quote), inverted
// pairs divide (the other way around).
func (r *Resolver) RegisterPair(ctx context.Context, pairName string, invert bool, listing, settlement market.Symbol) error {
	if listing == settlement {
		return market.ErrValidation("Listing symbol and settlement symbol must be different")
	}

	feedPair, err := r.feed.Pair(ctx, pairName)
	if err != nil {
		return err
	}
	if feedPair == nil {
		return market.ErrValidation("The provided pair name does not exist in the price feed")
	}

	existing, err := r.config.SymbolPairs(ctx)
	if err != nil {
		return err
	}
	for _, p := range existing {
		if p.ListingSymbol == listing.String() && p.SettlementSymbol == settlement.String() {
			return market.ErrValidation("There already exists a symbol pair with the specified listing - settlement symbol combination")
		}
	}

	tok, err := r.config.SupportedToken(ctx, settlement.Code)
	if err != nil {
		return err
	}
	if tok == nil || tok.Precision != settlement.Precision {
		return market.ErrValidation("The settlement symbol does not belong to a supported token")
	}

	base, err := market.ParseSymbol(feedPair.BaseSymbol)
	if err != nil {
		return market.ErrInvariant("price feed pair %s has a malformed base symbol: %v", pairName, err)
	}
	quote, err := market.ParseSymbol(feedPair.QuoteSymbol)
	if err != nil {
		return market.ErrInvariant("price feed pair %s has a malformed quote symbol: %v", pairName, err)
	}

	if !invert {
		if listing.Precision != base.Precision {
			return market.ErrValidation("The listing symbol precision needs to be equal to the feed base symbol precision for non inverted pairs")
		}
		if settlement.Precision != quote.Precision {
			return market.ErrValidation("The settlement symbol precision needs to be equal to the feed quote symbol precision for non inverted pairs")
		}
	} else {
		if listing.Precision != quote.Precision {
			return market.ErrValidation("The listing symbol precision needs to be equal to the feed quote symbol precision for inverted pairs")
		}
		if settlement.Precision != base.Precision {
			return market.ErrValidation("The settlement symbol precision needs to be equal to the feed base symbol precision for inverted pairs")
		}
	}

	return r.config.AddSymbolPair(ctx, &models.SymbolPair{
		PairName:         pairName,
		Invert:           invert,
		ListingSymbol:    listing.String(),
		SettlementSymbol: settlement.String(),
	})
}

// SupportsCombination reports whether a listing/settlement symbol
// combination is usable, either directly (same symbol) or through a
// registered pair.
func (r *Resolver) SupportsCombination(ctx context.Context, listing, settlement market.Symbol) (bool, error) {
	if listing == settlement {
		return true, nil
	}
	pair, err := r.findPair(ctx, listing, settlement)
	if err != nil {
		return false, err
	}
	return pair != nil, nil
}

// Resolve converts a listing price to its settlement amount at the median
// the caller committed to. Direct listings (matching symbols) require a
// zero median and pass through unchanged. Oracle listings require a feed
// datapoint whose median exactly equals the committed value; the result is
// truncated down to the settlement precision.
func (r *Resolver) Resolve(ctx context.Context, listingPrice market.Asset, settlement market.Symbol, intendedMedian uint64) (market.Asset, error) {
	if listingPrice.Symbol == settlement {
		if intendedMedian != 0 {
			return market.Asset{}, market.ErrValidation("intended median needs to be 0 for direct sales")
		}
		return listingPrice, nil
	}

	pair, err := r.findPair(ctx, listingPrice.Symbol, settlement)
	if err != nil {
		return market.Asset{}, err
	}
	if pair == nil {
		return market.Asset{}, market.ErrValidation("The specified listing - settlement symbol combination is not supported")
	}

	feedPair, err := r.feed.Pair(ctx, pair.PairName)
	if err != nil {
		return market.Asset{}, err
	}
	if feedPair == nil {
		return market.Asset{}, market.ErrInvariant("price feed pair %s no longer exists", pair.PairName)
	}

	datapoint, err := r.feed.DatapointWithMedian(ctx, pair.PairName, intendedMedian)
	if err != nil {
		return market.Asset{}, err
	}
	if datapoint == nil {
		return market.Asset{}, market.ErrInvariant("No datapoint with the intended median was found.")
	}

	median := decimal.New(int64(datapoint.Median), -int32(feedPair.QuotedPrecision))
	listing := listingPrice.Decimal()

	var amount int64
	if !pair.Invert {
		amount = listing.Mul(median).Shift(int32(settlement.Precision)).Truncate(0).IntPart()
	} else {
		// Div rounds, so use the exact truncated quotient.
		quotient, _ := listing.Shift(int32(settlement.Precision)).QuoRem(median, 0)
		amount = quotient.IntPart()
	}
	return market.NewAsset(amount, settlement), nil
}

func (r *Resolver) findPair(ctx context.Context, listing, settlement market.Symbol) (*models.SymbolPair, error) {
	pairs, err := r.config.SymbolPairs(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range pairs {
		if p.ListingSymbol == listing.String() && p.SettlementSymbol == settlement.String() {
			return p, nil
		}
	}
	return nil, nil
}
