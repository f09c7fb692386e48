// Package admin carries the administrative operations that shape the
// configuration the engines validate against. Everything here is gated on
// the configured admin account.
package admin

import (
	"context"
	"log/slog"

	"github.com/waxlabs/marketengine/marketengine/database/models"
	"github.com/waxlabs/marketengine/marketengine/database/repositories"
	"github.com/waxlabs/marketengine/marketengine/market"
	"github.com/waxlabs/marketengine/marketengine/market/marketplaces"
	"github.com/waxlabs/marketengine/marketengine/market/pricing"
)

// Defaults seeds the configuration row on first init.
type Defaults struct {
	Version              string
	MinimumBidIncrease   float64
	MinAuctionDuration   int64
	MaxAuctionDuration   int64
	AuctionResetDuration int64
	MakerMarketFee       float64
	TakerMarketFee       float64
	AssetRegistryAccount string
	PriceFeedAccount     string
	DefaultMarketCreator string
}

type Service struct {
	config       repositories.ConfigRepository
	marketplaces *marketplaces.Registry
	pricing      *pricing.Resolver

	adminAccount string
	defaults     Defaults
}

func NewService(config repositories.ConfigRepository, mkts *marketplaces.Registry, resolver *pricing.Resolver, adminAccount string, defaults Defaults) *Service {
	return &Service{
		config:       config,
		marketplaces: mkts,
		pricing:      resolver,
		adminAccount: adminAccount,
		defaults:     defaults,
	}
}

// Init writes the default configuration and seeds the reserved default
// marketplace. A second call changes nothing.
func (s *Service) Init(ctx context.Context, actor string) error {
	if err := s.authorize(actor); err != nil {
		return err
	}
	cfg, err := s.config.Get(ctx)
	if err != nil {
		return err
	}
	if cfg == nil {
		cfg = &models.MarketConfig{
			Version:              s.defaults.Version,
			MinimumBidIncrease:   s.defaults.MinimumBidIncrease,
			MinAuctionDuration:   s.defaults.MinAuctionDuration,
			MaxAuctionDuration:   s.defaults.MaxAuctionDuration,
			AuctionResetDuration: s.defaults.AuctionResetDuration,
			MakerMarketFee:       s.defaults.MakerMarketFee,
			TakerMarketFee:       s.defaults.TakerMarketFee,
			AssetRegistryAccount: s.defaults.AssetRegistryAccount,
			PriceFeedAccount:     s.defaults.PriceFeedAccount,
			DefaultMarketCreator: s.defaults.DefaultMarketCreator,
		}
		if err := s.config.Save(ctx, cfg); err != nil {
			return err
		}
		slog.Info("configuration initialized", slog.String("version", cfg.Version))
	}
	return s.marketplaces.Bootstrap(ctx, cfg.DefaultMarketCreator)
}

// AddSupportedToken registers a fungible token for deposits and
// settlement. Symbol codes stay unique across contracts.
func (s *Service) AddSupportedToken(ctx context.Context, actor, contract string, symbol market.Symbol) error {
	if err := s.authorize(actor); err != nil {
		return err
	}
	existing, err := s.config.SupportedToken(ctx, symbol.Code)
	if err != nil {
		return err
	}
	if existing != nil {
		return market.ErrValidation("A token with this symbol is already supported")
	}
	err = s.config.AddSupportedToken(ctx, &models.SupportedToken{
		Code:      symbol.Code,
		Contract:  contract,
		Precision: symbol.Precision,
	})
	if err != nil {
		return err
	}
	slog.Info("token supported", slog.String("contract", contract), slog.String("symbol", symbol.String()))
	return nil
}

// RegisterPair binds a price feed pair to a listing/settlement symbol
// combination.
func (s *Service) RegisterPair(ctx context.Context, actor, pairName string, invert bool, listing, settlement market.Symbol) error {
	if err := s.authorize(actor); err != nil {
		return err
	}
	if err := s.pricing.RegisterPair(ctx, pairName, invert, listing, settlement); err != nil {
		return err
	}
	slog.Info("symbol pair registered",
		slog.String("pair", pairName),
		slog.Bool("invert", invert),
		slog.String("listing", listing.String()),
		slog.String("settlement", settlement.String()))
	return nil
}

// SetMarketFees updates the maker and taker rates applied to future trades.
func (s *Service) SetMarketFees(ctx context.Context, actor string, makerFee, takerFee float64) error {
	if err := s.authorize(actor); err != nil {
		return err
	}
	if makerFee < 0 || takerFee < 0 {
		return market.ErrValidation("Market fees need to be at least 0")
	}
	cfg, err := s.config.Get(ctx)
	if err != nil {
		return err
	}
	if cfg == nil {
		return market.ErrInvariant("engine configuration has not been initialized")
	}
	cfg.MakerMarketFee = makerFee
	cfg.TakerMarketFee = takerFee
	if err := s.config.Save(ctx, cfg); err != nil {
		return err
	}
	slog.Info("market fees updated", slog.Float64("maker", makerFee), slog.Float64("taker", takerFee))
	return nil
}

func (s *Service) authorize(actor string) error {
	if actor != s.adminAccount {
		return market.ErrAuth(s.adminAccount)
	}
	return nil
}
