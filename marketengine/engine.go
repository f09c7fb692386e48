// Package marketengine wires the trade engines, escrow ledger and
// notification routing on top of the database and the external registry,
// token ledger and price feed clients.
package marketengine

import (
	"context"
	"log/slog"
	"time"

	"github.com/waxlabs/marketengine/marketengine/assetregistry"
	"github.com/waxlabs/marketengine/marketengine/database"
	"github.com/waxlabs/marketengine/marketengine/database/repositories"
	"github.com/waxlabs/marketengine/marketengine/handlers"
	"github.com/waxlabs/marketengine/marketengine/market/admin"
	"github.com/waxlabs/marketengine/marketengine/market/auctions"
	"github.com/waxlabs/marketengine/marketengine/market/buyoffers"
	"github.com/waxlabs/marketengine/marketengine/market/escrow"
	"github.com/waxlabs/marketengine/marketengine/market/fees"
	"github.com/waxlabs/marketengine/marketengine/market/marketplaces"
	"github.com/waxlabs/marketengine/marketengine/market/pricing"
	"github.com/waxlabs/marketengine/marketengine/market/sales"
	"github.com/waxlabs/marketengine/marketengine/pricefeed"
	"github.com/waxlabs/marketengine/marketengine/sequencer"
	"github.com/waxlabs/marketengine/marketengine/tokenledger"
)

type Engine struct {
	Cfg     Config
	Version string
	Commit  string

	DB *database.DB

	Escrow       *escrow.Ledger
	Marketplaces *marketplaces.Registry
	Fees         *fees.Distributor
	Pricing      *pricing.Resolver
	Sales        *sales.Engine
	Auctions     *auctions.Engine
	Buyoffers    *buyoffers.Engine
	Admin        *admin.Service
	Router       *handlers.Router
	Sequencer    *sequencer.Sequencer

	// Trades is the completed-trade history the archive exporter reads.
	Trades repositories.TradeRepository
}

// New wires every component against the given database and external
// clients. now may be nil for wall-clock time.
func New(cfg Config, version, commit string, db *database.DB, registry assetregistry.Client, tokens tokenledger.Client, feed pricefeed.Client, now func() time.Time) *Engine {
	bunDB := db.BunDB()

	configRepo := repositories.NewConfigRepository(bunDB)
	marketplaceRepo := repositories.NewMarketplaceRepository(bunDB)
	balanceRepo := repositories.NewBalanceRepository(bunDB)
	saleRepo := repositories.NewSaleRepository(bunDB)
	auctionRepo := repositories.NewAuctionRepository(bunDB)
	buyofferRepo := repositories.NewBuyofferRepository(bunDB)
	counterRepo := repositories.NewCounterRepository(bunDB)
	tradeRepo := repositories.NewTradeRepository(bunDB)

	cachedFeed := pricefeed.NewCachedClient(feed)

	esc := escrow.NewLedger(balanceRepo, configRepo, tokens)
	mkts := marketplaces.NewRegistry(marketplaceRepo, configRepo, registry)
	dist := fees.NewDistributor(esc, mkts, registry, configRepo)
	resolver := pricing.NewResolver(configRepo, cachedFeed)

	saleEngine := sales.NewEngine(saleRepo, counterRepo, configRepo, tradeRepo, registry, esc, dist, resolver, mkts, now)
	auctionEngine := auctions.NewEngine(auctionRepo, counterRepo, configRepo, tradeRepo, registry, esc, dist, mkts, now)
	buyofferEngine := buyoffers.NewEngine(cfg.Market.EngineAccount, buyofferRepo, counterRepo, configRepo, tradeRepo, registry, esc, dist, mkts, now)

	adminService := admin.NewService(configRepo, mkts, resolver, cfg.Market.AdminAccount, admin.Defaults{
		Version:              cfg.Market.Version,
		MinimumBidIncrease:   cfg.Market.MinimumBidIncrease,
		MinAuctionDuration:   cfg.Market.MinAuctionDuration,
		MaxAuctionDuration:   cfg.Market.MaxAuctionDuration,
		AuctionResetDuration: cfg.Market.AuctionResetDuration,
		MakerMarketFee:       cfg.Market.MakerMarketFee,
		TakerMarketFee:       cfg.Market.TakerMarketFee,
		AssetRegistryAccount: cfg.Market.AssetRegistryAccount,
		PriceFeedAccount:     cfg.Market.PriceFeedAccount,
		DefaultMarketCreator: cfg.Market.DefaultMarketCreator,
	})

	router := handlers.NewRouter(cfg.Market.EngineAccount, configRepo, esc, saleEngine, auctionEngine)

	inboxSize := cfg.Market.SequencerInboxSize
	if inboxSize <= 0 {
		inboxSize = 1024
	}

	return &Engine{
		Cfg:          cfg,
		Version:      version,
		Commit:       commit,
		DB:           db,
		Escrow:       esc,
		Marketplaces: mkts,
		Fees:         dist,
		Pricing:      resolver,
		Sales:        saleEngine,
		Auctions:     auctionEngine,
		Buyoffers:    buyofferEngine,
		Admin:        adminService,
		Router:       router,
		Sequencer:    sequencer.New(inboxSize),
		Trades:       tradeRepo,
	}
}

// Start initializes the schema and configuration and runs the sequencer
// until ctx is cancelled.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.DB.InitSchema(ctx); err != nil {
		return err
	}
	if err := e.Admin.Init(ctx, e.Cfg.Market.AdminAccount); err != nil {
		return err
	}
	slog.Info("market engine ready",
		slog.String("version", e.Version),
		slog.String("commit", e.Commit),
		slog.String("engine_account", e.Cfg.Market.EngineAccount))
	e.Sequencer.Run(ctx)
	return nil
}

// Submit runs one action through the sequencer.
func (e *Engine) Submit(ctx context.Context, action sequencer.Action) error {
	return e.Sequencer.Submit(ctx, action)
}
