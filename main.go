package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/waxlabs/marketengine/marketengine"
	"github.com/waxlabs/marketengine/marketengine/archive"
	"github.com/waxlabs/marketengine/marketengine/assetregistry"
	"github.com/waxlabs/marketengine/marketengine/database"
	"github.com/waxlabs/marketengine/marketengine/logger"
	"github.com/waxlabs/marketengine/marketengine/pricefeed"
	"github.com/waxlabs/marketengine/marketengine/tokenledger"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	path := flag.String("config", "config.toml", "path to config")
	resetTables := flag.Bool("reset-tables", false, "truncate all engine tables before starting")
	flag.Parse()

	cfg, err := marketengine.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}

	slog.SetDefault(slog.New(logger.NewHandler(cfg.Log.Level)))
	slog.Info("Starting market engine",
		slog.String("version", version),
		slog.String("commit", commit))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbStartTime := time.Now()
	db, err := database.New(ctx, cfg.DB)
	if err != nil {
		slog.Error("Database connection failed",
			slog.Any("error", err),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}
	defer db.Close()
	slog.Info("Database connected successfully", slog.String("database", cfg.DB.Database))

	if *resetTables {
		if err := db.ResetTables(ctx); err != nil {
			slog.Error("Failed to reset tables", slog.Any("error", err))
			os.Exit(-1)
		}
	}

	// Standalone mode runs against in-memory registry, ledger and feed
	// clients. Production deployments replace these with RPC clients.
	registry := assetregistry.NewMemory(cfg.Market.EngineAccount)
	tokens := tokenledger.NewMemory()
	feed := pricefeed.NewMemory()

	engine := marketengine.New(*cfg, version, commit, db, registry, tokens, feed, nil)

	if cfg.Archive.Enabled {
		archiver, err := archive.NewArchiver(
			cfg.Archive.Key, cfg.Archive.Secret,
			cfg.Archive.Region, cfg.Archive.Bucket, cfg.Archive.Prefix,
			engine.Trades,
		)
		if err != nil {
			slog.Error("Failed to set up trade archiver", slog.Any("error", err))
			os.Exit(-1)
		}
		go runArchiver(ctx, archiver, cfg.Archive.IntervalMinutes)
	}

	go func() {
		if err := engine.Start(ctx); err != nil {
			slog.Error("Engine failed to start", slog.Any("error", err))
			cancel()
		}
	}()

	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-s:
		slog.Info("Shutting down market engine")
		cancel()
	case <-ctx.Done():
	}
}

// runArchiver periodically exports trades completed since the previous
// successful export.
func runArchiver(ctx context.Context, archiver *archive.Archiver, intervalMinutes int) {
	if intervalMinutes <= 0 {
		intervalMinutes = 60
	}
	interval := time.Duration(intervalMinutes) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	since := time.Now().Add(-interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			exportedAt := time.Now()
			if _, err := archiver.Export(ctx, since); err != nil {
				slog.Error("Trade archive export failed", slog.Any("error", err))
				continue
			}
			since = exportedAt
		}
	}
}
