// Command migrate imports balances and marketplaces from a legacy MongoDB
// deployment into the engine's Postgres database.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/waxlabs/marketengine/marketengine"
	"github.com/waxlabs/marketengine/marketengine/database"
	"github.com/waxlabs/marketengine/marketengine/logger"
	"github.com/waxlabs/marketengine/marketengine/migration"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to config")
	mongoURI := flag.String("mongo-uri", "mongodb://localhost:27017", "MongoDB connection URI")
	mongoDB := flag.String("mongo-db", "marketplace", "MongoDB database name")
	batchSize := flag.Int("batch-size", 1000, "insert batch size")
	flag.Parse()

	cfg, err := marketengine.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.SetDefault(slog.New(logger.NewHandler(cfg.Log.Level)))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	db, err := database.New(ctx, cfg.DB)
	if err != nil {
		slog.Error("Database connection failed", slog.Any("error", err))
		os.Exit(-1)
	}
	defer db.Close()

	if err := db.InitSchema(ctx); err != nil {
		slog.Error("Failed to initialize schema", slog.Any("error", err))
		os.Exit(-1)
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(*mongoURI))
	if err != nil {
		slog.Error("MongoDB connection failed", slog.Any("error", err))
		os.Exit(-1)
	}
	defer func() {
		if err := client.Disconnect(ctx); err != nil {
			slog.Error("MongoDB disconnect failed", slog.Any("error", err))
		}
	}()

	migrator := migration.NewMigrator(db.BunDB(), client, *mongoDB)
	migrator.SetBatchSize(*batchSize)

	if err := migrator.MigrateAll(ctx); err != nil {
		slog.Error("Migration failed", slog.Any("error", err))
		os.Exit(-1)
	}
}
