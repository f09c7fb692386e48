// Package migration imports state from a legacy MongoDB deployment of the
// marketplace into Postgres. It is a one-shot tool run before first start.
package migration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/waxlabs/marketengine/marketengine/database/models"
	"github.com/waxlabs/marketengine/marketengine/market"
)

type Migrator struct {
	pgDB    *bun.DB
	mongoDB *mongo.Database

	batchSize int
	stats     Stats
}

type Stats struct {
	Marketplaces int
	BalanceRows  int
	Skipped      int
	StartTime    time.Time
	EndTime      time.Time
}

// legacyMarketplace mirrors the marketplaces collection of the legacy
// deployment.
type legacyMarketplace struct {
	MarketplaceName string `bson:"marketplace_name"`
	Creator         string `bson:"creator"`
}

// legacyBalance mirrors the balances collection: one document per owner
// with all escrowed quantities in "100.00000000 WAX" notation.
type legacyBalance struct {
	Owner      string   `bson:"owner"`
	Quantities []string `bson:"quantities"`
}

func NewMigrator(pgDB *bun.DB, client *mongo.Client, dbName string) *Migrator {
	return &Migrator{
		pgDB:      pgDB,
		mongoDB:   client.Database(dbName),
		batchSize: 1000,
	}
}

// SetBatchSize overrides the default insert batch size.
func (m *Migrator) SetBatchSize(size int) {
	if size > 0 {
		m.batchSize = size
	}
}

func (m *Migrator) Stats() Stats {
	return m.stats
}

// MigrateAll runs every migration step in order.
func (m *Migrator) MigrateAll(ctx context.Context) error {
	m.stats.StartTime = time.Now()

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"marketplaces", m.MigrateMarketplaces},
		{"balances", m.MigrateBalances},
	}

	for _, step := range steps {
		slog.Info("starting migration step", slog.String("step", step.name))
		if err := step.fn(ctx); err != nil {
			return fmt.Errorf("migration failed at step %s: %w", step.name, err)
		}
		slog.Info("completed migration step", slog.String("step", step.name))
	}

	m.stats.EndTime = time.Now()
	slog.Info("migration completed",
		slog.Int("marketplaces", m.stats.Marketplaces),
		slog.Int("balance_rows", m.stats.BalanceRows),
		slog.Int("skipped", m.stats.Skipped),
		slog.Duration("took", m.stats.EndTime.Sub(m.stats.StartTime)))
	return nil
}

// MigrateMarketplaces copies the marketplace registry.
func (m *Migrator) MigrateMarketplaces(ctx context.Context) error {
	cursor, err := m.mongoDB.Collection("marketplaces").Find(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("failed to query marketplaces: %w", err)
	}
	defer cursor.Close(ctx)

	var batch []*models.Marketplace
	for cursor.Next(ctx) {
		var doc legacyMarketplace
		if err := cursor.Decode(&doc); err != nil {
			return fmt.Errorf("failed to decode marketplace document: %w", err)
		}
		batch = append(batch, &models.Marketplace{
			Name:      doc.MarketplaceName,
			Creator:   doc.Creator,
			CreatedAt: time.Now(),
		})
		if len(batch) >= m.batchSize {
			if err := m.insertMarketplaces(ctx, batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("marketplace cursor failed: %w", err)
	}
	if len(batch) > 0 {
		return m.insertMarketplaces(ctx, batch)
	}
	return nil
}

func (m *Migrator) insertMarketplaces(ctx context.Context, batch []*models.Marketplace) error {
	_, err := m.pgDB.NewInsert().
		Model(&batch).
		On("CONFLICT (name) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert marketplaces: %w", err)
	}
	m.stats.Marketplaces += len(batch)
	return nil
}

// MigrateBalances copies escrow balances, splitting the legacy per-owner
// quantity lists into one row per owner and symbol.
func (m *Migrator) MigrateBalances(ctx context.Context) error {
	cursor, err := m.mongoDB.Collection("balances").Find(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("failed to query balances: %w", err)
	}
	defer cursor.Close(ctx)

	var batch []*models.Balance
	for cursor.Next(ctx) {
		var doc legacyBalance
		if err := cursor.Decode(&doc); err != nil {
			return fmt.Errorf("failed to decode balance document: %w", err)
		}
		for _, q := range doc.Quantities {
			asset, err := market.ParseAsset(q)
			if err != nil {
				slog.Warn("skipping malformed balance quantity",
					slog.String("owner", doc.Owner),
					slog.String("quantity", q),
					slog.Any("error", err))
				m.stats.Skipped++
				continue
			}
			if asset.Amount <= 0 {
				m.stats.Skipped++
				continue
			}
			batch = append(batch, &models.Balance{
				Owner:     doc.Owner,
				Code:      asset.Symbol.Code,
				Amount:    asset.Amount,
				Precision: asset.Symbol.Precision,
			})
		}
		if len(batch) >= m.batchSize {
			if err := m.insertBalances(ctx, batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("balance cursor failed: %w", err)
	}
	if len(batch) > 0 {
		return m.insertBalances(ctx, batch)
	}
	return nil
}

func (m *Migrator) insertBalances(ctx context.Context, batch []*models.Balance) error {
	_, err := m.pgDB.NewInsert().
		Model(&batch).
		On("CONFLICT (owner, code) DO UPDATE").
		Set("amount = EXCLUDED.amount").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert balances: %w", err)
	}
	m.stats.BalanceRows += len(batch)
	return nil
}
