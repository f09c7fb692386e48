package repositories

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/waxlabs/marketengine/marketengine/database/models"
)

type MarketplaceRepository interface {
	Get(ctx context.Context, name string) (*models.Marketplace, error)
	Create(ctx context.Context, m *models.Marketplace) error
}

type marketplaceRepository struct {
	db *bun.DB
}

func NewMarketplaceRepository(db *bun.DB) MarketplaceRepository {
	return &marketplaceRepository{db: db}
}

func (r *marketplaceRepository) Get(ctx context.Context, name string) (*models.Marketplace, error) {
	m := new(models.Marketplace)
	err := r.db.NewSelect().Model(m).Where("name = ?", name).Scan(ctx)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("get", "marketplace", err)
	}
	return m, nil
}

func (r *marketplaceRepository) Create(ctx context.Context, m *models.Marketplace) error {
	existing, err := r.Get(ctx, m.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		return &ConflictError{Entity: "marketplace", Field: "name", Value: m.Name}
	}
	m.CreatedAt = time.Now()
	_, err = r.db.NewInsert().Model(m).Exec(ctx)
	return wrapErr("create", "marketplace", err)
}
