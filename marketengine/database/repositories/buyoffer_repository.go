package repositories

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/waxlabs/marketengine/marketengine/database/models"
)

type BuyofferRepository interface {
	Get(ctx context.Context, buyofferID int64) (*models.Buyoffer, error)
	Create(ctx context.Context, b *models.Buyoffer) error
	Delete(ctx context.Context, buyofferID int64) error
}

type buyofferRepository struct {
	db *bun.DB
}

func NewBuyofferRepository(db *bun.DB) BuyofferRepository {
	return &buyofferRepository{db: db}
}

func (r *buyofferRepository) Get(ctx context.Context, buyofferID int64) (*models.Buyoffer, error) {
	b := new(models.Buyoffer)
	err := r.db.NewSelect().Model(b).Where("buyoffer_id = ?", buyofferID).Scan(ctx)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("get", "buyoffer", err)
	}
	return b, nil
}

func (r *buyofferRepository) Create(ctx context.Context, b *models.Buyoffer) error {
	b.CreatedAt = time.Now()
	_, err := r.db.NewInsert().Model(b).Exec(ctx)
	return wrapErr("create", "buyoffer", err)
}

func (r *buyofferRepository) Delete(ctx context.Context, buyofferID int64) error {
	_, err := r.db.NewDelete().Model((*models.Buyoffer)(nil)).Where("buyoffer_id = ?", buyofferID).Exec(ctx)
	return wrapErr("delete", "buyoffer", err)
}
