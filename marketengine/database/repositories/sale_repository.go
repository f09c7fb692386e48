package repositories

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/waxlabs/marketengine/marketengine/database/models"
)

// SaleRepository stores open sales. GetBySeller backs the exact-asset-set
// lookups so engines never scan the whole table.
type SaleRepository interface {
	Get(ctx context.Context, saleID int64) (*models.Sale, error)
	GetBySeller(ctx context.Context, seller string) ([]*models.Sale, error)
	Create(ctx context.Context, s *models.Sale) error
	Update(ctx context.Context, s *models.Sale) error
	Delete(ctx context.Context, saleID int64) error
}

type saleRepository struct {
	db *bun.DB
}

func NewSaleRepository(db *bun.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) Get(ctx context.Context, saleID int64) (*models.Sale, error) {
	s := new(models.Sale)
	err := r.db.NewSelect().Model(s).Where("sale_id = ?", saleID).Scan(ctx)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("get", "sale", err)
	}
	return s, nil
}

func (r *saleRepository) GetBySeller(ctx context.Context, seller string) ([]*models.Sale, error) {
	var sales []*models.Sale
	err := r.db.NewSelect().Model(&sales).Where("seller = ?", seller).Order("sale_id ASC").Scan(ctx)
	if err != nil {
		return nil, wrapErr("list", "sale", err)
	}
	return sales, nil
}

func (r *saleRepository) Create(ctx context.Context, s *models.Sale) error {
	s.CreatedAt = time.Now()
	_, err := r.db.NewInsert().Model(s).Exec(ctx)
	return wrapErr("create", "sale", err)
}

func (r *saleRepository) Update(ctx context.Context, s *models.Sale) error {
	_, err := r.db.NewUpdate().Model(s).WherePK().Exec(ctx)
	return wrapErr("update", "sale", err)
}

func (r *saleRepository) Delete(ctx context.Context, saleID int64) error {
	_, err := r.db.NewDelete().Model((*models.Sale)(nil)).Where("sale_id = ?", saleID).Exec(ctx)
	return wrapErr("delete", "sale", err)
}
