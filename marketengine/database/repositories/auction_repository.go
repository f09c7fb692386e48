package repositories

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/waxlabs/marketengine/marketengine/database/models"
)

type AuctionRepository interface {
	Get(ctx context.Context, auctionID int64) (*models.Auction, error)
	GetBySeller(ctx context.Context, seller string) ([]*models.Auction, error)
	Create(ctx context.Context, a *models.Auction) error
	Update(ctx context.Context, a *models.Auction) error
	Delete(ctx context.Context, auctionID int64) error
}

type auctionRepository struct {
	db *bun.DB
}

func NewAuctionRepository(db *bun.DB) AuctionRepository {
	return &auctionRepository{db: db}
}

func (r *auctionRepository) Get(ctx context.Context, auctionID int64) (*models.Auction, error) {
	a := new(models.Auction)
	err := r.db.NewSelect().Model(a).Where("auction_id = ?", auctionID).Scan(ctx)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("get", "auction", err)
	}
	return a, nil
}

func (r *auctionRepository) GetBySeller(ctx context.Context, seller string) ([]*models.Auction, error) {
	var auctions []*models.Auction
	err := r.db.NewSelect().Model(&auctions).Where("seller = ?", seller).Order("auction_id ASC").Scan(ctx)
	if err != nil {
		return nil, wrapErr("list", "auction", err)
	}
	return auctions, nil
}

func (r *auctionRepository) Create(ctx context.Context, a *models.Auction) error {
	a.CreatedAt = time.Now()
	_, err := r.db.NewInsert().Model(a).Exec(ctx)
	return wrapErr("create", "auction", err)
}

func (r *auctionRepository) Update(ctx context.Context, a *models.Auction) error {
	_, err := r.db.NewUpdate().Model(a).WherePK().Exec(ctx)
	return wrapErr("update", "auction", err)
}

func (r *auctionRepository) Delete(ctx context.Context, auctionID int64) error {
	_, err := r.db.NewDelete().Model((*models.Auction)(nil)).Where("auction_id = ?", auctionID).Exec(ctx)
	return wrapErr("delete", "auction", err)
}
