package repositories

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/waxlabs/marketengine/marketengine/database/models"
)

type TradeRepository interface {
	Create(ctx context.Context, t *models.TradeRecord) error
	ListSince(ctx context.Context, since time.Time) ([]*models.TradeRecord, error)
}

type tradeRepository struct {
	db *bun.DB
}

func NewTradeRepository(db *bun.DB) TradeRepository {
	return &tradeRepository{db: db}
}

func (r *tradeRepository) Create(ctx context.Context, t *models.TradeRecord) error {
	_, err := r.db.NewInsert().Model(t).Exec(ctx)
	return wrapErr("create", "trade_record", err)
}

func (r *tradeRepository) ListSince(ctx context.Context, since time.Time) ([]*models.TradeRecord, error) {
	var trades []*models.TradeRecord
	err := r.db.NewSelect().Model(&trades).Where("completed_at >= ?", since).Order("id ASC").Scan(ctx)
	if err != nil {
		return nil, wrapErr("list", "trade_record", err)
	}
	return trades, nil
}
