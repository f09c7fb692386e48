package repositories

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/waxlabs/marketengine/marketengine/database/models"
)

// BalanceRepository stores escrowed token positions, one row per
// (owner, symbol code). The escrow ledger is the only writer.
type BalanceRepository interface {
	Get(ctx context.Context, owner, code string) (*models.Balance, error)
	GetByOwner(ctx context.Context, owner string) ([]*models.Balance, error)
	Upsert(ctx context.Context, b *models.Balance) error
	Delete(ctx context.Context, owner, code string) error
}

type balanceRepository struct {
	db *bun.DB
}

func NewBalanceRepository(db *bun.DB) BalanceRepository {
	return &balanceRepository{db: db}
}

func (r *balanceRepository) Get(ctx context.Context, owner, code string) (*models.Balance, error) {
	b := new(models.Balance)
	err := r.db.NewSelect().Model(b).Where("owner = ? AND code = ?", owner, code).Scan(ctx)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("get", "balance", err)
	}
	return b, nil
}

func (r *balanceRepository) GetByOwner(ctx context.Context, owner string) ([]*models.Balance, error) {
	var balances []*models.Balance
	err := r.db.NewSelect().Model(&balances).Where("owner = ?", owner).Order("code ASC").Scan(ctx)
	if err != nil {
		return nil, wrapErr("list", "balance", err)
	}
	return balances, nil
}

func (r *balanceRepository) Upsert(ctx context.Context, b *models.Balance) error {
	_, err := r.db.NewInsert().
		Model(b).
		On("CONFLICT (owner, code) DO UPDATE").
		Set("amount = EXCLUDED.amount").
		Set("precision = EXCLUDED.precision").
		Exec(ctx)
	return wrapErr("upsert", "balance", err)
}

func (r *balanceRepository) Delete(ctx context.Context, owner, code string) error {
	_, err := r.db.NewDelete().
		Model((*models.Balance)(nil)).
		Where("owner = ? AND code = ?", owner, code).
		Exec(ctx)
	return wrapErr("delete", "balance", err)
}
