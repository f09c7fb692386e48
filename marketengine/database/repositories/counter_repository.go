package repositories

import (
	"context"

	"github.com/uptrace/bun"
)

// CounterRepository hands out named monotonic ids. Both the sale/auction
// counters and the buyoffer counter go through this one abstraction.
type CounterRepository interface {
	// Next reserves and returns the next value of the named counter,
	// starting at 1.
	Next(ctx context.Context, name string) (int64, error)
}

type counterRepository struct {
	db *bun.DB
}

func NewCounterRepository(db *bun.DB) CounterRepository {
	return &counterRepository{db: db}
}

func (r *counterRepository) Next(ctx context.Context, name string) (int64, error) {
	var value int64
	err := r.db.NewRaw(
		"INSERT INTO counters (name, value) VALUES (?, 1) "+
			"ON CONFLICT (name) DO UPDATE SET value = counters.value + 1 "+
			"RETURNING value",
		name,
	).Scan(ctx, &value)
	if err != nil {
		return 0, wrapErr("next", "counter", err)
	}
	return value, nil
}
