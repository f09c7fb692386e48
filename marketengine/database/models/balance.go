package models

import (
	"github.com/uptrace/bun"

	"github.com/waxlabs/marketengine/marketengine/market"
)

// Balance is one escrowed token position: the amount of a single symbol the
// engine holds on behalf of an owner. Rows are deleted when they reach zero
// and amounts are never negative.
type Balance struct {
	bun.BaseModel `bun:"table:balances,alias:b"`

	Owner     string `bun:"owner,pk"`
	Code      string `bun:"code,pk"`
	Amount    int64  `bun:"amount,notnull"`
	Precision uint8  `bun:"precision,notnull"`
}

// Quantity returns the position as an asset value.
func (b *Balance) Quantity() market.Asset {
	return market.NewAsset(b.Amount, market.Symbol{Code: b.Code, Precision: b.Precision})
}
