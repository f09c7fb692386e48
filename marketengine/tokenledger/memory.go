package tokenledger

import (
	"context"
	"sync"

	"github.com/waxlabs/marketengine/marketengine/market"
)

// Memory is an in-memory ledger client used for local development and
// tests. It records every transfer the engine requests.
type Memory struct {
	mu        sync.Mutex
	transfers []RecordedTransfer
}

// RecordedTransfer is one outbound token transfer the engine requested.
type RecordedTransfer struct {
	To       string
	Quantity market.Asset
	Memo     string
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Transfer(_ context.Context, to string, quantity market.Asset, memo string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transfers = append(m.transfers, RecordedTransfer{To: to, Quantity: quantity, Memo: memo})
	return nil
}

// Transfers returns the transfers requested so far.
func (m *Memory) Transfers() []RecordedTransfer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RecordedTransfer(nil), m.transfers...)
}
