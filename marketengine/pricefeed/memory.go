package pricefeed

import (
	"context"
	"sync"
)

// Memory is an in-memory feed used for local development and tests. Pairs
// and datapoints are seeded explicitly.
type Memory struct {
	mu         sync.Mutex
	pairs      map[string]Pair
	datapoints map[string][]Datapoint
}

func NewMemory() *Memory {
	return &Memory{
		pairs:      make(map[string]Pair),
		datapoints: make(map[string][]Datapoint),
	}
}

// AddPair seeds a pair definition.
func (m *Memory) AddPair(p Pair) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pairs[p.Name] = p
}

// Publish records a median reading for a pair.
func (m *Memory) Publish(pair string, median uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.datapoints[pair] = append(m.datapoints[pair], Datapoint{Pair: pair, Median: median})
}

func (m *Memory) Pair(_ context.Context, name string) (*Pair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pairs[name]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *Memory) DatapointWithMedian(_ context.Context, pair string, median uint64) (*Datapoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.datapoints[pair] {
		if d.Median == median {
			dp := d
			return &dp, nil
		}
	}
	return nil, nil
}
