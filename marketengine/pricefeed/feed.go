// Package pricefeed defines the engine's view of the external oracle that
// publishes periodic median price readings for named symbol pairs.
package pricefeed

import "context"

// Pair describes an oracle pair: the base/quote symbols with their fixed
// precisions, and the precision the published medians are quoted at.
type Pair struct {
	Name            string
	BaseSymbol      string // "precision,CODE"
	QuoteSymbol     string // "precision,CODE"
	QuotedPrecision uint8
}

// Datapoint is one published median reading for a pair.
type Datapoint struct {
	Pair   string
	Median uint64
}

// Client is the outbound interface to the price feed.
type Client interface {
	// Pair returns the pair definition, or nil when the feed does not
	// track a pair with this name.
	Pair(ctx context.Context, name string) (*Pair, error)

	// DatapointWithMedian returns the datapoint whose published median
	// exactly equals the given value, or nil when no such reading exists.
	// Callers commit to a specific reading rather than "latest" so the
	// price cannot drift between quoting and execution.
	DatapointWithMedian(ctx context.Context, pair string, median uint64) (*Datapoint, error)
}
