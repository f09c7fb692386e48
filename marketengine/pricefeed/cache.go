package pricefeed

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
)

const cacheSize = 10000

// CachedClient wraps a feed client with an LRU read cache. Pair definitions
// and published datapoints are immutable, so entries never expire; only a
// missing datapoint is re-fetched, since the reading may simply not have
// been published yet at the first attempt.
type CachedClient struct {
	inner Client
	pairs *lru.Cache
	data  *lru.Cache
}

func NewCachedClient(inner Client) *CachedClient {
	pairs, _ := lru.New(cacheSize)
	data, _ := lru.New(cacheSize)
	return &CachedClient{inner: inner, pairs: pairs, data: data}
}

func (c *CachedClient) Pair(ctx context.Context, name string) (*Pair, error) {
	if v, ok := c.pairs.Get(name); ok {
		return v.(*Pair), nil
	}
	p, err := c.inner.Pair(ctx, name)
	if err != nil {
		return nil, err
	}
	if p != nil {
		c.pairs.Add(name, p)
	}
	return p, nil
}

func (c *CachedClient) DatapointWithMedian(ctx context.Context, pair string, median uint64) (*Datapoint, error) {
	key := fmt.Sprintf("%s/%d", pair, median)
	if v, ok := c.data.Get(key); ok {
		return v.(*Datapoint), nil
	}
	dp, err := c.inner.DatapointWithMedian(ctx, pair, median)
	if err != nil {
		return nil, err
	}
	if dp != nil {
		c.data.Add(key, dp)
	}
	return dp, nil
}
