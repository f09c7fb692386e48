// Package memory provides in-memory implementations of the repository
// interfaces. They back engine tests and the ephemeral run mode, and keep
// the same contracts as the Postgres repositories: lookups return (nil, nil)
// on missing rows and uniqueness violations surface as ConflictError.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/waxlabs/marketengine/marketengine/database/models"
	"github.com/waxlabs/marketengine/marketengine/database/repositories"
)

// Store holds every table behind a single mutex. All repository views share
// it, so cross-repository sequences observe one consistent state.
type Store struct {
	mu sync.Mutex

	config       *models.MarketConfig
	tokens       map[string]models.SupportedToken
	pairs        []models.SymbolPair
	nextPairID   int64
	marketplaces map[string]models.Marketplace
	balances     map[balanceKey]models.Balance
	sales        map[int64]models.Sale
	auctions     map[int64]models.Auction
	buyoffers    map[int64]models.Buyoffer
	counters     map[string]int64
	trades       []models.TradeRecord
	nextTradeID  int64
}

type balanceKey struct {
	owner string
	code  string
}

func NewStore() *Store {
	return &Store{
		tokens:       make(map[string]models.SupportedToken),
		nextPairID:   1,
		marketplaces: make(map[string]models.Marketplace),
		balances:     make(map[balanceKey]models.Balance),
		sales:        make(map[int64]models.Sale),
		auctions:     make(map[int64]models.Auction),
		buyoffers:    make(map[int64]models.Buyoffer),
		counters:     make(map[string]int64),
		nextTradeID:  1,
	}
}

func (s *Store) Config() repositories.ConfigRepository            { return (*configRepo)(s) }
func (s *Store) Marketplaces() repositories.MarketplaceRepository { return (*marketplaceRepo)(s) }
func (s *Store) Balances() repositories.BalanceRepository         { return (*balanceRepo)(s) }
func (s *Store) Sales() repositories.SaleRepository               { return (*saleRepo)(s) }
func (s *Store) Auctions() repositories.AuctionRepository         { return (*auctionRepo)(s) }
func (s *Store) Buyoffers() repositories.BuyofferRepository       { return (*buyofferRepo)(s) }
func (s *Store) Counters() repositories.CounterRepository         { return (*counterRepo)(s) }
func (s *Store) Trades() repositories.TradeRepository             { return (*tradeRepo)(s) }

type configRepo Store

func (r *configRepo) Get(_ context.Context) (*models.MarketConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.config == nil {
		return nil, nil
	}
	cfg := *r.config
	return &cfg, nil
}

func (r *configRepo) Save(_ context.Context, cfg *models.MarketConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := *cfg
	saved.ID = 1
	saved.UpdatedAt = time.Now()
	r.config = &saved
	return nil
}

func (r *configRepo) SupportedTokens(_ context.Context) ([]*models.SupportedToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	toks := make([]*models.SupportedToken, 0, len(r.tokens))
	for code := range r.tokens {
		tok := r.tokens[code]
		toks = append(toks, &tok)
	}
	sort.Slice(toks, func(i, j int) bool { return toks[i].Code < toks[j].Code })
	return toks, nil
}

func (r *configRepo) SupportedToken(_ context.Context, code string) (*models.SupportedToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tok, ok := r.tokens[code]
	if !ok {
		return nil, nil
	}
	return &tok, nil
}

func (r *configRepo) AddSupportedToken(_ context.Context, tok *models.SupportedToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[tok.Code]; ok {
		return &repositories.ConflictError{Entity: "supported_token", Field: "code", Value: tok.Code}
	}
	r.tokens[tok.Code] = *tok
	return nil
}

func (r *configRepo) SymbolPairs(_ context.Context) ([]*models.SymbolPair, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pairs := make([]*models.SymbolPair, len(r.pairs))
	for i := range r.pairs {
		pair := r.pairs[i]
		pairs[i] = &pair
	}
	return pairs, nil
}

func (r *configRepo) AddSymbolPair(_ context.Context, pair *models.SymbolPair) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := *pair
	saved.ID = r.nextPairID
	r.nextPairID++
	r.pairs = append(r.pairs, saved)
	pair.ID = saved.ID
	return nil
}

type marketplaceRepo Store

func (r *marketplaceRepo) Get(_ context.Context, name string) (*models.Marketplace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.marketplaces[name]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *marketplaceRepo) Create(_ context.Context, m *models.Marketplace) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.marketplaces[m.Name]; ok {
		return &repositories.ConflictError{Entity: "marketplace", Field: "name", Value: m.Name}
	}
	r.marketplaces[m.Name] = *m
	return nil
}

type balanceRepo Store

func (r *balanceRepo) Get(_ context.Context, owner, code string) (*models.Balance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.balances[balanceKey{owner, code}]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *balanceRepo) GetByOwner(_ context.Context, owner string) ([]*models.Balance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Balance
	for key := range r.balances {
		if key.owner != owner {
			continue
		}
		b := r.balances[key]
		out = append(out, &b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *balanceRepo) Upsert(_ context.Context, b *models.Balance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[balanceKey{b.Owner, b.Code}] = *b
	return nil
}

func (r *balanceRepo) Delete(_ context.Context, owner, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.balances, balanceKey{owner, code})
	return nil
}

type saleRepo Store

func (r *saleRepo) Get(_ context.Context, saleID int64) (*models.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sales[saleID]
	if !ok {
		return nil, nil
	}
	return copySale(&s), nil
}

func (r *saleRepo) GetBySeller(_ context.Context, seller string) ([]*models.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Sale
	for id := range r.sales {
		s := r.sales[id]
		if s.Seller == seller {
			out = append(out, copySale(&s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SaleID < out[j].SaleID })
	return out, nil
}

func (r *saleRepo) Create(_ context.Context, s *models.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sales[s.SaleID]; ok {
		return &repositories.ConflictError{Entity: "sale", Field: "sale_id", Value: s.SaleID}
	}
	r.sales[s.SaleID] = *copySale(s)
	return nil
}

func (r *saleRepo) Update(_ context.Context, s *models.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sales[s.SaleID] = *copySale(s)
	return nil
}

func (r *saleRepo) Delete(_ context.Context, saleID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sales, saleID)
	return nil
}

type auctionRepo Store

func (r *auctionRepo) Get(_ context.Context, auctionID int64) (*models.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.auctions[auctionID]
	if !ok {
		return nil, nil
	}
	return copyAuction(&a), nil
}

func (r *auctionRepo) GetBySeller(_ context.Context, seller string) ([]*models.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Auction
	for id := range r.auctions {
		a := r.auctions[id]
		if a.Seller == seller {
			out = append(out, copyAuction(&a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AuctionID < out[j].AuctionID })
	return out, nil
}

func (r *auctionRepo) Create(_ context.Context, a *models.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.auctions[a.AuctionID]; ok {
		return &repositories.ConflictError{Entity: "auction", Field: "auction_id", Value: a.AuctionID}
	}
	r.auctions[a.AuctionID] = *copyAuction(a)
	return nil
}

func (r *auctionRepo) Update(_ context.Context, a *models.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.auctions[a.AuctionID] = *copyAuction(a)
	return nil
}

func (r *auctionRepo) Delete(_ context.Context, auctionID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.auctions, auctionID)
	return nil
}

type buyofferRepo Store

func (r *buyofferRepo) Get(_ context.Context, buyofferID int64) (*models.Buyoffer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.buyoffers[buyofferID]
	if !ok {
		return nil, nil
	}
	return copyBuyoffer(&b), nil
}

func (r *buyofferRepo) Create(_ context.Context, b *models.Buyoffer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.buyoffers[b.BuyofferID]; ok {
		return &repositories.ConflictError{Entity: "buyoffer", Field: "buyoffer_id", Value: b.BuyofferID}
	}
	r.buyoffers[b.BuyofferID] = *copyBuyoffer(b)
	return nil
}

func (r *buyofferRepo) Delete(_ context.Context, buyofferID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.buyoffers, buyofferID)
	return nil
}

type counterRepo Store

func (r *counterRepo) Next(_ context.Context, name string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters[name]++
	return r.counters[name], nil
}

type tradeRepo Store

func (r *tradeRepo) Create(_ context.Context, t *models.TradeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := *t
	saved.ID = r.nextTradeID
	saved.AssetIDs = append([]int64(nil), t.AssetIDs...)
	r.nextTradeID++
	r.trades = append(r.trades, saved)
	t.ID = saved.ID
	return nil
}

func (r *tradeRepo) ListSince(_ context.Context, since time.Time) ([]*models.TradeRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.TradeRecord
	for i := range r.trades {
		if r.trades[i].CompletedAt.Before(since) {
			continue
		}
		t := r.trades[i]
		t.AssetIDs = append([]int64(nil), r.trades[i].AssetIDs...)
		out = append(out, &t)
	}
	return out, nil
}

func copySale(s *models.Sale) *models.Sale {
	c := *s
	c.AssetIDs = append([]int64(nil), s.AssetIDs...)
	return &c
}

func copyAuction(a *models.Auction) *models.Auction {
	c := *a
	c.AssetIDs = append([]int64(nil), a.AssetIDs...)
	return &c
}

func copyBuyoffer(b *models.Buyoffer) *models.Buyoffer {
	c := *b
	c.AssetIDs = append([]int64(nil), b.AssetIDs...)
	return &c
}
