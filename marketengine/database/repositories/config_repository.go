package repositories

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/waxlabs/marketengine/marketengine/database/models"
)

// ConfigRepository stores the singleton engine configuration plus the
// supported tokens and registered symbol pairs the engines validate
// against.
type ConfigRepository interface {
	Get(ctx context.Context) (*models.MarketConfig, error)
	Save(ctx context.Context, cfg *models.MarketConfig) error

	SupportedTokens(ctx context.Context) ([]*models.SupportedToken, error)
	SupportedToken(ctx context.Context, code string) (*models.SupportedToken, error)
	AddSupportedToken(ctx context.Context, tok *models.SupportedToken) error

	SymbolPairs(ctx context.Context) ([]*models.SymbolPair, error)
	AddSymbolPair(ctx context.Context, pair *models.SymbolPair) error
}

type configRepository struct {
	db *bun.DB
}

func NewConfigRepository(db *bun.DB) ConfigRepository {
	return &configRepository{db: db}
}

func (r *configRepository) Get(ctx context.Context) (*models.MarketConfig, error) {
	cfg := new(models.MarketConfig)
	err := r.db.NewSelect().Model(cfg).Where("id = 1").Scan(ctx)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("get", "market_config", err)
	}
	return cfg, nil
}

func (r *configRepository) Save(ctx context.Context, cfg *models.MarketConfig) error {
	cfg.ID = 1
	cfg.UpdatedAt = time.Now()
	_, err := r.db.NewInsert().
		Model(cfg).
		On("CONFLICT (id) DO UPDATE").
		Set("version = EXCLUDED.version").
		Set("minimum_bid_increase = EXCLUDED.minimum_bid_increase").
		Set("min_auction_duration = EXCLUDED.min_auction_duration").
		Set("max_auction_duration = EXCLUDED.max_auction_duration").
		Set("auction_reset_duration = EXCLUDED.auction_reset_duration").
		Set("maker_market_fee = EXCLUDED.maker_market_fee").
		Set("taker_market_fee = EXCLUDED.taker_market_fee").
		Set("asset_registry_account = EXCLUDED.asset_registry_account").
		Set("price_feed_account = EXCLUDED.price_feed_account").
		Set("default_market_creator = EXCLUDED.default_market_creator").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return wrapErr("save", "market_config", err)
}

func (r *configRepository) SupportedTokens(ctx context.Context) ([]*models.SupportedToken, error) {
	var toks []*models.SupportedToken
	err := r.db.NewSelect().Model(&toks).Order("code ASC").Scan(ctx)
	if err != nil {
		return nil, wrapErr("list", "supported_token", err)
	}
	return toks, nil
}

func (r *configRepository) SupportedToken(ctx context.Context, code string) (*models.SupportedToken, error) {
	tok := new(models.SupportedToken)
	err := r.db.NewSelect().Model(tok).Where("code = ?", code).Scan(ctx)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("get", "supported_token", err)
	}
	return tok, nil
}

func (r *configRepository) AddSupportedToken(ctx context.Context, tok *models.SupportedToken) error {
	existing, err := r.SupportedToken(ctx, tok.Code)
	if err != nil {
		return err
	}
	if existing != nil {
		return &ConflictError{Entity: "supported_token", Field: "code", Value: tok.Code}
	}
	_, err = r.db.NewInsert().Model(tok).Exec(ctx)
	return wrapErr("create", "supported_token", err)
}

func (r *configRepository) SymbolPairs(ctx context.Context) ([]*models.SymbolPair, error) {
	var pairs []*models.SymbolPair
	err := r.db.NewSelect().Model(&pairs).Order("id ASC").Scan(ctx)
	if err != nil {
		return nil, wrapErr("list", "symbol_pair", err)
	}
	return pairs, nil
}

func (r *configRepository) AddSymbolPair(ctx context.Context, pair *models.SymbolPair) error {
	_, err := r.db.NewInsert().Model(pair).Exec(ctx)
	return wrapErr("create", "symbol_pair", err)
}
