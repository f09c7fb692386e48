// Package marketplaces manages the registry of fee-attribution identities.
// Any account may register a marketplace name and earn maker/taker fees on
// trades attributed to it.
package marketplaces

import (
	"context"

	"github.com/waxlabs/marketengine/marketengine/assetregistry"
	"github.com/waxlabs/marketengine/marketengine/database/models"
	"github.com/waxlabs/marketengine/marketengine/database/repositories"
	"github.com/waxlabs/marketengine/marketengine/market"
)

type Registry struct {
	marketplaces repositories.MarketplaceRepository
	config       repositories.ConfigRepository
	accounts     assetregistry.Client
}

func NewRegistry(marketplaces repositories.MarketplaceRepository, config repositories.ConfigRepository, accounts assetregistry.Client) *Registry {
	return &Registry{marketplaces: marketplaces, config: config, accounts: accounts}
}

// Register creates a new marketplace owned by creator. When the chosen name
// collides with an existing external identity, that identity must be the
// one authorizing, so nobody can squat another account's name.
func (r *Registry) Register(ctx context.Context, actor, creator, name string) error {
	if actor != creator {
		return market.ErrAuth(creator)
	}
	if name == models.DefaultMarketplace {
		return market.ErrValidation("A marketplace with this name already exists")
	}
	exists, err := r.accounts.AccountExists(ctx, name)
	if err != nil {
		return err
	}
	if exists && actor != name {
		return market.ErrAuthMessage(name, "Can't create a marketplace with a name of an existing account without its authorization")
	}
	existing, err := r.marketplaces.Get(ctx, name)
	if err != nil {
		return err
	}
	if existing != nil {
		return market.ErrValidation("A marketplace with this name already exists")
	}
	return r.marketplaces.Create(ctx, &models.Marketplace{Name: name, Creator: creator})
}

// Exists reports whether a marketplace name is registered. The default name
// always exists.
func (r *Registry) Exists(ctx context.Context, name string) (bool, error) {
	if name == models.DefaultMarketplace {
		return true, nil
	}
	m, err := r.marketplaces.Get(ctx, name)
	if err != nil {
		return false, err
	}
	return m != nil, nil
}

// Creator resolves a marketplace name to the account its fee shares are
// credited to. The default marketplace resolves to the configured platform
// creator.
func (r *Registry) Creator(ctx context.Context, name string) (string, error) {
	m, err := r.marketplaces.Get(ctx, name)
	if err != nil {
		return "", err
	}
	if m != nil {
		return m.Creator, nil
	}
	if name != models.DefaultMarketplace {
		return "", market.ErrNotFound("marketplace", name)
	}
	cfg, err := r.config.Get(ctx)
	if err != nil {
		return "", err
	}
	if cfg == nil {
		return "", market.ErrInvariant("engine configuration has not been initialized")
	}
	return cfg.DefaultMarketCreator, nil
}

// Bootstrap seeds the reserved default marketplace row. Idempotent.
func (r *Registry) Bootstrap(ctx context.Context, defaultCreator string) error {
	existing, err := r.marketplaces.Get(ctx, models.DefaultMarketplace)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	return r.marketplaces.Create(ctx, &models.Marketplace{
		Name:    models.DefaultMarketplace,
		Creator: defaultCreator,
	})
}
