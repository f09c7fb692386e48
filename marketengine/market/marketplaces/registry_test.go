package marketplaces

import (
	"context"
	"testing"

	"github.com/waxlabs/marketengine/marketengine/assetregistry"
	"github.com/waxlabs/marketengine/marketengine/database/memory"
	"github.com/waxlabs/marketengine/marketengine/database/models"
	"github.com/waxlabs/marketengine/marketengine/market"
)

func newRegistry(t *testing.T) (*Registry, *assetregistry.Memory) {
	t.Helper()
	store := memory.NewStore()
	err := store.Config().Save(context.Background(), &models.MarketConfig{
		ID:                   1,
		Version:              "1.2.1",
		DefaultMarketCreator: "fees.market",
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	accounts := assetregistry.NewMemory("market.engine")
	return NewRegistry(store.Marketplaces(), store.Config(), accounts), accounts
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		actor       string
		creator     string
		marketplace string
		accounts    []string
		wantErr     string
		wantAuth    bool
	}{
		{
			name:        "fresh name",
			actor:       "alice",
			creator:     "alice",
			marketplace: "alphamarket",
		},
		{
			name:        "actor is not the creator",
			actor:       "bob",
			creator:     "alice",
			marketplace: "alphamarket",
			wantAuth:    true,
		},
		{
			name:        "empty name is reserved",
			actor:       "alice",
			creator:     "alice",
			marketplace: "",
			wantErr:     "A marketplace with this name already exists",
		},
		{
			name:        "name of another account",
			actor:       "alice",
			creator:     "alice",
			marketplace: "bob",
			accounts:    []string{"bob"},
			wantErr:     "Can't create a marketplace with a name of an existing account without its authorization",
			wantAuth:    true,
		},
		{
			name:        "own account name",
			actor:       "bob",
			creator:     "bob",
			marketplace: "bob",
			accounts:    []string{"bob"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, accounts := newRegistry(t)
			for _, a := range tt.accounts {
				accounts.AddAccount(a)
			}
			err := r.Register(ctx, tt.actor, tt.creator, tt.marketplace)
			if tt.wantAuth && !market.IsAuthorization(err) {
				t.Fatalf("Register() error = %v, want authorization error", err)
			}
			if tt.wantErr != "" {
				if err == nil || err.Error() != tt.wantErr {
					t.Fatalf("Register() error = %v, want %q", err, tt.wantErr)
				}
			}
			if tt.wantAuth || tt.wantErr != "" {
				return
			}
			if err != nil {
				t.Fatalf("Register() error = %v", err)
			}
			exists, err := r.Exists(ctx, tt.marketplace)
			if err != nil || !exists {
				t.Errorf("Exists(%q) = %v, %v after Register", tt.marketplace, exists, err)
			}
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	r, _ := newRegistry(t)

	if err := r.Register(ctx, "alice", "alice", "alphamarket"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	err := r.Register(ctx, "bob", "bob", "alphamarket")
	if want := "A marketplace with this name already exists"; err == nil || err.Error() != want {
		t.Errorf("Register() error = %v, want %q", err, want)
	}
}

func TestCreator(t *testing.T) {
	ctx := context.Background()
	r, _ := newRegistry(t)

	if err := r.Register(ctx, "alice", "alice", "alphamarket"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	creator, err := r.Creator(ctx, "alphamarket")
	if err != nil || creator != "alice" {
		t.Errorf("Creator(alphamarket) = %q, %v, want alice", creator, err)
	}

	// The default marketplace resolves to the configured platform account.
	creator, err = r.Creator(ctx, models.DefaultMarketplace)
	if err != nil || creator != "fees.market" {
		t.Errorf("Creator(default) = %q, %v, want fees.market", creator, err)
	}

	_, err = r.Creator(ctx, "ghostmarket")
	if !market.IsNotFound(err) {
		t.Errorf("Creator(ghostmarket) error = %v, want not found", err)
	}
}

func TestExistsDefault(t *testing.T) {
	r, _ := newRegistry(t)
	exists, err := r.Exists(context.Background(), models.DefaultMarketplace)
	if err != nil || !exists {
		t.Errorf("Exists(default) = %v, %v, want true", exists, err)
	}
}

func TestBootstrap(t *testing.T) {
	ctx := context.Background()
	r, _ := newRegistry(t)

	if err := r.Bootstrap(ctx, "fees.market"); err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}
	// Idempotent.
	if err := r.Bootstrap(ctx, "fees.market"); err != nil {
		t.Fatalf("Bootstrap() twice error = %v", err)
	}

	creator, err := r.Creator(ctx, models.DefaultMarketplace)
	if err != nil || creator != "fees.market" {
		t.Errorf("Creator(default) = %q, %v, want fees.market", creator, err)
	}
}
