package fees

import (
	"context"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/waxlabs/marketengine/marketengine/assetregistry"
	"github.com/waxlabs/marketengine/marketengine/database/memory"
	"github.com/waxlabs/marketengine/marketengine/database/models"
	"github.com/waxlabs/marketengine/marketengine/market"
	"github.com/waxlabs/marketengine/marketengine/market/escrow"
	"github.com/waxlabs/marketengine/marketengine/market/marketplaces"
	"github.com/waxlabs/marketengine/marketengine/tokenledger/mock"
)

func newDistributor(t *testing.T, makerFee, takerFee float64) (*Distributor, *escrow.Ledger, *memory.Store) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	err := store.Config().Save(ctx, &models.MarketConfig{
		ID:                   1,
		Version:              "1.2.1",
		MakerMarketFee:       makerFee,
		TakerMarketFee:       takerFee,
		DefaultMarketCreator: "fees.market",
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	registry := assetregistry.NewMemory("market.engine")
	registry.AddCollection(assetregistry.Collection{
		Name:   "cartoons",
		Author: "cartoonist",
		Fee:    0.05,
	})

	tokens := mock.NewMockClient(gomock.NewController(t))
	esc := escrow.NewLedger(store.Balances(), store.Config(), tokens)
	mkts := marketplaces.NewRegistry(store.Marketplaces(), store.Config(), registry)
	return NewDistributor(esc, mkts, registry, store.Config()), esc, store
}

func TestDistribute(t *testing.T) {
	ctx := context.Background()
	d, esc, _ := newDistributor(t, 0.01, 0.01)

	gross := market.MustAsset("100.00000000 WAX")
	dist, err := d.Distribute(ctx, gross, "cartoons", 0.05, "", "", "seller")
	if err != nil {
		t.Fatalf("Distribute() error = %v", err)
	}

	if want := market.MustAsset("5.00000000 WAX"); dist.Collection != want {
		t.Errorf("Collection = %v, want %v", dist.Collection, want)
	}
	if want := market.MustAsset("1.00000000 WAX"); dist.Maker != want {
		t.Errorf("Maker = %v, want %v", dist.Maker, want)
	}
	if want := market.MustAsset("1.00000000 WAX"); dist.Taker != want {
		t.Errorf("Taker = %v, want %v", dist.Taker, want)
	}
	if want := market.MustAsset("93.00000000 WAX"); dist.Beneficiary != want {
		t.Errorf("Beneficiary = %v, want %v", dist.Beneficiary, want)
	}

	// Fee shares land in escrow. Both marketplace names are the default,
	// so the platform creator collects the maker and the taker cut.
	authorBalance, _ := esc.Balance(ctx, "cartoonist", "WAX")
	if want := market.MustAsset("5.00000000 WAX"); authorBalance != want {
		t.Errorf("author balance = %v, want %v", authorBalance, want)
	}
	platformBalance, _ := esc.Balance(ctx, "fees.market", "WAX")
	if want := market.MustAsset("2.00000000 WAX"); platformBalance != want {
		t.Errorf("platform balance = %v, want %v", platformBalance, want)
	}
	sellerBalance, _ := esc.Balance(ctx, "seller", "WAX")
	if want := market.MustAsset("93.00000000 WAX"); sellerBalance != want {
		t.Errorf("seller balance = %v, want %v", sellerBalance, want)
	}
}

func TestDistributeFloorsShares(t *testing.T) {
	ctx := context.Background()
	d, _, _ := newDistributor(t, 0.01, 0.01)

	// 1.99 with 5% collection fee: the exact share is 0.0995, floored to
	// 0.09. Maker and taker floor to 0.01 each.
	gross := market.MustAsset("1.99 TEST")
	dist, err := d.Distribute(ctx, gross, "cartoons", 0.05, "", "", "seller")
	if err != nil {
		t.Fatalf("Distribute() error = %v", err)
	}

	if want := market.MustAsset("0.09 TEST"); dist.Collection != want {
		t.Errorf("Collection = %v, want %v", dist.Collection, want)
	}
	if want := market.MustAsset("0.01 TEST"); dist.Maker != want {
		t.Errorf("Maker = %v, want %v", dist.Maker, want)
	}
	sum := dist.Collection.Amount + dist.Maker.Amount + dist.Taker.Amount + dist.Beneficiary.Amount
	if sum != gross.Amount {
		t.Errorf("shares sum to %d, want %d", sum, gross.Amount)
	}
}

func TestDistributeZeroSharesCreateNoRows(t *testing.T) {
	ctx := context.Background()
	d, _, store := newDistributor(t, 0, 0)

	gross := market.MustAsset("0.00000001 WAX")
	dist, err := d.Distribute(ctx, gross, "cartoons", 0.05, "", "", "seller")
	if err != nil {
		t.Fatalf("Distribute() error = %v", err)
	}
	if dist.Collection.Amount != 0 || dist.Maker.Amount != 0 || dist.Taker.Amount != 0 {
		t.Fatalf("expected zero fee shares, got %+v", dist)
	}
	if dist.Beneficiary != gross {
		t.Errorf("Beneficiary = %v, want %v", dist.Beneficiary, gross)
	}

	if row, _ := store.Balances().Get(ctx, "cartoonist", "WAX"); row != nil {
		t.Errorf("zero collection share must not create a row, got %+v", row)
	}
	if row, _ := store.Balances().Get(ctx, "fees.market", "WAX"); row != nil {
		t.Errorf("zero marketplace share must not create a row, got %+v", row)
	}
}

func TestDistributeRegisteredMarketplaces(t *testing.T) {
	ctx := context.Background()
	d, esc, store := newDistributor(t, 0.02, 0.01)

	for _, m := range []*models.Marketplace{
		{Name: "alphamarket", Creator: "alice"},
		{Name: "betamarket", Creator: "bob"},
	} {
		if err := store.Marketplaces().Create(ctx, m); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	gross := market.MustAsset("100.00000000 WAX")
	if _, err := d.Distribute(ctx, gross, "cartoons", 0.05, "alphamarket", "betamarket", "seller"); err != nil {
		t.Fatalf("Distribute() error = %v", err)
	}

	aliceBalance, _ := esc.Balance(ctx, "alice", "WAX")
	if want := market.MustAsset("2.00000000 WAX"); aliceBalance != want {
		t.Errorf("maker creator balance = %v, want %v", aliceBalance, want)
	}
	bobBalance, _ := esc.Balance(ctx, "bob", "WAX")
	if want := market.MustAsset("1.00000000 WAX"); bobBalance != want {
		t.Errorf("taker creator balance = %v, want %v", bobBalance, want)
	}
}

func TestDistributeSharesExceedGross(t *testing.T) {
	ctx := context.Background()
	d, _, _ := newDistributor(t, 0.5, 0.5)

	gross := market.MustAsset("100.00000000 WAX")
	_, err := d.Distribute(ctx, gross, "cartoons", 0.05, "", "", "seller")
	if !market.IsInvariantViolation(err) {
		t.Fatalf("Distribute() error = %v, want invariant violation", err)
	}
}
