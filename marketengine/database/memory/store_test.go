package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/waxlabs/marketengine/marketengine/database/models"
	"github.com/waxlabs/marketengine/marketengine/database/repositories"
)

func TestMissingRowsReturnNil(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	if cfg, err := store.Config().Get(ctx); cfg != nil || err != nil {
		t.Errorf("Config().Get() = %v, %v, want nil, nil", cfg, err)
	}
	if tok, err := store.Config().SupportedToken(ctx, "WAX"); tok != nil || err != nil {
		t.Errorf("SupportedToken() = %v, %v, want nil, nil", tok, err)
	}
	if m, err := store.Marketplaces().Get(ctx, "nope"); m != nil || err != nil {
		t.Errorf("Marketplaces().Get() = %v, %v, want nil, nil", m, err)
	}
	if b, err := store.Balances().Get(ctx, "nobody", "WAX"); b != nil || err != nil {
		t.Errorf("Balances().Get() = %v, %v, want nil, nil", b, err)
	}
	if s, err := store.Sales().Get(ctx, 1); s != nil || err != nil {
		t.Errorf("Sales().Get() = %v, %v, want nil, nil", s, err)
	}
}

func TestCreateConflicts(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	sale := &models.Sale{SaleID: 1, Seller: "seller1", AssetIDs: []int64{1}}
	if err := store.Sales().Create(ctx, sale); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	err := store.Sales().Create(ctx, sale)
	var conflict *repositories.ConflictError
	if !errors.As(err, &conflict) {
		t.Errorf("Create() twice error = %v, want ConflictError", err)
	}

	if err := store.Marketplaces().Create(ctx, &models.Marketplace{Name: "m1"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := store.Marketplaces().Create(ctx, &models.Marketplace{Name: "m1"}); !errors.As(err, &conflict) {
		t.Errorf("marketplace Create() twice error = %v, want ConflictError", err)
	}
}

func TestCountersAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	for i := int64(1); i <= 3; i++ {
		got, err := store.Counters().Next(ctx, models.CounterSale)
		if err != nil || got != i {
			t.Fatalf("Next(sale) = %d, %v, want %d", got, err, i)
		}
	}
	got, err := store.Counters().Next(ctx, models.CounterAuction)
	if err != nil || got != 1 {
		t.Errorf("Next(auction) = %d, %v, want 1", got, err)
	}
}

func TestRowsAreCopied(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	sale := &models.Sale{SaleID: 1, Seller: "seller1", AssetIDs: []int64{1, 2}}
	if err := store.Sales().Create(ctx, sale); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	// Mutating the caller's struct after Create must not leak into the
	// store, and vice versa.
	sale.AssetIDs[0] = 99
	sale.Seller = "changed"

	stored, _ := store.Sales().Get(ctx, 1)
	if stored.AssetIDs[0] != 1 || stored.Seller != "seller1" {
		t.Errorf("stored sale = %+v, was mutated through the caller's pointer", stored)
	}

	stored.AssetIDs[1] = 77
	again, _ := store.Sales().Get(ctx, 1)
	if again.AssetIDs[1] != 2 {
		t.Errorf("stored sale mutated through a returned copy: %+v", again)
	}
}

func TestGetBySellerOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	for _, id := range []int64{3, 1, 2} {
		err := store.Sales().Create(ctx, &models.Sale{SaleID: id, Seller: "seller1", AssetIDs: []int64{id}})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	sales, err := store.Sales().GetBySeller(ctx, "seller1")
	if err != nil {
		t.Fatalf("GetBySeller() error = %v", err)
	}
	for i, s := range sales {
		if s.SaleID != int64(i+1) {
			t.Fatalf("sales out of order: %+v", sales)
		}
	}
}

func TestTradeListSince(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := store.Trades().Create(ctx, &models.TradeRecord{
			Kind:        models.TradeKindSale,
			ListingID:   int64(i + 1),
			CompletedAt: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	all, err := store.Trades().ListSince(ctx, time.Time{})
	if err != nil || len(all) != 3 {
		t.Fatalf("ListSince(zero) = %d trades, %v, want 3", len(all), err)
	}
	if all[0].ID != 1 || all[2].ID != 3 {
		t.Errorf("trades out of insertion order: %+v", all)
	}

	recent, err := store.Trades().ListSince(ctx, base.Add(90*time.Minute))
	if err != nil || len(recent) != 1 || recent[0].ListingID != 3 {
		t.Errorf("ListSince(cutoff) = %+v, %v, want only the last trade", recent, err)
	}
}
