package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/waxlabs/marketengine/marketengine/assetregistry"
	"github.com/waxlabs/marketengine/marketengine/database/memory"
	"github.com/waxlabs/marketengine/marketengine/database/models"
	"github.com/waxlabs/marketengine/marketengine/market"
	"github.com/waxlabs/marketengine/marketengine/market/auctions"
	"github.com/waxlabs/marketengine/marketengine/market/escrow"
	"github.com/waxlabs/marketengine/marketengine/market/fees"
	"github.com/waxlabs/marketengine/marketengine/market/marketplaces"
	"github.com/waxlabs/marketengine/marketengine/market/pricing"
	"github.com/waxlabs/marketengine/marketengine/market/sales"
	"github.com/waxlabs/marketengine/marketengine/pricefeed"
	"github.com/waxlabs/marketengine/marketengine/tokenledger"
)

const (
	engineAccount   = "market.engine"
	registryAccount = "asset.reg"
)

type fixture struct {
	router   *Router
	store    *memory.Store
	registry *assetregistry.Memory
	escrow   *escrow.Ledger
	sales    *sales.Engine
	auctions *auctions.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	err := store.Config().Save(ctx, &models.MarketConfig{
		ID:                   1,
		Version:              "1.2.1",
		MinimumBidIncrease:   0.1,
		MinAuctionDuration:   120,
		MaxAuctionDuration:   2592000,
		AuctionResetDuration: 120,
		MakerMarketFee:       0.01,
		TakerMarketFee:       0.01,
		AssetRegistryAccount: registryAccount,
		PriceFeedAccount:     "price.feed",
		DefaultMarketCreator: "fees.market",
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	err = store.Config().AddSupportedToken(ctx, &models.SupportedToken{
		Code: "WAX", Contract: "eosio.token", Precision: 8,
	})
	if err != nil {
		t.Fatalf("AddSupportedToken() error = %v", err)
	}

	registry := assetregistry.NewMemory(engineAccount)
	registry.AddCollection(assetregistry.Collection{
		Name: "testcollect1", Author: "colauthor", Fee: 0.05,
	})
	registry.AddAsset(assetregistry.Asset{
		ID: 1001, Owner: "seller1", CollectionName: "testcollect1", Transferable: true,
	})

	tokens := tokenledger.NewMemory()
	feed := pricefeed.NewMemory()
	esc := escrow.NewLedger(store.Balances(), store.Config(), tokens)
	mkts := marketplaces.NewRegistry(store.Marketplaces(), store.Config(), registry)
	dist := fees.NewDistributor(esc, mkts, registry, store.Config())
	resolver := pricing.NewResolver(store.Config(), feed)

	now := func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	saleEngine := sales.NewEngine(
		store.Sales(), store.Counters(), store.Config(), store.Trades(),
		registry, esc, dist, resolver, mkts, now,
	)
	auctionEngine := auctions.NewEngine(
		store.Auctions(), store.Counters(), store.Config(), store.Trades(),
		registry, esc, dist, mkts, now,
	)

	router := NewRouter(engineAccount, store.Config(), esc, saleEngine, auctionEngine)
	return &fixture{router: router, store: store, registry: registry, escrow: esc, sales: saleEngine, auctions: auctionEngine}
}

func TestHandleTokenTransfer(t *testing.T) {
	ctx := context.Background()
	quantity := market.MustAsset("10.00000000 WAX")

	tests := []struct {
		name     string
		transfer tokenledger.Transfer
		wantErr  string
		credited bool
	}{
		{
			name: "deposit",
			transfer: tokenledger.Transfer{
				Contract: "eosio.token", From: "user1", To: engineAccount, Quantity: quantity, Memo: "deposit",
			},
			credited: true,
		},
		{
			name: "not addressed to the engine",
			transfer: tokenledger.Transfer{
				Contract: "eosio.token", From: "user1", To: "somebody", Quantity: quantity, Memo: "deposit",
			},
		},
		{
			name: "outbound transfer from the engine",
			transfer: tokenledger.Transfer{
				Contract: "eosio.token", From: engineAccount, To: engineAccount, Quantity: quantity, Memo: "deposit",
			},
		},
		{
			name: "wrong memo",
			transfer: tokenledger.Transfer{
				Contract: "eosio.token", From: "user1", To: engineAccount, Quantity: quantity, Memo: "depposit",
			},
			wantErr: "invalid memo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			err := f.router.HandleTokenTransfer(ctx, tt.transfer)
			if tt.wantErr != "" {
				if err == nil || err.Error() != tt.wantErr {
					t.Fatalf("HandleTokenTransfer() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("HandleTokenTransfer() error = %v", err)
			}
			balance, _ := f.escrow.Balance(ctx, "user1", "WAX")
			if tt.credited && balance != quantity {
				t.Errorf("balance = %v, want %v", balance, quantity)
			}
			if !tt.credited && balance.Amount != 0 {
				t.Errorf("balance = %v, want zero", balance)
			}
		})
	}
}

func TestHandleTokenTransferUnsupportedToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	err := f.router.HandleTokenTransfer(ctx, tokenledger.Transfer{
		Contract: "fake.token", From: "user1", To: engineAccount, Quantity: market.MustAsset("10.00000000 WAX"), Memo: "deposit",
	})
	if want := "The transferred token is not supported"; err == nil || err.Error() != want {
		t.Errorf("HandleTokenTransfer() error = %v, want %q", err, want)
	}
}

func TestHandleOfferCreated(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	saleID, err := f.sales.Announce(ctx, "seller1", []int64{1001}, market.MustAsset("1.00000000 WAX"), market.MustSymbol("8,WAX"), "")
	if err != nil {
		t.Fatalf("Announce() error = %v", err)
	}

	notification := assetregistry.OfferCreated{
		OfferID: 5, Sender: "seller1", Recipient: engineAccount,
		SenderAssetIDs: []int64{1001}, Memo: "sale",
	}

	// Spoofed sender identities are rejected, not ignored.
	err = f.router.HandleOfferCreated(ctx, "fake.reg", notification)
	if !market.IsAuthorization(err) {
		t.Fatalf("HandleOfferCreated() spoofed error = %v, want authorization error", err)
	}
	sale, _ := f.store.Sales().Get(ctx, saleID)
	if sale.OfferID != models.UnboundOffer {
		t.Fatal("spoofed notification must not bind the sale")
	}

	// Offers addressed to someone else are ignored.
	other := notification
	other.Recipient = "somebody"
	if err := f.router.HandleOfferCreated(ctx, registryAccount, other); err != nil {
		t.Fatalf("HandleOfferCreated() unrelated error = %v", err)
	}

	// Buyoffer staging offers are acknowledged without binding anything.
	staged := notification
	staged.Memo = "buyoffer"
	if err := f.router.HandleOfferCreated(ctx, registryAccount, staged); err != nil {
		t.Fatalf("HandleOfferCreated() buyoffer error = %v", err)
	}

	// Unknown memos are rejected.
	unknown := notification
	unknown.Memo = "gift"
	err = f.router.HandleOfferCreated(ctx, registryAccount, unknown)
	if want := "Invalid memo"; err == nil || err.Error() != want {
		t.Fatalf("HandleOfferCreated() error = %v, want %q", err, want)
	}

	if err := f.router.HandleOfferCreated(ctx, registryAccount, notification); err != nil {
		t.Fatalf("HandleOfferCreated() error = %v", err)
	}
	sale, _ = f.store.Sales().Get(ctx, saleID)
	if sale.OfferID != 5 {
		t.Errorf("sale offer_id = %d, want 5", sale.OfferID)
	}
}

func TestHandleAssetTransfer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	auctionID, err := f.auctions.Announce(ctx, "seller1", []int64{1001}, market.MustAsset("1.00000000 WAX"), time.Hour, "")
	if err != nil {
		t.Fatalf("Announce() error = %v", err)
	}

	notification := assetregistry.AssetTransfer{
		From: "seller1", To: engineAccount, AssetIDs: []int64{1001}, Memo: "auction",
	}

	if err := f.router.HandleAssetTransfer(ctx, "fake.reg", notification); !market.IsAuthorization(err) {
		t.Fatalf("HandleAssetTransfer() spoofed error = %v, want authorization error", err)
	}

	other := notification
	other.To = "somebody"
	if err := f.router.HandleAssetTransfer(ctx, registryAccount, other); err != nil {
		t.Fatalf("HandleAssetTransfer() unrelated error = %v", err)
	}

	wrongMemo := notification
	wrongMemo.Memo = "gift"
	err = f.router.HandleAssetTransfer(ctx, registryAccount, wrongMemo)
	if want := "Invalid memo"; err == nil || err.Error() != want {
		t.Fatalf("HandleAssetTransfer() error = %v, want %q", err, want)
	}

	if err := f.router.HandleAssetTransfer(ctx, registryAccount, notification); err != nil {
		t.Fatalf("HandleAssetTransfer() error = %v", err)
	}
	auction, _ := f.store.Auctions().Get(ctx, auctionID)
	if !auction.AssetsTransferred {
		t.Error("auction must be active after the custody arrival")
	}

	// A second arrival matches no open auction and is rejected.
	err = f.router.HandleAssetTransfer(ctx, registryAccount, notification)
	if want := "No announced, non-finished auction by the sender for these assets exists"; err == nil || err.Error() != want {
		t.Errorf("HandleAssetTransfer() error = %v, want %q", err, want)
	}
}
