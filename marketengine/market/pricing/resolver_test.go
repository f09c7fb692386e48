package pricing

import (
	"context"
	"testing"

	"github.com/waxlabs/marketengine/marketengine/database/memory"
	"github.com/waxlabs/marketengine/marketengine/database/models"
	"github.com/waxlabs/marketengine/marketengine/market"
	"github.com/waxlabs/marketengine/marketengine/pricefeed"
)

// newResolver seeds a feed with a WAXUSD pair (base 8,WAX quote 2,USD,
// medians quoted at 4 decimals) and registers WAX and USD as supported
// tokens.
func newResolver(t *testing.T) (*Resolver, *memory.Store, *pricefeed.Memory) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	for _, tok := range []*models.SupportedToken{
		{Code: "WAX", Contract: "eosio.token", Precision: 8},
		{Code: "USD", Contract: "stable.token", Precision: 2},
	} {
		if err := store.Config().AddSupportedToken(ctx, tok); err != nil {
			t.Fatalf("AddSupportedToken() error = %v", err)
		}
	}

	feed := pricefeed.NewMemory()
	feed.AddPair(pricefeed.Pair{
		Name:            "WAXUSD",
		BaseSymbol:      "8,WAX",
		QuoteSymbol:     "2,USD",
		QuotedPrecision: 4,
	})

	return NewResolver(store.Config(), feed), store, feed
}

func TestRegisterPair(t *testing.T) {
	tests := []struct {
		name       string
		pairName   string
		invert     bool
		listing    string
		settlement string
		wantErr    string
	}{
		{
			name:       "non inverted",
			pairName:   "WAXUSD",
			listing:    "8,WAX",
			settlement: "2,USD",
		},
		{
			name:       "inverted",
			pairName:   "WAXUSD",
			invert:     true,
			listing:    "2,USD",
			settlement: "8,WAX",
		},
		{
			name:       "same symbols",
			pairName:   "WAXUSD",
			listing:    "8,WAX",
			settlement: "8,WAX",
			wantErr:    "Listing symbol and settlement symbol must be different",
		},
		{
			name:       "unknown feed pair",
			pairName:   "WAXBTC",
			listing:    "8,WAX",
			settlement: "2,USD",
			wantErr:    "The provided pair name does not exist in the price feed",
		},
		{
			name:       "unsupported settlement token",
			pairName:   "WAXUSD",
			listing:    "8,WAX",
			settlement: "2,EUR",
			wantErr:    "The settlement symbol does not belong to a supported token",
		},
		{
			name:       "listing precision wrong for non inverted",
			pairName:   "WAXUSD",
			listing:    "4,WAX",
			settlement: "2,USD",
			wantErr:    "The listing symbol precision needs to be equal to the feed base symbol precision for non inverted pairs",
		},
		{
			name:       "settlement precision wrong for non inverted",
			pairName:   "WAXUSD",
			listing:    "8,ZZZ",
			settlement: "8,WAX",
			wantErr:    "The settlement symbol precision needs to be equal to the feed quote symbol precision for non inverted pairs",
		},
		{
			name:       "listing precision wrong for inverted",
			pairName:   "WAXUSD",
			invert:     true,
			listing:    "4,USD",
			settlement: "8,WAX",
			wantErr:    "The listing symbol precision needs to be equal to the feed quote symbol precision for inverted pairs",
		},
		{
			name:       "settlement precision wrong for inverted",
			pairName:   "WAXUSD",
			invert:     true,
			listing:    "2,ZZZ",
			settlement: "2,USD",
			wantErr:    "The settlement symbol precision needs to be equal to the feed base symbol precision for inverted pairs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := newResolver(t)
			err := r.RegisterPair(context.Background(), tt.pairName, tt.invert,
				market.MustSymbol(tt.listing), market.MustSymbol(tt.settlement))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("RegisterPair() error = %v", err)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("RegisterPair() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestRegisterPairDuplicate(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newResolver(t)

	listing := market.MustSymbol("8,WAX")
	settlement := market.MustSymbol("2,USD")
	if err := r.RegisterPair(ctx, "WAXUSD", false, listing, settlement); err != nil {
		t.Fatalf("RegisterPair() error = %v", err)
	}
	err := r.RegisterPair(ctx, "WAXUSD", false, listing, settlement)
	want := "There already exists a symbol pair with the specified listing - settlement symbol combination"
	if err == nil || err.Error() != want {
		t.Errorf("RegisterPair() error = %v, want %q", err, want)
	}
}

func TestSupportsCombination(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newResolver(t)

	wax := market.MustSymbol("8,WAX")
	usd := market.MustSymbol("2,USD")

	if ok, _ := r.SupportsCombination(ctx, wax, wax); !ok {
		t.Error("identical symbols must always be supported")
	}
	if ok, _ := r.SupportsCombination(ctx, usd, wax); ok {
		t.Error("unregistered combination must not be supported")
	}
	if err := r.RegisterPair(ctx, "WAXUSD", true, usd, wax); err != nil {
		t.Fatalf("RegisterPair() error = %v", err)
	}
	if ok, _ := r.SupportsCombination(ctx, usd, wax); !ok {
		t.Error("registered combination must be supported")
	}
	if ok, _ := r.SupportsCombination(ctx, wax, usd); ok {
		t.Error("pairs are directional, the reverse combination is separate")
	}
}

func TestResolveDirect(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newResolver(t)

	price := market.MustAsset("10.00000000 WAX")
	got, err := r.Resolve(ctx, price, price.Symbol, 0)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != price {
		t.Errorf("Resolve() = %v, want %v", got, price)
	}

	_, err = r.Resolve(ctx, price, price.Symbol, 500)
	if want := "intended median needs to be 0 for direct sales"; err == nil || err.Error() != want {
		t.Errorf("Resolve() error = %v, want %q", err, want)
	}
}

func TestResolveMultiply(t *testing.T) {
	ctx := context.Background()
	r, _, feed := newResolver(t)

	wax := market.MustSymbol("8,WAX")
	usd := market.MustSymbol("2,USD")
	if err := r.RegisterPair(ctx, "WAXUSD", false, wax, usd); err != nil {
		t.Fatalf("RegisterPair() error = %v", err)
	}
	// 0.0500 USD per WAX.
	feed.Publish("WAXUSD", 500)

	tests := []struct {
		name    string
		listing string
		want    string
	}{
		{"exact", "100.00000000 WAX", "5.00 USD"},
		{"truncates down", "1.00000001 WAX", "0.05 USD"},
		{"below smallest unit", "0.10000000 WAX", "0.00 USD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(ctx, market.MustAsset(tt.listing), usd, 500)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if want := market.MustAsset(tt.want); got != want {
				t.Errorf("Resolve(%s) = %v, want %v", tt.listing, got, want)
			}
		})
	}
}

func TestResolveDivide(t *testing.T) {
	ctx := context.Background()
	r, _, feed := newResolver(t)

	wax := market.MustSymbol("8,WAX")
	usd := market.MustSymbol("2,USD")
	if err := r.RegisterPair(ctx, "WAXUSD", true, usd, wax); err != nil {
		t.Fatalf("RegisterPair() error = %v", err)
	}
	// 0.0500 and 0.0300 USD per WAX.
	feed.Publish("WAXUSD", 500)
	feed.Publish("WAXUSD", 300)

	tests := []struct {
		name    string
		listing string
		median  uint64
		want    string
	}{
		{"exact", "5.00 USD", 500, "100.00000000 WAX"},
		{"floors the quotient", "1.00 USD", 300, "33.33333333 WAX"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(ctx, market.MustAsset(tt.listing), wax, tt.median)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if want := market.MustAsset(tt.want); got != want {
				t.Errorf("Resolve(%s) = %v, want %v", tt.listing, got, want)
			}
		})
	}
}

func TestResolveErrors(t *testing.T) {
	ctx := context.Background()
	r, _, feed := newResolver(t)

	wax := market.MustSymbol("8,WAX")
	usd := market.MustSymbol("2,USD")

	_, err := r.Resolve(ctx, market.MustAsset("5.00 USD"), wax, 500)
	if want := "The specified listing - settlement symbol combination is not supported"; err == nil || err.Error() != want {
		t.Errorf("Resolve() error = %v, want %q", err, want)
	}

	if err := r.RegisterPair(ctx, "WAXUSD", true, usd, wax); err != nil {
		t.Fatalf("RegisterPair() error = %v", err)
	}
	feed.Publish("WAXUSD", 500)

	_, err = r.Resolve(ctx, market.MustAsset("5.00 USD"), wax, 123)
	if want := "No datapoint with the intended median was found."; err == nil || err.Error() != want {
		t.Errorf("Resolve() error = %v, want %q", err, want)
	}
	if !market.IsInvariantViolation(err) {
		t.Errorf("missing datapoint should be an invariant violation, got %T", err)
	}
}
