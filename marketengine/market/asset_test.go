package market

import (
	"testing"
)

func TestParseSymbol(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Symbol
		wantErr bool
	}{
		{
			name:  "wax",
			input: "8,WAX",
			want:  Symbol{Code: "WAX", Precision: 8},
		},
		{
			name:  "zero precision",
			input: "0,NFT",
			want:  Symbol{Code: "NFT", Precision: 0},
		},
		{
			name:    "missing code",
			input:   "8,",
			wantErr: true,
		},
		{
			name:    "missing precision",
			input:   "WAX",
			wantErr: true,
		},
		{
			name:    "lowercase code",
			input:   "8,wax",
			wantErr: true,
		},
		{
			name:    "precision overflow",
			input:   "300,WAX",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSymbol(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSymbol(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseSymbol(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSymbolRoundTrip(t *testing.T) {
	sym := MustSymbol("4,USD")
	if got := sym.String(); got != "4,USD" {
		t.Errorf("String() = %q, want %q", got, "4,USD")
	}
}

func TestParseAsset(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Asset
		wantErr bool
	}{
		{
			name:  "full precision",
			input: "100.00000000 WAX",
			want:  Asset{Amount: 10000000000, Symbol: Symbol{Code: "WAX", Precision: 8}},
		},
		{
			name:  "fractional",
			input: "0.50000000 WAX",
			want:  Asset{Amount: 50000000, Symbol: Symbol{Code: "WAX", Precision: 8}},
		},
		{
			name:  "no decimals",
			input: "5 TOK",
			want:  Asset{Amount: 5, Symbol: Symbol{Code: "TOK", Precision: 0}},
		},
		{
			name:  "negative",
			input: "-1.00 USD",
			want:  Asset{Amount: -100, Symbol: Symbol{Code: "USD", Precision: 2}},
		},
		{
			name:    "missing code",
			input:   "100.00000000",
			wantErr: true,
		},
		{
			name:    "not a number",
			input:   "abc WAX",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAsset(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAsset(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseAsset(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestAssetString(t *testing.T) {
	a := MustAsset("100.00000000 WAX")
	if got := a.String(); got != "100.00000000 WAX" {
		t.Errorf("String() = %q, want %q", got, "100.00000000 WAX")
	}

	b := NewAsset(1, MustSymbol("8,WAX"))
	if got := b.String(); got != "0.00000001 WAX" {
		t.Errorf("String() = %q, want %q", got, "0.00000001 WAX")
	}
}

func TestAssetAddSub(t *testing.T) {
	a := MustAsset("1.00000000 WAX")
	b := MustAsset("0.25000000 WAX")

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if sum.Amount != 125000000 {
		t.Errorf("Add() amount = %d, want 125000000", sum.Amount)
	}

	diff, err := a.Sub(b)
	if err != nil {
		t.Fatalf("Sub() error = %v", err)
	}
	if diff.Amount != 75000000 {
		t.Errorf("Sub() amount = %d, want 75000000", diff.Amount)
	}

	if _, err := a.Add(MustAsset("1.00 USD")); err == nil {
		t.Error("Add() with mismatched symbols should fail")
	}
	if _, err := a.Sub(MustAsset("1.0000 USD")); err == nil {
		t.Error("Sub() with mismatched symbols should fail")
	}
}

func TestValidateAssetIDs(t *testing.T) {
	tests := []struct {
		name    string
		ids     []int64
		wantErr string
	}{
		{
			name: "valid",
			ids:  []int64{1, 2, 3},
		},
		{
			name:    "empty",
			ids:     nil,
			wantErr: "asset_ids needs to contain at least one id",
		},
		{
			name:    "duplicates",
			ids:     []int64{1, 2, 1},
			wantErr: "The asset_ids must not contain duplicates",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAssetIDs(tt.ids)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("ValidateAssetIDs() error = %v", err)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("ValidateAssetIDs() error = %v, want %q", err, tt.wantErr)
			}
			if !IsValidation(err) {
				t.Errorf("error should be a validation error, got %T", err)
			}
		})
	}
}

func TestSameAssetSet(t *testing.T) {
	if !SameAssetSet([]int64{3, 1, 2}, []int64{1, 2, 3}) {
		t.Error("permuted sets should match")
	}
	if SameAssetSet([]int64{1, 2}, []int64{1, 2, 3}) {
		t.Error("different lengths should not match")
	}
	if SameAssetSet([]int64{1, 2, 4}, []int64{1, 2, 3}) {
		t.Error("different ids should not match")
	}
}

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"authorization", ErrAuth("user1"), IsAuthorization},
		{"not found", ErrNotFound("sale", 1), IsNotFound},
		{"precondition", ErrPrecondition("not active"), IsPrecondition},
		{"validation", ErrValidation("bad input"), IsValidation},
		{"invariant", ErrInvariant("broken binding"), IsInvariantViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.check(tt.err) {
				t.Errorf("predicate did not match %v", tt.err)
			}
		})
	}

	if IsNotFound(ErrValidation("x")) {
		t.Error("predicates should not cross-match")
	}
}
