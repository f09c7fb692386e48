package market

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Symbol identifies a fungible token together with its fixed decimal
// precision, e.g. "8,WAX" means WAX with 8 decimal places.
type Symbol struct {
	Code      string
	Precision uint8
}

// ParseSymbol parses the "precision,CODE" notation used throughout the
// configuration and the wire format.
func ParseSymbol(s string) (Symbol, error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 || parts[1] == "" {
		return Symbol{}, fmt.Errorf("invalid symbol %q: expected \"precision,CODE\"", s)
	}
	precision, err := strconv.ParseUint(parts[0], 10, 8)
	if err != nil {
		return Symbol{}, fmt.Errorf("invalid symbol %q: %w", s, err)
	}
	code := parts[1]
	if code != strings.ToUpper(code) {
		return Symbol{}, fmt.Errorf("invalid symbol %q: code must be uppercase", s)
	}
	return Symbol{Code: code, Precision: uint8(precision)}, nil
}

// MustSymbol parses a symbol and panics on failure. Intended for constants
// and test fixtures only.
func MustSymbol(s string) Symbol {
	sym, err := ParseSymbol(s)
	if err != nil {
		panic(err)
	}
	return sym
}

func (s Symbol) String() string {
	return fmt.Sprintf("%d,%s", s.Precision, s.Code)
}

// IsZero reports whether the symbol is the zero value.
func (s Symbol) IsZero() bool {
	return s.Code == ""
}

// Asset is a fixed-point token quantity. Amount is expressed in the smallest
// unit of the symbol, so "1.00000000 WAX" has Amount 100000000.
type Asset struct {
	Amount int64
	Symbol Symbol
}

// ParseAsset parses the human notation "100.00000000 WAX". The number of
// decimal places determines the symbol precision.
func ParseAsset(s string) (Asset, error) {
	parts := strings.SplitN(strings.TrimSpace(s), " ", 2)
	if len(parts) != 2 {
		return Asset{}, fmt.Errorf("invalid asset %q: expected \"amount CODE\"", s)
	}
	var precision uint8
	if idx := strings.IndexByte(parts[0], '.'); idx >= 0 {
		precision = uint8(len(parts[0]) - idx - 1)
	}
	d, err := decimal.NewFromString(parts[0])
	if err != nil {
		return Asset{}, fmt.Errorf("invalid asset %q: %w", s, err)
	}
	amount := d.Shift(int32(precision))
	if !amount.IsInteger() {
		return Asset{}, fmt.Errorf("invalid asset %q: inconsistent precision", s)
	}
	return Asset{
		Amount: amount.IntPart(),
		Symbol: Symbol{Code: parts[1], Precision: precision},
	}, nil
}

// MustAsset parses an asset and panics on failure. For fixtures only.
func MustAsset(s string) Asset {
	a, err := ParseAsset(s)
	if err != nil {
		panic(err)
	}
	return a
}

// NewAsset builds an asset from a raw smallest-unit amount.
func NewAsset(amount int64, sym Symbol) Asset {
	return Asset{Amount: amount, Symbol: sym}
}

func (a Asset) String() string {
	return fmt.Sprintf("%s %s", decimal.New(a.Amount, -int32(a.Symbol.Precision)).StringFixed(int32(a.Symbol.Precision)), a.Symbol.Code)
}

// Decimal returns the quantity as an exact decimal value.
func (a Asset) Decimal() decimal.Decimal {
	return decimal.New(a.Amount, -int32(a.Symbol.Precision))
}

// IsPositive reports whether the amount is strictly greater than zero.
func (a Asset) IsPositive() bool {
	return a.Amount > 0
}

// SameSymbol reports whether two assets share code and precision.
func (a Asset) SameSymbol(b Asset) bool {
	return a.Symbol == b.Symbol
}

// Add returns a+b. Both assets must share the same symbol.
func (a Asset) Add(b Asset) (Asset, error) {
	if a.Symbol != b.Symbol {
		return Asset{}, fmt.Errorf("cannot add %s and %s", a.Symbol, b.Symbol)
	}
	return Asset{Amount: a.Amount + b.Amount, Symbol: a.Symbol}, nil
}

// Sub returns a-b. Both assets must share the same symbol.
func (a Asset) Sub(b Asset) (Asset, error) {
	if a.Symbol != b.Symbol {
		return Asset{}, fmt.Errorf("cannot subtract %s from %s", b.Symbol, a.Symbol)
	}
	return Asset{Amount: a.Amount - b.Amount, Symbol: a.Symbol}, nil
}
