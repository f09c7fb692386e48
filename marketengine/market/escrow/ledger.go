// Package escrow manages the token balances the engine holds on behalf of
// market participants. Every trade settles through these balances; tokens
// only leave through an explicit withdrawal or payout.
package escrow

import (
	"context"

	"github.com/waxlabs/marketengine/marketengine/database/models"
	"github.com/waxlabs/marketengine/marketengine/database/repositories"
	"github.com/waxlabs/marketengine/marketengine/market"
	"github.com/waxlabs/marketengine/marketengine/tokenledger"
)

// Ledger is the escrow balance book. Credit and Debit are internal moves,
// Deposit and Withdraw cross the boundary to the external token ledger.
type Ledger struct {
	balances repositories.BalanceRepository
	config   repositories.ConfigRepository
	tokens   tokenledger.Client
}

func NewLedger(balances repositories.BalanceRepository, config repositories.ConfigRepository, tokens tokenledger.Client) *Ledger {
	return &Ledger{balances: balances, config: config, tokens: tokens}
}

// Deposit credits an inbound token transfer to the sender's escrow balance.
// The token must be registered as supported with the same symbol code,
// precision and issuing contract.
func (l *Ledger) Deposit(ctx context.Context, contract, owner string, quantity market.Asset) error {
	tok, err := l.config.SupportedToken(ctx, quantity.Symbol.Code)
	if err != nil {
		return err
	}
	if tok == nil || tok.Contract != contract || tok.Precision != quantity.Symbol.Precision {
		return market.ErrValidation("The transferred token is not supported")
	}
	return l.Credit(ctx, owner, quantity)
}

// Withdraw debits the owner's escrow balance and requests an external token
// transfer for the same quantity. Only the owner may withdraw.
func (l *Ledger) Withdraw(ctx context.Context, actor, owner string, quantity market.Asset) error {
	if actor != owner {
		return market.ErrAuth(owner)
	}
	if !quantity.IsPositive() {
		return market.ErrValidation("token_to_withdraw must be positive")
	}
	if err := l.Debit(ctx, owner, quantity); err != nil {
		return err
	}
	return l.tokens.Transfer(ctx, owner, quantity, "Withdrawal")
}

// Credit adds a quantity to the owner's balance, creating the row when
// needed. Zero credits never create rows.
func (l *Ledger) Credit(ctx context.Context, owner string, quantity market.Asset) error {
	if quantity.Amount < 0 {
		return market.ErrInvariant("cannot credit a negative quantity")
	}
	if quantity.Amount == 0 {
		return nil
	}
	row, err := l.balances.Get(ctx, owner, quantity.Symbol.Code)
	if err != nil {
		return err
	}
	if row == nil {
		row = &models.Balance{
			Owner:     owner,
			Code:      quantity.Symbol.Code,
			Precision: quantity.Symbol.Precision,
		}
	}
	row.Amount += quantity.Amount
	return l.balances.Upsert(ctx, row)
}

// Debit removes a quantity from the owner's balance, deleting the row when
// it reaches zero.
func (l *Ledger) Debit(ctx context.Context, owner string, quantity market.Asset) error {
	if quantity.Amount < 0 {
		return market.ErrInvariant("cannot debit a negative quantity")
	}
	if quantity.Amount == 0 {
		return nil
	}
	rows, err := l.balances.GetByOwner(ctx, owner)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return market.ErrValidation("The specified account does not have a balance table row")
	}
	var row *models.Balance
	for _, b := range rows {
		if b.Code == quantity.Symbol.Code && b.Precision == quantity.Symbol.Precision {
			row = b
			break
		}
	}
	if row == nil {
		return market.ErrValidation("The specified account does not have a balance for the symbol specified in the quantity")
	}
	if row.Amount < quantity.Amount {
		return market.ErrValidation("The specified account's balance is lower than the specified quantity")
	}
	row.Amount -= quantity.Amount
	if row.Amount == 0 {
		return l.balances.Delete(ctx, owner, row.Code)
	}
	return l.balances.Upsert(ctx, row)
}

// PayOut debits the owner's escrow and sends the quantity out through the
// token ledger in one step. Used to settle sellers immediately instead of
// leaving proceeds escrowed.
func (l *Ledger) PayOut(ctx context.Context, owner string, quantity market.Asset, memo string) error {
	if err := l.Debit(ctx, owner, quantity); err != nil {
		return err
	}
	return l.tokens.Transfer(ctx, owner, quantity, memo)
}

// Balance returns the owner's current position for a symbol code, or a zero
// asset when no row exists.
func (l *Ledger) Balance(ctx context.Context, owner, code string) (market.Asset, error) {
	row, err := l.balances.Get(ctx, owner, code)
	if err != nil {
		return market.Asset{}, err
	}
	if row == nil {
		return market.Asset{}, nil
	}
	return row.Quantity(), nil
}

// CheckBalance verifies the owner could cover a debit without mutating
// anything. Engines call it during validation so failures abort before any
// state change.
func (l *Ledger) CheckBalance(ctx context.Context, owner string, quantity market.Asset) error {
	rows, err := l.balances.GetByOwner(ctx, owner)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return market.ErrValidation("The specified account does not have a balance table row")
	}
	for _, b := range rows {
		if b.Code == quantity.Symbol.Code && b.Precision == quantity.Symbol.Precision {
			if b.Amount < quantity.Amount {
				return market.ErrValidation("The specified account's balance is lower than the specified quantity")
			}
			return nil
		}
	}
	return market.ErrValidation("The specified account does not have a balance for the symbol specified in the quantity")
}
