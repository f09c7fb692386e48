// Package handlers routes inbound notifications from the external asset
// registry and token ledger contracts to the engines. Every notification
// carries the account it came from; custody events claiming to be the
// asset registry but sent by anyone else are rejected instead of silently
// dropped.
package handlers

import (
	"context"

	"github.com/waxlabs/marketengine/marketengine/assetregistry"
	"github.com/waxlabs/marketengine/marketengine/database/repositories"
	"github.com/waxlabs/marketengine/marketengine/market"
	"github.com/waxlabs/marketengine/marketengine/market/auctions"
	"github.com/waxlabs/marketengine/marketengine/market/escrow"
	"github.com/waxlabs/marketengine/marketengine/market/sales"
	"github.com/waxlabs/marketengine/marketengine/tokenledger"
)

// Memos the router understands.
const (
	MemoDeposit  = "deposit"
	MemoSale     = "sale"
	MemoBuyoffer = "buyoffer"
	MemoAuction  = "auction"
)

type Router struct {
	// EngineAccount is the identity the engine holds custody and
	// balances under. Notifications addressed elsewhere are ignored.
	engineAccount string

	config   repositories.ConfigRepository
	escrow   *escrow.Ledger
	sales    *sales.Engine
	auctions *auctions.Engine
}

func NewRouter(engineAccount string, config repositories.ConfigRepository, esc *escrow.Ledger, saleEngine *sales.Engine, auctionEngine *auctions.Engine) *Router {
	return &Router{
		engineAccount: engineAccount,
		config:        config,
		escrow:        esc,
		sales:         saleEngine,
		auctions:      auctionEngine,
	}
}

// HandleTokenTransfer processes a fungible token transfer notification.
// Only transfers addressed to the engine with the memo "deposit" credit
// escrow, and only when the emitting contract matches the supported-token
// registration.
func (r *Router) HandleTokenTransfer(ctx context.Context, t tokenledger.Transfer) error {
	if t.To != r.engineAccount || t.From == r.engineAccount {
		return nil
	}
	if t.Memo != MemoDeposit {
		return market.ErrValidation("invalid memo")
	}
	return r.escrow.Deposit(ctx, t.Contract, t.From, t.Quantity)
}

// HandleOfferCreated processes a custody transfer-offer notification from
// the asset registry. Offers with memo "sale" bind the matching announced
// sale; offers with memo "buyoffer" wait to be accepted.
func (r *Router) HandleOfferCreated(ctx context.Context, sender string, n assetregistry.OfferCreated) error {
	if err := r.requireRegistry(ctx, sender); err != nil {
		return err
	}
	if n.Recipient != r.engineAccount {
		return nil
	}
	switch n.Memo {
	case MemoSale:
		return r.sales.BindOffer(ctx, n)
	case MemoBuyoffer:
		return nil
	default:
		return market.ErrValidation("Invalid memo")
	}
}

// HandleAssetTransfer processes a custody arrival notification from the
// asset registry. Transfers with memo "auction" activate the sender's
// matching auction; anything else addressed to the engine is rejected so
// assets never arrive unaccounted for.
func (r *Router) HandleAssetTransfer(ctx context.Context, sender string, n assetregistry.AssetTransfer) error {
	if err := r.requireRegistry(ctx, sender); err != nil {
		return err
	}
	if n.To != r.engineAccount {
		return nil
	}
	if n.Memo != MemoAuction {
		return market.ErrValidation("Invalid memo")
	}
	return r.auctions.HandleAssetTransfer(ctx, n.From, n.AssetIDs)
}

func (r *Router) requireRegistry(ctx context.Context, sender string) error {
	cfg, err := r.config.Get(ctx)
	if err != nil {
		return err
	}
	if cfg == nil {
		return market.ErrInvariant("engine configuration has not been initialized")
	}
	if sender != cfg.AssetRegistryAccount {
		return market.ErrAuthf(cfg.AssetRegistryAccount, "notification sent by %s", sender)
	}
	return nil
}
