// Package tokenledger defines the engine's view of the external fungible
// token ledger. Balances held there are distinct from the engine's escrow.
package tokenledger

import (
	"context"

	"github.com/waxlabs/marketengine/marketengine/market"
)

// Client is the outbound interface to the token ledger.
type Client interface {
	// Transfer sends tokens from the engine's account to a recipient.
	Transfer(ctx context.Context, to string, quantity market.Asset, memo string) error
}

// Transfer is the inbound notification emitted when tokens move on the
// ledger. Contract identifies the issuing token contract, which must match
// the supported-token registration for deposits to be accepted.
type Transfer struct {
	Contract string
	From     string
	To       string
	Quantity market.Asset
	Memo     string
}
