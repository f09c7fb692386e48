// Package assetregistry defines the engine's view of the external NFT
// custody and ownership ledger. The engine never moves assets itself; it
// reads ownership state and instructs the registry to finalize transfers.
package assetregistry

import "context"

// Asset is the subset of registry asset state the engine validates against.
type Asset struct {
	ID             int64
	Owner          string
	CollectionName string
	Transferable   bool
}

// Collection carries the royalty attribution for a collection.
type Collection struct {
	Name   string
	Author string
	Fee    float64
}

// Offer is a pending returnable custody offer on the registry.
type Offer struct {
	ID                int64
	Sender            string
	Recipient         string
	SenderAssetIDs    []int64
	RecipientAssetIDs []int64
	Memo              string
}

// Client is the outbound interface to the asset registry.
type Client interface {
	// Asset returns the current state of an asset, or an error when it
	// does not exist.
	Asset(ctx context.Context, id int64) (*Asset, error)

	// Collection returns the royalty configuration of a collection.
	Collection(ctx context.Context, name string) (*Collection, error)

	// Offer returns a pending custody offer, or nil when the offer no
	// longer exists (cancelled or already resolved).
	Offer(ctx context.Context, id int64) (*Offer, error)

	// LastOffer returns the most recently created pending offer, or nil
	// when none exists.
	LastOffer(ctx context.Context) (*Offer, error)

	// AcceptOffer force-finalizes a pending offer, moving the offered
	// assets into the engine's custody account.
	AcceptOffer(ctx context.Context, id int64) error

	// DeclineOffer cancels a pending offer, returning the assets to the
	// sender.
	DeclineOffer(ctx context.Context, id int64) error

	// TransferAssets moves assets out of the engine's custody account.
	TransferAssets(ctx context.Context, to string, ids []int64, memo string) error

	// AccountExists reports whether an external identity with this name
	// exists. Used to guard marketplace name squatting.
	AccountExists(ctx context.Context, name string) (bool, error)
}

// OfferCreated is the inbound notification emitted when any account creates
// a transfer offer on the registry.
type OfferCreated struct {
	OfferID           int64
	Sender            string
	Recipient         string
	SenderAssetIDs    []int64
	RecipientAssetIDs []int64
	Memo              string
}

// AssetTransfer is the inbound notification emitted when custody of assets
// changes hands on the registry.
type AssetTransfer struct {
	From     string
	To       string
	AssetIDs []int64
	Memo     string
}
