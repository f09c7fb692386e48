package assetregistry

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-memory registry used for local development and tests.
// Mutators seed and manipulate the registry state directly.
type Memory struct {
	mu sync.Mutex

	engineAccount string
	assets        map[int64]Asset
	collections   map[string]Collection
	offers        map[int64]Offer
	accounts      map[string]bool
	nextOfferID   int64
	lastOfferID   int64

	transfers []RecordedTransfer
}

// RecordedTransfer is one outbound custody transfer the engine requested.
type RecordedTransfer struct {
	To       string
	AssetIDs []int64
	Memo     string
}

func NewMemory(engineAccount string) *Memory {
	return &Memory{
		engineAccount: engineAccount,
		assets:        make(map[int64]Asset),
		collections:   make(map[string]Collection),
		offers:        make(map[int64]Offer),
		accounts:      make(map[string]bool),
		nextOfferID:   1,
	}
}

// AddAccount registers an external identity.
func (m *Memory) AddAccount(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[name] = true
}

// AddCollection seeds a collection.
func (m *Memory) AddCollection(c Collection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[c.Name] = c
}

// AddAsset seeds an asset.
func (m *Memory) AddAsset(a Asset) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assets[a.ID] = a
}

// SetOwner reassigns an asset.
func (m *Memory) SetOwner(assetID int64, owner string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := m.assets[assetID]
	a.Owner = owner
	m.assets[assetID] = a
}

// CreateOffer stages a pending custody offer to the engine account and
// returns its id.
func (m *Memory) CreateOffer(sender string, senderAssetIDs, recipientAssetIDs []int64, memo string) int64 {
	return m.CreateOfferTo(sender, m.engineAccount, senderAssetIDs, recipientAssetIDs, memo)
}

// CreateOfferTo stages a pending custody offer to an arbitrary recipient.
func (m *Memory) CreateOfferTo(sender, recipient string, senderAssetIDs, recipientAssetIDs []int64, memo string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextOfferID
	m.nextOfferID++
	m.offers[id] = Offer{
		ID:                id,
		Sender:            sender,
		Recipient:         recipient,
		SenderAssetIDs:    append([]int64(nil), senderAssetIDs...),
		RecipientAssetIDs: append([]int64(nil), recipientAssetIDs...),
		Memo:              memo,
	}
	m.lastOfferID = id
	return id
}

// CancelOffer removes a pending offer without moving assets.
func (m *Memory) CancelOffer(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.offers, id)
}

// Transfers returns the outbound transfers requested so far.
func (m *Memory) Transfers() []RecordedTransfer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RecordedTransfer(nil), m.transfers...)
}

func (m *Memory) Asset(_ context.Context, id int64) (*Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assets[id]
	if !ok {
		return nil, fmt.Errorf("no asset with id %d exists", id)
	}
	return &a, nil
}

func (m *Memory) Collection(_ context.Context, name string) (*Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collections[name]
	if !ok {
		return nil, fmt.Errorf("no collection with name %s exists", name)
	}
	return &c, nil
}

func (m *Memory) Offer(_ context.Context, id int64) (*Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.offers[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (m *Memory) LastOffer(_ context.Context) (*Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.offers[m.lastOfferID]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

// AcceptOffer moves the offered assets into the engine account and
// resolves the offer.
func (m *Memory) AcceptOffer(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.offers[id]
	if !ok {
		return fmt.Errorf("no offer with id %d exists", id)
	}
	for _, assetID := range o.SenderAssetIDs {
		a := m.assets[assetID]
		a.Owner = m.engineAccount
		m.assets[assetID] = a
	}
	delete(m.offers, id)
	return nil
}

func (m *Memory) DeclineOffer(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.offers[id]; !ok {
		return fmt.Errorf("no offer with id %d exists", id)
	}
	delete(m.offers, id)
	return nil
}

func (m *Memory) TransferAssets(_ context.Context, to string, ids []int64, memo string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		a := m.assets[id]
		a.Owner = to
		m.assets[id] = a
	}
	m.transfers = append(m.transfers, RecordedTransfer{
		To:       to,
		AssetIDs: append([]int64(nil), ids...),
		Memo:     memo,
	})
	return nil
}

func (m *Memory) AccountExists(_ context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accounts[name], nil
}
