package models

// ListingFees carries the fee attribution shared by all three listing kinds.
// The collection fee is snapshotted when the listing is announced, so later
// collection changes never affect open listings.
type ListingFees struct {
	MakerMarketplace string  `bun:"maker_marketplace,notnull,default:''"`
	CollectionName   string  `bun:"collection_name,notnull"`
	CollectionFee    float64 `bun:"collection_fee,notnull"`
}
