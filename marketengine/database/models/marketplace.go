package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Marketplace is a registered fee-attribution identity. The empty name is
// the reserved default marketplace, owned by the platform.
type Marketplace struct {
	bun.BaseModel `bun:"table:marketplaces,alias:m"`

	Name      string    `bun:"name,pk"`
	Creator   string    `bun:"creator,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// DefaultMarketplace is the reserved name attributed when a participant
// does not name a marketplace.
const DefaultMarketplace = ""
