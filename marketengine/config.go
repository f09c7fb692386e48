package marketengine

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/waxlabs/marketengine/marketengine/database"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	Log     LogConfig         `toml:"log"`
	Market  MarketConfig      `toml:"market"`
	DB      database.DBConfig `toml:"db"`
	Archive ArchiveConfig     `toml:"archive"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

// MarketConfig carries the engine's identities and the defaults seeded into
// the configuration table on first init.
type MarketConfig struct {
	EngineAccount        string `toml:"engine_account"`
	AdminAccount         string `toml:"admin_account"`
	AssetRegistryAccount string `toml:"asset_registry_account"`
	PriceFeedAccount     string `toml:"price_feed_account"`
	DefaultMarketCreator string `toml:"default_market_creator"`

	Version              string  `toml:"version"`
	MinimumBidIncrease   float64 `toml:"minimum_bid_increase"`
	MinAuctionDuration   int64   `toml:"min_auction_duration"`
	MaxAuctionDuration   int64   `toml:"max_auction_duration"`
	AuctionResetDuration int64   `toml:"auction_reset_duration"`
	MakerMarketFee       float64 `toml:"maker_market_fee"`
	TakerMarketFee       float64 `toml:"taker_market_fee"`

	SequencerInboxSize int `toml:"sequencer_inbox_size"`
}

// ArchiveConfig points at the S3-compatible object storage trade records
// are exported to.
type ArchiveConfig struct {
	Enabled         bool   `toml:"enabled"`
	Key             string `toml:"key"`
	Secret          string `toml:"secret"`
	Region          string `toml:"region"`
	Bucket          string `toml:"bucket"`
	Prefix          string `toml:"prefix"`
	IntervalMinutes int    `toml:"interval_minutes"`
}
