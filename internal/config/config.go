// Package config loads service configuration from defaults, an optional
// config file, a .env file and DYNNFT_* environment variables.
package config

import (
	"slices"
	"time"

	"github.com/cockroachdb/errors"
)

// Config is the complete service configuration.
type Config struct {
	Collection CollectionConfig `mapstructure:"collection"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Oracle     OracleConfig     `mapstructure:"oracle"`
	API        APIConfig        `mapstructure:"api"`
	Batch      BatchConfig      `mapstructure:"batch"`
	Log        LogConfig        `mapstructure:"log"`
}

// CollectionConfig describes the NFT collection.
type CollectionConfig struct {
	Name        string `mapstructure:"name"`
	Symbol      string `mapstructure:"symbol"`
	Description string `mapstructure:"description"`
	ImageBase   string `mapstructure:"image_base"`
}

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// StorageConfig selects the persistence backend.
// With the postgres backend, a non-empty ClickhouseDSN moves price history to ClickHouse.
type StorageConfig struct {
	Backend       string `mapstructure:"backend"`
	PostgresDSN   string `mapstructure:"postgres_dsn"`
	ClickhouseDSN string `mapstructure:"clickhouse_dsn"`
}

// OracleConfig configures the price oracle transport and adapter.
type OracleConfig struct {
	Transport     string        `mapstructure:"transport"`
	Endpoints     []string      `mapstructure:"endpoints"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MinPrice      int64         `mapstructure:"min_price"`
	MaxPrice      int64         `mapstructure:"max_price"`
	DefaultPrice  int64         `mapstructure:"default_price"`
	RatePerMinute int           `mapstructure:"rate_per_minute"`
	StaticReply   string        `mapstructure:"static_reply"`
}

// APIConfig configures the HTTP API.
type APIConfig struct {
	Addr               string `mapstructure:"addr"`
	StrictOwnerAddress bool   `mapstructure:"strict_owner_address"`
}

// BatchConfig configures the periodic batch update. Zero interval disables it.
type BatchConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

var oracleTransports = []string{"http", "ws", "quorum", "static"}

// Validate checks the configuration for inconsistent values.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.Storage.PostgresDSN == "" {
			return errors.New("storage.postgres_dsn is required for the postgres backend")
		}
	default:
		return errors.Newf("unknown storage.backend %q", c.Storage.Backend)
	}

	o := c.Oracle
	if !slices.Contains(oracleTransports, o.Transport) {
		return errors.Newf("unknown oracle.transport %q", o.Transport)
	}
	if (o.Transport == "http" || o.Transport == "ws") && len(o.Endpoints) == 0 {
		return errors.Newf("oracle.endpoints is required for the %s transport", o.Transport)
	}
	if o.Transport == "quorum" && len(o.Endpoints) < 2 {
		return errors.New("oracle.endpoints needs at least two entries for the quorum transport")
	}
	if o.MinPrice <= 0 || o.MinPrice > o.MaxPrice {
		return errors.Newf("invalid oracle price band [%d, %d]", o.MinPrice, o.MaxPrice)
	}
	if o.DefaultPrice < o.MinPrice || o.DefaultPrice > o.MaxPrice {
		return errors.Newf("oracle.default_price %d outside [%d, %d]", o.DefaultPrice, o.MinPrice, o.MaxPrice)
	}
	if o.RatePerMinute < 0 {
		return errors.New("oracle.rate_per_minute must not be negative")
	}

	if c.Batch.Interval < 0 {
		return errors.New("batch.interval must not be negative")
	}
	if c.Collection.Name == "" {
		return errors.New("collection.name is required")
	}
	return nil
}
