package config

import (
	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Collection
	v.SetDefault("collection.name", "Dynamic BTC NFT")
	v.SetDefault("collection.symbol", "DBTC")
	v.SetDefault("collection.description", "A dynamic NFT that evolves with Bitcoin price movements")
	v.SetDefault("collection.image_base", "https://nft-generator.example.com/generate")

	// Storage
	v.SetDefault("storage.backend", BackendMemory)
	v.SetDefault("storage.postgres_dsn", "")
	v.SetDefault("storage.clickhouse_dsn", "")

	// Oracle
	v.SetDefault("oracle.transport", "static")
	v.SetDefault("oracle.endpoints", []string{})
	v.SetDefault("oracle.timeout", "30s")
	v.SetDefault("oracle.min_price", 1000)
	v.SetDefault("oracle.max_price", 1000000)
	v.SetDefault("oracle.default_price", 45000)
	v.SetDefault("oracle.rate_per_minute", 0) // unlimited
	v.SetDefault("oracle.static_reply", "45000")

	// API
	v.SetDefault("api.addr", ":8080")
	v.SetDefault("api.strict_owner_address", false)

	// Batch scheduler
	v.SetDefault("batch.interval", "1h")

	// Logging
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
}
