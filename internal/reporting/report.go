package reporting

import "time"

// Report represents the collection report structure.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	Name        string
	Symbol      string

	// Collection Summary
	Summary CollectionSummary

	// Rarity distribution, one row per rarity from Common to Legendary
	RarityDistribution []RarityRow

	// Tokens in sequence order
	Tokens []TokenRow

	// Price history
	History HistorySummary
	// Most recent updates, newest first
	RecentUpdates []PriceUpdateRow
}

// CollectionSummary contains collection-wide figures.
type CollectionSummary struct {
	TotalSupply    int
	LastKnownPrice int64
	TotalUpdates   int // recorded price updates
	UpdatedTokens  int // tokens updated at least once
}

// RarityRow is one bucket of the rarity distribution.
type RarityRow struct {
	Rarity string
	Count  int
	Share  float64 // percent of supply, 0 if supply is 0
}

// TokenRow represents one row in the tokens table.
type TokenRow struct {
	TokenID        string
	Owner          string
	State          string
	Color          string
	Rarity         string
	Mood           string
	AnimationSpeed string
	Background     string
	Price          int64
	CreationPrice  int64
	UpdateCount    int
	LastUpdated    int64 // Unix ms
}

// HistorySummary describes the recorded price history.
type HistorySummary struct {
	Updates    int
	FirstPrice int64
	LastPrice  int64
	MinPrice   int64
	MaxPrice   int64
	// Per price source counts (oracle, cached, default)
	BySource map[string]int
	// Range of recorded timestamps (Unix ms)
	RangeStart int64
	RangeEnd   int64
}

// PriceUpdateRow represents one row in the price history tables.
type PriceUpdateRow struct {
	UpdateID  string
	Timestamp int64 // Unix ms
	Kind      string
	TokenID   string
	OldPrice  int64
	NewPrice  int64
	ChangePct string // "N/A" when no base price existed
	Source    string
}
