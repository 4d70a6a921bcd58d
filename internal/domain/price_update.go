package domain

import "github.com/shopspring/decimal"

// PriceSource tells where a price came from.
type PriceSource string

const (
	PriceSourceOracle  PriceSource = "oracle"
	PriceSourceCached  PriceSource = "cached"
	PriceSourceDefault PriceSource = "default"
)

// PriceUpdateKind is the ledger operation that recorded a price update.
type PriceUpdateKind string

const (
	PriceUpdateMint  PriceUpdateKind = "mint"
	PriceUpdateToken PriceUpdateKind = "update"
	PriceUpdateBatch PriceUpdateKind = "batch"
)

// PriceUpdate is one entry in the price history.
// Corresponds to price_updates table in PostgreSQL and ClickHouse.
type PriceUpdate struct {
	UpdateID  string           `json:"update_id" yaml:"update_id"`                   // deterministic hash, see idhash.ComputePriceUpdateID
	TokenID   string           `json:"token_id,omitempty" yaml:"token_id,omitempty"` // empty for batch runs
	Kind      PriceUpdateKind  `json:"kind" yaml:"kind"`                             // mint | update | batch
	Timestamp int64            `json:"timestamp" yaml:"timestamp"`                   // ms
	OldPrice  int64            `json:"old_price" yaml:"old_price"`                   // base price before the operation (0 = none)
	NewPrice  int64            `json:"new_price" yaml:"new_price"`                   // price applied
	ChangePct *decimal.Decimal `json:"change_pct" yaml:"change_pct"`                 // nil when no base price exists
	Source    PriceSource      `json:"source" yaml:"source"`                         // oracle | cached | default
}
