package ledger

import (
	"github.com/shopspring/decimal"

	"dynamic-nft/internal/domain"
)

// MintResult describes a newly minted token.
type MintResult struct {
	TokenID    string                 `json:"token_id" yaml:"token_id"`
	Owner      string                 `json:"owner" yaml:"owner"`
	Price      int64                  `json:"btc_price" yaml:"btc_price"`
	Source     domain.PriceSource     `json:"price_source" yaml:"price_source"`
	Attributes domain.AttributeBundle `json:"attributes" yaml:"attributes"`
}

// UpdateResult describes one applied token update.
type UpdateResult struct {
	TokenID string `json:"token_id" yaml:"token_id"`
	// OldPrice is the base the change is measured against, 0 when none exists.
	OldPrice int64              `json:"old_price" yaml:"old_price"`
	NewPrice int64              `json:"new_price" yaml:"new_price"`
	Source   domain.PriceSource `json:"price_source" yaml:"price_source"`
	// ChangePct is nil when there is no base price.
	ChangePct   *decimal.Decimal       `json:"change_pct" yaml:"change_pct"`
	Diff        domain.Diff            `json:"changes" yaml:"changes"`
	Attributes  domain.AttributeBundle `json:"attributes" yaml:"attributes"`
	UpdateCount int                    `json:"update_count" yaml:"update_count"`
}

// TokenChange is the diff applied to one token during a batch run.
type TokenChange struct {
	TokenID string      `json:"token_id" yaml:"token_id"`
	Diff    domain.Diff `json:"changes" yaml:"changes"`
}

// BatchFailure is a token a batch run could not update.
type BatchFailure struct {
	TokenID string `json:"token_id" yaml:"token_id"`
	Error   string `json:"error" yaml:"error"`
}

// BatchResult describes a batch update run.
type BatchResult struct {
	RunID   string             `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Price   int64              `json:"btc_price" yaml:"btc_price"`
	Source  domain.PriceSource `json:"price_source,omitempty" yaml:"price_source,omitempty"`
	Updated int                `json:"updated" yaml:"updated"`
	Failed  []BatchFailure     `json:"failed,omitempty" yaml:"failed,omitempty"`
	Changes []TokenChange      `json:"tokens,omitempty" yaml:"tokens,omitempty"`
}

// Status summarizes the run outcome: empty, success, partial or failed.
func (r *BatchResult) Status() string {
	switch {
	case r.Updated == 0 && len(r.Failed) == 0:
		return "empty"
	case len(r.Failed) == 0:
		return "success"
	case r.Updated == 0:
		return "failed"
	default:
		return "partial"
	}
}

// PreviewResult is a dry-run diff for a token at a given price.
type PreviewResult struct {
	TokenID     string                 `json:"token_id" yaml:"token_id"`
	Price       int64                  `json:"current_price" yaml:"current_price"`
	WouldChange bool                   `json:"would_change" yaml:"would_change"`
	Diff        domain.Diff            `json:"changes" yaml:"changes"`
	Attributes  domain.AttributeBundle `json:"attributes" yaml:"attributes"`
}
