package storage

import (
	"context"

	"dynamic-nft/internal/domain"
)

// TokenStore provides access to tokens storage.
// Tokens are never deleted.
type TokenStore interface {
	// Insert adds a new token. Returns ErrDuplicateKey if token_id or sequence exists.
	Insert(ctx context.Context, t *domain.Token) error

	// Update replaces a stored token. Returns ErrNotFound if token_id does not exist.
	Update(ctx context.Context, t *domain.Token) error

	// GetByID retrieves a token by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, tokenID string) (*domain.Token, error)

	// List retrieves all tokens, ordered by sequence ASC.
	List(ctx context.Context) ([]*domain.Token, error)

	// CountByRarity counts tokens per current rarity.
	CountByRarity(ctx context.Context) (map[domain.Rarity]int, error)
}

// LedgerStateStore provides persistence for the ledger-wide scalars.
type LedgerStateStore interface {
	// Get returns the current state. A fresh ledger returns the zero state, not ErrNotFound.
	Get(ctx context.Context) (*domain.LedgerState, error)

	// NextSequence atomically increments and returns the token sequence.
	NextSequence(ctx context.Context) (int64, error)

	// SetLastKnownPrice records the most recently applied price.
	SetLastKnownPrice(ctx context.Context, price int64) error
}

// PriceUpdateStore provides access to price_updates storage.
type PriceUpdateStore interface {
	// Insert adds a new price update. Returns ErrDuplicateKey if update_id exists.
	Insert(ctx context.Context, u *domain.PriceUpdate) error

	// Count returns the number of recorded price updates.
	Count(ctx context.Context) (int, error)

	// GetByTimeRange retrieves updates within [start, end] (inclusive), ordered by timestamp ASC.
	GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.PriceUpdate, error)

	// GetByTokenID retrieves all updates recorded for a token, ordered by timestamp ASC.
	GetByTokenID(ctx context.Context, tokenID string) ([]*domain.PriceUpdate, error)
}
