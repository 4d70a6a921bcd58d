package postgres

import (
	"context"

	"github.com/cockroachdb/errors"

	"dynamic-nft/internal/domain"
	"dynamic-nft/internal/storage"
)

// LedgerStateStore is a PostgreSQL implementation of storage.LedgerStateStore.
// The ledger_state table holds a single row with id = 1.
type LedgerStateStore struct {
	pool *Pool
}

// NewLedgerStateStore creates a new PostgreSQL ledger state store.
func NewLedgerStateStore(pool *Pool) *LedgerStateStore {
	return &LedgerStateStore{pool: pool}
}

var _ storage.LedgerStateStore = (*LedgerStateStore)(nil)

// Get returns the current state, or the zero state if the row has not been created yet.
func (s *LedgerStateStore) Get(ctx context.Context) (*domain.LedgerState, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT last_known_price, sequence
		FROM ledger_state
		WHERE id = 1
	`)

	var state domain.LedgerState
	if err := row.Scan(&state.LastKnownPrice, &state.Sequence); err != nil {
		if isNotFoundError(err) {
			return &domain.LedgerState{}, nil
		}
		return nil, errors.Wrap(err, "get ledger state")
	}
	return &state, nil
}

// NextSequence atomically increments and returns the token sequence.
func (s *LedgerStateStore) NextSequence(ctx context.Context) (int64, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO ledger_state (id, sequence, updated_at)
		VALUES (1, 1, NOW())
		ON CONFLICT (id) DO UPDATE
		SET sequence = ledger_state.sequence + 1,
		    updated_at = NOW()
		RETURNING sequence
	`)

	var seq int64
	if err := row.Scan(&seq); err != nil {
		return 0, errors.Wrap(err, "next token sequence")
	}
	return seq, nil
}

// SetLastKnownPrice records the most recently applied price.
// Uses upsert to handle initial insert and subsequent updates.
func (s *LedgerStateStore) SetLastKnownPrice(ctx context.Context, price int64) error {
	if price < 0 {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO ledger_state (id, last_known_price, updated_at)
		VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE
		SET last_known_price = EXCLUDED.last_known_price,
		    updated_at = NOW()
	`, price)
	if err != nil {
		return errors.Wrap(err, "set last known price")
	}
	return nil
}
