package memory

import (
	"context"
	"sync"

	"dynamic-nft/internal/domain"
	"dynamic-nft/internal/storage"
)

// LedgerStateStore is an in-memory implementation of storage.LedgerStateStore.
type LedgerStateStore struct {
	mu    sync.Mutex
	state domain.LedgerState
}

// NewLedgerStateStore creates a new in-memory ledger state store.
func NewLedgerStateStore() *LedgerStateStore {
	return &LedgerStateStore{}
}

// Get returns a copy of the current state.
func (s *LedgerStateStore) Get(_ context.Context) (*domain.LedgerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stateCopy := s.state
	return &stateCopy, nil
}

// NextSequence increments and returns the token sequence.
func (s *LedgerStateStore) NextSequence(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Sequence++
	return s.state.Sequence, nil
}

// SetLastKnownPrice records the most recently applied price.
func (s *LedgerStateStore) SetLastKnownPrice(_ context.Context, price int64) error {
	if price < 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.LastKnownPrice = price
	return nil
}

var _ storage.LedgerStateStore = (*LedgerStateStore)(nil)
