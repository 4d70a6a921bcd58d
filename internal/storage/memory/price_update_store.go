package memory

import (
	"context"
	"sort"
	"sync"

	"dynamic-nft/internal/domain"
	"dynamic-nft/internal/storage"
)

// PriceUpdateStore is an in-memory implementation of storage.PriceUpdateStore.
type PriceUpdateStore struct {
	mu      sync.RWMutex
	data    map[string]*domain.PriceUpdate // keyed by update_id
	ordered []*domain.PriceUpdate          // insertion order
}

// NewPriceUpdateStore creates a new in-memory price update store.
func NewPriceUpdateStore() *PriceUpdateStore {
	return &PriceUpdateStore{
		data: make(map[string]*domain.PriceUpdate),
	}
}

// Insert adds a new price update. Returns ErrDuplicateKey if update_id exists.
func (s *PriceUpdateStore) Insert(_ context.Context, u *domain.PriceUpdate) error {
	if u == nil || u.UpdateID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[u.UpdateID]; exists {
		return storage.ErrDuplicateKey
	}

	updateCopy := *u
	s.data[u.UpdateID] = &updateCopy
	s.ordered = append(s.ordered, &updateCopy)
	return nil
}

// Count returns the number of recorded price updates.
func (s *PriceUpdateStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.data), nil
}

// GetByTimeRange retrieves updates within [start, end] (inclusive), ordered by timestamp ASC.
func (s *PriceUpdateStore) GetByTimeRange(_ context.Context, start, end int64) ([]*domain.PriceUpdate, error) {
	return s.filter(func(u *domain.PriceUpdate) bool {
		return u.Timestamp >= start && u.Timestamp <= end
	}), nil
}

// GetByTokenID retrieves all updates recorded for a token, ordered by timestamp ASC.
func (s *PriceUpdateStore) GetByTokenID(_ context.Context, tokenID string) ([]*domain.PriceUpdate, error) {
	return s.filter(func(u *domain.PriceUpdate) bool {
		return u.TokenID == tokenID
	}), nil
}

func (s *PriceUpdateStore) filter(keep func(*domain.PriceUpdate) bool) []*domain.PriceUpdate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PriceUpdate
	for _, u := range s.ordered {
		if keep(u) {
			updateCopy := *u
			result = append(result, &updateCopy)
		}
	}

	// Stable keeps insertion order for equal timestamps
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp < result[j].Timestamp
	})

	return result
}

var _ storage.PriceUpdateStore = (*PriceUpdateStore)(nil)
