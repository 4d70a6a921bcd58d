package memory

import (
	"context"
	"sort"
	"sync"

	"dynamic-nft/internal/domain"
	"dynamic-nft/internal/storage"
)

// TokenStore is an in-memory implementation of storage.TokenStore.
type TokenStore struct {
	mu         sync.RWMutex
	byID       map[string]*domain.Token // keyed by token_id
	bySequence map[int64]string         // sequence -> token_id
}

// NewTokenStore creates a new in-memory token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		byID:       make(map[string]*domain.Token),
		bySequence: make(map[int64]string),
	}
}

// Insert adds a new token. Returns ErrDuplicateKey if token_id or sequence exists.
func (s *TokenStore) Insert(_ context.Context, t *domain.Token) error {
	if t == nil || t.TokenID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[t.TokenID]; exists {
		return storage.ErrDuplicateKey
	}
	if _, exists := s.bySequence[t.Sequence]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	tokenCopy := *t
	s.byID[t.TokenID] = &tokenCopy
	s.bySequence[t.Sequence] = t.TokenID
	return nil
}

// Update replaces a stored token. Returns ErrNotFound if token_id does not exist.
// Sequence is immutable and kept from the stored record.
func (s *TokenStore) Update(_ context.Context, t *domain.Token) error {
	if t == nil || t.TokenID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.byID[t.TokenID]
	if !exists {
		return storage.ErrNotFound
	}

	tokenCopy := *t
	tokenCopy.Sequence = existing.Sequence
	s.byID[t.TokenID] = &tokenCopy
	return nil
}

// GetByID retrieves a token by its ID. Returns ErrNotFound if not exists.
func (s *TokenStore) GetByID(_ context.Context, tokenID string) (*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.byID[tokenID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	tokenCopy := *t
	return &tokenCopy, nil
}

// List retrieves all tokens, ordered by sequence ASC.
func (s *TokenStore) List(_ context.Context) ([]*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Token, 0, len(s.byID))
	for _, t := range s.byID {
		tokenCopy := *t
		result = append(result, &tokenCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Sequence < result[j].Sequence
	})

	return result, nil
}

// CountByRarity counts tokens per current rarity.
func (s *TokenStore) CountByRarity(_ context.Context) (map[domain.Rarity]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[domain.Rarity]int)
	for _, t := range s.byID {
		counts[t.Attributes.Rarity]++
	}
	return counts, nil
}

// Verify interface compliance at compile time.
var _ storage.TokenStore = (*TokenStore)(nil)
