package memory

import (
	"context"
	"errors"
	"testing"

	"dynamic-nft/internal/domain"
	"dynamic-nft/internal/storage"
)

func newTestToken(seq int64, rarity domain.Rarity) *domain.Token {
	return &domain.Token{
		TokenID:       domain.FormatTokenID(seq),
		Sequence:      seq,
		Owner:         "owner1",
		CreatedAt:     1704067200000,
		CreationPrice: 47523,
		Attributes:    domain.AttributeBundle{Rarity: rarity, Price: 47523},
		LastUpdated:   1704067200000,
	}
}

func TestTokenStore_InsertAndGetByID(t *testing.T) {
	store := NewTokenStore()
	ctx := context.Background()

	if err := store.Insert(ctx, newTestToken(1, domain.RarityUncommon)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	result, err := store.GetByID(ctx, "NFT-0001")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}

	if result.Owner != "owner1" {
		t.Errorf("Owner mismatch: got %s, want owner1", result.Owner)
	}
	if result.Attributes.Rarity != domain.RarityUncommon {
		t.Errorf("Rarity mismatch: got %s, want Uncommon", result.Attributes.Rarity)
	}
}

func TestTokenStore_DuplicateKeys(t *testing.T) {
	store := NewTokenStore()
	ctx := context.Background()

	if err := store.Insert(ctx, newTestToken(1, domain.RarityCommon)); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, newTestToken(1, domain.RarityRare))
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey for duplicate id, got %v", err)
	}

	// Same sequence, different id
	dup := newTestToken(1, domain.RarityRare)
	dup.TokenID = "NFT-9999"
	err = store.Insert(ctx, dup)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey for duplicate sequence, got %v", err)
	}
}

func TestTokenStore_Update(t *testing.T) {
	store := NewTokenStore()
	ctx := context.Background()

	if err := store.Insert(ctx, newTestToken(1, domain.RarityUncommon)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	updated := newTestToken(1, domain.RarityRare)
	updated.UpdateCount = 1
	updated.Sequence = 42 // ignored
	if err := store.Update(ctx, updated); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	result, _ := store.GetByID(ctx, "NFT-0001")
	if result.Attributes.Rarity != domain.RarityRare {
		t.Errorf("Rarity mismatch: got %s, want Rare", result.Attributes.Rarity)
	}
	if result.UpdateCount != 1 {
		t.Errorf("UpdateCount mismatch: got %d, want 1", result.UpdateCount)
	}
	if result.Sequence != 1 {
		t.Errorf("Sequence must not change: got %d", result.Sequence)
	}

	err := store.Update(ctx, newTestToken(2, domain.RarityRare))
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing token, got %v", err)
	}
}

func TestTokenStore_ListOrderedBySequence(t *testing.T) {
	store := NewTokenStore()
	ctx := context.Background()

	for _, seq := range []int64{3, 1, 2} {
		if err := store.Insert(ctx, newTestToken(seq, domain.RarityCommon)); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	tokens, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(tokens) != 3 {
		t.Fatalf("Expected 3 tokens, got %d", len(tokens))
	}
	for i, tok := range tokens {
		if tok.Sequence != int64(i+1) {
			t.Errorf("tokens[%d].Sequence = %d, want %d", i, tok.Sequence, i+1)
		}
	}
}

func TestTokenStore_CountByRarity(t *testing.T) {
	store := NewTokenStore()
	ctx := context.Background()

	store.Insert(ctx, newTestToken(1, domain.RarityCommon))
	store.Insert(ctx, newTestToken(2, domain.RarityRare))
	store.Insert(ctx, newTestToken(3, domain.RarityRare))

	counts, err := store.CountByRarity(ctx)
	if err != nil {
		t.Fatalf("CountByRarity failed: %v", err)
	}
	if counts[domain.RarityCommon] != 1 || counts[domain.RarityRare] != 2 {
		t.Errorf("unexpected counts: %v", counts)
	}
}

func TestTokenStore_NotFound(t *testing.T) {
	store := NewTokenStore()

	_, err := store.GetByID(context.Background(), "NFT-0404")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestTokenStore_InvalidInput(t *testing.T) {
	store := NewTokenStore()
	ctx := context.Background()

	if err := store.Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil, got %v", err)
	}
	if err := store.Insert(ctx, &domain.Token{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty ID, got %v", err)
	}
	if err := store.Update(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil update, got %v", err)
	}
}

func TestTokenStore_ReturnsCopy(t *testing.T) {
	store := NewTokenStore()
	ctx := context.Background()

	tok := newTestToken(1, domain.RarityCommon)
	store.Insert(ctx, tok)

	// Modify original
	tok.Owner = "someone-else"

	result, _ := store.GetByID(ctx, "NFT-0001")
	if result.Owner != "owner1" {
		t.Error("Store should keep a copy, not a reference")
	}

	result.UpdateCount = 99
	again, _ := store.GetByID(ctx, "NFT-0001")
	if again.UpdateCount != 0 {
		t.Error("Store should return copy, not reference")
	}
}
