package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dynamic-nft/internal/classifier"
	"dynamic-nft/internal/domain"
	"dynamic-nft/internal/storage"
)

func TestTokenStore_InsertAndGetByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTokenStore(pool)
	ctx := context.Background()

	token := newTestToken(1, 47523)
	require.NoError(t, store.Insert(ctx, token))

	got, err := store.GetByID(ctx, "NFT-0001")
	require.NoError(t, err)
	assert.Equal(t, token, got)
	assert.Equal(t, domain.TokenStateMinted, got.State())
}

func TestTokenStore_DuplicateKey(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTokenStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, newTestToken(1, 47523)))

	err := store.Insert(ctx, newTestToken(1, 50000))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestTokenStore_GetByID_NotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := NewTokenStore(pool).GetByID(context.Background(), "NFT-0042")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTokenStore_Update(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTokenStore(pool)
	ctx := context.Background()

	token := newTestToken(1, 47523)
	require.NoError(t, store.Insert(ctx, token))

	token.Attributes = classifier.Classify(52891)
	token.UpdateCount = 1
	token.LastUpdated += 60000
	require.NoError(t, store.Update(ctx, token))

	got, err := store.GetByID(ctx, token.TokenID)
	require.NoError(t, err)
	assert.Equal(t, domain.RarityRare, got.Attributes.Rarity)
	assert.Equal(t, int64(52891), got.Attributes.Price)
	assert.Equal(t, 1, got.UpdateCount)
	assert.Equal(t, int64(47523), got.CreationPrice)

	missing := newTestToken(7, 47523)
	assert.ErrorIs(t, store.Update(ctx, missing), storage.ErrNotFound)
}

func TestTokenStore_ListAndCountByRarity(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTokenStore(pool)
	ctx := context.Background()

	// Inserted out of order, listed by sequence.
	require.NoError(t, store.Insert(ctx, newTestToken(3, 90000)))
	require.NoError(t, store.Insert(ctx, newTestToken(1, 20000)))
	require.NoError(t, store.Insert(ctx, newTestToken(2, 21000)))

	tokens, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, tokens, 3)
	assert.Equal(t, "NFT-0001", tokens[0].TokenID)
	assert.Equal(t, "NFT-0002", tokens[1].TokenID)
	assert.Equal(t, "NFT-0003", tokens[2].TokenID)

	counts, err := store.CountByRarity(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[domain.RarityCommon])
	assert.Equal(t, 1, counts[domain.RarityLegendary])
	assert.Zero(t, counts[domain.RarityRare])
}
