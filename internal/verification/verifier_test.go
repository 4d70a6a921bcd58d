package verification

import (
	"context"
	"testing"

	"dynamic-nft/internal/classifier"
	"dynamic-nft/internal/domain"
	"dynamic-nft/internal/storage/memory"
)

func newToken(seq, price int64) *domain.Token {
	return &domain.Token{
		TokenID:       domain.FormatTokenID(seq),
		Sequence:      seq,
		Owner:         "alice",
		CreatedAt:     1000,
		LastUpdated:   1000,
		CreationPrice: price,
		Attributes:    classifier.Classify(price),
	}
}

func TestCompareBundles_ExactMatch(t *testing.T) {
	divergences := CompareBundles(classifier.Classify(47523), classifier.Classify(47523))

	if len(divergences) != 0 {
		t.Errorf("Expected 0 divergences, got %d: %v", len(divergences), divergences)
	}
}

func TestCompareBundles_Divergent(t *testing.T) {
	stored := classifier.Classify(47523)
	stored.Rarity = domain.RarityLegendary
	stored.Color = domain.ColorGold

	divergences := CompareBundles(classifier.Classify(47523), stored)

	if len(divergences) != 2 {
		t.Fatalf("Expected 2 divergences, got %d: %v", len(divergences), divergences)
	}
	if divergences[0].Field != domain.FieldColor {
		t.Errorf("Expected first divergence on color, got %s", divergences[0].Field)
	}
	if divergences[1].Field != domain.FieldRarity {
		t.Errorf("Expected second divergence on rarity, got %s", divergences[1].Field)
	}
	if divergences[1].Expected != domain.RarityUncommon {
		t.Errorf("Expected re-derived rarity Uncommon, got %v", divergences[1].Expected)
	}
}

func TestVerifyToken(t *testing.T) {
	ctx := context.Background()
	store := memory.NewTokenStore()

	good := newToken(1, 47523)
	if err := store.Insert(ctx, good); err != nil {
		t.Fatalf("insert: %v", err)
	}

	result, err := NewVerifier(store).VerifyToken(ctx, good.TokenID)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if !result.Match {
		t.Errorf("Expected match, got divergences %v", result.Divergences)
	}
}

func TestVerifyToken_NotFound(t *testing.T) {
	_, err := NewVerifier(memory.NewTokenStore()).VerifyToken(context.Background(), "NFT-0404")
	if err != ErrTokenNotFound {
		t.Errorf("Expected ErrTokenNotFound, got %v", err)
	}
}

func TestVerifyAll(t *testing.T) {
	ctx := context.Background()
	store := memory.NewTokenStore()

	if err := store.Insert(ctx, newToken(1, 30000)); err != nil {
		t.Fatalf("insert: %v", err)
	}

	tampered := newToken(2, 80000)
	tampered.Attributes.Background = domain.BackgroundCloudy
	tampered.LastUpdated = 10
	if err := store.Insert(ctx, tampered); err != nil {
		t.Fatalf("insert: %v", err)
	}

	mislabeled := newToken(3, 60000)
	mislabeled.UpdateCount = 0
	mislabeled.Attributes = classifier.Classify(61000)
	if err := store.Insert(ctx, mislabeled); err != nil {
		t.Fatalf("insert: %v", err)
	}

	report, err := NewVerifier(store).VerifyAll(ctx)
	if err != nil {
		t.Fatalf("VerifyAll: %v", err)
	}

	if report.TotalTokens != 3 {
		t.Errorf("Expected 3 tokens, got %d", report.TotalTokens)
	}
	if report.MatchedTokens != 1 {
		t.Errorf("Expected 1 matched token, got %d", report.MatchedTokens)
	}
	if report.DivergentTokens != 2 {
		t.Errorf("Expected 2 divergent tokens, got %d", report.DivergentTokens)
	}

	second := report.Results[1]
	if second.TokenID != "NFT-0002" || len(second.Divergences) != 2 {
		t.Errorf("Expected background and last_updated divergences on NFT-0002, got %v", second.Divergences)
	}

	third := report.Results[2]
	if len(third.Divergences) != 1 || third.Divergences[0].Field != domain.FieldPrice {
		t.Errorf("Expected btc_price divergence on NFT-0003, got %v", third.Divergences)
	}
}

func TestVerifyToken_UnknownRarity(t *testing.T) {
	ctx := context.Background()
	store := memory.NewTokenStore()

	corrupt := newToken(1, 47523)
	corrupt.Attributes.Rarity = domain.Rarity("Mythic")
	if err := store.Insert(ctx, corrupt); err != nil {
		t.Fatalf("insert: %v", err)
	}

	result, err := NewVerifier(store).VerifyToken(ctx, corrupt.TokenID)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if result.Match {
		t.Fatal("Expected divergence for unknown rarity")
	}

	var flagged bool
	for _, d := range result.Divergences {
		if d.Field == "rarity_value" {
			flagged = true
			if d.Actual != domain.Rarity("Mythic") {
				t.Errorf("Expected stored rarity Mythic, got %v", d.Actual)
			}
		}
	}
	if !flagged {
		t.Errorf("Expected rarity_value divergence, got %v", result.Divergences)
	}
}
