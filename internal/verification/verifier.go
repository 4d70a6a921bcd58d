// Package verification re-derives stored token attributes and reports tokens
// whose persisted state diverges from what the classifier produces.
package verification

import (
	"context"

	"github.com/cockroachdb/errors"

	"dynamic-nft/internal/classifier"
	"dynamic-nft/internal/domain"
	"dynamic-nft/internal/storage"
)

// ErrTokenNotFound is returned when the token ID doesn't exist.
var ErrTokenNotFound = errors.New("token not found")

// FieldDivergence represents a mismatch between stored and re-derived values.
type FieldDivergence struct {
	Field    string `json:"field" yaml:"field"`
	Expected any    `json:"expected" yaml:"expected"` // re-derived value
	Actual   any    `json:"actual" yaml:"actual"`     // stored value
}

// VerificationResult contains the result of verifying a single token.
type VerificationResult struct {
	TokenID     string            `json:"token_id" yaml:"token_id"`
	Match       bool              `json:"match" yaml:"match"`
	Divergences []FieldDivergence `json:"divergences,omitempty" yaml:"divergences,omitempty"`
}

// VerificationReport contains results for a full ledger check.
type VerificationReport struct {
	TotalTokens     int                  `json:"total_tokens" yaml:"total_tokens"`
	MatchedTokens   int                  `json:"matched_tokens" yaml:"matched_tokens"`
	DivergentTokens int                  `json:"divergent_tokens" yaml:"divergent_tokens"`
	Results         []VerificationResult `json:"results" yaml:"results"`
}

// Verifier checks stored tokens against the classifier.
type Verifier struct {
	tokens storage.TokenStore
}

// NewVerifier creates a Verifier over the token store.
func NewVerifier(tokens storage.TokenStore) *Verifier {
	return &Verifier{tokens: tokens}
}

// VerifyToken loads one token and compares it with its re-derived state.
func (v *Verifier) VerifyToken(ctx context.Context, tokenID string) (*VerificationResult, error) {
	token, err := v.tokens.GetByID(ctx, tokenID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return verify(token), nil
}

// VerifyAll verifies every stored token in sequence order.
func (v *Verifier) VerifyAll(ctx context.Context) (*VerificationReport, error) {
	tokens, err := v.tokens.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list tokens")
	}

	report := &VerificationReport{
		TotalTokens: len(tokens),
		Results:     make([]VerificationResult, 0, len(tokens)),
	}
	for _, token := range tokens {
		result := verify(token)
		report.Results = append(report.Results, *result)
		if result.Match {
			report.MatchedTokens++
		} else {
			report.DivergentTokens++
		}
	}
	return report, nil
}

func verify(token *domain.Token) *VerificationResult {
	divergences := CompareBundles(classifier.Classify(token.Attributes.Price), token.Attributes)
	divergences = append(divergences, checkRecord(token)...)
	return &VerificationResult{
		TokenID:     token.TokenID,
		Match:       len(divergences) == 0,
		Divergences: divergences,
	}
}

// CompareBundles compares a re-derived bundle with a stored one and returns divergences.
func CompareBundles(expected, stored domain.AttributeBundle) []FieldDivergence {
	var divergences []FieldDivergence

	if expected.Color != stored.Color {
		divergences = append(divergences, FieldDivergence{
			Field:    domain.FieldColor,
			Expected: expected.Color,
			Actual:   stored.Color,
		})
	}

	if expected.Rarity != stored.Rarity {
		divergences = append(divergences, FieldDivergence{
			Field:    domain.FieldRarity,
			Expected: expected.Rarity,
			Actual:   stored.Rarity,
		})
	}

	if expected.Mood != stored.Mood {
		divergences = append(divergences, FieldDivergence{
			Field:    domain.FieldMood,
			Expected: expected.Mood,
			Actual:   stored.Mood,
		})
	}

	if expected.AnimationSpeed != stored.AnimationSpeed {
		divergences = append(divergences, FieldDivergence{
			Field:    domain.FieldAnimationSpeed,
			Expected: expected.AnimationSpeed,
			Actual:   stored.AnimationSpeed,
		})
	}

	if expected.Background != stored.Background {
		divergences = append(divergences, FieldDivergence{
			Field:    domain.FieldBackground,
			Expected: expected.Background,
			Actual:   stored.Background,
		})
	}

	return divergences
}

// checkRecord validates the bookkeeping fields of a token.
func checkRecord(token *domain.Token) []FieldDivergence {
	var divergences []FieldDivergence

	if want := domain.FormatTokenID(token.Sequence); token.TokenID != want {
		divergences = append(divergences, FieldDivergence{
			Field:    "token_id",
			Expected: want,
			Actual:   token.TokenID,
		})
	}

	// A never-updated token still carries its mint price
	if token.UpdateCount == 0 && token.Attributes.Price != token.CreationPrice {
		divergences = append(divergences, FieldDivergence{
			Field:    domain.FieldPrice,
			Expected: token.CreationPrice,
			Actual:   token.Attributes.Price,
		})
	}

	// Rarity feeds collection stats buckets
	if !token.Attributes.Rarity.IsValid() {
		divergences = append(divergences, FieldDivergence{
			Field:    "rarity_value",
			Expected: domain.Rarities,
			Actual:   token.Attributes.Rarity,
		})
	}

	if token.UpdateCount < 0 {
		divergences = append(divergences, FieldDivergence{
			Field:    "update_count",
			Expected: ">= 0",
			Actual:   token.UpdateCount,
		})
	}

	if token.LastUpdated < token.CreatedAt {
		divergences = append(divergences, FieldDivergence{
			Field:    "last_updated",
			Expected: token.CreatedAt,
			Actual:   token.LastUpdated,
		})
	}

	return divergences
}
