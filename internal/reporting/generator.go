package reporting

import (
	"context"
	"math"
	"time"

	"github.com/cockroachdb/errors"

	"dynamic-nft/internal/domain"
	"dynamic-nft/internal/storage"
)

// DefaultRecentUpdates is the number of history rows listed in the report.
const DefaultRecentUpdates = 20

// Generator produces reports from stored data.
type Generator struct {
	tokenStore   storage.TokenStore
	stateStore   storage.LedgerStateStore
	historyStore storage.PriceUpdateStore
	recent       int
	now          func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(
	tokenStore storage.TokenStore,
	stateStore storage.LedgerStateStore,
	historyStore storage.PriceUpdateStore,
) *Generator {
	return &Generator{
		tokenStore:   tokenStore,
		stateStore:   stateStore,
		historyStore: historyStore,
		recent:       DefaultRecentUpdates,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// WithRecentUpdates sets how many history rows the report lists.
func (g *Generator) WithRecentUpdates(n int) *Generator {
	g.recent = n
	return g
}

// Generate produces a complete collection report.
func (g *Generator) Generate(ctx context.Context, name, symbol string) (*Report, error) {
	tokens, err := g.tokenStore.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list tokens")
	}

	state, err := g.stateStore.Get(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load ledger state")
	}

	updates, err := g.historyStore.GetByTimeRange(ctx, 0, math.MaxInt64)
	if err != nil {
		return nil, errors.Wrap(err, "load price history")
	}

	rows := make([]TokenRow, 0, len(tokens))
	updated := 0
	for _, t := range tokens {
		rows = append(rows, tokenRow(t))
		if t.UpdateCount > 0 {
			updated++
		}
	}

	return &Report{
		GeneratedAt: g.now(),
		Name:        name,
		Symbol:      symbol,
		Summary: CollectionSummary{
			TotalSupply:    len(tokens),
			LastKnownPrice: state.LastKnownPrice,
			TotalUpdates:   len(updates),
			UpdatedTokens:  updated,
		},
		RarityDistribution: rarityDistribution(tokens),
		Tokens:             rows,
		History:            summarizeHistory(updates),
		RecentUpdates:      recentUpdates(updates, g.recent),
	}, nil
}

func tokenRow(t *domain.Token) TokenRow {
	a := t.Attributes
	return TokenRow{
		TokenID:        t.TokenID,
		Owner:          t.Owner,
		State:          string(t.State()),
		Color:          string(a.Color),
		Rarity:         string(a.Rarity),
		Mood:           string(a.Mood),
		AnimationSpeed: string(a.AnimationSpeed),
		Background:     string(a.Background),
		Price:          a.Price,
		CreationPrice:  t.CreationPrice,
		UpdateCount:    t.UpdateCount,
		LastUpdated:    t.LastUpdated,
	}
}

// rarityDistribution counts tokens per rarity. Every rarity has a row.
func rarityDistribution(tokens []*domain.Token) []RarityRow {
	counts := make(map[domain.Rarity]int)
	for _, t := range tokens {
		counts[t.Attributes.Rarity]++
	}

	rows := make([]RarityRow, 0, len(domain.Rarities))
	for _, r := range domain.Rarities {
		row := RarityRow{Rarity: string(r), Count: counts[r]}
		if len(tokens) > 0 {
			row.Share = float64(row.Count) / float64(len(tokens)) * 100
		}
		rows = append(rows, row)
	}
	return rows
}

// summarizeHistory expects updates ordered by timestamp ASC.
func summarizeHistory(updates []*domain.PriceUpdate) HistorySummary {
	s := HistorySummary{
		Updates:  len(updates),
		BySource: make(map[string]int),
	}
	if len(updates) == 0 {
		return s
	}

	first, last := updates[0], updates[len(updates)-1]
	s.FirstPrice = first.NewPrice
	s.LastPrice = last.NewPrice
	s.RangeStart = first.Timestamp
	s.RangeEnd = last.Timestamp
	s.MinPrice = first.NewPrice
	s.MaxPrice = first.NewPrice

	for _, u := range updates {
		s.BySource[string(u.Source)]++
		s.MinPrice = min(s.MinPrice, u.NewPrice)
		s.MaxPrice = max(s.MaxPrice, u.NewPrice)
	}
	return s
}

// recentUpdates returns up to n rows, newest first.
func recentUpdates(updates []*domain.PriceUpdate, n int) []PriceUpdateRow {
	rows := make([]PriceUpdateRow, 0, min(n, len(updates)))
	for i := len(updates) - 1; i >= 0 && len(rows) < n; i-- {
		rows = append(rows, PriceUpdateRowFrom(updates[i]))
	}
	return rows
}

// PriceUpdateRowFrom converts a stored update into a report row.
func PriceUpdateRowFrom(u *domain.PriceUpdate) PriceUpdateRow {
	pct := "N/A"
	if u.ChangePct != nil {
		pct = u.ChangePct.StringFixed(2)
	}
	return PriceUpdateRow{
		UpdateID:  u.UpdateID,
		Timestamp: u.Timestamp,
		Kind:      string(u.Kind),
		TokenID:   u.TokenID,
		OldPrice:  u.OldPrice,
		NewPrice:  u.NewPrice,
		ChangePct: pct,
		Source:    string(u.Source),
	}
}
