package reporting

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString(fmt.Sprintf("# %s (%s) Collection Report\n\n", r.Name, r.Symbol))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	// Collection Summary
	sb.WriteString("## Collection Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Supply | %d |\n", r.Summary.TotalSupply))
	sb.WriteString(fmt.Sprintf("| Last Known BTC Price | %d |\n", r.Summary.LastKnownPrice))
	sb.WriteString(fmt.Sprintf("| Recorded Price Updates | %d |\n", r.Summary.TotalUpdates))
	sb.WriteString(fmt.Sprintf("| Tokens Updated At Least Once | %d |\n", r.Summary.UpdatedTokens))
	sb.WriteString("\n")

	// Rarity Distribution
	sb.WriteString("## Rarity Distribution\n\n")
	sb.WriteString("| Rarity | Count | Share% |\n")
	sb.WriteString("|--------|-------|--------|\n")
	for _, row := range r.RarityDistribution {
		sb.WriteString(fmt.Sprintf("| %s | %d | %.2f |\n", row.Rarity, row.Count, row.Share))
	}
	sb.WriteString("\n")

	// Tokens
	sb.WriteString("## Tokens\n\n")
	if len(r.Tokens) > 0 {
		sb.WriteString("| Token | Owner | State | Color | Rarity | Mood | Animation | Background | Price | Creation Price | Updates |\n")
		sb.WriteString("|-------|-------|-------|-------|--------|------|-----------|------------|-------|----------------|---------|\n")
		for _, t := range r.Tokens {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s | %s | %d | %d | %d |\n",
				t.TokenID, t.Owner, t.State, t.Color, t.Rarity, t.Mood,
				t.AnimationSpeed, t.Background, t.Price, t.CreationPrice, t.UpdateCount))
		}
	} else {
		sb.WriteString("No tokens minted.\n")
	}
	sb.WriteString("\n")

	// Price History
	sb.WriteString("## Price History\n\n")
	if r.History.Updates > 0 {
		h := r.History
		sb.WriteString("| Metric | Value |\n")
		sb.WriteString("|--------|-------|\n")
		sb.WriteString(fmt.Sprintf("| Updates | %d |\n", h.Updates))
		sb.WriteString(fmt.Sprintf("| First Price | %d |\n", h.FirstPrice))
		sb.WriteString(fmt.Sprintf("| Last Price | %d |\n", h.LastPrice))
		sb.WriteString(fmt.Sprintf("| Min Price | %d |\n", h.MinPrice))
		sb.WriteString(fmt.Sprintf("| Max Price | %d |\n", h.MaxPrice))
		sb.WriteString(fmt.Sprintf("| Range Start (ms) | %d |\n", h.RangeStart))
		sb.WriteString(fmt.Sprintf("| Range End (ms) | %d |\n", h.RangeEnd))

		sources := make([]string, 0, len(h.BySource))
		for s := range h.BySource {
			sources = append(sources, s)
		}
		sort.Strings(sources)
		for _, s := range sources {
			sb.WriteString(fmt.Sprintf("| Source %s | %d |\n", s, h.BySource[s]))
		}
	} else {
		sb.WriteString("No price updates recorded.\n")
	}
	sb.WriteString("\n")

	// Recent Updates
	if len(r.RecentUpdates) > 0 {
		sb.WriteString("### Recent Updates\n\n")
		sb.WriteString("| Timestamp (ms) | Kind | Token | Old Price | New Price | Change% | Source |\n")
		sb.WriteString("|----------------|------|-------|-----------|-----------|---------|--------|\n")
		for _, u := range r.RecentUpdates {
			token := u.TokenID
			if token == "" {
				token = "-"
			}
			sb.WriteString(fmt.Sprintf("| %d | %s | %s | %d | %d | %s | %s |\n",
				u.Timestamp, u.Kind, token, u.OldPrice, u.NewPrice, u.ChangePct, u.Source))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
