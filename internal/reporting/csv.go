package reporting

import (
	"encoding/csv"
	"strconv"
	"strings"
)

// RenderTokensCSV renders token rows as CSV string.
func RenderTokensCSV(tokens []TokenRow) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	w.Write([]string{
		"token_id", "owner", "state", "color", "rarity", "mood", "animation_speed",
		"background", "btc_price", "creation_price", "update_count", "last_updated",
	})
	for _, t := range tokens {
		w.Write([]string{
			t.TokenID,
			t.Owner,
			t.State,
			t.Color,
			t.Rarity,
			t.Mood,
			t.AnimationSpeed,
			t.Background,
			strconv.FormatInt(t.Price, 10),
			strconv.FormatInt(t.CreationPrice, 10),
			strconv.Itoa(t.UpdateCount),
			strconv.FormatInt(t.LastUpdated, 10),
		})
	}

	w.Flush()
	return sb.String()
}

// RenderHistoryCSV renders price update rows as CSV string.
func RenderHistoryCSV(updates []PriceUpdateRow) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	w.Write([]string{"update_id", "timestamp_ms", "kind", "token_id", "old_price", "new_price", "change_pct", "source"})
	for _, u := range updates {
		w.Write([]string{
			u.UpdateID,
			strconv.FormatInt(u.Timestamp, 10),
			u.Kind,
			u.TokenID,
			strconv.FormatInt(u.OldPrice, 10),
			strconv.FormatInt(u.NewPrice, 10),
			u.ChangePct,
			u.Source,
		})
	}

	w.Flush()
	return sb.String()
}
