package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"dynamic-nft/internal/domain"
)

// Summary renders the mint confirmation.
func (r *MintResult) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Minted %s to %s\n", r.TokenID, r.Owner)
	fmt.Fprintf(&sb, "Initial BTC Price: %s\n", FormatUSD(r.Price))
	fmt.Fprintf(&sb, "Attributes: %s", FormatBundle(r.Attributes))
	return sb.String()
}

// Summary renders the human-readable update report.
func (r *UpdateResult) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Updated %s\n\n", r.TokenID)
	fmt.Fprintf(&sb, "Bitcoin Price: %s → %s (%s)\n\n", FormatUSD(r.OldPrice), FormatUSD(r.NewPrice), FormatChangePct(r.ChangePct))
	sb.WriteString("Attribute Changes:\n")
	sb.WriteString(FormatDiff(r.Diff))
	fmt.Fprintf(&sb, "\n\nTotal Updates: %d\n", r.UpdateCount)
	return sb.String()
}

// Summary renders the batch run message.
func (r *BatchResult) Summary() string {
	if r.Updated == 0 && len(r.Failed) == 0 {
		return "No NFTs to update"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Updated %d NFTs\n", r.Updated)
	fmt.Fprintf(&sb, "Current BTC Price: %s", FormatUSD(r.Price))
	if len(r.Failed) > 0 {
		fmt.Fprintf(&sb, "\nFailed: %d", len(r.Failed))
		for _, f := range r.Failed {
			fmt.Fprintf(&sb, "\n  %s: %s", f.TokenID, f.Error)
		}
	}
	return sb.String()
}

// Summary renders the preview outcome.
func (r *PreviewResult) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Preview %s at %s\n", r.TokenID, FormatUSD(r.Price))
	if !r.WouldChange {
		sb.WriteString("No changes")
		return sb.String()
	}
	sb.WriteString(FormatDiff(r.Diff))
	return sb.String()
}

// FormatDiff renders one "field: old → new" line per change, or "No changes".
func FormatDiff(d domain.Diff) string {
	if d.Empty() {
		return "No changes"
	}
	lines := make([]string, len(d))
	for i, c := range d {
		lines[i] = fmt.Sprintf("%s: %s → %s", c.Field, c.Old, c.New)
	}
	return strings.Join(lines, "\n")
}

// FormatBundle renders a bundle as "field=value" pairs in canonical order.
func FormatBundle(a domain.AttributeBundle) string {
	return fmt.Sprintf("color=%s, rarity=%s, mood=%s, animation_speed=%s, background=%s, btc_price=%d",
		a.Color, a.Rarity, a.Mood, a.AnimationSpeed, a.Background, a.Price)
}

// FormatChangePct renders a signed percentage with two decimals, or N/A.
func FormatChangePct(pct *decimal.Decimal) string {
	if pct == nil {
		return "N/A"
	}
	s := pct.StringFixed(2)
	if pct.IsPositive() || pct.IsZero() {
		s = "+" + s
	}
	return s + "%"
}

// FormatUSD renders a whole-dollar amount with thousands separators, e.g. $47,523.
func FormatUSD(v int64) string {
	if v < 0 {
		return "-$" + usdPrinter.Sprintf("%d", -v)
	}
	return "$" + usdPrinter.Sprintf("%d", v)
}

var usdPrinter = message.NewPrinter(language.English)
