package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"dynamic-nft/internal/address"
	"dynamic-nft/internal/classifier"
	"dynamic-nft/internal/domain"
	"dynamic-nft/internal/ledger"
	"dynamic-nft/internal/reporting"
	"dynamic-nft/internal/verification"
)

var mintCmd = &cobra.Command{
	Use:   "mint <owner-address>",
	Short: "Mint a new NFT with attributes from the current BTC price",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.API.StrictOwnerAddress {
			if err := address.Validate(args[0]); err != nil {
				return err
			}
		}
		r, err := ledgerApp.Ledger.Mint(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), outputFormat, r, r.Summary(), bundleTable(r.Attributes))
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <token-id>",
	Short: "Refresh one NFT from the current BTC price",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := ledgerApp.Ledger.Update(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), outputFormat, r, r.Summary(), nil)
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Refresh every NFT with a single oracle price",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		r, err := ledgerApp.Ledger.BatchUpdateAll(cmd.Context())
		if err != nil {
			return err
		}
		var table pterm.TableData
		if len(r.Changes) > 0 {
			table = pterm.TableData{{"Token", "Changes"}}
			for _, c := range r.Changes {
				changes := ledger.FormatDiff(c.Diff)
				if changes == "" {
					changes = "-"
				}
				table = append(table, []string{c.TokenID, changes})
			}
		}
		return render(cmd.OutOrStdout(), outputFormat, r, r.Summary(), table)
	},
}

var getCmd = &cobra.Command{
	Use:   "get <token-id>",
	Short: "Show NFT metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		md, err := ledgerApp.Ledger.Metadata(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		table := pterm.TableData{{"Trait", "Value"}}
		for _, a := range md.Attributes {
			table = append(table, []string{a.TraitType, fmt.Sprint(a.Value)})
		}
		summary := fmt.Sprintf("%s\nOwner: %s\nImage: %s\nUpdates: %d",
			md.Name, md.Owner, md.Image, md.UpdateCount)
		return render(cmd.OutOrStdout(), outputFormat, md, summary, table)
	},
}

var ownerCmd = &cobra.Command{
	Use:   "owner <token-id>",
	Short: "Show the owner of an NFT",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := ledgerApp.Ledger.OwnerOf(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		v := map[string]string{"token_id": args[0], "owner": owner}
		return render(cmd.OutOrStdout(), outputFormat, v, owner, nil)
	},
}

var previewPrice int64

var previewCmd = &cobra.Command{
	Use:   "preview <token-id>",
	Short: "Show what an update would change without applying it",
	Long: `Show what an update would change without applying it.

Uses the last known BTC price unless --price is given. Never calls the oracle.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			r   *ledger.PreviewResult
			err error
		)
		if cmd.Flags().Changed("price") {
			if previewPrice <= 0 {
				return errors.New("--price must be positive")
			}
			r, err = ledgerApp.Ledger.PreviewAt(cmd.Context(), args[0], previewPrice)
		} else {
			r, err = ledgerApp.Ledger.Preview(cmd.Context(), args[0])
		}
		if err != nil {
			return err
		}
		summary := r.Summary()
		if next, ok := nextThreshold(r.Price); ok {
			summary += fmt.Sprintf("\nNext attribute change at: %s", ledger.FormatUSD(next))
		}
		return render(cmd.OutOrStdout(), outputFormat, r, summary, nil)
	},
}

// nextThreshold returns the lowest price above price at which some attribute changes.
func nextThreshold(price int64) (int64, bool) {
	for _, b := range classifier.Thresholds() {
		if b > price {
			return b, true
		}
	}
	return 0, false
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show collection statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := ledgerApp.Ledger.Stats(cmd.Context())
		if err != nil {
			return err
		}
		table := pterm.TableData{{"Rarity", "Count"}}
		for _, r := range domain.Rarities {
			table = append(table, []string{string(r), strconv.Itoa(st.RarityCounts[r])})
		}
		summary := fmt.Sprintf("%s (%s)\nTotal Supply: %d\nLast BTC Price: %s\nPrice Updates: %d",
			st.Name, st.Symbol, st.TotalSupply, ledger.FormatUSD(st.LastKnownPrice), st.TotalUpdates)
		return render(cmd.OutOrStdout(), outputFormat, st, summary, table)
	},
}

var (
	historyStart, historyEnd int64
	historyToken             string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded price updates",
	Long: `List recorded price updates.

With --token, lists the mint and update entries of one token. Batch runs are
recorded collection-wide and only appear in the unfiltered listing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var (
			updates []*domain.PriceUpdate
			err     error
		)
		if historyToken != "" {
			updates, err = ledgerApp.Ledger.TokenHistory(cmd.Context(), historyToken)
		} else {
			if historyStart < 0 || historyEnd < historyStart {
				return errors.New("--start must be non-negative and not after --end")
			}
			updates, err = ledgerApp.Ledger.History(cmd.Context(), historyStart, historyEnd)
		}
		if err != nil {
			return err
		}
		table := pterm.TableData{{"Time", "Kind", "Token", "Old", "New", "Change", "Source"}}
		for _, u := range updates {
			row := reporting.PriceUpdateRowFrom(u)
			token := row.TokenID
			if token == "" {
				token = "(all)"
			}
			table = append(table, []string{
				time.UnixMilli(row.Timestamp).UTC().Format(time.RFC3339), row.Kind, token,
				ledger.FormatUSD(row.OldPrice), ledger.FormatUSD(row.NewPrice),
				row.ChangePct, row.Source,
			})
		}
		summary := fmt.Sprintf("%d price updates", len(updates))
		return render(cmd.OutOrStdout(), outputFormat, updates, summary, table)
	},
}

var reportDir string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write REPORT.md, tokens.csv and price_updates.csv",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		r, err := ledgerApp.Reports().Generate(cmd.Context(), cfg.Collection.Name, cfg.Collection.Symbol)
		if err != nil {
			return err
		}

		updates, err := ledgerApp.Ledger.History(cmd.Context(), 0, math.MaxInt64)
		if err != nil {
			return err
		}
		history := make([]reporting.PriceUpdateRow, 0, len(updates))
		for _, u := range updates {
			history = append(history, reporting.PriceUpdateRowFrom(u))
		}

		if err := os.MkdirAll(reportDir, 0o755); err != nil {
			return errors.Wrap(err, "create output directory")
		}
		files := map[string]string{
			"REPORT.md":         reporting.RenderMarkdown(r),
			"tokens.csv":        reporting.RenderTokensCSV(r.Tokens),
			"price_updates.csv": reporting.RenderHistoryCSV(history),
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Report generated:")
		for _, name := range []string{"REPORT.md", "tokens.csv", "price_updates.csv"} {
			path := filepath.Join(reportDir, name)
			if err := os.WriteFile(path, []byte(files[name]), 0o644); err != nil {
				return errors.Wrapf(err, "write %s", path)
			}
			fmt.Fprintf(out, "  - %s\n", path)
		}
		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify [token-id]",
	Short: "Check stored attributes against the classifier",
	Long: `Check stored attributes against the classifier.

Every token's attributes must equal the bundle derived from its BTC price.
Exits non-zero when any token diverges.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v := ledgerApp.Verifier()
		report := &verification.VerificationReport{}
		if len(args) == 1 {
			result, err := v.VerifyToken(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			report.TotalTokens = 1
			report.Results = []verification.VerificationResult{*result}
			if result.Match {
				report.MatchedTokens = 1
			} else {
				report.DivergentTokens = 1
			}
		} else {
			var err error
			if report, err = v.VerifyAll(cmd.Context()); err != nil {
				return err
			}
		}

		var table pterm.TableData
		if report.DivergentTokens > 0 {
			table = pterm.TableData{{"Token", "Field", "Expected", "Stored"}}
			for _, r := range report.Results {
				for _, d := range r.Divergences {
					table = append(table, []string{r.TokenID, d.Field, fmt.Sprint(d.Expected), fmt.Sprint(d.Actual)})
				}
			}
		}
		summary := fmt.Sprintf("Verified %d tokens: %d ok, %d divergent",
			report.TotalTokens, report.MatchedTokens, report.DivergentTokens)
		if err := render(cmd.OutOrStdout(), outputFormat, report, summary, table); err != nil {
			return err
		}
		if report.DivergentTokens > 0 {
			return errors.Newf("%d tokens diverge from their classified attributes", report.DivergentTokens)
		}
		return nil
	},
}

func init() {
	previewCmd.Flags().Int64Var(&previewPrice, "price", 0, "BTC price to preview against")
	historyCmd.Flags().Int64Var(&historyStart, "start", 0, "Range start, unix ms")
	historyCmd.Flags().Int64Var(&historyEnd, "end", math.MaxInt64, "Range end, unix ms")
	historyCmd.Flags().StringVar(&historyToken, "token", "", "Only list updates for this token id")
	reportCmd.Flags().StringVar(&reportDir, "out-dir", "docs", "Output directory for generated files")
}

func bundleTable(a domain.AttributeBundle) pterm.TableData {
	return pterm.TableData{
		{"Attribute", "Value"},
		{"Color", string(a.Color)},
		{"Rarity", string(a.Rarity)},
		{"Mood", string(a.Mood)},
		{"Animation Speed", string(a.AnimationSpeed)},
		{"Background", string(a.Background)},
		{"BTC Price", ledger.FormatUSD(a.Price)},
	}
}
