// Package main provides nftctl, a command line client for the attribute ledger.
//
// nftctl opens the configured storage directly. With the default memory backend
// state lives only for the duration of one command; use the postgres backend to
// keep tokens between invocations.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dynamic-nft/internal/app"
	"dynamic-nft/internal/config"
	"dynamic-nft/internal/logging"
)

var (
	configFile   string
	outputFormat string

	cfg       *config.Config
	logger    *zap.Logger
	ledgerApp *app.App
)

var rootCmd = &cobra.Command{
	Use:   "nftctl",
	Short: "Manage dynamic BTC-driven NFTs",
	Long: `nftctl - Dynamic NFT attribute ledger

Mint tokens whose attributes follow the Bitcoin price, refresh them from the
price oracle, preview changes and inspect the collection.

Examples:
  nftctl mint 7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU
  nftctl update NFT-0001
  nftctl batch
  nftctl preview NFT-0001 --price 80000
  nftctl stats --output json
  nftctl report --out-dir docs`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := validateOutput(outputFormat); err != nil {
			return err
		}

		config.LoadEnvFile(".env")
		v, err := config.NewViper(configFile)
		if err != nil {
			return err
		}
		if cfg, err = config.LoadWithViper(v); err != nil {
			return err
		}

		// CLI output goes to stdout; keep logs quiet unless asked
		level := cfg.Log.Level
		if !cmd.Flags().Changed("verbose") && level == "info" {
			level = "warn"
		}
		if logger, err = logging.New(level, cfg.Log.JSON); err != nil {
			return err
		}

		ledgerApp, err = app.Open(cmd.Context(), cfg, logger)
		return err
	},
	PersistentPostRunE: func(*cobra.Command, []string) error {
		_ = logger.Sync()
		if ledgerApp != nil {
			return ledgerApp.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a config file (yaml, json or toml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", outputTable, "Output format: table, json or yaml")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Show informational logs")

	rootCmd.AddCommand(
		mintCmd,
		updateCmd,
		batchCmd,
		getCmd,
		ownerCmd,
		previewCmd,
		statsCmd,
		historyCmd,
		reportCmd,
		verifyCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
