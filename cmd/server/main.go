// Package main runs the dynamic NFT service:
// - HTTP API (mint, update, batch update, metadata, preview, stats, history)
// - Batch scheduler (BatchUpdateAll every batch.interval)
// - /health, /status and Prometheus /metrics
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"dynamic-nft/internal/api"
	"dynamic-nft/internal/app"
	"dynamic-nft/internal/config"
	"dynamic-nft/internal/logging"
	"dynamic-nft/internal/scheduler"
)

const shutdownTimeout = 10 * time.Second

var configFile string

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the dynamic NFT attribute ledger service",
	Long: `Run the dynamic NFT attribute ledger service.

Serves the HTTP API and periodically refreshes every token from the BTC price
oracle. Configuration comes from defaults, an optional config file, a .env file
and DYNNFT_* environment variables (e.g. DYNNFT_ORACLE_TRANSPORT=http).

Examples:
  server                                  # memory storage, static oracle
  server --config dynnft.yaml             # load a config file
  server --addr :9090 --batch-interval 0  # no scheduled batch updates`,
	SilenceUsage: true,
	RunE:         runServer,
}

func init() {
	rootCmd.Flags().StringVar(&configFile, "config", "", "Path to a config file (yaml, json or toml)")
	rootCmd.Flags().String("addr", "", "HTTP listen address (overrides api.addr)")
	rootCmd.Flags().Duration("batch-interval", 0, "Batch update interval, 0 disables (overrides batch.interval)")
	rootCmd.Flags().String("log-level", "", "Log level (overrides log.level)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	config.LoadEnvFile(".env")

	v, err := config.NewViper(configFile)
	if err != nil {
		return err
	}
	for key, flag := range map[string]string{
		"api.addr":       "addr",
		"batch.interval": "batch-interval",
		"log.level":      "log-level",
	} {
		if f := cmd.Flags().Lookup(flag); f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return errors.Wrapf(err, "bind flag %s", flag)
			}
		}
	}

	cfg, err := config.LoadWithViper(v)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.JSON)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("close resources", zap.Error(err))
		}
	}()

	sched := scheduler.New(a.Ledger, cfg.Batch.Interval, logger.Named("scheduler"))
	handler := api.New(a.Ledger, api.Options{
		StrictOwnerAddress: cfg.API.StrictOwnerAddress,
		Status:             sched,
	}, logger.Named("api")).Handler()

	return serve(ctx, cfg.API.Addr, handler, sched, logger)
}

// serve runs the HTTP server and the batch scheduler until ctx is cancelled
// or either of them fails.
func serve(ctx context.Context, addr string, handler http.Handler, sched *scheduler.Scheduler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server")
		}
		return nil
	})

	g.Go(func() error {
		if err := sched.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return errors.Wrap(err, "batch scheduler")
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
