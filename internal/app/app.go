// Package app wires configuration into stores, the oracle and the ledger.
package app

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"dynamic-nft/internal/config"
	"dynamic-nft/internal/ledger"
	"dynamic-nft/internal/oracle"
	"dynamic-nft/internal/reporting"
	chstore "dynamic-nft/internal/storage/clickhouse"
	"dynamic-nft/internal/storage/memory"
	"dynamic-nft/internal/storage/migrations"
	pgstore "dynamic-nft/internal/storage/postgres"
	"dynamic-nft/internal/verification"
)

// App holds the wired components and their cleanup.
type App struct {
	Config *config.Config
	Ledger *ledger.Ledger
	Stores ledger.Stores

	logger  *zap.Logger
	closers []func() error
}

// Open connects stores, dials the oracle and builds the ledger.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{Config: cfg, logger: logger}

	stores, err := a.openStores(ctx, cfg.Storage)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Stores = stores

	o, closeOracle, err := oracle.Dial(ctx, cfg.Oracle.Transport, cfg.Oracle.Endpoints, cfg.Oracle.StaticReply)
	if err != nil {
		a.Close()
		return nil, errors.Wrap(err, "dial oracle")
	}
	a.closers = append(a.closers, closeOracle)

	adapter := oracle.NewAdapter(o, oracle.Config{
		Transport:     cfg.Oracle.Transport,
		MinPrice:      cfg.Oracle.MinPrice,
		MaxPrice:      cfg.Oracle.MaxPrice,
		DefaultPrice:  cfg.Oracle.DefaultPrice,
		Timeout:       cfg.Oracle.Timeout,
		RatePerMinute: cfg.Oracle.RatePerMinute,
	}, logger)

	a.Ledger = ledger.New(ledger.Config{
		Name:        cfg.Collection.Name,
		Symbol:      cfg.Collection.Symbol,
		Description: cfg.Collection.Description,
		ImageBase:   cfg.Collection.ImageBase,
	}, stores, adapter, logger)

	if err := a.Ledger.RefreshGauges(ctx); err != nil {
		a.Close()
		return nil, err
	}

	logger.Info("ledger ready",
		zap.String("collection", cfg.Collection.Name),
		zap.String("storage", cfg.Storage.Backend),
		zap.Bool("clickhouse_history", cfg.Storage.ClickhouseDSN != ""),
		zap.String("oracle", cfg.Oracle.Transport),
	)
	return a, nil
}

// Reports returns a report generator over the app's stores.
func (a *App) Reports() *reporting.Generator {
	return reporting.NewGenerator(a.Stores.Tokens, a.Stores.State, a.Stores.History)
}

// Verifier returns an integrity verifier over the app's token store.
func (a *App) Verifier() *verification.Verifier {
	return verification.NewVerifier(a.Stores.Tokens)
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() error {
	var errs error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = errors.CombineErrors(errs, a.closers[i]())
	}
	a.closers = nil
	return errs
}

func (a *App) openStores(ctx context.Context, cfg config.StorageConfig) (ledger.Stores, error) {
	if cfg.Backend == config.BackendMemory {
		return ledger.Stores{
			Tokens:  memory.NewTokenStore(),
			State:   memory.NewLedgerStateStore(),
			History: memory.NewPriceUpdateStore(),
		}, nil
	}

	// PostgreSQL holds tokens and ledger state, and history unless ClickHouse is set
	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return ledger.Stores{}, errors.Wrap(err, "connect to postgres")
	}
	a.closers = append(a.closers, func() error { pool.Close(); return nil })

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		return ledger.Stores{}, errors.Wrap(err, "migrate postgres")
	}

	stores := ledger.Stores{
		Tokens:  pgstore.NewTokenStore(pool),
		State:   pgstore.NewLedgerStateStore(pool),
		History: pgstore.NewPriceUpdateStore(pool),
	}

	if cfg.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
		if err != nil {
			return ledger.Stores{}, errors.Wrap(err, "migrate clickhouse")
		}
		a.closers = append(a.closers, conn.Close)
		stores.History = chstore.NewPriceUpdateStore(conn)
	}

	return stores, nil
}
