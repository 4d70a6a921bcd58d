// Package ledger implements the attribute ledger of dynamic NFTs.
//
// Every token's attributes are derived from a BTC/USD price fetched through
// an oracle adapter. The ledger mints tokens, re-derives their attributes on
// update, and keeps a price history. All operations on one Ledger are
// serialized.
package ledger

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"dynamic-nft/internal/classifier"
	"dynamic-nft/internal/domain"
	"dynamic-nft/internal/idhash"
	"dynamic-nft/internal/observability"
	"dynamic-nft/internal/oracle"
	"dynamic-nft/internal/storage"
)

// ErrNotFound is returned when a token id is unknown.
var ErrNotFound = storage.ErrNotFound

// DefaultDescription is the metadata description used when none is configured.
const DefaultDescription = "A dynamic NFT that evolves with Bitcoin price movements"

// Config describes the collection.
type Config struct {
	Name        string
	Symbol      string
	Description string
	ImageBase   string
}

// PriceFetcher supplies prices. *oracle.Adapter implements it.
type PriceFetcher interface {
	FetchPrice(ctx context.Context, lastKnown int64) oracle.Quote
	DefaultPrice() int64
}

// Stores groups the persistence the ledger needs.
type Stores struct {
	Tokens  storage.TokenStore
	State   storage.LedgerStateStore
	History storage.PriceUpdateStore
}

// Ledger is the dynamic NFT attribute ledger.
type Ledger struct {
	mu sync.Mutex

	cfg     Config
	tokens  storage.TokenStore
	state   storage.LedgerStateStore
	history storage.PriceUpdateStore
	prices  PriceFetcher
	logger  *zap.Logger
	now     func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// New creates a Ledger.
func New(cfg Config, stores Stores, prices PriceFetcher, logger *zap.Logger, opts ...Option) *Ledger {
	if cfg.Description == "" {
		cfg.Description = DefaultDescription
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	l := &Ledger{
		cfg:     cfg,
		tokens:  stores.Tokens,
		state:   stores.State,
		history: stores.History,
		prices:  prices,
		logger:  logger.Named("ledger"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Config returns the collection configuration.
func (l *Ledger) Config() Config {
	return l.cfg
}

// Mint creates a new token for owner with attributes derived from the current price.
func (l *Ledger) Mint(ctx context.Context, owner string) (*MintResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	res, err := l.mint(ctx, owner)
	if err != nil {
		observability.RecordLedgerError("mint")
		return nil, err
	}
	return res, nil
}

func (l *Ledger) mint(ctx context.Context, owner string) (*MintResult, error) {
	state, err := l.state.Get(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load ledger state")
	}

	seq, err := l.state.NextSequence(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "allocate token id")
	}
	tokenID := domain.FormatTokenID(seq)

	quote := l.prices.FetchPrice(ctx, state.LastKnownPrice)
	attrs := classifier.Classify(quote.Price)
	ts := l.now().UnixMilli()

	token := &domain.Token{
		TokenID:       tokenID,
		Sequence:      seq,
		Owner:         owner,
		CreatedAt:     ts,
		CreationPrice: quote.Price,
		Attributes:    attrs,
		UpdateCount:   0,
		LastUpdated:   ts,
	}
	if err := l.tokens.Insert(ctx, token); err != nil {
		return nil, errors.Wrapf(err, "insert token %s", tokenID)
	}

	if err := l.state.SetLastKnownPrice(ctx, quote.Price); err != nil {
		return nil, errors.Wrap(err, "record last known price")
	}

	if err := l.recordHistory(ctx, &domain.PriceUpdate{
		UpdateID:  idhash.ComputePriceUpdateID(domain.PriceUpdateMint, tokenID, 0, ts, quote.Price),
		TokenID:   tokenID,
		Kind:      domain.PriceUpdateMint,
		Timestamp: ts,
		OldPrice:  state.LastKnownPrice,
		NewPrice:  quote.Price,
		ChangePct: changePct(state.LastKnownPrice, quote.Price),
		Source:    quote.Source,
	}); err != nil {
		return nil, err
	}

	observability.RecordMint(quote.Price)
	l.refreshSupply(ctx)
	l.logger.Info("token minted",
		zap.String("token_id", tokenID),
		zap.String("owner", owner),
		zap.Int64("btc_price", quote.Price),
		zap.String("price_source", string(quote.Source)),
		zap.String("rarity", string(attrs.Rarity)),
	)

	return &MintResult{
		TokenID:    tokenID,
		Owner:      owner,
		Price:      quote.Price,
		Source:     quote.Source,
		Attributes: attrs,
	}, nil
}

// Update re-derives a token's attributes from the current price.
// Returns ErrNotFound for an unknown id without contacting the oracle.
func (l *Ledger) Update(ctx context.Context, tokenID string) (*UpdateResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	res, err := l.update(ctx, tokenID)
	if err != nil {
		observability.RecordLedgerError("update")
		return nil, err
	}
	return res, nil
}

func (l *Ledger) update(ctx context.Context, tokenID string) (*UpdateResult, error) {
	token, err := l.getToken(ctx, tokenID)
	if err != nil {
		return nil, err
	}

	state, err := l.state.Get(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load ledger state")
	}

	quote := l.prices.FetchPrice(ctx, state.LastKnownPrice)
	ts := l.now().UnixMilli()

	diff, err := l.applyPrice(ctx, token, quote.Price, ts)
	if err != nil {
		return nil, err
	}

	if err := l.state.SetLastKnownPrice(ctx, quote.Price); err != nil {
		return nil, errors.Wrap(err, "record last known price")
	}

	base := state.LastKnownPrice
	if base <= 0 {
		base = token.CreationPrice
	}
	pct := changePct(base, quote.Price)

	if err := l.recordHistory(ctx, &domain.PriceUpdate{
		UpdateID:  idhash.ComputePriceUpdateID(domain.PriceUpdateToken, tokenID, token.UpdateCount, ts, quote.Price),
		TokenID:   tokenID,
		Kind:      domain.PriceUpdateToken,
		Timestamp: ts,
		OldPrice:  base,
		NewPrice:  quote.Price,
		ChangePct: pct,
		Source:    quote.Source,
	}); err != nil {
		return nil, err
	}

	observability.RecordLastKnownPrice(quote.Price)
	l.logger.Info("token updated",
		zap.String("token_id", tokenID),
		zap.Int64("old_price", base),
		zap.Int64("new_price", quote.Price),
		zap.String("price_source", string(quote.Source)),
		zap.Strings("changed", changedFields(diff)),
	)

	return &UpdateResult{
		TokenID:     tokenID,
		OldPrice:    base,
		NewPrice:    quote.Price,
		Source:      quote.Source,
		ChangePct:   pct,
		Diff:        diff,
		Attributes:  token.Attributes,
		UpdateCount: token.UpdateCount,
	}, nil
}

// applyPrice replaces the token's bundle with classify(price), bumps its
// update counter and persists it. token is modified in place.
func (l *Ledger) applyPrice(ctx context.Context, token *domain.Token, price, ts int64) (domain.Diff, error) {
	next := classifier.Classify(price)
	diff := DiffBundles(token.Attributes, next)

	updated := *token
	updated.Attributes = next
	updated.UpdateCount++
	updated.LastUpdated = ts

	if err := l.tokens.Update(ctx, &updated); err != nil {
		return nil, errors.Wrapf(err, "store token %s", token.TokenID)
	}
	*token = updated

	observability.RecordTokenUpdate(changedFields(diff))
	return diff, nil
}

// BatchUpdateAll applies one freshly fetched price to every token in
// sequence order. An empty ledger returns a zero result without contacting
// the oracle. Per-token storage failures are reported in Failed and do not
// stop the run.
func (l *Ledger) BatchUpdateAll(ctx context.Context) (*BatchResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	start := l.now()
	res, err := l.batchUpdateAll(ctx)
	if err != nil {
		observability.RecordLedgerError("batch_update")
		observability.RecordBatchRun("failed", 0, time.Since(start).Seconds(), start.Unix())
		return nil, err
	}
	observability.RecordBatchRun(res.Status(), res.Updated, time.Since(start).Seconds(), start.Unix())
	return res, nil
}

func (l *Ledger) batchUpdateAll(ctx context.Context) (*BatchResult, error) {
	tokens, err := l.tokens.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list tokens")
	}
	if len(tokens) == 0 {
		return &BatchResult{}, nil
	}

	state, err := l.state.Get(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load ledger state")
	}

	quote := l.prices.FetchPrice(ctx, state.LastKnownPrice)
	ts := l.now().UnixMilli()
	res := &BatchResult{
		RunID:  uuid.NewString(),
		Price:  quote.Price,
		Source: quote.Source,
	}

	for _, token := range tokens {
		if err := ctx.Err(); err != nil {
			res.Failed = append(res.Failed, BatchFailure{TokenID: token.TokenID, Error: err.Error()})
			continue
		}
		diff, err := l.applyPrice(ctx, token, quote.Price, ts)
		if err != nil {
			l.logger.Warn("batch token update failed", zap.String("token_id", token.TokenID), zap.Error(err))
			res.Failed = append(res.Failed, BatchFailure{TokenID: token.TokenID, Error: err.Error()})
			continue
		}
		res.Updated++
		res.Changes = append(res.Changes, TokenChange{TokenID: token.TokenID, Diff: diff})
	}

	if err := l.state.SetLastKnownPrice(ctx, quote.Price); err != nil {
		return nil, errors.Wrap(err, "record last known price")
	}

	if err := l.recordHistory(ctx, &domain.PriceUpdate{
		UpdateID:  idhash.ComputePriceUpdateID(domain.PriceUpdateBatch, res.RunID, 0, ts, quote.Price),
		Kind:      domain.PriceUpdateBatch,
		Timestamp: ts,
		OldPrice:  state.LastKnownPrice,
		NewPrice:  quote.Price,
		ChangePct: changePct(state.LastKnownPrice, quote.Price),
		Source:    quote.Source,
	}); err != nil {
		return nil, err
	}

	observability.RecordLastKnownPrice(quote.Price)
	l.logger.Info("batch update finished",
		zap.String("run_id", res.RunID),
		zap.Int64("btc_price", quote.Price),
		zap.String("price_source", string(quote.Source)),
		zap.Int("updated", res.Updated),
		zap.Int("failed", len(res.Failed)),
	)
	return res, nil
}

// Get returns a copy of the token.
func (l *Ledger) Get(ctx context.Context, tokenID string) (*domain.Token, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.getToken(ctx, tokenID)
}

// OwnerOf returns the owner of a token.
func (l *Ledger) OwnerOf(ctx context.Context, tokenID string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	token, err := l.getToken(ctx, tokenID)
	if err != nil {
		return "", err
	}
	return token.Owner, nil
}

// Metadata returns the standard NFT metadata view of a token.
func (l *Ledger) Metadata(ctx context.Context, tokenID string) (*domain.Metadata, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	token, err := l.getToken(ctx, tokenID)
	if err != nil {
		return nil, err
	}

	a := token.Attributes
	return &domain.Metadata{
		TokenID:     token.TokenID,
		Owner:       token.Owner,
		Name:        l.cfg.Name + " #" + token.TokenID,
		Description: l.cfg.Description,
		Image:       l.imageURL(a),
		Attributes: []domain.MetadataAttribute{
			{TraitType: "Color", Value: string(a.Color)},
			{TraitType: "Rarity", Value: string(a.Rarity)},
			{TraitType: "Mood", Value: string(a.Mood)},
			{TraitType: "Animation Speed", Value: string(a.AnimationSpeed)},
			{TraitType: "Background", Value: string(a.Background)},
			{TraitType: "BTC Price", Value: a.Price},
		},
		CreatedAt:     token.CreatedAt,
		LastUpdated:   token.LastUpdated,
		CreationPrice: token.CreationPrice,
		UpdateCount:   token.UpdateCount,
	}, nil
}

// imageURL encodes the visual attributes as generator query parameters.
func (l *Ledger) imageURL(a domain.AttributeBundle) string {
	return l.cfg.ImageBase +
		"?color=" + url.QueryEscape(string(a.Color)) +
		"&rarity=" + url.QueryEscape(string(a.Rarity)) +
		"&animation=" + url.QueryEscape(string(a.AnimationSpeed))
}

// Preview diffs the token against the cached price (or the default price
// when none is cached). It never contacts the oracle and never mutates state.
func (l *Ledger) Preview(ctx context.Context, tokenID string) (*PreviewResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	token, err := l.getToken(ctx, tokenID)
	if err != nil {
		return nil, err
	}

	state, err := l.state.Get(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load ledger state")
	}

	price := state.LastKnownPrice
	if price <= 0 {
		price = l.prices.DefaultPrice()
	}
	return preview(token, price), nil
}

// PreviewAt diffs the token against an explicit price.
func (l *Ledger) PreviewAt(ctx context.Context, tokenID string, price int64) (*PreviewResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	token, err := l.getToken(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	return preview(token, price), nil
}

func preview(token *domain.Token, price int64) *PreviewResult {
	next := classifier.Classify(price)
	diff := DiffBundles(token.Attributes, next)
	return &PreviewResult{
		TokenID:     token.TokenID,
		Price:       price,
		WouldChange: !diff.Empty(),
		Diff:        diff,
		Attributes:  next,
	}
}

// Stats returns collection statistics. Every rarity bucket is present.
func (l *Ledger) Stats(ctx context.Context) (*domain.CollectionStats, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	counts, err := l.tokens.CountByRarity(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "count by rarity")
	}

	state, err := l.state.Get(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load ledger state")
	}

	total, err := l.history.Count(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "count price updates")
	}

	stats := &domain.CollectionStats{
		Name:           l.cfg.Name,
		Symbol:         l.cfg.Symbol,
		RarityCounts:   make(map[domain.Rarity]int, len(domain.Rarities)),
		LastKnownPrice: state.LastKnownPrice,
		TotalUpdates:   total,
	}
	for _, r := range domain.Rarities {
		stats.RarityCounts[r] = counts[r]
		stats.TotalSupply += counts[r]
	}
	return stats, nil
}

// List returns all tokens in sequence order.
func (l *Ledger) List(ctx context.Context) ([]*domain.Token, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tokens, err := l.tokens.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list tokens")
	}
	return tokens, nil
}

// History returns recorded price updates with timestamps in [start, end] (ms).
func (l *Ledger) History(ctx context.Context, start, end int64) ([]*domain.PriceUpdate, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	updates, err := l.history.GetByTimeRange(ctx, start, end)
	if err != nil {
		return nil, errors.Wrap(err, "query price history")
	}
	return updates, nil
}

// TokenHistory returns the price updates recorded for one token, oldest first.
// Batch runs are recorded collection-wide and are not included.
func (l *Ledger) TokenHistory(ctx context.Context, tokenID string) ([]*domain.PriceUpdate, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.getToken(ctx, tokenID); err != nil {
		return nil, err
	}
	updates, err := l.history.GetByTokenID(ctx, tokenID)
	if err != nil {
		return nil, errors.Wrapf(err, "query price history for %s", tokenID)
	}
	return updates, nil
}

// RefreshGauges sets the supply and cached price gauges from stored state.
func (l *Ledger) RefreshGauges(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	n, err := l.supply(ctx)
	if err != nil {
		return err
	}
	state, err := l.state.Get(ctx)
	if err != nil {
		return errors.Wrap(err, "load ledger state")
	}
	observability.RecordTotalSupply(n)
	observability.RecordLastKnownPrice(state.LastKnownPrice)
	return nil
}

func (l *Ledger) supply(ctx context.Context) (int, error) {
	counts, err := l.tokens.CountByRarity(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "count by rarity")
	}
	n := 0
	for _, c := range counts {
		n += c
	}
	return n, nil
}

func (l *Ledger) refreshSupply(ctx context.Context) {
	n, err := l.supply(ctx)
	if err != nil {
		l.logger.Warn("supply gauge not refreshed", zap.Error(err))
		return
	}
	observability.RecordTotalSupply(n)
}

func (l *Ledger) getToken(ctx context.Context, tokenID string) (*domain.Token, error) {
	token, err := l.tokens.GetByID(ctx, tokenID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, errors.Wrapf(ErrNotFound, "token %s", tokenID)
		}
		return nil, errors.Wrapf(err, "get token %s", tokenID)
	}
	return token, nil
}

func (l *Ledger) recordHistory(ctx context.Context, u *domain.PriceUpdate) error {
	if err := l.history.Insert(ctx, u); err != nil {
		return errors.Wrapf(err, "record %s price update", u.Kind)
	}
	return nil
}

// changePct returns (next-base)/base*100 rounded to 2 places, or nil when base is not positive.
func changePct(base, next int64) *decimal.Decimal {
	if base <= 0 {
		return nil
	}
	pct := decimal.NewFromInt(next - base).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(base), 2)
	return &pct
}
