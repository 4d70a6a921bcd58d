package oracle

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"dynamic-nft/internal/domain"
	"dynamic-nft/internal/observability"
)

// Default adapter configuration.
const (
	DefaultMinPrice     int64 = 1000
	DefaultMaxPrice     int64 = 1000000
	DefaultPrice        int64 = 45000
	DefaultFetchTimeout       = 30 * time.Second
)

// Config configures the Adapter.
type Config struct {
	// Transport labels metrics and logs (http, ws, quorum, static).
	Transport string
	// MinPrice and MaxPrice bound accepted replies, inclusive.
	MinPrice int64
	MaxPrice int64
	// DefaultPrice is used when the oracle fails and no price is cached.
	DefaultPrice int64
	// Timeout bounds a single oracle call. Zero disables it.
	Timeout time.Duration
	// RatePerMinute limits outbound calls. Zero means unlimited.
	RatePerMinute int
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		Transport:    "static",
		MinPrice:     DefaultMinPrice,
		MaxPrice:     DefaultMaxPrice,
		DefaultPrice: DefaultPrice,
		Timeout:      DefaultFetchTimeout,
	}
}

// Quote is the outcome of a price fetch.
type Quote struct {
	Price  int64
	Source domain.PriceSource
	// Err is the absorbed oracle failure, nil when Source is oracle.
	Err error
}

// Adapter wraps an Oracle with a sanity band and a cached-value fallback.
type Adapter struct {
	oracle  Oracle
	cfg     Config
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewAdapter creates an Adapter. Zero-valued price bounds take their defaults.
func NewAdapter(o Oracle, cfg Config, logger *zap.Logger) *Adapter {
	if cfg.MinPrice == 0 {
		cfg.MinPrice = DefaultMinPrice
	}
	if cfg.MaxPrice == 0 {
		cfg.MaxPrice = DefaultMaxPrice
	}
	if cfg.DefaultPrice == 0 {
		cfg.DefaultPrice = DefaultPrice
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &Adapter{
		oracle: o,
		cfg:    cfg,
		logger: logger.Named("oracle"),
	}
	if cfg.RatePerMinute > 0 {
		a.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RatePerMinute)), 1)
	}
	return a
}

// DefaultPrice returns the configured fallback price.
func (a *Adapter) DefaultPrice() int64 {
	return a.cfg.DefaultPrice
}

// FetchPrice asks the oracle for the current price. It never fails:
// on any error it returns lastKnown when positive, otherwise the default price.
func (a *Adapter) FetchPrice(ctx context.Context, lastKnown int64) Quote {
	start := time.Now()

	price, err := a.request(ctx)
	if err == nil {
		observability.RecordOracleRequest(a.cfg.Transport, string(domain.PriceSourceOracle), time.Since(start).Seconds())
		return Quote{Price: price, Source: domain.PriceSourceOracle}
	}

	q := Quote{Price: a.cfg.DefaultPrice, Source: domain.PriceSourceDefault, Err: errors.Mark(err, ErrUnavailable)}
	if lastKnown > 0 {
		q.Price = lastKnown
		q.Source = domain.PriceSourceCached
	}

	observability.RecordOracleRequest(a.cfg.Transport, string(q.Source), time.Since(start).Seconds())
	observability.RecordOracleFallback(fallbackReason(err))
	a.logger.Warn("oracle fetch failed, using fallback price",
		zap.String("transport", a.cfg.Transport),
		zap.String("source", string(q.Source)),
		zap.Int64("price", q.Price),
		zap.Error(err),
	)
	return q
}

func (a *Adapter) request(ctx context.Context) (int64, error) {
	if a.oracle == nil {
		return 0, errors.New("no oracle configured")
	}
	if a.limiter != nil && !a.limiter.Allow() {
		return 0, ErrRateLimited
	}

	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	reply, err := a.oracle.RequestFact(ctx, Prompt)
	if err != nil {
		return 0, errors.Wrap(err, "request fact")
	}
	return ParsePrice(reply, a.cfg.MinPrice, a.cfg.MaxPrice)
}

// ParsePrice parses a trimmed base-10 integer reply and checks it against [min, max].
func ParsePrice(reply string, min, max int64) (int64, error) {
	s := strings.TrimSpace(reply)
	price, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidReply, "reply %q", s)
	}
	if price < min || price > max {
		return 0, errors.Wrapf(ErrOutOfRange, "price %d not in [%d, %d]", price, min, max)
	}
	return price, nil
}

// fallbackReason maps an absorbed error to a metrics label.
func fallbackReason(err error) string {
	switch {
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrInvalidReply):
		return "invalid_reply"
	case errors.Is(err, ErrOutOfRange):
		return "out_of_range"
	case errors.Is(err, ErrDisagreement):
		return "disagreement"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "transport"
	}
}
