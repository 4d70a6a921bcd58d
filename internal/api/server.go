// Package api exposes the attribute ledger over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dynamic-nft/internal/domain"
	"dynamic-nft/internal/ledger"
	"dynamic-nft/internal/observability"
	"dynamic-nft/internal/scheduler"
)

// Ledger is the subset of ledger operations served over HTTP.
type Ledger interface {
	Mint(ctx context.Context, owner string) (*ledger.MintResult, error)
	Update(ctx context.Context, tokenID string) (*ledger.UpdateResult, error)
	BatchUpdateAll(ctx context.Context) (*ledger.BatchResult, error)
	Metadata(ctx context.Context, tokenID string) (*domain.Metadata, error)
	OwnerOf(ctx context.Context, tokenID string) (string, error)
	Preview(ctx context.Context, tokenID string) (*ledger.PreviewResult, error)
	PreviewAt(ctx context.Context, tokenID string, price int64) (*ledger.PreviewResult, error)
	Stats(ctx context.Context) (*domain.CollectionStats, error)
	History(ctx context.Context, start, end int64) ([]*domain.PriceUpdate, error)
	TokenHistory(ctx context.Context, tokenID string) ([]*domain.PriceUpdate, error)
}

// StatusSource reports scheduler state for /status.
type StatusSource interface {
	Status() scheduler.Status
}

// Options configures the HTTP API.
type Options struct {
	// StrictOwnerAddress rejects mint owners that are not valid ed25519 public keys.
	StrictOwnerAddress bool
	// Status is optional; /status is only registered when set.
	Status StatusSource
}

// Server holds the HTTP handlers.
type Server struct {
	ledger Ledger
	opts   Options
	logger *zap.Logger
}

// New creates the API server.
func New(l Ledger, opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{ledger: l, opts: opts, logger: logger}
}

// Router builds the gin engine with all routes and middleware.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(s.logger), Metrics())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/metrics", gin.WrapH(observability.Handler()))
	if s.opts.Status != nil {
		r.GET("/status", func(c *gin.Context) {
			c.JSON(http.StatusOK, s.opts.Status.Status())
		})
	}

	v1 := r.Group("/v1")
	{
		v1.POST("/tokens", s.mint)
		v1.POST("/tokens/batch-update", s.batchUpdate)
		v1.POST("/tokens/:id/update", s.update)
		v1.GET("/tokens/:id", s.metadata)
		v1.GET("/tokens/:id/owner", s.owner)
		v1.GET("/tokens/:id/preview", s.preview)
		v1.GET("/tokens/:id/history", s.tokenHistory)
		v1.GET("/stats", s.stats)
		v1.GET("/history", s.history)
	}
	return r
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.Router()
}
