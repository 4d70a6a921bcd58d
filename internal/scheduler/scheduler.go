// Package scheduler runs the periodic batch update of every token.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"dynamic-nft/internal/ledger"
)

// ErrAlreadyRunning is returned by RunOnce while another run is in progress.
var ErrAlreadyRunning = errors.New("batch update already running")

// BatchRunner is the ledger operation the scheduler drives.
type BatchRunner interface {
	BatchUpdateAll(ctx context.Context) (*ledger.BatchResult, error)
}

// Scheduler triggers BatchUpdateAll on a fixed interval and tracks run state.
type Scheduler struct {
	runner   BatchRunner
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time

	mu         sync.Mutex
	started    time.Time
	running    bool
	lastRun    time.Time
	runs       int
	lastStatus string
	lastCount  int
	lastErr    string
}

// New creates a scheduler. A zero interval disables periodic runs.
func New(runner BatchRunner, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
		logger:   logger,
		now:      time.Now,
		started:  time.Now(),
	}
}

// Run blocks until ctx is done, running a batch immediately and then on every tick.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		s.logger.Info("batch scheduler disabled")
		<-ctx.Done()
		return ctx.Err()
	}

	s.logger.Info("starting batch scheduler", zap.Duration("interval", s.interval))

	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if _, err := s.RunOnce(ctx); err != nil && !errors.Is(err, ErrAlreadyRunning) {
		s.logger.Error("scheduled batch update failed", zap.Error(err))
	}
}

// RunOnce runs a single batch update unless one is already in progress.
func (s *Scheduler) RunOnce(ctx context.Context) (*ledger.BatchResult, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Info("batch update already running, skipping")
		return nil, ErrAlreadyRunning
	}
	s.running = true
	s.mu.Unlock()

	start := s.now()
	result, err := s.runner.BatchUpdateAll(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.lastRun = s.now()
	s.runs++
	if err != nil {
		s.lastStatus = "error"
		s.lastCount = 0
		s.lastErr = err.Error()
		return nil, errors.Wrap(err, "batch update")
	}

	s.lastStatus = result.Status()
	s.lastCount = result.Updated
	s.lastErr = ""
	s.logger.Info("batch update completed",
		zap.String("run_id", result.RunID),
		zap.String("status", result.Status()),
		zap.Int("updated", result.Updated),
		zap.Int("failed", len(result.Failed)),
		zap.Int64("btc_price", result.Price),
		zap.Duration("took", s.lastRun.Sub(start)),
	)
	return result, nil
}

// Status is a snapshot of scheduler state.
type Status struct {
	Status          string    `json:"status"`
	Uptime          string    `json:"uptime"`
	Started         time.Time `json:"started"`
	Interval        string    `json:"interval"`
	LastBatchRun    time.Time `json:"last_batch_run,omitempty"`
	BatchRuns       int       `json:"batch_runs"`
	BatchRunning    bool      `json:"batch_running"`
	LastBatchStatus string    `json:"last_batch_status,omitempty"`
	LastBatchCount  int       `json:"last_batch_updated"`
	LastError       string    `json:"last_error,omitempty"`
}

// Status returns the current scheduler state.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	interval := "disabled"
	if s.interval > 0 {
		interval = s.interval.String()
	}
	return Status{
		Status:          "running",
		Uptime:          s.now().Sub(s.started).Truncate(time.Second).String(),
		Started:         s.started,
		Interval:        interval,
		LastBatchRun:    s.lastRun,
		BatchRuns:       s.runs,
		BatchRunning:    s.running,
		LastBatchStatus: s.lastStatus,
		LastBatchCount:  s.lastCount,
		LastError:       s.lastErr,
	}
}
