package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dynamic-nft/internal/ledger"
)

type fakeRunner struct {
	calls   atomic.Int32
	result  *ledger.BatchResult
	err     error
	release chan struct{}
}

func (f *fakeRunner) BatchUpdateAll(ctx context.Context) (*ledger.BatchResult, error) {
	f.calls.Add(1)
	if f.release != nil {
		<-f.release
	}
	return f.result, f.err
}

func TestRunOnce_RecordsStatus(t *testing.T) {
	runner := &fakeRunner{result: &ledger.BatchResult{RunID: "r1", Price: 52891, Updated: 3}}
	s := New(runner, time.Hour, zap.NewNop())

	result, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Updated)

	st := s.Status()
	assert.Equal(t, 1, st.BatchRuns)
	assert.Equal(t, "success", st.LastBatchStatus)
	assert.Equal(t, 3, st.LastBatchCount)
	assert.False(t, st.BatchRunning)
	assert.Equal(t, "1h0m0s", st.Interval)
	assert.Empty(t, st.LastError)
}

func TestRunOnce_Error(t *testing.T) {
	runner := &fakeRunner{err: errors.New("storage down")}
	s := New(runner, 0, zap.NewNop())

	_, err := s.RunOnce(context.Background())
	require.Error(t, err)

	st := s.Status()
	assert.Equal(t, "error", st.LastBatchStatus)
	assert.Contains(t, st.LastError, "storage down")
	assert.Equal(t, "disabled", st.Interval)
}

func TestRunOnce_AlreadyRunning(t *testing.T) {
	runner := &fakeRunner{result: &ledger.BatchResult{}, release: make(chan struct{})}
	s := New(runner, time.Hour, zap.NewNop())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.RunOnce(context.Background())
	}()

	require.Eventually(t, func() bool { return s.Status().BatchRunning }, time.Second, 5*time.Millisecond)

	_, err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	close(runner.release)
	<-done
	assert.Equal(t, int32(1), runner.calls.Load())
}

func TestRun_Disabled(t *testing.T) {
	runner := &fakeRunner{result: &ledger.BatchResult{}}
	s := New(runner, 0, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := s.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, runner.calls.Load())
}

func TestRun_Ticks(t *testing.T) {
	runner := &fakeRunner{result: &ledger.BatchResult{Updated: 1}}
	s := New(runner, 10*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return runner.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)
}
