package hofp

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xanlib/tools-common/log"
)

type recordingLogger struct {
	lines atomic.Int64
}

func (r *recordingLogger) Log(_ log.Level, _ string, _ ...any) {
	r.lines.Add(1)
}

func TestNewPool(t *testing.T) {
	pool := NewPool(Options{Size: 2, BufferMultiplier: 3})
	require.Equal(t, 2, pool.Size())
	require.Equal(t, "(hofp)", pool.opts.LogPrefix)
	require.NotNil(t, pool.Context())
	require.Equal(t, 6, cap(pool.hofs))
	require.NoError(t, pool.Stop())

	// Stopping the pool tears down the context given to functions
	require.ErrorIs(t, pool.Context().Err(), context.Canceled)
}

func TestPoolQueue(t *testing.T) {
	var (
		executed atomic.Uint64
		pool     = NewPool(Options{})
	)

	require.Equal(t, runtime.NumCPU(), pool.Size())

	for i := 0; i < 42; i++ {
		require.NoError(t, pool.Queue(func(_ context.Context) error { executed.Add(1); return nil }))
	}

	require.NoError(t, pool.Stop())
	require.Equal(t, uint64(42), executed.Load())
}

func TestPoolFailsFast(t *testing.T) {
	var (
		err      = errors.New("error")
		executed bool
		pool     = NewPool(Options{Size: 1})
	)

	require.NoError(t, pool.Queue(func(_ context.Context) error { executed = true; return err }))
	require.ErrorIs(t, pool.Stop(), err)
	require.True(t, executed)
	require.Error(t, pool.Context().Err())

	// Subsequent calls should return the same error
	require.ErrorIs(t, pool.Stop(), err)
	require.ErrorIs(t, pool.Queue(func(_ context.Context) error { return nil }), err)
}

func TestPoolSetErr(t *testing.T) {
	var (
		first  = errors.New("first")
		second = errors.New("second")
		pool   = NewPool(Options{Size: 1})
	)

	require.True(t, pool.setErr(first))
	require.False(t, pool.setErr(second))
	require.ErrorIs(t, pool.Stop(), first)
}

func TestPoolLogsSecondaryErrors(t *testing.T) {
	var (
		logger = &recordingLogger{}
		pool   = NewPool(Options{Size: 2, Logger: logger})
		start  = make(chan struct{})
	)

	fn := func(_ context.Context) error {
		<-start
		return assert.AnError
	}

	require.NoError(t, pool.Queue(fn))
	require.NoError(t, pool.Queue(fn))

	// Give both workers time to pick up a function
	time.Sleep(50 * time.Millisecond)
	close(start)

	require.ErrorIs(t, pool.Stop(), assert.AnError)
	require.Equal(t, int64(1), logger.lines.Load())
}

func TestPoolContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		pool  = NewPool(Options{Context: ctx, Size: 3})
		count atomic.Uint64
	)

	fn := func(ctx context.Context) error {
		<-ctx.Done()
		count.Add(1)

		return ctx.Err()
	}

	for i := 0; i < 3; i++ {
		require.NoError(t, pool.Queue(fn))
	}

	// Give the scheduler time to start processing all the queued functions
	time.Sleep(100 * time.Millisecond)
	cancel()

	require.ErrorIs(t, pool.Stop(), context.Canceled)
	require.Equal(t, uint64(3), count.Load())
}

func TestPoolNoDeadlockWhenQueuingAfterFailure(t *testing.T) {
	var (
		pool = NewPool(Options{Size: 2})
		fn   = func(_ context.Context) error { time.Sleep(time.Millisecond); return assert.AnError }
	)

	for i := 0; i < 100; i++ {
		_ = pool.Queue(fn)
	}

	require.ErrorIs(t, pool.Stop(), assert.AnError)
}

func TestOptionsDefaults(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		opts := Options{}
		opts.defaults()
		require.Equal(t, Options{
			Context:          context.Background(),
			Size:             runtime.NumCPU(),
			BufferMultiplier: 1,
			LogPrefix:        "(hofp)",
		}, opts)
	})

	t.Run("Provided", func(t *testing.T) {
		opts := Options{Size: 4, BufferMultiplier: 2, LogPrefix: "(dispatch)"}
		opts.defaults()
		require.Equal(t, 4, opts.Size)
		require.Equal(t, 2, opts.BufferMultiplier)
		require.Equal(t, "(dispatch)", opts.LogPrefix)
	})
}
