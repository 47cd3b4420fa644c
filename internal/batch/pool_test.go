package batch

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestPool_RunsTasksAndReportsResults(t *testing.T) {
	pool := NewPool(2, 8, 0, testLogger())

	var (
		mu      sync.Mutex
		results = make(map[string]error)
		wg      sync.WaitGroup
	)
	failure := errors.New("boom")
	for _, id := range []string{"ok-1", "ok-2", "fail"} {
		id := id
		wg.Add(1)
		err := pool.Submit(Task{
			ID: id,
			Run: func(ctx context.Context) error {
				if id == "fail" {
					return failure
				}
				return nil
			},
			OnDone: func(err error) {
				mu.Lock()
				results[id] = err
				mu.Unlock()
				wg.Done()
			},
		})
		require.NoError(t, err)
	}
	wg.Wait()

	assert.NoError(t, results["ok-1"])
	assert.NoError(t, results["ok-2"])
	assert.ErrorIs(t, results["fail"], failure)
	require.NoError(t, pool.Shutdown(context.Background()))
}

func TestPool_RecoversPanics(t *testing.T) {
	pool := NewPool(1, 1, 0, testLogger())

	done := make(chan error, 1)
	require.NoError(t, pool.Submit(Task{
		ID:     "panics",
		Run:    func(ctx context.Context) error { panic("unexpected") },
		OnDone: func(err error) { done <- err },
	}))

	err := <-done
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")

	// the worker survives the panic
	second := make(chan error, 1)
	require.NoError(t, pool.Submit(Task{
		ID:     "after",
		Run:    func(ctx context.Context) error { return nil },
		OnDone: func(err error) { second <- err },
	}))
	assert.NoError(t, <-second)
	require.NoError(t, pool.Shutdown(context.Background()))
}

func TestPool_QueueFull(t *testing.T) {
	pool := NewPool(1, 1, 0, testLogger())
	release := make(chan struct{})
	started := make(chan struct{})

	require.NoError(t, pool.Submit(Task{ID: "running", Run: func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	}}))
	<-started
	require.NoError(t, pool.Submit(Task{ID: "queued", Run: func(ctx context.Context) error { return nil }}))

	err := pool.Submit(Task{ID: "rejected", Run: func(ctx context.Context) error { return nil }})
	assert.ErrorIs(t, err, ErrQueueFull)

	close(release)
	require.NoError(t, pool.Shutdown(context.Background()))
}

func TestPool_ShutdownDrainsQueue(t *testing.T) {
	pool := NewPool(1, 4, 0, testLogger())
	var ran int32
	for i := 0; i < 4; i++ {
		require.NoError(t, pool.Submit(Task{ID: "task", Run: func(ctx context.Context) error {
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&ran, 1)
			return nil
		}}))
	}

	require.NoError(t, pool.Shutdown(context.Background()))
	assert.Equal(t, int32(4), atomic.LoadInt32(&ran))

	err := pool.Submit(Task{ID: "late", Run: func(ctx context.Context) error { return nil }})
	assert.ErrorIs(t, err, ErrPoolClosed)
	// repeated shutdown is a no-op
	assert.NoError(t, pool.Shutdown(context.Background()))
}

func TestPool_ShutdownDeadlineCancelsRunningTasks(t *testing.T) {
	pool := NewPool(1, 1, 0, testLogger())
	started := make(chan struct{})
	done := make(chan error, 1)

	require.NoError(t, pool.Submit(Task{
		ID: "slow",
		Run: func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		},
		OnDone: func(err error) { done <- err },
	}))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := pool.Shutdown(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestPool_TaskTimeout(t *testing.T) {
	pool := NewPool(1, 1, 10*time.Millisecond, testLogger())
	done := make(chan error, 1)

	require.NoError(t, pool.Submit(Task{
		ID: "times-out",
		Run: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
		OnDone: func(err error) { done <- err },
	}))

	assert.ErrorIs(t, <-done, context.DeadlineExceeded)
	require.NoError(t, pool.Shutdown(context.Background()))
}
