package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T) *Queue {
	q := NewQueue(Options{Workers: 2, QueueSize: 16, Backoff: time.Millisecond}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = q.Close(context.Background()) })
	return q
}

func TestQueueRunsSubmittedTasks(t *testing.T) {
	q := newTestQueue(t)

	var ran int32
	for i := 0; i < 5; i++ {
		require.NoError(t, q.Submit(Task{Name: "count", Run: func(ctx context.Context) error {
			atomic.AddInt32(&ran, 1)
			return nil
		}}))
	}
	q.Wait()

	assert.Equal(t, int32(5), atomic.LoadInt32(&ran))
}

func TestQueueRetriesUntilSuccess(t *testing.T) {
	q := newTestQueue(t)

	var calls int32
	require.NoError(t, q.Submit(Task{Name: "flaky", Attempts: 3, Run: func(ctx context.Context) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return errors.New("not yet")
		}
		return nil
	}}))
	q.Wait()

	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestQueueGivesUpAfterAttempts(t *testing.T) {
	q := newTestQueue(t)

	var calls int32
	require.NoError(t, q.Submit(Task{Name: "broken", Attempts: 2, Run: func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("always")
	}}))
	q.Wait()

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestQueueRecoversPanics(t *testing.T) {
	q := newTestQueue(t)

	require.NoError(t, q.Submit(Task{Name: "panics", Run: func(ctx context.Context) error {
		panic("boom")
	}}))
	q.Wait()

	var ran bool
	require.NoError(t, q.Submit(Task{Name: "after", Run: func(ctx context.Context) error {
		ran = true
		return nil
	}}))
	q.Wait()
	assert.True(t, ran)
}

func TestQueueRejectsAfterClose(t *testing.T) {
	q := NewQueue(Options{Workers: 1}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	var ran int32
	require.NoError(t, q.Submit(Task{Name: "drain", Run: func(ctx context.Context) error {
		atomic.AddInt32(&ran, 1)
		return nil
	}}))
	require.NoError(t, q.Close(context.Background()))

	assert.Equal(t, int32(1), atomic.LoadInt32(&ran))
	assert.ErrorIs(t, q.Submit(Task{Name: "late", Run: func(ctx context.Context) error { return nil }}), ErrQueueClosed)
}
