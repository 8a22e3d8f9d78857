package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQueue(t *testing.T) *Queue {
	t.Helper()
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewQueue(rdb, "test:publish")
}

type fakePublisher struct {
	mu      sync.Mutex
	calls   []Job
	results map[int64]Result
	err     error
}

func (f *fakePublisher) PublishScheduled(_ context.Context, articleID int64, taskID string) (Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Job{ArticleID: articleID, TaskID: taskID})
	if f.err != nil {
		return ResultFailed, f.err
	}
	if r, ok := f.results[articleID]; ok {
		return r, nil
	}
	return ResultPublished, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestQueue_DueAndCancel(t *testing.T) {
	q := newQueue(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, q.Schedule(ctx, Job{ArticleID: 1, TaskID: "a", RunAt: now.Add(-time.Minute)}))
	require.NoError(t, q.Schedule(ctx, Job{ArticleID: 2, TaskID: "b", RunAt: now.Add(-2 * time.Minute)}))
	require.NoError(t, q.Schedule(ctx, Job{ArticleID: 3, TaskID: "c", RunAt: now.Add(time.Hour)}))

	jobs, err := q.Due(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, int64(2), jobs[0].ArticleID, "oldest job first")
	assert.Equal(t, "b", jobs[0].TaskID)

	require.NoError(t, q.Cancel(ctx, 1, "a"))
	jobs, err = q.Due(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestQueue_ClaimIsExclusive(t *testing.T) {
	q := newQueue(t)
	ctx := context.Background()
	job := Job{ArticleID: 9, TaskID: "task", RunAt: time.Now()}
	require.NoError(t, q.Schedule(ctx, job))

	ok, err := q.Claim(ctx, job)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = q.Claim(ctx, job)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestQueue_RescheduleReplacesRunTime(t *testing.T) {
	q := newQueue(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, q.Schedule(ctx, Job{ArticleID: 1, TaskID: "old", RunAt: now.Add(-time.Minute)}))
	require.NoError(t, q.Cancel(ctx, 1, "old"))
	require.NoError(t, q.Schedule(ctx, Job{ArticleID: 1, TaskID: "new", RunAt: now.Add(time.Hour)}))

	jobs, err := q.Due(ctx, now, 10)
	require.NoError(t, err)
	assert.Empty(t, jobs)

	jobs, err = q.Due(ctx, now.Add(2*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "new", jobs[0].TaskID)
}

func TestWorker_RunOnce(t *testing.T) {
	q := newQueue(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, q.Schedule(ctx, Job{ArticleID: 1, TaskID: "a", RunAt: now.Add(-time.Second)}))
	require.NoError(t, q.Schedule(ctx, Job{ArticleID: 2, TaskID: "b", RunAt: now.Add(-time.Second)}))
	require.NoError(t, q.Schedule(ctx, Job{ArticleID: 3, TaskID: "c", RunAt: now.Add(time.Hour)}))

	pub := &fakePublisher{results: map[int64]Result{2: ResultNotFound}}
	counter := NewPublishCounter()
	w := NewWorker(q, pub, discardLogger(), time.Second, counter)

	claimed := w.RunOnce(ctx, now)
	assert.Equal(t, 2, claimed)
	assert.Len(t, pub.calls, 2)
	assert.Equal(t, float64(1), testutil.ToFloat64(counter.WithLabelValues("published")))
	assert.Equal(t, float64(1), testutil.ToFloat64(counter.WithLabelValues("not_found")))

	// nothing is retried
	assert.Equal(t, 0, w.RunOnce(ctx, now))
	assert.Len(t, pub.calls, 2)
}

func TestWorker_FailureIsNotRetried(t *testing.T) {
	q := newQueue(t)
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, q.Schedule(ctx, Job{ArticleID: 5, TaskID: "x", RunAt: now}))

	pub := &fakePublisher{err: errors.New("db down")}
	counter := NewPublishCounter()
	w := NewWorker(q, pub, discardLogger(), time.Second, counter)

	assert.Equal(t, 1, w.RunOnce(ctx, now))
	assert.Equal(t, float64(1), testutil.ToFloat64(counter.WithLabelValues("error")))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestWorker_RunStopsOnCancel(t *testing.T) {
	q := newQueue(t)
	w := NewWorker(q, &fakePublisher{}, discardLogger(), 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
