package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Result is the outcome of one scheduled publication.
type Result string

const (
	ResultPublished Result = "published"
	ResultSkipped   Result = "skipped"
	ResultNotFound  Result = "not_found"
	ResultFailed    Result = "error"
)

// Publisher publishes the article a claimed job points at.
type Publisher interface {
	PublishScheduled(ctx context.Context, articleID int64, taskID string) (Result, error)
}

// NewPublishCounter builds the scheduled_publish_total counter. The caller registers it.
func NewPublishCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduled_publish_total",
		Help: "Scheduled article publications by result.",
	}, []string{"result"})
}

// Worker polls the queue and runs due jobs. Jobs are never retried.
type Worker struct {
	queue     *Queue
	publisher Publisher
	logger    *slog.Logger
	interval  time.Duration
	batchSize int64
	counter   *prometheus.CounterVec
	now       func() time.Time
}

func NewWorker(queue *Queue, publisher Publisher, logger *slog.Logger, interval time.Duration, counter *prometheus.CounterVec) *Worker {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		queue:     queue,
		publisher: publisher,
		logger:    logger,
		interval:  interval,
		batchSize: 100,
		counter:   counter,
		now:       time.Now,
	}
}

// Run polls until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("publish worker started", slog.String("interval", w.interval.String()))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.RunOnce(ctx, w.now())
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("publish worker stopping")
			return
		case <-ticker.C:
			w.RunOnce(ctx, w.now())
		}
	}
}

// RunOnce processes every job due at now and returns how many it claimed.
func (w *Worker) RunOnce(ctx context.Context, now time.Time) int {
	jobs, err := w.queue.Due(ctx, now, w.batchSize)
	if err != nil {
		w.logger.Error("failed to read due jobs", slog.String("error", err.Error()))
		return 0
	}

	claimed := 0
	for _, job := range jobs {
		if ctx.Err() != nil {
			break
		}
		ok, err := w.queue.Claim(ctx, job)
		if err != nil {
			w.logger.Error("failed to claim job", slog.Int64("article_id", job.ArticleID), slog.String("error", err.Error()))
			continue
		}
		if !ok {
			continue
		}
		claimed++
		w.run(ctx, job)
	}
	return claimed
}

func (w *Worker) run(ctx context.Context, job Job) {
	result, err := w.publisher.PublishScheduled(ctx, job.ArticleID, job.TaskID)
	if err != nil {
		result = ResultFailed
	}
	if w.counter != nil {
		w.counter.WithLabelValues(string(result)).Inc()
	}

	attrs := []any{
		slog.Int64("article_id", job.ArticleID),
		slog.String("task_id", job.TaskID),
		slog.String("result", string(result)),
	}
	switch result {
	case ResultPublished:
		w.logger.Info("scheduled article published", attrs...)
	case ResultSkipped:
		w.logger.Info("scheduled publication skipped", attrs...)
	case ResultNotFound:
		w.logger.Error("scheduled article not found", attrs...)
	default:
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}
		w.logger.Error("scheduled publication failed", attrs...)
	}
}
