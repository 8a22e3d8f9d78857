package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultQueueKey = "tam:scheduled_publish"

// Job is a pending publication of one article.
type Job struct {
	ArticleID int64
	TaskID    string
	RunAt     time.Time
}

func (j Job) member() string {
	return strconv.FormatInt(j.ArticleID, 10) + ":" + j.TaskID
}

func parseMember(member string, score float64) (Job, error) {
	id, taskID, ok := strings.Cut(member, ":")
	if !ok || taskID == "" {
		return Job{}, fmt.Errorf("malformed job member %q", member)
	}
	articleID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return Job{}, fmt.Errorf("malformed job member %q: %w", member, err)
	}
	return Job{ArticleID: articleID, TaskID: taskID, RunAt: time.UnixMilli(int64(score))}, nil
}

// Queue is a delayed job queue kept in a Redis sorted set scored by run time.
type Queue struct {
	rdb *redis.Client
	key string
}

func NewQueue(rdb *redis.Client, key string) *Queue {
	if key == "" {
		key = defaultQueueKey
	}
	return &Queue{rdb: rdb, key: key}
}

func (q *Queue) Schedule(ctx context.Context, job Job) error {
	err := q.rdb.ZAdd(ctx, q.key, redis.Z{Score: float64(job.RunAt.UnixMilli()), Member: job.member()}).Err()
	if err != nil {
		return fmt.Errorf("schedule zadd: %w", err)
	}
	return nil
}

// Cancel drops a queued job. Cancelling an unknown job is not an error.
func (q *Queue) Cancel(ctx context.Context, articleID int64, taskID string) error {
	if taskID == "" {
		return nil
	}
	if err := q.rdb.ZRem(ctx, q.key, Job{ArticleID: articleID, TaskID: taskID}.member()).Err(); err != nil {
		return fmt.Errorf("schedule zrem: %w", err)
	}
	return nil
}

// Due returns up to limit jobs whose run time is not after now, oldest first.
func (q *Queue) Due(ctx context.Context, now time.Time, limit int64) ([]Job, error) {
	entries, err := q.rdb.ZRangeByScoreWithScores(ctx, q.key, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.UnixMilli(), 10),
		Count: limit,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("schedule zrangebyscore: %w", err)
	}

	jobs := make([]Job, 0, len(entries))
	for _, e := range entries {
		member, _ := e.Member.(string)
		job, err := parseMember(member, e.Score)
		if err != nil {
			// unreadable entries would block the head of the queue forever
			_ = q.rdb.ZRem(ctx, q.key, e.Member).Err()
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// Claim removes the job from the queue. Only the caller that gets true may run it.
func (q *Queue) Claim(ctx context.Context, job Job) (bool, error) {
	n, err := q.rdb.ZRem(ctx, q.key, job.member()).Result()
	if err != nil {
		return false, fmt.Errorf("schedule claim: %w", err)
	}
	return n == 1, nil
}

func (q *Queue) Len(ctx context.Context) (int64, error) {
	return q.rdb.ZCard(ctx, q.key).Result()
}
