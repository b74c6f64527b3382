// AngelaMos | 2026
// queue.go

package cv

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const renderQueueKey = "cv:render:queue"

// Generator hands a render request to whatever produces the document.
// The render worker lives outside this service; we only enqueue.
type Generator interface {
	Generate(ctx context.Context, job RenderJob) (string, error)
}

type RenderJob struct {
	JobID      string    `json:"job_id"`
	UserID     int64     `json:"user_id"`
	TemplateID string    `json:"template_id"`
	Format     string    `json:"format"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// RedisQueue pushes render jobs onto a Redis list consumed by the
// render worker.
type RedisQueue struct {
	rdb *redis.Client
}

func NewRedisQueue(rdb *redis.Client) *RedisQueue {
	return &RedisQueue{rdb: rdb}
}

func (q *RedisQueue) Generate(ctx context.Context, job RenderJob) (string, error) {
	if job.JobID == "" {
		job.JobID = uuid.NewString()
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("marshal render job: %w", err)
	}

	if err := q.rdb.LPush(ctx, renderQueueKey, payload).Err(); err != nil {
		return "", fmt.Errorf("enqueue render job: %w", err)
	}

	return job.JobID, nil
}

var _ Generator = (*RedisQueue)(nil)
