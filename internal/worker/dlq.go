package worker

// dlq.go: dead letter lists
// A job whose processor failed lands in dlq:{queue}. Email jobs are re-driven
// from there by the retry cron; the ones it gives up on move to
// dlq:abandoned:{queue} and stay for an operator.

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	DLQPrefix       = "dlq:"
	abandonedPrefix = DLQPrefix + "abandoned:"
)

// DLQEntry wraps a failed job with what is needed to retry or inspect it.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      string          `json:"failed_at"` // RFC 3339, UTC
	Attempts      int             `json:"attempts"`
}

// DLQKeys lists the dead letter and abandoned lists of every queue, for /health.
func DLQKeys() []string {
	queues := []string{QueueReporteTurno, QueueEmail}
	keys := make([]string, 0, 2*len(queues))
	for _, q := range queues {
		keys = append(keys, DLQPrefix+q, abandonedPrefix+q)
	}
	return keys
}

// SendToDLQ pushes a failed job to the dead letter list of its queue.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue string, job Job, reason string) {
	entry := DLQEntry{
		OriginalQueue: queue,
		JobType:       job.Type,
		Payload:       job.Payload,
		Reason:        reason,
		FailedAt:      time.Now().UTC().Format(time.RFC3339),
		Attempts:      job.Attempts,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: failed to marshal entry")
		return
	}

	dlqKey := DLQPrefix + queue
	if err := rdb.LPush(ctx, dlqKey, data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", dlqKey).Msg("dlq: failed to push to DLQ")
		return
	}

	log.Warn().
		Str("queue", queue).
		Str("job_type", job.Type).
		Str("reason", reason).
		Int("attempts", job.Attempts).
		Msg("dlq: job moved to dead letter queue")
}

// popDLQ takes the oldest entry of a dead letter list. ok is false once the
// list is empty. A malformed entry is dropped and reported through err.
func popDLQ(ctx context.Context, rdb *redis.Client, queue string) (entry DLQEntry, raw string, ok bool, err error) {
	raw, err = rdb.RPop(ctx, DLQPrefix+queue).Result()
	if errors.Is(err, redis.Nil) {
		return DLQEntry{}, "", false, nil
	}
	if err != nil {
		return DLQEntry{}, "", false, err
	}
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return DLQEntry{}, raw, true, err
	}
	return entry, raw, true, nil
}

// abandon parks an entry the cron will not retry again.
func abandon(ctx context.Context, rdb *redis.Client, queue, raw string) error {
	return rdb.LPush(ctx, abandonedPrefix+queue, raw).Err()
}
