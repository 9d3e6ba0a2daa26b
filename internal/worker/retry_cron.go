package worker

// retry_cron.go
// Background goroutine that periodically moves dead-lettered email jobs back
// to their queue. Mail fails mostly while the SMTP server is down, so a tick
// is skipped while the mailer's breaker is open, and each job is re-driven a
// bounded number of times.

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 5 * time.Minute
	retryBatchSize    = 10
	maxRedrives       = 3
)

// BreakerState reports a circuit breaker state ("closed", "open", "half-open").
type BreakerState interface {
	State() string
}

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	RDB    *redis.Client
	Mailer BreakerState
}

// StartRetryCron launches the re-drive goroutine. It respects the context for
// graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				redriveEmails(ctx, cfg)
			}
		}
	}()
}

func redriveEmails(ctx context.Context, cfg RetryCronConfig) {
	if cfg.Mailer != nil && cfg.Mailer.State() == "open" {
		log.Debug().Msg("retry_cron: mailer circuit is open, skipping tick")
		return
	}

	for i := 0; i < retryBatchSize; i++ {
		entry, raw, ok, err := popDLQ(ctx, cfg.RDB, QueueEmail)
		if !ok {
			if err != nil {
				log.Error().Err(err).Msg("retry_cron: reading DLQ failed")
			}
			return
		}
		if err != nil {
			log.Error().Err(err).Msg("retry_cron: discarding malformed DLQ entry")
			continue
		}

		job, retry := redriveJob(entry)
		if !retry {
			if err := abandon(ctx, cfg.RDB, QueueEmail, raw); err != nil {
				log.Error().Err(err).Msg("retry_cron: could not park abandoned job")
			}
			log.Warn().Str("job_type", entry.JobType).Int("attempts", entry.Attempts).Msg("retry_cron: job abandoned")
			continue
		}
		if err := push(ctx, cfg.RDB, entry.OriginalQueue, job); err != nil {
			log.Error().Err(err).Msg("retry_cron: re-enqueue failed")
			_ = cfg.RDB.RPush(ctx, DLQPrefix+QueueEmail, raw).Err()
			return
		}
		log.Info().Str("queue", entry.OriginalQueue).Int("attempts", job.Attempts).Msg("retry_cron: job re-driven")
	}
}

// redriveJob rebuilds the job of a DLQ entry, or reports false when it has
// already been re-driven maxRedrives times.
func redriveJob(entry DLQEntry) (Job, bool) {
	if entry.Attempts >= maxRedrives {
		return Job{}, false
	}
	return Job{Type: entry.JobType, Payload: entry.Payload, Attempts: entry.Attempts + 1}, true
}
