package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"cochera/internal/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueReporteTurno = "jobs:reporte_turno"
	QueueEmail        = "jobs:email"

	JobReporteTurno = "reporte_turno"
	JobEmail        = "email"
)

// Job is the generic envelope for all async tasks. Attempts counts how many
// times the job was re-driven out of the dead letter queue.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts,omitempty"`
}

// Processor handles the payload of one job type. A returned error sends the
// job to the dead letter queue.
type Processor interface {
	Process(ctx context.Context, payload json.RawMessage) error
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EncolarReporteTurno asks the pool to render and mail a closed shift's report.
func (d *Dispatcher) EncolarReporteTurno(ctx context.Context, turnoID uuid.UUID) error {
	return d.enqueue(ctx, QueueReporteTurno, JobReporteTurno, ReporteTurnoPayload{TurnoID: turnoID.String()})
}

// EnqueueEmail pushes an email job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, JobEmail, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return push(ctx, d.rdb, queue, Job{Type: jobType, Payload: data})
}

func push(ctx context.Context, rdb *redis.Client, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, queue, encoded).Err()
}

// Pool consumes every registered queue with a fixed number of goroutines.
type Pool struct {
	rdb        *redis.Client
	processors map[string]Processor // queue → processor
	deadLetter func(ctx context.Context, queue string, job Job, reason string)
}

func NewPool(rdb *redis.Client, processors map[string]Processor) *Pool {
	p := &Pool{rdb: rdb, processors: processors}
	p.deadLetter = func(ctx context.Context, queue string, job Job, reason string) {
		SendToDLQ(ctx, rdb, queue, job, reason)
	}
	return p
}

// Start launches numWorkers goroutines consuming all queues.
// Each goroutine blocks on BRPOP, so idle workers cost nothing.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go p.run(ctx, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func (p *Pool) queues() []string {
	queues := make([]string, 0, len(p.processors))
	for q := range p.processors {
		queues = append(queues, q)
	}
	return queues
}

func (p *Pool) run(ctx context.Context, id int) {
	queues := p.queues()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if errors.Is(err, redis.Nil) {
				continue // timeout
			}
			if err != nil {
				if ctx.Err() == nil {
					log.Warn().Err(err).Int("worker", id).Msg("worker: BRPOP failed, backing off")
				}
				select {
				case <-ctx.Done():
				case <-time.After(redisBackoff):
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			p.handle(ctx, result[0], result[1])
		}
	}
}

func (p *Pool) handle(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		metrics.Job("desconocido", "invalido")
		return
	}

	proc, ok := p.processors[queue]
	if !ok {
		log.Error().Str("queue", queue).Str("type", job.Type).Msg("no processor for queue")
		return
	}

	log.Info().Str("type", job.Type).Str("queue", queue).Msg("processing job")
	if err := proc.Process(ctx, job.Payload); err != nil {
		metrics.Job(job.Type, "fallido")
		p.deadLetter(ctx, queue, job, err.Error())
		return
	}
	metrics.Job(job.Type, "ok")
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = retryBase, 3 = 2×retryBase.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * retryBase
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}

var retryBase = time.Second

// redisBackoff is the pause after a failed BRPOP, so workers do not spin
// while redis is unreachable.
var redisBackoff = time.Second
