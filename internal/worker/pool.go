package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueRelatorioTurno = "jobs:relatorio_turno"

	// MaxAttempts is how many times a job runs before it lands in the DLQ.
	MaxAttempts = 3
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Processor handles the payload of one queue. A returned error re-enqueues
// the job until MaxAttempts.
type Processor interface {
	Process(ctx context.Context, payload json.RawMessage) error
}

// Dispatcher enqueues async jobs into Redis lists; the worker pool dequeues
// them via BRPOP. Without Redis it runs the processor in a goroutine instead,
// so shift reports still go out on a single-box install.
type Dispatcher struct {
	rdb    *redis.Client
	inline map[string]Processor
}

func NewDispatcher(rdb *redis.Client, processors map[string]Processor) *Dispatcher {
	return &Dispatcher{rdb: rdb, inline: processors}
}

// EnqueueRelatorioTurno schedules the shift-close report for turnoID.
func (d *Dispatcher) EnqueueRelatorioTurno(ctx context.Context, turnoID uuid.UUID) error {
	return d.enqueue(ctx, QueueRelatorioTurno, "relatorio_turno", RelatorioJobPayload{TurnoID: turnoID.String()})
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if d.rdb == nil {
		p, ok := d.inline[queue]
		if !ok {
			return fmt.Errorf("worker: no processor for %s", queue)
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			if err := p.Process(ctx, data); err != nil {
				log.Error().Err(err).Str("queue", queue).Msg("job inline falhou")
			}
		}()
		return nil
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data})
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming every queue in
// processors. Each goroutine blocks on BRPOP, zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, processors map[string]Processor) {
	queues := make([]string, 0, len(processors))
	for q := range processors {
		queues = append(queues, q)
	}
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, i, queues, processors)
	}
	log.Info().Int("workers", numWorkers).Strs("queues", queues).Msg("worker pool iniciado")
}

func runWorker(ctx context.Context, rdb *redis.Client, id int, queues []string, processors map[string]Processor) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("worker", id).Msg("worker encerrando")
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				// redis.Nil is the BRPOP timeout; anything else is Redis trouble.
				if !errors.Is(err, redis.Nil) {
					pausarAposFalha(ctx, id, err)
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, result[0], result[1], processors[result[0]])
		}
	}
}

// falhaRedisPausa is how long a worker waits after a failed BRPOP.
var falhaRedisPausa = 2 * time.Second

// pausarAposFalha holds the worker back while Redis is failing. It returns
// at once when ctx is done.
func pausarAposFalha(ctx context.Context, id int, err error) {
	if ctx.Err() != nil {
		return
	}
	log.Warn().Int("worker", id).Err(err).Msg("falha ao ler fila, aguardando")
	t := time.NewTimer(falhaRedisPausa)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func processJob(ctx context.Context, rdb *redis.Client, queue, raw string, p Processor) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("job ilegível descartado")
		return
	}
	if p == nil {
		SendToDLQ(ctx, rdb, queue, job, "nenhum processador registrado")
		return
	}

	job.Attempts++
	err := p.Process(ctx, job.Payload)
	if err == nil {
		return
	}
	if job.Attempts >= MaxAttempts {
		SendToDLQ(ctx, rdb, queue, job, err.Error())
		return
	}

	log.Warn().Err(err).Str("queue", queue).Int("attempt", job.Attempts).Msg("job falhou, reenfileirando")
	encoded, mErr := json.Marshal(job)
	if mErr != nil {
		return
	}
	if pErr := rdb.LPush(ctx, queue, encoded).Err(); pErr != nil {
		log.Error().Err(pErr).Str("queue", queue).Msg("falha ao reenfileirar job")
	}
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, base time.Duration, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * base
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
