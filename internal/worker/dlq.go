package worker

// Jobs that fail MaxAttempts times are moved to a dead letter list per source
// queue, dlq:<queue>, for manual inspection with `comandactl dlq`.

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	DLQPrefix = "dlq:"
	// DLQMaxLen caps each dead letter list; the oldest entries are dropped.
	DLQMaxLen = 500
)

// DLQEntry is a failed job plus what is needed to debug or replay it.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      time.Time       `json:"failed_at"`
	Attempts      int             `json:"attempts"`
}

// SendToDLQ parks job in dlq:<queue>. Errors are only logged: the job has
// already been popped and there is nowhere else to put it.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue string, job Job, reason string) {
	data, err := json.Marshal(DLQEntry{
		OriginalQueue: queue,
		JobType:       job.Type,
		Payload:       job.Payload,
		Reason:        reason,
		FailedAt:      time.Now().UTC(),
		Attempts:      job.Attempts,
	})
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: falha ao serializar entrada")
		return
	}

	key := DLQPrefix + queue
	_, err = rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LPush(ctx, key, data)
		p.LTrim(ctx, key, 0, DLQMaxLen-1)
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("dlq_key", key).Str("payload", string(job.Payload)).Msg("dlq: job perdido")
		return
	}
	log.Warn().
		Str("queue", queue).
		Str("job_type", job.Type).
		Str("reason", reason).
		Int("attempts", job.Attempts).
		Msg("dlq: job movido para a fila de mortos")
}

// DLQLength returns the number of entries in a DLQ for monitoring.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}

// ListDLQ returns up to limit entries of a DLQ, newest first.
func ListDLQ(ctx context.Context, rdb *redis.Client, queue string, limit int64) ([]DLQEntry, error) {
	raws, err := rdb.LRange(ctx, DLQPrefix+queue, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]DLQEntry, 0, len(raws))
	for _, raw := range raws {
		var e DLQEntry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// RequeueDLQ moves every entry of a DLQ back to its source queue with a fresh
// attempt count. Returns how many jobs were moved.
func RequeueDLQ(ctx context.Context, rdb *redis.Client, queue string) (int, error) {
	moved := 0
	for {
		raw, err := rdb.RPop(ctx, DLQPrefix+queue).Result()
		if errors.Is(err, redis.Nil) {
			return moved, nil
		}
		if err != nil {
			return moved, err
		}
		var e DLQEntry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			continue
		}
		encoded, err := json.Marshal(Job{Type: e.JobType, Payload: e.Payload})
		if err != nil {
			continue
		}
		if err := rdb.LPush(ctx, e.OriginalQueue, encoded).Err(); err != nil {
			return moved, err
		}
		moved++
	}
}
