package worker

// relance_cron.go
// Background goroutine that periodically moves failed email jobs from the
// DLQ back to QueueEmail once the SMTP circuit breaker is closed again.

import (
	"context"
	"encoding/json"
	"time"

	"gescom/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	relanceTickInterval = 5 * time.Minute
	relanceBatchSize    = 20
	// MaxRelances is the number of times a job is taken back out of the DLQ
	// before it stays there for manual inspection.
	MaxRelances = 3
)

// RelanceCronConfig holds all dependencies for the relaunch goroutine.
type RelanceCronConfig struct {
	RDB *redis.Client
	CB  *infra.CircuitBreaker
}

// StartRelanceCron ticks every 5 minutes until ctx is cancelled.
func StartRelanceCron(ctx context.Context, cfg RelanceCronConfig) {
	go func() {
		ticker := time.NewTicker(relanceTickInterval)
		defer ticker.Stop()

		log.Info().Msg("relance_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("relance_cron: shutting down")
				return
			case <-ticker.C:
				relancer(ctx, cfg)
			}
		}
	}()
}

func relancer(ctx context.Context, cfg RelanceCronConfig) {
	if cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("relance_cron: circuit breaker is open, skipping tick")
		return
	}

	dlqKey := DLQPrefix + QueueEmail
	n, err := cfg.RDB.LLen(ctx, dlqKey).Result()
	if err != nil {
		log.Error().Err(err).Msg("relance_cron: failed to read DLQ length")
		return
	}
	if n > relanceBatchSize {
		n = relanceBatchSize
	}

	relances := 0
	for i := int64(0); i < n; i++ {
		raw, err := cfg.RDB.RPop(ctx, dlqKey).Result()
		if err != nil {
			break
		}
		var entry DLQEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			log.Error().Err(err).Msg("relance_cron: dropping unreadable DLQ entry")
			continue
		}

		target, job, ok := planRelance(entry)
		if !ok {
			// back at the head so the batch does not pick it up again this tick
			_ = cfg.RDB.LPush(ctx, dlqKey, raw).Err()
			continue
		}
		encoded, err := json.Marshal(job)
		if err != nil {
			continue
		}
		if err := cfg.RDB.LPush(ctx, target, encoded).Err(); err != nil {
			log.Error().Err(err).Msg("relance_cron: requeue failed, restoring DLQ entry")
			_ = cfg.RDB.RPush(ctx, dlqKey, raw).Err()
			return
		}
		relances++
	}
	if relances > 0 {
		log.Info().Int("count", relances).Msg("relance_cron: email jobs requeued")
	}
}

// planRelance decides where a DLQ entry goes. ok is false when the job has
// used up its relaunches.
func planRelance(entry DLQEntry) (queue string, job Job, ok bool) {
	if entry.Job.Relances >= MaxRelances {
		return "", entry.Job, false
	}
	job = entry.Job
	job.Relances++
	queue = entry.OriginalQueue
	if queue == "" {
		queue = QueueEmail
	}
	return queue, job, true
}
