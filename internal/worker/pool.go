package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueDocument = "jobs:document"
	QueueEmail    = "jobs:email"
)

const (
	JobDocument = "document"
	JobEmail    = "email"
)

// Job is the generic envelope for all async tasks. Relances counts how many
// times the relaunch cron took it back out of the dead letter queue.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Relances int             `json:"relances,omitempty"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueDocument pushes a PDF rendering job.
func (d *Dispatcher) EnqueueDocument(ctx context.Context, payload DocumentPayload) error {
	return d.enqueue(ctx, QueueDocument, Job{Type: JobDocument}, payload)
}

// EnqueueEmail pushes an email job.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, Job{Type: JobEmail}, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue string, job Job, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job.Payload = data
	return d.push(ctx, queue, job)
}

func (d *Dispatcher) push(ctx context.Context, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Handler processes the payload of one job type.
type Handler interface {
	Process(ctx context.Context, payload json.RawMessage) error
}

// WorkerHandlers maps each job type to its handler. Composition happens in
// cmd/server so handlers can reach every infrastructure dependency.
type WorkerHandlers struct {
	Document Handler
	Email    Handler
}

func (h *WorkerHandlers) handler(jobType string) Handler {
	switch jobType {
	case JobDocument:
		return h.Document
	case JobEmail:
		return h.Email
	}
	return nil
}

// StartWorkerPool launches numWorkers goroutines consuming both queues.
// Each goroutine blocks on BRPOP, zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, id int) {
	queues := []string{QueueDocument, QueueEmail}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue
			}
			if len(result) < 2 {
				continue
			}
			if failed := processJob(ctx, handlers, result[0], result[1]); failed != nil {
				SendToDLQ(ctx, rdb, failed.queue, failed.job, failed.reason)
			}
		}
	}
}

type failedJob struct {
	queue  string
	job    Job
	reason string
}

// processJob runs the handler for one raw job. A non-nil result must be
// moved to the dead letter queue.
func processJob(ctx context.Context, handlers *WorkerHandlers, queue, raw string) *failedJob {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return nil
	}
	h := handlers.handler(job.Type)
	if h == nil {
		return &failedJob{queue: queue, job: job, reason: fmt.Sprintf("type de job inconnu %q", job.Type)}
	}
	log.Debug().Str("type", job.Type).Str("queue", queue).Msg("processing job")
	if err := h.Process(ctx, job.Payload); err != nil {
		log.Error().Err(err).Str("type", job.Type).Str("queue", queue).Msg("job failed")
		return &failedJob{queue: queue, job: job, reason: err.Error()}
	}
	return nil
}
