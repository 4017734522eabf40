package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueSheetsSync = "jobs:sheets_sync"

	JobSheetsSync = "sheets_sync"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// JobHandler processes one decoded payload. Handlers own their retries and
// dead-lettering; the pool only routes.
type JobHandler func(ctx context.Context, payload json.RawMessage)

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// SheetsSyncPayload names the rows a ledger commit touched. Product ids sync
// every warehouse row of that product.
type SheetsSyncPayload struct {
	ProductIDs     []string `json:"product_ids,omitempty"`
	PurchaseIDs    []string `json:"purchase_ids,omitempty"`
	TransactionIDs []string `json:"transaction_ids,omitempty"`
}

func (p SheetsSyncPayload) Empty() bool {
	return len(p.ProductIDs) == 0 && len(p.PurchaseIDs) == 0 && len(p.TransactionIDs) == 0
}

// EnqueueSheetsSync pushes a spreadsheet sync job to Redis.
func (d *Dispatcher) EnqueueSheetsSync(ctx context.Context, payload SheetsSyncPayload) error {
	if payload.Empty() {
		return nil
	}
	return d.enqueue(ctx, QueueSheetsSync, JobSheetsSync, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// QueueLength reports the backlog of a queue for the health endpoint.
func (d *Dispatcher) QueueLength(ctx context.Context, queue string) (int64, error) {
	return d.rdb.LLen(ctx, queue).Result()
}

// StartWorkerPool launches numWorkers goroutines consuming the job queues.
// Each goroutine blocks on BRPOP and is idle between jobs.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, handlers map[string]JobHandler) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, i, handlers)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, id int, handlers map[string]JobHandler) {
	queues := []string{QueueSheetsSync}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, result[0], result[1], handlers)
		}
	}
}

func processJob(ctx context.Context, queue, raw string, handlers map[string]JobHandler) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}
	h, ok := handlers[job.Type]
	if !ok {
		log.Error().Str("type", job.Type).Str("queue", queue).Msg("no handler for job type")
		return
	}
	log.Debug().Str("type", job.Type).Str("queue", queue).Msg("processing job")
	h(ctx, job.Payload)
}
