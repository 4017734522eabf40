package worker

// sheets_worker.go
// Mirrors committed ledger rows into the Google spreadsheet. Every push goes
// through the circuit breaker with exponential backoff (max 3 attempts);
// jobs that still fail land in the DLQ and are healed by the next resync.

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Jassur2025/metallerp-sub000/internal/infra"
	"github.com/Jassur2025/metallerp-sub000/internal/model"
	"github.com/Jassur2025/metallerp-sub000/internal/repository"
	"github.com/Jassur2025/metallerp-sub000/internal/sheetsync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const maxSyncAttempts = 3

// retryBaseDelay is the first backoff step; tests shorten it.
var retryBaseDelay = time.Second

type SheetsWorker struct {
	syncer       *sheetsync.Syncer
	cb           *infra.CircuitBreaker
	products     repository.ProductRepository
	purchases    repository.PurchaseRepository
	transactions repository.TransactionRepository
	rdb          *redis.Client
}

func NewSheetsWorker(
	syncer *sheetsync.Syncer,
	cb *infra.CircuitBreaker,
	products repository.ProductRepository,
	purchases repository.PurchaseRepository,
	transactions repository.TransactionRepository,
	rdb *redis.Client,
) *SheetsWorker {
	return &SheetsWorker{
		syncer:       syncer,
		cb:           cb,
		products:     products,
		purchases:    purchases,
		transactions: transactions,
		rdb:          rdb,
	}
}

// batch is one set of rows pushed together.
type batch struct {
	products     []model.Product
	purchases    []model.Purchase
	transactions []model.Transaction
}

// Process handles a single sheets_sync job:
//  1. Parse SheetsSyncPayload
//  2. Load the current rows (the job carries ids, never stale values)
//  3. Upsert them through the breaker with backoff
//  4. Dead-letter the job if every attempt failed
func (w *SheetsWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload SheetsSyncPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("sheets_worker: invalid payload")
		return
	}

	b, err := w.load(ctx, payload)
	if err != nil {
		log.Error().Err(err).Msg("sheets_worker: failed to load rows")
		DeadLetterSync(ctx, w.rdb, payload, StageLoad, err.Error(), 1)
		return
	}

	if err := w.push(ctx, b); err != nil {
		if errors.Is(err, infra.ErrCircuitOpen) {
			log.Warn().Msg("sheets_worker: circuit open, leaving rows for the next resync")
			return
		}
		log.Error().Err(err).Msg("sheets_worker: sync failed after all retries")
		DeadLetterSync(ctx, w.rdb, payload, StagePush, err.Error(), maxSyncAttempts)
		return
	}
	log.Info().
		Int("products", len(b.products)).
		Int("purchases", len(b.purchases)).
		Int("transactions", len(b.transactions)).
		Msg("sheets_worker: rows synced")
}

// Resync pushes every product, purchase and transaction. Parked syncs are
// cleared afterwards since their rows were just rewritten.
func (w *SheetsWorker) Resync(ctx context.Context) error {
	var b batch
	var err error
	if b.products, err = w.products.ListAll(ctx); err != nil {
		return err
	}
	if b.purchases, err = w.purchases.ListAll(ctx); err != nil {
		return err
	}
	if b.transactions, err = w.transactions.ListAll(ctx); err != nil {
		return err
	}
	if err := w.push(ctx, b); err != nil {
		return err
	}
	if err := ClearDeadSyncs(ctx, w.rdb); err != nil {
		log.Warn().Err(err).Msg("sheets_worker: failed to clear dead-lettered syncs")
	}
	return nil
}

func (w *SheetsWorker) load(ctx context.Context, p SheetsSyncPayload) (batch, error) {
	var b batch
	var err error
	if ids := parseIDs(p.ProductIDs); len(ids) > 0 {
		if b.products, err = w.products.FindByIDs(ctx, ids); err != nil {
			return b, err
		}
	}
	if ids := parseIDs(p.PurchaseIDs); len(ids) > 0 {
		if b.purchases, err = w.purchases.FindByIDs(ctx, ids); err != nil {
			return b, err
		}
	}
	if ids := parseIDs(p.TransactionIDs); len(ids) > 0 {
		if b.transactions, err = w.transactions.FindByIDs(ctx, ids); err != nil {
			return b, err
		}
	}
	return b, nil
}

func (w *SheetsWorker) push(ctx context.Context, b batch) error {
	steps := []struct {
		tab string
		run func() (sheetsync.UpsertResult, error)
	}{
		{sheetsync.ProductsTab.Name, func() (sheetsync.UpsertResult, error) { return w.syncer.UpsertProducts(ctx, b.products) }},
		{sheetsync.PurchasesTab.Name, func() (sheetsync.UpsertResult, error) { return w.syncer.UpsertPurchases(ctx, b.purchases) }},
		{sheetsync.TransactionsTab.Name, func() (sheetsync.UpsertResult, error) {
			return w.syncer.UpsertTransactions(ctx, b.transactions)
		}},
	}
	for _, step := range steps {
		err := withRetry(ctx, maxSyncAttempts, func(attempt int) error {
			return w.cb.Execute(func() error {
				res, err := step.run()
				if err != nil {
					log.Warn().Err(err).Int("attempt", attempt+1).Str("tab", step.tab).
						Msg("sheets_worker: upsert attempt failed")
					return err
				}
				if res.Updated+res.Appended > 0 {
					log.Debug().Str("tab", step.tab).Int("updated", res.Updated).Int("appended", res.Appended).
						Msg("sheets_worker: tab upserted")
				}
				return nil
			})
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func parseIDs(raw []string) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			log.Warn().Str("id", s).Msg("sheets_worker: skipping malformed id")
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// withRetry calls fn up to maxAttempts times with exponential backoff
// (base, 2*base, ...). An open breaker ends the loop at once.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := retryBaseDelay << uint(i-1)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		err := fn(i)
		if err == nil {
			return nil
		}
		if errors.Is(err, infra.ErrCircuitOpen) {
			return err
		}
		lastErr = err
	}
	return lastErr
}
