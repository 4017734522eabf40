package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Jassur2025/metallerp-sub000/internal/apierror"
	"github.com/Jassur2025/metallerp-sub000/internal/ledger"
	"github.com/Jassur2025/metallerp-sub000/internal/realtime"
	"github.com/Jassur2025/metallerp-sub000/internal/repository"
	"github.com/Jassur2025/metallerp-sub000/internal/worker"

	"github.com/bsm/redislock"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

func notFound(entity, id string) error {
	return &ledger.NotFoundError{Entity: entity, ID: id}
}

// lookup turns gorm's not-found into the domain error and wraps the rest.
func lookup(err error, entity, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(entity, id)
	}
	return fmt.Errorf("load %s %s: %w", entity, id, err)
}

func page(p, limit int) repository.Page {
	return repository.Page{Page: p, Limit: limit}
}

// parseDay reads an optional YYYY-MM-DD query value.
func parseDay(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, &ledger.ValidationError{Fields: map[string]string{field: "must be YYYY-MM-DD"}}
	}
	return &t, nil
}

// ── Ledger lock ─────────────────────────────────────────────────────────────
// Every write that reads balances or stock and then commits holds this lock,
// so two replicas cannot both spend the same till balance.

const ledgerLockKey = "lock:ledger"

var ledgerLockOptions = &redislock.Options{
	RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 50),
}

// lockLedger returns a release func. Without a locker (tests, single
// instance without redis) it is a no-op.
func lockLedger(ctx context.Context, locker *redislock.Client) (func(), error) {
	if locker == nil {
		return func() {}, nil
	}
	lock, err := locker.Obtain(ctx, ledgerLockKey, 30*time.Second, ledgerLockOptions)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, apierror.ErrBusy
	}
	if err != nil {
		return nil, fmt.Errorf("obtain ledger lock: %w", err)
	}
	return func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			log.Warn().Err(err).Msg("ledger lock release failed")
		}
	}, nil
}

// ── After commit ─────────────────────────────────────────────────────────────

// notifier fans committed changes out to open UIs and the spreadsheet.
// Both sinks are optional; failures are logged because the commit stands.
type notifier struct {
	hub   publisher
	queue syncQueue
}

type publisher interface {
	Publish(eventType string, data any)
}

type syncQueue interface {
	EnqueueSheetsSync(ctx context.Context, payload worker.SheetsSyncPayload) error
}

// newNotifier leaves a sink unset when its pointer is nil, so a typed nil
// never ends up behind the interface.
func newNotifier(dispatcher *worker.Dispatcher, hub *realtime.Hub) notifier {
	var n notifier
	if hub != nil {
		n.hub = hub
	}
	if dispatcher != nil {
		n.queue = dispatcher
	}
	return n
}

func (n notifier) committed(ctx context.Context, event string, data any, sync worker.SheetsSyncPayload) {
	if n.hub != nil {
		n.hub.Publish(event, data)
	}
	if n.queue == nil {
		return
	}
	if err := n.queue.EnqueueSheetsSync(ctx, sync); err != nil {
		log.Warn().Err(err).Str("event", event).Msg("failed to enqueue sheets sync")
	}
}
