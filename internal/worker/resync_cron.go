package worker

// resync_cron.go
// Background goroutine that periodically pushes the whole ledger to the
// spreadsheet, healing rows lost to failed or dead-lettered sync jobs.
// A redis lock keeps a single replica running it; the circuit breaker keeps
// it quiet while the Sheets API is down.

import (
	"context"
	"errors"
	"time"

	"github.com/Jassur2025/metallerp-sub000/internal/infra"

	"github.com/bsm/redislock"
	"github.com/rs/zerolog/log"
)

const resyncLockKey = "lock:sheets_resync"

// ResyncCronConfig holds all dependencies for the resync goroutine.
type ResyncCronConfig struct {
	Worker   *SheetsWorker
	CB       *infra.CircuitBreaker
	Locker   *redislock.Client // nil runs without cross-replica locking
	Interval time.Duration
}

// StartResyncCron ticks every cfg.Interval until ctx is cancelled.
func StartResyncCron(ctx context.Context, cfg ResyncCronConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Msg("resync_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("resync_cron: shutting down")
				return
			case <-ticker.C:
				runResync(ctx, cfg)
			}
		}
	}()
}

func runResync(ctx context.Context, cfg ResyncCronConfig) {
	// Skip entirely while the breaker is open
	if cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("resync_cron: circuit breaker is open, skipping tick")
		return
	}

	if cfg.Locker != nil {
		lock, err := cfg.Locker.Obtain(ctx, resyncLockKey, cfg.Interval, nil)
		if errors.Is(err, redislock.ErrNotObtained) {
			log.Debug().Msg("resync_cron: another replica holds the lock, skipping tick")
			return
		}
		if err != nil {
			log.Error().Err(err).Msg("resync_cron: failed to obtain lock")
			return
		}
		defer func() { _ = lock.Release(ctx) }()
	}

	start := time.Now()
	if err := cfg.Worker.Resync(ctx); err != nil {
		log.Error().Err(err).Msg("resync_cron: resync failed")
		return
	}
	log.Info().Dur("took", time.Since(start)).Msg("resync_cron: spreadsheet resynced")
}
