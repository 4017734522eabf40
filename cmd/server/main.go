package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Jassur2025/metallerp-sub000/internal/config"
	"github.com/Jassur2025/metallerp-sub000/internal/infra"
	"github.com/Jassur2025/metallerp-sub000/internal/ledger"
	"github.com/Jassur2025/metallerp-sub000/internal/realtime"
	"github.com/Jassur2025/metallerp-sub000/internal/repository"
	"github.com/Jassur2025/metallerp-sub000/internal/router"
	"github.com/Jassur2025/metallerp-sub000/internal/sheetsync"
	"github.com/Jassur2025/metallerp-sub000/internal/worker"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: console in development, JSON in production
	if cfg.IsProduction() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	engine, err := newEngine(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid pricing configuration")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	locker := redislock.New(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := realtime.NewHub(cfg.Origins()...)
	go hub.Run(ctx)

	// Spreadsheet sync is optional: without credentials the ledger still
	// works and nothing is enqueued.
	var dispatcher *worker.Dispatcher
	var sheetsCB *infra.CircuitBreaker
	if cfg.SheetsEnabled() {
		dispatcher, sheetsCB = startSheetsSync(ctx, cfg, db, rdb, locker)
	} else {
		log.Warn().Msg("spreadsheet sync disabled: SHEETS_SPREADSHEET_ID or credentials missing")
	}

	archive := newArchive(ctx, cfg)

	r := router.New(ctx, router.Deps{
		Config:     cfg,
		DB:         db,
		Redis:      rdb,
		Locker:     locker,
		Engine:     engine,
		Hub:        hub,
		Dispatcher: dispatcher,
		SheetsCB:   sheetsCB,
		Archive:    archive,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("MetallERP backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}

func newEngine(cfg *config.Config) (*ledger.Engine, error) {
	usd, err := ledger.FromFloat("PAID_TOLERANCE_USD", cfg.PaidToleranceUSD)
	if err != nil {
		return nil, err
	}
	uzs, err := ledger.FromFloat("PAID_TOLERANCE_UZS", cfg.PaidToleranceUZS)
	if err != nil {
		return nil, err
	}
	policy, err := ledger.ParseImportTaxPolicy(cfg.ImportTaxPolicy)
	if err != nil {
		return nil, err
	}
	return ledger.NewEngine(ledger.Tolerances{USD: usd, UZS: uzs}, policy), nil
}

func newArchive(ctx context.Context, cfg *config.Config) infra.Archive {
	switch {
	case cfg.ExportBucket != "":
		a, err := infra.NewGCSArchive(ctx, cfg.ExportBucket, cfg.ExportBucketPrefix, cfg.GoogleCredentialsJSON)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open export bucket")
		}
		return a
	case cfg.ExportStoragePath != "":
		return infra.DirArchive{Dir: cfg.ExportStoragePath}
	}
	return nil
}

// startSheetsSync wires the Sheets client, the worker pool that drains the
// sync queue and the periodic full resync.
func startSheetsSync(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *redis.Client, locker *redislock.Client) (*worker.Dispatcher, *infra.CircuitBreaker) {
	client, err := infra.NewSheetsClient(ctx, cfg.SheetsSpreadsheetID, cfg.GoogleCredentialsFile, cfg.GoogleCredentialsJSON)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create sheets client")
	}
	cb := infra.NewCircuitBreaker(infra.DefaultCBConfig("sheets"))

	sheetsWorker := worker.NewSheetsWorker(
		sheetsync.NewSyncer(client),
		cb,
		repository.NewProductRepository(db),
		repository.NewPurchaseRepository(db),
		repository.NewTransactionRepository(db),
		rdb,
	)
	worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, map[string]worker.JobHandler{
		worker.JobSheetsSync: sheetsWorker.Process,
	})
	worker.StartResyncCron(ctx, worker.ResyncCronConfig{
		Worker:   sheetsWorker,
		CB:       cb,
		Locker:   locker,
		Interval: cfg.ResyncInterval(),
	})
	return worker.NewDispatcher(rdb), cb
}
