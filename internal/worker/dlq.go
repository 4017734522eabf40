package worker

// dlq.go: dead-lettered spreadsheet syncs
// A sync job that still fails after its retries is parked in
// dlq:jobs:sheets_sync together with the tabs and rows it left stale. A
// successful full resync rewrites every row, so it clears the list.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Jassur2025/metallerp-sub000/internal/sheetsync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	DLQPrefix = "dlq:"

	// StageLoad means the rows could not be read back from postgres;
	// StagePush means the Sheets API kept rejecting them.
	StageLoad = "load"
	StagePush = "push"

	deadSyncKey   = DLQPrefix + QueueSheetsSync
	deadSyncLimit = 1000
)

// DeadSync records which spreadsheet rows are out of date and why.
type DeadSync struct {
	Stage          string   `json:"stage"`
	Tabs           []string `json:"tabs"`
	ProductIDs     []string `json:"product_ids,omitempty"`
	PurchaseIDs    []string `json:"purchase_ids,omitempty"`
	TransactionIDs []string `json:"transaction_ids,omitempty"`
	Reason         string   `json:"reason"`
	FailedAt       string   `json:"failed_at"` // RFC 3339
	Attempts       int      `json:"attempts"`
}

func newDeadSync(p SheetsSyncPayload, stage, reason string, attempts int, at time.Time) DeadSync {
	return DeadSync{
		Stage:          stage,
		Tabs:           staleTabs(p),
		ProductIDs:     p.ProductIDs,
		PurchaseIDs:    p.PurchaseIDs,
		TransactionIDs: p.TransactionIDs,
		Reason:         reason,
		FailedAt:       at.UTC().Format(time.RFC3339),
		Attempts:       attempts,
	}
}

// staleTabs lists the sheet tabs a payload writes to, in sheet order.
func staleTabs(p SheetsSyncPayload) []string {
	var tabs []string
	if len(p.ProductIDs) > 0 {
		tabs = append(tabs, sheetsync.ProductsTab.Name)
	}
	if len(p.PurchaseIDs) > 0 {
		tabs = append(tabs, sheetsync.PurchasesTab.Name)
	}
	if len(p.TransactionIDs) > 0 {
		tabs = append(tabs, sheetsync.TransactionsTab.Name)
	}
	return tabs
}

// DeadLetterSync parks a failed sync. The list is capped at the newest
// deadSyncLimit entries. Without a redis client the failure is only logged.
func DeadLetterSync(ctx context.Context, rdb *redis.Client, p SheetsSyncPayload, stage, reason string, attempts int) {
	entry := newDeadSync(p, stage, reason, attempts, time.Now())
	logger := log.Warn().
		Str("stage", stage).
		Strs("tabs", entry.Tabs).
		Int("rows", len(p.ProductIDs)+len(p.PurchaseIDs)+len(p.TransactionIDs)).
		Str("reason", reason).
		Int("attempts", attempts)
	if rdb == nil {
		logger.Msg("dlq: no redis client, dropping failed sync")
		return
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Msg("dlq: failed to marshal entry")
		return
	}
	pipe := rdb.TxPipeline()
	pipe.LPush(ctx, deadSyncKey, data)
	pipe.LTrim(ctx, deadSyncKey, 0, deadSyncLimit-1)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Error().Err(err).Str("dlq_key", deadSyncKey).Msg("dlq: failed to push")
		return
	}
	logger.Msg("dlq: sync parked until the next resync")
}

// DeadSyncCount is the number of parked syncs, for the health endpoint.
func DeadSyncCount(ctx context.Context, rdb *redis.Client) (int64, error) {
	return rdb.LLen(ctx, deadSyncKey).Result()
}

// ClearDeadSyncs drops every parked sync.
func ClearDeadSyncs(ctx context.Context, rdb *redis.Client) error {
	if rdb == nil {
		return nil
	}
	return rdb.Del(ctx, deadSyncKey).Err()
}
