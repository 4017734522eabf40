package sheetsync

import (
	"context"
	"fmt"
	"strings"

	"github.com/Jassur2025/metallerp-sub000/internal/infra"
	"github.com/Jassur2025/metallerp-sub000/internal/model"
)

// Store is the subset of the Sheets API the syncer needs.
// *infra.SheetsClient satisfies it.
type Store interface {
	Read(ctx context.Context, tab string) ([][]interface{}, error)
	Update(ctx context.Context, ranges []infra.ValueRange) error
	Append(ctx context.Context, tab string, rows [][]interface{}) error
}

var _ Store = (*infra.SheetsClient)(nil)

type Syncer struct {
	store Store
}

func NewSyncer(store Store) *Syncer {
	return &Syncer{store: store}
}

// UpsertResult counts what a single upsert did.
type UpsertResult struct {
	Updated  int
	Appended int
}

func (s *Syncer) UpsertProducts(ctx context.Context, products []model.Product) (UpsertResult, error) {
	rows := make([][]interface{}, 0, len(products))
	for _, p := range products {
		rows = append(rows, ProductRow(p))
	}
	return s.Upsert(ctx, ProductsTab, rows)
}

func (s *Syncer) UpsertPurchases(ctx context.Context, purchases []model.Purchase) (UpsertResult, error) {
	rows := make([][]interface{}, 0, len(purchases))
	for _, p := range purchases {
		row, err := PurchaseRow(p)
		if err != nil {
			return UpsertResult{}, fmt.Errorf("purchase %s: %w", p.ID, err)
		}
		rows = append(rows, row)
	}
	return s.Upsert(ctx, PurchasesTab, rows)
}

func (s *Syncer) UpsertTransactions(ctx context.Context, txs []model.Transaction) (UpsertResult, error) {
	rows := make([][]interface{}, 0, len(txs))
	for _, t := range txs {
		rows = append(rows, TransactionRow(t))
	}
	return s.Upsert(ctx, TransactionsTab, rows)
}

// Upsert writes rows into tab: rows whose key already exists are overwritten
// in place, the rest are appended. An empty tab gets its header first.
// When the same key appears twice in rows, the later one wins.
func (s *Syncer) Upsert(ctx context.Context, tab Tab, rows [][]interface{}) (UpsertResult, error) {
	var res UpsertResult
	if len(rows) == 0 {
		return res, nil
	}
	existing, err := s.store.Read(ctx, tab.Name)
	if err != nil {
		return res, err
	}

	// sheet row numbers are 1-based and row 1 is the header
	index := make(map[string]int, len(existing))
	for i, r := range existing {
		if i == 0 {
			continue
		}
		if k := rowKey(r, tab.KeyColumns); k != "" {
			index[k] = i + 1
		}
	}

	var updates []infra.ValueRange
	var appends [][]interface{}
	pending := make(map[string]int)
	for _, r := range rows {
		k := rowKey(r, tab.KeyColumns)
		if n, ok := index[k]; ok {
			updates = append(updates, infra.ValueRange{
				Range:  fmt.Sprintf("%s!A%d", tab.Name, n),
				Values: [][]interface{}{r},
			})
			continue
		}
		if i, ok := pending[k]; ok {
			appends[i] = r
			continue
		}
		pending[k] = len(appends)
		appends = append(appends, r)
	}

	if len(existing) == 0 {
		header := make([]interface{}, len(tab.Header))
		for i, h := range tab.Header {
			header[i] = h
		}
		appends = append([][]interface{}{header}, appends...)
	}

	if err := s.store.Update(ctx, updates); err != nil {
		return res, err
	}
	if err := s.store.Append(ctx, tab.Name, appends); err != nil {
		return res, err
	}
	res.Updated = len(updates)
	res.Appended = len(pending)
	return res, nil
}

func rowKey(row []interface{}, n int) string {
	if len(row) < n {
		return ""
	}
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = strings.TrimSpace(fmt.Sprint(row[i]))
	}
	if parts[0] == "" {
		return ""
	}
	return strings.Join(parts, "|")
}
