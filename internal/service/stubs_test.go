package service

import (
	"context"
	"strings"
	"time"

	"github.com/Jassur2025/metallerp-sub000/internal/config"
	"github.com/Jassur2025/metallerp-sub000/internal/infra"
	"github.com/Jassur2025/metallerp-sub000/internal/ledger"
	"github.com/Jassur2025/metallerp-sub000/internal/model"
	"github.com/Jassur2025/metallerp-sub000/internal/repository"
	"github.com/Jassur2025/metallerp-sub000/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory repositories ──────────────────────────────────────────────────
// All *Tx methods ignore tx: runTx calls fn(nil) when DB() is nil.

type memProducts struct {
	rows  []model.Product
	saves int
}

var _ repository.ProductRepository = (*memProducts)(nil)

func (r *memProducts) Create(_ context.Context, p *model.Product) error {
	r.rows = append(r.rows, *p)
	return nil
}

func (r *memProducts) FindByID(_ context.Context, id uuid.UUID) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.rows {
		if p.ID == id {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memProducts) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Product, error) {
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []model.Product
	for _, p := range r.rows {
		if want[p.ID] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memProducts) List(_ context.Context, f repository.ProductFilter) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range r.rows {
		if f.Warehouse != "" && p.Warehouse != f.Warehouse {
			continue
		}
		if f.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Name)) {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (r *memProducts) ListAll(_ context.Context) ([]model.Product, error) { return r.rows, nil }

func (r *memProducts) LowStock(_ context.Context) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.rows {
		if p.MinStockLevel.IsPositive() && p.Quantity.LessThanOrEqual(p.MinStockLevel) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memProducts) Update(_ context.Context, p *model.Product) error {
	return r.SaveTx(nil, p)
}

func (r *memProducts) SaveTx(_ *gorm.DB, p *model.Product) error {
	r.saves++
	for i := range r.rows {
		if r.rows[i].ID == p.ID && r.rows[i].Warehouse == p.Warehouse {
			r.rows[i] = *p
			return nil
		}
	}
	r.rows = append(r.rows, *p)
	return nil
}

func (r *memProducts) RetagTx(_ *gorm.DB, id uuid.UUID, from, to string) error {
	for i := range r.rows {
		if r.rows[i].ID == id && r.rows[i].Warehouse == from {
			r.rows[i].Warehouse = to
		}
	}
	return nil
}

func (r *memProducts) DB() *gorm.DB { return nil }

func (r *memProducts) get(id uuid.UUID, wh string) (model.Product, bool) {
	for _, p := range r.rows {
		if p.ID == id && p.Warehouse == wh {
			return p, true
		}
	}
	return model.Product{}, false
}

type memPurchases struct {
	rows         map[uuid.UUID]model.Purchase
	deletedItems []uuid.UUID
}

var _ repository.PurchaseRepository = (*memPurchases)(nil)

func newMemPurchases(ps ...model.Purchase) *memPurchases {
	r := &memPurchases{rows: make(map[uuid.UUID]model.Purchase)}
	for _, p := range ps {
		r.rows[p.ID] = p
	}
	return r
}

func (r *memPurchases) FindByID(_ context.Context, id uuid.UUID) (*model.Purchase, error) {
	p, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *memPurchases) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Purchase, error) {
	var out []model.Purchase
	for _, id := range ids {
		if p, ok := r.rows[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPurchases) ListAll(_ context.Context) ([]model.Purchase, error) {
	out := make([]model.Purchase, 0, len(r.rows))
	for _, p := range r.rows {
		out = append(out, p)
	}
	return out, nil
}

func (r *memPurchases) List(ctx context.Context, f repository.PurchaseFilter) ([]model.Purchase, int64, error) {
	all, _ := r.ListAll(ctx)
	var out []model.Purchase
	for _, p := range all {
		if f.Status != "" && p.PaymentStatus != f.Status {
			continue
		}
		if f.Supplier != "" && !strings.Contains(strings.ToLower(p.SupplierName), strings.ToLower(f.Supplier)) {
			continue
		}
		if f.From != nil && p.Date.Before(*f.From) {
			continue
		}
		if f.To != nil && !p.Date.Before(*f.To) {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (r *memPurchases) ListOpen(ctx context.Context) ([]model.Purchase, error) {
	all, _ := r.ListAll(ctx)
	var out []model.Purchase
	for _, p := range all {
		if p.PaymentStatus != model.StatusPaid {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPurchases) ListLegacy(ctx context.Context) ([]model.Purchase, error) {
	all, _ := r.ListAll(ctx)
	var out []model.Purchase
	for _, p := range all {
		if ledger.IsLegacy(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPurchases) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Purchase, error) {
	return r.FindByID(context.Background(), id)
}

func (r *memPurchases) CreateTx(_ *gorm.DB, p *model.Purchase) error {
	r.rows[p.ID] = *p
	return nil
}

func (r *memPurchases) SaveTx(_ *gorm.DB, p *model.Purchase) error {
	r.rows[p.ID] = *p
	return nil
}

func (r *memPurchases) DeleteItemTx(_ *gorm.DB, itemID uuid.UUID) error {
	r.deletedItems = append(r.deletedItems, itemID)
	return nil
}

type memTransactions struct {
	rows    []model.Transaction
	failing error // returned by CreateTx when set
}

var _ repository.TransactionRepository = (*memTransactions)(nil)

func (r *memTransactions) CreateTx(_ *gorm.DB, t *model.Transaction) error {
	if r.failing != nil {
		return r.failing
	}
	r.rows = append(r.rows, *t)
	return nil
}

func (r *memTransactions) List(_ context.Context, f repository.TransactionFilter) ([]model.Transaction, int64, error) {
	var out []model.Transaction
	for _, t := range r.rows {
		if f.Type != "" && t.Type != f.Type {
			continue
		}
		if f.Method != "" && t.Method != f.Method {
			continue
		}
		if f.RelatedID != nil && (t.RelatedID == nil || *t.RelatedID != *f.RelatedID) {
			continue
		}
		out = append(out, t)
	}
	return out, int64(len(out)), nil
}

func (r *memTransactions) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Transaction, error) {
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []model.Transaction
	for _, t := range r.rows {
		if want[t.ID] {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memTransactions) ListAll(_ context.Context) ([]model.Transaction, error) { return r.rows, nil }

func (r *memTransactions) SumByMethodCurrency(_ context.Context) (map[repository.BalanceKey]decimal.Decimal, error) {
	out := make(map[repository.BalanceKey]decimal.Decimal)
	for _, t := range r.rows {
		k := repository.BalanceKey{Method: t.Method, Currency: t.Currency}
		if t.IsOutflow() {
			out[k] = out[k].Sub(t.Amount)
		} else {
			out[k] = out[k].Add(t.Amount)
		}
	}
	return out, nil
}

func (r *memTransactions) DB() *gorm.DB { return nil }

type memMovements struct {
	rows    []model.StockMovement
	failing error
}

var _ repository.StockMovementRepository = (*memMovements)(nil)

func (r *memMovements) CreateTx(_ *gorm.DB, m *model.StockMovement) error {
	if r.failing != nil {
		return r.failing
	}
	r.rows = append(r.rows, *m)
	return nil
}

func (r *memMovements) List(_ context.Context, f repository.StockMovementFilter) ([]model.StockMovement, int64, error) {
	var out []model.StockMovement
	for _, m := range r.rows {
		if f.ProductID != nil && m.ProductID != *f.ProductID {
			continue
		}
		if f.ReferenceID != nil && (m.ReferenceID == nil || *m.ReferenceID != *f.ReferenceID) {
			continue
		}
		if f.Type != "" && m.Type != f.Type {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

type memSettings struct {
	row *model.AppSettings
}

var _ repository.SettingsRepository = (*memSettings)(nil)

func (r *memSettings) Get(_ context.Context) (*model.AppSettings, error) {
	if r.row == nil {
		return nil, gorm.ErrRecordNotFound
	}
	s := *r.row
	return &s, nil
}

func (r *memSettings) Save(_ context.Context, s *model.AppSettings) error {
	c := *s
	r.row = &c
	return nil
}

type memOrders struct {
	rows map[uuid.UUID]model.WorkflowOrder
}

var _ repository.WorkflowOrderRepository = (*memOrders)(nil)

func newMemOrders(os ...model.WorkflowOrder) *memOrders {
	r := &memOrders{rows: make(map[uuid.UUID]model.WorkflowOrder)}
	for _, o := range os {
		r.rows[o.ID] = o
	}
	return r
}

func (r *memOrders) Create(_ context.Context, o *model.WorkflowOrder) error {
	r.rows[o.ID] = *o
	return nil
}

func (r *memOrders) FindByID(_ context.Context, id uuid.UUID) (*model.WorkflowOrder, error) {
	o, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &o, nil
}

func (r *memOrders) List(_ context.Context, f repository.WorkflowOrderFilter) ([]model.WorkflowOrder, int64, error) {
	var out []model.WorkflowOrder
	for _, o := range r.rows {
		if f.Status == "" || o.Status == f.Status {
			out = append(out, o)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memOrders) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	o, ok := r.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.Status = status
	r.rows[id] = o
	return nil
}

// ── Fixtures ────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testConfig() *config.Config {
	return &config.Config{
		DefaultExchangeRate: 12800,
		VATRate:             0.12,
		ImportTaxPolicy:     "capitalize",
		OpeningCashUSD:      10000,
		OpeningCashUZS:      50000000,
		OpeningCardUZS:      20000000,
		OpeningBankUZS:      100000000,
		CompanyName:         "Test Metall",
	}
}

type fixture struct {
	products  *memProducts
	purchases *memPurchases
	txs       *memTransactions
	movements *memMovements
	orders    *memOrders
	settings  SettingsService
	treasury  *spyTreasury
	sink      *recordingSink
	engine    *ledger.Engine
	archive   *memArchive
	svc       ProcurementService
}

// recordingSink stands in for the websocket hub and the sync dispatcher.
type recordingSink struct {
	events []string
	synced []worker.SheetsSyncPayload
}

func (r *recordingSink) Publish(eventType string, _ any) { r.events = append(r.events, eventType) }

func (r *recordingSink) EnqueueSheetsSync(_ context.Context, p worker.SheetsSyncPayload) error {
	r.synced = append(r.synced, p)
	return nil
}

type spyTreasury struct {
	TreasuryService
	invalidations int
}

func (s *spyTreasury) Invalidate(ctx context.Context) {
	s.invalidations++
	s.TreasuryService.Invalidate(ctx)
}

type memArchive struct{ saved map[string][]byte }

var _ infra.Archive = (*memArchive)(nil)

func (a *memArchive) Save(_ context.Context, name string, data []byte) (string, error) {
	a.saved[name] = data
	return "mem://" + name, nil
}

func newFixture(products ...model.Product) *fixture {
	cfg := testConfig()
	f := &fixture{
		products:  &memProducts{rows: products},
		purchases: newMemPurchases(),
		txs:       &memTransactions{},
		movements: &memMovements{},
		orders:    newMemOrders(),
		archive:   &memArchive{saved: map[string][]byte{}},
		sink:      &recordingSink{},
		engine:    ledger.NewEngine(ledger.DefaultTolerances(), ledger.CapitalizeImportTaxes),
	}
	f.engine.Now = func() time.Time { return time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC) }
	f.settings = NewSettingsService(&memSettings{}, nil, cfg, f.engine, nil)
	f.treasury = &spyTreasury{TreasuryService: NewTreasuryService(f.txs, nil, cfg, nil, nil, nil)}
	f.svc = NewProcurementService(ProcurementDeps{
		Products:  f.products,
		Purchases: f.purchases,
		Txs:       f.txs,
		Movements: f.movements,
		Orders:    f.orders,
		Settings:  f.settings,
		Treasury:  f.treasury,
		Engine:    f.engine,
		Config:    cfg,
		Archive:   f.archive,
	})
	f.svc.(*procurementService).notify = notifier{hub: f.sink, queue: f.sink}
	return f
}

func steelPipe(id uuid.UUID, wh string, qty, cost string) model.Product {
	return model.Product{
		ID:        id,
		Warehouse: wh,
		Name:      "Pipe 57x3.5",
		Type:      "pipe",
		Unit:      model.UnitMeter,
		Quantity:  dec(qty),
		CostPrice: dec(cost),
		Origin:    model.OriginLocal,
	}
}
