package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Jassur2025/metallerp-sub000/internal/config"
	"github.com/Jassur2025/metallerp-sub000/internal/dto"
	"github.com/Jassur2025/metallerp-sub000/internal/infra"
	"github.com/Jassur2025/metallerp-sub000/internal/ledger"
	"github.com/Jassur2025/metallerp-sub000/internal/model"
	"github.com/Jassur2025/metallerp-sub000/internal/realtime"
	"github.com/Jassur2025/metallerp-sub000/internal/repository"
	"github.com/Jassur2025/metallerp-sub000/internal/worker"

	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Stock movement types written by procurement.
const (
	MovementPurchaseReceipt    = "purchase_receipt"
	MovementPurchaseEdit       = "purchase_edit"
	MovementPurchaseLineDelete = "purchase_line_delete"
)

// exportLimit caps how many purchases one XLSX export pulls.
const exportLimit = 5000

type ProcurementService interface {
	Preview(ctx context.Context, req dto.PreviewRequest) (*dto.AllocationResponse, error)
	CreatePurchase(ctx context.Context, req dto.CreatePurchaseRequest, createdBy *uuid.UUID) (*dto.CreatePurchaseResponse, error)
	Repay(ctx context.Context, id uuid.UUID, req dto.RepayRequest) (*dto.RepayResponse, error)
	EditLine(ctx context.Context, id uuid.UUID, index int, req dto.EditLineRequest) (*dto.LineChangeResponse, error)
	DeleteLine(ctx context.Context, id uuid.UUID, index int) (*dto.LineChangeResponse, error)
	GetPurchase(ctx context.Context, id uuid.UUID) (*dto.PurchaseResponse, error)
	ListPurchases(ctx context.Context, filter dto.PurchaseFilter) (*dto.PurchaseListResponse, error)
	SupplierDebts(ctx context.Context) ([]dto.SupplierDebtResponse, error)
	DraftFromOrder(ctx context.Context, orderID uuid.UUID, warehouse string) (*dto.DraftResponse, error)
	MigrateLegacy(ctx context.Context, id uuid.UUID) (*dto.MigrationResponse, error)
	// ExportXLSX writes the filtered purchases to w and keeps a copy in the
	// document archive when one is configured.
	ExportXLSX(ctx context.Context, filter dto.PurchaseFilter, w io.Writer) error
	VoucherPDF(ctx context.Context, id uuid.UUID, w io.Writer) error
}

type procurementService struct {
	products  repository.ProductRepository
	purchases repository.PurchaseRepository
	txs       repository.TransactionRepository
	movements repository.StockMovementRepository
	orders    repository.WorkflowOrderRepository
	settings  SettingsService
	treasury  TreasuryService
	engine    *ledger.Engine
	cfg       *config.Config
	locker    *redislock.Client
	archive   infra.Archive
	notify    notifier
}

// ProcurementDeps groups the collaborators of NewProcurementService.
type ProcurementDeps struct {
	Products   repository.ProductRepository
	Purchases  repository.PurchaseRepository
	Txs        repository.TransactionRepository
	Movements  repository.StockMovementRepository
	Orders     repository.WorkflowOrderRepository
	Settings   SettingsService
	Treasury   TreasuryService
	Engine     *ledger.Engine
	Config     *config.Config
	Locker     *redislock.Client
	Dispatcher *worker.Dispatcher
	Hub        *realtime.Hub
	Archive    infra.Archive // nil keeps no copies
}

func NewProcurementService(d ProcurementDeps) ProcurementService {
	return &procurementService{
		products:  d.Products,
		purchases: d.Purchases,
		txs:       d.Txs,
		movements: d.Movements,
		orders:    d.Orders,
		settings:  d.Settings,
		treasury:  d.Treasury,
		engine:    d.Engine,
		cfg:       d.Config,
		locker:    d.Locker,
		archive:   d.Archive,
		notify:    newNotifier(d.Dispatcher, d.Hub),
	}
}

// ── Preview ─────────────────────────────────────────────────────────────────

func (s *procurementService) Preview(ctx context.Context, req dto.PreviewRequest) (*dto.AllocationResponse, error) {
	typ, currency, err := parseDocument(req.ProcurementType, req.Currency)
	if err != nil {
		return nil, err
	}
	policy := s.engine.Policy
	if req.ImportTaxPolicy != "" {
		if policy, err = ledger.ParseImportTaxPolicy(req.ImportTaxPolicy); err != nil {
			return nil, &ledger.ValidationError{Fields: map[string]string{"import_tax_policy": err.Error()}}
		}
	}
	pc, err := s.settings.PricingContext(ctx)
	if err != nil {
		return nil, err
	}

	lines := make([]ledger.CostLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = ledger.CostLine{Quantity: l.Quantity, InvoicePrice: l.InvoicePrice}
	}
	alloc, err := ledger.Allocate(ledger.AllocationInput{
		Type:      typ,
		Currency:  currency,
		Lines:     lines,
		Overheads: toOverheads(req.Overheads),
		Policy:    policy,
	}, pc)
	if err != nil {
		return nil, err
	}
	resp := toAllocationResponse(alloc, pc)
	return &resp, nil
}

// ── Create ──────────────────────────────────────────────────────────────────

func (s *procurementService) CreatePurchase(ctx context.Context, req dto.CreatePurchaseRequest, createdBy *uuid.UUID) (*dto.CreatePurchaseResponse, error) {
	cmd, err := toCreateCommand(req)
	if err != nil {
		return nil, err
	}
	cmd.CreatedBy = createdBy

	release, err := lockLedger(ctx, s.locker)
	if err != nil {
		return nil, err
	}
	defer release()

	pc, err := s.settings.PricingContext(ctx)
	if err != nil {
		return nil, err
	}
	balances, err := s.treasury.Balances(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(cmd.Lines))
	for _, l := range cmd.Lines {
		ids = append(ids, l.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	res, err := s.engine.CreatePurchase(ledger.State{Products: products}, cmd, pc, balances)
	if err != nil {
		return nil, err
	}

	err = runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		if err := s.purchases.CreateTx(tx, &res.Purchase); err != nil {
			return fmt.Errorf("create purchase: %w", err)
		}
		for i := range res.Transactions {
			if err := s.txs.CreateTx(tx, &res.Transactions[i]); err != nil {
				return fmt.Errorf("create transaction: %w", err)
			}
		}
		return s.applyDeltas(tx, res.State.Products, res.StockDeltas, MovementPurchaseReceipt, res.Purchase.ID,
			"Received from "+res.Purchase.SupplierName)
	})
	if err != nil {
		return nil, err
	}

	if len(res.Transactions) > 0 {
		s.treasury.Invalidate(ctx)
	}
	resp := &dto.CreatePurchaseResponse{
		Purchase:     toPurchaseResponse(res.Purchase),
		Transactions: toTransactionResponses(res.Transactions),
		StockDeltas:  make([]dto.StockDeltaResponse, 0, len(res.StockDeltas)),
		Allocation:   toAllocationResponse(res.Allocation, pc),
	}
	for _, d := range res.StockDeltas {
		resp.StockDeltas = append(resp.StockDeltas, toStockDeltaResponse(d))
	}
	log.Info().
		Str("purchase_id", res.Purchase.ID.String()).
		Str("supplier", res.Purchase.SupplierName).
		Str("status", res.Purchase.PaymentStatus).
		Int("lines", len(res.Purchase.Items)).
		Msg("purchase created")
	s.notify.committed(ctx, realtime.EventPurchaseCreated, resp.Purchase,
		syncPayload(res.Purchase.ID, res.StockDeltas, res.Transactions))
	return resp, nil
}

// applyDeltas persists the product rows named by deltas and appends one stock
// movement per row.
func (s *procurementService) applyDeltas(tx *gorm.DB, products []model.Product, deltas []ledger.StockDelta, kind string, ref uuid.UUID, reason string) error {
	for _, d := range deltas {
		if d.Migrated {
			if err := s.products.RetagTx(tx, d.Key.ProductID, "", d.Key.Warehouse); err != nil {
				return fmt.Errorf("retag product %s: %w", d.Key.ProductID, err)
			}
		}
		row, ok := findProduct(products, d.Key)
		if !ok {
			return fmt.Errorf("stock row %s@%s missing from ledger result", d.Key.ProductID, d.Key.Warehouse)
		}
		if err := s.products.SaveTx(tx, &row); err != nil {
			return fmt.Errorf("save product %s: %w", d.Key.ProductID, err)
		}
		refID := ref
		m := &model.StockMovement{
			ID:             uuid.New(),
			ProductID:      d.Key.ProductID,
			Warehouse:      d.Key.Warehouse,
			Type:           kind,
			QuantityChange: d.QuantityChange(),
			QuantityBefore: d.QuantityBefore,
			QuantityAfter:  d.QuantityAfter,
			CostBefore:     d.CostBefore,
			CostAfter:      d.CostAfter,
			Reason:         reason,
			ReferenceID:    &refID,
		}
		if err := s.movements.CreateTx(tx, m); err != nil {
			return fmt.Errorf("record stock movement: %w", err)
		}
	}
	return nil
}

func findProduct(products []model.Product, key ledger.StockKey) (model.Product, bool) {
	for _, p := range products {
		if p.ID == key.ProductID && p.Warehouse == key.Warehouse {
			return p, true
		}
	}
	return model.Product{}, false
}

// ── Repay ───────────────────────────────────────────────────────────────────

func (s *procurementService) Repay(ctx context.Context, id uuid.UUID, req dto.RepayRequest) (*dto.RepayResponse, error) {
	cmd := ledger.RepayCommand{
		PurchaseID:   id,
		Method:       ledger.PaymentMethod(req.Method),
		Amount:       req.Amount,
		Distribution: toDistribution(req.Distribution),
	}
	if req.Date != nil {
		cmd.Date = *req.Date
	}
	if req.Currency != "" {
		c, err := ledger.ParseCurrency(req.Currency)
		if err != nil {
			return nil, &ledger.ValidationError{Fields: map[string]string{"currency": err.Error()}}
		}
		cmd.Currency = c
	}

	release, err := lockLedger(ctx, s.locker)
	if err != nil {
		return nil, err
	}
	defer release()

	pc, err := s.settings.PricingContext(ctx)
	if err != nil {
		return nil, err
	}
	balances, err := s.treasury.Balances(ctx)
	if err != nil {
		return nil, err
	}

	var res ledger.RepayResult
	err = runTx(ctx, s.txs.DB(), func(tx *gorm.DB) error {
		p, err := s.purchases.FindForUpdateTx(tx, id)
		if err != nil {
			return lookup(err, "purchase", id.String())
		}
		res, err = s.engine.Repay(ledger.State{Purchases: []model.Purchase{*p}}, cmd, pc, balances)
		if err != nil {
			return err
		}
		if err := s.purchases.SaveTx(tx, &res.Purchase); err != nil {
			return fmt.Errorf("save purchase: %w", err)
		}
		for i := range res.Transactions {
			if err := s.txs.CreateTx(tx, &res.Transactions[i]); err != nil {
				return fmt.Errorf("create transaction: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.treasury.Invalidate(ctx)
	resp := &dto.RepayResponse{
		Purchase:     toPurchaseResponse(res.Purchase),
		Transactions: toTransactionResponses(res.Transactions),
	}
	log.Info().
		Str("purchase_id", id.String()).
		Str("status", res.Purchase.PaymentStatus).
		Str("remaining", res.Debt.Remaining.StringFixed(2)).
		Msg("purchase repaid")
	s.notify.committed(ctx, realtime.EventPurchaseRepaid, resp.Purchase,
		syncPayload(id, nil, res.Transactions))
	return resp, nil
}

// ── History maintenance ─────────────────────────────────────────────────────

func (s *procurementService) EditLine(ctx context.Context, id uuid.UUID, index int, req dto.EditLineRequest) (*dto.LineChangeResponse, error) {
	return s.changeLine(ctx, id, index, MovementPurchaseEdit, func(state ledger.State) (ledger.LineChangeResult, error) {
		return s.engine.EditPurchaseLine(state, ledger.EditLineCommand{
			PurchaseID:   id,
			Index:        index,
			Quantity:     req.Quantity,
			InvoicePrice: req.InvoicePrice,
		})
	})
}

func (s *procurementService) DeleteLine(ctx context.Context, id uuid.UUID, index int) (*dto.LineChangeResponse, error) {
	return s.changeLine(ctx, id, index, MovementPurchaseLineDelete, func(state ledger.State) (ledger.LineChangeResult, error) {
		return s.engine.DeletePurchaseLine(state, ledger.DeleteLineCommand{PurchaseID: id, Index: index})
	})
}

func (s *procurementService) changeLine(
	ctx context.Context,
	id uuid.UUID,
	index int,
	kind string,
	apply func(ledger.State) (ledger.LineChangeResult, error),
) (*dto.LineChangeResponse, error) {
	release, err := lockLedger(ctx, s.locker)
	if err != nil {
		return nil, err
	}
	defer release()

	var res ledger.LineChangeResult
	err = runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		p, err := s.purchases.FindForUpdateTx(tx, id)
		if err != nil {
			return lookup(err, "purchase", id.String())
		}
		var products []model.Product
		if index >= 0 && index < len(p.Items) {
			if products, err = s.products.FindByIDs(ctx, []uuid.UUID{p.Items[index].ProductID}); err != nil {
				return fmt.Errorf("load products: %w", err)
			}
		}
		res, err = apply(ledger.State{Products: products, Purchases: []model.Purchase{*p}})
		if err != nil {
			return err
		}
		if res.RemovedItem != nil {
			if err := s.purchases.DeleteItemTx(tx, res.RemovedItem.ID); err != nil {
				return fmt.Errorf("delete purchase item: %w", err)
			}
		}
		if err := s.purchases.SaveTx(tx, &res.Purchase); err != nil {
			return fmt.Errorf("save purchase: %w", err)
		}
		reason := fmt.Sprintf("Line %d of purchase from %s", index+1, res.Purchase.SupplierName)
		return s.applyDeltas(tx, res.State.Products, []ledger.StockDelta{res.StockDelta}, kind, id, reason)
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.LineChangeResponse{
		Purchase:   toPurchaseResponse(res.Purchase),
		StockDelta: toStockDeltaResponse(res.StockDelta),
	}
	log.Info().
		Str("purchase_id", id.String()).
		Int("line", index).
		Str("kind", kind).
		Str("quantity_change", res.StockDelta.QuantityChange().String()).
		Msg("purchase line changed")
	s.notify.committed(ctx, realtime.EventPurchaseUpdated, resp.Purchase,
		syncPayload(id, []ledger.StockDelta{res.StockDelta}, nil))
	return resp, nil
}

// MigrateLegacy rewrites one legacy purchase into the current schema.
func (s *procurementService) MigrateLegacy(ctx context.Context, id uuid.UUID) (*dto.MigrationResponse, error) {
	release, err := lockLedger(ctx, s.locker)
	if err != nil {
		return nil, err
	}
	defer release()

	pc, err := s.settings.PricingContext(ctx)
	if err != nil {
		return nil, err
	}
	var migrated model.Purchase
	err = runTx(ctx, s.txs.DB(), func(tx *gorm.DB) error {
		p, err := s.purchases.FindForUpdateTx(tx, id)
		if err != nil {
			return lookup(err, "purchase", id.String())
		}
		if migrated, err = ledger.MigrateLegacy(*p, pc.ExchangeRate); err != nil {
			return err
		}
		return s.purchases.SaveTx(tx, &migrated)
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.MigrationResponse{Purchase: toPurchaseResponse(migrated)}
	log.Info().Str("purchase_id", id.String()).Str("rate", migrated.ExchangeRate.String()).Msg("legacy purchase migrated")
	s.notify.committed(ctx, realtime.EventPurchaseUpdated, resp.Purchase,
		worker.SheetsSyncPayload{PurchaseIDs: []string{id.String()}})
	return resp, nil
}

// ── Reads ───────────────────────────────────────────────────────────────────

func (s *procurementService) GetPurchase(ctx context.Context, id uuid.UUID) (*dto.PurchaseResponse, error) {
	p, err := s.purchases.FindByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "purchase", id.String())
	}
	resp := toPurchaseResponse(*p)
	return &resp, nil
}

func (s *procurementService) listFilter(filter dto.PurchaseFilter) (repository.PurchaseFilter, error) {
	f := repository.PurchaseFilter{
		Supplier: filter.Supplier,
		Status:   filter.Status,
		Page:     page(filter.Page, filter.Limit),
	}
	var err error
	if f.From, err = parseDay("from", filter.From); err != nil {
		return f, err
	}
	if f.To, err = parseDay("to", filter.To); err != nil {
		return f, err
	}
	if f.To != nil {
		// inclusive day
		next := f.To.AddDate(0, 0, 1)
		f.To = &next
	}
	return f, nil
}

func (s *procurementService) ListPurchases(ctx context.Context, filter dto.PurchaseFilter) (*dto.PurchaseListResponse, error) {
	f, err := s.listFilter(filter)
	if err != nil {
		return nil, err
	}
	rows, total, err := s.purchases.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PurchaseResponse, 0, len(rows))
	for _, p := range rows {
		out = append(out, toPurchaseResponse(p))
	}
	return &dto.PurchaseListResponse{Data: out, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *procurementService) SupplierDebts(ctx context.Context) ([]dto.SupplierDebtResponse, error) {
	open, err := s.purchases.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	debts := ledger.SupplierDebts(open)
	out := make([]dto.SupplierDebtResponse, 0, len(debts))
	for _, d := range debts {
		r := dto.SupplierDebtResponse{
			SupplierName: d.SupplierName,
			Purchases:    d.Purchases,
			TotalUSD:     d.TotalUSD,
			PaidUSD:      d.PaidUSD,
			RemainingUSD: d.RemainingUSD,
		}
		if !d.OldestUnpaid.IsZero() {
			r.OldestUnpaid = d.OldestUnpaid.Format("2006-01-02")
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *procurementService) DraftFromOrder(ctx context.Context, orderID uuid.UUID, warehouse string) (*dto.DraftResponse, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, lookup(err, "workflow order", orderID.String())
	}
	ids := make([]uuid.UUID, 0, len(order.Items))
	for _, it := range order.Items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	cmd, shortages, err := ledger.DraftFromOrder(*order, products, warehouse)
	if err != nil {
		return nil, err
	}
	return &dto.DraftResponse{Draft: toCreateRequest(cmd), Shortages: toShortageResponses(shortages)}, nil
}

// ── Documents ───────────────────────────────────────────────────────────────

func (s *procurementService) ExportXLSX(ctx context.Context, filter dto.PurchaseFilter, w io.Writer) error {
	filter.Page, filter.Limit = 1, exportLimit
	f, err := s.listFilter(filter)
	if err != nil {
		return err
	}
	purchases, _, err := s.purchases.List(ctx, f)
	if err != nil {
		return err
	}
	rows := make([]infra.PurchaseExportRow, 0, len(purchases))
	for _, p := range purchases {
		v := ledger.DebtViewOf(p)
		rows = append(rows, infra.PurchaseExportRow{
			Purchase:     p,
			DebtCurrency: string(v.Currency),
			PaidUSD:      ledger.NormalizedPaidUSD(p),
			Remaining:    v.Remaining,
		})
	}
	book, err := infra.NewPurchasesWorkbook(rows)
	if err != nil {
		return fmt.Errorf("build workbook: %w", err)
	}
	var buf bytes.Buffer
	if err := infra.WriteWorkbook(&buf, book); err != nil {
		return err
	}

	if s.archive != nil {
		name := infra.ArchiveName("purchases", time.Now(), ".xlsx")
		if loc, err := s.archive.Save(ctx, name, buf.Bytes()); err != nil {
			log.Warn().Err(err).Msg("purchase export archive failed")
		} else {
			log.Info().Str("location", loc).Int("purchases", len(rows)).Msg("purchase export archived")
		}
	}
	_, err = w.Write(buf.Bytes())
	return err
}

func (s *procurementService) VoucherPDF(ctx context.Context, id uuid.UUID, w io.Writer) error {
	p, err := s.purchases.FindByID(ctx, id)
	if err != nil {
		return lookup(err, "purchase", id.String())
	}
	v := ledger.DebtViewOf(*p)
	company := "MetallERP"
	if s.cfg != nil && s.cfg.CompanyName != "" {
		company = s.cfg.CompanyName
	}
	return infra.WritePurchaseVoucher(w, company, p, infra.VoucherDebt{
		Currency:  string(v.Currency),
		Total:     v.Total,
		Paid:      v.Paid,
		Remaining: v.Remaining,
	})
}

// ── Request mapping ─────────────────────────────────────────────────────────

func parseDocument(typ, currency string) (ledger.ProcurementType, ledger.Currency, error) {
	t, err := ledger.ParseProcurementType(typ)
	if err != nil {
		return "", "", &ledger.ValidationError{Fields: map[string]string{"procurement_type": err.Error()}}
	}
	c, err := ledger.ParseCurrency(currency)
	if err != nil {
		return "", "", &ledger.ValidationError{Fields: map[string]string{"currency": err.Error()}}
	}
	return t, c, nil
}

func toOverheads(o dto.OverheadsRequest) ledger.Overheads {
	return ledger.Overheads{Logistics: o.Logistics, CustomsDuty: o.CustomsDuty, ImportVat: o.ImportVat, Other: o.Other}
}

func toDistribution(d dto.DistributionRequest) ledger.Distribution {
	return ledger.Distribution{CashUSD: d.CashUSD, CashUZS: d.CashUZS, CardUZS: d.CardUZS, BankUZS: d.BankUZS}
}

func toCreateCommand(req dto.CreatePurchaseRequest) (ledger.CreatePurchaseCommand, error) {
	typ, currency, err := parseDocument(req.ProcurementType, req.Currency)
	if err != nil {
		return ledger.CreatePurchaseCommand{}, err
	}
	cmd := ledger.CreatePurchaseCommand{
		SupplierName: req.SupplierName,
		Type:         typ,
		Currency:     currency,
		Warehouse:    req.Warehouse,
		Overheads:    toOverheads(req.Overheads),
		Payment: ledger.PaymentChoice{
			Method:       ledger.PaymentMethod(req.Payment.Method),
			Distribution: toDistribution(req.Payment.Distribution),
		},
	}
	if req.Date != nil {
		cmd.Date = *req.Date
	}
	if req.Payment.Currency != "" {
		if cmd.Payment.Currency, err = ledger.ParseCurrency(req.Payment.Currency); err != nil {
			return cmd, &ledger.ValidationError{Fields: map[string]string{"payment.currency": err.Error()}}
		}
	}
	if req.WorkflowOrderID != nil {
		id, err := uuid.Parse(*req.WorkflowOrderID)
		if err != nil {
			return cmd, &ledger.ValidationError{Fields: map[string]string{"workflow_order_id": "must be a UUID"}}
		}
		cmd.WorkflowOrderID = &id
	}
	for i, l := range req.Lines {
		pid, err := uuid.Parse(l.ProductID)
		if err != nil {
			return cmd, &ledger.ValidationError{Fields: map[string]string{fmt.Sprintf("lines[%d].product_id", i): "must be a UUID"}}
		}
		cmd.Lines = append(cmd.Lines, ledger.PurchaseLine{
			ProductID:    pid,
			ProductName:  l.ProductName,
			Unit:         l.Unit,
			Dimensions:   l.Dimensions,
			Warehouse:    l.Warehouse,
			Quantity:     l.Quantity,
			InvoicePrice: l.InvoicePrice,
		})
	}
	return cmd, nil
}

func toCreateRequest(cmd ledger.CreatePurchaseCommand) dto.CreatePurchaseRequest {
	req := dto.CreatePurchaseRequest{
		SupplierName:    cmd.SupplierName,
		ProcurementType: string(cmd.Type),
		Currency:        string(cmd.Currency),
		Warehouse:       cmd.Warehouse,
		Payment:         dto.PaymentRequest{Method: string(cmd.Payment.Method)},
		WorkflowOrderID: uuidPtrString(cmd.WorkflowOrderID),
	}
	for _, l := range cmd.Lines {
		req.Lines = append(req.Lines, dto.PurchaseLineRequest{
			ProductID:    l.ProductID.String(),
			ProductName:  l.ProductName,
			Unit:         l.Unit,
			Dimensions:   l.Dimensions,
			Warehouse:    l.Warehouse,
			Quantity:     l.Quantity,
			InvoicePrice: l.InvoicePrice,
		})
	}
	return req
}

// syncPayload names every row a commit touched.
func syncPayload(purchaseID uuid.UUID, deltas []ledger.StockDelta, txs []model.Transaction) worker.SheetsSyncPayload {
	out := worker.SheetsSyncPayload{PurchaseIDs: []string{purchaseID.String()}}
	seen := make(map[uuid.UUID]bool, len(deltas))
	for _, d := range deltas {
		if !seen[d.Key.ProductID] {
			seen[d.Key.ProductID] = true
			out.ProductIDs = append(out.ProductIDs, d.Key.ProductID.String())
		}
	}
	for _, t := range txs {
		out.TransactionIDs = append(out.TransactionIDs, t.ID.String())
	}
	return out
}
