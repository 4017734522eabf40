package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/Jassur2025/metallerp-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// State is the slice of application data the ledger reads and rewrites.
// Operations never mutate the slices they receive, command lines included.
type State struct {
	Products     []model.Product
	Purchases    []model.Purchase
	Transactions []model.Transaction
}

// Engine carries the policy knobs shared by every ledger operation.
type Engine struct {
	Tolerances Tolerances
	Policy     ImportTaxPolicy
	Now        func() time.Time
	NewID      func() uuid.UUID
}

func NewEngine(tol Tolerances, policy ImportTaxPolicy) *Engine {
	if policy == "" {
		policy = CapitalizeImportTaxes
	}
	return &Engine{
		Tolerances: tol,
		Policy:     policy,
		Now:        time.Now,
		NewID:      uuid.New,
	}
}

// ── Create ───────────────────────────────────────────────────────────────────

// PurchaseLine is one cart line. Warehouse defaults to the purchase warehouse.
type PurchaseLine struct {
	ProductID    uuid.UUID
	ProductName  string
	Unit         string
	Dimensions   string
	Warehouse    string
	Quantity     decimal.Decimal
	InvoicePrice decimal.Decimal
}

type CreatePurchaseCommand struct {
	Date            time.Time
	SupplierName    string
	Type            ProcurementType
	Currency        Currency
	Warehouse       string
	Lines           []PurchaseLine
	Overheads       Overheads
	Payment         PaymentChoice
	WorkflowOrderID *uuid.UUID
	CreatedBy       *uuid.UUID
}

// PurchaseResult is everything CreatePurchase produced. State already holds
// the new purchase, transactions and product rows; the other fields list
// them separately for persistence.
type PurchaseResult struct {
	State        State
	Purchase     model.Purchase
	Transactions []model.Transaction
	StockDeltas  []StockDelta
	Allocation   Allocation
}

// CreatePurchase allocates landed costs, resolves the payment and receives
// stock, in that order. Any failure leaves state untouched.
func (e *Engine) CreatePurchase(state State, cmd CreatePurchaseCommand, pc PricingContext, balances Balances) (PurchaseResult, error) {
	if err := pc.Validate(); err != nil {
		return PurchaseResult{}, err
	}
	cmd.Lines = append([]PurchaseLine(nil), cmd.Lines...)
	if err := validateCreate(&cmd); err != nil {
		return PurchaseResult{}, err
	}

	alloc, err := Allocate(AllocationInput{
		Type:      cmd.Type,
		Currency:  cmd.Currency,
		Lines:     costLines(cmd.Lines),
		Overheads: cmd.Overheads,
		Policy:    e.Policy,
	}, pc)
	if err != nil {
		return PurchaseResult{}, err
	}

	due := Money{Amount: alloc.TotalInvoiceValue, Currency: USD}
	if cmd.Currency == UZS {
		due = Money{Amount: alloc.TotalInvoiceUZS, Currency: UZS}
	}
	res, err := ResolvePayment(due, cmd.Payment, balances, pc, e.Tolerances)
	if err != nil {
		return PurchaseResult{}, err
	}

	date := cmd.Date
	if date.IsZero() {
		date = e.Now()
	}
	p := model.Purchase{
		ID:                    e.NewID(),
		Date:                  date,
		SupplierName:          cmd.SupplierName,
		ProcurementType:       string(cmd.Type),
		Currency:              string(cmd.Currency),
		Warehouse:             cmd.Warehouse,
		TotalInvoiceAmount:    alloc.TotalInvoiceValue,
		TotalInvoiceAmountUZS: alloc.TotalInvoiceUZS,
		TotalVatAmountUZS:     alloc.TotalVatUZS,
		TotalWithoutVatUZS:    alloc.TotalWithoutVatUZS,
		TotalLandedAmount:     alloc.TotalLandedValue,
		ExpensedTaxes:         alloc.ExpensedTaxes,
		PaymentMethod:         string(res.Method),
		PaymentCurrency:       string(res.Currency),
		PaymentStatus:         string(res.Status),
		AmountPaid:            res.PaidUZS,
		AmountPaidUSD:         res.PaidUSD,
		ExchangeRate:          pc.ExchangeRate,
		VATRate:               pc.VATRate,
		ImportTaxPolicy:       string(e.Policy),
		WorkflowOrderID:       cmd.WorkflowOrderID,
		CreatedBy:             cmd.CreatedBy,
	}
	if cmd.Type == Import {
		p.Overheads = model.Overheads(cmd.Overheads)
	}

	origin := model.OriginLocal
	if cmd.Type == Import {
		origin = model.OriginImport
	}
	receipts := make([]Receipt, len(cmd.Lines))
	p.Items = make([]model.PurchaseItem, len(cmd.Lines))
	for i, l := range cmd.Lines {
		al := alloc.Lines[i]
		p.Items[i] = model.PurchaseItem{
			ID:                     e.NewID(),
			PurchaseID:             p.ID,
			Position:               i,
			ProductID:              l.ProductID,
			ProductName:            l.ProductName,
			Quantity:               l.Quantity,
			Unit:                   l.Unit,
			Dimensions:             l.Dimensions,
			Warehouse:              l.Warehouse,
			InvoicePrice:           al.InvoicePrice,
			InvoicePriceWithoutVat: al.InvoicePriceWithoutVat,
			VatAmount:              al.VatAmount,
			AllocatedOverhead:      al.AllocatedOverhead,
			LandedCost:             al.LandedCost,
			TotalLineCost:          al.TotalLineCost,
			TotalLineCostUZS:       al.TotalLineCostUZS,
		}
		receipts[i] = Receipt{
			Key:        StockKey{ProductID: l.ProductID, Warehouse: l.Warehouse},
			Name:       l.ProductName,
			Unit:       l.Unit,
			Dimensions: l.Dimensions,
			Origin:     origin,
			Quantity:   l.Quantity,
			UnitCost:   al.LandedCost,
		}
	}
	products, deltas := ApplyReceipts(state.Products, receipts)

	txs := e.transactions(res.Legs, date, p.ID, pc, "Payment to "+p.SupplierName)

	next := State{
		Products:     products,
		Purchases:    append(append([]model.Purchase(nil), state.Purchases...), p),
		Transactions: append(append([]model.Transaction(nil), state.Transactions...), txs...),
	}
	return PurchaseResult{
		State:        next,
		Purchase:     p,
		Transactions: txs,
		StockDeltas:  deltas,
		Allocation:   alloc,
	}, nil
}

func validateCreate(cmd *CreatePurchaseCommand) error {
	errs := fieldErrors{}
	cmd.SupplierName = strings.TrimSpace(cmd.SupplierName)
	if cmd.SupplierName == "" {
		errs.add("supplier_name", "is required")
	}
	if len(cmd.Lines) == 0 {
		errs.add("lines", "cart is empty")
	}
	if cmd.Warehouse == "" {
		cmd.Warehouse = model.WarehouseMain
	}
	seen := make(map[StockKey]int, len(cmd.Lines))
	for i := range cmd.Lines {
		l := &cmd.Lines[i]
		if l.Warehouse == "" {
			l.Warehouse = cmd.Warehouse
		}
		if l.ProductID == uuid.Nil {
			errs.add(fmt.Sprintf("lines[%d].product_id", i), "is required")
			continue
		}
		key := StockKey{ProductID: l.ProductID, Warehouse: l.Warehouse}
		if first, dup := seen[key]; dup {
			errs.add(fmt.Sprintf("lines[%d].product_id", i), fmt.Sprintf("duplicates line %d", first))
			continue
		}
		seen[key] = i
	}
	return errs.err()
}

func costLines(lines []PurchaseLine) []CostLine {
	out := make([]CostLine, len(lines))
	for i, l := range lines {
		out[i] = CostLine{Quantity: l.Quantity, InvoicePrice: l.InvoicePrice}
	}
	return out
}

func (e *Engine) transactions(legs []PaymentLeg, date time.Time, purchaseID uuid.UUID, pc PricingContext, desc string) []model.Transaction {
	out := make([]model.Transaction, 0, len(legs))
	for _, l := range legs {
		rel := purchaseID
		tx := model.Transaction{
			ID:          e.NewID(),
			Date:        date,
			Type:        model.TxSupplierPayment,
			Amount:      l.Amount,
			Currency:    string(l.Currency),
			Method:      string(l.Method),
			Description: desc,
			RelatedID:   &rel,
		}
		if l.Currency == UZS {
			tx.ExchangeRate = pc.ExchangeRate
		}
		out = append(out, tx)
	}
	return out
}

// ── Repay ────────────────────────────────────────────────────────────────────

// RepayCommand pays down a purchase either with one Amount in Currency via
// Method, or with a Distribution when Method is Mixed.
type RepayCommand struct {
	PurchaseID   uuid.UUID
	Date         time.Time
	Method       PaymentMethod
	Amount       decimal.Decimal
	Currency     Currency
	Distribution Distribution
}

type RepayResult struct {
	State        State
	Purchase     model.Purchase
	Transactions []model.Transaction
	Debt         DebtView
}

// Repay books a repayment. The amount is converted into the purchase's debt
// currency at pc and must not exceed the remaining debt by more than the
// tolerance. A paid purchase accepts no further repayments.
func (e *Engine) Repay(state State, cmd RepayCommand, pc PricingContext, balances Balances) (RepayResult, error) {
	if err := pc.Validate(); err != nil {
		return RepayResult{}, err
	}
	idx := purchaseIndex(state.Purchases, cmd.PurchaseID)
	if idx < 0 {
		return RepayResult{}, &NotFoundError{Entity: "purchase", ID: cmd.PurchaseID.String()}
	}
	p := state.Purchases[idx]
	view := DebtViewOf(p)
	tol := e.Tolerances.For(view.Currency)
	if PaymentStatus(p.PaymentStatus) == Paid || view.Remaining.LessThanOrEqual(tol) {
		return RepayResult{}, invalid("purchase", "is already paid")
	}

	var legs []PaymentLeg
	switch cmd.Method {
	case Cash, Bank, Card:
		if !cmd.Amount.IsPositive() {
			return RepayResult{}, invalid("amount", "must be greater than zero")
		}
		cur := cmd.Currency
		if cmd.Method != Cash || cur == "" {
			cur = UZS
		}
		if cur != USD && cur != UZS {
			return RepayResult{}, invalid("currency", "must be USD or UZS")
		}
		if err := checkBalance(cmd.Method, cur, cmd.Amount, balances); err != nil {
			return RepayResult{}, err
		}
		legs = []PaymentLeg{{Method: cmd.Method, Currency: cur, Amount: cmd.Amount}}
	case Mixed:
		errs := fieldErrors{}
		cmd.Distribution.validate(errs)
		if err := errs.err(); err != nil {
			return RepayResult{}, err
		}
		legs = cmd.Distribution.legs()
		if len(legs) == 0 {
			return RepayResult{}, invalid("distribution", "must contain a positive amount")
		}
	default:
		return RepayResult{}, invalid("method", "must be cash, bank, card or mixed")
	}

	inDebt, paidUZS, paidUSD := decimal.Zero, decimal.Zero, decimal.Zero
	for _, l := range legs {
		inDebt = inDebt.Add(pc.Convert(l.Amount, l.Currency, view.Currency))
		paidUZS = paidUZS.Add(pc.Convert(l.Amount, l.Currency, UZS))
		paidUSD = paidUSD.Add(pc.Convert(l.Amount, l.Currency, USD))
	}
	if inDebt.GreaterThan(view.Remaining.Add(tol)) {
		return RepayResult{}, invalid("amount", fmt.Sprintf("exceeds remaining debt of %s %s",
			view.Remaining.StringFixed(2), view.Currency))
	}

	next := p
	if IsLegacy(p) {
		next.AmountPaid = p.AmountPaid.Add(paidUSD)
	} else {
		next.AmountPaid = p.AmountPaid.Add(paidUZS)
		next.AmountPaidUSD = NormalizedPaidUSD(p).Add(paidUSD)
	}
	nv := DebtViewOf(next)
	status := StatusFor(nv.Paid, nv.Total, tol)
	if status.rank() < PaymentStatus(p.PaymentStatus).rank() {
		status = PaymentStatus(p.PaymentStatus)
	}
	next.PaymentStatus = string(status)

	date := cmd.Date
	if date.IsZero() {
		date = e.Now()
	}
	txs := e.transactions(legs, date, p.ID, pc, "Debt repayment to "+p.SupplierName)

	purchases := append([]model.Purchase(nil), state.Purchases...)
	purchases[idx] = next
	return RepayResult{
		State: State{
			Products:     state.Products,
			Purchases:    purchases,
			Transactions: append(append([]model.Transaction(nil), state.Transactions...), txs...),
		},
		Purchase:     next,
		Transactions: txs,
		Debt:         nv,
	}, nil
}

func purchaseIndex(purchases []model.Purchase, id uuid.UUID) int {
	for i := range purchases {
		if purchases[i].ID == id {
			return i
		}
	}
	return -1
}

// ── History maintenance ─────────────────────────────────────────────────────

type EditLineCommand struct {
	PurchaseID   uuid.UUID
	Index        int
	Quantity     decimal.Decimal
	InvoicePrice decimal.Decimal
}

type DeleteLineCommand struct {
	PurchaseID uuid.UUID
	Index      int
}

// LineChangeResult carries the rewritten purchase and the single stock row
// adjustment the change caused.
type LineChangeResult struct {
	State       State
	Purchase    model.Purchase
	StockDelta  StockDelta
	RemovedItem *model.PurchaseItem
}

// EditPurchaseLine replaces quantity and price of one line, re-runs the
// allocation with the purchase's own rate snapshot, and moves the product
// quantity by (new - old). Average cost is not re-derived.
func (e *Engine) EditPurchaseLine(state State, cmd EditLineCommand) (LineChangeResult, error) {
	errs := fieldErrors{}
	if !cmd.Quantity.IsPositive() {
		errs.add("quantity", "must be greater than zero")
	}
	if !cmd.InvoicePrice.IsPositive() {
		errs.add("invoice_price", "must be greater than zero")
	}
	if err := errs.err(); err != nil {
		return LineChangeResult{}, err
	}
	idx, p, err := editablePurchase(state, cmd.PurchaseID, cmd.Index)
	if err != nil {
		return LineChangeResult{}, err
	}

	items := append([]model.PurchaseItem(nil), p.Items...)
	old := items[cmd.Index]
	items[cmd.Index].Quantity = cmd.Quantity
	items[cmd.Index].InvoicePrice = cmd.InvoicePrice

	next, err := e.recompute(p, items)
	if err != nil {
		return LineChangeResult{}, err
	}
	products, delta, err := AdjustQuantity(state.Products, itemKey(p, old), cmd.Quantity.Sub(old.Quantity))
	if err != nil {
		return LineChangeResult{}, err
	}
	return LineChangeResult{
		State:      replacePurchase(state, idx, next, products),
		Purchase:   next,
		StockDelta: delta,
	}, nil
}

// DeletePurchaseLine removes one line and takes its quantity back out of
// stock. The last line of a purchase cannot be removed.
func (e *Engine) DeletePurchaseLine(state State, cmd DeleteLineCommand) (LineChangeResult, error) {
	idx, p, err := editablePurchase(state, cmd.PurchaseID, cmd.Index)
	if err != nil {
		return LineChangeResult{}, err
	}
	if len(p.Items) == 1 {
		return LineChangeResult{}, invalid("items", "cannot delete the only line of a purchase")
	}

	removed := p.Items[cmd.Index]
	items := make([]model.PurchaseItem, 0, len(p.Items)-1)
	items = append(items, p.Items[:cmd.Index]...)
	items = append(items, p.Items[cmd.Index+1:]...)
	for i := range items {
		items[i].Position = i
	}

	next, err := e.recompute(p, items)
	if err != nil {
		return LineChangeResult{}, err
	}
	products, delta, err := AdjustQuantity(state.Products, itemKey(p, removed), removed.Quantity.Neg())
	if err != nil {
		return LineChangeResult{}, err
	}
	return LineChangeResult{
		State:       replacePurchase(state, idx, next, products),
		Purchase:    next,
		StockDelta:  delta,
		RemovedItem: &removed,
	}, nil
}

func editablePurchase(state State, id uuid.UUID, line int) (int, model.Purchase, error) {
	idx := purchaseIndex(state.Purchases, id)
	if idx < 0 {
		return -1, model.Purchase{}, &NotFoundError{Entity: "purchase", ID: id.String()}
	}
	p := state.Purchases[idx]
	if IsLegacy(p) {
		return -1, model.Purchase{}, invalid("purchase", "legacy purchase must be migrated before editing")
	}
	if line < 0 || line >= len(p.Items) {
		return -1, model.Purchase{}, &NotFoundError{Entity: "purchase item", ID: fmt.Sprintf("%s#%d", id, line)}
	}
	return idx, p, nil
}

// recompute re-runs the allocation over items with the snapshots stored on
// the purchase and refreshes totals and payment status.
func (e *Engine) recompute(p model.Purchase, items []model.PurchaseItem) (model.Purchase, error) {
	pc := PricingContext{ExchangeRate: p.ExchangeRate, VATRate: p.VATRate}
	policy, err := ParseImportTaxPolicy(p.ImportTaxPolicy)
	if err != nil {
		return model.Purchase{}, err
	}
	cur, err := ParseCurrency(p.Currency)
	if err != nil {
		return model.Purchase{}, &ConfigurationError{Setting: "purchase.currency", Reason: err.Error()}
	}
	lines := make([]CostLine, len(items))
	for i, it := range items {
		lines[i] = CostLine{Quantity: it.Quantity, InvoicePrice: it.InvoicePrice}
	}
	alloc, err := Allocate(AllocationInput{
		Type:      ProcurementType(p.ProcurementType),
		Currency:  cur,
		Lines:     lines,
		Overheads: Overheads(p.Overheads),
		Policy:    policy,
	}, pc)
	if err != nil {
		return model.Purchase{}, err
	}

	next := p
	next.Items = items
	for i := range next.Items {
		al := alloc.Lines[i]
		it := &next.Items[i]
		it.InvoicePriceWithoutVat = al.InvoicePriceWithoutVat
		it.VatAmount = al.VatAmount
		it.AllocatedOverhead = al.AllocatedOverhead
		it.LandedCost = al.LandedCost
		it.TotalLineCost = al.TotalLineCost
		it.TotalLineCostUZS = al.TotalLineCostUZS
	}
	next.TotalInvoiceAmount = alloc.TotalInvoiceValue
	next.TotalInvoiceAmountUZS = alloc.TotalInvoiceUZS
	next.TotalVatAmountUZS = alloc.TotalVatUZS
	next.TotalWithoutVatUZS = alloc.TotalWithoutVatUZS
	next.TotalLandedAmount = alloc.TotalLandedValue
	next.ExpensedTaxes = alloc.ExpensedTaxes

	v := DebtViewOf(next)
	next.PaymentStatus = string(StatusFor(v.Paid, v.Total, e.Tolerances.For(v.Currency)))
	return next, nil
}

func itemKey(p model.Purchase, it model.PurchaseItem) StockKey {
	wh := it.Warehouse
	if wh == "" {
		wh = p.Warehouse
	}
	return StockKey{ProductID: it.ProductID, Warehouse: wh}
}

func replacePurchase(state State, idx int, p model.Purchase, products []model.Product) State {
	purchases := append([]model.Purchase(nil), state.Purchases...)
	purchases[idx] = p
	return State{Products: products, Purchases: purchases, Transactions: state.Transactions}
}
