package ledger

import (
	"errors"
	"testing"

	"github.com/Jassur2025/metallerp-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usdDebtPurchase(t *testing.T, e *Engine, state State, qty, price string) PurchaseResult {
	t.Helper()
	res, err := e.CreatePurchase(state, CreatePurchaseCommand{
		SupplierName: "Chelyabinsk Pipe",
		Type:         Local,
		Currency:     USD,
		Warehouse:    model.WarehouseMain,
		Lines:        []PurchaseLine{{ProductID: newID(), ProductName: "Pipe", Quantity: d(qty), InvoicePrice: d(price)}},
		Payment:      PaymentChoice{Method: Debt},
	}, testPC, Balances{})
	require.NoError(t, err)
	return res
}

// stockOf sums the stock of one product across warehouses.
func stockOf(products []model.Product, id uuid.UUID) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range products {
		if p.ID == id {
			sum = sum.Add(p.Quantity)
		}
	}
	return sum
}

// receivedOf sums the purchase history of one product.
func receivedOf(purchases []model.Purchase, id uuid.UUID) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range purchases {
		for _, it := range p.Items {
			if it.ProductID == id {
				sum = sum.Add(it.Quantity)
			}
		}
	}
	return sum
}

// ── CreatePurchase ───────────────────────────────────────────────────────────

func TestCreatePurchase_LocalCashRoundTrip(t *testing.T) {
	e := testEngine()
	pid := newID()
	state := State{Products: []model.Product{{ID: pid, Warehouse: model.WarehouseMain, Name: "Rebar 12", Quantity: d("10"), CostPrice: d("2")}}}

	res, err := e.CreatePurchase(state, CreatePurchaseCommand{
		SupplierName: "  Metall Trade  ",
		Type:         Local,
		Currency:     USD,
		Warehouse:    model.WarehouseMain,
		Lines:        []PurchaseLine{{ProductID: pid, ProductName: "Rebar 12", Quantity: d("10"), InvoicePrice: d("2.50")}},
		Payment:      PaymentChoice{Method: Cash, Currency: USD},
	}, testPC, richBalances())
	require.NoError(t, err)

	assertDec(t, "25", res.Allocation.TotalInvoiceValue)
	assertDec(t, "25", res.Allocation.TotalLandedValue)
	require.Len(t, res.Transactions, 1)
	tx := res.Transactions[0]
	assertDec(t, "25", tx.Amount)
	assert.Equal(t, "USD", tx.Currency)
	assert.Equal(t, model.TxSupplierPayment, tx.Type)
	assert.True(t, tx.ExchangeRate.IsZero())
	require.NotNil(t, tx.RelatedID)
	assert.Equal(t, res.Purchase.ID, *tx.RelatedID)

	p := res.Purchase
	assert.Equal(t, "Metall Trade", p.SupplierName)
	assert.Equal(t, string(Paid), p.PaymentStatus)
	assertDec(t, "25", p.AmountPaidUSD)
	assertDec(t, "312500", p.AmountPaid)
	assertDec(t, "312500", p.TotalInvoiceAmountUZS)
	assertDec(t, "12500", p.ExchangeRate)

	require.Len(t, res.State.Products, 1)
	assertDec(t, "20", res.State.Products[0].Quantity)
	assertDec(t, "2.25", res.State.Products[0].CostPrice)
	require.Len(t, res.StockDeltas, 1)

	assert.Len(t, res.State.Purchases, 1)
	assert.Len(t, res.State.Transactions, 1)
	assertDec(t, "10", state.Products[0].Quantity)
}

func TestCreatePurchase_UZSMixedPaymentMatchesTransactions(t *testing.T) {
	e := testEngine()
	res, err := e.CreatePurchase(State{}, CreatePurchaseCommand{
		SupplierName: "Tashkent Metall",
		Type:         Local,
		Currency:     UZS,
		Warehouse:    model.WarehouseMain,
		Lines:        []PurchaseLine{{ProductID: newID(), ProductName: "Sheet 2mm", Quantity: d("10"), InvoicePrice: d("112000")}},
		Payment: PaymentChoice{Method: Mixed, Distribution: Distribution{
			CashUSD: d("40"), CashUZS: d("300000"), BankUZS: d("320000"),
		}},
	}, testPC, Balances{})
	require.NoError(t, err)

	p := res.Purchase
	assertDec(t, "1120000", p.TotalInvoiceAmountUZS)
	assertDec(t, "120000", p.TotalVatAmountUZS)
	assertDec(t, "80", p.TotalInvoiceAmount)

	require.Len(t, res.Transactions, 3)
	sum := decimal.Zero
	for _, tx := range res.Transactions {
		c, _ := ParseCurrency(tx.Currency)
		sum = sum.Add(testPC.Convert(tx.Amount, c, UZS))
		if tx.Currency == "UZS" {
			assertDec(t, "12500", tx.ExchangeRate)
		}
	}
	assertDec(t, "1120000", sum)
	assertDec(t, "1120000", p.AmountPaid)
	assert.Equal(t, string(Paid), p.PaymentStatus)
	assertDec(t, "8", res.State.Products[0].CostPrice)
}

func TestCreatePurchase_Validation(t *testing.T) {
	e := testEngine()
	dup := newID()
	_, err := e.CreatePurchase(State{}, CreatePurchaseCommand{
		SupplierName: " ",
		Type:         Local,
		Currency:     USD,
		Lines: []PurchaseLine{
			{ProductID: dup, Quantity: d("1"), InvoicePrice: d("1")},
			{ProductID: dup, Quantity: d("2"), InvoicePrice: d("1")},
		},
		Payment: PaymentChoice{Method: Debt},
	}, testPC, Balances{})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "supplier_name")
	assert.Contains(t, verr.Fields, "lines[1].product_id")

	_, err = e.CreatePurchase(State{}, CreatePurchaseCommand{
		SupplierName: "X", Type: Local, Currency: USD, Payment: PaymentChoice{Method: Debt},
	}, testPC, Balances{})
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "lines")
}

func TestCreatePurchase_SameProductDifferentWarehousesIsNotDuplicate(t *testing.T) {
	e := testEngine()
	pid := newID()
	res, err := e.CreatePurchase(State{}, CreatePurchaseCommand{
		SupplierName: "X", Type: Local, Currency: USD, Warehouse: model.WarehouseMain,
		Lines: []PurchaseLine{
			{ProductID: pid, Quantity: d("1"), InvoicePrice: d("5")},
			{ProductID: pid, Warehouse: model.WarehouseCloud, Quantity: d("2"), InvoicePrice: d("5")},
		},
		Payment: PaymentChoice{Method: Debt},
	}, testPC, Balances{})
	require.NoError(t, err)
	assert.Len(t, res.State.Products, 2)
	assert.Len(t, res.StockDeltas, 2)
}

func TestCreatePurchase_LeavesCallerLinesUntouched(t *testing.T) {
	e := testEngine()
	lines := []PurchaseLine{{ProductID: newID(), Quantity: d("3"), InvoicePrice: d("5")}}
	res, err := e.CreatePurchase(State{}, CreatePurchaseCommand{
		SupplierName: "X", Type: Local, Currency: USD, Warehouse: model.WarehouseCloud,
		Lines:   lines,
		Payment: PaymentChoice{Method: Debt},
	}, testPC, Balances{})
	require.NoError(t, err)

	assert.Empty(t, lines[0].Warehouse)
	require.Len(t, res.StockDeltas, 1)
	assert.Equal(t, model.WarehouseCloud, res.StockDeltas[0].Key.Warehouse)
}

func TestCreatePurchase_InsufficientFundsCommitsNothing(t *testing.T) {
	e := testEngine()
	state := State{Products: []model.Product{{ID: newID(), Warehouse: model.WarehouseMain, Quantity: d("1")}}}

	_, err := e.CreatePurchase(state, CreatePurchaseCommand{
		SupplierName: "X", Type: Local, Currency: USD,
		Lines:   []PurchaseLine{{ProductID: state.Products[0].ID, Quantity: d("1"), InvoicePrice: d("100")}},
		Payment: PaymentChoice{Method: Bank},
	}, testPC, Balances{BankUZS: d("10")})

	var funds *InsufficientFundsError
	require.True(t, errors.As(err, &funds))
	assert.Equal(t, Bank, funds.Method)
	assertDec(t, "1", state.Products[0].Quantity)
}

func TestCreatePurchase_ImportKeepsOverheadsAndPolicy(t *testing.T) {
	e := testEngine()
	e.Policy = ExpenseImportTaxes
	res, err := e.CreatePurchase(State{}, CreatePurchaseCommand{
		SupplierName: "Baosteel", Type: Import, Currency: USD,
		Lines:     []PurchaseLine{{ProductID: newID(), Quantity: d("10"), InvoicePrice: d("10")}},
		Overheads: Overheads{Logistics: d("10"), CustomsDuty: d("20")},
		Payment:   PaymentChoice{Method: Debt},
	}, testPC, Balances{})
	require.NoError(t, err)

	p := res.Purchase
	assert.Equal(t, "expense", p.ImportTaxPolicy)
	assertDec(t, "20", p.ExpensedTaxes)
	assertDec(t, "110", p.TotalLandedAmount)
	assertDec(t, "20", p.Overheads.CustomsDuty)
	assert.Equal(t, model.OriginImport, res.State.Products[0].Origin)
}

// ── Repay ────────────────────────────────────────────────────────────────────

func TestRepay_BoundAndMonotonicity(t *testing.T) {
	e := testEngine()
	created := usdDebtPurchase(t, e, State{}, "10", "10")
	id := created.Purchase.ID

	_, err := e.Repay(created.State, RepayCommand{PurchaseID: id, Method: Cash, Currency: USD, Amount: d("101")}, testPC, richBalances())
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "overpayment must be rejected, not clamped")
	assert.Contains(t, verr.Fields, "amount")

	partial, err := e.Repay(created.State, RepayCommand{PurchaseID: id, Method: Cash, Currency: USD, Amount: d("40")}, testPC, richBalances())
	require.NoError(t, err)
	assert.Equal(t, string(Partial), partial.Purchase.PaymentStatus)
	assertDec(t, "60", partial.Debt.Remaining)

	paid, err := e.Repay(partial.State, RepayCommand{PurchaseID: id, Method: Cash, Currency: USD, Amount: d("60")}, testPC, richBalances())
	require.NoError(t, err)
	assert.Equal(t, string(Paid), paid.Purchase.PaymentStatus)
	assertDec(t, "100", paid.Purchase.AmountPaidUSD)
	assert.Len(t, paid.State.Transactions, 2)

	_, err = e.Repay(paid.State, RepayCommand{PurchaseID: id, Method: Cash, Currency: USD, Amount: d("0.01")}, testPC, richBalances())
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, string(Paid), paid.State.Purchases[0].PaymentStatus)
}

func TestRepay_WithinToleranceAccepted(t *testing.T) {
	e := testEngine()
	created := usdDebtPurchase(t, e, State{}, "1", "100")

	res, err := e.Repay(created.State, RepayCommand{PurchaseID: created.Purchase.ID, Method: Cash, Currency: USD, Amount: d("100.05")}, testPC, richBalances())
	require.NoError(t, err)
	assert.Equal(t, string(Paid), res.Purchase.PaymentStatus)
}

func TestRepay_UZSDocumentInUSDCash(t *testing.T) {
	e := testEngine()
	created, err := e.CreatePurchase(State{}, CreatePurchaseCommand{
		SupplierName: "Tashkent Metall", Type: Local, Currency: UZS,
		Lines:   []PurchaseLine{{ProductID: newID(), Quantity: d("1"), InvoicePrice: d("1120000")}},
		Payment: PaymentChoice{Method: Debt},
	}, testPC, Balances{})
	require.NoError(t, err)

	res, err := e.Repay(created.State, RepayCommand{PurchaseID: created.Purchase.ID, Method: Cash, Currency: USD, Amount: d("40")}, testPC, richBalances())
	require.NoError(t, err)

	assert.Equal(t, UZS, res.Debt.Currency)
	assertDec(t, "500000", res.Purchase.AmountPaid)
	assertDec(t, "40", res.Purchase.AmountPaidUSD)
	assertDec(t, "620000", res.Debt.Remaining)
	assert.Equal(t, string(Partial), res.Purchase.PaymentStatus)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "USD", res.Transactions[0].Currency)
}

func TestRepay_Mixed(t *testing.T) {
	e := testEngine()
	created := usdDebtPurchase(t, e, State{}, "10", "10")

	res, err := e.Repay(created.State, RepayCommand{
		PurchaseID:   created.Purchase.ID,
		Method:       Mixed,
		Distribution: Distribution{CashUSD: d("50"), CardUZS: d("625000")},
	}, testPC, Balances{})
	require.NoError(t, err)
	assert.Len(t, res.Transactions, 2)
	assert.Equal(t, string(Paid), res.Purchase.PaymentStatus)
}

func TestRepay_InsufficientFunds(t *testing.T) {
	e := testEngine()
	created := usdDebtPurchase(t, e, State{}, "10", "10")

	_, err := e.Repay(created.State, RepayCommand{PurchaseID: created.Purchase.ID, Method: Card, Amount: d("125000")}, testPC, Balances{CardUZS: d("1")})
	var funds *InsufficientFundsError
	assert.True(t, errors.As(err, &funds))
}

func TestRepay_RejectsBadInput(t *testing.T) {
	e := testEngine()
	created := usdDebtPurchase(t, e, State{}, "10", "10")
	var verr *ValidationError

	_, err := e.Repay(created.State, RepayCommand{PurchaseID: created.Purchase.ID, Method: Cash, Amount: d("0")}, testPC, richBalances())
	assert.True(t, errors.As(err, &verr))

	_, err = e.Repay(created.State, RepayCommand{PurchaseID: created.Purchase.ID, Method: Debt, Amount: d("1")}, testPC, richBalances())
	assert.True(t, errors.As(err, &verr))

	var nf *NotFoundError
	_, err = e.Repay(created.State, RepayCommand{PurchaseID: newID(), Method: Cash, Amount: d("1")}, testPC, richBalances())
	assert.True(t, errors.As(err, &nf))
}

func TestRepay_LegacyPurchase(t *testing.T) {
	e := testEngine()
	legacy := model.Purchase{
		ID: newID(), SupplierName: "Old supplier", Currency: "USD",
		TotalInvoiceAmount: d("100"), AmountPaid: d("30"), PaymentStatus: string(Partial),
	}
	state := State{Purchases: []model.Purchase{legacy}}

	res, err := e.Repay(state, RepayCommand{PurchaseID: legacy.ID, Method: Bank, Amount: d("875000")}, testPC, richBalances())
	require.NoError(t, err)

	assert.True(t, IsLegacy(res.Purchase))
	assertDec(t, "100", res.Purchase.AmountPaid)
	assert.Equal(t, string(Paid), res.Purchase.PaymentStatus)
}

// ── History maintenance ─────────────────────────────────────────────────────

func TestEditAndDeleteKeepStockConsistentWithHistory(t *testing.T) {
	e := testEngine()
	a, b := newID(), newID()

	first, err := e.CreatePurchase(State{}, CreatePurchaseCommand{
		SupplierName: "X", Type: Import, Currency: USD, Warehouse: model.WarehouseMain,
		Lines: []PurchaseLine{
			{ProductID: a, Quantity: d("10"), InvoicePrice: d("10")},
			{ProductID: b, Quantity: d("5"), InvoicePrice: d("20")},
		},
		Overheads: Overheads{Logistics: d("20")},
		Payment:   PaymentChoice{Method: Debt},
	}, testPC, Balances{})
	require.NoError(t, err)
	second, err := e.CreatePurchase(first.State, CreatePurchaseCommand{
		SupplierName: "Y", Type: Local, Currency: USD, Warehouse: model.WarehouseMain,
		Lines:   []PurchaseLine{{ProductID: a, Quantity: d("3"), InvoicePrice: d("9")}},
		Payment: PaymentChoice{Method: Debt},
	}, testPC, Balances{})
	require.NoError(t, err)

	edited, err := e.EditPurchaseLine(second.State, EditLineCommand{
		PurchaseID: first.Purchase.ID, Index: 0, Quantity: d("7"), InvoicePrice: d("10"),
	})
	require.NoError(t, err)
	assertDec(t, "-3", edited.StockDelta.QuantityChange())
	// 70 + 100 invoice value, 20 overhead reallocated.
	assertDec(t, "170", edited.Purchase.TotalInvoiceAmount)
	assertDec(t, "190", edited.Purchase.TotalLandedAmount)

	deleted, err := e.DeletePurchaseLine(edited.State, DeleteLineCommand{PurchaseID: first.Purchase.ID, Index: 1})
	require.NoError(t, err)
	require.NotNil(t, deleted.RemovedItem)
	assert.Equal(t, b, deleted.RemovedItem.ProductID)
	require.Len(t, deleted.Purchase.Items, 1)
	assert.Equal(t, 0, deleted.Purchase.Items[0].Position)
	assertDec(t, "90", deleted.Purchase.TotalLandedAmount)

	for _, id := range []uuid.UUID{a, b} {
		assert.True(t, stockOf(deleted.State.Products, id).Equal(receivedOf(deleted.State.Purchases, id)),
			"stock of %s must equal its purchase history", id)
	}
	assertDec(t, "10", stockOf(deleted.State.Products, a))
}

func TestDeletePurchaseLine_RejectsLastLine(t *testing.T) {
	e := testEngine()
	created := usdDebtPurchase(t, e, State{}, "1", "1")

	_, err := e.DeletePurchaseLine(created.State, DeleteLineCommand{PurchaseID: created.Purchase.ID, Index: 0})
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestEditPurchaseLine_Errors(t *testing.T) {
	e := testEngine()
	created := usdDebtPurchase(t, e, State{}, "1", "1")

	_, err := e.EditPurchaseLine(created.State, EditLineCommand{PurchaseID: created.Purchase.ID, Index: 3, Quantity: d("1"), InvoicePrice: d("1")})
	var nf *NotFoundError
	assert.True(t, errors.As(err, &nf))

	_, err = e.EditPurchaseLine(created.State, EditLineCommand{PurchaseID: created.Purchase.ID, Index: 0, Quantity: d("0"), InvoicePrice: d("1")})
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))

	legacy := model.Purchase{ID: newID(), TotalInvoiceAmount: d("5"), Items: []model.PurchaseItem{{ProductID: newID(), Quantity: d("1")}}}
	_, err = e.EditPurchaseLine(State{Purchases: []model.Purchase{legacy}}, EditLineCommand{PurchaseID: legacy.ID, Index: 0, Quantity: d("1"), InvoicePrice: d("1")})
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "purchase")
}

func TestEditPurchaseLine_ReducingTotalFlipsStatusToPaid(t *testing.T) {
	e := testEngine()
	created := usdDebtPurchase(t, e, State{}, "10", "10")
	repaid, err := e.Repay(created.State, RepayCommand{PurchaseID: created.Purchase.ID, Method: Cash, Currency: USD, Amount: d("50")}, testPC, richBalances())
	require.NoError(t, err)

	edited, err := e.EditPurchaseLine(repaid.State, EditLineCommand{PurchaseID: created.Purchase.ID, Index: 0, Quantity: d("5"), InvoicePrice: d("10")})
	require.NoError(t, err)
	assert.Equal(t, string(Paid), edited.Purchase.PaymentStatus)
}
