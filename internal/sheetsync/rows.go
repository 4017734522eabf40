// Package sheetsync mirrors database rows into the business spreadsheet.
//
// Each tab has a fixed header. Rows are matched on the key columns and
// overwritten in place (last write wins); unknown keys are appended.
package sheetsync

import (
	"encoding/json"
	"time"

	"github.com/Jassur2025/metallerp-sub000/internal/ledger"
	"github.com/Jassur2025/metallerp-sub000/internal/model"

	"github.com/shopspring/decimal"
)

// Tab describes one sheet. The first KeyColumns cells identify a row.
type Tab struct {
	Name       string
	Header     []string
	KeyColumns int
}

var (
	ProductsTab = Tab{
		Name: "Products",
		Header: []string{
			"id", "warehouse", "name", "type", "dimensions", "steel_grade", "quantity",
			"unit", "price_per_unit", "cost_price", "min_stock_level", "origin", "updated_at",
		},
		KeyColumns: 2,
	}
	PurchasesTab = Tab{
		Name: "Purchases",
		Header: []string{
			"id", "date", "supplier_name", "procurement_type", "currency", "warehouse",
			"total_invoice_amount", "total_invoice_amount_uzs", "total_vat_amount_uzs",
			"total_without_vat_uzs", "total_landed_amount", "logistics", "customs_duty",
			"import_vat", "other", "payment_method", "payment_currency", "payment_status",
			"amount_paid", "amount_paid_usd", "exchange_rate", "debt_currency", "remaining_debt",
			"items", "updated_at",
		},
		KeyColumns: 1,
	}
	TransactionsTab = Tab{
		Name: "Transactions",
		Header: []string{
			"id", "date", "type", "amount", "currency", "exchange_rate", "method",
			"description", "related_id",
		},
		KeyColumns: 1,
	}
)

// money cells are written as strings so the sheet never rounds them
func money(d decimal.Decimal) string { return d.String() }

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func ProductRow(p model.Product) []interface{} {
	return []interface{}{
		p.ID.String(), p.Warehouse, p.Name, p.Type, p.Dimensions, p.SteelGrade,
		money(p.Quantity), p.Unit, money(p.PricePerUnit), money(p.CostPrice),
		money(p.MinStockLevel), p.Origin, stamp(p.UpdatedAt),
	}
}

// itemCell is the compact JSON stored in the items column.
type itemCell struct {
	ProductID    string `json:"productId"`
	Name         string `json:"name"`
	Warehouse    string `json:"warehouse,omitempty"`
	Quantity     string `json:"quantity"`
	Unit         string `json:"unit"`
	InvoicePrice string `json:"invoicePrice"`
	LandedCost   string `json:"landedCost"`
	TotalCost    string `json:"totalLineCost"`
}

func PurchaseRow(p model.Purchase) ([]interface{}, error) {
	items := make([]itemCell, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, itemCell{
			ProductID:    it.ProductID.String(),
			Name:         it.ProductName,
			Warehouse:    it.Warehouse,
			Quantity:     money(it.Quantity),
			Unit:         it.Unit,
			InvoicePrice: money(it.InvoicePrice),
			LandedCost:   money(it.LandedCost),
			TotalCost:    money(it.TotalLineCost),
		})
	}
	rawItems, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	debt := ledger.DebtViewOf(p)
	o := p.Overheads
	return []interface{}{
		p.ID.String(), p.Date.Format("2006-01-02"), p.SupplierName, p.ProcurementType,
		p.Currency, p.Warehouse,
		money(p.TotalInvoiceAmount), money(p.TotalInvoiceAmountUZS), money(p.TotalVatAmountUZS),
		money(p.TotalWithoutVatUZS), money(p.TotalLandedAmount),
		money(o.Logistics), money(o.CustomsDuty), money(o.ImportVat), money(o.Other),
		p.PaymentMethod, p.PaymentCurrency, p.PaymentStatus,
		money(p.AmountPaid), money(ledger.NormalizedPaidUSD(p)), money(p.ExchangeRate),
		string(debt.Currency), money(debt.Remaining),
		string(rawItems), stamp(p.UpdatedAt),
	}, nil
}

func TransactionRow(t model.Transaction) []interface{} {
	related := ""
	if t.RelatedID != nil {
		related = t.RelatedID.String()
	}
	return []interface{}{
		t.ID.String(), t.Date.Format("2006-01-02"), t.Type, money(t.Amount), t.Currency,
		money(t.ExchangeRate), t.Method, t.Description, related,
	}
}
