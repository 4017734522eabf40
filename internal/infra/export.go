package infra

import (
	"fmt"
	"io"

	"github.com/Jassur2025/metallerp-sub000/internal/model"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// PurchaseExportRow is one purchase plus the debt figures computed by the ledger.
type PurchaseExportRow struct {
	Purchase     model.Purchase
	DebtCurrency string
	PaidUSD      decimal.Decimal
	Remaining    decimal.Decimal
}

const (
	sheetPurchases = "Purchases"
	sheetItems     = "Items"
)

var (
	purchaseHeaders = []string{
		"ID", "Date", "Supplier", "Type", "Currency", "Warehouse",
		"Invoice USD", "Invoice UZS", "VAT UZS", "Landed USD",
		"Method", "Status", "Paid USD", "Debt currency", "Remaining", "Rate",
	}
	itemHeaders = []string{
		"Purchase ID", "#", "Product", "Dimensions", "Warehouse", "Qty", "Unit",
		"Invoice price", "Net price", "Overhead/u", "Landed/u", "Line USD", "Line UZS",
	}
)

// NewPurchasesWorkbook builds a two-sheet workbook: purchase headers and lines.
func NewPurchasesWorkbook(rows []PurchaseExportRow) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetPurchases); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(sheetItems); err != nil {
		return nil, err
	}
	if err := writeHeader(f, sheetPurchases, purchaseHeaders); err != nil {
		return nil, err
	}
	if err := writeHeader(f, sheetItems, itemHeaders); err != nil {
		return nil, err
	}

	itemRow := 2
	for i, r := range rows {
		p := r.Purchase
		values := []interface{}{
			p.ID.String(), p.Date.Format("2006-01-02"), p.SupplierName, p.ProcurementType,
			p.Currency, p.Warehouse,
			num(p.TotalInvoiceAmount), num(p.TotalInvoiceAmountUZS), num(p.TotalVatAmountUZS),
			num(p.TotalLandedAmount), p.PaymentMethod, p.PaymentStatus,
			num(r.PaidUSD), r.DebtCurrency, num(r.Remaining), num(p.ExchangeRate),
		}
		if err := writeRow(f, sheetPurchases, i+2, values); err != nil {
			return nil, err
		}
		for _, it := range p.Items {
			line := []interface{}{
				p.ID.String(), it.Position + 1, it.ProductName, it.Dimensions, it.Warehouse,
				num(it.Quantity), it.Unit, num(it.InvoicePrice), num(it.InvoicePriceWithoutVat),
				num(it.AllocatedOverhead), num(it.LandedCost), num(it.TotalLineCost), num(it.TotalLineCostUZS),
			}
			if err := writeRow(f, sheetItems, itemRow, line); err != nil {
				return nil, err
			}
			itemRow++
		}
	}
	return f, nil
}

// WriteWorkbook streams f to w and releases it.
func WriteWorkbook(w io.Writer, f *excelize.File) error {
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: write: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string) error {
	values := make([]interface{}, len(headers))
	for i, h := range headers {
		values[i] = h
	}
	if err := writeRow(f, sheet, 1, values); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func num(d decimal.Decimal) float64 { return d.InexactFloat64() }
