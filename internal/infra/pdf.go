package infra

// pdf.go: purchase voucher for the accountant's paper file.
// A4 portrait with the supplier header, one row per invoice line with its
// landed cost, overheads for import purchases, and the payment/debt summary.

import (
	"fmt"
	"io"

	"github.com/Jassur2025/metallerp-sub000/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// VoucherDebt is the outstanding balance printed under the totals, expressed
// in the purchase's debt currency.
type VoucherDebt struct {
	Currency  string
	Total     decimal.Decimal
	Paid      decimal.Decimal
	Remaining decimal.Decimal
}

// WritePurchaseVoucher renders p as a PDF into w.
func WritePurchaseVoucher(w io.Writer, company string, p *model.Purchase, debt VoucherDebt) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.SetAutoPageBreak(true, 14)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(contentW, 8, tr(company), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, "Purchase voucher", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 9)
	info := [][2]string{
		{"Voucher", p.ID.String()},
		{"Date", p.Date.Format("02.01.2006")},
		{"Supplier", tr(p.SupplierName)},
		{"Type", p.ProcurementType},
		{"Warehouse", p.Warehouse},
		{"Currency", fmt.Sprintf("%s (rate %s UZS/USD)", p.Currency, p.ExchangeRate.StringFixed(2))},
	}
	for _, kv := range info {
		pdf.CellFormat(30, 5, kv[0]+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(contentW-30, 5, kv[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	// ── Lines ────────────────────────────────────────────────────────────────
	cols := []struct {
		title string
		width float64
		align string
	}{
		{"#", 8, "C"},
		{"Product", 58, "L"},
		{"Qty", 20, "R"},
		{"Price", 26, "R"},
		{"Overhead/u", 22, "R"},
		{"Landed/u", 22, "R"},
		{"Line USD", contentW - 156, "R"},
	}
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range cols {
		pdf.CellFormat(c.width, 6, c.title, "1", 0, c.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, it := range p.Items {
		name := it.ProductName
		if it.Dimensions != "" {
			name += " " + it.Dimensions
		}
		if len(name) > 38 {
			name = name[:37] + "."
		}
		cells := []string{
			fmt.Sprint(it.Position + 1),
			tr(name),
			it.Quantity.StringFixed(3) + " " + it.Unit,
			it.InvoicePrice.StringFixed(2),
			it.AllocatedOverhead.StringFixed(4),
			it.LandedCost.StringFixed(4),
			it.TotalLineCost.StringFixed(2),
		}
		for i, c := range cols {
			pdf.CellFormat(c.width, 5, cells[i], "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(3)

	// ── Totals ───────────────────────────────────────────────────────────────
	labelW, valueW := contentW-50, 50.0
	row := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 9)
		pdf.CellFormat(labelW, 5, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(valueW, 5, value, "", 1, "R", false, 0, "")
	}

	row("Invoice, net USD:", p.TotalInvoiceAmount.StringFixed(2), false)
	if p.ProcurementType == model.OriginImport {
		o := p.Overheads
		row("Logistics:", o.Logistics.StringFixed(2), false)
		row("Customs duty:", o.CustomsDuty.StringFixed(2), false)
		row("Import VAT:", o.ImportVat.StringFixed(2), false)
		row("Other:", o.Other.StringFixed(2), false)
		if p.ExpensedTaxes.IsPositive() {
			row("Expensed import taxes:", p.ExpensedTaxes.StringFixed(2), false)
		}
	}
	row("Landed total USD:", p.TotalLandedAmount.StringFixed(2), true)
	if p.TotalInvoiceAmountUZS.IsPositive() {
		row("Invoice UZS (incl. VAT):", p.TotalInvoiceAmountUZS.StringFixed(2), false)
		row("VAT UZS:", p.TotalVatAmountUZS.StringFixed(2), false)
	}
	pdf.Ln(2)

	// ── Payment ──────────────────────────────────────────────────────────────
	row("Payment method:", p.PaymentMethod, false)
	row("Status:", p.PaymentStatus, true)
	row("Paid "+debt.Currency+":", debt.Paid.StringFixed(2), false)
	row("Remaining "+debt.Currency+":", debt.Remaining.StringFixed(2), true)

	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 9)
	half := contentW / 2
	pdf.CellFormat(half, 5, "Received by: ______________", "", 0, "L", false, 0, "")
	pdf.CellFormat(half, 5, "Accountant: ______________", "", 1, "R", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: write voucher: %w", err)
	}
	return nil
}
