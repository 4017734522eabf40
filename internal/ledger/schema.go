package ledger

import (
	"github.com/Jassur2025/metallerp-sub000/internal/model"

	"github.com/shopspring/decimal"
)

// PurchaseSchema is the currency layout a purchase row was written with.
// It is either LegacySchema or CurrentSchema; SchemaOf picks it from the row.
type PurchaseSchema interface {
	// DebtCurrency is the unit debt and repayments are tracked in.
	DebtCurrency() Currency
	// Total and Paid are expressed in DebtCurrency.
	Total() decimal.Decimal
	Paid() decimal.Decimal
	PaidUSD() decimal.Decimal

	schema()
}

// LegacySchema rows predate UZS tracking: every amount is USD and
// AmountPaid holds USD.
type LegacySchema struct {
	TotalUSD      decimal.Decimal
	AmountPaidUSD decimal.Decimal
}

func (LegacySchema) schema()                    {}
func (LegacySchema) DebtCurrency() Currency     { return USD }
func (s LegacySchema) Total() decimal.Decimal   { return s.TotalUSD }
func (s LegacySchema) Paid() decimal.Decimal    { return s.AmountPaidUSD }
func (s LegacySchema) PaidUSD() decimal.Decimal { return s.AmountPaidUSD }

// CurrentSchema rows carry AmountPaid in UZS and AmountPaidUSD separately.
// Debt is tracked in the document currency so that a purchase is settled in
// the unit it was invoiced in.
type CurrentSchema struct {
	Document      Currency
	TotalUSD      decimal.Decimal
	TotalUZS      decimal.Decimal
	AmountPaidUZS decimal.Decimal
	AmountPaidUSD decimal.Decimal
}

func (CurrentSchema) schema()                    {}
func (s CurrentSchema) DebtCurrency() Currency   { return s.Document }
func (s CurrentSchema) PaidUSD() decimal.Decimal { return s.AmountPaidUSD }

func (s CurrentSchema) Total() decimal.Decimal {
	if s.Document == UZS {
		return s.TotalUZS
	}
	return s.TotalUSD
}

func (s CurrentSchema) Paid() decimal.Decimal {
	if s.Document == UZS {
		return s.AmountPaidUZS
	}
	return s.AmountPaidUSD
}

// SchemaOf discriminates on TotalInvoiceAmountUZS: rows without it are legacy.
func SchemaOf(p model.Purchase) PurchaseSchema {
	if p.TotalInvoiceAmountUZS.IsZero() {
		return LegacySchema{TotalUSD: p.TotalInvoiceAmount, AmountPaidUSD: p.AmountPaid}
	}
	doc := Currency(p.Currency)
	if doc != UZS {
		doc = USD
	}
	paidUSD := p.AmountPaidUSD
	// Early current-schema rows only filled AmountPaid.
	if paidUSD.IsZero() && p.AmountPaid.IsPositive() && p.ExchangeRate.IsPositive() {
		paidUSD = p.AmountPaid.Div(p.ExchangeRate)
	}
	return CurrentSchema{
		Document:      doc,
		TotalUSD:      p.TotalInvoiceAmount,
		TotalUZS:      p.TotalInvoiceAmountUZS,
		AmountPaidUZS: p.AmountPaid,
		AmountPaidUSD: paidUSD,
	}
}

func IsLegacy(p model.Purchase) bool {
	_, ok := SchemaOf(p).(LegacySchema)
	return ok
}

// NormalizedPaidUSD is how much of the purchase has been paid, in USD,
// whatever schema the row was written with.
func NormalizedPaidUSD(p model.Purchase) decimal.Decimal {
	return SchemaOf(p).PaidUSD()
}

// DebtView is the outstanding balance of one purchase in its debt currency.
type DebtView struct {
	Currency  Currency
	Total     decimal.Decimal
	Paid      decimal.Decimal
	Remaining decimal.Decimal
}

func DebtViewOf(p model.Purchase) DebtView {
	s := SchemaOf(p)
	v := DebtView{Currency: s.DebtCurrency(), Total: s.Total(), Paid: s.Paid()}
	v.Remaining = v.Total.Sub(v.Paid)
	if v.Remaining.IsNegative() {
		v.Remaining = decimal.Zero
	}
	return v
}

// RemainingDebtUSD converts the outstanding balance with the rate snapshot of
// the purchase, so the figure does not drift with today's rate.
func RemainingDebtUSD(p model.Purchase) decimal.Decimal {
	v := DebtViewOf(p)
	if v.Currency == USD || v.Remaining.IsZero() {
		return v.Remaining
	}
	if !p.ExchangeRate.IsPositive() {
		return decimal.Zero
	}
	return v.Remaining.Div(p.ExchangeRate)
}

// MigrateLegacy rewrites a legacy row into the current schema. The purchase's
// own rate snapshot is used when present, otherwise rate. Current rows are
// rejected so the migration cannot run twice.
func MigrateLegacy(p model.Purchase, rate decimal.Decimal) (model.Purchase, error) {
	if !IsLegacy(p) {
		return model.Purchase{}, invalid("purchase", "already uses the current schema")
	}
	if p.ExchangeRate.IsPositive() {
		rate = p.ExchangeRate
	}
	if !rate.IsPositive() {
		return model.Purchase{}, &ConfigurationError{Setting: "exchange_rate", Reason: "must be greater than zero"}
	}
	if !p.TotalInvoiceAmount.IsPositive() {
		return model.Purchase{}, invalid("total_invoice_amount", "legacy purchase has no invoice total to migrate")
	}

	out := p
	out.Items = append([]model.PurchaseItem(nil), p.Items...)
	out.Currency = string(USD)
	out.ExchangeRate = rate
	out.TotalInvoiceAmountUZS = p.TotalInvoiceAmount.Mul(rate)
	out.TotalWithoutVatUZS = out.TotalInvoiceAmountUZS
	out.TotalVatAmountUZS = decimal.Zero
	out.AmountPaidUSD = p.AmountPaid
	out.AmountPaid = p.AmountPaid.Mul(rate)
	if out.PaymentCurrency == "" {
		out.PaymentCurrency = string(USD)
	}
	if out.ImportTaxPolicy == "" {
		out.ImportTaxPolicy = string(CapitalizeImportTaxes)
	}
	for i := range out.Items {
		it := &out.Items[i]
		if it.InvoicePriceWithoutVat.IsZero() {
			it.InvoicePriceWithoutVat = it.InvoicePrice
		}
		if it.TotalLineCostUZS.IsZero() {
			it.TotalLineCostUZS = it.TotalLineCost.Mul(rate)
		}
	}
	return out, nil
}
