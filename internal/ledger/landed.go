package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type ProcurementType string

const (
	Local  ProcurementType = "local"
	Import ProcurementType = "import"
)

func ParseProcurementType(s string) (ProcurementType, error) {
	switch ProcurementType(s) {
	case Local, Import:
		return ProcurementType(s), nil
	}
	return "", fmt.Errorf("unknown procurement type %q", s)
}

// ImportTaxPolicy decides whether customs duty and import VAT enter the cost
// base (capitalize) or are booked as a separate tax expense (expense).
type ImportTaxPolicy string

const (
	CapitalizeImportTaxes ImportTaxPolicy = "capitalize"
	ExpenseImportTaxes    ImportTaxPolicy = "expense"
)

func ParseImportTaxPolicy(s string) (ImportTaxPolicy, error) {
	switch ImportTaxPolicy(s) {
	case CapitalizeImportTaxes, ExpenseImportTaxes:
		return ImportTaxPolicy(s), nil
	case "":
		return CapitalizeImportTaxes, nil
	}
	return "", &ConfigurationError{Setting: "import_tax_policy", Reason: fmt.Sprintf("unknown value %q", s)}
}

// Overheads are import costs in USD.
type Overheads struct {
	Logistics   decimal.Decimal
	CustomsDuty decimal.Decimal
	ImportVat   decimal.Decimal
	Other       decimal.Decimal
}

func (o Overheads) Total() decimal.Decimal {
	return o.Logistics.Add(o.CustomsDuty).Add(o.ImportVat).Add(o.Other)
}

// Allocatable is the part of the overheads spread over the lines.
func (o Overheads) Allocatable(policy ImportTaxPolicy) decimal.Decimal {
	if policy == ExpenseImportTaxes {
		return o.Logistics.Add(o.Other)
	}
	return o.Total()
}

// Expensed is the part kept out of the cost base.
func (o Overheads) Expensed(policy ImportTaxPolicy) decimal.Decimal {
	if policy == ExpenseImportTaxes {
		return o.CustomsDuty.Add(o.ImportVat)
	}
	return decimal.Zero
}

func (o Overheads) validate(errs fieldErrors) {
	for field, v := range map[string]decimal.Decimal{
		"overheads.logistics":    o.Logistics,
		"overheads.customs_duty": o.CustomsDuty,
		"overheads.import_vat":   o.ImportVat,
		"overheads.other":        o.Other,
	} {
		if v.IsNegative() {
			errs.add(field, "must not be negative")
		}
	}
}

// CostLine is the minimal input of the allocator: how many, at what price.
type CostLine struct {
	Quantity     decimal.Decimal
	InvoicePrice decimal.Decimal
}

// AllocationInput describes a cart. InvoicePrice is in Currency; UZS prices
// are VAT-inclusive, USD prices are net.
type AllocationInput struct {
	Type      ProcurementType
	Currency  Currency
	Lines     []CostLine
	Overheads Overheads
	Policy    ImportTaxPolicy
}

// AllocatedLine is a CostLine after VAT extraction, conversion and overhead
// allocation. Per-unit VAT and net price are in the document currency; all
// other money fields are USD except TotalLineCostUZS.
type AllocatedLine struct {
	Quantity               decimal.Decimal
	InvoicePrice           decimal.Decimal
	InvoicePriceWithoutVat decimal.Decimal
	VatAmount              decimal.Decimal
	NetPriceUSD            decimal.Decimal
	AllocatedOverhead      decimal.Decimal
	LandedCost             decimal.Decimal
	TotalLineCost          decimal.Decimal
	TotalLineCostUZS       decimal.Decimal
}

type Allocation struct {
	Lines              []AllocatedLine
	TotalInvoiceValue  decimal.Decimal // USD, VAT-exclusive
	TotalOverheads     decimal.Decimal // USD actually spread over lines
	ExpensedTaxes      decimal.Decimal // USD kept out of the cost base
	TotalLandedValue   decimal.Decimal // USD
	TotalInvoiceUZS    decimal.Decimal // VAT-inclusive
	TotalVatUZS        decimal.Decimal
	TotalWithoutVatUZS decimal.Decimal
}

// Allocate computes landed costs for a cart.
//
// Order of operations for UZS carts: extract VAT, convert the net price to
// USD, then allocate overheads on the USD net values. Local carts carry no
// overhead and their landed cost is the (net, USD) invoice price. There is no
// penny correction: the allocated overheads add up to the total only within
// decimal division precision.
func Allocate(in AllocationInput, pc PricingContext) (Allocation, error) {
	if err := pc.Validate(); err != nil {
		return Allocation{}, err
	}
	errs := fieldErrors{}
	if in.Type != Local && in.Type != Import {
		errs.add("procurement_type", "must be local or import")
	}
	if in.Currency != USD && in.Currency != UZS {
		errs.add("currency", "must be USD or UZS")
	}
	for i, l := range in.Lines {
		if !l.Quantity.IsPositive() {
			errs.add(fmt.Sprintf("lines[%d].quantity", i), "must be greater than zero")
		}
		if !l.InvoicePrice.IsPositive() {
			errs.add(fmt.Sprintf("lines[%d].invoice_price", i), "must be greater than zero")
		}
	}
	if in.Type == Import {
		in.Overheads.validate(errs)
	}
	if err := errs.err(); err != nil {
		return Allocation{}, err
	}

	out := Allocation{Lines: make([]AllocatedLine, len(in.Lines))}
	for i, l := range in.Lines {
		al := AllocatedLine{Quantity: l.Quantity, InvoicePrice: l.InvoicePrice}
		if in.Currency == UZS {
			al.InvoicePriceWithoutVat, al.VatAmount = SplitVAT(l.InvoicePrice, pc.VATRate)
			al.NetPriceUSD = pc.ToUSD(al.InvoicePriceWithoutVat)
			out.TotalInvoiceUZS = out.TotalInvoiceUZS.Add(l.Quantity.Mul(l.InvoicePrice))
			out.TotalVatUZS = out.TotalVatUZS.Add(l.Quantity.Mul(al.VatAmount))
			out.TotalWithoutVatUZS = out.TotalWithoutVatUZS.Add(l.Quantity.Mul(al.InvoicePriceWithoutVat))
		} else {
			al.InvoicePriceWithoutVat = l.InvoicePrice
			al.NetPriceUSD = l.InvoicePrice
		}
		out.TotalInvoiceValue = out.TotalInvoiceValue.Add(l.Quantity.Mul(al.NetPriceUSD))
		out.Lines[i] = al
	}
	if in.Currency == USD {
		out.TotalInvoiceUZS = pc.ToUZS(out.TotalInvoiceValue)
		out.TotalWithoutVatUZS = out.TotalInvoiceUZS
	}

	overhead := decimal.Zero
	if in.Type == Import && out.TotalInvoiceValue.IsPositive() {
		overhead = in.Overheads.Allocatable(in.Policy)
		out.ExpensedTaxes = in.Overheads.Expensed(in.Policy)
	}

	for i := range out.Lines {
		al := &out.Lines[i]
		al.LandedCost = al.NetPriceUSD
		if overhead.IsPositive() {
			lineValue := al.Quantity.Mul(al.NetPriceUSD)
			al.AllocatedOverhead = overhead.Mul(lineValue).Div(out.TotalInvoiceValue)
			al.LandedCost = al.NetPriceUSD.Add(al.AllocatedOverhead.Div(al.Quantity))
		}
		al.TotalLineCost = al.Quantity.Mul(al.LandedCost)
		al.TotalLineCostUZS = pc.ToUZS(al.TotalLineCost)
		out.TotalOverheads = out.TotalOverheads.Add(al.AllocatedOverhead)
		out.TotalLandedValue = out.TotalLandedValue.Add(al.TotalLineCost)
	}
	return out, nil
}
