package ledger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocate_ImportExample(t *testing.T) {
	a, err := Allocate(AllocationInput{
		Type:     Import,
		Currency: USD,
		Lines: []CostLine{
			{Quantity: d("10"), InvoicePrice: d("10")},
			{Quantity: d("5"), InvoicePrice: d("20")},
		},
		Overheads: Overheads{Logistics: d("20")},
		Policy:    CapitalizeImportTaxes,
	}, testPC)
	require.NoError(t, err)

	assertDec(t, "10", a.Lines[0].AllocatedOverhead)
	assertDec(t, "10", a.Lines[1].AllocatedOverhead)
	assertDec(t, "11", a.Lines[0].LandedCost)
	assertDec(t, "22", a.Lines[1].LandedCost)
	assertDec(t, "200", a.TotalInvoiceValue)
	assertDec(t, "220", a.TotalLandedValue)
	assertDec(t, "20", a.TotalOverheads)
}

func TestAllocate_Conservation(t *testing.T) {
	overheads := Overheads{Logistics: d("137.13"), CustomsDuty: d("41.7"), ImportVat: d("88.09"), Other: d("3.33")}
	a, err := Allocate(AllocationInput{
		Type:     Import,
		Currency: USD,
		Lines: []CostLine{
			{Quantity: d("3"), InvoicePrice: d("7.77")},
			{Quantity: d("11"), InvoicePrice: d("0.93")},
			{Quantity: d("7"), InvoicePrice: d("123.45")},
		},
		Overheads: overheads,
	}, testPC)
	require.NoError(t, err)

	sum := d("0")
	for _, l := range a.Lines {
		sum = sum.Add(l.AllocatedOverhead)
	}
	total := overheads.Total()
	assertNear(t, total, sum, total.Mul(d("0.000001")))
	for _, l := range a.Lines {
		assertNear(t, l.Quantity.Mul(l.LandedCost), l.TotalLineCost, d("0.0000001"))
	}
}

func TestAllocate_LocalLandedCostIsInvoicePrice(t *testing.T) {
	a, err := Allocate(AllocationInput{
		Type:     Local,
		Currency: USD,
		Lines: []CostLine{
			{Quantity: d("1"), InvoicePrice: d("3.14")},
			{Quantity: d("250"), InvoicePrice: d("0.01")},
		},
		// Overheads on a local cart are ignored.
		Overheads: Overheads{Logistics: d("500")},
	}, testPC)
	require.NoError(t, err)
	for _, l := range a.Lines {
		assert.True(t, l.LandedCost.Equal(l.InvoicePrice))
		assert.True(t, l.AllocatedOverhead.IsZero())
	}
	assert.True(t, a.TotalOverheads.IsZero())
}

func TestAllocate_VATAwareOrderOfOperations(t *testing.T) {
	// 1 120 000 UZS gross at 12% VAT -> 1 000 000 net -> 80 USD at 12 500.
	a, err := Allocate(AllocationInput{
		Type:     Import,
		Currency: UZS,
		Lines: []CostLine{
			{Quantity: d("2"), InvoicePrice: d("1120000")},
			{Quantity: d("1"), InvoicePrice: d("2240000")},
		},
		Overheads: Overheads{Logistics: d("40")},
	}, testPC)
	require.NoError(t, err)

	assertDec(t, "1000000", a.Lines[0].InvoicePriceWithoutVat)
	assertDec(t, "120000", a.Lines[0].VatAmount)
	assertDec(t, "80", a.Lines[0].NetPriceUSD)
	assertDec(t, "160", a.Lines[1].NetPriceUSD)
	assertDec(t, "320", a.TotalInvoiceValue)
	// Equal line values share the overhead evenly.
	assertDec(t, "20", a.Lines[0].AllocatedOverhead)
	assertDec(t, "90", a.Lines[0].LandedCost)
	assertDec(t, "180", a.Lines[1].LandedCost)
	assertDec(t, "4480000", a.TotalInvoiceUZS)
	assertDec(t, "480000", a.TotalVatUZS)
	assertDec(t, "4000000", a.TotalWithoutVatUZS)
	assertDec(t, "2250000", a.Lines[0].TotalLineCostUZS)
}

func TestAllocate_ExpensePolicyKeepsTaxesOutOfCost(t *testing.T) {
	in := AllocationInput{
		Type:      Import,
		Currency:  USD,
		Lines:     []CostLine{{Quantity: d("10"), InvoicePrice: d("10")}},
		Overheads: Overheads{Logistics: d("10"), CustomsDuty: d("5"), ImportVat: d("15"), Other: d("0")},
	}

	in.Policy = CapitalizeImportTaxes
	capitalized, err := Allocate(in, testPC)
	require.NoError(t, err)
	assertDec(t, "13", capitalized.Lines[0].LandedCost)
	assertDec(t, "0", capitalized.ExpensedTaxes)

	in.Policy = ExpenseImportTaxes
	expensed, err := Allocate(in, testPC)
	require.NoError(t, err)
	assertDec(t, "11", expensed.Lines[0].LandedCost)
	assertDec(t, "20", expensed.ExpensedTaxes)
	assertDec(t, "10", expensed.TotalOverheads)
}

func TestAllocate_Validation(t *testing.T) {
	_, err := Allocate(AllocationInput{
		Type:     Import,
		Currency: USD,
		Lines: []CostLine{
			{Quantity: d("0"), InvoicePrice: d("1")},
			{Quantity: d("1"), InvoicePrice: d("-1")},
		},
		Overheads: Overheads{Other: d("-5")},
	}, testPC)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "lines[0].quantity")
	assert.Contains(t, verr.Fields, "lines[1].invoice_price")
	assert.Contains(t, verr.Fields, "overheads.other")
}

func TestAllocate_BadRateIsConfigurationError(t *testing.T) {
	_, err := Allocate(AllocationInput{
		Type:     Local,
		Currency: UZS,
		Lines:    []CostLine{{Quantity: d("1"), InvoicePrice: d("1")}},
	}, PricingContext{ExchangeRate: d("0"), VATRate: d("0.12")})

	var cfg *ConfigurationError
	assert.True(t, errors.As(err, &cfg))
}
