package ledger

import (
	"testing"
	"time"

	"github.com/Jassur2025/metallerp-sub000/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupplierDebts(t *testing.T) {
	jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := jan.AddDate(0, 1, 0)
	purchases := []model.Purchase{
		// legacy, USD
		{SupplierName: "Baosteel", Date: feb, TotalInvoiceAmount: d("100"), AmountPaid: d("40"), PaymentStatus: string(Partial)},
		// current, UZS document
		{SupplierName: "baosteel ", Date: jan, Currency: "UZS", ExchangeRate: d("12500"),
			TotalInvoiceAmount: d("80"), TotalInvoiceAmountUZS: d("1120000"), AmountPaid: d("0"), PaymentStatus: string(Unpaid)},
		{SupplierName: "Severstal", Date: jan, Currency: "USD", ExchangeRate: d("12500"),
			TotalInvoiceAmount: d("10"), TotalInvoiceAmountUZS: d("125000"), PaymentStatus: string(Unpaid)},
		{SupplierName: "Paid Co", Date: jan, Currency: "USD", ExchangeRate: d("12500"),
			TotalInvoiceAmount: d("10"), TotalInvoiceAmountUZS: d("125000"), AmountPaidUSD: d("10"), PaymentStatus: string(Paid)},
	}

	got := SupplierDebts(purchases)
	require.Len(t, got, 2)

	assert.Equal(t, "Baosteel", got[0].SupplierName)
	assert.Equal(t, 2, got[0].Purchases)
	// 60 legacy + 1 120 000 / 12 500 = 89.6
	assertDec(t, "149.6", got[0].RemainingUSD)
	assertDec(t, "40", got[0].PaidUSD)
	assertDec(t, "189.6", got[0].TotalUSD)
	assert.Equal(t, jan, got[0].OldestUnpaid)

	assert.Equal(t, "Severstal", got[1].SupplierName)
	assertDec(t, "10", got[1].RemainingUSD)
}
