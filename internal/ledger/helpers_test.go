package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "want %s, got %s", want, got.String())
}

func assertNear(t *testing.T, want, got, tol decimal.Decimal) {
	t.Helper()
	assert.True(t, want.Sub(got).Abs().LessThanOrEqual(tol), "want %s ± %s, got %s", want, tol, got)
}

var testPC = PricingContext{ExchangeRate: d("12500"), VATRate: d("0.12")}

func testEngine() *Engine {
	e := NewEngine(DefaultTolerances(), CapitalizeImportTaxes)
	e.Now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
	return e
}

func richBalances() Balances {
	return Balances{
		CashUSD: d("1000000"),
		CashUZS: d("100000000000"),
		CardUZS: d("100000000000"),
		BankUZS: d("100000000000"),
	}
}

func newID() uuid.UUID { return uuid.New() }
