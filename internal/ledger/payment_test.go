package ledger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tol := d("0.1")
	assert.Equal(t, Paid, StatusFor(d("99.95"), d("100"), tol))
	assert.Equal(t, Paid, StatusFor(d("99.9"), d("100"), tol))
	assert.Equal(t, Partial, StatusFor(d("99.89"), d("100"), tol))
	assert.Equal(t, Unpaid, StatusFor(d("0"), d("100"), tol))
}

func TestResolvePayment_CashUSD(t *testing.T) {
	due := Money{Amount: d("25"), Currency: USD}
	res, err := ResolvePayment(due, PaymentChoice{Method: Cash, Currency: USD}, richBalances(), testPC, DefaultTolerances())
	require.NoError(t, err)

	require.Len(t, res.Legs, 1)
	assert.Equal(t, Cash, res.Legs[0].Method)
	assert.Equal(t, USD, res.Legs[0].Currency)
	assertDec(t, "25", res.Legs[0].Amount)
	assertDec(t, "25", res.PaidUSD)
	assertDec(t, "312500", res.PaidUZS)
	assert.Equal(t, Paid, res.Status)
}

func TestResolvePayment_BankAndCardForceUZS(t *testing.T) {
	due := Money{Amount: d("10"), Currency: USD}
	for _, m := range []PaymentMethod{Bank, Card} {
		res, err := ResolvePayment(due, PaymentChoice{Method: m, Currency: USD}, richBalances(), testPC, DefaultTolerances())
		require.NoError(t, err)
		assert.Equal(t, UZS, res.Currency)
		require.Len(t, res.Legs, 1)
		assert.Equal(t, UZS, res.Legs[0].Currency)
		assertDec(t, "125000", res.Legs[0].Amount)
	}
}

func TestResolvePayment_InsufficientFunds(t *testing.T) {
	due := Money{Amount: d("1000000"), Currency: UZS}
	balances := Balances{CashUZS: d("999999.99")}

	_, err := ResolvePayment(due, PaymentChoice{Method: Cash, Currency: UZS}, balances, testPC, DefaultTolerances())

	var funds *InsufficientFundsError
	require.True(t, errors.As(err, &funds))
	assert.Equal(t, Cash, funds.Method)
	assert.Equal(t, UZS, funds.Currency)
	assertDec(t, "1000000", funds.Required)
	assertDec(t, "999999.99", funds.Available)
}

func TestResolvePayment_Debt(t *testing.T) {
	due := Money{Amount: d("500"), Currency: USD}
	res, err := ResolvePayment(due, PaymentChoice{Method: Debt}, Balances{}, testPC, DefaultTolerances())
	require.NoError(t, err)
	assert.Empty(t, res.Legs)
	assert.True(t, res.PaidUZS.IsZero())
	assert.Equal(t, Unpaid, res.Status)
}

func TestResolvePayment_MixedSumsLegs(t *testing.T) {
	due := Money{Amount: d("1000000"), Currency: UZS}
	dist := Distribution{CashUSD: d("20"), CashUZS: d("250000"), CardUZS: d("100000"), BankUZS: d("0")}

	// Mixed legs are not checked against balances.
	res, err := ResolvePayment(due, PaymentChoice{Method: Mixed, Distribution: dist}, Balances{}, testPC, DefaultTolerances())
	require.NoError(t, err)

	require.Len(t, res.Legs, 3)
	sum := d("0")
	for _, l := range res.Legs {
		assert.True(t, l.Amount.IsPositive())
		sum = sum.Add(testPC.Convert(l.Amount, l.Currency, UZS))
	}
	assertDec(t, "600000", sum)
	assertDec(t, "600000", res.PaidUZS)
	assertDec(t, "48", res.PaidUSD)
	assert.Equal(t, Partial, res.Status)
}

func TestResolvePayment_MixedToleranceBoundary(t *testing.T) {
	due := Money{Amount: d("1000"), Currency: UZS}
	dist := Distribution{CashUZS: d("999.95")}
	res, err := ResolvePayment(due, PaymentChoice{Method: Mixed, Distribution: dist}, Balances{}, testPC, DefaultTolerances())
	require.NoError(t, err)
	assert.Equal(t, Paid, res.Status)
}

func TestResolvePayment_MixedRejectsOverpaymentAndNegatives(t *testing.T) {
	due := Money{Amount: d("1000"), Currency: UZS}

	_, err := ResolvePayment(due, PaymentChoice{Method: Mixed, Distribution: Distribution{BankUZS: d("1000.2")}}, Balances{}, testPC, DefaultTolerances())
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "distribution")

	_, err = ResolvePayment(due, PaymentChoice{Method: Mixed, Distribution: Distribution{CashUZS: d("-1")}}, Balances{}, testPC, DefaultTolerances())
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "distribution.cash_uzs")
}

func TestResolvePayment_UnknownMethod(t *testing.T) {
	_, err := ResolvePayment(Money{Amount: d("1"), Currency: USD}, PaymentChoice{Method: "barter"}, Balances{}, testPC, DefaultTolerances())
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}
