// Package ledger holds the procurement costing and payment reconciliation
// rules: landed-cost allocation, weighted-average stock costing, payment
// distribution and the purchase/debt ledger built on top of them.
//
// Every function here is deterministic and free of I/O. Operations take the
// current State plus a command and return the new State together with the
// records the caller has to persist.
package ledger

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

type Currency string

const (
	USD Currency = "USD"
	UZS Currency = "UZS"
)

// ParseCurrency accepts "USD" / "UZS" in any case.
func ParseCurrency(s string) (Currency, error) {
	switch Currency(strings.ToUpper(strings.TrimSpace(s))) {
	case USD:
		return USD, nil
	case UZS:
		return UZS, nil
	}
	return "", fmt.Errorf("unknown currency %q", s)
}

// Money is an amount tagged with its currency.
type Money struct {
	Amount   decimal.Decimal
	Currency Currency
}

// PricingContext carries the rates every allocation and payment call needs.
// ExchangeRate is UZS per 1 USD; VATRate is a fraction (0.12 = 12%).
type PricingContext struct {
	ExchangeRate decimal.Decimal
	VATRate      decimal.Decimal
}

var one = decimal.NewFromInt(1)

// Validate rejects rates that would produce division by zero or nonsense totals.
func (pc PricingContext) Validate() error {
	if pc.ExchangeRate.Sign() <= 0 {
		return &ConfigurationError{Setting: "exchange_rate", Reason: "must be greater than zero"}
	}
	if pc.VATRate.Sign() < 0 || pc.VATRate.GreaterThanOrEqual(one) {
		return &ConfigurationError{Setting: "vat_rate", Reason: "must be in [0, 1)"}
	}
	return nil
}

func (pc PricingContext) ToUZS(usd decimal.Decimal) decimal.Decimal {
	return usd.Mul(pc.ExchangeRate)
}

func (pc PricingContext) ToUSD(uzs decimal.Decimal) decimal.Decimal {
	return uzs.Div(pc.ExchangeRate)
}

// Convert moves amount between currencies. Same-currency conversion is the identity.
func (pc PricingContext) Convert(amount decimal.Decimal, from, to Currency) decimal.Decimal {
	if from == to {
		return amount
	}
	if from == USD {
		return pc.ToUZS(amount)
	}
	return pc.ToUSD(amount)
}

// SplitVAT splits a VAT-inclusive price into net and VAT parts.
func SplitVAT(gross, rate decimal.Decimal) (net, vat decimal.Decimal) {
	if rate.IsZero() {
		return gross, decimal.Zero
	}
	net = gross.Div(one.Add(rate))
	return net, gross.Sub(net)
}

// FromFloat converts a float read from the spreadsheet or the environment.
// NaN and infinities are configuration errors, not numbers.
func FromFloat(setting string, v float64) (decimal.Decimal, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero, &ConfigurationError{Setting: setting, Reason: "not a finite number"}
	}
	return decimal.NewFromFloat(v), nil
}

// Tolerances are the "effectively paid" margins, one per currency unit.
type Tolerances struct {
	USD decimal.Decimal
	UZS decimal.Decimal
}

func DefaultTolerances() Tolerances {
	return Tolerances{USD: decimal.NewFromFloat(0.1), UZS: decimal.NewFromFloat(0.1)}
}

func (t Tolerances) For(c Currency) decimal.Decimal {
	if c == UZS {
		return t.UZS
	}
	return t.USD
}
