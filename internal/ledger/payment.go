package ledger

import (
	"fmt"

	"github.com/Jassur2025/metallerp-sub000/internal/model"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	Cash  PaymentMethod = model.PaymentCash
	Bank  PaymentMethod = model.PaymentBank
	Card  PaymentMethod = model.PaymentCard
	Debt  PaymentMethod = model.PaymentDebt
	Mixed PaymentMethod = model.PaymentMixed
)

type PaymentStatus string

const (
	Unpaid  PaymentStatus = model.StatusUnpaid
	Partial PaymentStatus = model.StatusPartial
	Paid    PaymentStatus = model.StatusPaid
)

func (s PaymentStatus) rank() int {
	switch s {
	case Paid:
		return 2
	case Partial:
		return 1
	}
	return 0
}

// StatusFor classifies paid against total: paid once within tol of the total,
// partial while something is paid, unpaid otherwise.
func StatusFor(paid, total, tol decimal.Decimal) PaymentStatus {
	switch {
	case paid.GreaterThanOrEqual(total.Sub(tol)):
		return Paid
	case paid.IsPositive():
		return Partial
	default:
		return Unpaid
	}
}

// Distribution splits one payment across tills and accounts.
type Distribution struct {
	CashUSD decimal.Decimal
	CashUZS decimal.Decimal
	CardUZS decimal.Decimal
	BankUZS decimal.Decimal
}

// TotalUZS is the distribution converted to UZS.
func (d Distribution) TotalUZS(pc PricingContext) decimal.Decimal {
	return pc.ToUZS(d.CashUSD).Add(d.CashUZS).Add(d.CardUZS).Add(d.BankUZS)
}

func (d Distribution) legs() []PaymentLeg {
	all := []PaymentLeg{
		{Method: Cash, Currency: USD, Amount: d.CashUSD},
		{Method: Cash, Currency: UZS, Amount: d.CashUZS},
		{Method: Card, Currency: UZS, Amount: d.CardUZS},
		{Method: Bank, Currency: UZS, Amount: d.BankUZS},
	}
	out := all[:0]
	for _, l := range all {
		if !l.Amount.IsZero() {
			out = append(out, l)
		}
	}
	return out
}

func (d Distribution) validate(errs fieldErrors) {
	for field, v := range map[string]decimal.Decimal{
		"distribution.cash_usd": d.CashUSD,
		"distribution.cash_uzs": d.CashUZS,
		"distribution.card_uzs": d.CardUZS,
		"distribution.bank_uzs": d.BankUZS,
	} {
		if v.IsNegative() {
			errs.add(field, "must not be negative")
		}
	}
}

// PaymentChoice is what the user picked at checkout. Currency only matters
// for cash; bank and card always settle in UZS.
type PaymentChoice struct {
	Method       PaymentMethod
	Currency     Currency
	Distribution Distribution
}

// Balances is a read-only snapshot of tills and accounts.
type Balances struct {
	CashUSD decimal.Decimal
	CashUZS decimal.Decimal
	CardUZS decimal.Decimal
	BankUZS decimal.Decimal
}

func (b Balances) Available(m PaymentMethod, c Currency) decimal.Decimal {
	switch {
	case m == Cash && c == USD:
		return b.CashUSD
	case m == Cash:
		return b.CashUZS
	case m == Card:
		return b.CardUZS
	case m == Bank:
		return b.BankUZS
	}
	return decimal.Zero
}

// PaymentLeg becomes exactly one Transaction.
type PaymentLeg struct {
	Method   PaymentMethod
	Currency Currency
	Amount   decimal.Decimal
}

// Resolution is the outcome of resolving a payment against an amount due.
type Resolution struct {
	Method   PaymentMethod
	Currency Currency
	Due      Money
	PaidUZS  decimal.Decimal
	PaidUSD  decimal.Decimal
	Status   PaymentStatus
	Legs     []PaymentLeg
}

// ResolvePayment decides how much of due is paid now, in which legs, and
// what stays as debt. Single-method payments must be covered by the matching
// balance; mixed distributions are taken as given but may not exceed due.
func ResolvePayment(due Money, choice PaymentChoice, balances Balances, pc PricingContext, tol Tolerances) (Resolution, error) {
	if err := pc.Validate(); err != nil {
		return Resolution{}, err
	}
	if due.Amount.IsNegative() {
		return Resolution{}, invalid("amount_due", "must not be negative")
	}

	res := Resolution{Method: choice.Method, Due: due}
	switch choice.Method {
	case Cash, Bank, Card:
		cur := choice.Currency
		if choice.Method != Cash {
			cur = UZS
		}
		if cur != USD && cur != UZS {
			return Resolution{}, invalid("payment.currency", "must be USD or UZS")
		}
		amount := pc.Convert(due.Amount, due.Currency, cur)
		if err := checkBalance(choice.Method, cur, amount, balances); err != nil {
			return Resolution{}, err
		}
		res.Currency = cur
		if amount.IsPositive() {
			res.Legs = []PaymentLeg{{Method: choice.Method, Currency: cur, Amount: amount}}
		}
	case Debt:
		res.Currency = due.Currency
	case Mixed:
		errs := fieldErrors{}
		choice.Distribution.validate(errs)
		if err := errs.err(); err != nil {
			return Resolution{}, err
		}
		dueUZS := pc.Convert(due.Amount, due.Currency, UZS)
		if choice.Distribution.TotalUZS(pc).GreaterThan(dueUZS.Add(tol.UZS)) {
			return Resolution{}, invalid("distribution", "exceeds the amount due")
		}
		res.Currency = UZS
		res.Legs = choice.Distribution.legs()
	default:
		return Resolution{}, invalid("payment.method", fmt.Sprintf("unknown payment method %q", choice.Method))
	}

	paidInDue := decimal.Zero
	for _, l := range res.Legs {
		res.PaidUZS = res.PaidUZS.Add(pc.Convert(l.Amount, l.Currency, UZS))
		res.PaidUSD = res.PaidUSD.Add(pc.Convert(l.Amount, l.Currency, USD))
		paidInDue = paidInDue.Add(pc.Convert(l.Amount, l.Currency, due.Currency))
	}
	res.Status = StatusFor(paidInDue, due.Amount, tol.For(due.Currency))
	return res, nil
}

func checkBalance(m PaymentMethod, c Currency, amount decimal.Decimal, b Balances) error {
	avail := b.Available(m, c)
	if amount.GreaterThan(avail) {
		return &InsufficientFundsError{Method: m, Currency: c, Required: amount, Available: avail}
	}
	return nil
}
