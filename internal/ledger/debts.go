package ledger

import (
	"sort"
	"strings"
	"time"

	"github.com/Jassur2025/metallerp-sub000/internal/model"

	"github.com/shopspring/decimal"
)

// SupplierDebt is the open balance owed to one supplier, in USD.
type SupplierDebt struct {
	SupplierName string
	Purchases    int
	TotalUSD     decimal.Decimal
	PaidUSD      decimal.Decimal
	RemainingUSD decimal.Decimal
	OldestUnpaid time.Time
}

// SupplierDebts groups unpaid and partially paid purchases by supplier
// (case-insensitive) and orders the result by largest debt first.
func SupplierDebts(purchases []model.Purchase) []SupplierDebt {
	byName := make(map[string]*SupplierDebt)
	for _, p := range purchases {
		remaining := RemainingDebtUSD(p)
		if PaymentStatus(p.PaymentStatus) == Paid || !remaining.IsPositive() {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(p.SupplierName))
		d, ok := byName[key]
		if !ok {
			d = &SupplierDebt{SupplierName: strings.TrimSpace(p.SupplierName)}
			byName[key] = d
		}
		d.Purchases++
		paid := NormalizedPaidUSD(p)
		d.PaidUSD = d.PaidUSD.Add(paid)
		d.TotalUSD = d.TotalUSD.Add(paid).Add(remaining)
		d.RemainingUSD = d.RemainingUSD.Add(remaining)
		if d.OldestUnpaid.IsZero() || p.Date.Before(d.OldestUnpaid) {
			d.OldestUnpaid = p.Date
		}
	}

	out := make([]SupplierDebt, 0, len(byName))
	for _, d := range byName {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RemainingUSD.Equal(out[j].RemainingUSD) {
			return out[i].RemainingUSD.GreaterThan(out[j].RemainingUSD)
		}
		return out[i].SupplierName < out[j].SupplierName
	})
	return out
}
