package ledger

import (
	"github.com/Jassur2025/metallerp-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WeightedAverage blends an incoming receipt into the running average cost.
// When the resulting quantity is zero the existing cost is kept. Negative
// (oversold) stock enters the blend with its own sign.
func WeightedAverage(qty, cost, inQty, inCost decimal.Decimal) (newQty, newCost decimal.Decimal) {
	newQty = qty.Add(inQty)
	if newQty.IsZero() {
		return newQty, cost
	}
	value := qty.Mul(cost).Add(inQty.Mul(inCost))
	return newQty, value.Div(newQty)
}

// StockKey identifies one stock row.
type StockKey struct {
	ProductID uuid.UUID
	Warehouse string
}

// Receipt is stock arriving at a key at a landed unit cost (USD).
type Receipt struct {
	Key        StockKey
	Name       string
	Unit       string
	Dimensions string
	Origin     string
	Quantity   decimal.Decimal
	UnitCost   decimal.Decimal
}

// StockDelta describes the change applied to one stock row.
type StockDelta struct {
	Key            StockKey
	QuantityBefore decimal.Decimal
	QuantityAfter  decimal.Decimal
	CostBefore     decimal.Decimal
	CostAfter      decimal.Decimal
	// Created is set when the row did not exist before.
	Created bool
	// Migrated is set when an untagged legacy row was re-tagged to Key.Warehouse.
	Migrated bool
}

func (d StockDelta) QuantityChange() decimal.Decimal {
	return d.QuantityAfter.Sub(d.QuantityBefore)
}

// ApplyReceipts returns a copy of products with the receipts applied and one
// delta per distinct key touched. Receipts sharing a key are merged first, so
// no row is ever counted twice.
func ApplyReceipts(products []model.Product, receipts []Receipt) ([]model.Product, []StockDelta) {
	out := append([]model.Product(nil), products...)

	var order []StockKey
	merged := make(map[StockKey]Receipt, len(receipts))
	for _, r := range receipts {
		m, ok := merged[r.Key]
		if !ok {
			order = append(order, r.Key)
			merged[r.Key] = r
			continue
		}
		q, c := WeightedAverage(m.Quantity, m.UnitCost, r.Quantity, r.UnitCost)
		m.Quantity, m.UnitCost = q, c
		merged[r.Key] = m
	}

	deltas := make([]StockDelta, 0, len(order))
	for _, key := range order {
		r := merged[key]
		idx, migrated := findRow(out, key)
		delta := StockDelta{Key: key, Migrated: migrated}
		if idx < 0 {
			out = append(out, newRow(out, r))
			idx = len(out) - 1
			delta.Created = true
		}
		p := &out[idx]
		if migrated {
			p.Warehouse = key.Warehouse
		}
		delta.QuantityBefore, delta.CostBefore = p.Quantity, p.CostPrice
		p.Quantity, p.CostPrice = WeightedAverage(p.Quantity, p.CostPrice, r.Quantity, r.UnitCost)
		delta.QuantityAfter, delta.CostAfter = p.Quantity, p.CostPrice
		deltas = append(deltas, delta)
	}
	return out, deltas
}

// AdjustQuantity changes the quantity of one row without touching its cost.
// Used when purchase history is edited after the receipt.
func AdjustQuantity(products []model.Product, key StockKey, change decimal.Decimal) ([]model.Product, StockDelta, error) {
	out := append([]model.Product(nil), products...)
	idx, migrated := findRow(out, key)
	if idx < 0 {
		return nil, StockDelta{}, &NotFoundError{Entity: "product", ID: key.ProductID.String() + "@" + key.Warehouse}
	}
	p := &out[idx]
	if migrated {
		p.Warehouse = key.Warehouse
	}
	delta := StockDelta{Key: key, Migrated: migrated, QuantityBefore: p.Quantity, CostBefore: p.CostPrice}
	p.Quantity = p.Quantity.Add(change)
	delta.QuantityAfter, delta.CostAfter = p.Quantity, p.CostPrice
	return out, delta, nil
}

// findRow prefers the exact (id, warehouse) row and falls back to an untagged
// row of the same product, which the caller must migrate.
func findRow(products []model.Product, key StockKey) (idx int, migrate bool) {
	legacy := -1
	for i := range products {
		if products[i].ID != key.ProductID {
			continue
		}
		if products[i].Warehouse == key.Warehouse {
			return i, false
		}
		if products[i].Warehouse == "" && legacy < 0 {
			legacy = i
		}
	}
	if legacy >= 0 && key.Warehouse != "" {
		return legacy, true
	}
	return -1, false
}

// newRow copies catalog attributes from a sibling row in another warehouse
// when there is one.
func newRow(products []model.Product, r Receipt) model.Product {
	for _, p := range products {
		if p.ID == r.Key.ProductID {
			p.Warehouse = r.Key.Warehouse
			p.Quantity = decimal.Zero
			p.CostPrice = decimal.Zero
			return p
		}
	}
	origin := r.Origin
	if origin == "" {
		origin = model.OriginLocal
	}
	unit := r.Unit
	if unit == "" {
		unit = model.UnitPiece
	}
	return model.Product{
		ID:         r.Key.ProductID,
		Warehouse:  r.Key.Warehouse,
		Name:       r.Name,
		Type:       "other",
		Dimensions: r.Dimensions,
		Unit:       unit,
		Origin:     origin,
	}
}
