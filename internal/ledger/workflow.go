package ledger

import (
	"github.com/Jassur2025/metallerp-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Shortage is how much of an ordered product is not covered by stock.
type Shortage struct {
	ProductID   uuid.UUID
	ProductName string
	Unit        string
	Ordered     decimal.Decimal
	OnHand      decimal.Decimal
	Missing     decimal.Decimal
}

// MissingItems compares an order with on-hand stock summed over all
// warehouses. Lines fully covered by stock are left out.
func MissingItems(order model.WorkflowOrder, products []model.Product) []Shortage {
	onHand := make(map[uuid.UUID]decimal.Decimal)
	for _, p := range products {
		if p.Quantity.IsPositive() {
			onHand[p.ID] = onHand[p.ID].Add(p.Quantity)
		}
	}

	var seen []uuid.UUID
	ordered := make(map[uuid.UUID]*Shortage)
	for _, it := range order.Items {
		s, ok := ordered[it.ProductID]
		if !ok {
			s = &Shortage{ProductID: it.ProductID, ProductName: it.ProductName, Unit: it.Unit}
			ordered[it.ProductID] = s
			seen = append(seen, it.ProductID)
		}
		s.Ordered = s.Ordered.Add(it.Quantity)
	}

	var out []Shortage
	for _, id := range seen {
		s := ordered[id]
		s.OnHand = onHand[id]
		s.Missing = s.Ordered.Sub(s.OnHand)
		if s.Missing.IsPositive() {
			out = append(out, *s)
		}
	}
	return out
}

// DraftFromOrder seeds a purchase cart with the order's shortages. Lines
// are priced at the current cost price when one is known, so the UI starts
// from a sensible number; the supplier and payment are left to the user.
func DraftFromOrder(order model.WorkflowOrder, products []model.Product, warehouse string) (CreatePurchaseCommand, []Shortage, error) {
	switch order.Status {
	case model.OrderCompleted, model.OrderCancelled:
		return CreatePurchaseCommand{}, nil, invalid("status", "order is "+order.Status)
	}
	if warehouse == "" {
		warehouse = model.WarehouseMain
	}
	shortages := MissingItems(order, products)
	if len(shortages) == 0 {
		return CreatePurchaseCommand{}, nil, invalid("items", "stock already covers the order")
	}

	orderID := order.ID
	cmd := CreatePurchaseCommand{
		Type:            Local,
		Currency:        USD,
		Warehouse:       warehouse,
		Payment:         PaymentChoice{Method: Debt},
		WorkflowOrderID: &orderID,
	}
	for _, s := range shortages {
		line := PurchaseLine{
			ProductID:   s.ProductID,
			ProductName: s.ProductName,
			Unit:        s.Unit,
			Warehouse:   warehouse,
			Quantity:    s.Missing,
		}
		if p, ok := costSource(products, s.ProductID, warehouse); ok {
			line.InvoicePrice = p.CostPrice
			line.Dimensions = p.Dimensions
			if line.Unit == "" {
				line.Unit = p.Unit
			}
		}
		cmd.Lines = append(cmd.Lines, line)
	}
	return cmd, shortages, nil
}

// costSource prefers the row of the receiving warehouse.
func costSource(products []model.Product, id uuid.UUID, warehouse string) (model.Product, bool) {
	var found *model.Product
	for i := range products {
		if products[i].ID != id {
			continue
		}
		if products[i].Warehouse == warehouse {
			return products[i], true
		}
		if found == nil {
			found = &products[i]
		}
	}
	if found == nil {
		return model.Product{}, false
	}
	return *found, true
}
