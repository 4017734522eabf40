package ledger

import (
	"errors"
	"testing"

	"github.com/Jassur2025/metallerp-sub000/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingItems(t *testing.T) {
	a, b, c := newID(), newID(), newID()
	products := []model.Product{
		{ID: a, Warehouse: model.WarehouseMain, Quantity: d("3")},
		{ID: a, Warehouse: model.WarehouseCloud, Quantity: d("2")},
		{ID: b, Warehouse: model.WarehouseMain, Quantity: d("-4")},
		{ID: c, Warehouse: model.WarehouseMain, Quantity: d("50")},
	}
	order := model.WorkflowOrder{Items: []model.WorkflowOrderItem{
		{ProductID: a, ProductName: "A", Quantity: d("8")},
		{ProductID: b, ProductName: "B", Quantity: d("1")},
		{ProductID: c, ProductName: "C", Quantity: d("10")},
		{ProductID: a, ProductName: "A", Quantity: d("1")},
	}}

	got := MissingItems(order, products)
	require.Len(t, got, 2)
	assert.Equal(t, a, got[0].ProductID)
	assertDec(t, "9", got[0].Ordered)
	assertDec(t, "5", got[0].OnHand)
	assertDec(t, "4", got[0].Missing)
	assert.Equal(t, b, got[1].ProductID)
	assertDec(t, "0", got[1].OnHand)
	assertDec(t, "1", got[1].Missing)
}

func TestDraftFromOrder(t *testing.T) {
	a := newID()
	products := []model.Product{
		{ID: a, Warehouse: model.WarehouseMain, Quantity: d("1"), CostPrice: d("7.5"), Unit: model.UnitTon, Dimensions: "20x20"},
	}
	order := model.WorkflowOrder{ID: newID(), Status: model.OrderSentToProcurement, Items: []model.WorkflowOrderItem{
		{ProductID: a, ProductName: "Angle", Quantity: d("4")},
	}}

	cmd, shortages, err := DraftFromOrder(order, products, "")
	require.NoError(t, err)
	require.Len(t, shortages, 1)
	require.Len(t, cmd.Lines, 1)
	assert.Equal(t, model.WarehouseMain, cmd.Warehouse)
	assertDec(t, "3", cmd.Lines[0].Quantity)
	assertDec(t, "7.5", cmd.Lines[0].InvoicePrice)
	assert.Equal(t, model.UnitTon, cmd.Lines[0].Unit)
	require.NotNil(t, cmd.WorkflowOrderID)
	assert.Equal(t, order.ID, *cmd.WorkflowOrderID)
	assert.Equal(t, Debt, cmd.Payment.Method)
}

func TestDraftFromOrder_Rejects(t *testing.T) {
	var verr *ValidationError

	_, _, err := DraftFromOrder(model.WorkflowOrder{Status: model.OrderCancelled}, nil, "")
	assert.True(t, errors.As(err, &verr))

	a := newID()
	covered := model.WorkflowOrder{Status: model.OrderConfirmed, Items: []model.WorkflowOrderItem{{ProductID: a, Quantity: d("1")}}}
	_, _, err = DraftFromOrder(covered, []model.Product{{ID: a, Quantity: d("5")}}, "")
	assert.True(t, errors.As(err, &verr))
}
