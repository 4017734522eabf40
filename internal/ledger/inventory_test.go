package ledger

import (
	"errors"
	"testing"

	"github.com/Jassur2025/metallerp-sub000/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightedAverage(t *testing.T) {
	tests := []struct {
		name                    string
		qty, cost, inQty, inCst string
		wantQty, wantCost       string
	}{
		{"equal halves", "10", "5", "10", "7", "20", "6"},
		{"empty stock takes receipt cost", "0", "999", "5", "8", "5", "8"},
		{"oversold stock blends with its sign", "-2", "4", "6", "8", "4", "10"},
		{"oversold legacy row", "-5", "10", "10", "7", "5", "4"},
		{"zero result keeps existing cost", "5", "4", "-5", "9", "0", "4"},
		{"uneven", "30", "2", "10", "6", "40", "3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, c := WeightedAverage(d(tt.qty), d(tt.cost), d(tt.inQty), d(tt.inCst))
			assertDec(t, tt.wantQty, q)
			assertDec(t, tt.wantCost, c)
		})
	}
}

func TestApplyReceipts_OneDeltaPerKey(t *testing.T) {
	id := newID()
	products := []model.Product{{ID: id, Warehouse: model.WarehouseMain, Name: "Pipe 57x3", Quantity: d("10"), CostPrice: d("5")}}
	key := StockKey{ProductID: id, Warehouse: model.WarehouseMain}

	out, deltas := ApplyReceipts(products, []Receipt{
		{Key: key, Quantity: d("5"), UnitCost: d("6")},
		{Key: key, Quantity: d("5"), UnitCost: d("8")},
	})

	require.Len(t, deltas, 1)
	require.Len(t, out, 1)
	assertDec(t, "20", out[0].Quantity)
	assertDec(t, "6", out[0].CostPrice)
	assertDec(t, "10", deltas[0].QuantityChange())
	// input untouched
	assertDec(t, "10", products[0].Quantity)
}

func TestApplyReceipts_MigratesLegacyRow(t *testing.T) {
	id := newID()
	products := []model.Product{{ID: id, Warehouse: "", Name: "Sheet 2mm", Quantity: d("4"), CostPrice: d("10")}}

	out, deltas := ApplyReceipts(products, []Receipt{
		{Key: StockKey{ProductID: id, Warehouse: model.WarehouseCloud}, Quantity: d("4"), UnitCost: d("20")},
	})

	require.Len(t, out, 1)
	assert.Equal(t, model.WarehouseCloud, out[0].Warehouse)
	assertDec(t, "8", out[0].Quantity)
	assertDec(t, "15", out[0].CostPrice)
	assert.True(t, deltas[0].Migrated)
	assert.False(t, deltas[0].Created)

	// A second receipt into the same warehouse finds the migrated row.
	out, deltas = ApplyReceipts(out, []Receipt{
		{Key: StockKey{ProductID: id, Warehouse: model.WarehouseCloud}, Quantity: d("2"), UnitCost: d("15")},
	})
	require.Len(t, out, 1)
	assert.False(t, deltas[0].Migrated)
	assertDec(t, "10", out[0].Quantity)
}

func TestApplyReceipts_NewWarehouseRowCopiesCatalog(t *testing.T) {
	id := newID()
	products := []model.Product{{
		ID: id, Warehouse: model.WarehouseMain, Name: "Beam 20", SteelGrade: "St3",
		Unit: model.UnitTon, Quantity: d("3"), CostPrice: d("700"), PricePerUnit: d("900"),
	}}

	out, deltas := ApplyReceipts(products, []Receipt{
		{Key: StockKey{ProductID: id, Warehouse: model.WarehouseCloud}, Quantity: d("1"), UnitCost: d("650")},
	})

	require.Len(t, out, 2)
	assert.True(t, deltas[0].Created)
	row := out[1]
	assert.Equal(t, "Beam 20", row.Name)
	assert.Equal(t, "St3", row.SteelGrade)
	assert.Equal(t, model.UnitTon, row.Unit)
	assertDec(t, "1", row.Quantity)
	assertDec(t, "650", row.CostPrice)
	assertDec(t, "3", out[0].Quantity)
}

func TestAdjustQuantity(t *testing.T) {
	id := newID()
	products := []model.Product{{ID: id, Warehouse: model.WarehouseMain, Quantity: d("10"), CostPrice: d("5")}}

	out, delta, err := AdjustQuantity(products, StockKey{ProductID: id, Warehouse: model.WarehouseMain}, d("-4"))
	require.NoError(t, err)
	assertDec(t, "6", out[0].Quantity)
	assertDec(t, "5", out[0].CostPrice)
	assertDec(t, "-4", delta.QuantityChange())

	_, _, err = AdjustQuantity(products, StockKey{ProductID: newID(), Warehouse: model.WarehouseMain}, d("1"))
	var nf *NotFoundError
	assert.True(t, errors.As(err, &nf))
}
