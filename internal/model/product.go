package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Unit of measure for stock quantities.
const (
	UnitMeter = "meter"
	UnitTon   = "ton"
	UnitPiece = "piece"
)

// Origin of a product line.
const (
	OriginLocal  = "local"
	OriginImport = "import"
)

// Warehouses. Rows created before warehouses were tracked have Warehouse == "".
const (
	WarehouseMain  = "main"
	WarehouseCloud = "cloud"
)

// Product is one stock row per (catalog id, warehouse).
// CostPrice is the running weighted-average unit cost in USD.
type Product struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Warehouse     string          `gorm:"type:varchar(20);primaryKey;default:''"`
	Name          string          `gorm:"index;not null"`
	Type          string          `gorm:"type:varchar(20);not null;default:'other'"` // pipe | profile | sheet | beam | rebar | other
	Dimensions    string          `gorm:"type:varchar(100)"`
	SteelGrade    string          `gorm:"type:varchar(50)"`
	Quantity      decimal.Decimal `gorm:"type:decimal(16,3);not null;default:0"`
	Unit          string          `gorm:"type:varchar(10);not null;default:'piece'"`
	PricePerUnit  decimal.Decimal `gorm:"type:decimal(16,4);not null;default:0"`
	CostPrice     decimal.Decimal `gorm:"type:decimal(16,6);not null;default:0"`
	MinStockLevel decimal.Decimal `gorm:"type:decimal(16,3);not null;default:0"`
	Origin        string          `gorm:"type:varchar(10);not null;default:'local'"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// StockMovement records every quantity/cost change on a product row.
// Movements are never modified or deleted.
type StockMovement struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Warehouse      string          `gorm:"type:varchar(20);not null"`
	Type           string          `gorm:"type:varchar(30);not null"` // purchase_receipt | purchase_edit | purchase_line_delete
	QuantityChange decimal.Decimal `gorm:"type:decimal(16,3);not null"`
	QuantityBefore decimal.Decimal `gorm:"type:decimal(16,3);not null"`
	QuantityAfter  decimal.Decimal `gorm:"type:decimal(16,3);not null"`
	CostBefore     decimal.Decimal `gorm:"type:decimal(16,6);not null"`
	CostAfter      decimal.Decimal `gorm:"type:decimal(16,6);not null"`
	Reason         string
	ReferenceID    *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt      time.Time
}

func (StockMovement) TableName() string { return "stock_movements" }
