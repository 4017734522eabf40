package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	Name          string          `json:"name"            validate:"required,min=2,max=200"`
	Type          string          `json:"type"            validate:"omitempty,oneof=pipe profile sheet beam rebar other"`
	Dimensions    string          `json:"dimensions"      validate:"omitempty,max=100"`
	SteelGrade    string          `json:"steel_grade"     validate:"omitempty,max=50"`
	Unit          string          `json:"unit"            validate:"required,oneof=meter ton piece"`
	Warehouse     string          `json:"warehouse"       validate:"omitempty,oneof=main cloud"`
	PricePerUnit  decimal.Decimal `json:"price_per_unit"  validate:"min=0"`
	CostPrice     decimal.Decimal `json:"cost_price"      validate:"min=0"`
	MinStockLevel decimal.Decimal `json:"min_stock_level" validate:"min=0"`
	Origin        string          `json:"origin"          validate:"omitempty,oneof=local import"`
}

// UpdateProductRequest edits catalog attributes. Quantity and cost price only
// move through purchases.
type UpdateProductRequest struct {
	Warehouse     string           `json:"warehouse"       validate:"required,oneof=main cloud"`
	Name          *string          `json:"name"            validate:"omitempty,min=2,max=200"`
	Dimensions    *string          `json:"dimensions"      validate:"omitempty,max=100"`
	SteelGrade    *string          `json:"steel_grade"     validate:"omitempty,max=50"`
	PricePerUnit  *decimal.Decimal `json:"price_per_unit"`
	MinStockLevel *decimal.Decimal `json:"min_stock_level"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductFilter struct {
	Name      string `form:"name"`
	Type      string `form:"type"`
	Warehouse string `form:"warehouse" validate:"omitempty,oneof=main cloud"`
	Page      int    `form:"page,default=1"    validate:"min=1"`
	Limit     int    `form:"limit,default=100" validate:"min=1,max=500"`
}

type StockMovementFilter struct {
	ProductID   string `form:"product_id"   validate:"omitempty,uuid"`
	Type        string `form:"type"`
	ReferenceID string `form:"reference_id" validate:"omitempty,uuid"`
	Page        int    `form:"page,default=1"    validate:"min=1"`
	Limit       int    `form:"limit,default=100" validate:"min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID            string          `json:"id"`
	Warehouse     string          `json:"warehouse"`
	Name          string          `json:"name"`
	Type          string          `json:"type"`
	Dimensions    string          `json:"dimensions"`
	SteelGrade    string          `json:"steel_grade"`
	Quantity      decimal.Decimal `json:"quantity"`
	Unit          string          `json:"unit"`
	PricePerUnit  decimal.Decimal `json:"price_per_unit"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	MinStockLevel decimal.Decimal `json:"min_stock_level"`
	Origin        string          `json:"origin"`
	LowStock      bool            `json:"low_stock"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

type StockMovementResponse struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"product_id"`
	Warehouse      string          `json:"warehouse"`
	Type           string          `json:"type"`
	QuantityChange decimal.Decimal `json:"quantity_change"`
	QuantityBefore decimal.Decimal `json:"quantity_before"`
	QuantityAfter  decimal.Decimal `json:"quantity_after"`
	CostBefore     decimal.Decimal `json:"cost_before"`
	CostAfter      decimal.Decimal `json:"cost_after"`
	Reason         string          `json:"reason"`
	ReferenceID    *string         `json:"reference_id"`
	CreatedAt      string          `json:"created_at"`
}

type StockMovementListResponse struct {
	Data  []StockMovementResponse `json:"data"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}
