package dto

import "github.com/shopspring/decimal"

type WorkflowOrderItemRequest struct {
	ProductID   string          `json:"product_id"   validate:"required,uuid"`
	ProductName string          `json:"product_name" validate:"required,max=200"`
	Quantity    decimal.Decimal `json:"quantity"     validate:"required,gt=0"`
	Unit        string          `json:"unit"         validate:"omitempty,oneof=meter ton piece"`
}

type CreateWorkflowOrderRequest struct {
	CustomerName string                     `json:"customer_name" validate:"required,min=1,max=200"`
	Note         string                     `json:"note"          validate:"omitempty,max=1000"`
	Items        []WorkflowOrderItemRequest `json:"items"         validate:"required,min=1,dive"`
}

type UpdateWorkflowStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft confirmed sent_to_cash sent_to_procurement completed cancelled"`
}

type WorkflowOrderFilter struct {
	Status string `form:"status"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=500"`
}

type WorkflowOrderItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
}

type WorkflowOrderResponse struct {
	ID           string                      `json:"id"`
	CustomerName string                      `json:"customer_name"`
	Status       string                      `json:"status"`
	Note         string                      `json:"note"`
	Items        []WorkflowOrderItemResponse `json:"items"`
	Shortages    []ShortageResponse          `json:"shortages"`
	CreatedAt    string                      `json:"created_at"`
}

type WorkflowOrderListResponse struct {
	Data  []WorkflowOrderResponse `json:"data"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}
