package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Workflow order status.
const (
	OrderDraft             = "draft"
	OrderConfirmed         = "confirmed"
	OrderSentToCash        = "sent_to_cash"
	OrderSentToProcurement = "sent_to_procurement"
	OrderCompleted         = "completed"
	OrderCancelled         = "cancelled"
)

// WorkflowOrder is a sales-side request. Procurement only reads it to find
// what is missing in stock.
type WorkflowOrder struct {
	ID           uuid.UUID           `gorm:"type:uuid;primaryKey"`
	CustomerName string              `gorm:"not null"`
	Status       string              `gorm:"type:varchar(30);not null;default:'draft';index"`
	Note         string
	Items        []WorkflowOrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type WorkflowOrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(16,3);not null"`
	Unit        string          `gorm:"type:varchar(10)"`
}
