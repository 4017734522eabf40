package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment methods as stored on purchases and transactions.
const (
	PaymentCash  = "cash"
	PaymentBank  = "bank"
	PaymentCard  = "card"
	PaymentDebt  = "debt"
	PaymentMixed = "mixed"
)

// Payment status of a purchase. Transitions only move forward through repayments:
// unpaid -> partial -> paid.
const (
	StatusUnpaid  = "unpaid"
	StatusPartial = "partial"
	StatusPaid    = "paid"
)

// Overheads are import costs in USD, spread across lines by invoice value.
type Overheads struct {
	Logistics   decimal.Decimal `gorm:"type:decimal(16,4);not null;default:0"`
	CustomsDuty decimal.Decimal `gorm:"type:decimal(16,4);not null;default:0"`
	ImportVat   decimal.Decimal `gorm:"type:decimal(16,4);not null;default:0"`
	Other       decimal.Decimal `gorm:"type:decimal(16,4);not null;default:0"`
}

// Purchase is a supplier invoice received into stock.
//
// Two currency schemas coexist. Rows written before the UZS migration keep
// TotalInvoiceAmountUZS at zero and store AmountPaid in USD; current rows store
// AmountPaid in UZS and AmountPaidUSD separately. Read paid amounts through
// ledger.NormalizedPaidUSD / ledger.DebtViewOf, never directly.
type Purchase struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Date            time.Time `gorm:"not null;index"`
	SupplierName    string    `gorm:"not null;index"`
	ProcurementType string    `gorm:"type:varchar(10);not null;default:'local'"` // local | import
	Currency        string    `gorm:"type:varchar(3);not null;default:'USD'"`    // document currency of invoice prices
	Warehouse       string    `gorm:"type:varchar(20);not null"`

	Items     []PurchaseItem `gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE"`
	Overheads Overheads      `gorm:"embedded;embeddedPrefix:overhead_"`

	// TotalInvoiceAmount is USD, VAT-exclusive.
	TotalInvoiceAmount    decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0"`
	TotalInvoiceAmountUZS decimal.Decimal `gorm:"column:total_invoice_amount_uzs;type:decimal(20,2);not null;default:0"`
	TotalVatAmountUZS     decimal.Decimal `gorm:"column:total_vat_amount_uzs;type:decimal(20,2);not null;default:0"`
	TotalWithoutVatUZS    decimal.Decimal `gorm:"column:total_without_vat_uzs;type:decimal(20,2);not null;default:0"`
	TotalLandedAmount     decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0"`
	ExpensedTaxes         decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0"`

	PaymentMethod   string          `gorm:"type:varchar(10);not null"`
	PaymentCurrency string          `gorm:"type:varchar(3);not null"`
	PaymentStatus   string          `gorm:"type:varchar(10);not null;index"`
	AmountPaid      decimal.Decimal `gorm:"type:decimal(20,6);not null;default:0"`
	AmountPaidUSD   decimal.Decimal `gorm:"column:amount_paid_usd;type:decimal(18,6);not null;default:0"`

	// Snapshots taken at creation; recomputations reuse them.
	ExchangeRate    decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0"`
	VATRate         decimal.Decimal `gorm:"column:vat_rate;type:decimal(6,4);not null;default:0"`
	ImportTaxPolicy string          `gorm:"type:varchar(12);not null;default:'capitalize'"`

	WorkflowOrderID *uuid.UUID `gorm:"type:uuid;index"`
	CreatedBy       *uuid.UUID `gorm:"type:uuid"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PurchaseItem is one invoice line. LandedCost is the USD unit cost after
// overhead allocation; TotalLineCost = Quantity * LandedCost.
type PurchaseItem struct {
	ID                     uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PurchaseID             uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position               int             `gorm:"not null"`
	ProductID              uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName            string          `gorm:"not null"`
	Quantity               decimal.Decimal `gorm:"type:decimal(16,3);not null"`
	Unit                   string          `gorm:"type:varchar(10);not null"`
	InvoicePrice           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	InvoicePriceWithoutVat decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0"`
	VatAmount              decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0"`
	AllocatedOverhead      decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0"`
	LandedCost             decimal.Decimal `gorm:"type:decimal(18,6);not null"`
	TotalLineCost          decimal.Decimal `gorm:"type:decimal(18,6);not null"`
	TotalLineCostUZS       decimal.Decimal `gorm:"column:total_line_cost_uzs;type:decimal(20,2);not null;default:0"`
	Dimensions             string
	Warehouse              string `gorm:"type:varchar(20)"`
}
