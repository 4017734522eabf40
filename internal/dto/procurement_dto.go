package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// OverheadsRequest holds import costs in USD. Ignored for local purchases.
type OverheadsRequest struct {
	Logistics   decimal.Decimal `json:"logistics"    validate:"min=0"`
	CustomsDuty decimal.Decimal `json:"customs_duty" validate:"min=0"`
	ImportVat   decimal.Decimal `json:"import_vat"   validate:"min=0"`
	Other       decimal.Decimal `json:"other"        validate:"min=0"`
}

type DistributionRequest struct {
	CashUSD decimal.Decimal `json:"cash_usd" validate:"min=0"`
	CashUZS decimal.Decimal `json:"cash_uzs" validate:"min=0"`
	CardUZS decimal.Decimal `json:"card_uzs" validate:"min=0"`
	BankUZS decimal.Decimal `json:"bank_uzs" validate:"min=0"`
}

type CostLineRequest struct {
	Quantity     decimal.Decimal `json:"quantity"      validate:"required,gt=0"`
	InvoicePrice decimal.Decimal `json:"invoice_price" validate:"required,gt=0"`
}

// PreviewRequest recomputes landed costs without touching any state.
type PreviewRequest struct {
	ProcurementType string            `json:"procurement_type" validate:"required,oneof=local import"`
	Currency        string            `json:"currency"         validate:"required,oneof=USD UZS"`
	Lines           []CostLineRequest `json:"lines"            validate:"required,min=1,dive"`
	Overheads       OverheadsRequest  `json:"overheads"`
	ImportTaxPolicy string            `json:"import_tax_policy" validate:"omitempty,oneof=capitalize expense"`
}

type PurchaseLineRequest struct {
	ProductID    string          `json:"product_id"    validate:"required,uuid"`
	ProductName  string          `json:"product_name"  validate:"omitempty,max=200"`
	Unit         string          `json:"unit"          validate:"omitempty,oneof=meter ton piece"`
	Dimensions   string          `json:"dimensions"    validate:"omitempty,max=100"`
	Warehouse    string          `json:"warehouse"     validate:"omitempty,oneof=main cloud"`
	Quantity     decimal.Decimal `json:"quantity"      validate:"required,gt=0"`
	InvoicePrice decimal.Decimal `json:"invoice_price" validate:"required,gt=0"`
}

type PaymentRequest struct {
	Method       string              `json:"method"   validate:"required,oneof=cash bank card debt mixed"`
	Currency     string              `json:"currency" validate:"omitempty,oneof=USD UZS"`
	Distribution DistributionRequest `json:"distribution"`
}

type CreatePurchaseRequest struct {
	Date            *time.Time            `json:"date"`
	SupplierName    string                `json:"supplier_name"    validate:"required,min=1,max=200"`
	ProcurementType string                `json:"procurement_type" validate:"required,oneof=local import"`
	Currency        string                `json:"currency"         validate:"required,oneof=USD UZS"`
	Warehouse       string                `json:"warehouse"        validate:"omitempty,oneof=main cloud"`
	Lines           []PurchaseLineRequest `json:"lines"            validate:"required,min=1,dive"`
	Overheads       OverheadsRequest      `json:"overheads"`
	Payment         PaymentRequest        `json:"payment"`
	WorkflowOrderID *string               `json:"workflow_order_id" validate:"omitempty,uuid"`
}

// RepayRequest pays Amount in Currency via Method, or the Distribution when
// Method is mixed.
type RepayRequest struct {
	Date         *time.Time          `json:"date"`
	Method       string              `json:"method"   validate:"required,oneof=cash bank card mixed"`
	Amount       decimal.Decimal     `json:"amount"   validate:"min=0"`
	Currency     string              `json:"currency" validate:"omitempty,oneof=USD UZS"`
	Distribution DistributionRequest `json:"distribution"`
}

type EditLineRequest struct {
	Quantity     decimal.Decimal `json:"quantity"      validate:"required,gt=0"`
	InvoicePrice decimal.Decimal `json:"invoice_price" validate:"required,gt=0"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type PurchaseFilter struct {
	Supplier string `form:"supplier"`
	Status   string `form:"status"  validate:"omitempty,oneof=unpaid partial paid"`
	From     string `form:"from"    validate:"omitempty,datetime=2006-01-02"`
	To       string `form:"to"      validate:"omitempty,datetime=2006-01-02"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type AllocatedLineResponse struct {
	Quantity               decimal.Decimal `json:"quantity"`
	InvoicePrice           decimal.Decimal `json:"invoice_price"`
	InvoicePriceWithoutVat decimal.Decimal `json:"invoice_price_without_vat"`
	VatAmount              decimal.Decimal `json:"vat_amount"`
	AllocatedOverhead      decimal.Decimal `json:"allocated_overhead"`
	LandedCost             decimal.Decimal `json:"landed_cost"`
	TotalLineCost          decimal.Decimal `json:"total_line_cost"`
	TotalLineCostUZS       decimal.Decimal `json:"total_line_cost_uzs"`
}

type AllocationResponse struct {
	Lines              []AllocatedLineResponse `json:"lines"`
	TotalInvoiceValue  decimal.Decimal         `json:"total_invoice_value"`
	TotalOverheads     decimal.Decimal         `json:"total_overheads"`
	ExpensedTaxes      decimal.Decimal         `json:"expensed_taxes"`
	TotalLandedValue   decimal.Decimal         `json:"total_landed_value"`
	TotalInvoiceUZS    decimal.Decimal         `json:"total_invoice_uzs"`
	TotalVatUZS        decimal.Decimal         `json:"total_vat_uzs"`
	TotalWithoutVatUZS decimal.Decimal         `json:"total_without_vat_uzs"`
	ExchangeRate       decimal.Decimal         `json:"exchange_rate"`
	VATRate            decimal.Decimal         `json:"vat_rate"`
}

type PurchaseItemResponse struct {
	ID                     string          `json:"id"`
	Position               int             `json:"position"`
	ProductID              string          `json:"product_id"`
	ProductName            string          `json:"product_name"`
	Dimensions             string          `json:"dimensions"`
	Warehouse              string          `json:"warehouse"`
	Quantity               decimal.Decimal `json:"quantity"`
	Unit                   string          `json:"unit"`
	InvoicePrice           decimal.Decimal `json:"invoice_price"`
	InvoicePriceWithoutVat decimal.Decimal `json:"invoice_price_without_vat"`
	VatAmount              decimal.Decimal `json:"vat_amount"`
	AllocatedOverhead      decimal.Decimal `json:"allocated_overhead"`
	LandedCost             decimal.Decimal `json:"landed_cost"`
	TotalLineCost          decimal.Decimal `json:"total_line_cost"`
	TotalLineCostUZS       decimal.Decimal `json:"total_line_cost_uzs"`
}

type DebtResponse struct {
	Currency     string          `json:"currency"`
	Total        decimal.Decimal `json:"total"`
	Paid         decimal.Decimal `json:"paid"`
	Remaining    decimal.Decimal `json:"remaining"`
	RemainingUSD decimal.Decimal `json:"remaining_usd"`
}

type PurchaseResponse struct {
	ID                    string                 `json:"id"`
	Date                  string                 `json:"date"`
	SupplierName          string                 `json:"supplier_name"`
	ProcurementType       string                 `json:"procurement_type"`
	Currency              string                 `json:"currency"`
	Warehouse             string                 `json:"warehouse"`
	Items                 []PurchaseItemResponse `json:"items"`
	Overheads             OverheadsRequest       `json:"overheads"`
	TotalInvoiceAmount    decimal.Decimal        `json:"total_invoice_amount"`
	TotalInvoiceAmountUZS decimal.Decimal        `json:"total_invoice_amount_uzs"`
	TotalVatAmountUZS     decimal.Decimal        `json:"total_vat_amount_uzs"`
	TotalWithoutVatUZS    decimal.Decimal        `json:"total_without_vat_uzs"`
	TotalLandedAmount     decimal.Decimal        `json:"total_landed_amount"`
	ExpensedTaxes         decimal.Decimal        `json:"expensed_taxes"`
	PaymentMethod         string                 `json:"payment_method"`
	PaymentCurrency       string                 `json:"payment_currency"`
	PaymentStatus         string                 `json:"payment_status"`
	AmountPaidUSD         decimal.Decimal        `json:"amount_paid_usd"`
	ExchangeRate          decimal.Decimal        `json:"exchange_rate"`
	VATRate               decimal.Decimal        `json:"vat_rate"`
	ImportTaxPolicy       string                 `json:"import_tax_policy"`
	Legacy                bool                   `json:"legacy"`
	Debt                  DebtResponse           `json:"debt"`
	WorkflowOrderID       *string                `json:"workflow_order_id"`
	CreatedAt             string                 `json:"created_at"`
}

type PurchaseListResponse struct {
	Data  []PurchaseResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

type StockDeltaResponse struct {
	ProductID      string          `json:"product_id"`
	Warehouse      string          `json:"warehouse"`
	QuantityBefore decimal.Decimal `json:"quantity_before"`
	QuantityAfter  decimal.Decimal `json:"quantity_after"`
	CostBefore     decimal.Decimal `json:"cost_before"`
	CostAfter      decimal.Decimal `json:"cost_after"`
	Created        bool            `json:"created"`
	Migrated       bool            `json:"migrated"`
}

type CreatePurchaseResponse struct {
	Purchase     PurchaseResponse      `json:"purchase"`
	Transactions []TransactionResponse `json:"transactions"`
	StockDeltas  []StockDeltaResponse  `json:"stock_deltas"`
	Allocation   AllocationResponse    `json:"allocation"`
}

type RepayResponse struct {
	Purchase     PurchaseResponse      `json:"purchase"`
	Transactions []TransactionResponse `json:"transactions"`
}

type LineChangeResponse struct {
	Purchase   PurchaseResponse   `json:"purchase"`
	StockDelta StockDeltaResponse `json:"stock_delta"`
}

type SupplierDebtResponse struct {
	SupplierName string          `json:"supplier_name"`
	Purchases    int             `json:"purchases"`
	TotalUSD     decimal.Decimal `json:"total_usd"`
	PaidUSD      decimal.Decimal `json:"paid_usd"`
	RemainingUSD decimal.Decimal `json:"remaining_usd"`
	OldestUnpaid string          `json:"oldest_unpaid"`
}

type ShortageResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Unit        string          `json:"unit"`
	Ordered     decimal.Decimal `json:"ordered"`
	OnHand      decimal.Decimal `json:"on_hand"`
	Missing     decimal.Decimal `json:"missing"`
}

// DraftResponse seeds the purchase form from a workflow order. Draft can be
// edited and posted back to POST /v1/procurement/purchases.
type DraftResponse struct {
	Draft     CreatePurchaseRequest `json:"draft"`
	Shortages []ShortageResponse    `json:"shortages"`
}

type MigrationResponse struct {
	Purchase PurchaseResponse `json:"purchase"`
}
