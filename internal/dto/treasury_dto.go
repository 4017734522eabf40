package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementRequest is a manual deposit into or withdrawal from a till/account.
type MovementRequest struct {
	Date        *time.Time      `json:"date"`
	Type        string          `json:"type"        validate:"required,oneof=deposit withdrawal"`
	Method      string          `json:"method"      validate:"required,oneof=cash bank card"`
	Currency    string          `json:"currency"    validate:"required,oneof=USD UZS"`
	Amount      decimal.Decimal `json:"amount"      validate:"required,gt=0"`
	Description string          `json:"description" validate:"omitempty,max=500"`
}

type TransactionFilter struct {
	Type      string `form:"type"`
	Method    string `form:"method"     validate:"omitempty,oneof=cash bank card"`
	RelatedID string `form:"related_id" validate:"omitempty,uuid"`
	From      string `form:"from"       validate:"omitempty,datetime=2006-01-02"`
	To        string `form:"to"         validate:"omitempty,datetime=2006-01-02"`
	Page      int    `form:"page,default=1"    validate:"min=1"`
	Limit     int    `form:"limit,default=100" validate:"min=1,max=500"`
}

type BalancesResponse struct {
	CashUSD decimal.Decimal `json:"cash_usd"`
	CashUZS decimal.Decimal `json:"cash_uzs"`
	CardUZS decimal.Decimal `json:"card_uzs"`
	BankUZS decimal.Decimal `json:"bank_uzs"`
}

type TransactionResponse struct {
	ID           string          `json:"id"`
	Date         string          `json:"date"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	Method       string          `json:"method"`
	Description  string          `json:"description"`
	RelatedID    *string         `json:"related_id"`
}

type TransactionListResponse struct {
	Data  []TransactionResponse `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}
