package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction types. Inflows raise till/account balances, outflows lower them.
const (
	TxSupplierPayment = "supplier_payment"
	TxClientPayment   = "client_payment"
	TxExpense         = "expense"
	TxDeposit         = "deposit"
	TxWithdrawal      = "withdrawal"
)

// Transaction is an immutable money movement. Corrections are new rows.
type Transaction struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Date         time.Time       `gorm:"not null;index"`
	Type         string          `gorm:"type:varchar(20);not null;index"`
	Amount       decimal.Decimal `gorm:"type:decimal(20,6);not null"`
	Currency     string          `gorm:"type:varchar(3);not null"`
	ExchangeRate decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0"` // set for UZS movements
	Method       string          `gorm:"type:varchar(10);not null"`            // cash | bank | card
	Description  string
	RelatedID    *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt    time.Time
}

// IsOutflow reports whether the transaction reduces the balance it is booked on.
func (t Transaction) IsOutflow() bool {
	switch t.Type {
	case TxSupplierPayment, TxExpense, TxWithdrawal:
		return true
	}
	return false
}
