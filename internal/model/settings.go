package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AppSettings is a single-row table (ID = 1).
type AppSettings struct {
	ID                  int             `gorm:"primaryKey"`
	DefaultExchangeRate decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	VATRate             decimal.Decimal `gorm:"column:vat_rate;type:decimal(6,4);not null"`
	UpdatedAt           time.Time
}

func (AppSettings) TableName() string { return "app_settings" }
