package dto

import "github.com/shopspring/decimal"

type UpdateSettingsRequest struct {
	DefaultExchangeRate decimal.Decimal `json:"default_exchange_rate" validate:"required,gt=0"`
	VATRate             decimal.Decimal `json:"vat_rate"              validate:"min=0,lt=1"`
}

type SettingsResponse struct {
	DefaultExchangeRate decimal.Decimal `json:"default_exchange_rate"`
	VATRate             decimal.Decimal `json:"vat_rate"`
	ImportTaxPolicy     string          `json:"import_tax_policy"`
	ToleranceUSD        decimal.Decimal `json:"tolerance_usd"`
	ToleranceUZS        decimal.Decimal `json:"tolerance_uzs"`
	// Persisted is false while the values still come from the environment.
	Persisted bool   `json:"persisted"`
	UpdatedAt string `json:"updated_at,omitempty"`
}
