package repository

import (
	"context"
	"time"

	"github.com/Jassur2025/metallerp-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionFilter struct {
	Type      string
	Method    string
	RelatedID *uuid.UUID
	From      *time.Time
	To        *time.Time
	Page
}

// BalanceKey identifies one till or account.
type BalanceKey struct {
	Method   string
	Currency string
}

type TransactionRepository interface {
	CreateTx(tx *gorm.DB, t *model.Transaction) error
	List(ctx context.Context, filter TransactionFilter) ([]model.Transaction, int64, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Transaction, error)
	ListAll(ctx context.Context) ([]model.Transaction, error)
	// SumByMethodCurrency nets inflows minus outflows per till/account.
	SumByMethodCurrency(ctx context.Context) (map[BalanceKey]decimal.Decimal, error)

	DB() *gorm.DB
}

type transactionRepo struct{ db *gorm.DB }

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db: db}
}

func (r *transactionRepo) CreateTx(tx *gorm.DB, t *model.Transaction) error {
	return tx.Create(t).Error
}

func (r *transactionRepo) DB() *gorm.DB { return r.db }

func (r *transactionRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Transaction, error) {
	var rows []model.Transaction
	if len(ids) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("date").Find(&rows).Error
	return rows, err
}

func (r *transactionRepo) ListAll(ctx context.Context) ([]model.Transaction, error) {
	var rows []model.Transaction
	err := r.db.WithContext(ctx).Order("date, created_at").Find(&rows).Error
	return rows, err
}

func (r *transactionRepo) List(ctx context.Context, filter TransactionFilter) ([]model.Transaction, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Transaction{})
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Method != "" {
		q = q.Where("method = ?", filter.Method)
	}
	if filter.RelatedID != nil {
		q = q.Where("related_id = ?", *filter.RelatedID)
	}
	if filter.From != nil {
		q = q.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("date < ?", *filter.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.Transaction
	err := filter.Page.apply(q.Order("date DESC, created_at DESC")).Find(&rows).Error
	return rows, total, err
}

func (r *transactionRepo) SumByMethodCurrency(ctx context.Context) (map[BalanceKey]decimal.Decimal, error) {
	var rows []struct {
		Method   string
		Currency string
		Total    decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Select(`method, currency,
			SUM(CASE WHEN type IN (?) THEN -amount ELSE amount END) AS total`,
			[]string{model.TxSupplierPayment, model.TxExpense, model.TxWithdrawal}).
		Group("method, currency").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[BalanceKey]decimal.Decimal, len(rows))
	for _, row := range rows {
		out[BalanceKey{Method: row.Method, Currency: row.Currency}] = row.Total
	}
	return out, nil
}
