package repository

import (
	"context"
	"time"

	"github.com/Jassur2025/metallerp-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PurchaseFilter struct {
	Supplier string
	Status   string
	From     *time.Time
	To       *time.Time
	Page
}

type PurchaseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Purchase, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Purchase, error)
	ListAll(ctx context.Context) ([]model.Purchase, error)
	List(ctx context.Context, filter PurchaseFilter) ([]model.Purchase, int64, error)
	// ListOpen returns every purchase that is not fully paid.
	ListOpen(ctx context.Context) ([]model.Purchase, error)
	// ListLegacy returns rows still written in the pre-UZS schema.
	ListLegacy(ctx context.Context) ([]model.Purchase, error)

	// Used inside transactions; callers pass the tx instance
	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Purchase, error)
	CreateTx(tx *gorm.DB, p *model.Purchase) error
	// SaveTx rewrites the header and all items of p.
	SaveTx(tx *gorm.DB, p *model.Purchase) error
	DeleteItemTx(tx *gorm.DB, itemID uuid.UUID) error
}

type purchaseRepo struct{ db *gorm.DB }

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository { return &purchaseRepo{db: db} }

func preloadItems(q *gorm.DB) *gorm.DB {
	return q.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") })
}

func (r *purchaseRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Purchase, error) {
	var p model.Purchase
	err := preloadItems(r.db.WithContext(ctx)).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *purchaseRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Purchase, error) {
	var rows []model.Purchase
	if len(ids) == 0 {
		return rows, nil
	}
	err := preloadItems(r.db.WithContext(ctx)).Where("id IN ?", ids).Order("date").Find(&rows).Error
	return rows, err
}

func (r *purchaseRepo) ListAll(ctx context.Context) ([]model.Purchase, error) {
	var rows []model.Purchase
	err := preloadItems(r.db.WithContext(ctx)).Order("date").Find(&rows).Error
	return rows, err
}

func (r *purchaseRepo) List(ctx context.Context, filter PurchaseFilter) ([]model.Purchase, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Purchase{})
	if filter.Supplier != "" {
		q = q.Where("supplier_name ILIKE ?", "%"+filter.Supplier+"%")
	}
	if filter.Status != "" {
		q = q.Where("payment_status = ?", filter.Status)
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
	var rows []model.Purchase
	err := filter.Page.apply(preloadItems(q).Order("date DESC")).Find(&rows).Error
	return rows, total, err
}

func (r *purchaseRepo) ListOpen(ctx context.Context) ([]model.Purchase, error) {
	var rows []model.Purchase
	err := r.db.WithContext(ctx).Where("payment_status <> ?", model.StatusPaid).Order("date").Find(&rows).Error
	return rows, err
}

func (r *purchaseRepo) ListLegacy(ctx context.Context) ([]model.Purchase, error) {
	var rows []model.Purchase
	err := preloadItems(r.db.WithContext(ctx)).Where("total_invoice_amount_uzs = 0").Order("date").Find(&rows).Error
	return rows, err
}

func (r *purchaseRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Purchase, error) {
	var p model.Purchase
	err := preloadItems(tx.Clauses(clause.Locking{Strength: "UPDATE"})).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *purchaseRepo) CreateTx(tx *gorm.DB, p *model.Purchase) error {
	return tx.Create(p).Error
}

func (r *purchaseRepo) SaveTx(tx *gorm.DB, p *model.Purchase) error {
	return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(p).Error
}

func (r *purchaseRepo) DeleteItemTx(tx *gorm.DB, itemID uuid.UUID) error {
	return tx.Delete(&model.PurchaseItem{}, "id = ?", itemID).Error
}
