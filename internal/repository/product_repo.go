package repository

import (
	"context"

	"github.com/Jassur2025/metallerp-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductFilter narrows product listings. Warehouse "" means all warehouses.
type ProductFilter struct {
	Name      string
	Type      string
	Warehouse string
	Page
}

// ProductRepository defines the data access contract for stock rows.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via in-memory stubs.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	// FindByID returns every warehouse row of a catalog id.
	FindByID(ctx context.Context, id uuid.UUID) ([]model.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error)
	ListAll(ctx context.Context) ([]model.Product, error)
	// LowStock lists rows at or below their minimum stock level.
	LowStock(ctx context.Context) ([]model.Product, error)
	Update(ctx context.Context, p *model.Product) error

	// Used inside transactions; callers pass the tx instance
	SaveTx(tx *gorm.DB, p *model.Product) error
	// RetagTx moves an untagged legacy row into a warehouse.
	RetagTx(tx *gorm.DB, id uuid.UUID, from, to string) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) DB() *gorm.DB { return r.db }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) ([]model.Product, error) {
	var rows []model.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).Order("warehouse").Find(&rows).Error
	if err == nil && len(rows) == 0 {
		err = gorm.ErrRecordNotFound
	}
	return rows, err
}

func (r *productRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	var rows []model.Product
	if len(ids) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error
	return rows, err
}

func (r *productRepo) List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Product{})
	if filter.Name != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Warehouse != "" {
		q = q.Where("warehouse = ?", filter.Warehouse)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.Product
	err := filter.Page.apply(q.Order("name, warehouse")).Find(&rows).Error
	return rows, total, err
}

func (r *productRepo) ListAll(ctx context.Context) ([]model.Product, error) {
	var rows []model.Product
	err := r.db.WithContext(ctx).Order("name, warehouse").Find(&rows).Error
	return rows, err
}

func (r *productRepo) LowStock(ctx context.Context) ([]model.Product, error) {
	var rows []model.Product
	err := r.db.WithContext(ctx).
		Where("min_stock_level > 0 AND quantity <= min_stock_level").
		Order("quantity - min_stock_level").
		Find(&rows).Error
	return rows, err
}

func (r *productRepo) Update(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productRepo) SaveTx(tx *gorm.DB, p *model.Product) error {
	return tx.Save(p).Error
}

func (r *productRepo) RetagTx(tx *gorm.DB, id uuid.UUID, from, to string) error {
	return tx.Model(&model.Product{}).
		Where("id = ? AND warehouse = ?", id, from).
		Update("warehouse", to).Error
}
