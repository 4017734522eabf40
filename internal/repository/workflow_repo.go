package repository

import (
	"context"

	"github.com/Jassur2025/metallerp-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WorkflowOrderFilter struct {
	Status string
	Page
}

type WorkflowOrderRepository interface {
	Create(ctx context.Context, o *model.WorkflowOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.WorkflowOrder, error)
	List(ctx context.Context, filter WorkflowOrderFilter) ([]model.WorkflowOrder, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type workflowOrderRepo struct{ db *gorm.DB }

func NewWorkflowOrderRepository(db *gorm.DB) WorkflowOrderRepository {
	return &workflowOrderRepo{db: db}
}

func (r *workflowOrderRepo) Create(ctx context.Context, o *model.WorkflowOrder) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *workflowOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.WorkflowOrder, error) {
	var o model.WorkflowOrder
	err := r.db.WithContext(ctx).Preload("Items").First(&o, "id = ?", id).Error
	return &o, err
}

func (r *workflowOrderRepo) List(ctx context.Context, filter WorkflowOrderFilter) ([]model.WorkflowOrder, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.WorkflowOrder{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.WorkflowOrder
	err := filter.Page.apply(q.Preload("Items").Order("created_at DESC")).Find(&rows).Error
	return rows, total, err
}

func (r *workflowOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	res := r.db.WithContext(ctx).Model(&model.WorkflowOrder{}).Where("id = ?", id).Update("status", status)
	if res.Error == nil && res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return res.Error
}
