package repository

import (
	"context"

	"github.com/Jassur2025/metallerp-sub000/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsRepository interface {
	// Get returns gorm.ErrRecordNotFound until settings are saved once.
	Get(ctx context.Context) (*model.AppSettings, error)
	Save(ctx context.Context, s *model.AppSettings) error
}

type settingsRepo struct{ db *gorm.DB }

func NewSettingsRepository(db *gorm.DB) SettingsRepository { return &settingsRepo{db: db} }

func (r *settingsRepo) Get(ctx context.Context) (*model.AppSettings, error) {
	var s model.AppSettings
	err := r.db.WithContext(ctx).First(&s, "id = ?", 1).Error
	return &s, err
}

func (r *settingsRepo) Save(ctx context.Context, s *model.AppSettings) error {
	s.ID = 1
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(s).Error
}
