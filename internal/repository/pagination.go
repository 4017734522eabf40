package repository

import "gorm.io/gorm"

// Page is 1-based; Limit is clamped to (0, 500], default 100.
type Page struct {
	Page  int
	Limit int
}

func (p Page) apply(q *gorm.DB) *gorm.DB {
	page, limit := p.Page, p.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	return q.Offset((page - 1) * limit).Limit(limit)
}
