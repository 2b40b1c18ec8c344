package audit

import (
	"context"

	"gorm.io/gorm"
)

type ListFilter struct {
	ActionType string
	ActionBy   string
	Page       int
	Limit      int
}

//go:generate mockgen -source=audit_repo.go -destination=mock/audit_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, log *Log) error
	List(ctx context.Context, filter ListFilter) ([]Log, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, log *Log) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Log, int64, error) {
	scoped := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&Log{})
		if filter.ActionType != "" {
			q = q.Where("action_type = ?", filter.ActionType)
		}
		if filter.ActionBy != "" {
			q = q.Where("action_by = ?", filter.ActionBy)
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []Log
	err := scoped().Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&logs).Error
	return logs, total, err
}
