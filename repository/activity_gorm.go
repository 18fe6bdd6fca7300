package repository

import (
	"context"

	"gorm.io/gorm"

	"studyplan-backend/models"
)

type GormActivityRepository struct {
	db *gorm.DB
}

func NewGormActivityRepository(db *gorm.DB) *GormActivityRepository {
	return &GormActivityRepository{db: db}
}

func (r *GormActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *GormActivityRepository) ListForPlans(ctx context.Context, planIDs []string, offset, limit int) ([]models.Activity, error) {
	if offset < 0 {
		return nil, ErrInvalidOffset
	}

	activities := make([]models.Activity, 0)
	if len(planIDs) == 0 {
		return activities, nil
	}

	err := r.db.WithContext(ctx).
		Where("plan_id IN ?", planIDs).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}
