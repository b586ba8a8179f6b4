package repository

import (
	"context"

	"deptbook/internal/domain"

	"gorm.io/gorm"
)

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, e *domain.ActivityEntry) error {
	m := activityModel{
		ID:         e.ID,
		UserID:     e.UserID,
		ActionType: string(e.Action),
		TargetID:   e.TargetID,
		Metadata:   e.Metadata,
		CreatedAt:  e.CreatedAt.UTC(),
	}
	return r.db.WithContext(ctx).Create(&m).Error
}

// ListRecent returns the newest entries first.
func (r *ActivityRepository) ListRecent(ctx context.Context, limit int) ([]domain.ActivityEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows []activityModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]domain.ActivityEntry, 0, len(rows))
	for _, m := range rows {
		out = append(out, domain.ActivityEntry{
			ID:        m.ID,
			UserID:    m.UserID,
			Action:    domain.ActivityAction(m.ActionType),
			TargetID:  m.TargetID,
			Metadata:  m.Metadata,
			CreatedAt: m.CreatedAt.UTC(),
		})
	}
	return out, nil
}
