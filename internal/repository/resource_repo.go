package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"deptbook/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResourceRepository struct {
	db *gorm.DB
}

func NewResourceRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

func (r *ResourceRepository) GetByID(ctx context.Context, id string) (*domain.Resource, error) {
	var m resourceModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("resource %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return toDomainResource(m)
}

func (r *ResourceRepository) List(ctx context.Context) ([]domain.Resource, error) {
	var rows []resourceModel
	if err := r.db.WithContext(ctx).Order("name ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]domain.Resource, 0, len(rows))
	for _, row := range rows {
		res, err := toDomainResource(row)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, nil
}

func (r *ResourceRepository) Create(ctx context.Context, res *domain.Resource) error {
	now := time.Now().UTC()
	res.CreatedAt, res.UpdatedAt = now, now

	m := toResourceModel(res)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("resource %s: %w", res.ID, ErrDuplicate)
		}
		return err
	}
	return nil
}

func (r *ResourceRepository) Update(ctx context.Context, res *domain.Resource) error {
	res.UpdatedAt = time.Now().UTC()

	tx := r.db.WithContext(ctx).Model(&resourceModel{}).Where("id = ?", res.ID).Updates(map[string]any{
		"name":        res.Name,
		"type":        string(res.Type),
		"description": ref(res.Description),
		"capacity":    res.Capacity,
		"updated_at":  res.UpdatedAt,
	})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("resource %s: %w", res.ID, ErrNotFound)
	}
	return nil
}

// Upsert inserts the resource or refreshes name, type, description and
// capacity of an existing row with the same id.
func (r *ResourceRepository) Upsert(ctx context.Context, res *domain.Resource) error {
	now := time.Now().UTC()
	res.CreatedAt, res.UpdatedAt = now, now

	m := toResourceModel(res)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "type", "description", "capacity", "updated_at"}),
	}).Create(&m).Error
}
