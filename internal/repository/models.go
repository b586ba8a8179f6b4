package repository

import (
	"fmt"
	"strings"
	"time"

	"deptbook/internal/domain"

	"gorm.io/gorm"
)

type resourceModel struct {
	ID          string    `gorm:"column:id;primaryKey;size:64"`
	Name        string    `gorm:"column:name;not null"`
	Type        string    `gorm:"column:type;not null;default:room"`
	Description *string   `gorm:"column:description"`
	Capacity    int       `gorm:"column:capacity;not null;default:1"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (resourceModel) TableName() string { return "resources" }

type reservationModel struct {
	ID           string     `gorm:"column:id;primaryKey;size:36"`
	ResourceID   string     `gorm:"column:resource_id;not null;size:64;index:idx_reservations_resource_time,priority:1"`
	UserID       string     `gorm:"column:user_id;not null;index"`
	BookerName   *string    `gorm:"column:booker_name"`
	Title        string     `gorm:"column:title;not null"`
	Description  *string    `gorm:"column:description"`
	StartTime    time.Time  `gorm:"column:start_time;not null;index:idx_reservations_resource_time,priority:2"`
	EndTime      time.Time  `gorm:"column:end_time;not null"`
	Status       string     `gorm:"column:status;not null;size:16"`
	LinkedTaskID *string    `gorm:"column:linked_task_id"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	CancelledAt  *time.Time `gorm:"column:cancelled_at"`
	CancelledBy  *string    `gorm:"column:cancelled_by"`
}

func (reservationModel) TableName() string { return "reservations" }

type activityModel struct {
	ID         string            `gorm:"column:id;primaryKey;size:36"`
	UserID     string            `gorm:"column:user_id;index"`
	ActionType string            `gorm:"column:action_type;not null"`
	TargetID   string            `gorm:"column:target_id"`
	Metadata   map[string]string `gorm:"column:metadata;type:text;serializer:json"`
	CreatedAt  time.Time         `gorm:"column:created_at;index"`
}

func (activityModel) TableName() string { return "activity_logs" }

// AutoMigrate creates or updates every table the service owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&resourceModel{}, &reservationModel{}, &activityModel{})
}

func toDomainResource(m resourceModel) (*domain.Resource, error) {
	if m.ID == "" || strings.TrimSpace(m.Name) == "" {
		return nil, fmt.Errorf("%w: resource %q missing id or name", ErrCorruptRecord, m.ID)
	}
	return &domain.Resource{
		ID:          m.ID,
		Name:        m.Name,
		Type:        domain.ResourceType(m.Type),
		Description: deref(m.Description),
		Capacity:    m.Capacity,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}, nil
}

func toResourceModel(r *domain.Resource) resourceModel {
	return resourceModel{
		ID:          r.ID,
		Name:        r.Name,
		Type:        string(r.Type),
		Description: ref(r.Description),
		Capacity:    r.Capacity,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toDomainReservation(m reservationModel) (*domain.Reservation, error) {
	status, err := domain.ParseReservationStatus(m.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: reservation %s: %v", ErrCorruptRecord, m.ID, err)
	}
	if m.ID == "" || m.ResourceID == "" || m.UserID == "" {
		return nil, fmt.Errorf("%w: reservation %q missing identifiers", ErrCorruptRecord, m.ID)
	}
	if !m.StartTime.Before(m.EndTime) {
		return nil, fmt.Errorf("%w: reservation %s has empty interval", ErrCorruptRecord, m.ID)
	}

	r := &domain.Reservation{
		ID:           m.ID,
		ResourceID:   m.ResourceID,
		UserID:       m.UserID,
		BookerName:   deref(m.BookerName),
		Title:        m.Title,
		Description:  deref(m.Description),
		StartTime:    m.StartTime.UTC(),
		EndTime:      m.EndTime.UTC(),
		Status:       status,
		LinkedTaskID: deref(m.LinkedTaskID),
		CreatedAt:    m.CreatedAt.UTC(),
		CancelledBy:  deref(m.CancelledBy),
	}
	if m.CancelledAt != nil {
		t := m.CancelledAt.UTC()
		r.CancelledAt = &t
	}
	return r, nil
}

func toReservationModel(r *domain.Reservation) reservationModel {
	m := reservationModel{
		ID:           r.ID,
		ResourceID:   r.ResourceID,
		UserID:       r.UserID,
		BookerName:   ref(r.BookerName),
		Title:        r.Title,
		Description:  ref(r.Description),
		StartTime:    r.StartTime.UTC(),
		EndTime:      r.EndTime.UTC(),
		Status:       string(r.Status),
		LinkedTaskID: ref(r.LinkedTaskID),
		CreatedAt:    r.CreatedAt.UTC(),
		CancelledBy:  ref(r.CancelledBy),
	}
	if r.CancelledAt != nil {
		t := r.CancelledAt.UTC()
		m.CancelledAt = &t
	}
	return m
}

func toReservations(rows []reservationModel) ([]domain.Reservation, error) {
	out := make([]domain.Reservation, 0, len(rows))
	for _, row := range rows {
		r, err := toDomainReservation(row)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ref(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
