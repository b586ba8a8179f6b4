package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"deptbook/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReadWriter is the view of the store available inside a booking
// transaction. Every call runs on the transaction's connection.
type ReadWriter interface {
	LockResource(ctx context.Context, id string) (*domain.Resource, error)
	ListOverlapping(ctx context.Context, resourceID string, span domain.Interval) ([]domain.Reservation, error)
	InsertReservation(ctx context.Context, r *domain.Reservation) error
	GetReservation(ctx context.Context, id string) (*domain.Reservation, error)
	MarkCancelled(ctx context.Context, id, by string, at time.Time) error
}

// ReservationFilter narrows List. Zero values mean "no constraint".
type ReservationFilter struct {
	ResourceID       string
	UserID           string
	From             time.Time
	To               time.Time
	IncludeCancelled bool
}

type ReservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// WithTransaction runs fn inside a single database transaction. On
// PostgreSQL the transaction is SERIALIZABLE. Failures caused by a
// concurrent transaction are reported as ErrTxConflict.
func (r *ReservationRepository) WithTransaction(ctx context.Context, fn func(tx ReadWriter) error) error {
	var opts []*sql.TxOptions
	if isPostgres(r.db) {
		opts = append(opts, &sql.TxOptions{Isolation: sql.LevelSerializable})
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txStore{db: tx})
	}, opts...)
	if err != nil && !errors.Is(err, ErrTxConflict) && IsTransient(err) {
		return fmt.Errorf("%w: %w", ErrTxConflict, err)
	}
	return err
}

func (r *ReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	return getReservation(ctx, r.db, id)
}

// List returns reservations matching the filter ordered by start time.
func (r *ReservationRepository) List(ctx context.Context, f ReservationFilter) ([]domain.Reservation, error) {
	q := r.db.WithContext(ctx).Model(&reservationModel{})
	if f.ResourceID != "" {
		q = q.Where("resource_id = ?", f.ResourceID)
	}
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if !f.To.IsZero() {
		q = q.Where("start_time < ?", f.To.UTC())
	}
	if !f.From.IsZero() {
		q = q.Where("end_time > ?", f.From.UTC())
	}
	if !f.IncludeCancelled {
		q = q.Where("status = ?", string(domain.ReservationConfirmed))
	}

	var rows []reservationModel
	if err := q.Order("start_time ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toReservations(rows)
}

// CountByStatus counts reservations per status, optionally only those
// ending after since.
func (r *ReservationRepository) CountByStatus(ctx context.Context, since time.Time) (map[domain.ReservationStatus]int64, error) {
	q := r.db.WithContext(ctx).Model(&reservationModel{})
	if !since.IsZero() {
		q = q.Where("end_time > ?", since.UTC())
	}

	var rows []struct {
		Status string
		Total  int64
	}
	if err := q.Select("status, COUNT(*) AS total").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[domain.ReservationStatus]int64, len(rows))
	for _, row := range rows {
		out[domain.ReservationStatus(row.Status)] = row.Total
	}
	return out, nil
}

// ListActiveAt returns confirmed reservations of the resource that hold
// capacity at the given instant.
func (r *ReservationRepository) ListActiveAt(ctx context.Context, resourceID string, at time.Time) ([]domain.Reservation, error) {
	at = at.UTC()

	var rows []reservationModel
	err := r.db.WithContext(ctx).
		Where("resource_id = ? AND status = ? AND start_time <= ? AND end_time > ?",
			resourceID, string(domain.ReservationConfirmed), at, at).
		Order("start_time ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toReservations(rows)
}

type txStore struct {
	db *gorm.DB
}

func (s *txStore) LockResource(ctx context.Context, id string) (*domain.Resource, error) {
	q := s.db.WithContext(ctx)
	if isPostgres(s.db) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var m resourceModel
	if err := q.First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("resource %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return toDomainResource(m)
}

func (s *txStore) ListOverlapping(ctx context.Context, resourceID string, span domain.Interval) ([]domain.Reservation, error) {
	var rows []reservationModel
	err := s.db.WithContext(ctx).
		Where("resource_id = ? AND status = ? AND start_time < ? AND end_time > ?",
			resourceID, string(domain.ReservationConfirmed), span.End.UTC(), span.Start.UTC()).
		Order("start_time ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toReservations(rows)
}

func (s *txStore) InsertReservation(ctx context.Context, r *domain.Reservation) error {
	m := toReservationModel(r)
	return s.db.WithContext(ctx).Create(&m).Error
}

func (s *txStore) GetReservation(ctx context.Context, id string) (*domain.Reservation, error) {
	return getReservation(ctx, s.db, id)
}

func (s *txStore) MarkCancelled(ctx context.Context, id, by string, at time.Time) error {
	tx := s.db.WithContext(ctx).Model(&reservationModel{}).
		Where("id = ? AND status = ?", id, string(domain.ReservationConfirmed)).
		Updates(map[string]any{
			"status":       string(domain.ReservationCancelled),
			"cancelled_at": at.UTC(),
			"cancelled_by": ref(by),
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("confirmed reservation %s: %w", id, ErrNotFound)
	}
	return nil
}

func getReservation(ctx context.Context, db *gorm.DB, id string) (*domain.Reservation, error) {
	var m reservationModel
	if err := db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("reservation %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return toDomainReservation(m)
}

func isPostgres(db *gorm.DB) bool {
	return db.Dialector != nil && db.Dialector.Name() == "postgres"
}
