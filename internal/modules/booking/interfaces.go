package booking

import (
	"context"
	"time"

	"deptbook/internal/domain"
	"deptbook/internal/repository"
)

// ResourceReader is the booking path's read-only view of the resource registry.
type ResourceReader interface {
	GetByID(ctx context.Context, id string) (*domain.Resource, error)
	List(ctx context.Context) ([]domain.Resource, error)
}

// ReservationStore owns reservation rows.
type ReservationStore interface {
	WithTransaction(ctx context.Context, fn func(tx repository.ReadWriter) error) error
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	List(ctx context.Context, f repository.ReservationFilter) ([]domain.Reservation, error)
	ListActiveAt(ctx context.Context, resourceID string, at time.Time) ([]domain.Reservation, error)
}

// ActivityRecorder receives audit entries. Implementations must not block.
type ActivityRecorder interface {
	Record(ctx context.Context, userID string, action domain.ActivityAction, targetID string, metadata map[string]string)
}

// ChangeNotifier is told about every committed create or cancel.
type ChangeNotifier interface {
	ReservationChanged(ctx context.Context, kind ChangeKind, r domain.Reservation)
}

type ChangeKind string

const (
	ChangeCreated   ChangeKind = "reservation_created"
	ChangeCancelled ChangeKind = "reservation_cancelled"
)
