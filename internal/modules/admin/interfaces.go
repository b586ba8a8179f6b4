package admin

import (
	"context"
	"time"

	"deptbook/internal/domain"
)

type ActivityReader interface {
	ListRecent(ctx context.Context, limit int) ([]domain.ActivityEntry, error)
}

type ResourceLister interface {
	List(ctx context.Context) ([]domain.Resource, error)
}

type ReservationCounter interface {
	CountByStatus(ctx context.Context, since time.Time) (map[domain.ReservationStatus]int64, error)
}
