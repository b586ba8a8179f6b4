package admin

import (
	"context"
	"time"

	"deptbook/internal/domain"
)

const maxActivityLimit = 200

type Service struct {
	activity     ActivityReader
	resources    ResourceLister
	reservations ReservationCounter
	now          func() time.Time
}

func NewService(activity ActivityReader, resources ResourceLister, reservations ReservationCounter) *Service {
	return &Service{
		activity:     activity,
		resources:    resources,
		reservations: reservations,
		now:          time.Now,
	}
}

// RecentActivity returns the newest audit entries. limit is clamped to
// [1, 200]; zero means 50.
func (s *Service) RecentActivity(ctx context.Context, limit int) ([]domain.ActivityEntry, error) {
	switch {
	case limit <= 0:
		limit = 50
	case limit > maxActivityLimit:
		limit = maxActivityLimit
	}
	return s.activity.ListRecent(ctx, limit)
}

func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	resources, err := s.resources.List(ctx)
	if err != nil {
		return nil, err
	}

	all, err := s.reservations.CountByStatus(ctx, time.Time{})
	if err != nil {
		return nil, err
	}
	upcoming, err := s.reservations.CountByStatus(ctx, s.now())
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		Resources:             len(resources),
		ConfirmedReservations: all[domain.ReservationConfirmed],
		CancelledReservations: all[domain.ReservationCancelled],
		UpcomingReservations:  upcoming[domain.ReservationConfirmed],
	}
	for _, r := range resources {
		stats.TotalCapacity += r.EffectiveCapacity()
	}
	return stats, nil
}
