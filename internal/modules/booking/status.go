package booking

import (
	"context"
	"math"
	"sort"
	"time"

	"deptbook/internal/domain"
)

type OccupancyState string

const (
	StateAvailable OccupancyState = "available"
	StatePartial   OccupancyState = "partial"
	StateOccupied  OccupancyState = "occupied"
)

// StatusSnapshot is the occupancy of one resource at one instant.
type StatusSnapshot struct {
	ResourceID       string               `json:"resource_id"`
	ResourceName     string               `json:"resource_name"`
	At               time.Time            `json:"at"`
	State            OccupancyState       `json:"state"`
	CurrentCount     int                  `json:"current_count"`
	Capacity         int                  `json:"capacity"`
	IsFull           bool                 `json:"is_full"`
	Clickable        bool                 `json:"clickable"`
	RemainingMinutes int                  `json:"remaining_minutes"`
	Primary          *domain.Reservation  `json:"primary,omitempty"`
	OverflowCount    int                  `json:"overflow_count"`
	Active           []domain.Reservation `json:"active_reservations"`
}

// GetStatus projects the resource's occupancy at the given instant, or now
// when at is zero. It performs no writes.
func (s *Service) GetStatus(ctx context.Context, resourceID string, at time.Time) (*StatusSnapshot, error) {
	if at.IsZero() {
		at = s.now()
	}

	resource, err := s.resources.GetByID(ctx, resourceID)
	if err != nil {
		return nil, translate(err)
	}

	active, err := s.reservations.ListActiveAt(ctx, resourceID, at)
	if err != nil {
		return nil, translate(err)
	}

	snap := Project(*resource, active, at)
	return &snap, nil
}

// Dashboard returns the snapshot of every resource, ordered by name.
func (s *Service) Dashboard(ctx context.Context, at time.Time) ([]StatusSnapshot, error) {
	if at.IsZero() {
		at = s.now()
	}

	resources, err := s.resources.List(ctx)
	if err != nil {
		return nil, translate(err)
	}

	out := make([]StatusSnapshot, 0, len(resources))
	for _, res := range resources {
		active, err := s.reservations.ListActiveAt(ctx, res.ID, at)
		if err != nil {
			return nil, translate(err)
		}
		out = append(out, Project(res, active, at))
	}
	return out, nil
}

// Project computes a snapshot from a resource and any superset of its
// reservations; entries not active at the instant are ignored.
func Project(resource domain.Resource, reservations []domain.Reservation, at time.Time) StatusSnapshot {
	at = normalize(at)

	active := make([]domain.Reservation, 0, len(reservations))
	for _, r := range reservations {
		if r.ResourceID == resource.ID && r.ActiveAt(at) {
			active = append(active, r)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		if !active[i].StartTime.Equal(active[j].StartTime) {
			return active[i].StartTime.Before(active[j].StartTime)
		}
		return active[i].ID < active[j].ID
	})

	capacity := resource.EffectiveCapacity()
	count := len(active)

	snap := StatusSnapshot{
		ResourceID:   resource.ID,
		ResourceName: resource.Name,
		At:           at,
		CurrentCount: count,
		Capacity:     capacity,
		IsFull:       count >= capacity,
		Active:       active,
	}
	snap.Clickable = !snap.IsFull

	switch {
	case count == 0:
		snap.State = StateAvailable
		return snap
	case count < capacity:
		snap.State = StatePartial
	default:
		snap.State = StateOccupied
	}

	earliest := active[0].EndTime
	for _, r := range active[1:] {
		if r.EndTime.Before(earliest) {
			earliest = r.EndTime
		}
	}
	snap.RemainingMinutes = int(math.Ceil(earliest.Sub(at).Minutes()))

	primary := active[0]
	snap.Primary = &primary
	snap.OverflowCount = count - 1
	return snap
}
