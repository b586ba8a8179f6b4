package booking

import (
	"context"
	"time"

	"deptbook/internal/domain"
	"deptbook/internal/repository"
	"deptbook/internal/scheduler"
)

// TimelineSlot is one hour of a resource's day.
type TimelineSlot struct {
	Start        time.Time            `json:"start"`
	End          time.Time            `json:"end"`
	Peak         int                  `json:"peak"`
	Capacity     int                  `json:"capacity"`
	Full         bool                 `json:"full"`
	Clickable    bool                 `json:"clickable"`
	Reservations []domain.Reservation `json:"reservations"`
}

type DayTimeline struct {
	ResourceID string         `json:"resource_id"`
	Date       string         `json:"date"`
	Capacity   int            `json:"capacity"`
	Slots      []TimelineSlot `json:"slots"`
}

// DayTimeline lays out the resource's confirmed reservations over hourly
// slots of the given local day (YYYY-MM-DD).
func (s *Service) DayTimeline(ctx context.Context, resourceID, date string) (*DayTimeline, error) {
	day, err := time.ParseInLocation("2006-01-02", date, s.opts.Location)
	if err != nil {
		return nil, &ValidationError{Field: "date", Message: "must be YYYY-MM-DD"}
	}

	resource, err := s.resources.GetByID(ctx, resourceID)
	if err != nil {
		return nil, translate(err)
	}

	open := time.Date(day.Year(), day.Month(), day.Day(), s.opts.TimelineStartHour, 0, 0, 0, s.opts.Location)
	closing := time.Date(day.Year(), day.Month(), day.Day(), s.opts.TimelineEndHour, 0, 0, 0, s.opts.Location)

	reservations, err := s.reservations.List(ctx, repository.ReservationFilter{
		ResourceID: resourceID,
		From:       open,
		To:         closing,
	})
	if err != nil {
		return nil, translate(err)
	}

	capacity := resource.EffectiveCapacity()
	now := s.now()
	out := &DayTimeline{
		ResourceID: resource.ID,
		Date:       date,
		Capacity:   capacity,
	}

	for start := open; start.Before(closing); start = start.Add(time.Hour) {
		slot := domain.Interval{Start: start.UTC(), End: start.Add(time.Hour).UTC()}

		var inSlot []domain.Reservation
		for _, r := range reservations {
			if r.IsConfirmed() && r.Interval().Overlaps(slot) {
				inSlot = append(inSlot, r)
			}
		}
		peak, _ := scheduler.Peak(slot, inSlot)
		full := peak >= capacity

		out.Slots = append(out.Slots, TimelineSlot{
			Start:        start,
			End:          start.Add(time.Hour),
			Peak:         peak,
			Capacity:     capacity,
			Full:         full,
			Clickable:    !full && slot.End.After(now),
			Reservations: inSlot,
		})
	}
	return out, nil
}
