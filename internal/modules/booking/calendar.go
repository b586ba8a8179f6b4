package booking

import (
	"context"
	"time"

	"deptbook/internal/domain"

	ical "github.com/arran4/golang-ical"
)

const (
	calendarLookBack  = 30 * 24 * time.Hour
	calendarLookAhead = 90 * 24 * time.Hour
)

// CalendarFeed renders the resource's confirmed reservations in [from, to)
// as an iCalendar document. Zero bounds default to a window around now.
func (s *Service) CalendarFeed(ctx context.Context, resourceID string, from, to time.Time) (string, error) {
	now := s.now()
	if from.IsZero() {
		from = now.Add(-calendarLookBack)
	}
	if to.IsZero() {
		to = now.Add(calendarLookAhead)
	}

	resource, err := s.resources.GetByID(ctx, resourceID)
	if err != nil {
		return "", translate(err)
	}

	reservations, err := s.ListReservations(ctx, resourceID, from, to, false)
	if err != nil {
		return "", err
	}
	return buildCalendar(*resource, reservations, now), nil
}

func buildCalendar(resource domain.Resource, reservations []domain.Reservation, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//deptbook//reservations//EN")
	cal.SetXWRCalName(resource.Name)

	for _, r := range reservations {
		event := cal.AddEvent(r.ID + "@deptbook")
		event.SetDtStampTime(stamp.UTC())
		event.SetCreatedTime(r.CreatedAt)
		event.SetStartAt(r.StartTime)
		event.SetEndAt(r.EndTime)
		event.SetSummary(r.Title)
		event.SetLocation(resource.Name)
		if r.Description != "" {
			event.SetDescription(r.Description)
		}
		event.SetStatus(ical.ObjectStatusConfirmed)
	}
	return cal.Serialize()
}
