package domain

import (
	"errors"
	"fmt"
	"time"
)

type ReservationStatus string

const (
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
)

var ErrUnknownStatus = errors.New("unknown reservation status")

func ParseReservationStatus(s string) (ReservationStatus, error) {
	switch ReservationStatus(s) {
	case ReservationConfirmed, ReservationCancelled:
		return ReservationStatus(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

func (s ReservationStatus) Valid() bool {
	return s == ReservationConfirmed || s == ReservationCancelled
}

// Interval is the half-open range [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

var ErrInvalidInterval = errors.New("interval start must be before end")

func NewInterval(start, end time.Time) (Interval, error) {
	iv := Interval{Start: start.UTC(), End: end.UTC()}
	if err := iv.Validate(); err != nil {
		return Interval{}, err
	}
	return iv, nil
}

func (iv Interval) Validate() error {
	if iv.Start.IsZero() || iv.End.IsZero() || !iv.Start.Before(iv.End) {
		return ErrInvalidInterval
	}
	return nil
}

// Overlaps reports whether the two intervals share an instant. Touching
// endpoints do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && t.Before(iv.End)
}

func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

type Reservation struct {
	ID           string            `json:"id"`
	ResourceID   string            `json:"resource_id"`
	UserID       string            `json:"user_id"`
	BookerName   string            `json:"booker_name,omitempty"`
	Title        string            `json:"title"`
	Description  string            `json:"description,omitempty"`
	StartTime    time.Time         `json:"start_time"`
	EndTime      time.Time         `json:"end_time"`
	Status       ReservationStatus `json:"status"`
	LinkedTaskID string            `json:"linked_task_id,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	CancelledAt  *time.Time        `json:"cancelled_at,omitempty"`
	CancelledBy  string            `json:"cancelled_by,omitempty"`
}

func (r Reservation) Interval() Interval {
	return Interval{Start: r.StartTime, End: r.EndTime}
}

func (r Reservation) IsConfirmed() bool {
	return r.Status == ReservationConfirmed
}

// ActiveAt reports whether the reservation holds capacity at instant t.
func (r Reservation) ActiveAt(t time.Time) bool {
	return r.IsConfirmed() && r.Interval().Contains(t)
}
