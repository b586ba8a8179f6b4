// Package scheduler answers whether a candidate interval fits into a
// resource's capacity given the reservations already holding it.
package scheduler

import (
	"sort"
	"time"

	"deptbook/internal/domain"
)

// candidateIdx marks the candidate interval in the event list.
const candidateIdx = -1

type event struct {
	at    time.Time
	delta int
	idx   int
}

// CapacityCheck is the outcome of sweeping a candidate against existing
// reservations.
type CapacityCheck struct {
	Capacity      int
	MaxConcurrent int
	// PeakExisting is the number of existing reservations active at the peak.
	PeakExisting int
	Exceeded     bool
	// Conflicting lists the existing reservations active at the first instant
	// the peak is reached, ordered by start time.
	Conflicting []domain.Reservation
}

// ConflictingOwnerID returns the owner of the earliest-starting reservation
// at the bottleneck, or "" when nothing conflicts.
func (c CapacityCheck) ConflictingOwnerID() string {
	if len(c.Conflicting) == 0 {
		return ""
	}
	return c.Conflicting[0].UserID
}

// ConflictingReservationID is the id matching ConflictingOwnerID.
func (c CapacityCheck) ConflictingReservationID() string {
	if len(c.Conflicting) == 0 {
		return ""
	}
	return c.Conflicting[0].ID
}

// CheckCapacity computes the maximum number of simultaneously active
// reservations over the candidate interval, counting the candidate itself.
// Entries that are not confirmed or do not intersect the candidate are
// ignored, and existing intervals are clipped to the candidate so every
// reported peak lies inside it.
func CheckCapacity(capacity int, candidate domain.Interval, existing []domain.Reservation) CapacityCheck {
	if capacity < 1 {
		capacity = 1
	}

	events := []event{
		{at: candidate.Start, delta: +1, idx: candidateIdx},
		{at: candidate.End, delta: -1, idx: candidateIdx},
	}
	events = appendClipped(events, candidate, existing)

	peak, active := sweep(events)

	res := CapacityCheck{
		Capacity:      capacity,
		MaxConcurrent: peak,
		PeakExisting:  peak - 1,
		Exceeded:      peak > capacity,
	}
	if res.Exceeded {
		res.Conflicting = collect(existing, active)
	}
	return res
}

// Peak returns the maximum number of confirmed reservations simultaneously
// active inside window, along with those active at the first peak instant.
func Peak(window domain.Interval, reservations []domain.Reservation) (int, []domain.Reservation) {
	events := appendClipped(nil, window, reservations)
	if len(events) == 0 {
		return 0, nil
	}
	peak, active := sweep(events)
	return peak, collect(reservations, active)
}

func appendClipped(events []event, window domain.Interval, items []domain.Reservation) []event {
	for i, r := range items {
		if !r.IsConfirmed() || !r.Interval().Overlaps(window) {
			continue
		}
		start, end := r.StartTime, r.EndTime
		if start.Before(window.Start) {
			start = window.Start
		}
		if end.After(window.End) {
			end = window.End
		}
		events = append(events,
			event{at: start, delta: +1, idx: i},
			event{at: end, delta: -1, idx: i},
		)
	}
	return events
}

// sweep orders events by instant with ends before starts at equal instants,
// so back-to-back intervals never count as concurrent.
func sweep(events []event) (int, []int) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !a.at.Equal(b.at) {
			return a.at.Before(b.at)
		}
		if a.delta != b.delta {
			return a.delta < b.delta
		}
		return a.idx < b.idx
	})

	live := make(map[int]struct{})
	current, peak := 0, 0
	var atPeak []int
	for _, e := range events {
		current += e.delta
		if e.delta < 0 {
			delete(live, e.idx)
			continue
		}
		live[e.idx] = struct{}{}
		if current > peak {
			peak = current
			atPeak = atPeak[:0]
			for idx := range live {
				atPeak = append(atPeak, idx)
			}
		}
	}
	return peak, atPeak
}

func collect(items []domain.Reservation, idxs []int) []domain.Reservation {
	out := make([]domain.Reservation, 0, len(idxs))
	for _, idx := range idxs {
		if idx == candidateIdx {
			continue
		}
		out = append(out, items[idx])
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
