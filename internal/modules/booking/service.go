package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"deptbook/internal/domain"
	"deptbook/internal/repository"
	"deptbook/internal/scheduler"

	"github.com/google/uuid"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 2000
	maxBookerNameLen  = 100
)

type Options struct {
	// MaxAttempts bounds how many times a transaction aborted by a
	// concurrent writer is run before giving up.
	MaxAttempts  int
	RetryBackoff time.Duration

	Location          *time.Location
	TimelineStartHour int
	TimelineEndHour   int
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts < 1 {
		o.MaxAttempts = 3
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.TimelineEndHour <= o.TimelineStartHour || o.TimelineEndHour > 24 || o.TimelineStartHour < 0 {
		o.TimelineStartHour, o.TimelineEndHour = 9, 23
	}
	return o
}

type Service struct {
	resources    ResourceReader
	reservations ReservationStore
	activity     ActivityRecorder
	notifier     ChangeNotifier
	opts         Options

	now   func() time.Time
	newID func() string
}

func NewService(
	resources ResourceReader,
	reservations ReservationStore,
	activity ActivityRecorder,
	notifier ChangeNotifier,
	opts Options,
) *Service {
	return &Service{
		resources:    resources,
		reservations: reservations,
		activity:     activity,
		notifier:     notifier,
		opts:         opts.withDefaults(),
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// CreateReservation books the interval if the resource has capacity left for
// it at every instant. The capacity check and the insert run in one
// transaction so concurrent callers cannot both take the last place.
func (s *Service) CreateReservation(ctx context.Context, actor domain.Actor, in CreateReservationInput) (*domain.Reservation, error) {
	span, err := validateCreate(actor, &in)
	if err != nil {
		return nil, err
	}

	resource, err := s.resources.GetByID(ctx, in.ResourceID)
	if err != nil {
		return nil, translate(err)
	}

	var created *domain.Reservation
	err = s.withRetry(ctx, "create_reservation", func() error {
		created = nil
		return s.reservations.WithTransaction(ctx, func(tx repository.ReadWriter) error {
			// Capacity is read again inside the transaction; an admin edit
			// between the lookup above and here must be honoured.
			res, err := tx.LockResource(ctx, in.ResourceID)
			if err != nil {
				return err
			}

			existing, err := tx.ListOverlapping(ctx, res.ID, span)
			if err != nil {
				return err
			}

			check := scheduler.CheckCapacity(res.EffectiveCapacity(), span, existing)
			if check.Exceeded {
				return &ConflictError{
					PeakCount:                check.PeakExisting,
					Capacity:                 check.Capacity,
					ConflictingOwnerID:       check.ConflictingOwnerID(),
					ConflictingReservationID: check.ConflictingReservationID(),
				}
			}

			r := &domain.Reservation{
				ID:           s.newID(),
				ResourceID:   res.ID,
				UserID:       actor.UserID,
				BookerName:   in.BookerName,
				Title:        in.Title,
				Description:  in.Description,
				StartTime:    span.Start,
				EndTime:      span.End,
				Status:       domain.ReservationConfirmed,
				LinkedTaskID: in.LinkedTaskID,
				CreatedAt:    normalize(s.now()),
			}
			if err := tx.InsertReservation(ctx, r); err != nil {
				return err
			}
			created = r
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, actor, ChangeCreated, *created, map[string]string{
		"title":       fmt.Sprintf("%s: %s", resource.Name, created.Title),
		"resource_id": created.ResourceID,
	})
	return created, nil
}

// CancelReservation marks the reservation cancelled. Only the owner or an
// admin may cancel. Cancelling twice is not an error.
func (s *Service) CancelReservation(ctx context.Context, actor domain.Actor, id string) (*domain.Reservation, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &ValidationError{Field: "id", Message: "reservation id is required"}
	}

	var (
		out     *domain.Reservation
		changed bool
	)
	err := s.withRetry(ctx, "cancel_reservation", func() error {
		out, changed = nil, false
		return s.reservations.WithTransaction(ctx, func(tx repository.ReadWriter) error {
			r, err := tx.GetReservation(ctx, id)
			if err != nil {
				return err
			}
			if !actor.CanManage(*r) {
				return ErrForbidden
			}
			if r.Status == domain.ReservationCancelled {
				out = r
				return nil
			}

			at := normalize(s.now())
			if err := tx.MarkCancelled(ctx, r.ID, actor.UserID, at); err != nil {
				return err
			}
			r.Status = domain.ReservationCancelled
			r.CancelledAt = &at
			r.CancelledBy = actor.UserID
			out, changed = r, true
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.afterCommit(ctx, actor, ChangeCancelled, *out, map[string]string{
			"title":       out.Title,
			"resource_id": out.ResourceID,
		})
	}
	return out, nil
}

func (s *Service) GetReservation(ctx context.Context, id string) (*domain.Reservation, error) {
	r, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return r, nil
}

// ListReservations returns the resource's reservations intersecting
// [from, to). Zero bounds are open.
func (s *Service) ListReservations(ctx context.Context, resourceID string, from, to time.Time, includeCancelled bool) ([]domain.Reservation, error) {
	if err := validateWindow(from, to); err != nil {
		return nil, err
	}
	if _, err := s.resources.GetByID(ctx, resourceID); err != nil {
		return nil, translate(err)
	}

	out, err := s.reservations.List(ctx, repository.ReservationFilter{
		ResourceID:       resourceID,
		From:             from,
		To:               to,
		IncludeCancelled: includeCancelled,
	})
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (s *Service) ListMyReservations(ctx context.Context, actor domain.Actor, from, to time.Time) ([]domain.Reservation, error) {
	if actor.UserID == "" {
		return nil, &ValidationError{Field: "user_id", Message: "actor is required"}
	}
	if err := validateWindow(from, to); err != nil {
		return nil, err
	}

	out, err := s.reservations.List(ctx, repository.ReservationFilter{
		UserID: actor.UserID,
		From:   from,
		To:     to,
	})
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (s *Service) withRetry(ctx context.Context, op string, fn func() error) error {
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrTxConflict) {
			return translate(err)
		}

		if attempt >= s.opts.MaxAttempts {
			log.Printf("tx_retry_exhausted op=%s attempts=%d error=%q", op, attempt, err.Error())
			return fmt.Errorf("%w: %s gave up after %d attempts", ErrRetryExhausted, op, attempt)
		}
		log.Printf("tx_retry op=%s attempt=%d error=%q", op, attempt, err.Error())

		wait := s.opts.RetryBackoff * time.Duration(attempt)
		if wait <= 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			continue
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// afterCommit notifies the audit and realtime collaborators. Nothing they do
// may fail or undo the committed operation.
func (s *Service) afterCommit(ctx context.Context, actor domain.Actor, kind ChangeKind, r domain.Reservation, metadata map[string]string) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("after_commit_panic kind=%s reservation_id=%s panic=%v", kind, r.ID, rec)
		}
	}()

	ctx = context.WithoutCancel(ctx)
	if s.activity != nil {
		action := domain.ActionReservationCreate
		if kind == ChangeCancelled {
			action = domain.ActionReservationCancel
		}
		s.activity.Record(ctx, actor.UserID, action, r.ID, metadata)
	}
	if s.notifier != nil {
		s.notifier.ReservationChanged(ctx, kind, r)
	}
}

func validateCreate(actor domain.Actor, in *CreateReservationInput) (domain.Interval, error) {
	if actor.UserID == "" {
		return domain.Interval{}, &ValidationError{Field: "user_id", Message: "actor is required"}
	}

	in.ResourceID = strings.TrimSpace(in.ResourceID)
	if in.ResourceID == "" {
		return domain.Interval{}, &ValidationError{Field: "resource_id", Message: "is required"}
	}

	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return domain.Interval{}, &ValidationError{Field: "title", Message: "must not be empty"}
	}
	if utf8.RuneCountInString(in.Title) > maxTitleLen {
		return domain.Interval{}, &ValidationError{Field: "title", Message: fmt.Sprintf("must be at most %d characters", maxTitleLen)}
	}
	if utf8.RuneCountInString(in.Description) > maxDescriptionLen {
		return domain.Interval{}, &ValidationError{Field: "description", Message: fmt.Sprintf("must be at most %d characters", maxDescriptionLen)}
	}
	in.BookerName = strings.TrimSpace(in.BookerName)
	if utf8.RuneCountInString(in.BookerName) > maxBookerNameLen {
		return domain.Interval{}, &ValidationError{Field: "booker_name", Message: fmt.Sprintf("must be at most %d characters", maxBookerNameLen)}
	}
	in.LinkedTaskID = strings.TrimSpace(in.LinkedTaskID)

	span, err := domain.NewInterval(normalize(in.Start), normalize(in.End))
	if err != nil {
		return domain.Interval{}, &ValidationError{Field: "end_time", Message: "must be after start_time"}
	}
	return span, nil
}

func validateWindow(from, to time.Time) error {
	if !from.IsZero() && !to.IsZero() && !from.Before(to) {
		return &ValidationError{Field: "to", Message: "must be after from"}
	}
	return nil
}

// normalize drops the zone, monotonic reading and sub-microsecond precision
// so stored and compared instants agree across databases.
func normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func translate(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
