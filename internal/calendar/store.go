// Package calendar is the boundary to the external calendar that acts as the
// system of record for appointments.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when an event ID does not exist (or no longer exists).
	ErrNotFound = errors.New("calendar: event not found")
	// ErrUnavailable covers transport, auth, quota and timeout failures.
	ErrUnavailable = errors.New("calendar: store unavailable")
)

// VisibilityPublic marks an event as visible to anyone who can see the calendar.
const VisibilityPublic = "public"

// Event is an appointment as stored in the calendar.
type Event struct {
	ID          string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	// TimeZone is the IANA zone the start/end wall clock belongs to.
	TimeZone   string
	Visibility string
	Status     string
}

// Store is the narrow set of calendar operations the scheduler needs. The
// calendar ID is bound when the store is constructed. Implementations must be
// safe for concurrent use.
type Store interface {
	// ListEvents returns every event whose interval intersects [timeMin, timeMax).
	ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]Event, error)
	// InsertEvent creates the event and returns it with the store-assigned ID.
	InsertEvent(ctx context.Context, event Event) (Event, error)
	// DeleteEvent removes an event by ID.
	DeleteEvent(ctx context.Context, eventID string) error
}

type timeoutStore struct {
	next    Store
	timeout time.Duration
}

// WithTimeout bounds every call on next. A call that runs out of time is
// reported as ErrUnavailable.
func WithTimeout(next Store, timeout time.Duration) Store {
	if timeout <= 0 {
		return next
	}
	return &timeoutStore{next: next, timeout: timeout}
}

func (s *timeoutStore) ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	events, err := s.next.ListEvents(ctx, timeMin, timeMax)
	return events, timeoutError(ctx, err)
}

func (s *timeoutStore) InsertEvent(ctx context.Context, event Event) (Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	created, err := s.next.InsertEvent(ctx, event)
	return created, timeoutError(ctx, err)
}

func (s *timeoutStore) DeleteEvent(ctx context.Context, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return timeoutError(ctx, s.next.DeleteEvent(ctx, eventID))
}

func timeoutError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUnavailable) || errors.Is(err, ErrNotFound) {
		return err
	}
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}
