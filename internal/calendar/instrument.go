package calendar

import (
	"context"
	"errors"
	"time"
)

// Observer receives one callback per store request.
type Observer interface {
	ObserveCalendarCall(op, outcome string, seconds float64)
}

type instrumentedStore struct {
	next Store
	obs  Observer
}

// Instrument reports the latency and outcome of every call on next to obs.
func Instrument(next Store, obs Observer) Store {
	if obs == nil {
		return next
	}
	return &instrumentedStore{next: next, obs: obs}
}

func (s *instrumentedStore) ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]Event, error) {
	start := time.Now()
	events, err := s.next.ListEvents(ctx, timeMin, timeMax)
	s.obs.ObserveCalendarCall("list_events", outcome(err), time.Since(start).Seconds())
	return events, err
}

func (s *instrumentedStore) InsertEvent(ctx context.Context, event Event) (Event, error) {
	start := time.Now()
	created, err := s.next.InsertEvent(ctx, event)
	s.obs.ObserveCalendarCall("insert_event", outcome(err), time.Since(start).Seconds())
	return created, err
}

func (s *instrumentedStore) DeleteEvent(ctx context.Context, eventID string) error {
	start := time.Now()
	err := s.next.DeleteEvent(ctx, eventID)
	s.obs.ObserveCalendarCall("delete_event", outcome(err), time.Since(start).Seconds())
	return err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	}
	return "error"
}
