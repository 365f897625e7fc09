package calendar

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps events in process. It backs local development
// (CALENDAR_BACKEND=memory) and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[string]Event
}

// NewMemoryStore creates an empty in-memory calendar.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{events: make(map[string]Event)}
}

// ListEvents returns events overlapping [timeMin, timeMax) ordered by start.
// Touching intervals do not overlap.
func (s *MemoryStore) ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Event
	for _, ev := range s.events {
		if ev.Start.Before(timeMax) && ev.End.After(timeMin) {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start.Equal(out[j].Start) {
			return out[i].ID < out[j].ID
		}
		return out[i].Start.Before(out[j].Start)
	})
	return out, nil
}

// InsertEvent stores the event under a fresh ID.
func (s *MemoryStore) InsertEvent(ctx context.Context, event Event) (Event, error) {
	if err := ctx.Err(); err != nil {
		return Event{}, err
	}
	event.ID = uuid.NewString()
	if event.Status == "" {
		event.Status = "confirmed"
	}

	s.mu.Lock()
	s.events[event.ID] = event
	s.mu.Unlock()
	return event, nil
}

// DeleteEvent removes the event or returns ErrNotFound.
func (s *MemoryStore) DeleteEvent(ctx context.Context, eventID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[eventID]; !ok {
		return ErrNotFound
	}
	delete(s.events, eventID)
	return nil
}

// Len returns the number of stored events.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}
