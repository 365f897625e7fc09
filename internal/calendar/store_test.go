package calendar

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2030, 3, 10, hour, minute, 0, 0, time.UTC)
}

func TestMemoryStoreOverlapSemantics(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	created, err := store.InsertEvent(ctx, Event{Summary: "Cleaning – Dr.Badr", Start: at(14, 0), End: at(15, 0)})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "confirmed", created.Status)

	tests := []struct {
		name     string
		min, max time.Time
		want     int
	}{
		{name: "same window", min: at(14, 0), max: at(15, 0), want: 1},
		{name: "partial overlap start", min: at(13, 30), max: at(14, 30), want: 1},
		{name: "contained", min: at(14, 15), max: at(14, 45), want: 1},
		{name: "touching before", min: at(13, 0), max: at(14, 0), want: 0},
		{name: "touching after", min: at(15, 0), max: at(16, 0), want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := store.ListEvents(ctx, tt.min, tt.max)
			require.NoError(t, err)
			assert.Len(t, events, tt.want)
		})
	}
}

func TestMemoryStoreOrdersByStart(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_, _ = store.InsertEvent(ctx, Event{Summary: "late", Start: at(16, 0), End: at(17, 0)})
	_, _ = store.InsertEvent(ctx, Event{Summary: "early", Start: at(9, 0), End: at(10, 0)})

	events, err := store.ListEvents(ctx, at(0, 0), at(23, 0))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "early", events[0].Summary)
	assert.Equal(t, "late", events[1].Summary)
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	created, err := store.InsertEvent(ctx, Event{Summary: "x", Start: at(9, 0), End: at(10, 0)})
	require.NoError(t, err)

	require.NoError(t, store.DeleteEvent(ctx, created.ID))
	assert.Equal(t, 0, store.Len())
	assert.ErrorIs(t, store.DeleteEvent(ctx, created.ID), ErrNotFound)
}

func TestMemoryStoreConcurrentInserts(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.InsertEvent(ctx, Event{Summary: "x", Start: at(9, 0), End: at(10, 0)})
			_, _ = store.ListEvents(ctx, at(0, 0), at(23, 0))
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, store.Len())
}

type blockingStore struct{}

func (blockingStore) ListEvents(ctx context.Context, _, _ time.Time) ([]Event, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingStore) InsertEvent(ctx context.Context, _ Event) (Event, error) {
	<-ctx.Done()
	return Event{}, ctx.Err()
}

func (blockingStore) DeleteEvent(ctx context.Context, _ string) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestWithTimeoutReportsUnavailable(t *testing.T) {
	store := WithTimeout(blockingStore{}, 10*time.Millisecond)
	ctx := context.Background()

	_, err := store.ListEvents(ctx, at(9, 0), at(10, 0))
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = store.InsertEvent(ctx, Event{})
	assert.ErrorIs(t, err, ErrUnavailable)

	assert.ErrorIs(t, store.DeleteEvent(ctx, "id"), ErrUnavailable)
}

func TestWithTimeoutKeepsNotFound(t *testing.T) {
	store := WithTimeout(NewMemoryStore(), time.Second)
	err := store.DeleteEvent(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, errors.Is(err, ErrUnavailable))
}

func TestWithTimeoutZeroIsPassthrough(t *testing.T) {
	mem := NewMemoryStore()
	assert.Same(t, mem, WithTimeout(mem, 0))
}
