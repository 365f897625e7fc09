package scheduling

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SlotGuard serializes bookings of the same doctor and start time across
// processes. It narrows the check-then-insert race; it does not close it for
// overlapping windows with different starts.
type SlotGuard interface {
	// Acquire tries to take the lock for key. When acquired is false the slot
	// is being booked by someone else. release is always safe to call.
	Acquire(ctx context.Context, key string) (release func(), acquired bool, err error)
}

const slotKeyPrefix = "clinic:slot:"

// SlotKey builds the lock key for a doctor's start instant.
func SlotKey(doctor string, start time.Time) string {
	return slotKeyPrefix + strings.ToLower(strings.TrimSpace(doctor)) + ":" + start.UTC().Format(time.RFC3339)
}

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisSlotGuard implements SlotGuard with SET NX PX.
type RedisSlotGuard struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisSlotGuard creates a guard whose locks expire after ttl.
func NewRedisSlotGuard(client redis.Cmdable, ttl time.Duration) *RedisSlotGuard {
	if client == nil {
		panic("scheduling: redis client required")
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisSlotGuard{client: client, ttl: ttl}
}

func (g *RedisSlotGuard) Acquire(ctx context.Context, key string) (func(), bool, error) {
	token := uuid.NewString()
	ok, err := g.client.SetNX(ctx, key, token, g.ttl).Result()
	if err != nil {
		return noopRelease, false, fmt.Errorf("scheduling: acquire slot lock: %w", err)
	}
	if !ok {
		return noopRelease, false, nil
	}
	release := func() {
		// The booking context may already be done; release on a fresh one.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		// A failed release is harmless; the lock expires after ttl.
		_ = releaseScript.Run(ctx, g.client, []string{key}, token).Err()
	}
	return release, true, nil
}

func noopRelease() {}
