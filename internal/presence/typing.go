package presence

import (
	"context"
	"fmt"
	"log"
	"time"

	"taskhive/internal/domain"
)

// Locker is the single primitive the throttle needs: create a key with a
// TTL only if it does not exist yet.
type Locker interface {
	SetIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// TypingThrottle suppresses repeated typing broadcasts for the same
// (user, entity) pair within a short window. The lock is the marker itself;
// it expires on its own and is never explicitly released.
type TypingThrottle struct {
	locker Locker
	window time.Duration
}

func NewTypingThrottle(locker Locker, window time.Duration) *TypingThrottle {
	return &TypingThrottle{locker: locker, window: window}
}

// ShouldBroadcast returns true at most once per window. A false means a
// broadcast already happened within the window, or the store is down — in
// both cases staying quiet is the safe answer.
func (t *TypingThrottle) ShouldBroadcast(ctx context.Context, userID uint64, ref domain.EntityRef) bool {
	key := fmt.Sprintf("typing:%s:%d:user:%d", ref.Type, ref.ID, userID)
	ok, err := t.locker.SetIfAbsent(ctx, key, t.window)
	if err != nil {
		log.Printf("[TYPING] failed to take lock %s, suppressing: %v", key, err)
		return false
	}
	return ok
}
