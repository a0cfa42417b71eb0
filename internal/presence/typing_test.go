package presence

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskhive/internal/domain"

	"github.com/stretchr/testify/assert"
)

type fakeLocker struct {
	held map[string]bool
	fail bool
	keys []string
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[string]bool)}
}

func (l *fakeLocker) SetIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if l.fail {
		return false, errors.New("store unavailable")
	}
	l.keys = append(l.keys, key)
	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

// release simulates the TTL running out.
func (l *fakeLocker) release(key string) {
	delete(l.held, key)
}

func TestShouldBroadcast_OncePerWindow(t *testing.T) {
	locker := newFakeLocker()
	throttle := NewTypingThrottle(locker, 2*time.Second)
	ctx := context.Background()
	ref := domain.EntityRef{Type: domain.EntityTask, ID: 10}

	assert.True(t, throttle.ShouldBroadcast(ctx, 1, ref))
	assert.False(t, throttle.ShouldBroadcast(ctx, 1, ref))

	// window elapsed
	locker.release("typing:task:10:user:1")
	assert.True(t, throttle.ShouldBroadcast(ctx, 1, ref))
}

// The window is scoped to the (user, entity) pair: one user typing does not
// silence another, and typing on one entity does not silence the next.
func TestShouldBroadcast_ScopedPerUserAndEntity(t *testing.T) {
	locker := newFakeLocker()
	throttle := NewTypingThrottle(locker, 2*time.Second)
	ctx := context.Background()
	ref := domain.EntityRef{Type: domain.EntityTask, ID: 10}
	other := domain.EntityRef{Type: domain.EntityTask, ID: 11}

	assert.True(t, throttle.ShouldBroadcast(ctx, 1, ref))
	assert.True(t, throttle.ShouldBroadcast(ctx, 2, ref))
	assert.True(t, throttle.ShouldBroadcast(ctx, 1, other))

	assert.Contains(t, locker.keys, "typing:task:10:user:1")
	assert.Contains(t, locker.keys, "typing:task:10:user:2")
	assert.Contains(t, locker.keys, "typing:task:11:user:1")
}

func TestShouldBroadcast_StoreFailureSuppresses(t *testing.T) {
	locker := newFakeLocker()
	locker.fail = true
	throttle := NewTypingThrottle(locker, 2*time.Second)

	ref := domain.EntityRef{Type: domain.EntityTask, ID: 10}
	assert.False(t, throttle.ShouldBroadcast(context.Background(), 1, ref))
}
