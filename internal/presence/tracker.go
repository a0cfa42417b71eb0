package presence

import (
	"context"
	"log"
	"time"
)

// ConnStore is the set of atomic primitives the tracker needs from the
// shared key-value store. Each call is one round trip; that atomicity is
// the only coordination between server processes serving the same user's
// tabs and devices.
type ConnStore interface {
	// Add puts connID in the user's connection set and creates its
	// liveness marker with the given TTL, atomically.
	Add(ctx context.Context, userID uint64, connID string, ttl time.Duration) error
	// Remove drops connID from the set and deletes its marker, atomically.
	Remove(ctx context.Context, userID uint64, connID string) error
	// Renew resets the marker TTL. No-op on set membership.
	Renew(ctx context.Context, connID string, ttl time.Duration) error
	// Members returns the user's connection set.
	Members(ctx context.Context, userID uint64) ([]string, error)
	// Alive reports whether connID's liveness marker still exists.
	Alive(ctx context.Context, connID string) (bool, error)
	// Prune removes connID from the set only. Used for ghosts whose
	// marker already expired.
	Prune(ctx context.Context, userID uint64, connID string) error
}

// Tracker maintains per-user presence as a connection set plus one
// independently renewable liveness marker per connection. A user is online
// when the set is non-empty after expired markers are pruned.
type Tracker struct {
	store        ConnStore
	heartbeatTTL time.Duration
}

// NewTracker builds a tracker whose markers live for twice the heartbeat
// interval, tolerating one missed heartbeat.
func NewTracker(store ConnStore, heartbeatInterval time.Duration) *Tracker {
	return &Tracker{
		store:        store,
		heartbeatTTL: heartbeatInterval * 2,
	}
}

func (t *Tracker) Connect(ctx context.Context, userID uint64, connID string) error {
	return t.store.Add(ctx, userID, connID, t.heartbeatTTL)
}

func (t *Tracker) Heartbeat(ctx context.Context, connID string) error {
	return t.store.Renew(ctx, connID, t.heartbeatTTL)
}

// Disconnect is the graceful path. Correctness never depends on it; a
// crashed connection is cleaned up lazily by IsOnline.
func (t *Tracker) Disconnect(ctx context.Context, userID uint64, connID string) error {
	return t.store.Remove(ctx, userID, connID)
}

// IsOnline reads the connection set, prunes members whose marker expired
// (ghosts: crashes, network loss), and reports whether anything is left.
// Never fatal: when the store is unreachable the user is assumed offline
// and delivery falls back to push only.
func (t *Tracker) IsOnline(ctx context.Context, userID uint64) bool {
	conns, err := t.store.Members(ctx, userID)
	if err != nil {
		log.Printf("[PRESENCE] failed to read connections for user %d, assuming offline: %v", userID, err)
		return false
	}

	live := 0
	for _, connID := range conns {
		alive, err := t.store.Alive(ctx, connID)
		if err != nil {
			log.Printf("[PRESENCE] failed to probe conn %s, assuming offline: %v", connID, err)
			continue
		}
		if alive {
			live++
			continue
		}
		// ghost connection, prune it
		if err := t.store.Prune(ctx, userID, connID); err != nil {
			log.Printf("[PRESENCE] failed to prune ghost conn %s: %v", connID, err)
		}
	}

	return live > 0
}
