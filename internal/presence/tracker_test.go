package presence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeConnStore keeps the connection sets and liveness markers in maps so
// the tracker's pruning logic can be exercised without a real store.
type fakeConnStore struct {
	sets    map[uint64]map[string]bool
	markers map[string]bool

	failMembers bool
	failAlive   bool
	pruned      []string
}

func newFakeConnStore() *fakeConnStore {
	return &fakeConnStore{
		sets:    make(map[uint64]map[string]bool),
		markers: make(map[string]bool),
	}
}

func (s *fakeConnStore) Add(ctx context.Context, userID uint64, connID string, ttl time.Duration) error {
	if s.sets[userID] == nil {
		s.sets[userID] = make(map[string]bool)
	}
	s.sets[userID][connID] = true
	s.markers[connID] = true
	return nil
}

func (s *fakeConnStore) Remove(ctx context.Context, userID uint64, connID string) error {
	delete(s.sets[userID], connID)
	delete(s.markers, connID)
	return nil
}

func (s *fakeConnStore) Renew(ctx context.Context, connID string, ttl time.Duration) error {
	s.markers[connID] = true
	return nil
}

func (s *fakeConnStore) Members(ctx context.Context, userID uint64) ([]string, error) {
	if s.failMembers {
		return nil, errors.New("store unavailable")
	}
	var out []string
	for connID := range s.sets[userID] {
		out = append(out, connID)
	}
	return out, nil
}

func (s *fakeConnStore) Alive(ctx context.Context, connID string) (bool, error) {
	if s.failAlive {
		return false, errors.New("store unavailable")
	}
	return s.markers[connID], nil
}

func (s *fakeConnStore) Prune(ctx context.Context, userID uint64, connID string) error {
	delete(s.sets[userID], connID)
	s.pruned = append(s.pruned, connID)
	return nil
}

// expire simulates a marker TTL running out while the set entry lingers,
// which is exactly what a crashed connection leaves behind.
func (s *fakeConnStore) expire(connID string) {
	delete(s.markers, connID)
}

func TestIsOnline_NoConnections(t *testing.T) {
	store := newFakeConnStore()
	tracker := NewTracker(store, 30*time.Second)

	assert.False(t, tracker.IsOnline(context.Background(), 1))
}

func TestIsOnline_LiveConnection(t *testing.T) {
	store := newFakeConnStore()
	tracker := NewTracker(store, 30*time.Second)
	ctx := context.Background()

	assert.NoError(t, tracker.Connect(ctx, 1, "c1"))
	assert.True(t, tracker.IsOnline(ctx, 1))

	assert.NoError(t, tracker.Disconnect(ctx, 1, "c1"))
	assert.False(t, tracker.IsOnline(ctx, 1))
}

// Three connections, two of which crashed and left ghosts. IsOnline must
// prune exactly the ghosts and still report online for the survivor.
func TestIsOnline_PrunesGhosts(t *testing.T) {
	store := newFakeConnStore()
	tracker := NewTracker(store, 30*time.Second)
	ctx := context.Background()

	for _, connID := range []string{"c1", "c2", "c3"} {
		assert.NoError(t, tracker.Connect(ctx, 1, connID))
	}
	store.expire("c1")
	store.expire("c3")

	assert.True(t, tracker.IsOnline(ctx, 1))
	assert.ElementsMatch(t, []string{"c1", "c3"}, store.pruned)
	assert.Len(t, store.sets[1], 1)
}

func TestIsOnline_AllGhostsMeansOffline(t *testing.T) {
	store := newFakeConnStore()
	tracker := NewTracker(store, 30*time.Second)
	ctx := context.Background()

	assert.NoError(t, tracker.Connect(ctx, 1, "c1"))
	store.expire("c1")

	assert.False(t, tracker.IsOnline(ctx, 1))
	assert.Empty(t, store.sets[1])
}

// Store failures degrade to offline so delivery falls back to push; they
// must never surface as an error on the dispatch path.
func TestIsOnline_StoreFailureMeansOffline(t *testing.T) {
	store := newFakeConnStore()
	tracker := NewTracker(store, 30*time.Second)
	ctx := context.Background()

	assert.NoError(t, tracker.Connect(ctx, 1, "c1"))

	store.failMembers = true
	assert.False(t, tracker.IsOnline(ctx, 1))

	store.failMembers = false
	store.failAlive = true
	assert.False(t, tracker.IsOnline(ctx, 1))
}

func TestHeartbeat_RevivesMarker(t *testing.T) {
	store := newFakeConnStore()
	tracker := NewTracker(store, 30*time.Second)
	ctx := context.Background()

	assert.NoError(t, tracker.Connect(ctx, 1, "c1"))
	store.expire("c1")

	assert.NoError(t, tracker.Heartbeat(ctx, "c1"))
	assert.True(t, tracker.IsOnline(ctx, 1))
}
