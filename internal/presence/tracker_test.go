package presence

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

type recordingObserver struct{ last int }

func (o *recordingObserver) SetPresenceOnline(n int) { o.last = n }

type failingStore struct {
	upsertErr, deleteErr, countErr error
}

func (s failingStore) Upsert(context.Context, string, time.Time) error { return s.upsertErr }

func (s failingStore) DeleteBefore(context.Context, time.Time) (int64, error) {
	return 0, s.deleteErr
}

func (s failingStore) CountSince(context.Context, time.Time) (int, error) {
	return 7, s.countErr
}

func newTestTracker(store Store) (*Tracker, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)}
	return NewTracker(store, nil, Options{Now: clock.Now}), clock
}

func TestTracker_HeartbeatThenPeek(t *testing.T) {
	ctx := context.Background()
	tracker, _ := newTestTracker(NewMemoryStore())

	assert.Equal(t, 1, tracker.Heartbeat(ctx, "s1"))
	assert.GreaterOrEqual(t, tracker.Peek(ctx), 1)
}

func TestTracker_OnlineWindowExpires(t *testing.T) {
	ctx := context.Background()
	tracker, clock := newTestTracker(NewMemoryStore())

	tracker.Heartbeat(ctx, "s1")
	clock.Advance(30 * time.Second)
	tracker.Heartbeat(ctx, "s2")
	assert.Equal(t, 2, tracker.Peek(ctx))

	clock.Advance(31 * time.Second)
	assert.Equal(t, 1, tracker.Peek(ctx), "s1 is 61s old and must not count")
}

func TestTracker_HeartbeatCleansStaleRecords(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	tracker, clock := newTestTracker(store)

	require.NoError(t, store.Upsert(ctx, "old", clock.Now().Add(-6*time.Minute)))
	require.NoError(t, store.Upsert(ctx, "recent", clock.Now().Add(-4*time.Minute)))

	tracker.Heartbeat(ctx, "other")

	_, ok := store.LastSeen("old")
	assert.False(t, ok, "records older than the retain window are removed")
	_, ok = store.LastSeen("recent")
	assert.True(t, ok, "records inside the retain window survive")
}

func TestTracker_PeekDoesNotCleanUp(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	tracker, clock := newTestTracker(store)

	require.NoError(t, store.Upsert(ctx, "old", clock.Now().Add(-6*time.Minute)))
	assert.Equal(t, 0, tracker.Peek(ctx))

	_, ok := store.LastSeen("old")
	assert.True(t, ok)
}

func TestTracker_SameSessionCountsOnce(t *testing.T) {
	ctx := context.Background()
	tracker, clock := newTestTracker(NewMemoryStore())

	tracker.Heartbeat(ctx, "s1")
	clock.Advance(10 * time.Second)
	assert.Equal(t, 1, tracker.Heartbeat(ctx, "s1"))
}

func TestTracker_InvalidSessionIDs(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	tracker, _ := newTestTracker(store)

	assert.Equal(t, 0, tracker.Heartbeat(ctx, ""))
	assert.Equal(t, 0, tracker.Heartbeat(ctx, "   "))
	assert.Equal(t, 0, tracker.Heartbeat(ctx, strings.Repeat("x", 101)))
	assert.Equal(t, 0, tracker.Peek(ctx))

	assert.Equal(t, 1, tracker.Heartbeat(ctx, strings.Repeat("x", 100)))
	assert.Equal(t, 2, tracker.Heartbeat(ctx, strings.Repeat("ü", 100)), "length is measured in characters")
}

func TestTracker_StoreFailuresReportZero(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	for name, store := range map[string]failingStore{
		"upsert": {upsertErr: boom},
		"delete": {deleteErr: boom},
		"count":  {countErr: boom},
	} {
		t.Run(name, func(t *testing.T) {
			tracker, _ := newTestTracker(store)
			assert.Equal(t, 0, tracker.Heartbeat(ctx, "s1"))
		})
	}

	tracker, _ := newTestTracker(failingStore{countErr: boom})
	assert.Equal(t, 0, tracker.Peek(ctx))
}

func TestTracker_ReportsToObserver(t *testing.T) {
	ctx := context.Background()
	obs := &recordingObserver{}
	clock := &fakeClock{now: time.Now()}
	tracker := NewTracker(NewMemoryStore(), nil, Options{Now: clock.Now, Observer: obs})

	tracker.Heartbeat(ctx, "a")
	tracker.Heartbeat(ctx, "b")
	assert.Equal(t, 2, obs.last)
}

func TestMemoryStore_NeverRewinds(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	later := time.Now()

	require.NoError(t, store.Upsert(ctx, "s1", later))
	require.NoError(t, store.Upsert(ctx, "s1", later.Add(-time.Minute)))

	seen, ok := store.LastSeen("s1")
	require.True(t, ok)
	assert.True(t, seen.Equal(later))
}
