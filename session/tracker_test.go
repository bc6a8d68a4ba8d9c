package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stridelabs/coachcore/classifier"
	"github.com/stridelabs/coachcore/internal/profile"
)

func newTestTracker(now *time.Time) *Tracker {
	return NewTracker(profile.DefaultPolicy(), WithClock(func() time.Time { return *now }))
}

func TestTracker_CreateAndSnapshot(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tracker := newTestTracker(&now)

	id := tracker.CreateSession("user-1", ModeCoach, 0)
	require.NotEmpty(t, id)

	state, ok := tracker.Snapshot(id)
	require.True(t, ok)
	assert.Equal(t, "user-1", state.UserID)
	assert.Equal(t, ModeCoach, state.ActiveMode)
	assert.Equal(t, DefaultContextWindow, state.ContextWindowSize)
	assert.Zero(t, state.MessageCount)
	assert.Equal(t, now, state.LastInteraction)
}

func TestTracker_Touch(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tracker := newTestTracker(&now)

	id := tracker.CreateSession("user-1", ModeChat, 20)

	now = now.Add(time.Minute)
	tracker.Touch(id, true)
	tracker.Touch(id, false)

	state, ok := tracker.Snapshot(id)
	require.True(t, ok)
	assert.Equal(t, 1, state.MessageCount, "only countsAsMessage touches increment")
	assert.Equal(t, now, state.LastInteraction)
}

func TestTracker_UnknownSessionIsNoOp(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tracker := newTestTracker(&now)

	// None of these may panic or create state.
	tracker.Touch("missing", true)
	tracker.EndSession("missing")
	assert.False(t, tracker.IsStale("missing"))
	assert.False(t, tracker.ShouldResetContext("missing"))
	assert.Equal(t, 12, tracker.OptimalHistoryLimit("missing", classifier.RouteHint{BaseLimit: 12}))
	assert.Zero(t, tracker.Count())
}

func TestTracker_EvictionAtCap(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tracker := newTestTracker(&now)

	ids := make([]string, 10)
	for i := range ids {
		ids[i] = tracker.CreateSession(fmt.Sprintf("user-%d", i), ModeChat, 20)
		now = now.Add(time.Second)
	}
	require.Equal(t, 10, tracker.Count())

	// Freshen every session except the third, which becomes the oldest.
	for i, id := range ids {
		if i == 2 {
			continue
		}
		tracker.Touch(id, false)
	}

	eleventh := tracker.CreateSession("user-10", ModeChat, 20)

	assert.Equal(t, 10, tracker.Count())
	_, evicted := tracker.Snapshot(ids[2])
	assert.False(t, evicted, "the least-recently-active session is evicted")
	_, exists := tracker.Snapshot(eleventh)
	assert.True(t, exists)
}

func TestTracker_ZeroCapFallsBackToDefault(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	policy := profile.DefaultPolicy()
	policy.SessionCap = 0
	tracker := NewTracker(policy, WithClock(func() time.Time { return now }))

	// An unset cap must not wedge session creation on an empty table.
	for i := 0; i < 15; i++ {
		tracker.CreateSession(fmt.Sprintf("user-%d", i), ModeChat, 20)
		now = now.Add(time.Second)
	}

	assert.Equal(t, profile.DefaultPolicy().SessionCap, tracker.Count())
}

func TestTracker_Staleness(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tracker := newTestTracker(&now)

	id := tracker.CreateSession("user-1", ModeChat, 20)

	now = now.Add(29 * time.Minute)
	assert.False(t, tracker.IsStale(id))

	now = now.Add(2 * time.Minute)
	assert.True(t, tracker.IsStale(id))
	assert.False(t, tracker.ShouldResetContext(id))

	now = now.Add(2 * time.Hour)
	assert.True(t, tracker.ShouldResetContext(id))
}

func TestTracker_OptimalHistoryLimit(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tracker := newTestTracker(&now)

	id := tracker.CreateSession("user-1", ModeChat, 40)

	t.Run("FreshSession", func(t *testing.T) {
		assert.Equal(t, 10, tracker.OptimalHistoryLimit(id, classifier.RouteHint{BaseLimit: 10}))
		assert.Equal(t, 40, tracker.OptimalHistoryLimit(id, classifier.RouteHint{BaseLimit: 60}),
			"window size caps the hint")
	})

	t.Run("StaleSessionGetsRebuildWindow", func(t *testing.T) {
		now = now.Add(45 * time.Minute)
		assert.Equal(t, 30, tracker.OptimalHistoryLimit(id, classifier.RouteHint{BaseLimit: 10}),
			"stale sessions get the larger rebuild window")
	})
}

func TestTracker_CleanupStale(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tracker := newTestTracker(&now)

	stale := tracker.CreateSession("user-1", ModeChat, 20)
	now = now.Add(40 * time.Minute)
	fresh := tracker.CreateSession("user-2", ModeChat, 20)

	removed := tracker.CleanupStale()

	assert.Equal(t, 1, removed)
	_, ok := tracker.Snapshot(stale)
	assert.False(t, ok)
	_, ok = tracker.Snapshot(fresh)
	assert.True(t, ok)
}

func TestTracker_ConcurrentAccess(t *testing.T) {
	now := time.Now()
	tracker := newTestTracker(&now)

	id := tracker.CreateSession("user-1", ModeChat, 20)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Touch(id, true)
		}()
	}
	wg.Wait()

	state, ok := tracker.Snapshot(id)
	assert.True(t, ok)
	assert.Equal(t, 50, state.MessageCount)
}

func TestCleanupJob_RunOnce(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tracker := newTestTracker(&now)

	tracker.CreateSession("user-1", ModeChat, 20)
	now = now.Add(time.Hour)

	job := NewCleanupJob(tracker, time.Minute)
	assert.Equal(t, 1, job.RunOnce())
	assert.False(t, job.IsRunning())
}
