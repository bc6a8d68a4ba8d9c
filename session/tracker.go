package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stridelabs/coachcore/classifier"
	"github.com/stridelabs/coachcore/internal/profile"
)

// Tracker implements TrackerService behind a single mutex. One lock owns the
// whole table so compound updates (count plus timestamp) stay atomic and
// eviction never races a per-session lock.
type Tracker struct {
	policy profile.Policy
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*ConversationState
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock injects a clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// NewTracker creates a session tracker.
func NewTracker(policy profile.Policy, opts ...Option) *Tracker {
	if policy.SessionCap <= 0 {
		policy.SessionCap = profile.DefaultPolicy().SessionCap
	}
	t := &Tracker{
		policy:   policy,
		now:      time.Now,
		sessions: make(map[string]*ConversationState),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// CreateSession allocates new state, evicting the least-recently-active
// session when the cap is exceeded.
func (t *Tracker) CreateSession(userID string, mode Mode, windowSize int) string {
	if windowSize <= 0 {
		windowSize = DefaultContextWindow
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for len(t.sessions) >= t.policy.SessionCap {
		t.evictOldestLocked()
	}

	now := t.now()
	id := uuid.NewString()
	t.sessions[id] = &ConversationState{
		ID:                id,
		UserID:            userID,
		StartTime:         now,
		LastInteraction:   now,
		ActiveMode:        mode,
		ContextWindowSize: windowSize,
	}

	slog.Debug("session created",
		"session_id", id,
		"user_id", userID,
		"mode", mode,
		"window_size", windowSize,
		"tracked", len(t.sessions))

	return id
}

// Touch updates lastInteraction and, when countsAsMessage, the message count.
// Unknown session ids are ignored.
func (t *Tracker) Touch(sessionID string, countsAsMessage bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[sessionID]
	if !ok {
		return
	}

	s.LastInteraction = t.now()
	if countsAsMessage {
		s.MessageCount++
	}
}

// OptimalHistoryLimit returns the history rebuild size for this turn. Stale
// sessions get a larger window, capped by the configured ceiling, so a
// returning user regains context.
func (t *Tracker) OptimalHistoryLimit(sessionID string, hint classifier.RouteHint) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[sessionID]
	if !ok {
		return hint.BaseLimit
	}

	if t.isStaleLocked(s) {
		return min(s.ContextWindowSize, t.policy.StaleHistoryCeiling)
	}
	return min(hint.BaseLimit, s.ContextWindowSize)
}

// Snapshot returns a copy of the session state.
func (t *Tracker) Snapshot(sessionID string) (ConversationState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[sessionID]
	if !ok {
		return ConversationState{}, false
	}
	return *s, true
}

// IsStale reports whether the session has been idle past the staleness bound.
func (t *Tracker) IsStale(sessionID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[sessionID]
	if !ok {
		return false
	}
	return t.isStaleLocked(s)
}

// ShouldResetContext reports whether the session has idled long enough that
// its conversation context should be rebuilt from scratch.
func (t *Tracker) ShouldResetContext(sessionID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[sessionID]
	if !ok {
		return false
	}
	return t.now().Sub(s.LastInteraction) > t.policy.SessionResetAfter
}

// EndSession removes a session. Unknown ids are ignored.
func (t *Tracker) EndSession(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.sessions[sessionID]; ok {
		delete(t.sessions, sessionID)
		slog.Debug("session ended", "session_id", sessionID)
	}
}

// CleanupStale removes all stale sessions. Intended to run periodically,
// not on every turn.
func (t *Tracker) CleanupStale() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for id, s := range t.sessions {
		if t.isStaleLocked(s) {
			delete(t.sessions, id)
			removed++
		}
	}

	if removed > 0 {
		slog.Info("stale sessions cleaned up", "removed", removed, "remaining", len(t.sessions))
	}
	return removed
}

// Count returns the number of tracked sessions.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}

func (t *Tracker) isStaleLocked(s *ConversationState) bool {
	return t.now().Sub(s.LastInteraction) > t.policy.SessionStaleAfter
}

// evictOldestLocked removes the session with the oldest lastInteraction.
// Must be called with lock held.
func (t *Tracker) evictOldestLocked() {
	var (
		oldestID string
		oldestAt time.Time
	)
	for id, s := range t.sessions {
		if oldestID == "" || s.LastInteraction.Before(oldestAt) {
			oldestID = id
			oldestAt = s.LastInteraction
		}
	}
	if oldestID != "" {
		delete(t.sessions, oldestID)
		slog.Debug("session evicted", "session_id", oldestID, "last_interaction", oldestAt)
	}
}

// Ensure Tracker implements TrackerService
var _ TrackerService = (*Tracker)(nil)
