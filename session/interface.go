// Package session tracks per-conversation bookkeeping: message counts, the
// active coaching mode, and idle staleness. The tracker is best-effort state,
// never a source of truth; operations on unknown sessions are silent no-ops.
package session

import (
	"time"

	"github.com/stridelabs/coachcore/classifier"
)

// Mode is the active interaction mode of a conversation.
type Mode string

const (
	ModeChat    Mode = "chat"
	ModeCoach   Mode = "coach"
	ModeLogging Mode = "logging"
)

// DefaultContextWindow is the history window granted to new sessions when the
// caller does not specify one.
const DefaultContextWindow = 20

// ConversationState is the tracked state of one session.
type ConversationState struct {
	ID                string
	UserID            string
	StartTime         time.Time
	MessageCount      int
	LastInteraction   time.Time
	ActiveMode        Mode
	ContextWindowSize int
}

// TrackerService defines the session tracker interface.
type TrackerService interface {
	// CreateSession allocates state for a new conversation and returns its id.
	// When the tracked-session cap is exceeded, the least-recently-active
	// session is evicted first.
	CreateSession(userID string, mode Mode, windowSize int) string

	// Touch updates last-interaction time; increments the message count only
	// when countsAsMessage is true.
	Touch(sessionID string, countsAsMessage bool)

	// OptimalHistoryLimit returns how many history messages the caller should
	// rebuild for this turn.
	OptimalHistoryLimit(sessionID string, hint classifier.RouteHint) int

	// Snapshot returns a copy of the session state.
	Snapshot(sessionID string) (ConversationState, bool)

	// EndSession removes a session explicitly.
	EndSession(sessionID string)

	// CleanupStale removes all stale sessions and returns how many were removed.
	CleanupStale() int
}
