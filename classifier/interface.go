// Package classifier decides which AI execution strategy handles one user
// turn. Classification is a pure function of the utterance, a bounded window
// of conversation history, and the current tool-chain context.
package classifier

import "time"

// Route is the chosen AI execution strategy for one user turn.
type Route string

const (
	// RouteToolUse runs the function-calling pipeline.
	RouteToolUse Route = "tool_use"
	// RouteDirect runs a single-shot low-latency generation.
	RouteDirect Route = "direct"
	// RouteHybrid grounds a generation with assembled context but without tools.
	RouteHybrid Route = "hybrid"
)

// Urgency is a coarse read of how time-sensitive an utterance is.
// It is computed for observability only and never affects routing.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// Message is one turn of conversation history.
type Message struct {
	Role    string // user, assistant, tool
	Content string
	// ToolName is set when this turn invoked a tool.
	ToolName string
}

// InputAnalysis is derived purely from the current utterance.
type InputAnalysis struct {
	Length            int
	WordCount         int
	IsSimpleParsing   bool
	IsComplexWorkflow bool
	ContainsNumbers   bool
	ContainsQuestions bool
	Urgency           Urgency
}

// ContextAnalysis is derived from a trailing window of history.
type ContextAnalysis struct {
	RecentToolCalls   []string // most-recent-last
	ConversationDepth int
	AvgMessageLength  int
	IsOngoingWorkflow bool
	TopicConsistency  float64 // [0,1]
}

// ChainContext describes recent tool activity across turns.
type ChainContext struct {
	RecentTools      []string
	ChainProbability float64 // [0,1]
	WorkflowActive   bool
	LastToolAt       *time.Time
}

// RouteHint carries per-route history sizing used by the session tracker.
type RouteHint struct {
	BaseLimit int
}
