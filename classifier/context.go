package classifier

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/stridelabs/coachcore/internal/profile"
)

// historyWindow bounds how far back context analysis looks.
const historyWindow = 10

// ongoingWorkflowLookback is how many trailing messages a tool call may sit
// in before the workflow counts as finished.
const ongoingWorkflowLookback = 3

// AnalyzeContext derives ContextAnalysis from the trailing window of history.
func AnalyzeContext(history []Message) ContextAnalysis {
	window := history
	if len(window) > historyWindow {
		window = window[len(window)-historyWindow:]
	}

	var (
		toolCalls   []string
		totalLength int
	)
	for _, m := range window {
		if m.ToolName != "" {
			toolCalls = append(toolCalls, m.ToolName)
		}
		totalLength += utf8.RuneCountInString(m.Content)
	}

	avgLength := 0
	if len(window) > 0 {
		avgLength = totalLength / len(window)
	}

	ongoing := false
	start := len(window) - ongoingWorkflowLookback
	if start < 0 {
		start = 0
	}
	for _, m := range window[start:] {
		if m.ToolName != "" {
			ongoing = true
			break
		}
	}

	return ContextAnalysis{
		RecentToolCalls:   toolCalls,
		ConversationDepth: len(window),
		AvgMessageLength:  avgLength,
		IsOngoingWorkflow: ongoing,
		TopicConsistency:  topicConsistency(window),
	}
}

// topicConsistency measures lexical overlap between consecutive user turns.
// Observability only; routing never reads it.
func topicConsistency(window []Message) float64 {
	var userTurns [][]string
	for _, m := range window {
		if m.Role != "user" {
			continue
		}
		userTurns = append(userTurns, contentWords(m.Content))
	}
	if len(userTurns) < 2 {
		return 0
	}

	var total float64
	pairs := 0
	for i := 1; i < len(userTurns); i++ {
		total += wordOverlap(userTurns[i-1], userTurns[i])
		pairs++
	}
	return total / float64(pairs)
}

func contentWords(content string) []string {
	var words []string
	for _, f := range strings.Fields(strings.ToLower(content)) {
		f = strings.Trim(f, ".,!?;:\"'()")
		if utf8.RuneCountInString(f) >= 4 {
			words = append(words, f)
		}
	}
	return words
}

func wordOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, w := range a {
		set[w] = struct{}{}
	}
	shared := 0
	for _, w := range b {
		if _, ok := set[w]; ok {
			shared++
		}
	}
	smaller := len(a)
	if len(b) < smaller {
		smaller = len(b)
	}
	return float64(shared) / float64(smaller)
}

// NewChainContext builds a ChainContext from recent tool activity.
// ChainProbability grows with chain depth and tool homogeneity;
// WorkflowActive requires at least one recent tool and probability above
// the configured floor.
func NewChainContext(recentTools []string, lastToolAt *time.Time, policy profile.Policy) ChainContext {
	prob := chainProbability(recentTools)
	return ChainContext{
		RecentTools:      recentTools,
		ChainProbability: prob,
		WorkflowActive:   len(recentTools) > 0 && prob > policy.ChainProbLow,
		LastToolAt:       lastToolAt,
	}
}

// chainProbability estimates how likely the user is mid-way through a
// multi-step tool chain. Empty history always yields zero.
func chainProbability(recentTools []string) float64 {
	if len(recentTools) == 0 {
		return 0
	}

	counts := make(map[string]int, len(recentTools))
	maxCount := 0
	for _, t := range recentTools {
		counts[t]++
		if counts[t] > maxCount {
			maxCount = counts[t]
		}
	}
	homogeneity := float64(maxCount) / float64(len(recentTools))

	depth := float64(len(recentTools))
	if depth > 5 {
		depth = 5
	}

	p := 0.25 + 0.08*depth + 0.35*homogeneity
	if p > 0.95 {
		p = 0.95
	}
	return p
}

// SuggestsChaining reports whether recent tool activity should force the
// tool-use route regardless of the utterance.
func (c ChainContext) SuggestsChaining(now time.Time, policy profile.Policy) bool {
	if len(c.RecentTools) > 1 && c.ChainProbability > policy.ChainProbMulti {
		return true
	}
	if len(c.RecentTools) > 0 && c.ChainProbability > policy.ChainProbSingle {
		return true
	}
	if c.LastToolAt != nil &&
		now.Sub(*c.LastToolAt) < policy.ChainWindow &&
		c.ChainProbability > policy.ChainProbRecent {
		return true
	}
	return false
}
