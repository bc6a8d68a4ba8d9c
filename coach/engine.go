// Package coach orchestrates one conversation turn end to end: route
// classification, context assembly, execution on the chosen pipeline, and
// session bookkeeping.
package coach

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/stridelabs/coachcore/ai"
	"github.com/stridelabs/coachcore/classifier"
	"github.com/stridelabs/coachcore/direct"
	"github.com/stridelabs/coachcore/health"
	"github.com/stridelabs/coachcore/internal/profile"
	"github.com/stridelabs/coachcore/metrics"
	"github.com/stridelabs/coachcore/session"
	"github.com/stridelabs/coachcore/stream"
)

// Per-route history sizing handed to the session tracker.
const (
	directHistoryLimit  = 6
	hybridHistoryLimit  = 12
	toolUseHistoryLimit = 20
)

// chainWindowCap bounds how many recent tool names feed chain heuristics.
const chainWindowCap = 8

// TurnResult is the outcome of one processed turn.
type TurnResult struct {
	Route            classifier.Route
	Text             string
	ToolCall         *ai.ToolCall
	Nutrition        *direct.NutritionResult
	Usage            ai.TokenUsage
	TimeToFirstToken time.Duration
}

// chainState tracks recent tool activity for one session.
type chainState struct {
	recentTools []string
	lastToolAt  *time.Time
}

// Engine processes conversation turns. All mutable cross-turn state lives in
// the tracker and the chain map; the engine itself holds only collaborators.
type Engine struct {
	classifier *classifier.Classifier
	tracker    *session.Tracker
	aggregator *health.Aggregator
	executor   direct.ExecutorService
	llm        ai.LLMService
	recorder   metrics.Recorder
	policy     profile.Policy
	now        func() time.Time

	mu     sync.Mutex
	chains map[string]*chainState
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock injects a clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithMetrics attaches a turn recorder.
func WithMetrics(recorder metrics.Recorder) Option {
	return func(e *Engine) { e.recorder = recorder }
}

// NewEngine creates a coaching engine.
func NewEngine(
	cls *classifier.Classifier,
	tracker *session.Tracker,
	aggregator *health.Aggregator,
	executor direct.ExecutorService,
	llm ai.LLMService,
	policy profile.Policy,
	opts ...Option,
) *Engine {
	e := &Engine{
		classifier: cls,
		tracker:    tracker,
		aggregator: aggregator,
		executor:   executor,
		llm:        llm,
		recorder:   metrics.NopRecorder{},
		policy:     policy,
		now:        time.Now,
		chains:     make(map[string]*chainState),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ProcessTurn handles one user utterance. Context assembly never fails the
// turn; generation errors propagate.
func (e *Engine) ProcessTurn(ctx context.Context, sessionID, utterance string, history []classifier.Message) (*TurnResult, error) {
	start := e.now()

	chain := e.chainContext(sessionID)
	route := e.classifier.Classify(utterance, history, chain)

	if e.tracker.ShouldResetContext(sessionID) {
		slog.Info("resetting conversation context", "session_id", sessionID)
		history = nil
	}
	limit := e.tracker.OptimalHistoryLimit(sessionID, routeHintFor(route))
	history = trimHistory(history, limit)

	var (
		result *TurnResult
		err    error
	)
	switch route {
	case classifier.RouteDirect:
		result, err = e.runDirect(ctx, utterance, history)
	default:
		result, err = e.runGrounded(ctx, route, sessionID, utterance, history)
	}

	e.tracker.Touch(sessionID, true)

	if route == classifier.RouteDirect {
		// Streaming turns record through the stream consumer.
		e.recorder.RecordTurn(ctx, metrics.TurnRecord{
			Route:      string(route),
			Latency:    e.now().Sub(start),
			Success:    err == nil,
			TokensUsed: tokensOf(result),
		})
	}

	if err != nil {
		return nil, err
	}
	result.Route = route
	return result, nil
}

// RecordToolInvocation feeds a completed tool call back into the chain
// heuristics for the session.
func (e *Engine) RecordToolInvocation(sessionID, toolName string) {
	now := e.now()

	e.mu.Lock()
	defer e.mu.Unlock()

	state, ok := e.chains[sessionID]
	if !ok {
		state = &chainState{}
		e.chains[sessionID] = state
	}
	state.recentTools = append(state.recentTools, toolName)
	if len(state.recentTools) > chainWindowCap {
		state.recentTools = state.recentTools[len(state.recentTools)-chainWindowCap:]
	}
	state.lastToolAt = &now
}

// EndSession drops all engine-side state for a session.
func (e *Engine) EndSession(sessionID string) {
	e.mu.Lock()
	delete(e.chains, sessionID)
	e.mu.Unlock()
	e.tracker.EndSession(sessionID)
}

func (e *Engine) chainContext(sessionID string) classifier.ChainContext {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, ok := e.chains[sessionID]
	if !ok {
		return classifier.NewChainContext(nil, nil, e.policy)
	}
	tools := make([]string, len(state.recentTools))
	copy(tools, state.recentTools)
	return classifier.NewChainContext(tools, state.lastToolAt, e.policy)
}

// runDirect executes the cheap path: structured parsing for quantified
// logging utterances, a one-shot generation otherwise.
func (e *Engine) runDirect(ctx context.Context, utterance string, history []classifier.Message) (*TurnResult, error) {
	input := classifier.AnalyzeInput(utterance)

	if input.IsSimpleParsing && input.ContainsNumbers {
		parsed, err := e.executor.ParseNutrition(ctx, utterance)
		if err != nil {
			return nil, err
		}
		return &TurnResult{
			Text:      formatNutrition(parsed),
			Nutrition: parsed,
			Usage:     parsed.Usage,
		}, nil
	}

	task := direct.TaskConversational
	if input.ContainsQuestions {
		task = direct.TaskEducational
	}
	resp, err := e.executor.Execute(ctx, task, buildDirectPrompt(utterance, history))
	if err != nil {
		return nil, err
	}
	return &TurnResult{Text: resp.Text, Usage: resp.Usage}, nil
}

// runGrounded executes the tool-use and hybrid pipelines: assemble a health
// snapshot, then stream a grounded generation.
func (e *Engine) runGrounded(ctx context.Context, route classifier.Route, sessionID, utterance string, history []classifier.Message) (*TurnResult, error) {
	snapshot := e.aggregator.Assemble(ctx, false, nil)

	mode := session.ModeChat
	if state, ok := e.tracker.Snapshot(sessionID); ok {
		mode = state.ActiveMode
	}

	events, err := e.llm.ChatStream(ctx, ai.Request{
		SystemPrompt: BuildSystemPrompt(snapshot, mode),
		Messages:     ai.FormatMessages("", utterance, toAIMessages(history)),
		Temperature:  0.7,
		Caller:       "coach:" + string(route),
	})
	if err != nil {
		return nil, err
	}

	consumer := stream.NewConsumer(
		stream.WithMetrics(e.recorder, string(route)),
		stream.WithClock(e.now),
	)
	streamed, err := consumer.Consume(ctx, events, stream.Callbacks{
		OnToolCall: func(call ai.ToolCall) {
			e.RecordToolInvocation(sessionID, call.Name)
		},
	})
	if err != nil {
		return nil, err
	}

	return &TurnResult{
		Text:             streamed.FullResponseText,
		ToolCall:         streamed.ToolCall,
		Usage:            streamed.TokenUsage,
		TimeToFirstToken: streamed.TimeToFirstToken,
	}, nil
}

func routeHintFor(route classifier.Route) classifier.RouteHint {
	switch route {
	case classifier.RouteDirect:
		return classifier.RouteHint{BaseLimit: directHistoryLimit}
	case classifier.RouteHybrid:
		return classifier.RouteHint{BaseLimit: hybridHistoryLimit}
	default:
		return classifier.RouteHint{BaseLimit: toolUseHistoryLimit}
	}
}

func trimHistory(history []classifier.Message, limit int) []classifier.Message {
	if limit <= 0 || len(history) <= limit {
		return history
	}
	return history[len(history)-limit:]
}

func toAIMessages(history []classifier.Message) []ai.Message {
	messages := make([]ai.Message, 0, len(history))
	for _, m := range history {
		messages = append(messages, ai.Message{Role: m.Role, Content: m.Content})
	}
	return messages
}

func buildDirectPrompt(utterance string, history []classifier.Message) string {
	if len(history) == 0 {
		return utterance
	}
	var b strings.Builder
	b.WriteString("Recent conversation:\n")
	for _, m := range history {
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	b.WriteString("\nUser: ")
	b.WriteString(utterance)
	return b.String()
}

func formatNutrition(result *direct.NutritionResult) string {
	var b strings.Builder
	b.WriteString("Logged")
	if len(result.Items) > 1 {
		fmt.Fprintf(&b, " %d items", len(result.Items))
	}
	b.WriteString(":")
	for _, item := range result.Items {
		fmt.Fprintf(&b, "\n- %s: %.0f kcal, %.0fg protein, %.0fg carbs, %.0fg fat",
			item.Name, item.Calories, item.ProteinG, item.CarbsG, item.FatG)
	}
	return b.String()
}

func tokensOf(result *TurnResult) int {
	if result == nil {
		return 0
	}
	return result.Usage.TotalTokens
}
