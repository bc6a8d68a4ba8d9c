package classifier

import (
	"log/slog"
	"sync"
	"time"

	"github.com/stridelabs/coachcore/internal/profile"
)

// memoPrefixLen is how many leading characters key the memoization cache.
const memoPrefixLen = 40

type memoKey struct {
	lengthBucket int
	historyLen   int
	prefix       string
}

// Classifier routes one user turn to an execution strategy.
//
// The decision is a fixed-priority rule pipeline; earlier rules always win.
// A bounded memoization cache short-circuits repeated simple-parsing inputs
// but never changes the returned route versus the uncached path.
type Classifier struct {
	policy profile.Policy
	now    func() time.Time

	mu        sync.Mutex
	memo      map[memoKey]Route
	memoOrder []memoKey
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithClock injects a clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Classifier) { c.now = now }
}

// New creates a Classifier with the given policy.
func New(policy profile.Policy, opts ...Option) *Classifier {
	c := &Classifier{
		policy: policy,
		now:    time.Now,
		memo:   make(map[memoKey]Route),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns the route for the utterance. Deterministic for identical
// inputs; no I/O.
func (c *Classifier) Classify(utterance string, history []Message, chain ChainContext) Route {
	input := AnalyzeInput(utterance)
	ctxAnalysis := AnalyzeContext(history)

	// Memoize only inputs the cheap path would handle anyway: simple parsing
	// with no workflow in flight. Anything contextual must re-evaluate.
	cacheable := input.IsSimpleParsing && !ctxAnalysis.IsOngoingWorkflow && !chain.WorkflowActive
	key := memoKey{
		lengthBucket: input.Length / 10,
		historyLen:   len(history),
		prefix:       prefixOf(utterance, memoPrefixLen),
	}
	if cacheable {
		if route, ok := c.memoGet(key); ok {
			slog.Debug("routing decision (memoized)",
				"route", route,
				"input", prefixOf(utterance, 50))
			return route
		}
	}

	route, rule := decide(input, ctxAnalysis, chain, c.now(), c.policy)

	slog.Debug("routing decision",
		"route", route,
		"rule", rule,
		"input", prefixOf(utterance, 50),
		"length", input.Length,
		"word_count", input.WordCount,
		"urgency", input.Urgency,
		"depth", ctxAnalysis.ConversationDepth,
		"topic_consistency", ctxAnalysis.TopicConsistency,
		"chain_probability", chain.ChainProbability)

	if cacheable {
		c.memoPut(key, route)
	}
	return route
}

// decide evaluates the rule pipeline. First match wins; the ordering is
// load-bearing.
func decide(input InputAnalysis, ctxAnalysis ContextAnalysis, chain ChainContext, now time.Time, policy profile.Policy) (Route, int) {
	// 1. An active tool chain overrides everything else.
	if chain.SuggestsChaining(now, policy) {
		return RouteToolUse, 1
	}

	// 2. Simple parsing outside a workflow takes the cheap path.
	if input.IsSimpleParsing && !ctxAnalysis.IsOngoingWorkflow {
		return RouteDirect, 2
	}

	// 3. Workflow language, recent tool activity, or an ongoing workflow
	// all need the tool pipeline.
	if input.IsComplexWorkflow || len(ctxAnalysis.RecentToolCalls) > 0 || ctxAnalysis.IsOngoingWorkflow {
		return RouteToolUse, 3
	}

	// 4. Short numberless questions get a one-shot answer.
	if input.Length < shortUtteranceLimit && input.ContainsQuestions && !input.ContainsNumbers {
		return RouteDirect, 4
	}

	// 5. Long utterances or deep conversations get tools.
	if input.Length > longUtteranceLimit || ctxAnalysis.ConversationDepth > 5 {
		return RouteToolUse, 5
	}

	// 6. Everything else: grounded generation without tools.
	return RouteHybrid, 6
}

func (c *Classifier) memoGet(key memoKey) (Route, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	route, ok := c.memo[key]
	return route, ok
}

func (c *Classifier) memoPut(key memoKey, route Route) {
	size := c.policy.ClassifierMemoSize
	if size <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.memo[key]; exists {
		c.memo[key] = route
		return
	}
	for len(c.memo) >= size {
		oldest := c.memoOrder[0]
		c.memoOrder = c.memoOrder[1:]
		delete(c.memo, oldest)
	}
	c.memo[key] = route
	c.memoOrder = append(c.memoOrder, key)
}

// MemoSize returns the number of memoized decisions.
func (c *Classifier) MemoSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.memo)
}

func prefixOf(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
