// Package stream drains a streamed model response into a structured result,
// forwarding incremental callbacks and recording timing telemetry along the
// way.
package stream

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/stridelabs/coachcore/ai"
	"github.com/stridelabs/coachcore/metrics"
)

// Result is the finalized outcome of one consumed stream.
type Result struct {
	FullResponseText string
	ToolCall         *ai.ToolCall
	TokenUsage       ai.TokenUsage
	// TimeToFirstToken is zero when the stream produced no text.
	TimeToFirstToken time.Duration
	TotalTime        time.Duration
}

// Callbacks receives incremental events while the stream is consumed. Any
// field may be nil.
type Callbacks struct {
	OnDelta    func(text string)
	OnToolCall func(call ai.ToolCall)
	OnComplete func(result *Result)
	OnError    func(err error)
}

// Consumer drains model-response streams. A zero-value Consumer is usable;
// configure a metrics recorder and route tag to emit per-turn records.
type Consumer struct {
	recorder metrics.Recorder
	route    string
	now      func() time.Time
}

// Option configures a Consumer.
type Option func(*Consumer)

// WithMetrics attaches a metrics recorder and the route tag under which
// completed streams are recorded.
func WithMetrics(recorder metrics.Recorder, route string) Option {
	return func(c *Consumer) {
		c.recorder = recorder
		c.route = route
	}
}

// WithClock injects a clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Consumer) { c.now = now }
}

// NewConsumer creates a stream consumer.
func NewConsumer(opts ...Option) *Consumer {
	c := &Consumer{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Consume drains one event stream to exhaustion.
//
// Invariants: time-to-first-token is recorded at most once, on the first
// text-bearing event; accumulated text is append-only in event arrival
// order; a tool-call event does not terminate the stream. An error event
// propagates to the caller after the failure callback fires.
func (c *Consumer) Consume(ctx context.Context, events <-chan ai.StreamEvent, callbacks Callbacks) (*Result, error) {
	start := c.now()

	var (
		text      strings.Builder
		result    = &Result{}
		firstSeen bool
	)

	finalize := func(success bool) {
		result.FullResponseText = text.String()
		result.TotalTime = c.now().Sub(start)

		slog.Debug("stream consumed",
			"elapsed_ms", result.TotalTime.Milliseconds(),
			"tokens", result.TokenUsage.TotalTokens,
			"tool_call", result.ToolCall != nil,
			"response_length", len(result.FullResponseText),
			"ttft_ms", result.TimeToFirstToken.Milliseconds(),
			"success", success)

		if c.recorder != nil && c.route != "" {
			c.recorder.RecordTurn(ctx, metrics.TurnRecord{
				Route:      c.route,
				Latency:    result.TotalTime,
				Success:    success,
				TokensUsed: result.TokenUsage.TotalTokens,
			})
		}
	}

	for {
		select {
		case <-ctx.Done():
			finalize(false)
			if callbacks.OnError != nil {
				callbacks.OnError(ctx.Err())
			}
			return result, ctx.Err()

		case ev, ok := <-events:
			if !ok {
				// Producer closed without a terminal event; treat what we
				// have as the final state.
				finalize(true)
				if callbacks.OnComplete != nil {
					callbacks.OnComplete(result)
				}
				return result, nil
			}

			switch ev.Type {
			case ai.EventText:
				if !firstSeen && ev.Text != "" {
					firstSeen = true
					result.TimeToFirstToken = c.now().Sub(start)
				}
				text.WriteString(ev.Text)
				if callbacks.OnDelta != nil {
					callbacks.OnDelta(ev.Text)
				}

			case ai.EventToolCall:
				if ev.ToolCall != nil {
					call := *ev.ToolCall
					result.ToolCall = &call
					if callbacks.OnToolCall != nil {
						callbacks.OnToolCall(call)
					}
				}

			case ai.EventDone:
				if ev.Usage != nil {
					result.TokenUsage = *ev.Usage
				}
				finalize(true)
				if callbacks.OnComplete != nil {
					callbacks.OnComplete(result)
				}
				return result, nil

			case ai.EventError:
				finalize(false)
				if callbacks.OnError != nil {
					callbacks.OnError(ev.Err)
				}
				return result, ev.Err
			}
		}
	}
}

// CollectText drains a stream and returns only the accumulated text.
func CollectText(ctx context.Context, events <-chan ai.StreamEvent) (string, error) {
	result, err := NewConsumer().Consume(ctx, events, Callbacks{})
	if err != nil {
		return "", err
	}
	return result.FullResponseText, nil
}

// CollectTextWithUsage drains a stream and returns the accumulated text with
// final token usage.
func CollectTextWithUsage(ctx context.Context, events <-chan ai.StreamEvent) (string, ai.TokenUsage, error) {
	result, err := NewConsumer().Consume(ctx, events, Callbacks{})
	if err != nil {
		return "", ai.TokenUsage{}, err
	}
	return result.FullResponseText, result.TokenUsage, nil
}
