// Package metrics records per-turn routing outcomes and aggregates them
// into hourly per-route summaries.
package metrics

import (
	"context"
	"time"
)

// TurnRecord captures the outcome of one processed conversation turn.
type TurnRecord struct {
	// Route is the routing strategy tag the turn executed under.
	Route      string
	Latency    time.Duration
	Success    bool
	TokensUsed int
}

// Recorder accepts turn records. Implementations must be safe for
// concurrent use.
type Recorder interface {
	RecordTurn(ctx context.Context, record TurnRecord)
}

// RouteSummary is an aggregated view over one route's recorded turns.
type RouteSummary struct {
	Route        string  `json:"route"`
	Turns        int     `json:"turns"`
	Failures     int     `json:"failures"`
	SuccessRate  float64 `json:"success_rate"`
	TotalTokens  int     `json:"total_tokens"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
	P50LatencyMs float64 `json:"p50_latency_ms"`
	P95LatencyMs float64 `json:"p95_latency_ms"`
}

// NopRecorder discards all records.
type NopRecorder struct{}

func (NopRecorder) RecordTurn(context.Context, TurnRecord) {}

var _ Recorder = NopRecorder{}
