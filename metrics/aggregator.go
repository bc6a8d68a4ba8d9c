package metrics

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Aggregator aggregates turn records in memory, bucketed by hour and route.
type Aggregator struct {
	mu sync.RWMutex

	// key = "hourBucket|route"
	buckets map[string]*routeBucket

	now func() time.Time
}

type routeBucket struct {
	hourBucket time.Time
	route      string
	turnCount  int64
	failCount  int64
	tokenSum   int64
	latencies  []int64 // in milliseconds
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClock injects a clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// NewAggregator creates an in-memory turn aggregator.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{
		buckets: make(map[string]*routeBucket),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var _ Recorder = (*Aggregator)(nil)

// RecordTurn records one processed turn into the current hour's bucket.
func (a *Aggregator) RecordTurn(_ context.Context, record TurnRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()

	hourBucket := truncateToHour(a.now())
	key := makeKey(hourBucket, record.Route)

	bucket, exists := a.buckets[key]
	if !exists {
		bucket = &routeBucket{
			hourBucket: hourBucket,
			route:      record.Route,
			latencies:  make([]int64, 0, 100),
		}
		a.buckets[key] = bucket
	}

	bucket.turnCount++
	if !record.Success {
		bucket.failCount++
	}
	bucket.tokenSum += int64(record.TokensUsed)
	bucket.latencies = append(bucket.latencies, record.Latency.Milliseconds())
}

// Summaries returns aggregated per-route stats across all retained buckets,
// sorted by route name.
func (a *Aggregator) Summaries() []RouteSummary {
	a.mu.RLock()
	defer a.mu.RUnlock()

	merged := make(map[string]*routeBucket)
	for _, bucket := range a.buckets {
		agg, exists := merged[bucket.route]
		if !exists {
			agg = &routeBucket{route: bucket.route}
			merged[bucket.route] = agg
		}
		agg.turnCount += bucket.turnCount
		agg.failCount += bucket.failCount
		agg.tokenSum += bucket.tokenSum
		agg.latencies = append(agg.latencies, bucket.latencies...)
	}

	summaries := make([]RouteSummary, 0, len(merged))
	for _, agg := range merged {
		s := RouteSummary{
			Route:       agg.route,
			Turns:       int(agg.turnCount),
			Failures:    int(agg.failCount),
			TotalTokens: int(agg.tokenSum),
		}
		if agg.turnCount > 0 {
			s.SuccessRate = float64(agg.turnCount-agg.failCount) / float64(agg.turnCount)
			s.AvgLatencyMs = float64(sumLatencies(agg.latencies)) / float64(agg.turnCount)
		}
		s.P50LatencyMs = float64(percentile(agg.latencies, 50))
		s.P95LatencyMs = float64(percentile(agg.latencies, 95))
		summaries = append(summaries, s)
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Route < summaries[j].Route })
	return summaries
}

// Flush returns and clears all buckets for hours before the given time.
func (a *Aggregator) Flush(beforeHour time.Time) []RouteSummary {
	a.mu.Lock()
	defer a.mu.Unlock()

	var flushed []RouteSummary
	keysToDelete := make([]string, 0)

	for key, bucket := range a.buckets {
		if bucket.hourBucket.Before(beforeHour) {
			s := RouteSummary{
				Route:       bucket.route,
				Turns:       int(bucket.turnCount),
				Failures:    int(bucket.failCount),
				TotalTokens: int(bucket.tokenSum),
			}
			if bucket.turnCount > 0 {
				s.SuccessRate = float64(bucket.turnCount-bucket.failCount) / float64(bucket.turnCount)
				s.AvgLatencyMs = float64(sumLatencies(bucket.latencies)) / float64(bucket.turnCount)
			}
			s.P50LatencyMs = float64(percentile(bucket.latencies, 50))
			s.P95LatencyMs = float64(percentile(bucket.latencies, 95))
			flushed = append(flushed, s)
			keysToDelete = append(keysToDelete, key)
		}
	}

	for _, key := range keysToDelete {
		delete(a.buckets, key)
	}

	return flushed
}

func truncateToHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

func makeKey(hourBucket time.Time, route string) string {
	return hourBucket.Format(time.RFC3339) + "|" + route
}

func sumLatencies(latencies []int64) int64 {
	var sum int64
	for _, l := range latencies {
		sum += l
	}
	return sum
}

func percentile(latencies []int64, p int) int64 {
	if len(latencies) == 0 {
		return 0
	}

	sorted := make([]int64, len(latencies))
	copy(sorted, latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := (len(sorted) - 1) * p / 100
	return sorted[idx]
}
