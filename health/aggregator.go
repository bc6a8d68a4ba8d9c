package health

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stridelabs/coachcore/cache"
	"github.com/stridelabs/coachcore/internal/profile"
)

// ProgressStage identifies a stage of snapshot assembly. Stages are emitted
// in a fixed order, but sub-fetches within a stage complete in any order;
// treat progress as advisory, never as a per-field completion signal.
type ProgressStage string

const (
	StageInitializing ProgressStage = "initializing"
	StageFetching     ProgressStage = "fetching"
	StageMerging      ProgressStage = "merging"
	StageComplete     ProgressStage = "complete"
)

// ProgressFunc receives assembly progress events.
type ProgressFunc func(stage ProgressStage)

// Aggregator builds HealthContextSnapshots from the telemetry and app
// collaborators, caching each signal independently.
type Aggregator struct {
	telemetry TelemetryProvider
	app       AppContextProvider
	cache     cache.CacheService
	policy    profile.Policy
	now       func() time.Time
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClock injects a clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// NewAggregator creates a context aggregator.
func NewAggregator(telemetry TelemetryProvider, app AppContextProvider, cacheSvc cache.CacheService, policy profile.Policy, opts ...Option) *Aggregator {
	a := &Aggregator{
		telemetry: telemetry,
		app:       app,
		cache:     cacheSvc,
		policy:    policy,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble builds a complete snapshot. It never fails: each sub-fetch is
// independently guarded and a failed source degrades to its default value.
// When forceRefresh is false, a non-expired cached snapshot short-circuits
// the whole assembly.
func (a *Aggregator) Assemble(ctx context.Context, forceRefresh bool, progress ProgressFunc) *Snapshot {
	start := a.now()
	emit(progress, StageInitializing)

	if !forceRefresh {
		if v, ok := a.cache.Get(ctx, cache.BucketSnapshot); ok {
			if snap, ok := v.(*Snapshot); ok {
				slog.Debug("snapshot served from cache", "generated_at", snap.GeneratedAt)
				emit(progress, StageComplete)
				return snap
			}
		}
	}

	emit(progress, StageFetching)

	var (
		activity ActivityMetrics
		heart    HeartMetrics
		body     BodyMetrics
		sleep    SleepSession

		subjective SubjectiveLog
		meal       MealSummary
		workouts   WorkoutSummary
		goals      GoalContext
		strength   StrengthTrend
		history    []DailyActivity
	)

	// Each goroutine owns exactly one result variable; the Wait below is the
	// only synchronization point.
	g := new(errgroup.Group)
	g.Go(func() error {
		activity = fetchSignal(ctx, a.cache, cache.BucketActivity, a.policy.SignalTTL, forceRefresh, "activity", a.telemetry.TodayActivity)
		return nil
	})
	g.Go(func() error {
		heart = fetchSignal(ctx, a.cache, cache.BucketHeart, a.policy.SignalTTL, forceRefresh, "heart", a.telemetry.HeartHealth)
		return nil
	})
	g.Go(func() error {
		body = fetchSignal(ctx, a.cache, cache.BucketBody, a.policy.BodyTTL, forceRefresh, "body", a.telemetry.LatestBody)
		return nil
	})
	g.Go(func() error {
		sleep = fetchSignal(ctx, a.cache, cache.BucketSleep, a.policy.SignalTTL, forceRefresh, "sleep", a.telemetry.LastNightSleep)
		return nil
	})

	g.Go(func() error {
		subjective = fetchOrDefault(ctx, "subjective", a.app.TodaySubjectiveLog)
		return nil
	})
	g.Go(func() error {
		meal = fetchOrDefault(ctx, "recent_meal", a.app.LatestMeal)
		return nil
	})
	g.Go(func() error {
		workouts = fetchOrDefault(ctx, "workouts", a.app.RecentWorkouts)
		return nil
	})
	g.Go(func() error {
		goals = fetchOrDefault(ctx, "goals", a.app.GoalContext)
		return nil
	})
	g.Go(func() error {
		strength = fetchOrDefault(ctx, "strength", a.app.StrengthTrends)
		return nil
	})
	g.Go(func() error {
		history = fetchOrDefault(ctx, "activity_history", func(ctx context.Context) ([]DailyActivity, error) {
			return a.app.DailyActivityHistory(ctx, 14)
		})
		return nil
	})

	_ = g.Wait()

	emit(progress, StageMerging)

	snap := &Snapshot{
		GeneratedAt: a.now(),
		Subjective:  subjective,
		Environment: environmentFor(a.now()),
		Activity:    activity,
		Sleep:       sleep,
		Heart:       heart,
		Body:        body,
		App: AppContext{
			RecentMeal: meal,
			Workouts:   workouts,
			Goals:      goals,
			Strength:   strength,
		},
		Trends: computeTrends(history, a.policy),
	}

	// A cancelled assembly still returns its degraded snapshot, but only a
	// fully-attempted one is worth caching.
	if ctx.Err() == nil {
		_ = a.cache.Set(ctx, cache.BucketSnapshot, snap, a.policy.SnapshotTTL)
	}

	slog.Debug("snapshot assembled",
		"elapsed_ms", a.now().Sub(start).Milliseconds(),
		"trend_sample_days", snap.Trends.SampleDays,
		"forced", forceRefresh)

	emit(progress, StageComplete)
	return snap
}

// fetchSignal resolves one telemetry signal: cache bucket first (unless
// forced), then the provider; a provider failure degrades to the zero value
// for that one signal only.
func fetchSignal[T any](ctx context.Context, c cache.CacheService, bucket string, ttl time.Duration, force bool, name string, fetch func(context.Context) (T, error)) T {
	if !force {
		if v, ok := c.Get(ctx, bucket); ok {
			if typed, ok := v.(T); ok {
				return typed
			}
		}
	}

	val, err := fetch(ctx)
	if err != nil {
		slog.Warn("signal fetch failed, using default", "signal", name, "error", err)
		var zero T
		return zero
	}

	_ = c.Set(ctx, bucket, val, ttl)
	return val
}

// fetchOrDefault guards one app-context lookup.
func fetchOrDefault[T any](ctx context.Context, name string, fetch func(context.Context) (T, error)) T {
	val, err := fetch(ctx)
	if err != nil {
		slog.Warn("app context fetch failed, using default", "lookup", name, "error", err)
		var zero T
		return zero
	}
	return val
}

func emit(progress ProgressFunc, stage ProgressStage) {
	if progress != nil {
		progress(stage)
	}
}
