// Package store exposes the companion app's logged data to the coaching
// core through a read-only driver, and adapts query results into the
// snapshot field types the aggregator consumes.
package store

import (
	"context"
	"time"

	"github.com/stridelabs/coachcore/health"
	"github.com/stridelabs/coachcore/internal/profile"
)

const (
	workoutLookback  = 7 * 24 * time.Hour
	strengthLookback = 28 * 24 * time.Hour
)

// Store wraps a Driver and implements the app-context lookups used during
// snapshot assembly.
type Store struct {
	driver Driver
	policy profile.Policy
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock injects a clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a store backed by the given driver.
func New(driver Driver, policy profile.Policy, opts ...Option) *Store {
	s := &Store{driver: driver, policy: policy, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close closes the underlying driver.
func (s *Store) Close() error {
	return s.driver.Close()
}

// Driver returns the underlying driver.
func (s *Store) Driver() Driver {
	return s.driver
}

var _ health.AppContextProvider = (*Store)(nil)

func (s *Store) TodaySubjectiveLog(ctx context.Context) (health.SubjectiveLog, error) {
	row, err := s.driver.GetSubjectiveLog(ctx, s.now())
	if err != nil {
		return health.SubjectiveLog{}, err
	}
	if row == nil {
		return health.SubjectiveLog{}, nil
	}
	return health.SubjectiveLog{
		EnergyLevel: row.EnergyLevel,
		Soreness:    row.Soreness,
		StressLevel: row.StressLevel,
		Notes:       row.Notes,
	}, nil
}

func (s *Store) LatestMeal(ctx context.Context) (health.MealSummary, error) {
	row, err := s.driver.GetLatestMeal(ctx)
	if err != nil {
		return health.MealSummary{}, err
	}
	if row == nil {
		return health.MealSummary{}, nil
	}
	return health.MealSummary{
		Description: row.Description,
		Calories:    row.Calories,
		ProteinG:    row.ProteinG,
		CarbsG:      row.CarbsG,
		FatG:        row.FatG,
		LoggedAt:    row.LoggedAt,
	}, nil
}

func (s *Store) RecentWorkouts(ctx context.Context) (health.WorkoutSummary, error) {
	since := s.now().Add(-workoutLookback)
	rows, err := s.driver.ListWorkouts(ctx, &FindWorkouts{Since: &since, Limit: 20})
	if err != nil {
		return health.WorkoutSummary{}, err
	}

	now := s.now()
	var summary health.WorkoutSummary
	for _, w := range rows {
		switch {
		case w.Completed && w.PerformedAt.Before(now):
			// Rows arrive most-recent-first; the first completed one wins.
			if summary.LastWorkout == "" {
				summary.LastWorkout = w.Kind
				summary.LastWorkoutAt = w.PerformedAt
			}
		case !w.Completed && w.PerformedAt.After(now):
			// Keep the soonest upcoming session.
			if summary.UpcomingWorkout == "" || w.PerformedAt.Before(summary.UpcomingAt) {
				summary.UpcomingWorkout = w.Kind
				summary.UpcomingAt = w.PerformedAt
			}
		case !w.Completed && isOngoing(w, now):
			if summary.OngoingWorkout == "" {
				summary.OngoingWorkout = w.Kind
			}
		}
	}
	return summary, nil
}

// isOngoing reports whether a not-yet-completed session has started and its
// planned duration has not elapsed. Sessions without a duration cannot be
// ongoing; they read as abandoned, not in progress.
func isOngoing(w *Workout, now time.Time) bool {
	if w.DurationMin <= 0 || w.PerformedAt.After(now) {
		return false
	}
	end := w.PerformedAt.Add(time.Duration(w.DurationMin) * time.Minute)
	return now.Before(end)
}

func (s *Store) GoalContext(ctx context.Context) (health.GoalContext, error) {
	row, err := s.driver.GetGoalSettings(ctx)
	if err != nil {
		return health.GoalContext{}, err
	}
	if row == nil {
		return health.GoalContext{}, nil
	}
	return health.GoalContext{
		PrimaryGoal:    row.PrimaryGoal,
		TargetWeightKg: row.TargetWeightKg,
		WeeklySessions: row.WeeklySessions,
		CalorieTarget:  row.CalorieTarget,
		ProteinTargetG: row.ProteinTargetG,
	}, nil
}

func (s *Store) StrengthTrends(ctx context.Context) (health.StrengthTrend, error) {
	since := s.now().Add(-strengthLookback)
	rows, err := s.driver.ListStrengthSessions(ctx, &FindStrengthSessions{Since: &since})
	if err != nil {
		return health.StrengthTrend{}, err
	}
	if len(rows) == 0 {
		return health.StrengthTrend{}, nil
	}

	topLifts := make(map[string]float64)
	trainingDays := make(map[string]struct{})
	var recentVolume, priorVolume float64
	midpoint := s.now().Add(-strengthLookback / 2)

	for _, session := range rows {
		if session.TopSetKg > topLifts[session.Lift] {
			topLifts[session.Lift] = session.TopSetKg
		}
		trainingDays[session.PerformedAt.Format("2006-01-02")] = struct{}{}
		if session.PerformedAt.After(midpoint) {
			recentVolume += session.VolumeKg
		} else {
			priorVolume += session.VolumeKg
		}
	}

	trend := health.StrengthTrend{
		TopLifts:        topLifts,
		SessionsPerWeek: float64(len(trainingDays)) / 4.0,
	}
	if priorVolume > 0 {
		pct := (recentVolume - priorVolume) / priorVolume * 100
		// Sparse prior halves produce absurd ratios; clamp like the
		// activity trend does.
		if pct > s.policy.TrendClampPercent {
			pct = s.policy.TrendClampPercent
		}
		if pct < -s.policy.TrendClampPercent {
			pct = -s.policy.TrendClampPercent
		}
		trend.VolumeTrendPct = pct
	}
	return trend, nil
}

func (s *Store) DailyActivityHistory(ctx context.Context, days int) ([]health.DailyActivity, error) {
	since := s.now().AddDate(0, 0, -days)
	rows, err := s.driver.ListDailyActivity(ctx, &FindDailyActivity{Since: &since, Limit: days})
	if err != nil {
		return nil, err
	}

	history := make([]health.DailyActivity, 0, len(rows))
	for _, row := range rows {
		history = append(history, health.DailyActivity{
			Day:              row.Day,
			Steps:            row.Steps,
			ActiveEnergyKcal: row.ActiveEnergyKcal,
		})
	}
	return history, nil
}
