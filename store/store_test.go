package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stridelabs/coachcore/internal/profile"
)

var testNow = time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)

func testStore(driver *MockDriver) *Store {
	return New(driver, profile.DefaultPolicy(), WithClock(func() time.Time { return testNow }))
}

func TestTodaySubjectiveLog_MissingRowIsZero(t *testing.T) {
	s := testStore(&MockDriver{})

	log, err := s.TodaySubjectiveLog(context.Background())
	require.NoError(t, err)
	assert.Zero(t, log.EnergyLevel)
}

func TestLatestMeal_MapsRow(t *testing.T) {
	s := testStore(&MockDriver{
		MealFunc: func(context.Context) (*MealEntry, error) {
			return &MealEntry{
				Description: "salmon and potatoes",
				Calories:    720, ProteinG: 46, CarbsG: 58, FatG: 28,
				LoggedAt: testNow.Add(-2 * time.Hour),
			}, nil
		},
	})

	meal, err := s.LatestMeal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "salmon and potatoes", meal.Description)
	assert.Equal(t, 720, meal.Calories)
}

func TestRecentWorkouts_PicksLastAndUpcoming(t *testing.T) {
	s := testStore(&MockDriver{
		WorkoutsFunc: func(_ context.Context, find *FindWorkouts) ([]*Workout, error) {
			require.NotNil(t, find.Since)
			return []*Workout{
				{Kind: "leg day", PerformedAt: testNow.Add(36 * time.Hour), Completed: false},
				{Kind: "pull day", PerformedAt: testNow.Add(12 * time.Hour), Completed: false},
				{Kind: "push day", PerformedAt: testNow.Add(-20 * time.Hour), Completed: true},
				{Kind: "run", PerformedAt: testNow.Add(-44 * time.Hour), Completed: true},
			}, nil
		},
	})

	summary, err := s.RecentWorkouts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "push day", summary.LastWorkout, "most recent completed session")
	assert.Equal(t, "pull day", summary.UpcomingWorkout, "soonest scheduled session")
}

func TestRecentWorkouts_DetectsOngoingSession(t *testing.T) {
	s := testStore(&MockDriver{
		WorkoutsFunc: func(_ context.Context, _ *FindWorkouts) ([]*Workout, error) {
			return []*Workout{
				// Started 30 minutes ago with a 60-minute plan: in progress.
				{Kind: "leg day", PerformedAt: testNow.Add(-30 * time.Minute), DurationMin: 60, Completed: false},
				{Kind: "push day", PerformedAt: testNow.Add(-20 * time.Hour), DurationMin: 55, Completed: true},
			}, nil
		},
	})

	summary, err := s.RecentWorkouts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "leg day", summary.OngoingWorkout)
	assert.Equal(t, "push day", summary.LastWorkout)
	assert.Empty(t, summary.UpcomingWorkout)
}

func TestRecentWorkouts_ElapsedSessionIsNotOngoing(t *testing.T) {
	s := testStore(&MockDriver{
		WorkoutsFunc: func(_ context.Context, _ *FindWorkouts) ([]*Workout, error) {
			return []*Workout{
				// Planned duration elapsed two hours ago and never marked
				// complete: abandoned, not in progress.
				{Kind: "run", PerformedAt: testNow.Add(-3 * time.Hour), DurationMin: 45, Completed: false},
			}, nil
		},
	})

	summary, err := s.RecentWorkouts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, summary.OngoingWorkout)
}

func TestStrengthTrends(t *testing.T) {
	s := testStore(&MockDriver{
		StrengthFunc: func(_ context.Context, _ *FindStrengthSessions) ([]*StrengthSession, error) {
			return []*StrengthSession{
				{PerformedAt: testNow.Add(-2 * 24 * time.Hour), Lift: "squat", TopSetKg: 140, VolumeKg: 5500},
				{PerformedAt: testNow.Add(-5 * 24 * time.Hour), Lift: "bench", TopSetKg: 100, VolumeKg: 4000},
				{PerformedAt: testNow.Add(-9 * 24 * time.Hour), Lift: "squat", TopSetKg: 135, VolumeKg: 5000},
				{PerformedAt: testNow.Add(-18 * 24 * time.Hour), Lift: "squat", TopSetKg: 132, VolumeKg: 5000},
				{PerformedAt: testNow.Add(-21 * 24 * time.Hour), Lift: "bench", TopSetKg: 97, VolumeKg: 4000},
			}, nil
		},
	})

	trend, err := s.StrengthTrends(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 140.0, trend.TopLifts["squat"], "best top set wins across sessions")
	assert.Equal(t, 100.0, trend.TopLifts["bench"])
	assert.InDelta(t, 1.25, trend.SessionsPerWeek, 0.001)
	// Recent half 14500 vs prior half 9000.
	assert.InDelta(t, 61.1, trend.VolumeTrendPct, 0.1)
}

func TestStrengthTrends_ClampsVolumeTrend(t *testing.T) {
	s := testStore(&MockDriver{
		StrengthFunc: func(_ context.Context, _ *FindStrengthSessions) ([]*StrengthSession, error) {
			return []*StrengthSession{
				{PerformedAt: testNow.Add(-2 * 24 * time.Hour), Lift: "squat", TopSetKg: 140, VolumeKg: 6000},
				// A near-zero prior half would otherwise yield 599900%.
				{PerformedAt: testNow.Add(-20 * 24 * time.Hour), Lift: "squat", TopSetKg: 60, VolumeKg: 1},
			}, nil
		},
	})

	trend, err := s.StrengthTrends(context.Background())
	require.NoError(t, err)
	assert.Equal(t, profile.DefaultPolicy().TrendClampPercent, trend.VolumeTrendPct)
}

func TestStrengthTrends_EmptyHistory(t *testing.T) {
	s := testStore(&MockDriver{})

	trend, err := s.StrengthTrends(context.Background())
	require.NoError(t, err)
	assert.Nil(t, trend.TopLifts)
	assert.Zero(t, trend.SessionsPerWeek)
}

func TestDailyActivityHistory(t *testing.T) {
	s := testStore(&MockDriver{
		ActivityFunc: func(_ context.Context, find *FindDailyActivity) ([]*DailyActivity, error) {
			assert.Equal(t, 14, find.Limit)
			return []*DailyActivity{
				{Day: testNow.AddDate(0, 0, -1), Steps: 9000, ActiveEnergyKcal: 600},
				{Day: testNow.AddDate(0, 0, -2), Steps: 7500, ActiveEnergyKcal: 480},
			}, nil
		},
	})

	history, err := s.DailyActivityHistory(context.Background(), 14)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 9000, history[0].Steps)
	assert.Equal(t, 480.0, history[1].ActiveEnergyKcal)
}
