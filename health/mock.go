package health

import (
	"context"
	"sync"
	"time"
)

// MockTelemetry is a scripted TelemetryProvider for testing. Each fetch can
// be overridden; unset fetches return fixed plausible values.
type MockTelemetry struct {
	mu sync.Mutex

	ActivityFunc func(ctx context.Context) (ActivityMetrics, error)
	HeartFunc    func(ctx context.Context) (HeartMetrics, error)
	BodyFunc     func(ctx context.Context) (BodyMetrics, error)
	SleepFunc    func(ctx context.Context) (SleepSession, error)

	// Calls counts provider invocations per signal name.
	Calls map[string]int
}

// NewMockTelemetry creates a mock telemetry provider.
func NewMockTelemetry() *MockTelemetry {
	return &MockTelemetry{Calls: make(map[string]int)}
}

func (m *MockTelemetry) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls[name]++
}

// CallCount returns how often a signal was fetched from the provider.
func (m *MockTelemetry) CallCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[name]
}

func (m *MockTelemetry) TodayActivity(ctx context.Context) (ActivityMetrics, error) {
	m.record("activity")
	if m.ActivityFunc != nil {
		return m.ActivityFunc(ctx)
	}
	return ActivityMetrics{Steps: 8200, ActiveEnergyKcal: 540, ExerciseMinutes: 42, StandHours: 9, DistanceMeters: 6400}, nil
}

func (m *MockTelemetry) HeartHealth(ctx context.Context) (HeartMetrics, error) {
	m.record("heart")
	if m.HeartFunc != nil {
		return m.HeartFunc(ctx)
	}
	return HeartMetrics{RestingHeartRate: 52, HeartRateVarMs: 68, LatestHeartRate: 61}, nil
}

func (m *MockTelemetry) LatestBody(ctx context.Context) (BodyMetrics, error) {
	m.record("body")
	if m.BodyFunc != nil {
		return m.BodyFunc(ctx)
	}
	return BodyMetrics{WeightKg: 81.4, BodyFatPercent: 17.2, LeanMassKg: 67.4}, nil
}

func (m *MockTelemetry) LastNightSleep(ctx context.Context) (SleepSession, error) {
	m.record("sleep")
	if m.SleepFunc != nil {
		return m.SleepFunc(ctx)
	}
	return SleepSession{AsleepMinutes: 432, RemMinutes: 96, DeepMinutes: 74, EfficiencyPct: 91}, nil
}

// Ensure MockTelemetry implements TelemetryProvider
var _ TelemetryProvider = (*MockTelemetry)(nil)

// MockAppContext is a scripted AppContextProvider for testing.
type MockAppContext struct {
	SubjectiveFunc func(ctx context.Context) (SubjectiveLog, error)
	MealFunc       func(ctx context.Context) (MealSummary, error)
	WorkoutsFunc   func(ctx context.Context) (WorkoutSummary, error)
	GoalsFunc      func(ctx context.Context) (GoalContext, error)
	StrengthFunc   func(ctx context.Context) (StrengthTrend, error)
	HistoryFunc    func(ctx context.Context, days int) ([]DailyActivity, error)
}

func (m *MockAppContext) TodaySubjectiveLog(ctx context.Context) (SubjectiveLog, error) {
	if m.SubjectiveFunc != nil {
		return m.SubjectiveFunc(ctx)
	}
	return SubjectiveLog{EnergyLevel: 4, Soreness: 2, StressLevel: 2}, nil
}

func (m *MockAppContext) LatestMeal(ctx context.Context) (MealSummary, error) {
	if m.MealFunc != nil {
		return m.MealFunc(ctx)
	}
	return MealSummary{Description: "chicken and rice", Calories: 640, ProteinG: 48, CarbsG: 70, FatG: 14}, nil
}

func (m *MockAppContext) RecentWorkouts(ctx context.Context) (WorkoutSummary, error) {
	if m.WorkoutsFunc != nil {
		return m.WorkoutsFunc(ctx)
	}
	return WorkoutSummary{LastWorkout: "push day"}, nil
}

func (m *MockAppContext) GoalContext(ctx context.Context) (GoalContext, error) {
	if m.GoalsFunc != nil {
		return m.GoalsFunc(ctx)
	}
	return GoalContext{PrimaryGoal: "recomposition", CalorieTarget: 2400, ProteinTargetG: 170}, nil
}

func (m *MockAppContext) StrengthTrends(ctx context.Context) (StrengthTrend, error) {
	if m.StrengthFunc != nil {
		return m.StrengthFunc(ctx)
	}
	return StrengthTrend{SessionsPerWeek: 4}, nil
}

func (m *MockAppContext) DailyActivityHistory(ctx context.Context, days int) ([]DailyActivity, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, days)
	}
	return nil, nil
}

// Ensure MockAppContext implements AppContextProvider
var _ AppContextProvider = (*MockAppContext)(nil)

// HistoryDays builds n days of history ending today, most-recent-first.
func HistoryDays(end time.Time, energies ...float64) []DailyActivity {
	days := make([]DailyActivity, len(energies))
	for i, e := range energies {
		days[i] = DailyActivity{
			Day:              end.AddDate(0, 0, -i),
			ActiveEnergyKcal: e,
		}
	}
	return days
}
