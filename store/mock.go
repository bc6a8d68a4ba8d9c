package store

import (
	"context"
	"database/sql"
	"time"
)

// MockDriver is a scripted Driver for testing. Unset lookups return empty
// results.
type MockDriver struct {
	SubjectiveFunc func(ctx context.Context, day time.Time) (*SubjectiveLog, error)
	MealFunc       func(ctx context.Context) (*MealEntry, error)
	WorkoutsFunc   func(ctx context.Context, find *FindWorkouts) ([]*Workout, error)
	GoalsFunc      func(ctx context.Context) (*GoalSettings, error)
	StrengthFunc   func(ctx context.Context, find *FindStrengthSessions) ([]*StrengthSession, error)
	ActivityFunc   func(ctx context.Context, find *FindDailyActivity) ([]*DailyActivity, error)
}

func (m *MockDriver) GetDB() *sql.DB { return nil }

func (m *MockDriver) Close() error { return nil }

func (m *MockDriver) Ping(context.Context) error { return nil }

func (m *MockDriver) GetSubjectiveLog(ctx context.Context, day time.Time) (*SubjectiveLog, error) {
	if m.SubjectiveFunc != nil {
		return m.SubjectiveFunc(ctx, day)
	}
	return nil, nil
}

func (m *MockDriver) GetLatestMeal(ctx context.Context) (*MealEntry, error) {
	if m.MealFunc != nil {
		return m.MealFunc(ctx)
	}
	return nil, nil
}

func (m *MockDriver) ListWorkouts(ctx context.Context, find *FindWorkouts) ([]*Workout, error) {
	if m.WorkoutsFunc != nil {
		return m.WorkoutsFunc(ctx, find)
	}
	return nil, nil
}

func (m *MockDriver) GetGoalSettings(ctx context.Context) (*GoalSettings, error) {
	if m.GoalsFunc != nil {
		return m.GoalsFunc(ctx)
	}
	return nil, nil
}

func (m *MockDriver) ListStrengthSessions(ctx context.Context, find *FindStrengthSessions) ([]*StrengthSession, error) {
	if m.StrengthFunc != nil {
		return m.StrengthFunc(ctx, find)
	}
	return nil, nil
}

func (m *MockDriver) ListDailyActivity(ctx context.Context, find *FindDailyActivity) ([]*DailyActivity, error) {
	if m.ActivityFunc != nil {
		return m.ActivityFunc(ctx, find)
	}
	return nil, nil
}

var _ Driver = (*MockDriver)(nil)
