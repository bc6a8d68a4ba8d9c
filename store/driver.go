package store

import (
	"context"
	"database/sql"
	"time"
)

// Driver is the read-only database interface backing app-context lookups.
// Logged data is written by the companion app; this module only queries it.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	Ping(ctx context.Context) error

	// GetSubjectiveLog returns the self-reported log for one day, or nil
	// when nothing was logged.
	GetSubjectiveLog(ctx context.Context, day time.Time) (*SubjectiveLog, error)

	// GetLatestMeal returns the most recently logged meal, or nil.
	GetLatestMeal(ctx context.Context) (*MealEntry, error)

	// ListWorkouts returns workouts matching the find, most recent first.
	ListWorkouts(ctx context.Context, find *FindWorkouts) ([]*Workout, error)

	// GetGoalSettings returns the active goal configuration, or nil.
	GetGoalSettings(ctx context.Context) (*GoalSettings, error)

	// ListStrengthSessions returns strength sessions matching the find,
	// most recent first.
	ListStrengthSessions(ctx context.Context, find *FindStrengthSessions) ([]*StrengthSession, error)

	// ListDailyActivity returns per-day activity rows matching the find,
	// most recent first.
	ListDailyActivity(ctx context.Context, find *FindDailyActivity) ([]*DailyActivity, error)
}

// SubjectiveLog is one day's self-reported state.
type SubjectiveLog struct {
	Day         time.Time
	EnergyLevel int
	Soreness    int
	StressLevel int
	Notes       string
}

// MealEntry is one logged meal.
type MealEntry struct {
	ID          int64
	LoggedAt    time.Time
	Description string
	Calories    int
	ProteinG    int
	CarbsG      int
	FatG        int
}

// Workout is one logged or scheduled training session.
type Workout struct {
	ID          int64
	PerformedAt time.Time
	Kind        string
	DurationMin int
	Completed   bool
}

// FindWorkouts filters workout queries.
type FindWorkouts struct {
	Since *time.Time
	Limit int
}

// GoalSettings is the active goal configuration.
type GoalSettings struct {
	PrimaryGoal    string
	TargetWeightKg float64
	WeeklySessions int
	CalorieTarget  int
	ProteinTargetG int
	UpdatedAt      time.Time
}

// StrengthSession is one logged strength session's top set for one lift.
type StrengthSession struct {
	PerformedAt time.Time
	Lift        string
	TopSetKg    float64
	Reps        int
	VolumeKg    float64
}

// FindStrengthSessions filters strength queries.
type FindStrengthSessions struct {
	Since *time.Time
	Limit int
}

// DailyActivity is one day's activity rollup.
type DailyActivity struct {
	Day              time.Time
	Steps            int
	ActiveEnergyKcal float64
}

// FindDailyActivity filters daily activity queries.
type FindDailyActivity struct {
	Since *time.Time
	Limit int
}
