// Package health assembles a consistent snapshot of the user's current
// physiological, activity, and behavioral state from independently-latent
// sources. Every snapshot field is always populated: a failed upstream fetch
// degrades to an explicit default value, never a nil that downstream
// consumers have to guard.
package health

import "time"

// ActivityMetrics is today's activity summary.
type ActivityMetrics struct {
	Steps            int
	ActiveEnergyKcal float64
	ExerciseMinutes  int
	StandHours       int
	DistanceMeters   float64
}

// HeartMetrics is the current heart-health summary.
type HeartMetrics struct {
	RestingHeartRate float64
	HeartRateVarMs   float64
	LatestHeartRate  float64
}

// BodyMetrics is the latest body-composition measurement.
type BodyMetrics struct {
	WeightKg       float64
	BodyFatPercent float64
	LeanMassKg     float64
	MeasuredAt     time.Time
}

// SleepSession is last night's sleep summary.
type SleepSession struct {
	Start          time.Time
	End            time.Time
	AsleepMinutes  int
	RemMinutes     int
	DeepMinutes    int
	EfficiencyPct  float64
}

// SubjectiveLog is today's self-reported state.
type SubjectiveLog struct {
	EnergyLevel int // 1-5, 0 when unreported
	Soreness    int
	StressLevel int
	Notes       string
}

// EnvironmentContext is coarse environmental framing for the day.
type EnvironmentContext struct {
	LocalTime time.Time
	DayOfWeek time.Weekday
	PartOfDay string // morning, afternoon, evening, night
}

// MealSummary describes the most recent logged meal.
type MealSummary struct {
	Description string
	Calories    int
	ProteinG    int
	CarbsG      int
	FatG        int
	LoggedAt    time.Time
}

// WorkoutSummary describes recent, ongoing, and upcoming training.
type WorkoutSummary struct {
	LastWorkout     string
	LastWorkoutAt   time.Time
	OngoingWorkout  string
	UpcomingWorkout string
	UpcomingAt      time.Time
}

// GoalContext describes the user's active goals.
type GoalContext struct {
	PrimaryGoal     string
	TargetWeightKg  float64
	WeeklySessions  int
	CalorieTarget   int
	ProteinTargetG  int
}

// StrengthTrend summarizes recent strength analytics.
type StrengthTrend struct {
	TopLifts        map[string]float64 // lift name -> best recent weight (kg)
	VolumeTrendPct  float64            // recent volume change, percent
	SessionsPerWeek float64
}

// AppContext bundles the app-specific lookups.
type AppContext struct {
	RecentMeal MealSummary
	Workouts   WorkoutSummary
	Goals      GoalContext
	Strength   StrengthTrend
}

// Trends carries figures computed from historical records. Pointer fields are
// nil when the sample is too small to trust, which is the one deliberate
// exception to the no-nil rule: a missing trend means "not enough data",
// not "zero change".
type Trends struct {
	ActivityWeekOverWeekPct *float64
	SampleDays              int
}

// Snapshot is the merged, always-complete view handed to the AI pipelines.
type Snapshot struct {
	GeneratedAt time.Time
	Subjective  SubjectiveLog
	Environment EnvironmentContext
	Activity    ActivityMetrics
	Sleep       SleepSession
	Heart       HeartMetrics
	Body        BodyMetrics
	App         AppContext
	Trends      Trends
}

// DailyActivity is one day of historical activity used for trend computation.
type DailyActivity struct {
	Day              time.Time
	Steps            int
	ActiveEnergyKcal float64
}

// environmentFor derives the environment context from a point in time.
func environmentFor(now time.Time) EnvironmentContext {
	partOfDay := "night"
	switch h := now.Hour(); {
	case h >= 5 && h < 12:
		partOfDay = "morning"
	case h >= 12 && h < 17:
		partOfDay = "afternoon"
	case h >= 17 && h < 22:
		partOfDay = "evening"
	}
	return EnvironmentContext{
		LocalTime: now,
		DayOfWeek: now.Weekday(),
		PartOfDay: partOfDay,
	}
}
