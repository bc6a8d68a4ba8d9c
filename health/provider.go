package health

import "context"

// TelemetryProvider is the device/health-platform collaborator. Each call is
// independently latent and may fail independently of the others.
type TelemetryProvider interface {
	TodayActivity(ctx context.Context) (ActivityMetrics, error)
	HeartHealth(ctx context.Context) (HeartMetrics, error)
	LatestBody(ctx context.Context) (BodyMetrics, error)
	LastNightSleep(ctx context.Context) (SleepSession, error)
}

// AppContextProvider is the persistence/analytics collaborator. All queries
// are read-only.
type AppContextProvider interface {
	TodaySubjectiveLog(ctx context.Context) (SubjectiveLog, error)
	LatestMeal(ctx context.Context) (MealSummary, error)
	RecentWorkouts(ctx context.Context) (WorkoutSummary, error)
	GoalContext(ctx context.Context) (GoalContext, error)
	StrengthTrends(ctx context.Context) (StrengthTrend, error)

	// DailyActivityHistory returns up to days of historical activity,
	// most-recent-first.
	DailyActivityHistory(ctx context.Context, days int) ([]DailyActivity, error)
}
