package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/stridelabs/coachcore/store"
)

func (d *DB) GetSubjectiveLog(ctx context.Context, day time.Time) (*store.SubjectiveLog, error) {
	query := `
		SELECT day, energy_level, soreness, stress_level, notes
		FROM subjective_log
		WHERE day = $1
	`

	var log store.SubjectiveLog
	err := d.db.QueryRowContext(ctx, query, day.Format("2006-01-02")).Scan(
		&log.Day, &log.EnergyLevel, &log.Soreness, &log.StressLevel, &log.Notes,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get subjective log")
	}
	return &log, nil
}

func (d *DB) GetLatestMeal(ctx context.Context) (*store.MealEntry, error) {
	query := `
		SELECT id, logged_at, description, calories, protein_g, carbs_g, fat_g
		FROM meal_entry
		ORDER BY logged_at DESC
		LIMIT 1
	`

	var meal store.MealEntry
	err := d.db.QueryRowContext(ctx, query).Scan(
		&meal.ID, &meal.LoggedAt, &meal.Description,
		&meal.Calories, &meal.ProteinG, &meal.CarbsG, &meal.FatG,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get latest meal")
	}
	return &meal, nil
}

func (d *DB) ListWorkouts(ctx context.Context, find *store.FindWorkouts) ([]*store.Workout, error) {
	query := `
		SELECT id, performed_at, kind, duration_min, completed
		FROM workout
	`
	args := []any{}
	argIndex := 1
	if find != nil && find.Since != nil {
		query += fmt.Sprintf(" WHERE performed_at >= $%d", argIndex)
		args = append(args, *find.Since)
		argIndex++
	}
	query += " ORDER BY performed_at DESC"
	if find != nil && find.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list workouts")
	}
	defer rows.Close()

	var workouts []*store.Workout
	for rows.Next() {
		var w store.Workout
		if err := rows.Scan(&w.ID, &w.PerformedAt, &w.Kind, &w.DurationMin, &w.Completed); err != nil {
			return nil, errors.Wrap(err, "failed to scan workout")
		}
		workouts = append(workouts, &w)
	}
	return workouts, rows.Err()
}

func (d *DB) GetGoalSettings(ctx context.Context) (*store.GoalSettings, error) {
	query := `
		SELECT primary_goal, target_weight_kg, weekly_sessions, calorie_target, protein_target_g, updated_at
		FROM goal_settings
		ORDER BY updated_at DESC
		LIMIT 1
	`

	var goals store.GoalSettings
	err := d.db.QueryRowContext(ctx, query).Scan(
		&goals.PrimaryGoal, &goals.TargetWeightKg, &goals.WeeklySessions,
		&goals.CalorieTarget, &goals.ProteinTargetG, &goals.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get goal settings")
	}
	return &goals, nil
}

func (d *DB) ListStrengthSessions(ctx context.Context, find *store.FindStrengthSessions) ([]*store.StrengthSession, error) {
	query := `
		SELECT performed_at, lift, top_set_kg, reps, volume_kg
		FROM strength_session
	`
	args := []any{}
	argIndex := 1
	if find != nil && find.Since != nil {
		query += fmt.Sprintf(" WHERE performed_at >= $%d", argIndex)
		args = append(args, *find.Since)
		argIndex++
	}
	query += " ORDER BY performed_at DESC"
	if find != nil && find.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list strength sessions")
	}
	defer rows.Close()

	var sessions []*store.StrengthSession
	for rows.Next() {
		var s store.StrengthSession
		if err := rows.Scan(&s.PerformedAt, &s.Lift, &s.TopSetKg, &s.Reps, &s.VolumeKg); err != nil {
			return nil, errors.Wrap(err, "failed to scan strength session")
		}
		sessions = append(sessions, &s)
	}
	return sessions, rows.Err()
}

func (d *DB) ListDailyActivity(ctx context.Context, find *store.FindDailyActivity) ([]*store.DailyActivity, error) {
	query := `
		SELECT day, steps, active_energy_kcal
		FROM daily_activity
	`
	args := []any{}
	argIndex := 1
	if find != nil && find.Since != nil {
		query += fmt.Sprintf(" WHERE day >= $%d", argIndex)
		args = append(args, find.Since.Format("2006-01-02"))
		argIndex++
	}
	query += " ORDER BY day DESC"
	if find != nil && find.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list daily activity")
	}
	defer rows.Close()

	var days []*store.DailyActivity
	for rows.Next() {
		var day store.DailyActivity
		if err := rows.Scan(&day.Day, &day.Steps, &day.ActiveEnergyKcal); err != nil {
			return nil, errors.Wrap(err, "failed to scan daily activity")
		}
		days = append(days, &day)
	}
	return days, rows.Err()
}
