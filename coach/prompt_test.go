package coach

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/stridelabs/coachcore/health"
	"github.com/stridelabs/coachcore/session"
)

func TestBuildSystemPrompt_OmitsMissingReadings(t *testing.T) {
	snap := &health.Snapshot{
		GeneratedAt: time.Now(),
		Environment: health.EnvironmentContext{PartOfDay: "morning", DayOfWeek: time.Monday},
	}

	prompt := BuildSystemPrompt(snap, session.ModeChat)

	assert.Contains(t, prompt, "morning, Monday")
	assert.NotContains(t, prompt, "steps", "a zero activity reading must not be rendered")
	assert.NotContains(t, prompt, "Sleep:")
	assert.NotContains(t, prompt, "Goal:")
}

func TestBuildSystemPrompt_RendersPopulatedState(t *testing.T) {
	pct := 13.2
	snap := &health.Snapshot{
		Environment: health.EnvironmentContext{PartOfDay: "evening", DayOfWeek: time.Friday},
		Activity:    health.ActivityMetrics{Steps: 11000, ActiveEnergyKcal: 700, ExerciseMinutes: 55},
		Sleep:       health.SleepSession{AsleepMinutes: 405, EfficiencyPct: 88},
		Body:        health.BodyMetrics{WeightKg: 79.8, BodyFatPercent: 16.4},
		App: health.AppContext{
			Workouts: health.WorkoutSummary{OngoingWorkout: "upper body"},
			Goals:    health.GoalContext{PrimaryGoal: "lean bulk", CalorieTarget: 2900, ProteinTargetG: 180},
		},
		Trends: health.Trends{ActivityWeekOverWeekPct: &pct, SampleDays: 14},
	}

	prompt := BuildSystemPrompt(snap, session.ModeLogging)

	assert.Contains(t, prompt, "11000 steps")
	assert.Contains(t, prompt, "6h45m asleep")
	assert.Contains(t, prompt, "79.8 kg")
	assert.Contains(t, prompt, "In progress right now: upper body")
	assert.Contains(t, prompt, "lean bulk")
	assert.Contains(t, prompt, "+13% week over week")
	assert.Contains(t, prompt, "one short confirmation")
}
