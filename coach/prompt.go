package coach

import (
	"fmt"
	"strings"

	"github.com/stridelabs/coachcore/health"
	"github.com/stridelabs/coachcore/session"
)

const basePersona = `You are a personal fitness coach. You know the user's current health state and recent training; ground every answer in it. Be direct and practical. Never invent data that is not in the state below.`

// BuildSystemPrompt renders the assembled health snapshot into the system
// prompt for a grounded generation. Zero-valued fields are omitted so the
// model never sees a fabricated reading.
func BuildSystemPrompt(snapshot *health.Snapshot, mode session.Mode) string {
	var b strings.Builder
	b.WriteString(basePersona)

	switch mode {
	case session.ModeCoach:
		b.WriteString("\nThe user is in a focused coaching session: push toward their stated goals.")
	case session.ModeLogging:
		b.WriteString("\nThe user is logging data: keep replies to one short confirmation.")
	}

	b.WriteString("\n\nCurrent state (")
	b.WriteString(snapshot.Environment.PartOfDay)
	b.WriteString(", ")
	b.WriteString(snapshot.Environment.DayOfWeek.String())
	b.WriteString("):\n")

	if a := snapshot.Activity; a.Steps > 0 || a.ActiveEnergyKcal > 0 {
		fmt.Fprintf(&b, "- Today: %d steps, %.0f kcal active energy, %d min exercise\n",
			a.Steps, a.ActiveEnergyKcal, a.ExerciseMinutes)
	}
	if s := snapshot.Sleep; s.AsleepMinutes > 0 {
		fmt.Fprintf(&b, "- Sleep: %dh%02dm asleep, %.0f%% efficiency\n",
			s.AsleepMinutes/60, s.AsleepMinutes%60, s.EfficiencyPct)
	}
	if h := snapshot.Heart; h.RestingHeartRate > 0 {
		fmt.Fprintf(&b, "- Heart: resting %.0f bpm, HRV %.0f ms\n",
			h.RestingHeartRate, h.HeartRateVarMs)
	}
	if body := snapshot.Body; body.WeightKg > 0 {
		fmt.Fprintf(&b, "- Body: %.1f kg", body.WeightKg)
		if body.BodyFatPercent > 0 {
			fmt.Fprintf(&b, ", %.1f%% body fat", body.BodyFatPercent)
		}
		b.WriteString("\n")
	}
	if sub := snapshot.Subjective; sub.EnergyLevel > 0 {
		fmt.Fprintf(&b, "- Self-reported: energy %d/5, soreness %d/5, stress %d/5\n",
			sub.EnergyLevel, sub.Soreness, sub.StressLevel)
	}
	if meal := snapshot.App.RecentMeal; meal.Description != "" {
		fmt.Fprintf(&b, "- Last meal: %s (%d kcal, %dg protein)\n",
			meal.Description, meal.Calories, meal.ProteinG)
	}
	if w := snapshot.App.Workouts; w.LastWorkout != "" {
		fmt.Fprintf(&b, "- Last workout: %s\n", w.LastWorkout)
	}
	if w := snapshot.App.Workouts; w.OngoingWorkout != "" {
		fmt.Fprintf(&b, "- In progress right now: %s\n", w.OngoingWorkout)
	}
	if w := snapshot.App.Workouts; w.UpcomingWorkout != "" {
		fmt.Fprintf(&b, "- Next scheduled: %s\n", w.UpcomingWorkout)
	}
	if g := snapshot.App.Goals; g.PrimaryGoal != "" {
		fmt.Fprintf(&b, "- Goal: %s", g.PrimaryGoal)
		if g.CalorieTarget > 0 {
			fmt.Fprintf(&b, " (%d kcal, %dg protein daily)", g.CalorieTarget, g.ProteinTargetG)
		}
		b.WriteString("\n")
	}
	if st := snapshot.App.Strength; len(st.TopLifts) > 0 {
		b.WriteString("- Top lifts:")
		for lift, kg := range st.TopLifts {
			fmt.Fprintf(&b, " %s %.0fkg", lift, kg)
		}
		b.WriteString("\n")
	}
	if pct := snapshot.Trends.ActivityWeekOverWeekPct; pct != nil {
		fmt.Fprintf(&b, "- Activity trend: %+.0f%% week over week (%d days of data)\n",
			*pct, snapshot.Trends.SampleDays)
	}

	return b.String()
}
