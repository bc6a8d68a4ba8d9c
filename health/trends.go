package health

import (
	"github.com/stridelabs/coachcore/internal/profile"
)

// computeTrends derives trend figures from historical daily activity,
// most-recent-first. A trend is only emitted once enough valid days exist,
// and computed percentages are clamped to guard against divide-by-near-zero
// blowups on sparse baselines.
func computeTrends(history []DailyActivity, policy profile.Policy) Trends {
	var valid []DailyActivity
	for _, day := range history {
		if day.Steps > 0 || day.ActiveEnergyKcal > 0 {
			valid = append(valid, day)
		}
	}

	trends := Trends{SampleDays: len(valid)}
	if len(valid) < policy.TrendMinSampleDays {
		return trends
	}

	current := valid[:7]
	previous := valid[7:]
	if len(previous) > 7 {
		previous = previous[:7]
	}
	if len(previous) == 0 {
		return trends
	}

	currentAvg := averageLoad(current)
	previousAvg := averageLoad(previous)
	if previousAvg <= 0 {
		return trends
	}

	pct := (currentAvg - previousAvg) / previousAvg * 100
	if pct > policy.TrendClampPercent {
		pct = policy.TrendClampPercent
	}
	if pct < -policy.TrendClampPercent {
		pct = -policy.TrendClampPercent
	}

	trends.ActivityWeekOverWeekPct = &pct
	return trends
}

// averageLoad scores a window of days. Active energy is preferred; steps
// stand in when a day has no energy sample.
func averageLoad(days []DailyActivity) float64 {
	if len(days) == 0 {
		return 0
	}
	var total float64
	for _, d := range days {
		if d.ActiveEnergyKcal > 0 {
			total += d.ActiveEnergyKcal
		} else {
			total += float64(d.Steps) / 20.0
		}
	}
	return total / float64(len(days))
}
