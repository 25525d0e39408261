package main

import (
	"encoding/json"
	"math"
)

// Goal modes. Bulk treats the calorie goal as a floor to reach, cut as a
// ceiling not to exceed; protein is always "more is better".
const (
	modeBulk = "bulk"
	modeCut  = "cut"
)

// parseMode maps anything other than "bulk" to "cut", the default when a week
// has no goal row.
func parseMode(s string) string {
	if s == modeBulk {
		return modeBulk
	}
	return modeCut
}

/* ─── Tiers ──────────────────────────────────────────────────────────── */

// tier is one of four ordered colour buckets for a percentage of goal.
type tier int

const (
	tierRed tier = iota
	tierOrange
	tierYellow
	tierGreen
)

var tierNames = [...]string{"red", "orange", "yellow", "green"}

// tierPalette is the fill colour per tier, indexed by tier.
var tierPalette = [...]string{
	"rgba(239, 68, 68, 0.92)",
	"rgba(245, 158, 11, 0.92)",
	"rgba(234, 179, 8, 0.92)",
	"rgba(16, 185, 129, 0.92)",
}

func (t tier) String() string { return tierNames[t] }

// Color returns the RGBA fill for the tier.
func (t tier) Color() string { return tierPalette[t] }

func (t tier) MarshalJSON() ([]byte, error) { return json.Marshal(t.String()) }

/* ─── Percentages ────────────────────────────────────────────────────── */

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// rawPercent is actual/goal*100, unbounded above. A nil or non-positive goal yields 0.
func rawPercent(actual float64, goal *int) float64 {
	if goal == nil || *goal <= 0 {
		return 0
	}
	return finiteOrZero(actual) / float64(*goal) * 100
}

// clampedPercent is rawPercent clamped to [0, 100]. It drives fill width only,
// never colour.
func clampedPercent(actual float64, goal *int) float64 {
	return math.Max(0, math.Min(100, rawPercent(actual, goal)))
}

// calorieColorTier classifies a raw calorie percentage. The comparisons and
// their order are fixed: bulk is green from 90% up with no upper bound, cut is
// red from 100% up.
func calorieColorTier(percent float64, mode string) tier {
	p := finiteOrZero(percent)

	if mode == modeBulk {
		switch {
		case p < 50:
			return tierRed
		case p < 75:
			return tierOrange
		case p < 90:
			return tierYellow
		default:
			return tierGreen
		}
	}

	switch {
	case p >= 100:
		return tierRed
	case p >= 90:
		return tierOrange
	case p >= 75:
		return tierYellow
	default:
		return tierGreen
	}
}

// proteinColorTier classifies a raw protein percentage independent of mode;
// green is sticky above 100%.
func proteinColorTier(percent float64) tier {
	p := finiteOrZero(percent)
	switch {
	case p < 50:
		return tierRed
	case p < 75:
		return tierOrange
	case p < 90:
		return tierYellow
	default:
		return tierGreen
	}
}

/* ─── Progress ───────────────────────────────────────────────────────── */

// metricProgress is the rendered state of one progress ring or bar.
type metricProgress struct {
	Actual         int     `json:"actual"`
	Goal           *int    `json:"goal"`
	RawPercent     float64 `json:"raw_percent"`
	ClampedPercent float64 `json:"clamped_percent"`
	Tier           tier    `json:"tier"`
	Color          string  `json:"color"`
}

// goalProgress pairs calorie and protein progress for one period.
type goalProgress struct {
	Mode     string         `json:"mode"`
	Calories metricProgress `json:"calories"`
	Protein  metricProgress `json:"protein"`
}

// evaluateProgress computes calorie and protein progress of t against the
// given targets. A nil goal row evaluates in cut mode with no targets.
func evaluateProgress(t Totals, g *weeklyGoal, days int) goalProgress {
	mode := modeCut
	var calGoal, protGoal *int
	if g != nil {
		mode = parseMode(g.Mode)
		calGoal = periodTarget(g.CalorieGoal, days)
		protGoal = periodTarget(g.ProteinGoalG, days)
	}

	calRaw := rawPercent(float64(t.Calories), calGoal)
	protRaw := rawPercent(float64(t.Protein), protGoal)
	calTier := calorieColorTier(calRaw, mode)
	protTier := proteinColorTier(protRaw)

	return goalProgress{
		Mode: mode,
		Calories: metricProgress{
			Actual: t.Calories, Goal: calGoal,
			RawPercent: calRaw, ClampedPercent: clampedPercent(float64(t.Calories), calGoal),
			Tier: calTier, Color: calTier.Color(),
		},
		Protein: metricProgress{
			Actual: t.Protein, Goal: protGoal,
			RawPercent: protRaw, ClampedPercent: clampedPercent(float64(t.Protein), protGoal),
			Tier: protTier, Color: protTier.Color(),
		},
	}
}

// periodTarget scales a daily goal to a period of days (7 for a week).
func periodTarget(daily *int, days int) *int {
	if daily == nil {
		return nil
	}
	v := *daily * days
	return &v
}
