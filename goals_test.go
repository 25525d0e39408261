package main

import (
	"encoding/json"
	"math"
	"testing"
)

func TestRawPercent_NoGoal(t *testing.T) {
	cases := []struct {
		name string
		goal *int
	}{
		{"nil goal", nil},
		{"zero goal", intPtr(0)},
		{"negative goal", intPtr(-100)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := rawPercent(1500, tc.goal); got != 0 {
				t.Errorf("rawPercent = %v, want 0", got)
			}
		})
	}
}

func TestRawPercent_NonFiniteActual(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if got := rawPercent(v, intPtr(2000)); got != 0 {
			t.Errorf("rawPercent(%v) = %v, want 0", v, got)
		}
	}
}

func TestRawPercent_Unbounded(t *testing.T) {
	if got := rawPercent(5000, intPtr(1000)); got != 500 {
		t.Errorf("rawPercent = %v, want 500", got)
	}
	if got := clampedPercent(5000, intPtr(1000)); got != 100 {
		t.Errorf("clampedPercent = %v, want 100", got)
	}
	if got := clampedPercent(-50, intPtr(1000)); got != 0 {
		t.Errorf("clampedPercent(-50) = %v, want 0", got)
	}
}

// TestCalorieColorTier_Cut checks the cut-mode boundaries evaluated top-down.
func TestCalorieColorTier_Cut(t *testing.T) {
	cases := []struct {
		p    float64
		want tier
	}{
		{0, tierGreen},
		{74.9, tierGreen},
		{75.0, tierYellow},
		{89.99, tierYellow},
		{90.0, tierOrange},
		{99.9, tierOrange},
		{100.0, tierRed},
		{150.0, tierRed},
		{math.NaN(), tierGreen},
	}
	for _, tc := range cases {
		if got := calorieColorTier(tc.p, modeCut); got != tc.want {
			t.Errorf("cut %v%% = %s, want %s", tc.p, got, tc.want)
		}
	}
}

// TestCalorieColorTier_Bulk checks the bulk boundaries and sticky green.
func TestCalorieColorTier_Bulk(t *testing.T) {
	cases := []struct {
		p    float64
		want tier
	}{
		{0, tierRed},
		{49.9, tierRed},
		{50, tierOrange},
		{74.99, tierOrange},
		{75, tierYellow},
		{90, tierGreen},
		{500, tierGreen},
	}
	for _, tc := range cases {
		if got := calorieColorTier(tc.p, modeBulk); got != tc.want {
			t.Errorf("bulk %v%% = %s, want %s", tc.p, got, tc.want)
		}
	}
}

func TestProteinColorTier(t *testing.T) {
	cases := []struct {
		p    float64
		want tier
	}{
		{10, tierRed},
		{50, tierOrange},
		{53.3, tierOrange},
		{80, tierYellow},
		{95, tierGreen},
		{200, tierGreen},
	}
	for _, tc := range cases {
		if got := proteinColorTier(tc.p); got != tc.want {
			t.Errorf("protein %v%% = %s, want %s", tc.p, got, tc.want)
		}
	}
}

func TestParseMode(t *testing.T) {
	if parseMode("bulk") != modeBulk {
		t.Error("bulk should parse as bulk")
	}
	for _, s := range []string{"cut", "", "BULK", "maintain"} {
		if parseMode(s) != modeCut {
			t.Errorf("parseMode(%q) should default to cut", s)
		}
	}
}

// TestEvaluateProgress_CutScenario is the day-view scenario: a cut goal of
// 2000 kcal / 150 g protein against 2100 kcal / 80 g eaten.
func TestEvaluateProgress_CutScenario(t *testing.T) {
	goal := &weeklyGoal{Mode: "cut", CalorieGoal: intPtr(2000), ProteinGoalG: intPtr(150)}
	p := evaluateProgress(Totals{Calories: 2100, Protein: 80}, goal, 1)

	if math.Abs(p.Calories.RawPercent-105) > 1e-9 {
		t.Errorf("calorie raw = %v, want 105", p.Calories.RawPercent)
	}
	if p.Calories.ClampedPercent != 100 {
		t.Errorf("calorie clamped = %v, want 100", p.Calories.ClampedPercent)
	}
	if p.Calories.Tier != tierRed {
		t.Errorf("calorie tier = %s, want red", p.Calories.Tier)
	}
	if math.Abs(p.Protein.RawPercent-53.333) > 0.01 {
		t.Errorf("protein raw = %v, want ~53.3", p.Protein.RawPercent)
	}
	if math.Abs(p.Protein.ClampedPercent-53.333) > 0.01 {
		t.Errorf("protein clamped = %v, want ~53.3", p.Protein.ClampedPercent)
	}
	if p.Protein.Tier != tierOrange {
		t.Errorf("protein tier = %s, want orange", p.Protein.Tier)
	}
	if p.Calories.Color != tierPalette[tierRed] {
		t.Errorf("calorie color = %s", p.Calories.Color)
	}
}

// TestEvaluateProgress_WeeklyTarget verifies daily goals scale by 7 for a week.
func TestEvaluateProgress_WeeklyTarget(t *testing.T) {
	goal := &weeklyGoal{Mode: "bulk", CalorieGoal: intPtr(3000), ProteinGoalG: nil}
	p := evaluateProgress(Totals{Calories: 10500}, goal, 7)

	if p.Calories.Goal == nil || *p.Calories.Goal != 21000 {
		t.Fatalf("weekly calorie goal = %v, want 21000", p.Calories.Goal)
	}
	if p.Calories.RawPercent != 50 || p.Calories.Tier != tierOrange {
		t.Errorf("weekly calories = %v%% %s, want 50%% orange", p.Calories.RawPercent, p.Calories.Tier)
	}
	if p.Protein.Goal != nil || p.Protein.RawPercent != 0 {
		t.Errorf("missing protein goal should yield 0%%, got %+v", p.Protein)
	}
}

func TestEvaluateProgress_NoGoalRow(t *testing.T) {
	p := evaluateProgress(Totals{Calories: 900}, nil, 1)
	if p.Mode != modeCut {
		t.Errorf("mode = %s, want cut", p.Mode)
	}
	if p.Calories.Tier != tierGreen {
		t.Errorf("tier = %s, want green for 0%% in cut mode", p.Calories.Tier)
	}
}

func TestTierMarshalJSON(t *testing.T) {
	b, err := json.Marshal(map[string]tier{"t": tierYellow})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"t":"yellow"}` {
		t.Errorf("got %s", b)
	}
}
