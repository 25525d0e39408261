package main

import (
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"
)

func candidate(t *testing.T, name, meal, date string, calories, protein int) datedEntry {
	t.Helper()
	return datedEntry{
		foodEntry: foodEntry{ID: uuid.New(), Name: name, Meal: strPtr(meal), Calories: intPtr(calories), ProteinG: intPtr(protein)},
		LogDate:   mustDate(t, date),
	}
}

func TestCopyWindow(t *testing.T) {
	today := time.Date(2024, 3, 1, 15, 30, 0, 0, time.Local)
	tests := []struct {
		rangeName, source   string
		wantStart, wantEnd  string
		wantSingle, wantErr bool
	}{
		{"", "", "2024-02-29", "2024-02-29", true, false},
		{"yesterday", "", "2024-02-29", "2024-02-29", true, false},
		{"week", "", "2024-02-23", "2024-02-29", false, false},
		{"month", "", "2024-01-31", "2024-02-29", false, false},
		{"month", "2024-01-05", "2024-01-05", "2024-01-05", true, false},
		{"decade", "", "", "", false, true},
		{"", "2024-1-5", "", "", false, true},
	}
	for _, tt := range tests {
		start, end, single, err := copyWindow(tt.rangeName, tt.source, today)
		if (err != nil) != tt.wantErr {
			t.Errorf("copyWindow(%q, %q) err = %v, wantErr %v", tt.rangeName, tt.source, err, tt.wantErr)
			continue
		}
		if start != tt.wantStart || end != tt.wantEnd || single != tt.wantSingle {
			t.Errorf("copyWindow(%q, %q) = %s..%s single=%v, want %s..%s single=%v",
				tt.rangeName, tt.source, start, end, single, tt.wantStart, tt.wantEnd, tt.wantSingle)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"Banana":               "banana",
		"  banana ":            "banana",
		"Peanut \t  Butter\n":  "peanut butter",
		"":                     "",
	}
	for in, want := range cases {
		if got := normalizeName(in); got != want {
			t.Errorf("normalizeName(%q) = %q, want %q", in, got, want)
		}
	}
}

// TestGroupByName_MergesCaseAndWhitespace verifies "Banana", " banana " and
// "BANANA" on different days form one group with summed macros.
func TestGroupByName_MergesCaseAndWhitespace(t *testing.T) {
	entries := []datedEntry{
		candidate(t, "Banana", mealSnack, "2024-10-13", 105, 1),
		candidate(t, "Oats", mealBreakfast, "2024-10-13", 300, 10),
		candidate(t, " banana ", mealBreakfast, "2024-10-12", 110, 1),
		candidate(t, "BANANA", mealSnack, "2024-10-10", 95, 2),
	}

	groups := groupByName(entries)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	g := groups[0]
	if g.Key != "banana" || g.Name != "Banana" || g.Count != 3 {
		t.Errorf("group = %+v", g)
	}
	if g.Totals.Calories != 310 || g.Totals.Protein != 4 {
		t.Errorf("totals = %+v, want 310 kcal / 4 g", g.Totals)
	}
	if !slices.Equal(g.Meals, []string{mealBreakfast, mealSnack}) {
		t.Errorf("meals = %v", g.Meals)
	}
	if !slices.Equal(g.Days, []string{"2024-10-10", "2024-10-12", "2024-10-13"}) {
		t.Errorf("days = %v", g.Days)
	}
	want := []uuid.UUID{entries[0].ID, entries[2].ID, entries[3].ID}
	if !slices.Equal(g.EntryIDs, want) {
		t.Errorf("entry ids = %v, want %v", g.EntryIDs, want)
	}
	if groups[1].Key != "oats" {
		t.Errorf("second group = %q, want first-seen order", groups[1].Key)
	}
}

func TestFilterCandidates(t *testing.T) {
	entries := []datedEntry{
		candidate(t, "Banana", mealSnack, "2024-10-13", 105, 1),
		candidate(t, "Peanut Butter", mealBreakfast, "2024-10-13", 190, 7),
		candidate(t, "Banana bread", mealBreakfast, "2024-10-12", 240, 4),
	}
	original := slices.Clone(entries)

	tests := []struct {
		meal, search string
		want         []string
	}{
		{"", "", []string{"Banana", "Peanut Butter", "Banana bread"}},
		{mealBreakfast, "", []string{"Peanut Butter", "Banana bread"}},
		{"", "  BANANA ", []string{"Banana", "Banana bread"}},
		{mealBreakfast, "banana", []string{"Banana bread"}},
		{mealDinner, "", []string{}},
	}
	for _, tt := range tests {
		got := filterCandidates(entries, tt.meal, tt.search)
		names := make([]string, len(got))
		for i, e := range got {
			names[i] = e.Name
		}
		if !slices.Equal(names, tt.want) {
			t.Errorf("filter(%q, %q) = %v, want %v", tt.meal, tt.search, names, tt.want)
		}
	}
	for i := range entries {
		if entries[i].ID != original[i].ID || entries[i].Name != original[i].Name {
			t.Fatalf("input modified at %d", i)
		}
	}
}

func TestBuildCopyRows(t *testing.T) {
	logID, userID := uuid.New(), uuid.New()
	sources := []foodEntry{
		{ID: uuid.New(), Name: "Oats", Grams: intPtr(80), Calories: intPtr(300), ProteinG: intPtr(10), CarbsG: intPtr(54), FatG: intPtr(6), Meal: strPtr(mealBreakfast)},
		{ID: uuid.New(), Name: "Mystery"},
	}

	rows := buildCopyRows(sources, logID, userID)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	for i, r := range rows {
		if r.ID == uuid.Nil || r.ID == sources[i].ID {
			t.Errorf("row %d id %s should be fresh", i, r.ID)
		}
		if r.DailyLogID != logID || r.UserID != userID || r.Name != sources[i].Name {
			t.Errorf("row %d = %+v", i, r)
		}
	}
	if *rows[0].Grams != 80 || *rows[0].Calories != 300 || *rows[0].Meal != mealBreakfast {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[1].Grams != nil {
		t.Errorf("unknown grams should stay nil, got %d", *rows[1].Grams)
	}
	if *rows[1].Calories != 0 || *rows[1].ProteinG != 0 || *rows[1].CarbsG != 0 || *rows[1].FatG != 0 {
		t.Errorf("macros should default to 0: %+v", rows[1])
	}
	if *rows[1].Meal != mealSnack {
		t.Errorf("meal = %q, want Snack", *rows[1].Meal)
	}

	// Rows must not alias the source pointers.
	*rows[0].Grams = 1
	if *sources[0].Grams != 80 {
		t.Error("copied grams aliases the source")
	}
}

func TestDedupeIDs(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	got := dedupeIDs([]uuid.UUID{b, uuid.Nil, a, b})
	if !slices.Equal(got, []uuid.UUID{b, a}) {
		t.Errorf("dedupeIDs = %v", got)
	}
}
