package main

import "testing"

func intPtr(v int) *int { return &v }

// TestAggregate_Empty verifies an empty list yields all-zero Totals.
func TestAggregate_Empty(t *testing.T) {
	if got := aggregate(nil); got != (Totals{}) {
		t.Errorf("aggregate(nil) = %+v, want zero", got)
	}
	if got := aggregate([]foodEntry{}); got != (Totals{}) {
		t.Errorf("aggregate([]) = %+v, want zero", got)
	}
}

// TestAggregate_NullsCountAsZero verifies nil numeric fields never propagate
// into the sums.
func TestAggregate_NullsCountAsZero(t *testing.T) {
	entries := []foodEntry{
		{Name: "Oats", Calories: intPtr(300), ProteinG: intPtr(10), CarbsG: intPtr(54), FatG: intPtr(6), Grams: intPtr(80)},
		{Name: "Coffee"},
		{Name: "Egg", Calories: intPtr(78), ProteinG: intPtr(6), FatG: intPtr(5)},
	}
	want := Totals{Calories: 378, Protein: 16, Carbs: 54, Fat: 11, Grams: 80}
	if got := aggregate(entries); got != want {
		t.Errorf("aggregate = %+v, want %+v", got, want)
	}
}

// TestAggregate_OrderIndependent verifies reversing the input does not change the result.
func TestAggregate_OrderIndependent(t *testing.T) {
	entries := []foodEntry{
		{Calories: intPtr(100), Grams: intPtr(10)},
		{Calories: intPtr(250), ProteinG: intPtr(20)},
		{FatG: intPtr(9)},
	}
	reversed := []foodEntry{entries[2], entries[1], entries[0]}
	if aggregate(entries) != aggregate(reversed) {
		t.Error("aggregate depends on input order")
	}
}

// TestCombine_AssociativeCommutative checks the fold laws used for grand totals.
func TestCombine_AssociativeCommutative(t *testing.T) {
	a := Totals{Calories: 1, Protein: 2, Carbs: 3, Fat: 4, Grams: 5}
	b := Totals{Calories: 10, Protein: 0, Carbs: 7, Fat: 1, Grams: 0}
	c := Totals{Calories: 300, Protein: 40, Carbs: 0, Fat: 12, Grams: 250}

	if combine(combine(a, b), c) != combine(a, combine(b, c)) {
		t.Error("combine is not associative")
	}
	if combine(a, b) != combine(b, a) {
		t.Error("combine is not commutative")
	}
	if combine(a, Totals{}) != a {
		t.Error("zero Totals is not the identity")
	}
}

func TestNonNegative(t *testing.T) {
	if nonNegative(nil) != nil {
		t.Error("nonNegative(nil) should stay nil")
	}
	if got := *nonNegative(intPtr(-5)); got != 0 {
		t.Errorf("nonNegative(-5) = %d, want 0", got)
	}
	if got := *nonNegative(intPtr(42)); got != 42 {
		t.Errorf("nonNegative(42) = %d, want 42", got)
	}
}
