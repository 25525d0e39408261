package main

// Totals is the macro sum of a set of food entries.
type Totals struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
	Carbs    int `json:"carbs"`
	Fat      int `json:"fat"`
	Grams    int `json:"grams"`
}

// aggregate sums the macros of entries. Missing numeric fields count as zero;
// an empty list yields zero Totals.
func aggregate(entries []foodEntry) Totals {
	var t Totals
	for _, e := range entries {
		t.Calories += intOrZero(e.Calories)
		t.Protein += intOrZero(e.ProteinG)
		t.Carbs += intOrZero(e.CarbsG)
		t.Fat += intOrZero(e.FatG)
		t.Grams += intOrZero(e.Grams)
	}
	return t
}

// combine is field-wise addition, used to fold per-user totals into a grand total.
func combine(a, b Totals) Totals {
	return Totals{
		Calories: a.Calories + b.Calories,
		Protein:  a.Protein + b.Protein,
		Carbs:    a.Carbs + b.Carbs,
		Fat:      a.Fat + b.Fat,
		Grams:    a.Grams + b.Grams,
	}
}

func intOrZero(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// nonNegative clamps a user-supplied number to >= 0, leaving nil as nil.
func nonNegative(p *int) *int {
	if p == nil {
		return nil
	}
	v := max(*p, 0)
	return &v
}
