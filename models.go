package main

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// DateOnly wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type DateOnly struct{ time.Time }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + toISODate(d.Time) + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	t, err := time.ParseInLocation(`"2006-01-02"`, string(b), time.Local)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ScanDate implements pgtype.DateScanner so pgx can scan PostgreSQL date
// columns into DateOnly. The calendar fields are re-anchored at local midnight
// because pgx returns dates as UTC midnight, which would shift the weekday for
// zones behind UTC.
func (d *DateOnly) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		d.Time = time.Time{}
		return nil
	}
	y, m, day := v.Time.Date()
	d.Time = time.Date(y, m, day, 0, 0, 0, 0, time.Local)
	return nil
}

// String returns the ISO calendar date.
func (d DateOnly) String() string { return toISODate(d.Time) }

/* ─── Enums ──────────────────────────────────────────────────────────── */

// Meal names accepted on food entries. Stored verbatim in food_entries.meal.
const (
	mealBreakfast = "Breakfast"
	mealLunch     = "Lunch"
	mealDinner    = "Dinner"
	mealSnack     = "Snack"
)

// validMeals is the allowed set for food_entries.meal. Unknown values are
// rejected with 400 before the check constraint can fail.
var validMeals = map[string]bool{
	mealBreakfast: true,
	mealLunch:     true,
	mealDinner:    true,
	mealSnack:     true,
}

/* ─── Domain structs ─────────────────────────────────────────────────── */

// user maps to the users table. Password is hidden from JSON responses.
type user struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Username  string     `json:"username" db:"username"`
	Email     string     `json:"email" db:"email"`
	Password  string     `json:"-" db:"password"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// profile maps to profiles. Users sharing a group_code see each other's logs.
type profile struct {
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	DisplayName string    `json:"display_name" db:"display_name"`
	GroupCode   string    `json:"group_code" db:"group_code"`
}

// dailyLog maps to daily_logs; one row per (user_id, log_date).
type dailyLog struct {
	ID       uuid.UUID           `json:"id" db:"id"`
	UserID   uuid.UUID           `json:"user_id" db:"user_id"`
	LogDate  DateOnly            `json:"log_date" db:"log_date"`
	WeightKg decimal.NullDecimal `json:"weight_kg" db:"weight_kg"`
}

// foodEntry maps to food_entries. Numeric columns are pointers so a NULL that
// slips past the column defaults is scanned safely and summed as zero.
type foodEntry struct {
	ID         uuid.UUID `json:"id" db:"id"`
	DailyLogID uuid.UUID `json:"daily_log_id" db:"daily_log_id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	Name       string    `json:"name" db:"name"`
	Grams      *int      `json:"grams" db:"grams"`
	Calories   *int      `json:"calories" db:"calories"`
	ProteinG   *int      `json:"protein_g" db:"protein_g"`
	CarbsG     *int      `json:"carbs_g" db:"carbs_g"`
	FatG       *int      `json:"fat_g" db:"fat_g"`
	Meal       *string   `json:"meal" db:"meal"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// datedEntry is a food entry joined with its log date, used by quick copy
// where candidates span several days.
type datedEntry struct {
	foodEntry
	LogDate DateOnly `json:"log_date" db:"log_date"`
}

// weeklyGoal maps to weekly_goals. Goal values are daily targets even though
// they are stored per Monday-anchored week.
type weeklyGoal struct {
	UserID       uuid.UUID  `json:"user_id" db:"user_id"`
	WeekStart    DateOnly   `json:"week_start" db:"week_start"`
	Mode         string     `json:"mode" db:"mode"`
	CalorieGoal  *int       `json:"calorie_goal" db:"calorie_goal"`
	ProteinGoalG *int       `json:"protein_goal_g" db:"protein_goal_g"`
	UpdatedAt    *time.Time `json:"updated_at" db:"updated_at"`
}

// entryReaction maps to entry_reactions; unique per (entry_id, user_id, emoji).
type entryReaction struct {
	ID        uuid.UUID `json:"id" db:"id"`
	EntryID   uuid.UUID `json:"entry_id" db:"entry_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Emoji     string    `json:"emoji" db:"emoji"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

/* ─── Request bodies ─────────────────────────────────────────────────── */

// entryRequest is the request body for POST and PUT /api/calorie-log/entries.
// Numbers are pointers so "not provided" normalises to zero (macros) or NULL
// (grams) instead of failing binding.
type entryRequest struct {
	Date     string  `json:"date"`
	Name     string  `json:"name"`
	Grams    *int    `json:"grams"`
	Calories *int    `json:"calories"`
	ProteinG *int    `json:"protein_g"`
	CarbsG   *int    `json:"carbs_g"`
	FatG     *int    `json:"fat_g"`
	Meal     *string `json:"meal"`
}

// weeklyGoalRequest is the request body for PUT /api/weekly-goal.
type weeklyGoalRequest struct {
	WeekStart    string `json:"week_start"`
	Mode         string `json:"mode"`
	CalorieGoal  *int   `json:"calorie_goal"`
	ProteinGoalG *int   `json:"protein_goal_g"`
}

// quickCopyRequest is the request body for POST /api/calorie-log/quick-copy.
// Selecting a group on the client expands to every entry id in that group.
type quickCopyRequest struct {
	Date     string      `json:"date"`
	EntryIDs []uuid.UUID `json:"entry_ids"`
}

// toggleReactionRequest is the request body for POST /api/reactions/toggle.
type toggleReactionRequest struct {
	EntryID uuid.UUID `json:"entry_id"`
	Emoji   string    `json:"emoji"`
}
