package client

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Totals is the summed nutrition of a set of entries.
type Totals struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
	Carbs    int `json:"carbs"`
	Fat      int `json:"fat"`
	Grams    int `json:"grams"`
}

// Entry is one food entry as returned by the API.
type Entry struct {
	ID         uuid.UUID `json:"id"`
	DailyLogID uuid.UUID `json:"daily_log_id"`
	UserID     uuid.UUID `json:"user_id"`
	Name       string    `json:"name"`
	Grams      *int      `json:"grams"`
	Calories   *int      `json:"calories"`
	ProteinG   *int      `json:"protein_g"`
	CarbsG     *int      `json:"carbs_g"`
	FatG       *int      `json:"fat_g"`
	Meal       *string   `json:"meal"`
	CreatedAt  time.Time `json:"created_at"`
}

type DailyLog struct {
	ID       uuid.UUID           `json:"id"`
	UserID   uuid.UUID           `json:"user_id"`
	LogDate  string              `json:"log_date"`
	WeightKg decimal.NullDecimal `json:"weight_kg"`
}

type WeeklyGoal struct {
	WeekStart    string `json:"week_start"`
	Mode         string `json:"mode"`
	CalorieGoal  *int   `json:"calorie_goal"`
	ProteinGoalG *int   `json:"protein_goal_g"`
}

// Metric is progress of one nutrient against its goal. Tier is one of
// red, orange, yellow, green.
type Metric struct {
	Actual         int     `json:"actual"`
	Goal           *int    `json:"goal"`
	RawPercent     float64 `json:"raw_percent"`
	ClampedPercent float64 `json:"clamped_percent"`
	Tier           string  `json:"tier"`
	Color          string  `json:"color"`
}

type Progress struct {
	Mode     string `json:"mode"`
	Calories Metric `json:"calories"`
	Protein  Metric `json:"protein"`
}

// EntryInput is the body for creating or replacing an entry. Date defaults to
// today and Meal to Snack; missing macros are stored as 0.
type EntryInput struct {
	Date     string  `json:"date,omitempty"`
	Name     string  `json:"name"`
	Grams    *int    `json:"grams,omitempty"`
	Calories *int    `json:"calories,omitempty"`
	ProteinG *int    `json:"protein_g,omitempty"`
	CarbsG   *int    `json:"carbs_g,omitempty"`
	FatG     *int    `json:"fat_g,omitempty"`
	Meal     *string `json:"meal,omitempty"`
}

// WeekGoal is the goal for one Monday-anchored week. Goal is nil when none is
// saved, and Mode is then "cut".
type WeekGoal struct {
	WeekStart string      `json:"week_start"`
	Goal      *WeeklyGoal `json:"goal"`
	Mode      string      `json:"mode"`
}

type Profile struct {
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	GroupCode   string    `json:"group_code"`
}

type WeekDay struct {
	Date       string              `json:"date"`
	Label      string              `json:"label"`
	DailyLogID *uuid.UUID          `json:"daily_log_id"`
	WeightKg   decimal.NullDecimal `json:"weight_kg"`
	HasData    bool                `json:"has_data"`
	Totals     Totals              `json:"totals"`
	Progress   Progress            `json:"progress"`
}

// WeekSummary is Monday to Sunday; Progress is against seven days of goal.
type WeekSummary struct {
	WeekStart  string      `json:"week_start"`
	Days       []WeekDay   `json:"days"`
	WeekTotals Totals      `json:"week_totals"`
	Goal       *WeeklyGoal `json:"goal"`
	Progress   Progress    `json:"progress"`
}

// DaySummary is one user's day.
type DaySummary struct {
	Date      string      `json:"date"`
	Label     string      `json:"label"`
	Log       *DailyLog   `json:"log"`
	Entries   []Entry     `json:"entries"`
	Totals    Totals      `json:"totals"`
	WeekStart string      `json:"week_start"`
	Goal      *WeeklyGoal `json:"goal"`
	Progress  Progress    `json:"progress"`
}

type Member struct {
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	IsMe        bool      `json:"is_me"`
}

type GroupMembers struct {
	GroupCode string   `json:"group_code"`
	Members   []Member `json:"members"`
	Message   string   `json:"message,omitempty"`
}

type ReactionCount struct {
	Emoji   string `json:"emoji"`
	Count   int    `json:"count"`
	Reacted bool   `json:"reacted"`
}

type GroupDayMember struct {
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	HasLog      bool      `json:"has_log"`
	Totals      Totals    `json:"totals"`
	Progress    Progress  `json:"progress"`
}

type GroupDayRow struct {
	Entry       Entry           `json:"entry"`
	OwnerID     uuid.UUID       `json:"owner_id"`
	DisplayName string          `json:"display_name"`
	Reactions   []ReactionCount `json:"reactions"`
}

// GroupDay is the selected members' logs for one date.
type GroupDay struct {
	Date         string               `json:"date"`
	Members      []GroupDayMember     `json:"members"`
	TotalsByUser map[uuid.UUID]Totals `json:"totals_by_user"`
	GrandTotal   Totals               `json:"grand_total"`
	Rows         []GroupDayRow        `json:"rows"`
}

// CopyQuery selects quick-copy candidates. Source, when set, picks a single
// day and overrides Range.
// Group, when set, overrides the server's default of grouping multi-day
// windows by food name.
type CopyQuery struct {
	Range  string
	Source string
	Meal   string
	Search string
	Group  *bool
}

type CopyEntry struct {
	Entry
	LogDate string `json:"log_date"`
}

type CopyGroup struct {
	Key      string      `json:"key"`
	Name     string      `json:"name"`
	Count    int         `json:"count"`
	Totals   Totals      `json:"totals"`
	Meals    []string    `json:"meals"`
	Days     []string    `json:"days"`
	EntryIDs []uuid.UUID `json:"entry_ids"`
}

// CopyCandidates is a quick-copy window. Status is "ok", "empty" (nothing
// logged in the window) or "no_match" (filters removed everything).
type CopyCandidates struct {
	Start   string      `json:"start"`
	End     string      `json:"end"`
	Status  string      `json:"status"`
	Total   int         `json:"total"`
	Entries []CopyEntry `json:"entries"`
	Groups  []CopyGroup `json:"groups"`
}

type CopyResult struct {
	Copied  int    `json:"copied"`
	Date    string `json:"date"`
	Message string `json:"message"`
}

type ToggleResult struct {
	EntryID   uuid.UUID       `json:"entry_id"`
	Reacted   bool            `json:"reacted"`
	Reactions []ReactionCount `json:"reactions"`
}
