package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// weekDay is one row of the Mon–Sun week summary. Days with no log are
// included with has_data=false and zero totals.
type weekDay struct {
	Date       string              `json:"date"`
	Label      string              `json:"label"`
	DailyLogID *uuid.UUID          `json:"daily_log_id"`
	WeightKg   decimal.NullDecimal `json:"weight_kg"`
	HasData    bool                `json:"has_data"`
	Totals     Totals              `json:"totals"`
	Progress   goalProgress        `json:"progress"`
}

// weekSummary is the response for GET /api/calorie-log/week.
type weekSummary struct {
	WeekStart  string       `json:"week_start"`
	Days       []weekDay    `json:"days"`
	WeekTotals Totals       `json:"week_totals"`
	Goal       *weeklyGoal  `json:"goal"`
	Progress   goalProgress `json:"progress"`
}

// buildWeek merges the week's logs and entries into 7 day rows. Entries are
// attributed by log date; an entry whose date falls outside the week is ignored.
func buildWeek(monday time.Time, logs []dailyLog, entries []datedEntry, goal *weeklyGoal) weekSummary {
	dates := enumerateDays(monday, 7)

	logByDate := make(map[string]dailyLog, len(logs))
	for _, l := range logs {
		logByDate[l.LogDate.String()] = l
	}
	entriesByDate := make(map[string][]foodEntry)
	for _, e := range entries {
		d := e.LogDate.String()
		entriesByDate[d] = append(entriesByDate[d], e.foodEntry)
	}

	summary := weekSummary{WeekStart: dates[0], Days: make([]weekDay, 0, len(dates)), Goal: goal}
	for _, d := range dates {
		day := weekDay{Date: d, Label: dayLabel(d)}
		if l, ok := logByDate[d]; ok {
			id := l.ID
			day.DailyLogID = &id
			day.WeightKg = l.WeightKg
		}
		if es := entriesByDate[d]; len(es) > 0 {
			day.HasData = true
			day.Totals = aggregate(es)
		}
		day.Progress = evaluateProgress(day.Totals, goal, 1)
		summary.WeekTotals = combine(summary.WeekTotals, day.Totals)
		summary.Days = append(summary.Days, day)
	}
	summary.Progress = evaluateProgress(summary.WeekTotals, goal, 7)
	return summary
}

// getWeekSummary returns per-day totals for the Mon–Sun week containing week_start.
// GET /api/calorie-log/week?week_start=YYYY-MM-DD (any day; defaults to the current week).
func (h *Handler) getWeekSummary(c *gin.Context) {
	userID := currentUser(c)
	date, ok := dateParam(c, "week_start")
	if !ok {
		return
	}
	monday, _ := startOfWeekMonday(date)
	start, end := toISODate(monday), toISODate(monday.AddDate(0, 0, 6))

	args := pgx.NamedArgs{"userID": userID, "start": start, "end": end}
	logs, err := queryMany[dailyLog](h.db, c,
		`SELECT * FROM daily_logs
		 WHERE user_id = @userID AND log_date BETWEEN @start AND @end`, args)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "failed to fetch week logs", err)
		return
	}

	entries, err := queryMany[datedEntry](h.db, c,
		`SELECT fe.*, dl.log_date
		 FROM food_entries fe
		 JOIN daily_logs dl ON dl.id = fe.daily_log_id
		 WHERE dl.user_id = @userID AND fe.user_id = @userID
		   AND dl.log_date BETWEEN @start AND @end
		 ORDER BY dl.log_date, fe.created_at`, args)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "failed to fetch week entries", err)
		return
	}

	goal, err := loadWeeklyGoal(c, h.db, userID, start)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "failed to fetch weekly goal", err)
		return
	}

	c.JSON(http.StatusOK, buildWeek(monday, logs, entries, goal))
}
