package main

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ensureDailyLog returns the user's log for date, creating it if missing.
// The no-op DO UPDATE makes RETURNING yield the existing row on conflict.
func ensureDailyLog(ctx context.Context, q querier, userID uuid.UUID, date string) (dailyLog, error) {
	return queryOne[dailyLog](q, ctx,
		`INSERT INTO daily_logs (user_id, log_date)
		 VALUES (@userID, @date)
		 ON CONFLICT (user_id, log_date) DO UPDATE SET log_date = EXCLUDED.log_date
		 RETURNING *`,
		pgx.NamedArgs{"userID": userID, "date": date})
}

// dateParam reads a YYYY-MM-DD query param, defaulting to local today.
func dateParam(c *gin.Context, key string) (string, bool) {
	date := c.DefaultQuery(key, localToday())
	if _, err := parseISODate(date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid "+key+", expected YYYY-MM-DD")
		return "", false
	}
	return date, true
}

// loadWeeklyGoal returns the user's goal for the week starting monday, or nil.
func loadWeeklyGoal(ctx context.Context, q querier, userID uuid.UUID, monday string) (*weeklyGoal, error) {
	g, err := queryOne[weeklyGoal](q, ctx,
		"SELECT * FROM weekly_goals WHERE user_id = @userID AND week_start = @weekStart",
		pgx.NamedArgs{"userID": userID, "weekStart": monday})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// daySummary is the response for GET /api/calorie-log/daily.
type daySummary struct {
	Date      string       `json:"date"`
	Label     string       `json:"label"`
	Log       *dailyLog    `json:"log"`
	Entries   []foodEntry  `json:"entries"`
	Totals    Totals       `json:"totals"`
	WeekStart string       `json:"week_start"`
	Goal      *weeklyGoal  `json:"goal"`
	Progress  goalProgress `json:"progress"`
}

// getDailySummary returns the day's log, entries, totals and goal progress.
// GET /api/calorie-log/daily?date=YYYY-MM-DD (defaults to today).
// Reading a day never creates its log; log is null until something is written.
func (h *Handler) getDailySummary(c *gin.Context) {
	userID := currentUser(c)
	date, ok := dateParam(c, "date")
	if !ok {
		return
	}
	monday, _ := startOfWeekMonday(date)

	summary := daySummary{
		Date:      date,
		Label:     dayLabel(date),
		Entries:   []foodEntry{},
		WeekStart: toISODate(monday),
	}

	log, err := queryOne[dailyLog](h.db, c,
		"SELECT * FROM daily_logs WHERE user_id = @userID AND log_date = @date",
		pgx.NamedArgs{"userID": userID, "date": date})
	switch {
	case err == nil:
		summary.Log = &log
		summary.Entries, err = queryMany[foodEntry](h.db, c,
			`SELECT * FROM food_entries
			 WHERE daily_log_id = @logID AND user_id = @userID
			 ORDER BY created_at`,
			pgx.NamedArgs{"logID": log.ID, "userID": userID})
		if err != nil {
			h.fail(c, http.StatusInternalServerError, "failed to fetch entries", err)
			return
		}
	case !errors.Is(err, pgx.ErrNoRows):
		h.fail(c, http.StatusInternalServerError, "failed to fetch daily log", err)
		return
	}

	summary.Goal, err = loadWeeklyGoal(c, h.db, userID, summary.WeekStart)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "failed to fetch weekly goal", err)
		return
	}

	summary.Totals = aggregate(summary.Entries)
	summary.Progress = evaluateProgress(summary.Totals, summary.Goal, 1)
	c.JSON(http.StatusOK, summary)
}

/* ─── Food entries ───────────────────────────────────────────────────── */

// normalizedEntry is a validated entryRequest ready to be written.
type normalizedEntry struct {
	Name     string
	Grams    *int
	Calories int
	ProteinG int
	CarbsG   int
	FatG     int
	Meal     string
}

// normalizeEntry validates and cleans an entry request. Macros clamp to >= 0
// with missing values as 0; grams stays nullable but is clamped when present.
func normalizeEntry(body entryRequest) (normalizedEntry, error) {
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return normalizedEntry{}, errors.New("food name is required")
	}
	meal := mealSnack
	if body.Meal != nil && strings.TrimSpace(*body.Meal) != "" {
		meal = strings.TrimSpace(*body.Meal)
		if !validMeals[meal] {
			return normalizedEntry{}, errors.New("meal must be one of: Breakfast, Lunch, Dinner, Snack")
		}
	}
	return normalizedEntry{
		Name:     name,
		Grams:    nonNegative(body.Grams),
		Calories: intOrZero(nonNegative(body.Calories)),
		ProteinG: intOrZero(nonNegative(body.ProteinG)),
		CarbsG:   intOrZero(nonNegative(body.CarbsG)),
		FatG:     intOrZero(nonNegative(body.FatG)),
		Meal:     meal,
	}, nil
}

// args returns the named args shared by entry INSERT and UPDATE.
func (e normalizedEntry) args() pgx.NamedArgs {
	return pgx.NamedArgs{
		"name": e.Name, "grams": e.Grams, "calories": e.Calories,
		"proteinG": e.ProteinG, "carbsG": e.CarbsG, "fatG": e.FatG, "meal": e.Meal,
	}
}

// bindEntry decodes and validates the entry body, writing a 400 on failure.
func bindEntry(c *gin.Context) (entryRequest, normalizedEntry, bool) {
	var body entryRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return body, normalizedEntry{}, false
	}
	if body.Date == "" {
		body.Date = localToday()
	}
	if _, err := parseISODate(body.Date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return body, normalizedEntry{}, false
	}
	entry, err := normalizeEntry(body)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return body, normalizedEntry{}, false
	}
	return body, entry, true
}

// createFoodEntry adds an entry to the day's log, creating the log if needed.
// POST /api/calorie-log/entries. Date defaults to today.
func (h *Handler) createFoodEntry(c *gin.Context) {
	userID := currentUser(c)
	body, entry, ok := bindEntry(c)
	if !ok {
		return
	}

	log, err := ensureDailyLog(c, h.db, userID, body.Date)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "failed to resolve daily log", err)
		return
	}

	args := entry.args()
	args["logID"] = log.ID
	args["userID"] = userID
	created, err := queryOne[foodEntry](h.db, c,
		`INSERT INTO food_entries (daily_log_id, user_id, name, grams, calories, protein_g, carbs_g, fat_g, meal)
		 VALUES (@logID, @userID, @name, @grams, @calories, @proteinG, @carbsG, @fatG, @meal)
		 RETURNING *`, args)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "failed to create entry", err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// updateFoodEntry replaces an entry's fields. The entry stays on its log.
// PUT /api/calorie-log/entries/:id.
func (h *Handler) updateFoodEntry(c *gin.Context) {
	userID := currentUser(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid entry id")
		return
	}
	_, entry, ok := bindEntry(c)
	if !ok {
		return
	}

	args := entry.args()
	args["id"] = id
	args["userID"] = userID
	updated, err := queryOne[foodEntry](h.db, c,
		`UPDATE food_entries SET
			name = @name, grams = @grams, calories = @calories,
			protein_g = @proteinG, carbs_g = @carbsG, fat_g = @fatG, meal = @meal
		 WHERE id = @id AND user_id = @userID
		 RETURNING *`, args)
	if errors.Is(err, pgx.ErrNoRows) {
		apiError(c, http.StatusNotFound, "entry not found")
		return
	}
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "failed to update entry", err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// deleteFoodEntry removes an entry. Returns 204 on success.
// DELETE /api/calorie-log/entries/:id.
func (h *Handler) deleteFoodEntry(c *gin.Context) {
	userID := currentUser(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid entry id")
		return
	}

	result, err := h.db.Exec(c,
		"DELETE FROM food_entries WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "failed to delete entry", err)
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "entry not found")
		return
	}

	c.Status(http.StatusNoContent)
}
