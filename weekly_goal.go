package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// getWeeklyGoal returns the goal for the week containing week_start.
// GET /api/weekly-goal?week_start=YYYY-MM-DD (any day; normalised to its Monday).
// With no saved row the response is {goal: null, mode: "cut"}.
func (h *Handler) getWeeklyGoal(c *gin.Context) {
	userID := currentUser(c)
	date, ok := dateParam(c, "week_start")
	if !ok {
		return
	}
	monday, _ := startOfWeekMonday(date)
	weekStart := toISODate(monday)

	goal, err := loadWeeklyGoal(c, h.db, userID, weekStart)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "failed to fetch weekly goal", err)
		return
	}

	mode := modeCut
	if goal != nil {
		mode = parseMode(goal.Mode)
	}
	c.JSON(http.StatusOK, gin.H{"week_start": weekStart, "goal": goal, "mode": mode})
}

// putWeeklyGoal creates or replaces the goal for a week.
// PUT /api/weekly-goal. Goals are daily targets; negative values clamp to 0 and
// a missing goal is stored as NULL (no target).
func (h *Handler) putWeeklyGoal(c *gin.Context) {
	userID := currentUser(c)

	var body weeklyGoalRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.WeekStart == "" {
		body.WeekStart = localToday()
	}
	monday, err := startOfWeekMonday(body.WeekStart)
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid week_start, expected YYYY-MM-DD")
		return
	}
	mode := strings.ToLower(strings.TrimSpace(body.Mode))
	if mode != modeBulk && mode != modeCut {
		apiError(c, http.StatusBadRequest, "mode must be one of: bulk, cut")
		return
	}

	goal, err := queryOne[weeklyGoal](h.db, c,
		`INSERT INTO weekly_goals (user_id, week_start, mode, calorie_goal, protein_goal_g)
		 VALUES (@userID, @weekStart, @mode, @calorieGoal, @proteinGoalG)
		 ON CONFLICT (user_id, week_start) DO UPDATE SET
			mode = EXCLUDED.mode,
			calorie_goal = EXCLUDED.calorie_goal,
			protein_goal_g = EXCLUDED.protein_goal_g,
			updated_at = now()
		 RETURNING *`,
		pgx.NamedArgs{
			"userID": userID, "weekStart": toISODate(monday), "mode": mode,
			"calorieGoal": nonNegative(body.CalorieGoal), "proteinGoalG": nonNegative(body.ProteinGoalG),
		})
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "failed to save weekly goal", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"week_start": goal.WeekStart, "goal": goal, "mode": goal.Mode})
}
