package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// parseWeightKg parses a user-typed weight. A comma is accepted as the decimal
// separator, the value is rounded to 2 places, and "" means "clear".
func parseWeightKg(s string) (decimal.NullDecimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("invalid weight %q", s)
	}
	if !d.IsPositive() {
		return decimal.NullDecimal{}, errors.New("weight must be greater than 0")
	}
	if d.GreaterThanOrEqual(decimal.NewFromInt(10000)) {
		return decimal.NullDecimal{}, errors.New("weight must be below 10000")
	}
	return decimal.NewNullDecimal(d.Round(2)), nil
}

// saveWeight sets or clears the weight on a day's log, creating the log if needed.
// PUT /api/calorie-log/daily/weight. Body: { "date": "YYYY-MM-DD", "weight_kg": "80,5" }.
// The UNIQUE(user_id, log_date) constraint means saving the same date updates in place.
func (h *Handler) saveWeight(c *gin.Context) {
	userID := currentUser(c)

	var body struct {
		Date     string `json:"date"`
		WeightKg string `json:"weight_kg"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Date == "" {
		body.Date = localToday()
	}
	if _, err := parseISODate(body.Date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	weight, err := parseWeightKg(body.WeightKg)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	log, err := queryOne[dailyLog](h.db, c,
		`INSERT INTO daily_logs (user_id, log_date, weight_kg)
		 VALUES (@userID, @date, @weight)
		 ON CONFLICT (user_id, log_date) DO UPDATE SET weight_kg = EXCLUDED.weight_kg
		 RETURNING *`,
		pgx.NamedArgs{"userID": userID, "date": body.Date, "weight": weight})
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "failed to save weight", err)
		return
	}

	c.JSON(http.StatusOK, log)
}

// getWeightHistory returns the logs carrying a weight within [start, end].
// GET /api/calorie-log/weights?start=YYYY-MM-DD&end=YYYY-MM-DD. Both params required.
// Returns an empty array (not null) if no weights exist in the range.
func (h *Handler) getWeightHistory(c *gin.Context) {
	userID := currentUser(c)
	start := c.Query("start")
	end := c.Query("end")

	if start == "" || end == "" {
		apiError(c, http.StatusBadRequest, "start and end query params are required")
		return
	}
	if _, err := parseISODate(start); err != nil {
		apiError(c, http.StatusBadRequest, "invalid start, expected YYYY-MM-DD")
		return
	}
	if _, err := parseISODate(end); err != nil {
		apiError(c, http.StatusBadRequest, "invalid end, expected YYYY-MM-DD")
		return
	}
	if start > end {
		apiError(c, http.StatusBadRequest, "start must not be after end")
		return
	}

	logs, err := queryMany[dailyLog](h.db, c,
		`SELECT * FROM daily_logs
		 WHERE user_id = @userID AND weight_kg IS NOT NULL
		   AND log_date >= @start AND log_date <= @end
		 ORDER BY log_date ASC`,
		pgx.NamedArgs{"userID": userID, "start": start, "end": end})
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "failed to fetch weight history", err)
		return
	}

	c.JSON(http.StatusOK, logs)
}
