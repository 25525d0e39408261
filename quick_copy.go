package main

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Copy windows end yesterday relative to the server's local today.
var copyRangeDays = map[string]int{
	"yesterday": 1,
	"week":      7,
	"month":     30,
}

// copyWindow resolves the candidate date range. A source date selects that
// single day and wins over rangeName; otherwise rangeName picks a window
// ending yesterday (default "yesterday").
func copyWindow(rangeName, source string, today time.Time) (start, end string, single bool, err error) {
	if source != "" {
		if _, err := parseISODate(source); err != nil {
			return "", "", false, err
		}
		return source, source, true, nil
	}
	if rangeName == "" {
		rangeName = "yesterday"
	}
	days, ok := copyRangeDays[rangeName]
	if !ok {
		return "", "", false, fmt.Errorf("invalid range %q, expected yesterday, week or month", rangeName)
	}
	y, m, d := today.Date()
	yesterday := time.Date(y, m, d, 0, 0, 0, 0, time.Local).AddDate(0, 0, -1)
	return toISODate(yesterday.AddDate(0, 0, -(days - 1))), toISODate(yesterday), days == 1, nil
}

// normalizeName is the grouping key for a food name: trimmed, internal
// whitespace collapsed, lowercased.
func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// mealFilterAll matches every meal, like an empty filter.
const mealFilterAll = "All"

// parseMealFilter returns the meal to filter on, or "" for no filter.
func parseMealFilter(s string) (string, error) {
	meal := strings.TrimSpace(s)
	if meal == "" || meal == mealFilterAll {
		return "", nil
	}
	if !validMeals[meal] {
		return "", errors.New("meal must be one of: All, Breakfast, Lunch, Dinner, Snack")
	}
	return meal, nil
}

// filterCandidates keeps entries matching meal (exact, "" for any) and whose
// name contains search (case-insensitive). The input is never modified.
func filterCandidates(entries []datedEntry, meal, search string) []datedEntry {
	search = normalizeName(search)
	out := make([]datedEntry, 0, len(entries))
	for _, e := range entries {
		if meal != "" && (e.Meal == nil || *e.Meal != meal) {
			continue
		}
		if search != "" && !strings.Contains(normalizeName(e.Name), search) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// copyGroup is every candidate sharing a normalised name.
type copyGroup struct {
	Key      string      `json:"key"`
	Name     string      `json:"name"`
	Count    int         `json:"count"`
	Totals   Totals      `json:"totals"`
	Meals    []string    `json:"meals"`
	Days     []string    `json:"days"`
	EntryIDs []uuid.UUID `json:"entry_ids"`
}

// groupByName groups candidates by normalizeName. Groups keep first-seen
// order and take their display name from the first entry; meals and days are
// sorted distinct sets.
func groupByName(entries []datedEntry) []copyGroup {
	index := make(map[string]int)
	groups := make([]copyGroup, 0)
	grouped := make([][]foodEntry, 0)
	for _, e := range entries {
		key := normalizeName(e.Name)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, copyGroup{Key: key, Name: strings.TrimSpace(e.Name), Meals: []string{}, Days: []string{}})
			grouped = append(grouped, nil)
		}
		g := &groups[i]
		g.Count++
		g.EntryIDs = append(g.EntryIDs, e.ID)
		grouped[i] = append(grouped[i], e.foodEntry)
		if e.Meal != nil && !slices.Contains(g.Meals, *e.Meal) {
			g.Meals = append(g.Meals, *e.Meal)
		}
		if d := e.LogDate.String(); !slices.Contains(g.Days, d) {
			g.Days = append(g.Days, d)
		}
	}
	for i := range groups {
		groups[i].Totals = aggregate(grouped[i])
		slices.Sort(groups[i].Meals)
		slices.Sort(groups[i].Days)
	}
	return groups
}

// buildCopyRows turns source entries into new rows for the destination log.
// Each row gets a fresh id and the destination owner; macros default to 0,
// grams stays nil when unknown and meal defaults to Snack.
func buildCopyRows(sources []foodEntry, logID, userID uuid.UUID) []foodEntry {
	rows := make([]foodEntry, 0, len(sources))
	for _, s := range sources {
		meal := mealSnack
		if s.Meal != nil && validMeals[*s.Meal] {
			meal = *s.Meal
		}
		var grams *int
		if s.Grams != nil {
			g := *s.Grams
			grams = &g
		}
		rows = append(rows, foodEntry{
			ID:         uuid.New(),
			DailyLogID: logID,
			UserID:     userID,
			Name:       s.Name,
			Grams:      grams,
			Calories:   zeroed(s.Calories),
			ProteinG:   zeroed(s.ProteinG),
			CarbsG:     zeroed(s.CarbsG),
			FatG:       zeroed(s.FatG),
			Meal:       &meal,
		})
	}
	return rows
}

// zeroed copies p, substituting 0 for nil.
func zeroed(p *int) *int {
	v := intOrZero(p)
	return &v
}

// dedupeIDs drops nil and repeated ids, keeping first-seen order.
func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

/* ─── Handlers ───────────────────────────────────────────────────────── */

// getCopyCandidates lists past entries that can be copied to another day.
// GET /api/calorie-log/quick-copy/candidates?range=yesterday|week|month
// or ?source=YYYY-MM-DD, plus optional meal (All for any), search and group=true|false.
// status is "empty" when the window has nothing, "no_match" when the filters
// removed everything, otherwise "ok".
func (h *Handler) getCopyCandidates(c *gin.Context) {
	userID := currentUser(c)
	start, end, single, err := copyWindow(c.Query("range"), c.Query("source"), time.Now())
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}
	meal, err := parseMealFilter(c.Query("meal"))
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}
	group := !single
	switch c.Query("group") {
	case "true":
		group = true
	case "false":
		group = false
	}

	order := "dl.log_date DESC, fe.created_at DESC"
	if single {
		order = "fe.created_at ASC"
	}
	candidates, err := queryMany[datedEntry](h.db, c,
		`SELECT fe.*, dl.log_date
		 FROM food_entries fe
		 JOIN daily_logs dl ON dl.id = fe.daily_log_id
		 WHERE dl.user_id = @userID AND fe.user_id = @userID
		   AND dl.log_date BETWEEN @start AND @end
		 ORDER BY `+order,
		pgx.NamedArgs{"userID": userID, "start": start, "end": end})
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "failed to fetch copy candidates", err)
		return
	}

	filtered := filterCandidates(candidates, meal, c.Query("search"))
	status := "ok"
	switch {
	case len(candidates) == 0:
		status = "empty"
	case len(filtered) == 0:
		status = "no_match"
	}

	resp := gin.H{"start": start, "end": end, "status": status, "total": len(candidates), "entries": filtered}
	if group {
		resp["groups"] = groupByName(filtered)
	}
	c.JSON(http.StatusOK, resp)
}

// quickCopy copies the selected entries onto date.
// POST /api/calorie-log/quick-copy. The destination log upsert and every
// insert run in one transaction: if any selected id is missing or not mine,
// nothing is copied.
func (h *Handler) quickCopy(c *gin.Context) {
	userID := currentUser(c)

	var body quickCopyRequest
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
	ids := dedupeIDs(body.EntryIDs)
	if len(ids) == 0 {
		apiError(c, http.StatusBadRequest, "select at least one entry to copy")
		return
	}

	tx, err := h.db.Begin(c)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "failed to start transaction", err)
		return
	}
	defer tx.Rollback(c)

	sources, err := queryMany[foodEntry](tx, c,
		`SELECT * FROM food_entries
		 WHERE user_id = @userID AND id = ANY(@ids::uuid[])
		 ORDER BY created_at`,
		pgx.NamedArgs{"userID": userID, "ids": uuidStrings(ids)})
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "failed to load entries to copy", err)
		return
	}
	if len(sources) != len(ids) {
		apiError(c, http.StatusNotFound, "one or more entries were not found")
		return
	}

	log, err := ensureDailyLog(c, tx, userID, body.Date)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "failed to resolve daily log", err)
		return
	}

	// clock_timestamp keeps the copies in source order; now() is fixed per transaction.
	rows := buildCopyRows(sources, log.ID, userID)
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(
			`INSERT INTO food_entries (id, daily_log_id, user_id, name, grams, calories, protein_g, carbs_g, fat_g, meal, created_at)
			 VALUES (@id, @logID, @userID, @name, @grams, @calories, @proteinG, @carbsG, @fatG, @meal, clock_timestamp())`,
			pgx.NamedArgs{
				"id": r.ID, "logID": r.DailyLogID, "userID": r.UserID, "name": r.Name,
				"grams": r.Grams, "calories": r.Calories, "proteinG": r.ProteinG,
				"carbsG": r.CarbsG, "fatG": r.FatG, "meal": r.Meal,
			})
	}
	if err := tx.SendBatch(c, batch).Close(); err != nil {
		h.fail(c, http.StatusInternalServerError, "failed to copy entries", err)
		return
	}
	if err := tx.Commit(c); err != nil {
		h.fail(c, http.StatusInternalServerError, "failed to commit copy", err)
		return
	}
	entriesCopied.Add(float64(len(rows)))

	c.JSON(http.StatusCreated, gin.H{
		"copied":  len(rows),
		"date":    body.Date,
		"message": fmt.Sprintf("Copied %d item(s) to %s.", len(rows), body.Date),
	})
}
