package main

import (
	"cmp"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const noName = "(no name)"

/* ─── Profile ────────────────────────────────────────────────────────── */

// loadProfile returns the user's profile, or an empty one if none is saved.
func (h *Handler) loadProfile(c *gin.Context, userID uuid.UUID) (profile, error) {
	p, err := queryOne[profile](h.db, c,
		"SELECT * FROM profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if errors.Is(err, pgx.ErrNoRows) {
		return profile{UserID: userID}, nil
	}
	return p, err
}

// getProfile returns the authenticated user's display name and group code.
// GET /api/profile. A user without a saved profile gets empty fields.
func (h *Handler) getProfile(c *gin.Context) {
	p, err := h.loadProfile(c, currentUser(c))
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "failed to fetch profile", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// putProfile creates or replaces the user's profile.
// PUT /api/profile. Body: { "display_name": "...", "group_code": "..." }.
func (h *Handler) putProfile(c *gin.Context) {
	userID := currentUser(c)

	var body struct {
		DisplayName string `json:"display_name"`
		GroupCode   string `json:"group_code"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := queryOne[profile](h.db, c,
		`INSERT INTO profiles (user_id, display_name, group_code)
		 VALUES (@userID, @displayName, @groupCode)
		 ON CONFLICT (user_id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			group_code = EXCLUDED.group_code
		 RETURNING *`,
		pgx.NamedArgs{
			"userID":      userID,
			"displayName": strings.TrimSpace(body.DisplayName),
			"groupCode":   strings.TrimSpace(body.GroupCode),
		})
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "failed to save profile", err)
		return
	}

	c.JSON(http.StatusOK, p)
}

/* ─── Members ────────────────────────────────────────────────────────── */

// groupMember is one selectable row on the group page.
type groupMember struct {
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	IsMe        bool      `json:"is_me"`
}

func displayName(p profile) string {
	if name := strings.TrimSpace(p.DisplayName); name != "" {
		return name
	}
	return noName
}

// buildMemberList labels the group's profiles for display: my own row reads
// "{name} (you)", or "You" when I have no name, and comes first; the rest
// follow by display name.
func buildMemberList(me uuid.UUID, profiles []profile) []groupMember {
	members := make([]groupMember, 0, len(profiles))
	for _, p := range profiles {
		m := groupMember{UserID: p.UserID, DisplayName: displayName(p), IsMe: p.UserID == me}
		if m.IsMe {
			if m.DisplayName == noName {
				m.DisplayName = "You"
			} else {
				m.DisplayName += " (you)"
			}
		}
		members = append(members, m)
	}
	slices.SortStableFunc(members, func(a, b groupMember) int {
		if a.IsMe != b.IsMe {
			if a.IsMe {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.DisplayName, b.DisplayName)
	})
	return members
}

// loadGroup returns my profile and every profile sharing my group code.
// profiles is empty when I have no group code.
func (h *Handler) loadGroup(c *gin.Context, me uuid.UUID) (profile, []profile, error) {
	mine, err := h.loadProfile(c, me)
	if err != nil || mine.GroupCode == "" {
		return mine, []profile{}, err
	}
	profiles, err := queryMany[profile](h.db, c,
		"SELECT * FROM profiles WHERE group_code = @groupCode",
		pgx.NamedArgs{"groupCode": mine.GroupCode})
	return mine, profiles, err
}

// getGroupMembers lists the members of my group.
// GET /api/group/members. Without a group code the list is empty and a
// message explains why.
func (h *Handler) getGroupMembers(c *gin.Context) {
	me := currentUser(c)
	mine, profiles, err := h.loadGroup(c, me)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "failed to fetch group", err)
		return
	}
	if mine.GroupCode == "" {
		c.JSON(http.StatusOK, gin.H{
			"group_code": "",
			"members":    []groupMember{},
			"message":    "Set a group code on your profile to see friends.",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"group_code": mine.GroupCode, "members": buildMemberList(me, profiles)})
}

/* ─── Group day ──────────────────────────────────────────────────────── */

// selectMembers keeps the requested ids that belong to the group, in the
// caller's order and without duplicates.
func selectMembers(requested []uuid.UUID, group []profile) []profile {
	byID := make(map[uuid.UUID]profile, len(group))
	for _, p := range group {
		byID[p.UserID] = p
	}
	selected := make([]profile, 0, len(requested))
	seen := make(map[uuid.UUID]bool, len(requested))
	for _, id := range requested {
		p, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		selected = append(selected, p)
	}
	return selected
}

// groupDayInput is everything loaded for one date across the selected members.
type groupDayInput struct {
	Date      string
	Me        uuid.UUID
	Members   []profile
	Logs      []dailyLog
	Entries   []foodEntry
	Goals     []weeklyGoal
	Reactions []entryReaction
}

// groupDayMember is one member's column of the group day.
type groupDayMember struct {
	UserID      uuid.UUID    `json:"user_id"`
	DisplayName string       `json:"display_name"`
	HasLog      bool         `json:"has_log"`
	Totals      Totals       `json:"totals"`
	Goal        *weeklyGoal  `json:"goal"`
	Progress    goalProgress `json:"progress"`
}

// groupDayRow is one entry in the combined feed, attributed to its log's owner.
type groupDayRow struct {
	Entry       foodEntry       `json:"entry"`
	OwnerID     uuid.UUID       `json:"owner_id"`
	DisplayName string          `json:"display_name"`
	Reactions   []reactionCount `json:"reactions"`
}

// groupDay is the response for GET /api/group/day.
type groupDay struct {
	Date         string               `json:"date"`
	Members      []groupDayMember     `json:"members"`
	TotalsByUser map[uuid.UUID]Totals `json:"totals_by_user"`
	GrandTotal   Totals               `json:"grand_total"`
	Rows         []groupDayRow        `json:"rows"`
}

// buildGroupDay joins entries to members through their log, so ownership comes
// from daily_logs.user_id. Every member gets totals (zero without a log), the
// grand total is the fold of member totals, and rows sort by display name then
// created_at.
func buildGroupDay(in groupDayInput) groupDay {
	ownerByLog := make(map[uuid.UUID]uuid.UUID, len(in.Logs))
	hasLog := make(map[uuid.UUID]bool, len(in.Logs))
	for _, l := range in.Logs {
		ownerByLog[l.ID] = l.UserID
		hasLog[l.UserID] = true
	}
	nameByUser := make(map[uuid.UUID]string, len(in.Members))
	for _, p := range in.Members {
		nameByUser[p.UserID] = displayName(p)
	}
	goalByUser := make(map[uuid.UUID]*weeklyGoal, len(in.Goals))
	for i := range in.Goals {
		goalByUser[in.Goals[i].UserID] = &in.Goals[i]
	}
	reactionsByEntry := make(map[uuid.UUID][]entryReaction)
	for _, r := range in.Reactions {
		reactionsByEntry[r.EntryID] = append(reactionsByEntry[r.EntryID], r)
	}

	entriesByUser := make(map[uuid.UUID][]foodEntry)
	rows := make([]groupDayRow, 0, len(in.Entries))
	for _, e := range in.Entries {
		owner, ok := ownerByLog[e.DailyLogID]
		if !ok {
			continue
		}
		name, ok := nameByUser[owner]
		if !ok {
			continue
		}
		entriesByUser[owner] = append(entriesByUser[owner], e)
		rows = append(rows, groupDayRow{
			Entry:       e,
			OwnerID:     owner,
			DisplayName: name,
			Reactions:   summarizeReactions(reactionsByEntry[e.ID], in.Me),
		})
	}
	slices.SortStableFunc(rows, func(a, b groupDayRow) int {
		return cmp.Or(
			cmp.Compare(a.DisplayName, b.DisplayName),
			a.Entry.CreatedAt.Compare(b.Entry.CreatedAt),
		)
	})

	day := groupDay{
		Date:         in.Date,
		Members:      make([]groupDayMember, 0, len(in.Members)),
		TotalsByUser: make(map[uuid.UUID]Totals, len(in.Members)),
		Rows:         rows,
	}
	for _, p := range in.Members {
		t := aggregate(entriesByUser[p.UserID])
		goal := goalByUser[p.UserID]
		day.Members = append(day.Members, groupDayMember{
			UserID:      p.UserID,
			DisplayName: nameByUser[p.UserID],
			HasLog:      hasLog[p.UserID],
			Totals:      t,
			Goal:        goal,
			Progress:    evaluateProgress(t, goal, 1),
		})
		day.TotalsByUser[p.UserID] = t
		day.GrandTotal = combine(day.GrandTotal, t)
	}
	return day
}

// getGroupDay returns the selected members' logs for one date.
// GET /api/group/day?date=YYYY-MM-DD&members=id,id. Ids outside my group are
// dropped; an empty selection returns an empty day. Any query failure is a 500
// with no partial result.
func (h *Handler) getGroupDay(c *gin.Context) {
	me := currentUser(c)
	date, ok := dateParam(c, "date")
	if !ok {
		return
	}
	requested, err := parseUUIDList(c.Query("members"))
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid member id")
		return
	}

	in := groupDayInput{Date: date, Me: me}
	if len(requested) > 0 {
		if in, err = h.loadGroupDay(c, in, requested); err != nil {
			h.fail(c, http.StatusInternalServerError, "failed to fetch group day", err)
			return
		}
	}

	c.JSON(http.StatusOK, buildGroupDay(in))
}

// loadGroupDay fills in with the group's members, their logs for in.Date,
// those logs' entries, the week's goals and the entries' reactions.
func (h *Handler) loadGroupDay(c *gin.Context, in groupDayInput, requested []uuid.UUID) (groupDayInput, error) {
	_, group, err := h.loadGroup(c, in.Me)
	if err != nil {
		return in, err
	}
	in.Members = selectMembers(requested, group)
	if len(in.Members) == 0 {
		return in, nil
	}
	memberIDs := make([]uuid.UUID, len(in.Members))
	for i, p := range in.Members {
		memberIDs[i] = p.UserID
	}

	in.Logs, err = queryMany[dailyLog](h.db, c,
		"SELECT * FROM daily_logs WHERE user_id = ANY(@memberIDs::uuid[]) AND log_date = @date",
		pgx.NamedArgs{"memberIDs": uuidStrings(memberIDs), "date": in.Date})
	if err != nil {
		return in, err
	}

	if len(in.Logs) > 0 {
		logIDs := make([]uuid.UUID, len(in.Logs))
		for i, l := range in.Logs {
			logIDs[i] = l.ID
		}
		in.Entries, err = queryMany[foodEntry](h.db, c,
			"SELECT * FROM food_entries WHERE daily_log_id = ANY(@logIDs::uuid[]) ORDER BY created_at",
			pgx.NamedArgs{"logIDs": uuidStrings(logIDs)})
		if err != nil {
			return in, err
		}
	}

	monday, _ := startOfWeekMonday(in.Date)
	in.Goals, err = queryMany[weeklyGoal](h.db, c,
		"SELECT * FROM weekly_goals WHERE user_id = ANY(@memberIDs::uuid[]) AND week_start = @weekStart",
		pgx.NamedArgs{"memberIDs": uuidStrings(memberIDs), "weekStart": toISODate(monday)})
	if err != nil {
		return in, err
	}

	entryIDs := make([]uuid.UUID, len(in.Entries))
	for i, e := range in.Entries {
		entryIDs[i] = e.ID
	}
	in.Reactions, err = loadReactions(c, h.db, in.Me, entryIDs)
	return in, err
}
