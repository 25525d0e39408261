package main

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// reactionAllowList is the set of emoji a user may add, in display order.
var reactionAllowList = []string{"👍", "❤️", "🔥", "💪", "😂", "😮", "👏"}

func allowedEmoji(emoji string) bool {
	return slices.Contains(reactionAllowList, emoji)
}

// byEmoji counts reactions per emoji. Every reaction counts once.
func byEmoji(reactions []entryReaction) map[string]int {
	counts := make(map[string]int)
	for _, r := range reactions {
		counts[r.Emoji]++
	}
	return counts
}

// hasReacted reports whether userID has reacted with emoji.
func hasReacted(reactions []entryReaction, userID uuid.UUID, emoji string) bool {
	return slices.ContainsFunc(reactions, func(r entryReaction) bool {
		return r.UserID == userID && r.Emoji == emoji
	})
}

// reactionCount is one emoji's tally on an entry.
type reactionCount struct {
	Emoji   string `json:"emoji"`
	Count   int    `json:"count"`
	Reacted bool   `json:"reacted"`
}

// summarizeReactions tallies one entry's reactions. Allow-listed emoji come
// first in list order; stored emoji outside the list still count and follow
// in lexical order.
func summarizeReactions(reactions []entryReaction, me uuid.UUID) []reactionCount {
	counts := byEmoji(reactions)
	summary := make([]reactionCount, 0, len(counts))
	for _, e := range reactionAllowList {
		if n := counts[e]; n > 0 {
			summary = append(summary, reactionCount{Emoji: e, Count: n, Reacted: hasReacted(reactions, me, e)})
		}
	}

	var unknown []string
	for e := range counts {
		if !allowedEmoji(e) {
			unknown = append(unknown, e)
		}
	}
	slices.Sort(unknown)
	for _, e := range unknown {
		summary = append(summary, reactionCount{Emoji: e, Count: counts[e], Reacted: hasReacted(reactions, me, e)})
	}
	return summary
}

// summarizeByEntry groups reactions by entry id and summarizes each.
// Every id in entryIDs gets a (possibly empty) list.
func summarizeByEntry(entryIDs []uuid.UUID, reactions []entryReaction, me uuid.UUID) map[uuid.UUID][]reactionCount {
	grouped := make(map[uuid.UUID][]entryReaction, len(entryIDs))
	for _, r := range reactions {
		grouped[r.EntryID] = append(grouped[r.EntryID], r)
	}
	result := make(map[uuid.UUID][]reactionCount, len(entryIDs))
	for _, id := range entryIDs {
		result[id] = summarizeReactions(grouped[id], me)
	}
	return result
}

/* ─── Database ───────────────────────────────────────────────────────── */

// visibleEntrySQL restricts food_entries fe to my own entries or entries owned
// by a member sharing my non-empty group code.
const visibleEntrySQL = `(fe.user_id = @userID OR EXISTS (
	SELECT 1 FROM profiles mine
	JOIN profiles theirs ON theirs.group_code = mine.group_code
	WHERE mine.user_id = @userID AND mine.group_code <> '' AND theirs.user_id = fe.user_id))`

// uuidStrings renders ids as text for ANY(@ids::uuid[]) parameters.
func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// parseUUIDList parses a comma-separated id list, skipping blanks and
// dropping duplicates while keeping first-seen order.
func parseUUIDList(s string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	seen := make(map[uuid.UUID]bool)
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, err
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// loadReactions returns reactions on the given entries that I am allowed to see.
func loadReactions(ctx context.Context, q querier, userID uuid.UUID, entryIDs []uuid.UUID) ([]entryReaction, error) {
	if len(entryIDs) == 0 {
		return []entryReaction{}, nil
	}
	return queryMany[entryReaction](q, ctx,
		`SELECT er.* FROM entry_reactions er
		 JOIN food_entries fe ON fe.id = er.entry_id
		 WHERE er.entry_id = ANY(@entryIDs::uuid[]) AND `+visibleEntrySQL+`
		 ORDER BY er.created_at`,
		pgx.NamedArgs{"entryIDs": uuidStrings(entryIDs), "userID": userID})
}

// getReactions returns reaction summaries keyed by entry id.
// GET /api/reactions?entry_ids=a,b,c. Entries I cannot see come back empty.
func (h *Handler) getReactions(c *gin.Context) {
	userID := currentUser(c)
	ids, err := parseUUIDList(c.Query("entry_ids"))
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid entry id")
		return
	}

	reactions, err := loadReactions(c, h.db, userID, ids)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "failed to fetch reactions", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reactions": summarizeByEntry(ids, reactions, userID)})
}

// toggleReaction removes my reaction if present, otherwise adds it.
// POST /api/reactions/toggle. Only allow-listed emoji can be added; removing an
// existing reaction always works. Runs in one transaction and returns the
// entry's new summary.
func (h *Handler) toggleReaction(c *gin.Context) {
	userID := currentUser(c)

	var body toggleReactionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.EntryID == uuid.Nil || body.Emoji == "" {
		apiError(c, http.StatusBadRequest, "entry_id and emoji are required")
		return
	}

	tx, err := h.db.Begin(c)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "failed to start transaction", err)
		return
	}
	defer tx.Rollback(c)

	args := pgx.NamedArgs{"entryID": body.EntryID, "userID": userID, "emoji": body.Emoji}
	var visibleID uuid.UUID
	err = tx.QueryRow(c,
		"SELECT fe.id FROM food_entries fe WHERE fe.id = @entryID AND "+visibleEntrySQL, args).Scan(&visibleID)
	if errors.Is(err, pgx.ErrNoRows) {
		apiError(c, http.StatusNotFound, "entry not found")
		return
	}
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "failed to fetch entry", err)
		return
	}

	deleted, err := tx.Exec(c,
		"DELETE FROM entry_reactions WHERE entry_id = @entryID AND user_id = @userID AND emoji = @emoji", args)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "failed to toggle reaction", err)
		return
	}
	if deleted.RowsAffected() == 0 {
		if !allowedEmoji(body.Emoji) {
			apiError(c, http.StatusBadRequest, "emoji is not allowed")
			return
		}
		if _, err := tx.Exec(c,
			`INSERT INTO entry_reactions (entry_id, user_id, emoji)
			 VALUES (@entryID, @userID, @emoji)
			 ON CONFLICT (entry_id, user_id, emoji) DO NOTHING`, args); err != nil {
			h.fail(c, http.StatusInternalServerError, "failed to toggle reaction", err)
			return
		}
	}

	reactions, err := queryMany[entryReaction](tx, c,
		"SELECT * FROM entry_reactions WHERE entry_id = @entryID ORDER BY created_at", args)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "failed to fetch reactions", err)
		return
	}
	if err := tx.Commit(c); err != nil {
		h.fail(c, http.StatusInternalServerError, "failed to commit reaction", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entry_id":  body.EntryID,
		"reacted":   deleted.RowsAffected() == 0,
		"reactions": summarizeReactions(reactions, userID),
	})
}
