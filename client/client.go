// Package client is a typed HTTP client for the macro group API plus the
// view state a UI keeps on top of it: latest-request-wins loads, optimistic
// reaction toggles and a persisted friend selection.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// APIError is a non-2xx response. Message is the server's {"error": ...} text.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client calls the API with a bearer token obtained from Login or SetToken.
// It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// New returns a client for baseURL (e.g. "http://localhost:3000").
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// do sends a JSON request and decodes a JSON response into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func joinIDs(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ",")
}

/* ─── Endpoints ──────────────────────────────────────────────────────── */

// Login exchanges credentials for a token, which later calls then use.
func (c *Client) Login(ctx context.Context, username, password string) (uuid.UUID, error) {
	var resp struct {
		Token  string    `json:"token"`
		UserID uuid.UUID `json:"user_id"`
	}
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/login", nil, body, &resp); err != nil {
		return uuid.Nil, err
	}
	c.SetToken(resp.Token)
	return resp.UserID, nil
}

// Day fetches my summary for date (YYYY-MM-DD; "" for today).
func (c *Client) Day(ctx context.Context, date string) (DaySummary, error) {
	q := url.Values{}
	if date != "" {
		q.Set("date", date)
	}
	var out DaySummary
	err := c.do(ctx, http.MethodGet, "/api/calorie-log/daily", q, nil, &out)
	return out, err
}

// Week fetches the Monday-to-Sunday week containing date.
func (c *Client) Week(ctx context.Context, date string) (WeekSummary, error) {
	q := url.Values{}
	if date != "" {
		q.Set("week_start", date)
	}
	var out WeekSummary
	err := c.do(ctx, http.MethodGet, "/api/calorie-log/week", q, nil, &out)
	return out, err
}

func (c *Client) CreateEntry(ctx context.Context, in EntryInput) (Entry, error) {
	var out Entry
	err := c.do(ctx, http.MethodPost, "/api/calorie-log/entries", nil, in, &out)
	return out, err
}

// UpdateEntry replaces an entry's fields; the entry stays on its day.
func (c *Client) UpdateEntry(ctx context.Context, id uuid.UUID, in EntryInput) (Entry, error) {
	var out Entry
	err := c.do(ctx, http.MethodPut, "/api/calorie-log/entries/"+id.String(), nil, in, &out)
	return out, err
}

func (c *Client) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/calorie-log/entries/"+id.String(), nil, nil, nil)
}

// SaveWeight sets the day's weight from user input ("80,5" is accepted); an
// empty weight clears it.
func (c *Client) SaveWeight(ctx context.Context, date, weight string) (DailyLog, error) {
	body := map[string]string{"date": date, "weight_kg": weight}
	var out DailyLog
	err := c.do(ctx, http.MethodPut, "/api/calorie-log/daily/weight", nil, body, &out)
	return out, err
}

func (c *Client) WeightHistory(ctx context.Context, start, end string) ([]DailyLog, error) {
	var out []DailyLog
	err := c.do(ctx, http.MethodGet, "/api/calorie-log/weights", url.Values{"start": {start}, "end": {end}}, nil, &out)
	return out, err
}

func (c *Client) WeeklyGoal(ctx context.Context, date string) (WeekGoal, error) {
	q := url.Values{}
	if date != "" {
		q.Set("week_start", date)
	}
	var out WeekGoal
	err := c.do(ctx, http.MethodGet, "/api/weekly-goal", q, nil, &out)
	return out, err
}

// SaveWeeklyGoal upserts the goal for the week containing goal.WeekStart.
func (c *Client) SaveWeeklyGoal(ctx context.Context, goal WeeklyGoal) (WeekGoal, error) {
	var out WeekGoal
	err := c.do(ctx, http.MethodPut, "/api/weekly-goal", nil, goal, &out)
	return out, err
}

func (c *Client) Profile(ctx context.Context) (Profile, error) {
	var out Profile
	err := c.do(ctx, http.MethodGet, "/api/profile", nil, nil, &out)
	return out, err
}

func (c *Client) SaveProfile(ctx context.Context, displayName, groupCode string) (Profile, error) {
	body := map[string]string{"display_name": displayName, "group_code": groupCode}
	var out Profile
	err := c.do(ctx, http.MethodPut, "/api/profile", nil, body, &out)
	return out, err
}

func (c *Client) GroupMembers(ctx context.Context) (GroupMembers, error) {
	var out GroupMembers
	err := c.do(ctx, http.MethodGet, "/api/group/members", nil, nil, &out)
	return out, err
}

// GroupDay fetches the selected members' day. Members not in my group are
// dropped by the server.
func (c *Client) GroupDay(ctx context.Context, date string, members []uuid.UUID) (GroupDay, error) {
	q := url.Values{"date": {date}, "members": {joinIDs(members)}}
	var out GroupDay
	err := c.do(ctx, http.MethodGet, "/api/group/day", q, nil, &out)
	return out, err
}

func (c *Client) CopyCandidates(ctx context.Context, query CopyQuery) (CopyCandidates, error) {
	q := url.Values{}
	for k, v := range map[string]string{"range": query.Range, "source": query.Source, "meal": query.Meal, "search": query.Search} {
		if v != "" {
			q.Set(k, v)
		}
	}
	if query.Group != nil {
		q.Set("group", strconv.FormatBool(*query.Group))
	}
	var out CopyCandidates
	err := c.do(ctx, http.MethodGet, "/api/calorie-log/quick-copy/candidates", q, nil, &out)
	return out, err
}

// QuickCopy copies entries onto date. The server copies all or none.
func (c *Client) QuickCopy(ctx context.Context, date string, entryIDs []uuid.UUID) (CopyResult, error) {
	body := map[string]any{"date": date, "entry_ids": entryIDs}
	var out CopyResult
	err := c.do(ctx, http.MethodPost, "/api/calorie-log/quick-copy", nil, body, &out)
	return out, err
}

func (c *Client) Reactions(ctx context.Context, entryIDs []uuid.UUID) (map[uuid.UUID][]ReactionCount, error) {
	var out struct {
		Reactions map[uuid.UUID][]ReactionCount `json:"reactions"`
	}
	err := c.do(ctx, http.MethodGet, "/api/reactions", url.Values{"entry_ids": {joinIDs(entryIDs)}}, nil, &out)
	return out.Reactions, err
}

func (c *Client) ToggleReaction(ctx context.Context, entryID uuid.UUID, emoji string) (ToggleResult, error) {
	body := map[string]any{"entry_id": entryID, "emoji": emoji}
	var out ToggleResult
	err := c.do(ctx, http.MethodPost, "/api/reactions/toggle", nil, body, &out)
	return out, err
}
