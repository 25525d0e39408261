package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var testUserID = uuid.MustParse("6f1c2a9e-4b1d-4d35-9a57-0c6a3e1f2b01")

// setupRouterTest builds the real router with a nil DB pool. Every request in
// these tests must be rejected before a query runs.
func setupRouterTest(t *testing.T) (*gin.Engine, *Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := &Handler{log: newLogger("panic"), tokens: newTokenIssuer("test-secret", time.Hour)}
	return h.newRouter(), h
}

// doRequest sends a request with an optional JSON body and bearer token.
func doRequest(router *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func testToken(t *testing.T, h *Handler) string {
	t.Helper()
	token, err := h.tokens.issue(testUserID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

// errorMessage decodes an {"error": "..."} body.
func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return body.Error
}

func TestHealthz(t *testing.T) {
	router, _ := setupRouterTest(t)
	w := doRequest(router, "GET", "/healthz", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	router, _ := setupRouterTest(t)

	expired, err := newTokenIssuer("test-secret", -time.Hour).issue(testUserID)
	if err != nil {
		t.Fatal(err)
	}
	foreign, err := newTokenIssuer("other-secret", time.Hour).issue(testUserID)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"garbage", "not-a-jwt"},
		{"expired", expired},
		{"wrong secret", foreign},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, "GET", "/api/calorie-log/daily", "", tt.token)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestLogin_InvalidBody(t *testing.T) {
	router, _ := setupRouterTest(t)
	w := doRequest(router, "POST", "/api/login", "{", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// TestValidation_RejectsBeforeQuery covers every 400 that must be returned
// without touching the database.
func TestValidation_RejectsBeforeQuery(t *testing.T) {
	router, h := setupRouterTest(t)
	token := testToken(t, h)

	tests := []struct {
		name, method, path, body, wantErr string
	}{
		{"daily bad date", "GET", "/api/calorie-log/daily?date=2024-13-01", "", "invalid date, expected YYYY-MM-DD"},
		{"week bad date", "GET", "/api/calorie-log/week?week_start=nope", "", "invalid week_start, expected YYYY-MM-DD"},
		{"entry empty name", "POST", "/api/calorie-log/entries", `{"name":"   ","calories":100}`, "food name is required"},
		{"entry bad meal", "POST", "/api/calorie-log/entries", `{"name":"Oats","meal":"Brunch"}`, "meal must be one of: Breakfast, Lunch, Dinner, Snack"},
		{"entry bad date", "POST", "/api/calorie-log/entries", `{"name":"Oats","date":"10/12/2024"}`, "invalid date, expected YYYY-MM-DD"},
		{"entry bad body", "POST", "/api/calorie-log/entries", `{"name":`, "invalid request body"},
		{"update bad id", "PUT", "/api/calorie-log/entries/42", `{"name":"Oats"}`, "invalid entry id"},
		{"update empty name", "PUT", "/api/calorie-log/entries/" + uuid.NewString(), `{"name":""}`, "food name is required"},
		{"delete bad id", "DELETE", "/api/calorie-log/entries/abc", "", "invalid entry id"},
		{"weight negative", "PUT", "/api/calorie-log/daily/weight", `{"date":"2024-10-14","weight_kg":"-1"}`, "weight must be greater than 0"},
		{"weight history missing", "GET", "/api/calorie-log/weights?start=2024-10-01", "", "start and end query params are required"},
		{"weight history reversed", "GET", "/api/calorie-log/weights?start=2024-10-10&end=2024-10-01", "", "start must not be after end"},
		{"copy empty selection", "POST", "/api/calorie-log/quick-copy", `{"date":"2024-10-14","entry_ids":[]}`, "select at least one entry to copy"},
		{"copy nil ids only", "POST", "/api/calorie-log/quick-copy", `{"date":"2024-10-14","entry_ids":["00000000-0000-0000-0000-000000000000"]}`, "select at least one entry to copy"},
		{"copy bad date", "POST", "/api/calorie-log/quick-copy", `{"date":"tomorrow","entry_ids":["` + uuid.NewString() + `"]}`, "invalid date, expected YYYY-MM-DD"},
		{"candidates bad range", "GET", "/api/calorie-log/quick-copy/candidates?range=year", "", `invalid range "year", expected yesterday, week or month`},
		{"candidates bad meal", "GET", "/api/calorie-log/quick-copy/candidates?meal=Brunch", "", "meal must be one of: All, Breakfast, Lunch, Dinner, Snack"},
		{"goal bad mode", "PUT", "/api/weekly-goal", `{"week_start":"2024-10-14","mode":"maintain"}`, "mode must be one of: bulk, cut"},
		{"goal bad week", "PUT", "/api/weekly-goal", `{"week_start":"2024-02-30","mode":"cut"}`, "invalid week_start, expected YYYY-MM-DD"},
		{"group day bad member", "GET", "/api/group/day?date=2024-10-14&members=" + uuid.NewString() + ",xyz", "", "invalid member id"},
		{"group day bad date", "GET", "/api/group/day?date=yesterday", "", "invalid date, expected YYYY-MM-DD"},
		{"reactions bad id", "GET", "/api/reactions?entry_ids=1,2", "", "invalid entry id"},
		{"toggle missing emoji", "POST", "/api/reactions/toggle", `{"entry_id":"` + uuid.NewString() + `"}`, "entry_id and emoji are required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, tt.method, tt.path, tt.body, token)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
			if got := errorMessage(t, w); got != tt.wantErr {
				t.Errorf("error = %q, want %q", got, tt.wantErr)
			}
		})
	}
}

// TestGroupDay_EmptySelection verifies no members yields an empty day
// without querying.
func TestGroupDay_EmptySelection(t *testing.T) {
	router, h := setupRouterTest(t)
	w := doRequest(router, "GET", "/api/group/day?date=2024-10-14", "", testToken(t, h))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var day groupDay
	if err := json.Unmarshal(w.Body.Bytes(), &day); err != nil {
		t.Fatal(err)
	}
	if day.Date != "2024-10-14" || len(day.Members) != 0 || len(day.Rows) != 0 || day.GrandTotal != (Totals{}) {
		t.Errorf("unexpected day: %+v", day)
	}
	if !strings.Contains(w.Body.String(), `"rows":[]`) {
		t.Errorf("rows should render as [], got %s", w.Body.String())
	}
}

// TestReactions_EmptyIDs verifies an empty id list returns an empty map.
func TestReactions_EmptyIDs(t *testing.T) {
	router, h := setupRouterTest(t)
	w := doRequest(router, "GET", "/api/reactions", "", testToken(t, h))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"reactions":{}}` {
		t.Errorf("body = %s", got)
	}
}
