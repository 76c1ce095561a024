package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/clinicxz/backend/internal/config"
	"github.com/clinicxz/backend/internal/db"
	"github.com/clinicxz/backend/internal/services"
)

type testServer struct {
	t     *testing.T
	h     http.Handler
	token string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "web.db") + "?_foreign_keys=on"
	gdb, err := db.Open("sqlite", dsn, logger.Default.LogMode(logger.Silent))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	_, err = services.NewUsers(gdb).SeedUsers(context.Background())
	require.NoError(t, err)

	cfg := &config.Config{
		SecretKey:          "test-secret",
		TokenExpireMinutes: 5,
		PublicBaseURL:      "https://clinic.example",
	}
	return &testServer{t: t, h: Router(gdb, cfg, zerolog.Nop())}
}

func (s *testServer) login(username, password string) *httptest.ResponseRecorder {
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) authenticate() {
	rec := s.login("therapist1", "password123")
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	var out struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Equal(s.t, "bearer", out.TokenType)
	s.token = out.AccessToken
}

func (s *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestRouterHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
}

func TestRouterRequiresToken(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/api/patients", "/api/dashboard-stats", "/api/schedule", "/users/me"} {
		rec := s.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"), path)
	}

	s.token = "not-a-jwt"
	rec := s.do(http.MethodGet, "/api/patients", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouterLogin(t *testing.T) {
	s := newTestServer(t)

	rec := s.login("therapist1", "wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Incorrect username or password", decode(t, rec)["detail"])

	rec = s.login("nobody", "password123")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	s.authenticate()
	rec = s.do(http.MethodGet, "/users/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "therapist1", decode(t, rec)["username"])
}

func TestRouterPatientLifecycle(t *testing.T) {
	s := newTestServer(t)
	s.authenticate()

	rec := s.do(http.MethodPost, "/api/patients", map[string]any{
		"full_name":    "Amina K",
		"phone_number": "555-0101",
		"kids":         []map[string]any{{"sex": "F", "age": 4}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode(t, rec)
	id := int(created["id"].(float64))
	require.NotZero(t, id)
	assert.Len(t, created["kids"], 1)
	core, ok := created["core_issues"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, core["fear_of_death"])
	assert.Equal(t, []any{}, core["niyyath_related"])

	path := "/api/patients/" + strconv.Itoa(id)

	rec = s.do(http.MethodPatch, path, map[string]any{
		"place":       "Kozhikode",
		"core_issues": map[string]any{"fear_of_death": true},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode(t, rec)
	assert.Equal(t, "Kozhikode", updated["place"])
	assert.Equal(t, "Amina K", updated["full_name"])
	assert.Equal(t, true, updated["core_issues"].(map[string]any)["fear_of_death"])

	rec = s.do(http.MethodPut, path, map[string]any{"full_name": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, path+"/issues", map[string]any{"name": "Checking locks", "progress_percentage": 10})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	issueID := int(decode(t, rec)["id"].(float64))

	rec = s.do(http.MethodPost, path+"/sessions", map[string]any{
		"title": "Week 1",
		"date":  "2024-03-01",
		"log":   "first visit",
		"progress_updates": []map[string]any{
			{"sub_issue_id": issueID, "progress_percentage": 40},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sess := decode(t, rec)
	assert.Equal(t, "2024-03-01", sess["date"])

	rec = s.do(http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode(t, rec)
	assert.Len(t, got["sessions"], 1)
	issues := got["tracked_issues"].([]any)
	require.Len(t, issues, 1)
	assert.Equal(t, float64(40), issues[0].(map[string]any)["progress_percentage"])

	rec = s.do(http.MethodGet, "/api/dashboard-stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode(t, rec)
	assert.Equal(t, float64(1), stats["total_patients"])
	recent := stats["recent_patient_visits"].([]any)
	require.Len(t, recent, 1)
	assert.Equal(t, "Amina K", recent[0].(map[string]any)["patient_name"])

	rec = s.do(http.MethodGet, path+"/qr.png", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = s.do(http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decode(t, rec)["detail"], "not found")

	rec = s.do(http.MethodGet, "/api/patients/"+strconv.Itoa(issueID+1000)+"/qr.png", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterPatientValidation(t *testing.T) {
	s := newTestServer(t)
	s.authenticate()

	rec := s.do(http.MethodPost, "/api/patients", map[string]any{"full_name": "No Phone"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/patients", strings.NewReader("{"))
	req.Header.Set("Authorization", "Bearer "+s.token)
	rr := httptest.NewRecorder()
	s.h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rec = s.do(http.MethodGet, "/api/patients/abc", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodDelete, "/api/patients/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterSchedule(t *testing.T) {
	s := newTestServer(t)
	s.authenticate()

	rec := s.do(http.MethodPost, "/api/schedule", map[string]any{"title": "Intake", "time": "next tuesday"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/schedule", map[string]any{"title": "Intake", "time": "2030-01-02T10:30"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	ev := decode(t, rec)
	assert.Equal(t, "Scheduled", ev["status"])
	path := "/api/schedule/" + strconv.Itoa(int(ev["id"].(float64)))

	rec = s.do(http.MethodGet, "/api/dashboard-stats", nil)
	assert.Equal(t, float64(1), decode(t, rec)["upcoming_appointments"])

	rec = s.do(http.MethodPut, path, map[string]any{"status": "Done"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPut, path, map[string]any{"status": "Completed"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Completed", decode(t, rec)["status"])

	rec = s.do(http.MethodGet, "/api/schedule", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rec = s.do(http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
