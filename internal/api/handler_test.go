package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/agent"
	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/config"
	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/llm"
	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/store"
	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/telemetry"
	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/tools"
)

func newTestServer(t *testing.T, client llm.Client) *httptest.Server {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cfg := config.DefaultConfig()
	collector := telemetry.NewCollector()

	registry := tools.NewRegistry(collector)
	tools.RegisterHealthTools(registry, st)

	engine := agent.NewEngine(
		agent.NewSessionStore(time.Hour, 20),
		agent.NewProfileLoader(st),
		agent.NewContextCache(st, 5*time.Minute, 7*24*time.Hour, collector),
		agent.NewPlanner(client, 10),
		registry,
		st,
		collector,
	)

	srv := httptest.NewServer(NewHandler(engine, st, collector, cfg).Router())
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func putProfile(t *testing.T, srv *httptest.Server, userID string) {
	t.Helper()
	resp := doJSON(t, http.MethodPut, srv.URL+"/api/users/"+userID+"/profile", map[string]any{
		"name": "Alex", "age": 30, "gender": "female",
		"height_cm": 170, "target_weight_kg": 60,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestProfileRoundTrip(t *testing.T) {
	srv := newTestServer(t, &llm.StaticClient{Reply: "hi"})

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/users/u1/profile", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	putProfile(t, srv, "u1")

	var profile store.Profile
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/users/u1/profile", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &profile)
	assert.Equal(t, "Alex", profile.Name)
	assert.Equal(t, 170.0, profile.HeightCm)
}

func TestProfileValidation(t *testing.T) {
	srv := newTestServer(t, &llm.StaticClient{Reply: "hi"})

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/users/u1/profile", map[string]any{"age": 30})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/users/u1/profile", map[string]any{"name": "A", "age": -1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestCheckinWriteAndList(t *testing.T) {
	srv := newTestServer(t, &llm.StaticClient{Reply: "hi"})

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/users/u1/checkins/weight", map[string]any{"weight": 65.5})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/users/u1/checkins/water", map[string]any{"amount_ml": 500})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	var out struct {
		Checkins []store.Checkin `json:"checkins"`
		Days     int             `json:"days"`
	}
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/users/u1/checkins", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &out)
	assert.Len(t, out.Checkins, 2)
	assert.Equal(t, 7, out.Days)
}

func TestCheckinValidation(t *testing.T) {
	srv := newTestServer(t, &llm.StaticClient{Reply: "hi"})

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/users/u1/checkins/weight", map[string]any{"weight": -2})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/users/u1/checkins/teleport", map[string]any{})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/users/u1/checkins?days=banana", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestChatTurnRecordsCheckin(t *testing.T) {
	reply := "Noted!\n[TOOL_CALL]{\"tool\": \"log_weight\", \"args\": {\"weight\": 65.5}}[/TOOL_CALL]"
	srv := newTestServer(t, &llm.StaticClient{Reply: reply})
	putProfile(t, srv, "u1")

	var out struct {
		Reply   string   `json:"reply"`
		Actions []string `json:"actions"`
		Error   string   `json:"error"`
	}
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/chat", map[string]any{"user_id": "u1", "message": "65.5kg today"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &out)

	assert.Empty(t, out.Error)
	assert.Equal(t, []string{"log_weight"}, out.Actions)
	assert.NotEmpty(t, out.Reply)

	// The write is visible through the REST read path.
	var list struct {
		Checkins []store.Checkin `json:"checkins"`
	}
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/users/u1/checkins", nil)
	decode(t, resp, &list)
	require.Len(t, list.Checkins, 1)
	assert.Equal(t, store.CheckinWeight, list.Checkins[0].Type)
	assert.Equal(t, "chat", list.Checkins[0].Source)
}

func TestChatValidation(t *testing.T) {
	srv := newTestServer(t, &llm.StaticClient{Reply: "hi"})

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/chat", map[string]any{"user_id": "", "message": "hi"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/chat", map[string]any{"user_id": "u1", "message": "  "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestWeeklyReportEndpoint(t *testing.T) {
	srv := newTestServer(t, &llm.StaticClient{Reply: "hi"})
	putProfile(t, srv, "u1")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/users/u1/checkins/weight", map[string]any{"weight": 65.5})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	var rep struct {
		Weight *struct {
			LatestKg float64 `json:"latest_kg"`
		} `json:"weight"`
		BMI float64 `json:"bmi"`
	}
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/users/u1/report/weekly", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &rep)
	require.NotNil(t, rep.Weight)
	assert.Equal(t, 65.5, rep.Weight.LatestKg)
	assert.Greater(t, rep.BMI, 0.0)
}

func TestStatsEndpoint(t *testing.T) {
	srv := newTestServer(t, &llm.StaticClient{Reply: "hi"})
	putProfile(t, srv, "u1")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/chat", map[string]any{"user_id": "u1", "message": "hello"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	var stats struct {
		Telemetry    telemetry.Snapshot `json:"telemetry"`
		LiveSessions int                `json:"live_sessions"`
	}
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &stats)
	assert.EqualValues(t, 1, stats.Telemetry.Stages["plan"].Invocations)
	assert.EqualValues(t, 1, stats.Telemetry.Stages["finalize"].Invocations)
	assert.Equal(t, 1, stats.LiveSessions)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, &llm.StaticClient{Reply: "hi"})
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
