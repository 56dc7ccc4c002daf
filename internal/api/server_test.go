package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/household-sim/internal/engine"
	"github.com/talgya/household-sim/internal/persistence"
)

type fixture struct {
	srv    *httptest.Server
	runner *engine.Runner
	ids    []string
}

func newFixture(t *testing.T, limiter *RateLimiter) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := persistence.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	runner := &engine.Runner{Seed: 11, Households: 4, Years: 6, Workers: 2}
	var ids []string
	sink := engine.SinkFunc(func(ctx context.Context, index int, r engine.Result) error {
		ids = append(ids, r.Household.ID)
		return db.WriteHousehold(ctx, index, r)
	})
	_, err = runner.Run(ctx, sink)
	require.NoError(t, err)
	require.NoError(t, db.SaveMeta(ctx, "seed", "11"))
	require.NoError(t, db.SaveMeta(ctx, "years", "6"))

	s := &Server{
		Store:          db,
		Runner:         runner,
		SampleLimiter:  limiter,
		AllowedOrigins: []string{"https://rates.example.com"},
	}
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	return &fixture{srv: srv, runner: runner, ids: ids}
}

func (f *fixture) get(t *testing.T, path string, out any) int {
	t.Helper()
	resp, err := http.Get(f.srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestStatus(t *testing.T) {
	f := newFixture(t, nil)

	var status map[string]any
	require.Equal(t, http.StatusOK, f.get(t, "/api/v1/status", &status))
	assert.EqualValues(t, 4, status["households"])
	assert.Equal(t, "11", status["seed"])
	assert.Equal(t, "6", status["years"])
}

func TestHouseholdsPaging(t *testing.T) {
	f := newFixture(t, nil)

	var page []persistence.HouseholdInfo
	require.Equal(t, http.StatusOK, f.get(t, "/api/v1/households?limit=2&offset=1", &page))
	require.Len(t, page, 2)
	assert.Equal(t, f.ids[1], page[0].ID)
	assert.Equal(t, f.ids[2], page[1].ID)

	var empty []persistence.HouseholdInfo
	require.Equal(t, http.StatusOK, f.get(t, "/api/v1/households?offset=100", &empty))
	assert.Empty(t, empty)

	assert.Equal(t, http.StatusBadRequest, f.get(t, "/api/v1/households?limit=ten", nil))
}

func TestHousehold(t *testing.T) {
	f := newFixture(t, nil)

	var row map[string]any
	require.Equal(t, http.StatusOK, f.get(t, "/api/v1/household/"+f.ids[0], &row))
	assert.Equal(t, f.ids[0], row["household_id"])
	assert.Contains(t, row, "household_claim_cnt_all_1")

	assert.Equal(t, http.StatusNotFound, f.get(t, "/api/v1/household/missing", nil))
}

func TestHouseholdVehicles(t *testing.T) {
	f := newFixture(t, nil)

	var rows []map[string]any
	status := f.get(t, "/api/v1/household/"+f.ids[0]+"/vehicles", &rows)
	if status == http.StatusNotFound {
		// A household can end the run with no vehicles.
		return
	}
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, rows)
	for _, r := range rows {
		assert.Equal(t, f.ids[0], r["household_id"])
		assert.Contains(t, r, "annual_mileage")
	}

	assert.Equal(t, http.StatusNotFound, f.get(t, "/api/v1/household/missing/vehicles", nil))
}

func TestSampleMatchesRunner(t *testing.T) {
	f := newFixture(t, nil)

	var got map[string]any
	require.Equal(t, http.StatusOK, f.get(t, "/api/v1/sample?index=2", &got))

	res, err := f.runner.Simulate(context.Background(), 2)
	require.NoError(t, err)
	raw, err := json.Marshal(res.Summary)
	require.NoError(t, err)
	var want map[string]any
	require.NoError(t, json.Unmarshal(raw, &want))

	assert.Equal(t, want, got)
	assert.Equal(t, f.ids[2], got["household_id"])

	assert.Equal(t, http.StatusBadRequest, f.get(t, "/api/v1/sample?index=-1", nil))
}

func TestSampleRateLimited(t *testing.T) {
	f := newFixture(t, NewRateLimiter(2, time.Hour))

	assert.Equal(t, http.StatusOK, f.get(t, "/api/v1/sample?index=0", nil))
	assert.Equal(t, http.StatusOK, f.get(t, "/api/v1/sample?index=1", nil))

	resp, err := http.Get(f.srv.URL + "/api/v1/sample?index=0")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))

	// Stored rows are not limited.
	assert.Equal(t, http.StatusOK, f.get(t, "/api/v1/status", nil))
}

func TestCORS(t *testing.T) {
	f := newFixture(t, nil)

	req, err := http.NewRequest(http.MethodOptions, f.srv.URL+"/api/v1/status", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://rates.example.com")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "https://rates.example.com", resp.Header.Get("Access-Control-Allow-Origin"))

	req, err = http.NewRequest(http.MethodGet, f.srv.URL+"/api/v1/status", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://elsewhere.example.com")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRateLimiterWindow(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	ok, _ := rl.Allow("a")
	assert.True(t, ok)
	ok, _ = rl.Allow("a")
	assert.True(t, ok)
	ok, wait := rl.Allow("a")
	assert.False(t, ok)
	assert.Equal(t, time.Minute, wait)

	ok, _ = rl.Allow("b")
	assert.True(t, ok, "clients are limited separately")

	now = now.Add(time.Minute)
	ok, _ = rl.Allow("a")
	assert.True(t, ok, "window reopens")
}

func TestClientAddr(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.7:5123"
	assert.Equal(t, "10.0.0.7", clientAddr(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientAddr(r))
}
