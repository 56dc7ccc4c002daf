// Package api serves generated households over HTTP.
// GET endpoints read rows written by the generate command; the sample
// endpoint simulates a household on demand and is rate limited.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/household-sim/internal/engine"
	"github.com/talgya/household-sim/internal/household"
	"github.com/talgya/household-sim/internal/persistence"
)

// Store is the read side of the household database.
type Store interface {
	CountHouseholds(ctx context.Context) (int, error)
	ListHouseholds(ctx context.Context, limit, offset int) ([]persistence.HouseholdInfo, error)
	LoadHouseholdRow(ctx context.Context, id string) (household.Record, error)
	LoadVehicleRows(ctx context.Context, householdID string) ([]household.Record, error)
	GetMeta(ctx context.Context, key string) (string, error)
}

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// Server serves stored households over HTTP.
type Server struct {
	Store  Store
	Runner *engine.Runner // Seed and years for on-demand samples.
	Addr   string

	// SampleLimiter throttles /api/v1/sample per client. Nil disables it.
	SampleLimiter *RateLimiter

	// AllowedOrigins get CORS headers in addition to local dev servers.
	AllowedOrigins []string
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/households", s.handleHouseholds)
	mux.HandleFunc("GET /api/v1/household/{id}", s.handleHousehold)
	mux.HandleFunc("GET /api/v1/household/{id}/vehicles", s.handleVehicles)

	sample := s.handleSample
	if s.SampleLimiter != nil {
		sample = RateLimitMiddleware(s.SampleLimiter, s.handleSample)
	}
	mux.HandleFunc("GET /api/v1/sample", sample)

	return corsMiddleware(s.AllowedOrigins, mux)
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Localhost dev servers are always allowed.
func corsMiddleware(origins []string, next http.Handler) http.Handler {
	allowed := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			allowed[o] = true
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("HTTP API starting", "addr", s.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	slog.Info("HTTP API stopped")
	return nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	n, err := s.Store.CountHouseholds(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}

	status := map[string]any{
		"households": n,
	}
	for _, key := range []string{"seed", "years"} {
		if v, err := s.Store.GetMeta(r.Context(), key); err == nil {
			status[key] = v
		}
	}
	writeJSON(w, status)
}

func (s *Server) handleHouseholds(w http.ResponseWriter, r *http.Request) {
	limit, ok := intParam(w, r, "limit", defaultPageSize)
	if !ok {
		return
	}
	offset, ok := intParam(w, r, "offset", 0)
	if !ok {
		return
	}
	limit = min(max(limit, 1), maxPageSize)

	list, err := s.Store.ListHouseholds(r.Context(), limit, max(offset, 0))
	if err != nil {
		internalError(w, err)
		return
	}
	if list == nil {
		list = []persistence.HouseholdInfo{}
	}
	writeJSON(w, list)
}

func (s *Server) handleHousehold(w http.ResponseWriter, r *http.Request) {
	row, err := s.Store.LoadHouseholdRow(r.Context(), r.PathValue("id"))
	if errors.Is(err, persistence.ErrNotFound) {
		http.Error(w, "household not found", http.StatusNotFound)
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, row)
}

func (s *Server) handleVehicles(w http.ResponseWriter, r *http.Request) {
	rows, err := s.Store.LoadVehicleRows(r.Context(), r.PathValue("id"))
	if err != nil {
		internalError(w, err)
		return
	}
	if len(rows) == 0 {
		http.Error(w, "household not found", http.StatusNotFound)
		return
	}
	writeJSON(w, rows)
}

func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	if s.Runner == nil {
		http.Error(w, "sampling disabled", http.StatusNotFound)
		return
	}
	index, ok := intParam(w, r, "index", 0)
	if !ok {
		return
	}
	if index < 0 {
		http.Error(w, "index must be non-negative", http.StatusBadRequest)
		return
	}

	res, err := s.Runner.Simulate(r.Context(), index)
	if err != nil {
		internalError(w, err)
		return
	}

	if r.URL.Query().Get("per_vehicle") == "true" {
		writeJSON(w, res.Vehicles)
		return
	}
	writeJSON(w, res.Summary)
}

func intParam(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		http.Error(w, "invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return v, true
}

func internalError(w http.ResponseWriter, err error) {
	slog.Error("api request failed", "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
