// Package api provides the HTTP surface for healthd: the chat endpoint in
// front of the turn engine, checkin and profile CRUD, reports, and stats.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/agent"
	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/config"
	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/store"
	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/telemetry"
)

// Handler provides common handler dependencies.
type Handler struct {
	engine    *agent.Engine
	store     *store.Store
	telemetry *telemetry.Collector
	cfg       *config.Config
}

// NewHandler creates a Handler with common dependencies.
func NewHandler(engine *agent.Engine, st *store.Store, collector *telemetry.Collector, cfg *config.Config) *Handler {
	return &Handler{
		engine:    engine,
		store:     st,
		telemetry: collector,
		cfg:       cfg,
	}
}

// Router builds the chi router with all routes registered.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", h.handleChat)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/profile", h.handleGetProfile)
			r.Put("/profile", h.handlePutProfile)

			r.Get("/checkins", h.handleListCheckins)
			r.Post("/checkins/{type}", h.handleAppendCheckin)

			r.Get("/report/weekly", h.handleWeeklyReport)
		})

		r.Get("/stats", h.handleStats)
	})

	return r
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
