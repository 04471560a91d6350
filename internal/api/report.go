package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/report"
)

// handleWeeklyReport returns the trailing-7-day aggregate for a user.
func (h *Handler) handleWeeklyReport(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	rep, err := report.Weekly(h.store, userID, time.Now())
	if err != nil {
		Error(w, http.StatusInternalServerError, "failed to build report")
		return
	}
	JSON(w, http.StatusOK, rep)
}

// handleStats returns the aggregate telemetry snapshot (per-stage and
// per-tool counters, cache hit/miss totals) plus the live session count.
func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]any{
		"telemetry":     h.telemetry.Snapshot(),
		"live_sessions": h.engine.Sessions().Len(),
	})
}
