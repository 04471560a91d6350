package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/store"
)

// restSource marks rows written through the REST surface, as opposed to
// the chat tools.
const restSource = "api"

type checkinRequest struct {
	Timestamp *time.Time `json:"timestamp,omitempty"`

	Weight         float64 `json:"weight,omitempty"`
	Description    string  `json:"description,omitempty"`
	MealType       string  `json:"meal_type,omitempty"`
	Calories       float64 `json:"calories,omitempty"`
	Activity       string  `json:"activity,omitempty"`
	DurationMin    float64 `json:"duration_min,omitempty"`
	CaloriesBurned float64 `json:"calories_burned,omitempty"`
	AmountMl       float64 `json:"amount_ml,omitempty"`
	Hours          float64 `json:"hours,omitempty"`
	Quality        string  `json:"quality,omitempty"`
}

// handleAppendCheckin writes one checkin of the given type. The context
// cache is invalidated afterwards so the next chat turn sees the entry
// without waiting out the freshness window.
func (h *Handler) handleAppendCheckin(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	checkinType := store.CheckinType(chi.URLParam(r, "type"))

	var req checkinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	ts := time.Now()
	if req.Timestamp != nil {
		ts = *req.Timestamp
	}

	var err error
	switch checkinType {
	case store.CheckinWeight:
		if req.Weight <= 0 {
			Error(w, http.StatusBadRequest, "weight must be positive")
			return
		}
		err = h.store.AppendWeight(userID, ts, req.Weight, restSource)
	case store.CheckinMeal:
		if req.Description == "" {
			Error(w, http.StatusBadRequest, "description is required")
			return
		}
		err = h.store.AppendMeal(userID, ts, req.Description, req.MealType, req.Calories, restSource)
	case store.CheckinExercise:
		if req.Activity == "" || req.DurationMin <= 0 {
			Error(w, http.StatusBadRequest, "activity and a positive duration_min are required")
			return
		}
		err = h.store.AppendExercise(userID, ts, req.Activity, req.DurationMin, req.CaloriesBurned, restSource)
	case store.CheckinWater:
		if req.AmountMl <= 0 {
			Error(w, http.StatusBadRequest, "amount_ml must be positive")
			return
		}
		err = h.store.AppendWater(userID, ts, req.AmountMl, restSource)
	case store.CheckinSleep:
		if req.Hours <= 0 {
			Error(w, http.StatusBadRequest, "hours must be positive")
			return
		}
		err = h.store.AppendSleep(userID, ts, req.Hours, req.Quality, restSource)
	default:
		Error(w, http.StatusNotFound, "unknown checkin type")
		return
	}

	if err != nil {
		Error(w, http.StatusInternalServerError, "failed to record checkin")
		return
	}

	h.engine.InvalidateContext(userID)
	JSON(w, http.StatusCreated, map[string]any{"type": checkinType, "timestamp": ts})
}

// handleListCheckins returns all checkins over a trailing window,
// defaulting to 7 days (?days=N to widen).
func (h *Handler) handleListCheckins(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	days := 7
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			Error(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = n
	}

	checkins, err := h.store.CheckinsSince(userID, time.Now().AddDate(0, 0, -days))
	if err != nil {
		Error(w, http.StatusInternalServerError, "failed to load checkins")
		return
	}
	if checkins == nil {
		checkins = []store.Checkin{}
	}
	JSON(w, http.StatusOK, map[string]any{"checkins": checkins, "days": days})
}
