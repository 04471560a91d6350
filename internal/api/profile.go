package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/store"
)

// handleGetProfile returns the user's profile or 404.
func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	profile, err := h.store.GetProfile(userID)
	if err != nil {
		if errors.Is(err, store.ErrProfileNotFound) {
			Error(w, http.StatusNotFound, "profile not found")
			return
		}
		Error(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	JSON(w, http.StatusOK, profile)
}

// handlePutProfile creates or replaces the user's profile.
func (h *Handler) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var profile store.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	profile.UserID = userID
	profile.UpdatedAt = time.Now()

	if profile.Name == "" {
		Error(w, http.StatusBadRequest, "name is required")
		return
	}
	if profile.HeightCm < 0 || profile.TargetWeightKg < 0 || profile.Age < 0 {
		Error(w, http.StatusBadRequest, "numeric fields must not be negative")
		return
	}

	if err := h.store.UpsertProfile(&profile); err != nil {
		Error(w, http.StatusInternalServerError, "failed to save profile")
		return
	}
	JSON(w, http.StatusOK, profile)
}
