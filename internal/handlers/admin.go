package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/groovemind/djbooth/internal/moderation"
	"github.com/groovemind/djbooth/internal/models"
)

// AdminHandler exposes moderation state and configuration
type AdminHandler struct {
	store  *moderation.UserStateStore
	config *moderation.ConfigHolder
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(store *moderation.UserStateStore, config *moderation.ConfigHolder) *AdminHandler {
	return &AdminHandler{store: store, config: config}
}

// RegisterRoutes registers admin routes on the given router.
func (h *AdminHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/users", h.ListUsers).Methods("GET")
	r.HandleFunc("/users/{id}/status", h.UserStatus).Methods("GET")
	r.HandleFunc("/users/{id}/reset", h.ResetUser).Methods("POST")
	r.HandleFunc("/moderation", h.GetModerationConfig).Methods("GET")
	r.HandleFunc("/moderation", h.UpdateModerationConfig).Methods("PATCH")
}

// ListUsers returns the moderation state of every known user
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.Snapshot(time.Now()))
}

// UserStatus returns one user's moderation state without touching it
func (h *AdminHandler) UserStatus(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]
	respondJSON(w, http.StatusOK, h.store.Status(userID, time.Now()))
}

// ResetUser clears a user's warnings, mutes and suspension
func (h *AdminHandler) ResetUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]
	h.store.Reset(userID)
	respondJSON(w, http.StatusOK, h.store.Status(userID, time.Now()))
}

// ModerationConfigView is the wire form of the moderation config, with
// durations in seconds.
type ModerationConfigView struct {
	WarningThreshold int `json:"warning_threshold"`
	MuteDurationSec  int `json:"mute_duration_seconds"`
	MuteThreshold    int `json:"mute_threshold"`
	SuspensionDurSec int `json:"suspension_duration_seconds"`
}

func configView(cfg models.ModerationConfig) ModerationConfigView {
	return ModerationConfigView{
		WarningThreshold: cfg.WarningThreshold,
		MuteDurationSec:  int(cfg.MuteDuration / time.Second),
		MuteThreshold:    cfg.MuteThreshold,
		SuspensionDurSec: int(cfg.SuspensionDuration / time.Second),
	}
}

// GetModerationConfig returns the current thresholds and durations
func (h *AdminHandler) GetModerationConfig(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, configView(h.config.Get()))
}

// UpdateModerationConfig applies a partial config update. Changes take
// effect for subsequent evaluations; penalties already in flight keep
// their original expiry.
func (h *AdminHandler) UpdateModerationConfig(w http.ResponseWriter, r *http.Request) {
	var patch models.ModerationConfigPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	updated, err := h.config.Update(patch)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, configView(updated))
}
