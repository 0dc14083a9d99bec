package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/groovemind/djbooth/internal/database"
	"github.com/groovemind/djbooth/internal/models"
	"github.com/groovemind/djbooth/internal/validation"
)

// ProfileHandler handles DJ persona management
type ProfileHandler struct {
	repo database.ProfileRepositoryInterface
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(repo database.ProfileRepositoryInterface) *ProfileHandler {
	return &ProfileHandler{repo: repo}
}

// RegisterRoutes registers profile routes on the given router.
func (h *ProfileHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/profiles", h.ListProfiles).Methods("GET")
	r.HandleFunc("/profiles", h.UpsertProfile).Methods("POST")
	r.HandleFunc("/profiles/active", h.GetActiveProfile).Methods("GET")
	r.HandleFunc("/profiles/{id}", h.DeleteProfile).Methods("DELETE")
	r.HandleFunc("/profiles/{id}/activate", h.ActivateProfile).Methods("POST")
}

// UpsertProfileRequest creates or updates a DJ persona by name
type UpsertProfileRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=128"`
	Personality string `json:"personality" validate:"required,min=1,max=2000"`
	VoiceID     string `json:"voice_id,omitempty" validate:"omitempty,max=128"`
}

// ListProfiles lists all DJ profiles
func (h *ProfileHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.repo.List(r.Context())
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to list profiles")
		return
	}
	respondJSON(w, http.StatusOK, profiles)
}

// GetActiveProfile returns the currently active DJ profile
func (h *ProfileHandler) GetActiveProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.repo.GetActive(r.Context())
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to get active profile")
		return
	}
	if profile == nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "No active profile")
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// UpsertProfile creates or updates a profile keyed by name
func (h *ProfileHandler) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	var req UpsertProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	if err := validation.Validate.Struct(req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fieldError := range validationErrors {
				respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Validation failed: %s", fieldError.Error()))
				return
			}
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed")
		return
	}

	req.Name = validation.SanitizeText(req.Name)
	req.Personality = validation.SanitizeText(req.Personality)
	if req.Name == "" || req.Personality == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Name and personality are required")
		return
	}

	profile := &models.DJProfile{
		Name:        req.Name,
		Personality: req.Personality,
		VoiceID:     req.VoiceID,
	}
	if err := h.repo.Upsert(r.Context(), profile); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to save profile")
		return
	}

	respondJSON(w, http.StatusCreated, profile)
}

// ActivateProfile makes the given profile the active persona
func (h *ProfileHandler) ActivateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid profile ID")
		return
	}

	if err := h.repo.Activate(r.Context(), id); err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Profile not found")
		return
	}

	profile, err := h.repo.GetByID(r.Context(), id)
	if err != nil || profile == nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to load activated profile")
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// DeleteProfile removes a profile
func (h *ProfileHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid profile ID")
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to delete profile")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
