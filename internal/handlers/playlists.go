package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/groovemind/djbooth/internal/models"
	"github.com/groovemind/djbooth/internal/validation"
)

// PlaylistSource lists playlists on the music server.
type PlaylistSource interface {
	Enabled() bool
	GetPlaylists(ctx context.Context) ([]models.Playlist, error)
}

// PlaylistRequester enqueues asynchronous playlist-build jobs.
type PlaylistRequester interface {
	RequestPlaylist(ctx context.Context, mood, theme string, count int) error
}

// PlaylistHandler handles playlist listing and build requests
type PlaylistHandler struct {
	source    PlaylistSource
	requester PlaylistRequester
}

// NewPlaylistHandler creates a new playlist handler
func NewPlaylistHandler(source PlaylistSource, requester PlaylistRequester) *PlaylistHandler {
	return &PlaylistHandler{source: source, requester: requester}
}

// RegisterRoutes registers playlist routes on the given router.
func (h *PlaylistHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/playlists", h.ListPlaylists).Methods("GET")
	r.HandleFunc("/playlists", h.CreatePlaylist).Methods("POST")
}

// DefaultPlaylistCount is the build-job song count when none is given.
const DefaultPlaylistCount = 10

// ListPlaylistsResponse wraps the music server's playlists
type ListPlaylistsResponse struct {
	Playlists []models.Playlist `json:"playlists"`
}

// ListPlaylists lists the playlists on the music server
func (h *PlaylistHandler) ListPlaylists(w http.ResponseWriter, r *http.Request) {
	if h.source == nil || !h.source.Enabled() {
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Music library is not configured")
		return
	}

	playlists, err := h.source.GetPlaylists(r.Context())
	if err != nil {
		respondJSONError(w, http.StatusBadGateway, "Bad Gateway", "Failed to list playlists")
		return
	}

	respondJSON(w, http.StatusOK, ListPlaylistsResponse{Playlists: playlists})
}

// CreatePlaylistRequest asks for an asynchronous playlist build
type CreatePlaylistRequest struct {
	Mood  string `json:"mood,omitempty" validate:"omitempty,max=64"`
	Theme string `json:"theme,omitempty" validate:"omitempty,max=64"`
	Count int    `json:"count,omitempty" validate:"omitempty,gte=1,lte=50"`
}

// CreatePlaylistResponse acknowledges the queued build
type CreatePlaylistResponse struct {
	Queued bool   `json:"queued"`
	Mood   string `json:"mood"`
	Theme  string `json:"theme"`
	Count  int    `json:"count"`
}

// CreatePlaylist enqueues a playlist build job
func (h *PlaylistHandler) CreatePlaylist(w http.ResponseWriter, r *http.Request) {
	if h.requester == nil {
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Playlist building is not configured")
		return
	}

	var req CreatePlaylistRequest
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

	if req.Mood == "" {
		req.Mood = "energetic"
	}
	if req.Theme == "" {
		req.Theme = "general"
	}
	if req.Count == 0 {
		req.Count = DefaultPlaylistCount
	}

	if err := h.requester.RequestPlaylist(r.Context(), req.Mood, req.Theme, req.Count); err != nil {
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Failed to queue playlist build")
		return
	}

	respondJSON(w, http.StatusAccepted, CreatePlaylistResponse{
		Queued: true,
		Mood:   req.Mood,
		Theme:  req.Theme,
		Count:  req.Count,
	})
}
