package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/groovemind/djbooth/internal/dj"
	"github.com/groovemind/djbooth/internal/models"
	"github.com/groovemind/djbooth/internal/services/speech"
	"github.com/groovemind/djbooth/internal/validation"
)

// DJService is the request pipeline surface the HTTP layer depends on.
// *dj.Orchestrator implements it.
type DJService interface {
	HandleRequest(ctx context.Context, req models.DJRequest) (*models.DJResponse, error)
	Speak(ctx context.Context, text, voiceID string, speed float64) (string, error)
	Intro(ctx context.Context, subject, tone string, speed float64) (string, string)
	SongInfo(ctx context.Context, song models.Song, tone string, speed float64) (string, string)
	Log() *dj.InteractionLog
}

var _ DJService = (*dj.Orchestrator)(nil)

// VoiceLister lists available synthesis voices.
type VoiceLister interface {
	Enabled() bool
	Voices(ctx context.Context) ([]speech.Voice, error)
}

// SongSource looks up individual songs in the music library.
type SongSource interface {
	Enabled() bool
	GetSong(ctx context.Context, id string) (*models.Song, error)
}

// DJHandler handles listener-facing DJ requests
type DJHandler struct {
	service DJService
	voices  VoiceLister
	songs   SongSource
}

// NewDJHandler creates a new DJ handler. voices and songs may be nil
// when those collaborators are not configured.
func NewDJHandler(service DJService, voices VoiceLister, songs SongSource) *DJHandler {
	return &DJHandler{service: service, voices: voices, songs: songs}
}

// RegisterRoutes registers DJ routes on the given router.
func (h *DJHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/dj/request", h.HandleRequest).Methods("POST")
	r.HandleFunc("/dj/interactions", h.ListInteractions).Methods("GET")
	r.HandleFunc("/dj/intro", h.Intro).Methods("POST")
	r.HandleFunc("/speak", h.Speak).Methods("POST")
	r.HandleFunc("/voices", h.ListVoices).Methods("GET")
	r.HandleFunc("/songs/{id}/info", h.SongInfo).Methods("GET")
}

// DefaultInteractionLimit is how many log entries are returned when no
// limit is given.
const DefaultInteractionLimit = 20

// HandleRequest processes one listener utterance
func (h *DJHandler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	var req models.DJRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	// Validate before any moderation state is touched
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

	req.Text = validation.SanitizeText(req.Text)
	if req.Text == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Request text is required and cannot be empty after sanitization")
		return
	}

	resp, err := h.service.HandleRequest(r.Context(), req)
	if err != nil {
		// The one pipeline error: the moderation gate could not be
		// consulted, so no answer may be given.
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "The DJ can't take requests right now, try again in a moment")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// ListInteractionsResponse wraps the recent interaction log entries
type ListInteractionsResponse struct {
	Interactions []models.Interaction `json:"interactions"`
	Count        int                  `json:"count"`
}

// ListInteractions returns recent interaction log entries
func (h *DJHandler) ListInteractions(w http.ResponseWriter, r *http.Request) {
	limit := DefaultInteractionLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	entries := h.service.Log().Recent(limit)
	respondJSON(w, http.StatusOK, ListInteractionsResponse{
		Interactions: entries,
		Count:        len(entries),
	})
}

// IntroRequest asks for an on-air introduction
type IntroRequest struct {
	Subject    string  `json:"subject" validate:"required,max=300"`
	Tone       string  `json:"tone,omitempty" validate:"omitempty,max=64"`
	VoiceSpeed float64 `json:"voice_speed,omitempty" validate:"omitempty,gte=0.5,lte=2"`
}

// IntroResponse carries the introduction text and optional audio
type IntroResponse struct {
	Response  string `json:"response"`
	AudioPath string `json:"audio_path,omitempty"`
}

// Intro generates a spoken introduction for a song or playlist
func (h *DJHandler) Intro(w http.ResponseWriter, r *http.Request) {
	var req IntroRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed: subject is required")
		return
	}

	req.Subject = validation.SanitizeText(req.Subject)
	if req.Subject == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Subject is required")
		return
	}

	text, audioPath := h.service.Intro(r.Context(), req.Subject, req.Tone, req.VoiceSpeed)
	respondJSON(w, http.StatusOK, IntroResponse{Response: text, AudioPath: audioPath})
}

// SpeakRequest is a direct text-to-speech request
type SpeakRequest struct {
	Text    string  `json:"text" validate:"required,max=2000"`
	VoiceID string  `json:"voice_id,omitempty" validate:"omitempty,max=128"`
	Speed   float64 `json:"speed,omitempty" validate:"omitempty,gte=0.5,lte=2"`
}

// SpeakResponse carries the stored audio path
type SpeakResponse struct {
	AudioPath string `json:"audio_path"`
}

// Speak synthesizes arbitrary text. Unlike the request pipeline,
// synthesis failures here are reported to the caller.
func (h *DJHandler) Speak(w http.ResponseWriter, r *http.Request) {
	var req SpeakRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed: text is required and must be at most 2000 characters")
		return
	}

	req.Text = validation.SanitizeText(req.Text)
	if req.Text == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Text is required")
		return
	}

	audioPath, err := h.service.Speak(r.Context(), req.Text, req.VoiceID, req.Speed)
	if err != nil {
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Speech synthesis failed")
		return
	}

	respondJSON(w, http.StatusOK, SpeakResponse{AudioPath: audioPath})
}

// ListVoicesResponse wraps the available synthesis voices
type ListVoicesResponse struct {
	Voices []speech.Voice `json:"voices"`
}

// ListVoices returns the synthesis voices available to the account
func (h *DJHandler) ListVoices(w http.ResponseWriter, r *http.Request) {
	if h.voices == nil || !h.voices.Enabled() {
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Speech synthesis is not configured")
		return
	}

	voices, err := h.voices.Voices(r.Context())
	if err != nil {
		respondJSONError(w, http.StatusBadGateway, "Bad Gateway", "Failed to list voices")
		return
	}

	respondJSON(w, http.StatusOK, ListVoicesResponse{Voices: voices})
}

// SongInfoResponse pairs catalog data with DJ commentary
type SongInfoResponse struct {
	Song       *models.Song `json:"song"`
	Commentary string       `json:"commentary"`
	AudioPath  string       `json:"audio_path,omitempty"`
}

// SongInfo looks up a catalog song and has the DJ talk about it
func (h *DJHandler) SongInfo(w http.ResponseWriter, r *http.Request) {
	if h.songs == nil || !h.songs.Enabled() {
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Music library is not configured")
		return
	}

	id := mux.Vars(r)["id"]
	song, err := h.songs.GetSong(r.Context(), id)
	if err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Song not found")
		return
	}
	if song == nil || song.ID == "" {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Song not found")
		return
	}

	tone := r.URL.Query().Get("tone")
	commentary, audioPath := h.service.SongInfo(r.Context(), *song, tone, 0)

	respondJSON(w, http.StatusOK, SongInfoResponse{
		Song:       song,
		Commentary: commentary,
		AudioPath:  audioPath,
	})
}
