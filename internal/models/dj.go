package models

import (
	"time"

	"github.com/google/uuid"
)

// Category represents the classified intent of a listener request.
type Category string

const (
	CategoryTrivia         Category = "trivia"
	CategorySongInfo       Category = "song_info"
	CategoryPlaySong       Category = "play_song"
	CategoryCreatePlaylist Category = "create_playlist"
	CategoryGeneric        Category = "generic"
)

// NowPlaying describes the track playing when the listener spoke.
type NowPlaying struct {
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
	Year   string `json:"year,omitempty"`
	Genre  string `json:"genre,omitempty"`
}

// RequestContext carries optional situational hints for a DJ request.
type RequestContext struct {
	NowPlaying *NowPlaying `json:"now_playing,omitempty"`
	DJProfile  string      `json:"dj_profile,omitempty"`
}

// DJRequest is a single listener utterance handed to the orchestrator.
type DJRequest struct {
	UserID     string          `json:"user_id" validate:"required,max=128"`
	Text       string          `json:"request" validate:"required,max=2000"`
	Context    *RequestContext `json:"context,omitempty"`
	Tone       string          `json:"tone,omitempty" validate:"omitempty,max=64"`
	VoiceSpeed float64         `json:"voice_speed,omitempty" validate:"omitempty,gte=0.5,lte=2"`
}

// ActionType identifies a side effect the client may carry out.
type ActionType string

const (
	ActionPlaySong ActionType = "play_song"
)

// Action is a proposed client-side action; the engine never plays
// anything itself.
type Action struct {
	Type   ActionType `json:"type"`
	SongID string     `json:"song_id,omitempty"`
	Title  string     `json:"title,omitempty"`
	Artist string     `json:"artist,omitempty"`
}

// DJResponse is the orchestrator's reply. Success is false only for
// policy outcomes (moderation rejection, mute, suspension); degraded
// generation or failed synthesis still yields success true.
type DJResponse struct {
	Success        bool       `json:"success"`
	Response       string     `json:"response"`
	AudioPath      string     `json:"audio_path,omitempty"`
	Actions        []Action   `json:"actions,omitempty"`
	Warnings       int        `json:"warnings,omitempty"`
	MutedUntil     *time.Time `json:"muted_until,omitempty"`
	SuspendedUntil *time.Time `json:"suspended_until,omitempty"`
}

// Interaction is one entry in the rolling interaction log.
type Interaction struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	Request   string    `json:"request"`
	Category  Category  `json:"category"`
	Response  string    `json:"response"`
	Allowed   bool      `json:"allowed"`
	Timestamp time.Time `json:"timestamp"`
}
