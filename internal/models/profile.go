package models

import (
	"time"

	"github.com/google/uuid"
)

// DJProfile is a saved on-air persona. Exactly one profile may be
// active at a time.
type DJProfile struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name" validate:"required,max=128"`
	Personality string    `json:"personality" validate:"required,max=4000"`
	VoiceID     string    `json:"voice_id,omitempty" validate:"omitempty,max=128"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
