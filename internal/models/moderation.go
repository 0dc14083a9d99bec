package models

import "time"

// Verdict is the moderation gate's answer for one utterance.
type Verdict struct {
	Allowed     bool   `json:"allowed"`
	Explanation string `json:"explanation,omitempty"`
}

// PenaltyStatus represents a user's current standing with the DJ.
type PenaltyStatus string

const (
	PenaltyActive    PenaltyStatus = "active"
	PenaltyMuted     PenaltyStatus = "muted"
	PenaltySuspended PenaltyStatus = "suspended"
)

// UserState tracks one user's accumulated moderation history.
type UserState struct {
	UserID         string        `json:"user_id"`
	Status         PenaltyStatus `json:"status"`
	Warnings       int           `json:"warnings"`
	Mutes          int           `json:"mutes"`
	MutedUntil     *time.Time    `json:"muted_until,omitempty"`
	SuspendedUntil *time.Time    `json:"suspended_until,omitempty"`
	LastRequestAt  *time.Time    `json:"last_request_at,omitempty"`
}

// ModerationConfig holds the escalation thresholds and penalty
// durations. All fields must be positive.
type ModerationConfig struct {
	WarningThreshold   int           `json:"warning_threshold"`
	MuteDuration       time.Duration `json:"mute_duration"`
	MuteThreshold      int           `json:"mute_threshold"`
	SuspensionDuration time.Duration `json:"suspension_duration"`
}

// ModerationConfigPatch is a partial update; only set fields are
// applied. Durations are expressed in seconds on the wire.
type ModerationConfigPatch struct {
	WarningThreshold *int `json:"warning_threshold,omitempty"`
	MuteDurationSec  *int `json:"mute_duration_seconds,omitempty"`
	MuteThreshold    *int `json:"mute_threshold,omitempty"`
	SuspensionDurSec *int `json:"suspension_duration_seconds,omitempty"`
}
