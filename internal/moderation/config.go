// Package moderation contains the content gate that decides whether a
// listener request is on-topic, the per-user penalty state machine,
// and the runtime-adjustable configuration both consult.
package moderation

import (
	"fmt"
	"sync"
	"time"

	"github.com/groovemind/djbooth/internal/models"
)

// DefaultConfig returns the escalation defaults applied when no
// overrides are configured.
func DefaultConfig() models.ModerationConfig {
	return models.ModerationConfig{
		WarningThreshold:   2,
		MuteDuration:       60 * time.Second,
		MuteThreshold:      3,
		SuspensionDuration: 3600 * time.Second,
	}
}

// ConfigHolder guards the moderation config for concurrent readers.
// Every decision reads one consistent snapshot; updates replace the
// whole value so a reader never observes a half-applied patch.
type ConfigHolder struct {
	mu  sync.RWMutex
	cfg models.ModerationConfig
}

// NewConfigHolder creates a holder seeded with cfg.
func NewConfigHolder(cfg models.ModerationConfig) (*ConfigHolder, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return &ConfigHolder{cfg: cfg}, nil
}

// Get returns a snapshot of the current config.
func (h *ConfigHolder) Get() models.ModerationConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cfg
}

// Update applies a partial patch and returns the resulting config.
// Non-positive values are rejected and leave the config untouched.
// Changing durations never rewrites penalties already in flight; the
// new values apply from the next escalation decision.
func (h *ConfigHolder) Update(patch models.ModerationConfigPatch) (models.ModerationConfig, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	next := h.cfg
	if patch.WarningThreshold != nil {
		next.WarningThreshold = *patch.WarningThreshold
	}
	if patch.MuteDurationSec != nil {
		next.MuteDuration = time.Duration(*patch.MuteDurationSec) * time.Second
	}
	if patch.MuteThreshold != nil {
		next.MuteThreshold = *patch.MuteThreshold
	}
	if patch.SuspensionDurSec != nil {
		next.SuspensionDuration = time.Duration(*patch.SuspensionDurSec) * time.Second
	}

	if err := validateConfig(next); err != nil {
		return h.cfg, err
	}

	h.cfg = next
	return next, nil
}

func validateConfig(cfg models.ModerationConfig) error {
	if cfg.WarningThreshold <= 0 {
		return fmt.Errorf("warning_threshold must be positive, got %d", cfg.WarningThreshold)
	}
	if cfg.MuteDuration <= 0 {
		return fmt.Errorf("mute_duration must be positive, got %s", cfg.MuteDuration)
	}
	if cfg.MuteThreshold <= 0 {
		return fmt.Errorf("mute_threshold must be positive, got %d", cfg.MuteThreshold)
	}
	if cfg.SuspensionDuration <= 0 {
		return fmt.Errorf("suspension_duration must be positive, got %s", cfg.SuspensionDuration)
	}
	return nil
}
