package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/groovemind/djbooth/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	// These should never fail in normal operation, but log if they do
	if err := Validate.RegisterValidation("category", validateCategory); err != nil {
		panic(fmt.Sprintf("failed to register category validator: %v", err))
	}
	if err := Validate.RegisterValidation("penalty_status", validatePenaltyStatus); err != nil {
		panic(fmt.Sprintf("failed to register penalty_status validator: %v", err))
	}
}

// validateCategory validates that a string is a valid request Category enum value
func validateCategory(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	switch models.Category(value) {
	case models.CategoryTrivia, models.CategorySongInfo, models.CategoryPlaySong,
		models.CategoryCreatePlaylist, models.CategoryGeneric:
		return true
	default:
		return false
	}
}

// validatePenaltyStatus validates that a string is a valid PenaltyStatus enum value
func validatePenaltyStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	switch models.PenaltyStatus(value) {
	case models.PenaltyActive, models.PenaltyMuted, models.PenaltySuspended:
		return true
	default:
		return false
	}
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	// Trim whitespace
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateCategory validates a Category string value
func ValidateCategory(value string) error {
	switch models.Category(value) {
	case models.CategoryTrivia, models.CategorySongInfo, models.CategoryPlaySong,
		models.CategoryCreatePlaylist, models.CategoryGeneric:
		return nil
	default:
		return fmt.Errorf("invalid category: %s (must be 'trivia', 'song_info', 'play_song', 'create_playlist', or 'generic')", value)
	}
}

// ValidatePenaltyStatus validates a PenaltyStatus string value
func ValidatePenaltyStatus(value string) error {
	switch models.PenaltyStatus(value) {
	case models.PenaltyActive, models.PenaltyMuted, models.PenaltySuspended:
		return nil
	default:
		return fmt.Errorf("invalid status: %s (must be 'active', 'muted', or 'suspended')", value)
	}
}
