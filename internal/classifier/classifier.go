// Package classifier assigns an intent category to raw listener text
// using keyword matching. It is deterministic and never calls out to a
// language model.
package classifier

import (
	"strings"

	"github.com/groovemind/djbooth/internal/models"
)

// categoryKeywords is checked in order; the first category with a
// matching keyword wins, so e.g. "play a trivia quiz" is trivia.
// Playlist keywords come before play keywords because "play" is a
// substring of "playlist".
var categoryKeywords = []struct {
	category models.Category
	keywords []string
}{
	{models.CategoryTrivia, []string{"trivia", "quiz", "question", "challenge"}},
	{models.CategorySongInfo, []string{"fact", "info", "about", "tell me about"}},
	{models.CategoryCreatePlaylist, []string{"playlist", "mix", "compilation", "collection"}},
	{models.CategoryPlaySong, []string{"play", "listen", "hear"}},
}

// Categorize maps listener text to an intent category. Unmatched text
// falls through to the generic category.
func Categorize(text string) models.Category {
	lower := strings.ToLower(text)
	for _, entry := range categoryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.category
			}
		}
	}
	return models.CategoryGeneric
}
