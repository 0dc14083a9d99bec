package dj

import "testing"

func TestExtractMoodAndTheme(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		text      string
		wantMood  string
		wantTheme string
	}{
		{
			name:      "both present",
			text:      "make me a chill study playlist",
			wantMood:  "chill",
			wantTheme: "study",
		},
		{
			name:      "mood only",
			text:      "a sad mix please",
			wantMood:  "sad",
			wantTheme: "general",
		},
		{
			name:      "theme only",
			text:      "playlist for my road trip",
			wantMood:  "energetic",
			wantTheme: "road trip",
		},
		{
			name:      "neither present uses defaults",
			text:      "make me a playlist",
			wantMood:  "energetic",
			wantTheme: "general",
		},
		{
			name:      "case insensitive",
			text:      "RELAXED DINNER playlist",
			wantMood:  "relaxed",
			wantTheme: "dinner",
		},
		{
			name:      "first mood keyword wins",
			text:      "happy but also melancholic workout mix",
			wantMood:  "happy",
			wantTheme: "workout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mood, theme := ExtractMoodAndTheme(tt.text)
			if mood != tt.wantMood || theme != tt.wantTheme {
				t.Errorf("ExtractMoodAndTheme(%q) = %q/%q, want %q/%q",
					tt.text, mood, theme, tt.wantMood, tt.wantTheme)
			}
		})
	}
}

func TestExtractSongQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want string
	}{
		{"play bohemian rhapsody", "bohemian rhapsody"},
		{"Play me a song by Queen", "by queen"},
		{"I want to listen to miles davis", "miles davis"},
		{"can you play some jazz please", "jazz"},
		{"play", ""},
	}

	for _, tt := range tests {
		if got := extractSongQuery(tt.text); got != tt.want {
			t.Errorf("extractSongQuery(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}
