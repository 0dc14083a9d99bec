package dj

import (
	"context"
	"fmt"
	"strings"

	"github.com/groovemind/djbooth/internal/models"
	"github.com/groovemind/djbooth/internal/prompts"
	"github.com/groovemind/djbooth/internal/services/llm"
	"go.uber.org/zap"
)

const (
	triviaMaxTokens   = 250
	songInfoMaxTokens = 300
	chatMaxTokens     = 250

	defaultPersonality = "GrooveMind, an upbeat AI radio DJ"
	defaultTone        = "upbeat"

	playSongSearchLimit = 5
	defaultPlaylistSize = 10
)

// Per-category fallbacks keep the show going when a collaborator is
// down. They read as the DJ covering for dead air, not as errors.
const (
	triviaFallback   = "My trivia machine just jammed on me! Stick around, I'll dig up another brain teaser for you soon."
	songInfoFallback = "I can't pull up the liner notes on that one right now, but take my word for it, it's a great track!"
	songInfoNoTrack  = "I don't have information about the current song. Is something playing?"
	playSongFallback = "My turntables are acting up! Give me a minute and ask for that one again."
	playlistFallback = "I can't spin up new playlists right at this moment, but keep those requests coming!"
	chatFallback     = "Whoa, my mic cut out for a second there. Run that by me one more time?"
)

// Catalog is the slice of the music library the generators need.
type Catalog interface {
	Enabled() bool
	SearchSongs(ctx context.Context, query string, limit int) ([]models.Song, error)
}

// PlaylistRequester accepts asynchronous playlist-build requests.
type PlaylistRequester interface {
	RequestPlaylist(ctx context.Context, mood, theme string, count int) error
}

// promptContext carries the situational values substituted into
// prompt templates. hasNowPlaying distinguishes a real track from the
// placeholder text, since song_info behaves differently without one.
type promptContext struct {
	request       string
	personality   string
	tone          string
	nowPlaying    string
	hasNowPlaying bool
}

func (pc promptContext) vars() map[string]string {
	return map[string]string{
		"request":     pc.request,
		"personality": pc.personality,
		"tone":        pc.tone,
		"now_playing": pc.nowPlaying,
	}
}

// Generators produces the reply text (and any proposed actions) for
// each request category. Generator failures never escape: each one
// degrades to a category-appropriate spoken fallback.
type Generators struct {
	provider  llm.Provider
	prompts   *prompts.Store
	catalog   Catalog
	playlists PlaylistRequester
	logger    *zap.Logger
}

// NewGenerators wires the generator set. catalog and playlists may be
// nil when those collaborators are not configured.
func NewGenerators(provider llm.Provider, promptStore *prompts.Store, cat Catalog, playlists PlaylistRequester, logger *zap.Logger) *Generators {
	return &Generators{
		provider:  provider,
		prompts:   promptStore,
		catalog:   cat,
		playlists: playlists,
		logger:    logger,
	}
}

// Generate dispatches on category.
func (g *Generators) Generate(ctx context.Context, category models.Category, pc promptContext) (string, []models.Action) {
	switch category {
	case models.CategoryTrivia:
		return g.completeOrFallback(ctx, "generate_trivia", prompts.TemplateTrivia, pc, triviaMaxTokens, triviaFallback), nil
	case models.CategorySongInfo:
		// Without a track to talk about there is nothing to ask the
		// model; clarify instead.
		if !pc.hasNowPlaying {
			return songInfoNoTrack, nil
		}
		return g.completeOrFallback(ctx, "generate_song_info", prompts.TemplateSongInfo, pc, songInfoMaxTokens, songInfoFallback), nil
	case models.CategoryPlaySong:
		return g.playSong(ctx, pc)
	case models.CategoryCreatePlaylist:
		return g.createPlaylist(ctx, pc), nil
	default:
		return g.completeOrFallback(ctx, "generate_chat", prompts.TemplateDJChat, pc, chatMaxTokens, chatFallback), nil
	}
}

// Intro produces a short on-air introduction for a song or playlist.
func (g *Generators) Intro(ctx context.Context, subject string, pc promptContext) string {
	const introMaxTokens = 200
	system, user := g.prompts.Render(prompts.TemplateDJIntro, map[string]string{
		"personality": pc.personality,
		"tone":        pc.tone,
		"subject":     subject,
	})
	text, err := g.provider.Complete(ctx, llm.CompletionRequest{
		Operation: "generate_intro",
		Messages: []llm.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens: introMaxTokens,
	})
	if err != nil {
		g.logGeneratorError("generate_intro", err)
		return fmt.Sprintf("Up next: %s. Let's keep it rolling!", subject)
	}
	return strings.TrimSpace(text)
}

func (g *Generators) completeOrFallback(ctx context.Context, operation, template string, pc promptContext, maxTokens int, fallback string) string {
	system, user := g.prompts.Render(template, pc.vars())
	text, err := g.provider.Complete(ctx, llm.CompletionRequest{
		Operation: operation,
		Messages: []llm.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens: maxTokens,
	})
	if err != nil {
		g.logGeneratorError(operation, err)
		return fallback
	}
	return strings.TrimSpace(text)
}

// playSong resolves the request against the catalog and proposes a
// play action for the top match. The engine never starts playback
// itself.
func (g *Generators) playSong(ctx context.Context, pc promptContext) (string, []models.Action) {
	if g.catalog == nil || !g.catalog.Enabled() {
		return "I'd love to, but I'm not hooked up to the music library right now!", nil
	}

	query := extractSongQuery(pc.request)
	if query == "" {
		return "Tell me what you'd like to hear and I'll cue it up!", nil
	}

	songs, err := g.catalog.SearchSongs(ctx, query, playSongSearchLimit)
	if err != nil {
		g.logGeneratorError("play_song_search", err)
		return playSongFallback, nil
	}
	if len(songs) == 0 {
		return fmt.Sprintf("Hmm, I couldn't find %q in our library. Got another one for me?", query), nil
	}

	top := songs[0]
	action := models.Action{
		Type:   models.ActionPlaySong,
		SongID: top.ID,
		Title:  top.Title,
		Artist: top.Artist,
	}
	return fmt.Sprintf("Coming right up! Here's %s by %s.", top.Title, top.Artist), []models.Action{action}
}

// createPlaylist extracts mood and theme from the request text alone
// and hands the build off to the queue. No model call happens on the
// request path.
func (g *Generators) createPlaylist(ctx context.Context, pc promptContext) string {
	mood, theme := ExtractMoodAndTheme(pc.request)

	if g.playlists == nil {
		return playlistFallback
	}
	if err := g.playlists.RequestPlaylist(ctx, mood, theme, defaultPlaylistSize); err != nil {
		g.logGeneratorError("create_playlist_enqueue", err)
		return playlistFallback
	}

	return fmt.Sprintf("You got it! I'm putting together a %s %s playlist for you right now. Give it a minute and it'll show up in your library.", mood, theme)
}

func (g *Generators) logGeneratorError(operation string, err error) {
	if g.logger != nil {
		g.logger.Warn("generator_degraded",
			zap.String("operation", operation),
			zap.Error(err),
		)
	}
}

var moodKeywords = []string{"happy", "sad", "energetic", "chill", "relaxed", "upbeat", "melancholic"}

var themeKeywords = []string{"workout", "study", "party", "road trip", "focus", "romantic", "dinner"}

// ExtractMoodAndTheme scans the request for known mood and theme
// keywords, defaulting to an energetic, general-purpose playlist.
func ExtractMoodAndTheme(text string) (mood, theme string) {
	lower := strings.ToLower(text)

	mood = "energetic"
	for _, kw := range moodKeywords {
		if strings.Contains(lower, kw) {
			mood = kw
			break
		}
	}

	theme = "general"
	for _, kw := range themeKeywords {
		if strings.Contains(lower, kw) {
			theme = kw
			break
		}
	}
	return mood, theme
}

// fillerWords are stripped from a play request before searching the
// catalog.
var fillerWords = []string{
	"play", "listen to", "listen", "hear", "a song", "some", "me",
	"please", "can you", "could you", "i want to", "i'd like to",
}

// extractSongQuery reduces "play me something by Queen" to the part
// worth searching for.
func extractSongQuery(text string) string {
	query := strings.ToLower(text)
	for _, filler := range fillerWords {
		query = strings.ReplaceAll(query, filler, " ")
	}
	return strings.Join(strings.Fields(query), " ")
}
