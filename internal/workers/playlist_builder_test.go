package workers

import (
	"context"
	"errors"
	"testing"

	"github.com/groovemind/djbooth/internal/models"
	"github.com/groovemind/djbooth/internal/prompts"
	"github.com/groovemind/djbooth/internal/queue"
	"github.com/groovemind/djbooth/internal/services/llm"
)

// mockProvider is a mock implementation of llm.Provider
type mockProvider struct {
	completeFunc func(ctx context.Context, req llm.CompletionRequest) (string, error)
	lastRequest  llm.CompletionRequest
}

func (m *mockProvider) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	m.lastRequest = req
	if m.completeFunc != nil {
		return m.completeFunc(ctx, req)
	}
	return "", errors.New("not implemented")
}

// mockLibrary is a mock implementation of MusicLibrary
type mockLibrary struct {
	enabled           bool
	recentAlbumsFunc  func(ctx context.Context, count int) ([]models.Song, error)
	searchFunc        func(ctx context.Context, query string, limit int) ([]models.Song, error)
	createdName       string
	addedPlaylistID   string
	addedSongIDs      []string
	createPlaylistErr error
}

func (m *mockLibrary) Enabled() bool { return m.enabled }

func (m *mockLibrary) GetRecentAlbums(ctx context.Context, count int) ([]models.Song, error) {
	if m.recentAlbumsFunc != nil {
		return m.recentAlbumsFunc(ctx, count)
	}
	return nil, nil
}

func (m *mockLibrary) SearchSongs(ctx context.Context, query string, limit int) ([]models.Song, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, query, limit)
	}
	return nil, nil
}

func (m *mockLibrary) CreatePlaylist(ctx context.Context, name string, songIDs []string) (string, error) {
	if m.createPlaylistErr != nil {
		return "", m.createPlaylistErr
	}
	m.createdName = name
	return "pl-1", nil
}

func (m *mockLibrary) AddToPlaylist(ctx context.Context, playlistID string, songIDs []string) error {
	m.addedPlaylistID = playlistID
	m.addedSongIDs = songIDs
	return nil
}

var _ MusicLibrary = (*mockLibrary)(nil)

func newTestPromptStore(t *testing.T) *prompts.Store {
	t.Helper()
	store, err := prompts.NewStore("", nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

func TestProcessPlaylistJob_BuildsPlaylist(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{
		completeFunc: func(ctx context.Context, req llm.CompletionRequest) (string, error) {
			return "Chill Study Session\n1. Nujabes - Aruarian Dance\n2. Bonobo - Kerala\nnot a song line\n", nil
		},
	}
	library := &mockLibrary{
		enabled: true,
		searchFunc: func(ctx context.Context, query string, limit int) ([]models.Song, error) {
			switch query {
			case "Nujabes Aruarian Dance":
				return []models.Song{{ID: "s-1", Title: "Aruarian Dance", Artist: "Nujabes"}}, nil
			case "Bonobo Kerala":
				return []models.Song{{ID: "s-2", Title: "Kerala", Artist: "Bonobo"}}, nil
			}
			return nil, nil
		},
	}

	builder := NewPlaylistBuilder(provider, newTestPromptStore(t), library, nil)
	job := queue.NewPlaylistJob("station", "chill", "study", 10)

	if err := builder.ProcessPlaylistJob(context.Background(), job); err != nil {
		t.Fatalf("ProcessPlaylistJob: %v", err)
	}

	if library.createdName != "Chill Study Session" {
		t.Errorf("playlist name = %q, want %q", library.createdName, "Chill Study Session")
	}
	if library.addedPlaylistID != "pl-1" {
		t.Errorf("added to playlist %q, want pl-1", library.addedPlaylistID)
	}
	if len(library.addedSongIDs) != 2 || library.addedSongIDs[0] != "s-1" || library.addedSongIDs[1] != "s-2" {
		t.Errorf("added song IDs = %v, want [s-1 s-2]", library.addedSongIDs)
	}
	if provider.lastRequest.MaxTokens != playlistMaxTokens {
		t.Errorf("MaxTokens = %d, want %d", provider.lastRequest.MaxTokens, playlistMaxTokens)
	}
	if provider.lastRequest.Operation != "playlist_generation" {
		t.Errorf("Operation = %q, want playlist_generation", provider.lastRequest.Operation)
	}
}

func TestProcessPlaylistJob_SkipsWhenLibraryDisabled(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{
		completeFunc: func(context.Context, llm.CompletionRequest) (string, error) {
			t.Error("provider should not be called when library is disabled")
			return "", nil
		},
	}
	builder := NewPlaylistBuilder(provider, newTestPromptStore(t), &mockLibrary{enabled: false}, nil)
	job := queue.NewPlaylistJob("station", "energetic", "party", 10)

	if err := builder.ProcessPlaylistJob(context.Background(), job); err != nil {
		t.Fatalf("ProcessPlaylistJob: %v", err)
	}
}

func TestProcessPlaylistJob_SkipsCreationWhenNothingMatches(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{
		completeFunc: func(context.Context, llm.CompletionRequest) (string, error) {
			return "Ghost Mix\nNobody - Nothing\n", nil
		},
	}
	library := &mockLibrary{
		enabled:           true,
		createPlaylistErr: errors.New("CreatePlaylist should not be called"),
	}
	builder := NewPlaylistBuilder(provider, newTestPromptStore(t), library, nil)
	job := queue.NewPlaylistJob("station", "sad", "dinner", 5)

	if err := builder.ProcessPlaylistJob(context.Background(), job); err != nil {
		t.Fatalf("ProcessPlaylistJob: %v", err)
	}
	if library.addedPlaylistID != "" {
		t.Errorf("unexpected AddToPlaylist call for playlist %q", library.addedPlaylistID)
	}
}

func TestProcessPlaylistJob_ProviderError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("model unavailable")
	provider := &mockProvider{
		completeFunc: func(context.Context, llm.CompletionRequest) (string, error) {
			return "", wantErr
		},
	}
	builder := NewPlaylistBuilder(provider, newTestPromptStore(t), &mockLibrary{enabled: true}, nil)
	job := queue.NewPlaylistJob("station", "happy", "road trip", 10)

	err := builder.ProcessPlaylistJob(context.Background(), job)
	if !errors.Is(err, wantErr) {
		t.Errorf("ProcessPlaylistJob error = %v, want wrapped %v", err, wantErr)
	}
}

func TestProcessPlaylistJob_InvalidJob(t *testing.T) {
	t.Parallel()

	builder := NewPlaylistBuilder(&mockProvider{}, newTestPromptStore(t), &mockLibrary{enabled: true}, nil)
	job := queue.NewJob(queue.JobTypePlaylistCreate, "station")

	if err := builder.ProcessPlaylistJob(context.Background(), job); err == nil {
		t.Error("expected error for job without playlist metadata")
	}
}

func TestParsePlaylistSuggestion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		reply     string
		wantName  string
		wantSongs int
	}{
		{
			name:      "plain lines",
			reply:     "Morning Energy\nDaft Punk - One More Time\nJustice - D.A.N.C.E.",
			wantName:  "Morning Energy",
			wantSongs: 2,
		},
		{
			name:      "numbered list with quotes",
			reply:     "\"Focus Flow\"\n1. Tycho - Awake\n2) Boards of Canada - Roygbiv",
			wantName:  "Focus Flow",
			wantSongs: 2,
		},
		{
			name:      "lines without separator ignored",
			reply:     "Mix\nHere are some songs:\nQueen - Bohemian Rhapsody",
			wantName:  "Mix",
			wantSongs: 1,
		},
		{
			name:      "empty reply",
			reply:     "",
			wantName:  "",
			wantSongs: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			name, songs := parsePlaylistSuggestion(tt.reply)
			if name != tt.wantName {
				t.Errorf("name = %q, want %q", name, tt.wantName)
			}
			if len(songs) != tt.wantSongs {
				t.Errorf("got %d songs, want %d", len(songs), tt.wantSongs)
			}
		})
	}
}
