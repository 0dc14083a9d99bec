package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/groovemind/djbooth/internal/models"
)

// fakePlaylistSource is a mock implementation of PlaylistSource
type fakePlaylistSource struct {
	enabled   bool
	playlists []models.Playlist
	err       error
}

func (f *fakePlaylistSource) Enabled() bool { return f.enabled }

func (f *fakePlaylistSource) GetPlaylists(context.Context) ([]models.Playlist, error) {
	return f.playlists, f.err
}

// fakePlaylistRequester is a mock implementation of PlaylistRequester
type fakePlaylistRequester struct {
	mood  string
	theme string
	count int
	err   error
	calls int
}

func (f *fakePlaylistRequester) RequestPlaylist(_ context.Context, mood, theme string, count int) error {
	f.calls++
	f.mood, f.theme, f.count = mood, theme, count
	return f.err
}

func newPlaylistRouter(source PlaylistSource, requester PlaylistRequester) *mux.Router {
	r := mux.NewRouter()
	NewPlaylistHandler(source, requester).RegisterRoutes(r)
	return r
}

func TestListPlaylists(t *testing.T) {
	t.Parallel()

	source := &fakePlaylistSource{
		enabled: true,
		playlists: []models.Playlist{
			{ID: "p1", Name: "Morning Energy", SongCount: 12},
			{ID: "p2", Name: "Chill Study Session", SongCount: 10},
		},
	}

	w := httptest.NewRecorder()
	newPlaylistRouter(source, nil).ServeHTTP(w, httptest.NewRequest("GET", "/playlists", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body struct {
		Data ListPlaylistsResponse `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data.Playlists) != 2 || body.Data.Playlists[0].Name != "Morning Energy" {
		t.Errorf("unexpected playlists: %+v", body.Data.Playlists)
	}
}

func TestListPlaylists_NotConfigured(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	newPlaylistRouter(&fakePlaylistSource{enabled: false}, nil).ServeHTTP(w, httptest.NewRequest("GET", "/playlists", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestCreatePlaylist_QueuesJob(t *testing.T) {
	t.Parallel()

	requester := &fakePlaylistRequester{}

	w := httptest.NewRecorder()
	newPlaylistRouter(nil, requester).ServeHTTP(w, newTestRequest("POST", "/playlists", map[string]any{
		"mood":  "chill",
		"theme": "study",
		"count": 15,
	}))

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", w.Code, w.Body.String())
	}
	if requester.mood != "chill" || requester.theme != "study" || requester.count != 15 {
		t.Errorf("queued (%s, %s, %d), want (chill, study, 15)", requester.mood, requester.theme, requester.count)
	}
}

func TestCreatePlaylist_Defaults(t *testing.T) {
	t.Parallel()

	requester := &fakePlaylistRequester{}

	w := httptest.NewRecorder()
	newPlaylistRouter(nil, requester).ServeHTTP(w, newTestRequest("POST", "/playlists", map[string]any{}))

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", w.Code, w.Body.String())
	}
	if requester.mood != "energetic" || requester.theme != "general" || requester.count != DefaultPlaylistCount {
		t.Errorf("queued (%s, %s, %d), want defaults", requester.mood, requester.theme, requester.count)
	}
}

func TestCreatePlaylist_CountOutOfRange(t *testing.T) {
	t.Parallel()

	requester := &fakePlaylistRequester{}

	w := httptest.NewRecorder()
	newPlaylistRouter(nil, requester).ServeHTTP(w, newTestRequest("POST", "/playlists", map[string]any{
		"count": 500,
	}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if requester.calls != 0 {
		t.Error("invalid request must not be queued")
	}
}

func TestCreatePlaylist_QueueFailure(t *testing.T) {
	t.Parallel()

	requester := &fakePlaylistRequester{err: errors.New("broker unavailable")}

	w := httptest.NewRecorder()
	newPlaylistRouter(nil, requester).ServeHTTP(w, newTestRequest("POST", "/playlists", map[string]any{
		"mood": "happy",
	}))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}
