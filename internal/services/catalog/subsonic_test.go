package catalog

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func respond(t *testing.T, w http.ResponseWriter, body map[string]any) {
	t.Helper()
	body["status"] = "ok"
	if err := json.NewEncoder(w).Encode(map[string]any{"subsonic-response": body}); err != nil {
		t.Errorf("failed to encode response: %v", err)
	}
}

func TestAuthParams(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("u") != "dj" {
			t.Errorf("u = %q", q.Get("u"))
		}
		if q.Get("v") != apiVersion || q.Get("c") != clientName || q.Get("f") != "json" {
			t.Errorf("protocol params = v:%q c:%q f:%q", q.Get("v"), q.Get("c"), q.Get("f"))
		}
		// Token must be md5(password + salt).
		sum := md5.Sum([]byte("secret" + q.Get("s")))
		if q.Get("t") != hex.EncodeToString(sum[:]) {
			t.Error("auth token does not match md5(password+salt)")
		}
		respond(t, w, map[string]any{})
	}))
	defer server.Close()

	client := NewClient(server.URL, "dj", "secret", nil)
	if _, err := client.GetPlaylists(context.Background()); err != nil {
		t.Fatalf("GetPlaylists failed: %v", err)
	}
}

func TestSearchSongs(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/search3" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("query") != "bohemian rhapsody" || q.Get("songCount") != "5" {
			t.Errorf("query params = %v", q)
		}
		respond(t, w, map[string]any{
			"searchResult3": map[string]any{
				"song": []map[string]any{
					{"id": "s1", "title": "Bohemian Rhapsody", "artist": "Queen", "album": "A Night at the Opera", "year": 1975},
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "dj", "pw", nil)
	songs, err := client.SearchSongs(context.Background(), "bohemian rhapsody", 5)
	if err != nil {
		t.Fatalf("SearchSongs failed: %v", err)
	}
	if len(songs) != 1 || songs[0].ID != "s1" || songs[0].Artist != "Queen" {
		t.Errorf("songs = %+v", songs)
	}
}

func TestCreatePlaylist(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/createPlaylist" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("name") != "Workout Mix" {
			t.Errorf("name = %q", q.Get("name"))
		}
		if ids := q["songId"]; len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
			t.Errorf("songId = %v", ids)
		}
		respond(t, w, map[string]any{
			"playlist": map[string]any{"id": "pl-9"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "dj", "pw", nil)
	id, err := client.CreatePlaylist(context.Background(), "Workout Mix", []string{"a", "b"})
	if err != nil {
		t.Fatalf("CreatePlaylist failed: %v", err)
	}
	if id != "pl-9" {
		t.Errorf("playlist id = %q, want pl-9", id)
	}
}

func TestCallReportsServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"subsonic-response": map[string]any{
				"status": "failed",
				"error":  map[string]any{"code": 40, "message": "Wrong username or password"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "dj", "wrong", nil)
	if _, err := client.SearchSongs(context.Background(), "x", 1); err == nil {
		t.Error("expected error for failed subsonic status")
	}
}

func TestDisabledCatalog(t *testing.T) {
	t.Parallel()

	client := NewClient("", "", "", nil)
	if client.Enabled() {
		t.Error("client without base URL reports enabled")
	}
	if _, err := client.SearchSongs(context.Background(), "x", 1); err == nil {
		t.Error("expected error from disabled client")
	}
}
