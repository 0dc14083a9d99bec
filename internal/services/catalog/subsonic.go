// Package catalog reads and writes the music library through the
// Subsonic REST API (Navidrome speaks the same protocol).
package catalog

import (
	"context"
	"crypto/md5" //nolint:gosec // the Subsonic protocol mandates md5 token auth
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/groovemind/djbooth/internal/models"
	"go.uber.org/zap"
)

const (
	apiVersion = "1.16.1"
	clientName = "djbooth"

	// DefaultTimeout bounds each catalog call.
	DefaultTimeout = 30 * time.Second
)

// Client talks to a Subsonic-compatible music server.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a catalog client. An empty base URL yields a
// disabled client; callers check Enabled before querying.
func NewClient(baseURL, username, password string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		username:   username,
		password:   password,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logger,
	}
}

// Enabled reports whether a music server is configured.
func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

// authParams returns the salted-token auth parameters the protocol
// requires on every call.
func (c *Client) authParams() (url.Values, error) {
	saltBytes := make([]byte, 8)
	if _, err := rand.Read(saltBytes); err != nil {
		return nil, fmt.Errorf("failed to generate auth salt: %w", err)
	}
	salt := hex.EncodeToString(saltBytes)
	token := md5.Sum([]byte(c.password + salt)) //nolint:gosec

	params := url.Values{}
	params.Set("u", c.username)
	params.Set("t", hex.EncodeToString(token[:]))
	params.Set("s", salt)
	params.Set("v", apiVersion)
	params.Set("c", clientName)
	params.Set("f", "json")
	return params, nil
}

type subsonicEnvelope struct {
	Response json.RawMessage `json:"subsonic-response"`
}

type subsonicStatus struct {
	Status string `json:"status"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type subsonicSong struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album"`
	Year   int    `json:"year"`
	Genre  string `json:"genre"`
}

func (s subsonicSong) toModel() models.Song {
	return models.Song{
		ID:     s.ID,
		Title:  s.Title,
		Artist: s.Artist,
		Album:  s.Album,
		Year:   s.Year,
		Genre:  s.Genre,
	}
}

// call performs one API request and decodes the subsonic-response
// body into out.
func (c *Client) call(ctx context.Context, endpoint string, params url.Values, out any) error {
	if !c.Enabled() {
		return fmt.Errorf("music catalog is not configured")
	}

	auth, err := c.authParams()
	if err != nil {
		return err
	}
	for key, values := range params {
		for _, v := range values {
			auth.Add(key, v)
		}
	}

	endpointURL := fmt.Sprintf("%s/rest/%s?%s", c.baseURL, endpoint, auth.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpointURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build catalog request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("catalog %s returned status %d: %s", endpoint, resp.StatusCode, snippet)
	}

	var envelope subsonicEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode catalog response: %w", err)
	}

	var status subsonicStatus
	if err := json.Unmarshal(envelope.Response, &status); err != nil {
		return fmt.Errorf("failed to decode catalog status: %w", err)
	}
	if status.Status != "ok" {
		if status.Error != nil {
			return fmt.Errorf("catalog %s failed: %s (code %d)", endpoint, status.Error.Message, status.Error.Code)
		}
		return fmt.Errorf("catalog %s failed with status %q", endpoint, status.Status)
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Response, out); err != nil {
			return fmt.Errorf("failed to decode catalog %s payload: %w", endpoint, err)
		}
	}
	return nil
}

// SearchSongs finds songs matching the query, up to limit results.
func (c *Client) SearchSongs(ctx context.Context, query string, limit int) ([]models.Song, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("songCount", strconv.Itoa(limit))
	params.Set("artistCount", "0")
	params.Set("albumCount", "0")

	var payload struct {
		SearchResult3 struct {
			Song []subsonicSong `json:"song"`
		} `json:"searchResult3"`
	}
	if err := c.call(ctx, "search3", params, &payload); err != nil {
		return nil, err
	}

	songs := make([]models.Song, 0, len(payload.SearchResult3.Song))
	for _, s := range payload.SearchResult3.Song {
		songs = append(songs, s.toModel())
	}
	return songs, nil
}

// GetSong fetches a single song by ID.
func (c *Client) GetSong(ctx context.Context, id string) (*models.Song, error) {
	params := url.Values{}
	params.Set("id", id)

	var payload struct {
		Song subsonicSong `json:"song"`
	}
	if err := c.call(ctx, "getSong", params, &payload); err != nil {
		return nil, err
	}
	song := payload.Song.toModel()
	return &song, nil
}

// GetPlaylists lists the server's playlists.
func (c *Client) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	var payload struct {
		Playlists struct {
			Playlist []struct {
				ID        string `json:"id"`
				Name      string `json:"name"`
				Comment   string `json:"comment"`
				SongCount int    `json:"songCount"`
			} `json:"playlist"`
		} `json:"playlists"`
	}
	if err := c.call(ctx, "getPlaylists", nil, &payload); err != nil {
		return nil, err
	}

	playlists := make([]models.Playlist, 0, len(payload.Playlists.Playlist))
	for _, p := range payload.Playlists.Playlist {
		playlists = append(playlists, models.Playlist{
			ID:        p.ID,
			Name:      p.Name,
			Comment:   p.Comment,
			SongCount: p.SongCount,
		})
	}
	return playlists, nil
}

// CreatePlaylist creates a playlist containing the given songs and
// returns its ID.
func (c *Client) CreatePlaylist(ctx context.Context, name string, songIDs []string) (string, error) {
	params := url.Values{}
	params.Set("name", name)
	for _, id := range songIDs {
		params.Add("songId", id)
	}

	var payload struct {
		Playlist struct {
			ID string `json:"id"`
		} `json:"playlist"`
	}
	if err := c.call(ctx, "createPlaylist", params, &payload); err != nil {
		return "", err
	}
	return payload.Playlist.ID, nil
}

// AddToPlaylist appends songs to an existing playlist.
func (c *Client) AddToPlaylist(ctx context.Context, playlistID string, songIDs []string) error {
	params := url.Values{}
	params.Set("playlistId", playlistID)
	for _, id := range songIDs {
		params.Add("songIdToAdd", id)
	}
	return c.call(ctx, "updatePlaylist", params, nil)
}

// GetRecentAlbums lists recently played albums, used as listening
// context for the playlist generator.
func (c *Client) GetRecentAlbums(ctx context.Context, count int) ([]models.Song, error) {
	params := url.Values{}
	params.Set("type", "recent")
	params.Set("size", strconv.Itoa(count))

	var payload struct {
		AlbumList2 struct {
			Album []struct {
				ID     string `json:"id"`
				Name   string `json:"name"`
				Artist string `json:"artist"`
				Year   int    `json:"year"`
				Genre  string `json:"genre"`
			} `json:"album"`
		} `json:"albumList2"`
	}
	if err := c.call(ctx, "getAlbumList2", params, &payload); err != nil {
		return nil, err
	}

	albums := make([]models.Song, 0, len(payload.AlbumList2.Album))
	for _, a := range payload.AlbumList2.Album {
		albums = append(albums, models.Song{
			ID:     a.ID,
			Title:  a.Name,
			Artist: a.Artist,
			Year:   a.Year,
			Genre:  a.Genre,
		})
	}
	return albums, nil
}
