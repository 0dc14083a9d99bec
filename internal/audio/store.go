// Package audio persists synthesized speech to disk so the HTTP
// server can serve it statically.
package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// URLPrefix is the path under which stored files are served.
const URLPrefix = "/static/audio/"

// Store writes MP3 payloads into a directory and hands back the URL
// path a client can fetch them from.
type Store struct {
	dir string
}

// NewStore creates the directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create audio directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the backing directory, for static file serving.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes one audio payload and returns its URL path. File names
// carry a timestamp plus a UUID so concurrent saves never collide.
func (s *Store) Save(data []byte) (string, error) {
	name := fmt.Sprintf("dj_%d_%s.mp3", time.Now().Unix(), uuid.NewString())
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o640); err != nil {
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}
	return URLPrefix + name, nil
}

// Prune removes stored files older than maxAge and returns how many
// were deleted.
func (s *Store) Prune(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read audio directory: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.dir, entry.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}
