package queue

import (
	"context"
	"fmt"
)

// PlaylistEnqueuer submits playlist creation jobs to a JobQueue. Playlists
// are station-level, so the job is attributed to a fixed station user.
type PlaylistEnqueuer struct {
	queue JobQueue
}

// NewPlaylistEnqueuer creates a playlist enqueuer backed by the given queue.
func NewPlaylistEnqueuer(q JobQueue) *PlaylistEnqueuer {
	return &PlaylistEnqueuer{queue: q}
}

// RequestPlaylist enqueues a playlist_create job for the worker.
func (e *PlaylistEnqueuer) RequestPlaylist(ctx context.Context, mood, theme string, count int) error {
	job := NewPlaylistJob("station", mood, theme, count)
	if err := e.queue.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("failed to enqueue playlist job: %w", err)
	}
	return nil
}
