package workers

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/groovemind/djbooth/internal/models"
	"github.com/groovemind/djbooth/internal/prompts"
	"github.com/groovemind/djbooth/internal/queue"
	"github.com/groovemind/djbooth/internal/services/llm"
)

const (
	playlistMaxTokens   = 1500
	playlistSearchLimit = 3
	recentAlbumCount    = 20
)

// MusicLibrary is the subset of the music server client the builder needs.
type MusicLibrary interface {
	Enabled() bool
	GetRecentAlbums(ctx context.Context, count int) ([]models.Song, error)
	SearchSongs(ctx context.Context, query string, limit int) ([]models.Song, error)
	CreatePlaylist(ctx context.Context, name string, songIDs []string) (string, error)
	AddToPlaylist(ctx context.Context, playlistID string, songIDs []string) error
}

// PlaylistBuilder processes playlist creation jobs
type PlaylistBuilder struct {
	provider llm.Provider
	prompts  *prompts.Store
	library  MusicLibrary
	jobQueue queue.JobQueue // For re-enqueueing jobs with delays
}

// NewPlaylistBuilder creates a new playlist builder
func NewPlaylistBuilder(
	provider llm.Provider,
	promptStore *prompts.Store,
	library MusicLibrary,
	jobQueue queue.JobQueue,
) *PlaylistBuilder {
	return &PlaylistBuilder{
		provider: provider,
		prompts:  promptStore,
		library:  library,
		jobQueue: jobQueue,
	}
}

// ProcessPlaylistJob generates song suggestions and builds the playlist on
// the music server.
func (b *PlaylistBuilder) ProcessPlaylistJob(ctx context.Context, job *queue.Job) error {
	mood, theme, count, err := job.PlaylistParams()
	if err != nil {
		return fmt.Errorf("invalid playlist job: %w", err)
	}

	if !b.library.Enabled() {
		log.Printf("Skipping playlist job %s: music server not configured", job.ID)
		return nil
	}

	// Recently added music gives the model a sense of what the library holds
	recent, err := b.library.GetRecentAlbums(ctx, recentAlbumCount)
	if err != nil {
		log.Printf("Failed to load recent albums for job %s: %v (continuing without)", job.ID, err)
		recent = nil
	}

	system, user := b.prompts.Render(prompts.TemplatePlaylistGenerator, map[string]string{
		"mood":         mood,
		"theme":        theme,
		"count":        fmt.Sprintf("%d", count),
		"recent_songs": formatRecentSongs(recent),
	})

	reply, err := b.provider.Complete(ctx, llm.CompletionRequest{
		Operation: "playlist_generation",
		Messages: []llm.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens: playlistMaxTokens,
	})
	if err != nil {
		return fmt.Errorf("failed to generate playlist suggestions: %w", err)
	}

	name, suggestions := parsePlaylistSuggestion(reply)
	if name == "" {
		name = fmt.Sprintf("%s %s mix", mood, theme)
	}
	if len(suggestions) == 0 {
		return fmt.Errorf("playlist response contained no song suggestions")
	}

	// Resolve each suggestion against the library
	var songIDs []string
	for _, s := range suggestions {
		songs, err := b.library.SearchSongs(ctx, s.artist+" "+s.title, playlistSearchLimit)
		if err != nil {
			log.Printf("Search failed for %q by %q: %v", s.title, s.artist, err)
			continue
		}
		if len(songs) == 0 {
			continue
		}
		songIDs = append(songIDs, songs[0].ID)
	}

	if len(songIDs) == 0 {
		log.Printf("Playlist job %s: no suggestions matched the library, skipping creation", job.ID)
		return nil
	}

	playlistID, err := b.library.CreatePlaylist(ctx, name, nil)
	if err != nil {
		return fmt.Errorf("failed to create playlist: %w", err)
	}

	if err := b.library.AddToPlaylist(ctx, playlistID, songIDs); err != nil {
		return fmt.Errorf("failed to add songs to playlist %s: %w", playlistID, err)
	}

	log.Printf("Built playlist %q (%s) with %d/%d suggested songs (mood=%s theme=%s)",
		name, playlistID, len(songIDs), len(suggestions), mood, theme)
	return nil
}

// ProcessJob processes a job based on its type
func (b *PlaylistBuilder) ProcessJob(ctx context.Context, msg *queue.Message) error {
	job := msg.Job

	// Check if job should be processed now (respect NotBefore)
	if !job.ShouldProcess() {
		log.Printf("Job %s not ready yet (NotBefore: %v), skipping", job.ID, job.NotBefore)
		if ackErr := msg.Ack(); ackErr != nil {
			log.Printf("Failed to ack job for later processing: %v", ackErr)
		}
		return nil
	}

	switch job.Type {
	case queue.JobTypePlaylistCreate:
		if err := b.ProcessPlaylistJob(ctx, job); err != nil {
			return b.handleJobError(ctx, msg, job, err)
		}
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack job: %w", ackErr)
		}
		return nil

	default:
		if nackErr := msg.Nack(false); nackErr != nil { // Unknown job type, send to DLQ
			log.Printf("Failed to nack unknown job type: %v", nackErr)
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// handleJobError handles errors from job processing with intelligent retry logic
func (b *PlaylistBuilder) handleJobError(ctx context.Context, msg *queue.Message, job *queue.Job, err error) error {
	// Quota errors get a long delay before retry
	if llm.IsQuotaError(err) {
		log.Printf("Quota exceeded for playlist job %s: %v", job.ID, err)

		retryDelay := llm.GetRetryDelay(err, job.RetryCount)
		notBefore := time.Now().Add(retryDelay)

		if ackErr := msg.Ack(); ackErr != nil {
			log.Printf("Failed to ack job before re-enqueue: %v", ackErr)
		}

		if b.jobQueue != nil {
			if enqueueErr := b.jobQueue.Enqueue(ctx, delayedCopy(job, notBefore)); enqueueErr != nil {
				log.Printf("Failed to re-enqueue job %s with delay: %v", job.ID, enqueueErr)
				return fmt.Errorf("quota exhausted, failed to re-enqueue: %w", enqueueErr)
			}
			log.Printf("Re-enqueued playlist job %s for retry at %v (quota exhausted)", job.ID, notBefore)
			return nil
		}

		log.Printf("Warning: no queue access, cannot re-enqueue job with delay")
		return fmt.Errorf("quota exhausted (job %s): %w", job.ID, err)
	}

	// Rate limits retry with backoff
	if llm.IsRateLimitError(err) {
		log.Printf("Rate limited for playlist job %s: %v", job.ID, err)

		if job.CanRetry() && b.jobQueue != nil {
			retryDelay := llm.GetRetryDelay(err, job.RetryCount)
			notBefore := time.Now().Add(retryDelay)

			if ackErr := msg.Ack(); ackErr != nil {
				log.Printf("Failed to ack rate limited job: %v", ackErr)
			}

			if enqueueErr := b.jobQueue.Enqueue(ctx, delayedCopy(job, notBefore)); enqueueErr != nil {
				log.Printf("Failed to re-enqueue rate limited job %s: %v", job.ID, enqueueErr)
				return fmt.Errorf("rate limited, failed to re-enqueue: %w", enqueueErr)
			}

			log.Printf("Rate limited: re-enqueued playlist job %s for retry at %v (delay: %v)",
				job.ID, notBefore, retryDelay)
			return nil
		}

		if job.CanRetry() {
			job.IncrementRetry()
			log.Printf("Rate limit: will retry job %s immediately (attempt %d/%d)",
				job.ID, job.RetryCount, job.MaxRetries)
			if nackErr := msg.Nack(true); nackErr != nil {
				log.Printf("Failed to nack rate limited job: %v", nackErr)
			}
			return fmt.Errorf("rate limited (will retry): %w", err)
		}
	}

	// Standard retry logic for other errors
	if job.CanRetry() {
		job.IncrementRetry()
		log.Printf("Playlist job %s failed (attempt %d/%d): %v, will retry", job.ID, job.RetryCount, job.MaxRetries, err)
		if nackErr := msg.Nack(true); nackErr != nil {
			log.Printf("Failed to nack job: %v", nackErr)
		}
		return fmt.Errorf("job failed (will retry): %w", err)
	}

	// Max retries exceeded, send to DLQ
	log.Printf("Playlist job %s failed after %d retries: %v, sending to DLQ", job.ID, job.MaxRetries, err)
	if nackErr := msg.Nack(false); nackErr != nil {
		log.Printf("Failed to nack job to DLQ: %v", nackErr)
	}
	return fmt.Errorf("job failed (max retries): %w", err)
}

// delayedCopy clones a job with a retry scheduled at notBefore.
func delayedCopy(job *queue.Job, notBefore time.Time) *queue.Job {
	return &queue.Job{
		ID:         job.ID,
		Type:       job.Type,
		UserID:     job.UserID,
		NotBefore:  &notBefore,
		NotAfter:   job.NotAfter,
		Metadata:   job.Metadata,
		CreatedAt:  job.CreatedAt,
		RetryCount: job.RetryCount + 1,
		MaxRetries: job.MaxRetries,
	}
}

type songSuggestion struct {
	artist string
	title  string
}

// parsePlaylistSuggestion expects the playlist name on the first non-empty
// line followed by one "Artist - Title" pair per line. List markers and
// surrounding quotes are tolerated.
func parsePlaylistSuggestion(reply string) (string, []songSuggestion) {
	var name string
	var suggestions []songSuggestion

	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "0123456789.-*) ")
		line = strings.Trim(line, "\"")
		if line == "" {
			continue
		}

		if name == "" {
			name = line
			continue
		}

		artist, title, ok := strings.Cut(line, " - ")
		if !ok {
			continue
		}
		artist = strings.TrimSpace(artist)
		title = strings.TrimSpace(title)
		if artist == "" || title == "" {
			continue
		}
		suggestions = append(suggestions, songSuggestion{artist: artist, title: title})
	}

	return name, suggestions
}

// formatRecentSongs renders recently added songs for the prompt.
func formatRecentSongs(songs []models.Song) string {
	if len(songs) == 0 {
		return "(no recent additions known)"
	}
	lines := make([]string, 0, len(songs))
	for _, s := range songs {
		lines = append(lines, fmt.Sprintf("%s - %s", s.Artist, s.Title))
	}
	return strings.Join(lines, "\n")
}
