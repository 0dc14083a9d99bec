package queue

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypePlaylistCreate is a job for building one playlist from a
	// mood/theme request
	JobTypePlaylistCreate JobType = "playlist_create"
)

// Job represents a job in the queue
type Job struct {
	ID         uuid.UUID      `json:"id"`
	Type       JobType        `json:"type"`
	UserID     string         `json:"user_id"`
	NotBefore  *time.Time     `json:"not_before,omitempty"` // Earliest time to process job (nil = immediate)
	NotAfter   *time.Time     `json:"not_after,omitempty"`  // Latest time to process job (nil = no expiration)
	Metadata   map[string]any `json:"metadata,omitempty"`   // Job-specific data
	CreatedAt  time.Time      `json:"created_at"`
	RetryCount int            `json:"retry_count"`
	MaxRetries int            `json:"max_retries"`
}

// NewJob creates a new job
func NewJob(jobType JobType, userID string) *Job {
	return &Job{
		ID:         uuid.New(),
		Type:       jobType,
		UserID:     userID,
		Metadata:   make(map[string]any),
		CreatedAt:  time.Now(),
		RetryCount: 0,
		MaxRetries: 3,
	}
}

// NewPlaylistJob creates a playlist-build job carrying the extracted
// mood, theme and requested size.
func NewPlaylistJob(userID, mood, theme string, count int) *Job {
	job := NewJob(JobTypePlaylistCreate, userID)
	job.Metadata["mood"] = mood
	job.Metadata["theme"] = theme
	job.Metadata["count"] = count
	return job
}

// PlaylistParams extracts the playlist metadata from a job. JSON
// round-trips numbers as float64, so count needs both forms.
func (j *Job) PlaylistParams() (mood, theme string, count int, err error) {
	mood, _ = j.Metadata["mood"].(string)
	theme, _ = j.Metadata["theme"].(string)
	switch v := j.Metadata["count"].(type) {
	case int:
		count = v
	case float64:
		count = int(v)
	}
	if mood == "" || theme == "" || count <= 0 {
		return "", "", 0, fmt.Errorf("job %s has invalid playlist metadata: %v", j.ID, j.Metadata)
	}
	return mood, theme, count, nil
}

// ShouldProcess checks if the job should be processed now
func (j *Job) ShouldProcess() bool {
	now := time.Now()

	if j.NotBefore != nil && now.Before(*j.NotBefore) {
		return false
	}

	if j.NotAfter != nil && now.After(*j.NotAfter) {
		return false
	}

	return true
}

// IsExpired checks if the job has expired
func (j *Job) IsExpired() bool {
	if j.NotAfter == nil {
		return false
	}

	return time.Now().After(*j.NotAfter)
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count
func (j *Job) IncrementRetry() {
	j.RetryCount++
}
