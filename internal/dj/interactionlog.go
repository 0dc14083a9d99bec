package dj

import (
	"sync"

	"github.com/groovemind/djbooth/internal/models"
)

// interactionLogCap bounds the in-memory history; older entries are
// dropped as new ones arrive.
const interactionLogCap = 100

// InteractionLog is a fixed-capacity, process-local record of recent
// exchanges. Restarting the server clears it.
type InteractionLog struct {
	mu      sync.Mutex
	entries []models.Interaction
	start   int
	size    int
}

// NewInteractionLog creates an empty log.
func NewInteractionLog() *InteractionLog {
	return &InteractionLog{
		entries: make([]models.Interaction, interactionLogCap),
	}
}

// Append records one interaction, evicting the oldest entry when the
// log is full.
func (l *InteractionLog) Append(entry models.Interaction) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := (l.start + l.size) % interactionLogCap
	l.entries[idx] = entry
	if l.size < interactionLogCap {
		l.size++
	} else {
		l.start = (l.start + 1) % interactionLogCap
	}
}

// Recent returns up to n of the newest entries in chronological order.
// n <= 0 returns everything retained.
func (l *InteractionLog) Recent(n int) []models.Interaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n <= 0 || n > l.size {
		n = l.size
	}

	out := make([]models.Interaction, n)
	first := l.start + l.size - n
	for i := 0; i < n; i++ {
		out[i] = l.entries[(first+i)%interactionLogCap]
	}
	return out
}

// Len reports how many entries are currently retained.
func (l *InteractionLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size
}
