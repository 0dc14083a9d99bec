package moderation

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/groovemind/djbooth/internal/models"
)

func testHolder(t *testing.T, cfg models.ModerationConfig) *ConfigHolder {
	t.Helper()
	holder, err := NewConfigHolder(cfg)
	if err != nil {
		t.Fatalf("NewConfigHolder failed: %v", err)
	}
	return holder
}

func TestRecordWarningEscalatesToMute(t *testing.T) {
	t.Parallel()

	store := NewUserStateStore(testHolder(t, DefaultConfig()))
	now := time.Now()

	state := store.RecordWarning("alice", now)
	if state.Status != models.PenaltyActive || state.Warnings != 1 {
		t.Fatalf("after first warning: status=%s warnings=%d, want active/1", state.Status, state.Warnings)
	}

	state = store.RecordWarning("alice", now)
	if state.Status != models.PenaltyMuted {
		t.Fatalf("after second warning: status=%s, want muted", state.Status)
	}
	if state.Warnings != 0 {
		t.Errorf("warnings=%d after mute, want 0", state.Warnings)
	}
	if state.Mutes != 1 {
		t.Errorf("mutes=%d after mute, want 1", state.Mutes)
	}
	if state.MutedUntil == nil || !state.MutedUntil.Equal(now.Add(60*time.Second)) {
		t.Errorf("muted_until=%v, want %v", state.MutedUntil, now.Add(60*time.Second))
	}
}

func TestRecordWarningCascadesToSuspension(t *testing.T) {
	t.Parallel()

	// Thresholds of one make each warning escalate straight through
	// both stages in a single call.
	store := NewUserStateStore(testHolder(t, models.ModerationConfig{
		WarningThreshold:   1,
		MuteDuration:       time.Minute,
		MuteThreshold:      1,
		SuspensionDuration: time.Hour,
	}))
	now := time.Now()

	state := store.RecordWarning("bob", now)
	if state.Status != models.PenaltySuspended {
		t.Fatalf("status=%s, want suspended", state.Status)
	}
	if state.SuspendedUntil == nil || !state.SuspendedUntil.Equal(now.Add(time.Hour)) {
		t.Errorf("suspended_until=%v, want %v", state.SuspendedUntil, now.Add(time.Hour))
	}
	if state.Mutes != 0 {
		t.Errorf("mutes=%d after suspension, want 0", state.Mutes)
	}
	if state.MutedUntil != nil {
		t.Errorf("muted_until=%v after suspension, want nil", state.MutedUntil)
	}
}

func TestSuspensionDoesNotResetWarnings(t *testing.T) {
	t.Parallel()

	// Warning threshold 2, mute threshold 1: the second warning mutes
	// (resetting warnings) and the mute immediately becomes a
	// suspension. The warning counter stays at its post-mute value.
	store := NewUserStateStore(testHolder(t, models.ModerationConfig{
		WarningThreshold:   2,
		MuteDuration:       time.Minute,
		MuteThreshold:      1,
		SuspensionDuration: time.Hour,
	}))
	now := time.Now()

	store.RecordWarning("carol", now)
	state := store.RecordWarning("carol", now)
	if state.Status != models.PenaltySuspended {
		t.Fatalf("status=%s, want suspended", state.Status)
	}
	if state.Warnings != 0 {
		t.Errorf("warnings=%d, want 0 (reset by the mute step, not the suspension)", state.Warnings)
	}
}

func TestCheckStatusClearsExpiredPenalties(t *testing.T) {
	t.Parallel()

	store := NewUserStateStore(testHolder(t, DefaultConfig()))
	now := time.Now()

	store.RecordWarning("dave", now)
	store.RecordWarning("dave", now) // mutes for 60s

	state := store.CheckStatus("dave", now.Add(30*time.Second))
	if state.Status != models.PenaltyMuted {
		t.Fatalf("status during mute=%s, want muted", state.Status)
	}
	if state.LastRequestAt != nil {
		t.Error("muted probe stamped last_request_at")
	}

	state = store.CheckStatus("dave", now.Add(61*time.Second))
	if state.Status != models.PenaltyActive {
		t.Fatalf("status after mute expiry=%s, want active", state.Status)
	}
	if state.MutedUntil != nil {
		t.Error("muted_until not cleared after expiry")
	}
	if state.LastRequestAt == nil {
		t.Error("active request did not stamp last_request_at")
	}
	// The consumed mute still counts toward the suspension threshold.
	if state.Mutes != 1 {
		t.Errorf("mutes=%d after expiry, want 1", state.Mutes)
	}
}

func TestSuspensionExpiryRestoresActive(t *testing.T) {
	t.Parallel()

	store := NewUserStateStore(testHolder(t, models.ModerationConfig{
		WarningThreshold:   1,
		MuteDuration:       time.Minute,
		MuteThreshold:      1,
		SuspensionDuration: time.Hour,
	}))
	now := time.Now()

	store.RecordWarning("erin", now)

	state := store.CheckStatus("erin", now.Add(time.Hour))
	if state.Status != models.PenaltyActive {
		t.Fatalf("status at expiry instant=%s, want active", state.Status)
	}
	if state.SuspendedUntil != nil {
		t.Error("suspended_until not cleared at expiry")
	}
}

func TestResetClearsAllState(t *testing.T) {
	t.Parallel()

	store := NewUserStateStore(testHolder(t, DefaultConfig()))
	now := time.Now()

	store.RecordWarning("frank", now)
	store.RecordWarning("frank", now)
	store.Reset("frank")

	state := store.Status("frank", now)
	if state.Status != models.PenaltyActive || state.Warnings != 0 || state.Mutes != 0 {
		t.Errorf("state after reset = %+v, want pristine active", state)
	}
}

func TestStatusDoesNotStampActivity(t *testing.T) {
	t.Parallel()

	store := NewUserStateStore(testHolder(t, DefaultConfig()))
	now := time.Now()

	store.RecordWarning("grace", now)
	state := store.Status("grace", now)
	if state.LastRequestAt != nil {
		t.Error("Status() stamped last_request_at")
	}
}

func TestSnapshotListsAllUsers(t *testing.T) {
	t.Parallel()

	store := NewUserStateStore(testHolder(t, DefaultConfig()))
	now := time.Now()

	store.CheckStatus("b-user", now)
	store.CheckStatus("a-user", now)
	store.RecordWarning("c-user", now)

	states := store.Snapshot(now)
	if len(states) != 3 {
		t.Fatalf("snapshot has %d users, want 3", len(states))
	}
	for i, want := range []string{"a-user", "b-user", "c-user"} {
		if states[i].UserID != want {
			t.Errorf("snapshot[%d].UserID = %q, want %q", i, states[i].UserID, want)
		}
	}
}

func TestConcurrentWarningsAreCounted(t *testing.T) {
	t.Parallel()

	// A high threshold keeps every warning in the counting stage so
	// the final count is exact.
	store := NewUserStateStore(testHolder(t, models.ModerationConfig{
		WarningThreshold:   1000,
		MuteDuration:       time.Minute,
		MuteThreshold:      3,
		SuspensionDuration: time.Hour,
	}))
	now := time.Now()

	const goroutines = 8
	const perGoroutine = 25
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			userID := fmt.Sprintf("user-%d", g%4)
			for i := 0; i < perGoroutine; i++ {
				store.RecordWarning(userID, now)
			}
		}(g)
	}
	wg.Wait()

	total := 0
	for _, state := range store.Snapshot(now) {
		total += state.Warnings
	}
	if total != goroutines*perGoroutine {
		t.Errorf("total warnings = %d, want %d", total, goroutines*perGoroutine)
	}
}
