package moderation

import (
	"sort"
	"sync"
	"time"

	"github.com/groovemind/djbooth/internal/models"
)

const shardCount = 32

// userEntry is the mutable per-user record. Guarded by its shard's
// mutex.
type userEntry struct {
	warnings       int
	mutes          int
	mutedUntil     *time.Time
	suspendedUntil *time.Time
	lastRequestAt  *time.Time
}

type shard struct {
	mu    sync.Mutex
	users map[string]*userEntry
}

// UserStateStore tracks penalty state per user. State is sharded by
// user ID so requests from different users never contend on a single
// lock. Penalty expiry is lazy: it happens on the next lookup rather
// than via timers.
type UserStateStore struct {
	shards [shardCount]shard
	config *ConfigHolder
}

// NewUserStateStore creates a store reading thresholds from config at
// decision time.
func NewUserStateStore(config *ConfigHolder) *UserStateStore {
	s := &UserStateStore{config: config}
	for i := range s.shards {
		s.shards[i].users = make(map[string]*userEntry)
	}
	return s
}

func (s *UserStateStore) shardFor(userID string) *shard {
	// FNV-1a, inlined to avoid an allocation per lookup.
	var h uint32 = 2166136261
	for i := 0; i < len(userID); i++ {
		h ^= uint32(userID[i])
		h *= 16777619
	}
	return &s.shards[h%shardCount]
}

// expireLocked clears penalties whose window has passed. Caller holds
// the shard lock.
func expireLocked(e *userEntry, now time.Time) {
	if e.suspendedUntil != nil && !now.Before(*e.suspendedUntil) {
		e.suspendedUntil = nil
	}
	if e.mutedUntil != nil && !now.Before(*e.mutedUntil) {
		e.mutedUntil = nil
	}
}

func snapshotLocked(userID string, e *userEntry) models.UserState {
	state := models.UserState{
		UserID:   userID,
		Status:   models.PenaltyActive,
		Warnings: e.warnings,
		Mutes:    e.mutes,
	}
	if e.lastRequestAt != nil {
		t := *e.lastRequestAt
		state.LastRequestAt = &t
	}
	if e.suspendedUntil != nil {
		t := *e.suspendedUntil
		state.SuspendedUntil = &t
		state.Status = models.PenaltySuspended
		return state
	}
	if e.mutedUntil != nil {
		t := *e.mutedUntil
		state.MutedUntil = &t
		state.Status = models.PenaltyMuted
	}
	return state
}

// CheckStatus resolves the user's standing at the given instant.
// Expired penalties are cleared, and an active user's last-request
// time is stamped. A muted or suspended user's probe does not count
// as activity.
func (s *UserStateStore) CheckStatus(userID string, now time.Time) models.UserState {
	sh := s.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	e, ok := sh.users[userID]
	if !ok {
		e = &userEntry{}
		sh.users[userID] = e
	}

	expireLocked(e, now)
	if e.suspendedUntil == nil && e.mutedUntil == nil {
		t := now
		e.lastRequestAt = &t
	}
	return snapshotLocked(userID, e)
}

// RecordWarning counts one off-topic offense and runs the escalation
// cascade to completion: reaching the warning threshold converts the
// warnings into a mute, and reaching the mute threshold converts the
// mutes into a suspension, all within this call. Consuming warnings
// for a mute resets the warning count; consuming mutes for a
// suspension resets the mute count but leaves warnings alone.
func (s *UserStateStore) RecordWarning(userID string, now time.Time) models.UserState {
	cfg := s.config.Get()

	sh := s.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	e, ok := sh.users[userID]
	if !ok {
		e = &userEntry{}
		sh.users[userID] = e
	}

	e.warnings++
	if e.warnings >= cfg.WarningThreshold {
		e.warnings = 0
		e.mutes++
		until := now.Add(cfg.MuteDuration)
		e.mutedUntil = &until

		if e.mutes >= cfg.MuteThreshold {
			e.mutes = 0
			e.mutedUntil = nil
			suspended := now.Add(cfg.SuspensionDuration)
			e.suspendedUntil = &suspended
		}
	}

	return snapshotLocked(userID, e)
}

// Status returns the user's standing without counting the lookup as
// activity. Expired penalties are still cleared.
func (s *UserStateStore) Status(userID string, now time.Time) models.UserState {
	sh := s.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	e, ok := sh.users[userID]
	if !ok {
		return models.UserState{UserID: userID, Status: models.PenaltyActive}
	}
	expireLocked(e, now)
	return snapshotLocked(userID, e)
}

// Reset clears all penalty state for a user.
func (s *UserStateStore) Reset(userID string) {
	sh := s.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	delete(sh.users, userID)
}

// Snapshot lists the state of every tracked user, ordered by user ID.
func (s *UserStateStore) Snapshot(now time.Time) []models.UserState {
	var states []models.UserState
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		for userID, e := range sh.users {
			expireLocked(e, now)
			states = append(states, snapshotLocked(userID, e))
		}
		sh.mu.Unlock()
	}
	sort.Slice(states, func(i, j int) bool { return states[i].UserID < states[j].UserID })
	return states
}
