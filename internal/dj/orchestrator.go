// Package dj contains the response orchestrator: the pipeline that
// takes one listener utterance through penalty checks, the moderation
// gate, classification, response generation and voice synthesis.
package dj

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/groovemind/djbooth/internal/classifier"
	"github.com/groovemind/djbooth/internal/logger"
	"github.com/groovemind/djbooth/internal/models"
	"go.uber.org/zap"
)

// ContentGate decides whether an utterance is on-topic.
type ContentGate interface {
	Check(ctx context.Context, text string) (models.Verdict, error)
}

// PenaltyStore is the per-user moderation state machine.
type PenaltyStore interface {
	CheckStatus(userID string, now time.Time) models.UserState
	RecordWarning(userID string, now time.Time) models.UserState
}

// Synthesizer turns reply text into audio.
type Synthesizer interface {
	Enabled() bool
	Synthesize(ctx context.Context, text, voiceID string, speed float64) ([]byte, error)
}

// AudioStore persists synthesized audio and returns a servable path.
type AudioStore interface {
	Save(data []byte) (string, error)
}

// ProfileSource supplies DJ personas: the active one and lookups by ID
// for requests that name a specific profile.
type ProfileSource interface {
	GetActive(ctx context.Context) (*models.DJProfile, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.DJProfile, error)
}

// Orchestrator runs the request pipeline. All collaborator failures
// except the moderation gate degrade into spoken replies; a gate
// failure is the one error HandleRequest returns, because answering
// without a verdict would bypass moderation entirely.
type Orchestrator struct {
	gate       ContentGate
	store      PenaltyStore
	generators *Generators
	speech     Synthesizer
	audio      AudioStore
	profiles   ProfileSource
	log        *InteractionLog
	logger     *zap.Logger
	now        func() time.Time
}

// NewOrchestrator wires the pipeline. speech, audio and profiles may
// be nil when those collaborators are not configured.
func NewOrchestrator(
	gate ContentGate,
	store PenaltyStore,
	generators *Generators,
	speech Synthesizer,
	audioStore AudioStore,
	profiles ProfileSource,
	interactionLog *InteractionLog,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		gate:       gate,
		store:      store,
		generators: generators,
		speech:     speech,
		audio:      audioStore,
		profiles:   profiles,
		log:        interactionLog,
		logger:     logger,
		now:        time.Now,
	}
}

// Log exposes the interaction history for the recent-interactions
// endpoint.
func (o *Orchestrator) Log() *InteractionLog {
	return o.log
}

// HandleRequest takes one utterance through the full pipeline.
func (o *Orchestrator) HandleRequest(ctx context.Context, req models.DJRequest) (*models.DJResponse, error) {
	now := o.now()

	state := o.store.CheckStatus(req.UserID, now)
	switch state.Status {
	case models.PenaltyMuted:
		remaining := int(state.MutedUntil.Sub(now).Seconds())
		return &models.DJResponse{
			Success:    false,
			Response:   fmt.Sprintf("You're on a timeout for another %d seconds. Take a breather and we'll talk music after.", remaining),
			MutedUntil: state.MutedUntil,
		}, nil
	case models.PenaltySuspended:
		return &models.DJResponse{
			Success:        false,
			Response:       "You're suspended from making requests for a while. The music keeps playing, but my line to you is closed for now.",
			SuspendedUntil: state.SuspendedUntil,
		}, nil
	}

	verdict, err := o.gate.Check(ctx, req.Text)
	if err != nil {
		return nil, fmt.Errorf("cannot moderate request: %w", err)
	}

	category := classifier.Categorize(req.Text)

	if !verdict.Allowed {
		state = o.store.RecordWarning(req.UserID, now)
		resp := &models.DJResponse{
			Success:        false,
			Response:       verdict.Explanation,
			Warnings:       state.Warnings,
			MutedUntil:     state.MutedUntil,
			SuspendedUntil: state.SuspendedUntil,
		}
		switch state.Status {
		case models.PenaltyMuted:
			resp.Response += " That's one too many, so you're muted for a bit."
		case models.PenaltySuspended:
			resp.Response += " That's it, you're suspended from requests for a while."
		}

		o.record(req, category, resp.Response, false, now)
		o.logger.Info("rejected_dj_request",
			zap.String("user_id", logger.SanitizeUserID(req.UserID)),
			zap.String("status", string(state.Status)),
			zap.Int("warnings", state.Warnings),
		)
		return resp, nil
	}

	pc, voiceID := o.resolveContext(ctx, req)
	text, actions := o.generators.Generate(ctx, category, pc)

	resp := &models.DJResponse{
		Success:  true,
		Response: text,
		Actions:  actions,
	}
	resp.AudioPath = o.synthesize(ctx, text, voiceID, req.VoiceSpeed)

	o.record(req, category, text, true, now)
	o.logger.Info("served_dj_request",
		zap.String("user_id", logger.SanitizeUserID(req.UserID)),
		zap.String("category", string(category)),
		zap.Bool("has_audio", resp.AudioPath != ""),
		zap.Int("action_count", len(actions)),
	)
	return resp, nil
}

// Speak synthesizes arbitrary text with the active profile's voice.
// Unlike the request pipeline this is not best-effort; the caller
// asked specifically for audio.
func (o *Orchestrator) Speak(ctx context.Context, text, voiceID string, speed float64) (string, error) {
	if o.speech == nil || !o.speech.Enabled() || o.audio == nil {
		return "", fmt.Errorf("speech synthesis is not configured")
	}
	if voiceID == "" {
		if profile := o.activeProfile(ctx); profile != nil {
			voiceID = profile.VoiceID
		}
	}
	data, err := o.speech.Synthesize(ctx, text, voiceID, speed)
	if err != nil {
		return "", err
	}
	ref, err := o.audio.Save(data)
	if err != nil {
		return "", fmt.Errorf("failed to store audio: %w", err)
	}
	return ref, nil
}

// Intro generates and voices a short introduction for a song or
// playlist. Synthesis is best-effort, as on the request path.
func (o *Orchestrator) Intro(ctx context.Context, subject, tone string, speed float64) (string, string) {
	pc, voiceID := o.resolveContext(ctx, models.DJRequest{Tone: tone})
	text := o.generators.Intro(ctx, subject, pc)
	return text, o.synthesize(ctx, text, voiceID, speed)
}

// SongInfo produces DJ commentary about a known catalog song, voiced
// best-effort like the request path.
func (o *Orchestrator) SongInfo(ctx context.Context, song models.Song, tone string, speed float64) (string, string) {
	subject := song.Title
	if song.Artist != "" {
		subject += " by " + song.Artist
	}
	year := ""
	if song.Year > 0 {
		year = fmt.Sprintf("%d", song.Year)
	}
	req := models.DJRequest{
		Text: "Tell me about " + subject,
		Tone: tone,
		Context: &models.RequestContext{
			NowPlaying: &models.NowPlaying{
				Title:  song.Title,
				Artist: song.Artist,
				Album:  song.Album,
				Year:   year,
				Genre:  song.Genre,
			},
		},
	}
	pc, voiceID := o.resolveContext(ctx, req)
	text, _ := o.generators.Generate(ctx, models.CategorySongInfo, pc)
	return text, o.synthesize(ctx, text, voiceID, speed)
}

// synthesize is the best-effort voice step: any failure is logged and
// the text reply stands on its own.
func (o *Orchestrator) synthesize(ctx context.Context, text, voiceID string, speed float64) string {
	if o.speech == nil || !o.speech.Enabled() || o.audio == nil {
		return ""
	}
	data, err := o.speech.Synthesize(ctx, text, voiceID, speed)
	if err != nil {
		o.logger.Warn("speech_synthesis_failed", zap.Error(err))
		return ""
	}
	ref, err := o.audio.Save(data)
	if err != nil {
		o.logger.Warn("audio_store_failed", zap.Error(err))
		return ""
	}
	return ref
}

func (o *Orchestrator) activeProfile(ctx context.Context) *models.DJProfile {
	if o.profiles == nil {
		return nil
	}
	profile, err := o.profiles.GetActive(ctx)
	if err != nil {
		o.logger.Warn("active_profile_lookup_failed", zap.Error(err))
		return nil
	}
	return profile
}

// resolveContext assembles the prompt variables: a profile named in
// the request wins, then the active stored profile, then the built-in
// persona. A request profile also selects that profile's voice.
func (o *Orchestrator) resolveContext(ctx context.Context, req models.DJRequest) (promptContext, string) {
	pc := promptContext{
		request:     req.Text,
		personality: defaultPersonality,
		tone:        defaultTone,
		nowPlaying:  "nothing in particular",
	}
	var voiceID string

	if profile := o.activeProfile(ctx); profile != nil {
		pc.personality = profile.Personality
		voiceID = profile.VoiceID
	}
	if req.Context != nil && req.Context.DJProfile != "" {
		if profile := o.profileByID(ctx, req.Context.DJProfile); profile != nil {
			pc.personality = profile.Personality
			if profile.VoiceID != "" {
				voiceID = profile.VoiceID
			}
		}
	}
	if req.Tone != "" {
		pc.tone = req.Tone
	}
	if req.Context != nil && req.Context.NowPlaying != nil && req.Context.NowPlaying.Title != "" {
		pc.nowPlaying = formatNowPlaying(*req.Context.NowPlaying)
		pc.hasNowPlaying = true
	}
	return pc, voiceID
}

// profileByID resolves the dj_profile hint from a request context. An
// unknown or malformed ID falls back to the profile already resolved,
// never failing the request.
func (o *Orchestrator) profileByID(ctx context.Context, id string) *models.DJProfile {
	if o.profiles == nil {
		return nil
	}
	profileID, err := uuid.Parse(id)
	if err != nil {
		o.logger.Warn("invalid_profile_id_in_request", zap.Error(err))
		return nil
	}
	profile, err := o.profiles.GetByID(ctx, profileID)
	if err != nil {
		o.logger.Warn("requested_profile_lookup_failed", zap.Error(err))
		return nil
	}
	return profile
}

func formatNowPlaying(np models.NowPlaying) string {
	if np.Title == "" {
		return "nothing in particular"
	}
	desc := np.Title
	if np.Artist != "" {
		desc += " by " + np.Artist
	}
	if np.Album != "" {
		desc += " from " + np.Album
	}
	if np.Year != "" {
		desc += " (" + np.Year + ")"
	}
	return desc
}

func (o *Orchestrator) record(req models.DJRequest, category models.Category, response string, allowed bool, now time.Time) {
	if o.log == nil {
		return
	}
	o.log.Append(models.Interaction{
		ID:        uuid.New(),
		UserID:    req.UserID,
		Request:   req.Text,
		Category:  category,
		Response:  response,
		Allowed:   allowed,
		Timestamp: now,
	})
}
