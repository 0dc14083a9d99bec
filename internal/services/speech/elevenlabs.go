// Package speech synthesizes spoken audio for DJ replies via the
// ElevenLabs text-to-speech API.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the ElevenLabs API endpoint.
	DefaultBaseURL = "https://api.elevenlabs.io"
	// DefaultVoiceID is used when neither the request nor the active
	// profile names a voice.
	DefaultVoiceID = "21m00Tcm4TlvDq8ikWAM"
	// DefaultModelID is the synthesis model.
	DefaultModelID = "eleven_monolingual_v1"
	// DefaultTimeout bounds each synthesis call.
	DefaultTimeout = 30 * time.Second

	defaultStability       = 0.5
	defaultSimilarityBoost = 0.75

	// maxAudioResponseBytes caps how much audio we will buffer from a
	// single synthesis call.
	maxAudioResponseBytes = 32 << 20
)

// Voice is one synthesis voice available to the account.
type Voice struct {
	ID       string `json:"voice_id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// Client talks to the ElevenLabs REST API.
type Client struct {
	baseURL      string
	apiKey       string
	defaultVoice string
	httpClient   *http.Client
	logger       *zap.Logger
}

// NewClient creates a speech client. An empty API key yields a
// disabled client; callers check Enabled before synthesizing.
func NewClient(baseURL, apiKey, defaultVoice string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if defaultVoice == "" {
		defaultVoice = DefaultVoiceID
	}
	return &Client{
		baseURL:      baseURL,
		apiKey:       apiKey,
		defaultVoice: defaultVoice,
		httpClient:   &http.Client{Timeout: DefaultTimeout},
		logger:       logger,
	}
}

// Enabled reports whether the client is configured with an API key.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

type synthesizeRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Speed           float64 `json:"speed,omitempty"`
}

// Synthesize converts text to MP3 audio. voiceID falls back to the
// client default; speed of zero uses the voice's natural pace.
func (c *Client) Synthesize(ctx context.Context, text, voiceID string, speed float64) ([]byte, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("speech synthesis is not configured")
	}
	if voiceID == "" {
		voiceID = c.defaultVoice
	}

	body, err := json.Marshal(synthesizeRequest{
		Text:    text,
		ModelID: DefaultModelID,
		VoiceSettings: voiceSettings{
			Stability:       defaultStability,
			SimilarityBoost: defaultSimilarityBoost,
			Speed:           speed,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode synthesis request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s", c.baseURL, url.PathEscape(voiceID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build synthesis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesis request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("synthesis returned status %d: %s", resp.StatusCode, snippet)
	}

	audio, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read synthesis response: %w", err)
	}

	if c.logger != nil {
		c.logger.Debug("synthesized_speech",
			zap.String("voice_id", voiceID),
			zap.Int("text_length", len(text)),
			zap.Int("audio_bytes", len(audio)),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
		)
	}
	return audio, nil
}

// Voices lists the synthesis voices available to the account.
func (c *Client) Voices(ctx context.Context) ([]Voice, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("speech synthesis is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/voices", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build voices request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("voices request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("voices request returned status %d", resp.StatusCode)
	}

	var payload struct {
		Voices []Voice `json:"voices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode voices response: %w", err)
	}
	return payload.Voices, nil
}
