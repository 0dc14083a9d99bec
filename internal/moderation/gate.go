package moderation

import (
	"context"
	"fmt"
	"strings"

	"github.com/groovemind/djbooth/internal/models"
	"github.com/groovemind/djbooth/internal/prompts"
	"github.com/groovemind/djbooth/internal/services/llm"
	"go.uber.org/zap"
)

const (
	allowedSentinel = "MUSIC_RELATED"
	blockedSentinel = "NOT_MUSIC_RELATED"

	moderationMaxTokens = 150

	// DefaultRejection is read on air when the model flags a request
	// but offers no usable explanation of its own.
	DefaultRejection = "Sorry, I only respond to music-related questions. I'm a DJ, not a general assistant."
)

// Gate asks the language model whether a listener request is on-topic
// for a music DJ.
type Gate struct {
	provider llm.Provider
	prompts  *prompts.Store
	logger   *zap.Logger
}

// NewGate creates a moderation gate.
func NewGate(provider llm.Provider, promptStore *prompts.Store, logger *zap.Logger) *Gate {
	return &Gate{
		provider: provider,
		prompts:  promptStore,
		logger:   logger,
	}
}

// Check classifies one utterance. A reply beginning with the allowed
// sentinel passes; anything else is treated as a rejection and the
// remainder of the reply (sentinel stripped) becomes the on-air
// explanation. Provider failures propagate: the caller must not guess
// at a verdict when the model is unreachable.
func (g *Gate) Check(ctx context.Context, text string) (models.Verdict, error) {
	system, user := g.prompts.Render(prompts.TemplateModeration, map[string]string{
		"request": text,
	})

	reply, err := g.provider.Complete(ctx, llm.CompletionRequest{
		Operation: "moderation_check",
		Messages: []llm.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens: moderationMaxTokens,
	})
	if err != nil {
		return models.Verdict{}, fmt.Errorf("moderation check failed: %w", err)
	}

	verdict := parseVerdict(reply)
	if g.logger != nil {
		g.logger.Debug("moderation_verdict",
			zap.Bool("allowed", verdict.Allowed),
			zap.Int("request_length", len(text)),
		)
	}
	return verdict, nil
}

// parseVerdict interprets the model's reply. The model is prompted to
// answer with a sentinel prefix, but replies are treated leniently:
// anything that does not start with the allowed sentinel is a
// rejection.
func parseVerdict(reply string) models.Verdict {
	trimmed := strings.TrimSpace(reply)
	if strings.HasPrefix(trimmed, allowedSentinel) {
		return models.Verdict{Allowed: true}
	}

	explanation := strings.TrimSpace(strings.TrimPrefix(trimmed, blockedSentinel))
	explanation = strings.TrimSpace(strings.TrimLeft(explanation, ":,.-"))
	if explanation == "" {
		explanation = DefaultRejection
	}
	return models.Verdict{Allowed: false, Explanation: explanation}
}
