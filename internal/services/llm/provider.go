package llm

import "context"

// Message is a single message in a chat completion request.
type Message struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

// CompletionRequest describes one chat completion call. Operation is a
// short name used only for logging. A zero Temperature is omitted so
// the model default applies.
type CompletionRequest struct {
	Operation   string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// Provider is the interface for language model backends.
type Provider interface {
	// Complete sends a chat completion request and returns the text of
	// the first choice.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// ProviderFactory creates a provider from a flat config map.
type ProviderFactory func(config map[string]string) (Provider, error)

// ProviderRegistry stores available language model providers.
type ProviderRegistry struct {
	providers map[string]ProviderFactory
}

// NewProviderRegistry creates a new provider registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]ProviderFactory),
	}
}

// Register registers a provider factory.
func (r *ProviderRegistry) Register(name string, factory ProviderFactory) {
	r.providers[name] = factory
}

// GetProvider gets a provider by name.
func (r *ProviderRegistry) GetProvider(name string, config map[string]string) (Provider, error) {
	factory, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}

	return factory(config)
}

// ErrProviderNotFound is returned when a provider is not registered.
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return "language model provider not found: " + e.Name
}
