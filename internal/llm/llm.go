package llm

import (
	"context"
	"errors"
	"fmt"

	"autism-diet-planner/internal/config"
	"autism-diet-planner/internal/shared"
)

// ErrNoContent is returned when the service answers without any text.
var ErrNoContent = errors.New("no content generated")

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// ChatSession is a conversation with the text-generation service. Each Send
// sees the history of earlier successful turns in the same session.
type ChatSession interface {
	Send(ctx context.Context, prompt string) (ContentResponse, error)
	// Reset forgets the conversation history.
	Reset()
	// Turns returns the number of completed exchanges.
	Turns() int
}

// ChatProvider creates chat sessions against one text-generation backend.
type ChatProvider interface {
	Name() string
	NewSession() ChatSession
	Close() error
}

// ServiceError wraps any failure of the text-generation service: transport,
// auth, quota or an unusable response.
type ServiceError struct {
	Provider string
	Err      error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s service error: %v", e.Provider, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewProvider picks the backend named in the configuration.
func NewProvider(ctx context.Context, cfg *config.Config) (ChatProvider, error) {
	switch cfg.LLMProvider {
	case config.ProviderGroq:
		return NewGroqClient(cfg), nil
	case config.ProviderGemini, "":
		return NewGeminiClient(ctx, cfg)
	}
	return nil, fmt.Errorf("unsupported llm provider %q", cfg.LLMProvider)
}
