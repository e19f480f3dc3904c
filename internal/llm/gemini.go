package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"autism-diet-planner/internal/config"
	"autism-diet-planner/internal/shared"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const providerGemini = "gemini"

// geminiClient is a client for the Google Gemini API.
type geminiClient struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
}

// NewGeminiClient creates a new Gemini API client.
func NewGeminiClient(ctx context.Context, cfg *config.Config) (ChatProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	model := client.GenerativeModel(cfg.GeminiModel)
	return &geminiClient{client: client, model: model, modelName: cfg.GeminiModel}, nil
}

func (c *geminiClient) Name() string {
	return providerGemini
}

// NewSession starts a chat with an empty history.
func (c *geminiClient) NewSession() ChatSession {
	return &geminiSession{chat: c.model.StartChat(), modelName: c.modelName}
}

// Close closes the underlying Gemini client.
func (c *geminiClient) Close() error {
	return c.client.Close()
}

type geminiSession struct {
	mu        sync.Mutex
	chat      *genai.ChatSession
	modelName string
}

// Send streams the answer and joins the chunks into one string. The prompt is
// appended to the history as soon as the stream starts, so a failed send
// trims it back off.
func (s *geminiSession) Send(ctx context.Context, prompt string) (ContentResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.chat.History)
	iter := s.chat.SendMessageStream(ctx, genai.Text(prompt))

	var sb strings.Builder
	usage := shared.TokenUsage{Model: s.modelName}
	for {
		resp, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			s.chat.History = s.chat.History[:n]
			return ContentResponse{}, &ServiceError{Provider: providerGemini, Err: err}
		}
		writeCandidateText(&sb, resp)
		if resp.UsageMetadata != nil {
			usage.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
			usage.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
			usage.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
		}
	}

	if strings.TrimSpace(sb.String()) == "" {
		s.chat.History = s.chat.History[:n]
		return ContentResponse{Usage: usage}, &ServiceError{Provider: providerGemini, Err: ErrNoContent}
	}
	return ContentResponse{Content: sb.String(), Usage: usage}, nil
}

func writeCandidateText(sb *strings.Builder, resp *genai.GenerateContentResponse) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
}

func (s *geminiSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chat.History = nil
}

// Turns counts model replies in the history.
func (s *geminiSession) Turns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.chat.History {
		if c.Role == "model" {
			n++
		}
	}
	return n
}
