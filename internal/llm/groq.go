package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"autism-diet-planner/internal/config"
	"autism-diet-planner/internal/shared"
)

const (
	groqAPIURL    = "https://api.groq.com/openai/v1/chat/completions"
	providerGroq  = "groq"
	groqMaxTokens = 4096
)

// groqClient is a client for the Groq API.
type groqClient struct {
	apiKey      string
	apiURL      string
	model       string
	temperature float64
	httpClient  *http.Client
}

// NewGroqClient creates a new Groq API client.
func NewGroqClient(cfg *config.Config) ChatProvider {
	return &groqClient{
		apiKey:      cfg.GroqAPIKey,
		apiURL:      groqAPIURL,
		model:       cfg.GroqModel,
		temperature: 0.7,
		httpClient: &http.Client{
			Timeout: cfg.LLMTimeout,
		},
	}
}

func (c *groqClient) Name() string {
	return providerGroq
}

func (c *groqClient) NewSession() ChatSession {
	return &groqSession{client: c}
}

func (c *groqClient) Close() error {
	return nil
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// groqSession keeps the conversation locally and replays it on every request,
// since the chat-completions endpoint is stateless.
type groqSession struct {
	mu      sync.Mutex
	client  *groqClient
	history []groqMessage
}

func (s *groqSession) Send(ctx context.Context, prompt string) (ContentResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages := append(append([]groqMessage(nil), s.history...), groqMessage{Role: "user", Content: prompt})
	resp, err := s.client.complete(ctx, messages)
	if err != nil {
		return ContentResponse{}, &ServiceError{Provider: providerGroq, Err: err}
	}

	s.history = append(messages, groqMessage{Role: "assistant", Content: resp.Content})
	return resp, nil
}

func (s *groqSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}

func (s *groqSession) Turns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history) / 2
}

// complete sends the messages to the Groq model and returns the generated text.
func (c *groqClient) complete(ctx context.Context, messages []groqMessage) (ContentResponse, error) {
	reqBody := map[string]interface{}{
		"model":       c.model,
		"messages":    messages,
		"temperature": c.temperature,
		"max_tokens":  groqMaxTokens,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return ContentResponse{}, fmt.Errorf("groq api error: status=%d body=%s", resp.StatusCode, string(bodyBytes))
	}

	var groqResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&groqResp); err != nil {
		return ContentResponse{}, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(groqResp.Choices) == 0 || strings.TrimSpace(groqResp.Choices[0].Message.Content) == "" {
		return ContentResponse{}, ErrNoContent
	}

	return ContentResponse{
		Content: groqResp.Choices[0].Message.Content,
		Usage: shared.TokenUsage{
			PromptTokens:     groqResp.Usage.PromptTokens,
			CompletionTokens: groqResp.Usage.CompletionTokens,
			TotalTokens:      groqResp.Usage.TotalTokens,
			Model:            c.model,
		},
	}, nil
}
