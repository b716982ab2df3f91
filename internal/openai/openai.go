package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/bookresolver/internal/providers"
)

// Name is the source identifier reported for titles extracted by OpenAI
const Name = "openai"

const defaultBaseURL = "https://api.openai.com/v1"

// DefaultModels are tried in order until one answers
var DefaultModels = []string{"gpt-4o-mini", "gpt-3.5-turbo"}

// Config for the OpenAI provider
type Config struct {
	APIKey  string
	BaseURL string        // default https://api.openai.com/v1
	Models  []string      // default DefaultModels
	Timeout time.Duration // http client timeout, default 30s
}

// OpenAI is a provider for OpenAI compatible chat completion APIs
type OpenAI struct {
	cfg  Config
	http *http.Client
}

// New returns a new OpenAI provider
func New(cfg Config) *OpenAI {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if len(cfg.Models) == 0 {
		cfg.Models = DefaultModels
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &OpenAI{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

// Name implements providers.Provider
func (o *OpenAI) Name() string {
	return Name
}

// Configured reports whether a real API key was supplied
func (o *OpenAI) Configured() bool {
	return !providers.IsPlaceholderKey(o.cfg.APIKey)
}

// ListModels returns the candidate models in priority order
func (o *OpenAI) ListModels(ctx context.Context) ([]string, error) {
	if !o.Configured() {
		return nil, fmt.Errorf("OPENAI_API_KEY not set: %w", providers.ErrUnconfigured)
	}
	out := make([]string, len(o.cfg.Models))
	copy(out, o.cfg.Models)
	return out, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// Generate sends the prompt to the chat completions endpoint
func (o *OpenAI) Generate(ctx context.Context, config providers.Config) (string, error) {
	if !o.Configured() {
		return "", fmt.Errorf("OPENAI_API_KEY not set: %w", providers.ErrUnconfigured)
	}

	var messages []chatMessage
	if config.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: config.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: config.Prompt})

	requestBody, err := json.Marshal(chatRequest{
		Model:       config.Model,
		Messages:    messages,
		Temperature: config.Temperature,
		MaxTokens:   config.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	url := strings.TrimRight(o.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.cfg.APIKey)

	resp, err := o.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode, string(body))
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from OpenAI")
	}

	return response.Choices[0].Message.Content, nil
}
