package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/bookresolver/internal/providers"
)

// Name is the source identifier reported for titles extracted by Ollama
const Name = "ollama"

// DefaultModels are tried in order until one answers
var DefaultModels = []string{"mistral-small3.2:24b"}

// Ollama is a provider for a self-hosted Ollama server
type Ollama struct {
	baseURL string
	models  []string
	http    *http.Client
}

// New returns a new Ollama provider. An empty baseURL leaves it unconfigured.
func New(baseURL string, models []string) *Ollama {
	if len(models) == 0 {
		models = DefaultModels
	}
	return &Ollama{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		models:  models,
		http:    &http.Client{},
	}
}

// Name implements providers.Provider
func (o *Ollama) Name() string {
	return Name
}

// Configured reports whether a server URL was supplied
func (o *Ollama) Configured() bool {
	return o.baseURL != ""
}

// ListModels returns the candidate models in priority order
func (o *Ollama) ListModels(ctx context.Context) ([]string, error) {
	if !o.Configured() {
		return nil, fmt.Errorf("OLLAMA_URL not set: %w", providers.ErrUnconfigured)
	}
	out := make([]string, len(o.models))
	copy(out, o.models)
	return out, nil
}

// Generate sends the prompt to the Ollama generate endpoint
func (o *Ollama) Generate(ctx context.Context, config providers.Config) (string, error) {
	if !o.Configured() {
		return "", fmt.Errorf("OLLAMA_URL not set: %w", providers.ErrUnconfigured)
	}
	url := o.baseURL + "/api/generate"

	options := map[string]any{
		"temperature": config.Temperature,
	}
	if config.MaxTokens > 0 {
		options["num_predict"] = config.MaxTokens
	}
	body := map[string]any{
		"model":   config.Model,
		"prompt":  config.Prompt,
		"stream":  false,
		"options": options,
	}
	if config.System != "" {
		body["system"] = config.System
	}

	requestBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

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
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	return response.Response, nil
}
