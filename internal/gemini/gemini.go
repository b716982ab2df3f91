package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/lehigh-university-libraries/bookresolver/internal/providers"
	"google.golang.org/api/option"
)

// Name is the source identifier reported for titles extracted by Gemini
const Name = "gemini"

// DefaultModels are tried in order until one answers
var DefaultModels = []string{"gemini-pro", "gemini-1.5-flash", "gemini-1.0-pro"}

// Gemini is a provider for Google Gemini
type Gemini struct {
	apiKey  string
	models  []string
	options []option.ClientOption
}

// New returns a new Gemini provider. An empty model list uses DefaultModels.
func New(apiKey string, models []string, opts ...option.ClientOption) *Gemini {
	if len(models) == 0 {
		models = DefaultModels
	}
	return &Gemini{
		apiKey:  strings.TrimSpace(apiKey),
		models:  models,
		options: opts,
	}
}

// Name implements providers.Provider
func (g *Gemini) Name() string {
	return Name
}

// Configured reports whether a real API key was supplied
func (g *Gemini) Configured() bool {
	return !providers.IsPlaceholderKey(g.apiKey)
}

// ListModels returns the candidate models in priority order
func (g *Gemini) ListModels(ctx context.Context) ([]string, error) {
	if !g.Configured() {
		return nil, fmt.Errorf("GEMINI_API_KEY not set: %w", providers.ErrUnconfigured)
	}
	out := make([]string, len(g.models))
	copy(out, g.models)
	return out, nil
}

// Generate sends the prompt to the requested Gemini model
func (g *Gemini) Generate(ctx context.Context, config providers.Config) (string, error) {
	if !g.Configured() {
		return "", fmt.Errorf("GEMINI_API_KEY not set: %w", providers.ErrUnconfigured)
	}

	opts := append([]option.ClientOption{option.WithAPIKey(g.apiKey)}, g.options...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create new gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(config.Model)
	model.SetTemperature(float32(config.Temperature))
	if config.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(config.MaxTokens))
	}
	if config.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(config.System)}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(config.Prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("empty content returned from Gemini")
	}

	if txt, ok := candidate.Content.Parts[0].(genai.Text); ok {
		return string(txt), nil
	}

	return "", fmt.Errorf("unexpected response format from Gemini")
}
