package providers

import (
	"context"
	"errors"
	"strings"
)

// ErrUnconfigured is returned by a provider that has no credentials or endpoint
var ErrUnconfigured = errors.New("provider not configured")

// Config represents the configuration for a single LLM request
type Config struct {
	Model       string
	Temperature float64
	MaxTokens   int
	System      string
	Prompt      string
}

// Provider defines the interface for an LLM provider
type Provider interface {
	// Name identifies the provider in extraction results ("gemini", "openai", ...)
	Name() string
	// Configured reports whether the provider has what it needs to make calls
	Configured() bool
	// ListModels returns candidate models in the order they should be tried
	ListModels(ctx context.Context) ([]string, error)
	// Generate sends one prompt to one model and returns the raw text reply
	Generate(ctx context.Context, config Config) (string, error)
}

// Registry holds providers in priority order
type Registry struct {
	providers []Provider
}

// NewRegistry returns a registry that tries providers in the order given
func NewRegistry(ps ...Provider) *Registry {
	r := &Registry{}
	for _, p := range ps {
		if p != nil {
			r.providers = append(r.providers, p)
		}
	}
	return r
}

// Providers returns every registered provider in priority order
func (r *Registry) Providers() []Provider {
	if r == nil {
		return nil
	}
	out := make([]Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

// Configured returns the names of providers that are ready to use
func (r *Registry) Configured() []string {
	var names []string
	for _, p := range r.Providers() {
		if p.Configured() {
			names = append(names, p.Name())
		}
	}
	return names
}

// IsPlaceholderKey reports whether key is empty or a sample value copied from
// an example config, such as "your-openai-api-key-here".
func IsPlaceholderKey(key string) bool {
	k := strings.ToLower(strings.TrimSpace(key))
	if k == "" {
		return true
	}
	if strings.HasPrefix(k, "your-") && strings.HasSuffix(k, "-here") {
		return true
	}
	return strings.Contains(k, "example-key")
}

// SplitModels parses a comma separated model list, dropping blanks
func SplitModels(list string) []string {
	var models []string
	for _, m := range strings.Split(list, ",") {
		if m = strings.TrimSpace(m); m != "" {
			models = append(models, m)
		}
	}
	return models
}
