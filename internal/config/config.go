// Package config reads provider credentials and tuning knobs from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/bookresolver/internal/extraction"
	"github.com/lehigh-university-libraries/bookresolver/internal/gemini"
	"github.com/lehigh-university-libraries/bookresolver/internal/matcher"
	"github.com/lehigh-university-libraries/bookresolver/internal/ollama"
	"github.com/lehigh-university-libraries/bookresolver/internal/openai"
	"github.com/lehigh-university-libraries/bookresolver/internal/providers"
	"github.com/lehigh-university-libraries/bookresolver/internal/resolver"
)

// Config is everything the resolver needs from the environment
type Config struct {
	GeminiAPIKey string
	GeminiModels []string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModels  []string

	OllamaURL    string
	OllamaModels []string

	ProviderTimeout time.Duration
	MinConfidence   float64
	ThresholdsPath  string

	// ProviderRPS caps provider calls per second across all providers; 0 is unlimited
	ProviderRPS float64
}

// Load reads Config from the environment. Call godotenv.Load first to pick
// up a .env file.
func Load() (Config, error) {
	cfg := Config{
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModels:    providers.SplitModels(os.Getenv("GEMINI_MODELS")),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:   os.Getenv("OPENAI_BASE_URL"),
		OpenAIModels:    providers.SplitModels(os.Getenv("OPENAI_MODELS")),
		OllamaURL:       os.Getenv("OLLAMA_URL"),
		OllamaModels:    providers.SplitModels(os.Getenv("OLLAMA_MODELS")),
		ProviderTimeout: extraction.DefaultTimeout,
		MinConfidence:   resolver.DefaultMinConfidence,
		ThresholdsPath:  os.Getenv("BOOKRESOLVER_THRESHOLDS"),
	}
	if cfg.OllamaURL == "" {
		cfg.OllamaURL = os.Getenv("OLLAMA_HOST")
	}

	if v := os.Getenv("PROVIDER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return cfg, fmt.Errorf("invalid PROVIDER_TIMEOUT %q: must be a positive duration like 15s", v)
		}
		cfg.ProviderTimeout = d
	}

	if v := os.Getenv("PROVIDER_RPS"); v != "" {
		rps, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || rps < 0 {
			return cfg, fmt.Errorf("invalid PROVIDER_RPS %q: must be a non-negative number", v)
		}
		cfg.ProviderRPS = rps
	}

	if v := os.Getenv("MIN_AI_CONFIDENCE"); v != "" {
		c, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || c < 0 || c > 1 {
			return cfg, fmt.Errorf("invalid MIN_AI_CONFIDENCE %q: must be between 0 and 1", v)
		}
		cfg.MinConfidence = c
	}

	return cfg, nil
}

// Registry builds the provider registry in priority order: gemini, openai,
// ollama. Calls are paced when ProviderRPS is set.
func (c Config) Registry() *providers.Registry {
	return providers.NewRegistry(
		gemini.New(c.GeminiAPIKey, c.GeminiModels),
		openai.New(openai.Config{
			APIKey:  c.OpenAIAPIKey,
			BaseURL: c.OpenAIBaseURL,
			Models:  c.OpenAIModels,
			Timeout: c.ProviderTimeout,
		}),
		ollama.New(c.OllamaURL, c.OllamaModels),
	).Paced(providers.NewLimiter(c.ProviderRPS))
}

// Thresholds returns the matcher thresholds, read from ThresholdsPath when set
func (c Config) Thresholds() (matcher.Thresholds, error) {
	if c.ThresholdsPath == "" {
		return matcher.DefaultThresholds(), nil
	}
	return matcher.LoadThresholds(c.ThresholdsPath)
}

// NewResolver wires the provider cascade, the matcher and the resolver together
func (c Config) NewResolver(logger *slog.Logger) (*resolver.Resolver, error) {
	thresholds, err := c.Thresholds()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}

	registry := c.Registry()
	if configured := registry.Configured(); len(configured) == 0 {
		logger.Warn("No AI providers configured, using heuristic extraction only")
	} else {
		logger.Info("AI providers configured", "providers", configured)
	}

	extractor := extraction.NewExtractor(registry,
		extraction.WithTimeout(c.ProviderTimeout),
		extraction.WithLogger(logger),
	)

	return resolver.New(extractor, matcher.New(thresholds),
		resolver.WithMinConfidence(c.MinConfidence),
		resolver.WithLogger(logger),
	), nil
}
