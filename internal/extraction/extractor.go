// Package extraction asks the configured AI providers, in priority order, to
// pull a book title out of raw OCR text.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lehigh-university-libraries/bookresolver/internal/models"
	"github.com/lehigh-university-libraries/bookresolver/internal/providers"
)

var (
	ErrTextTooShort       = errors.New("text too short")
	ErrNoTitle            = errors.New("no title found")
	ErrNoModel            = errors.New("no working model")
	ErrAllProvidersFailed = errors.New("all providers failed")
)

const (
	// NoTitleSentinel is what models are told to answer when the text has no title
	NoTitleSentinel = "NO_TITLE_FOUND"

	// SystemPrompt is sent to providers that accept a system message
	SystemPrompt = "You are a book title extraction expert. Your task is to identify and extract only the book title from OCR text, ignoring all other text like author names, publishers, descriptions, or irrelevant content."

	promptTemplate = `Extract the book title from this OCR text. Return ONLY the book title, nothing else. If no clear book title is found, return "NO_TITLE_FOUND".

OCR Text:
%s

Book Title:`

	probePrompt = "Hello"

	DefaultTimeout     = 15 * time.Second
	DefaultTemperature = 0.1
	DefaultMaxTokens   = 100

	minTextLength = 3
)

// Extractor runs the provider cascade
type Extractor struct {
	registry    *providers.Registry
	timeout     time.Duration
	temperature float64
	maxTokens   int
	logger      *slog.Logger
}

// Option configures an Extractor
type Option func(*Extractor)

// WithTimeout bounds every individual provider call
func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLogger sets the logger; nil keeps slog.Default()
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewExtractor returns an extractor that tries the registry's providers in order
func NewExtractor(registry *providers.Registry, opts ...Option) *Extractor {
	e := &Extractor{
		registry:    registry,
		timeout:     DefaultTimeout,
		temperature: DefaultTemperature,
		maxTokens:   DefaultMaxTokens,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// strategy is one step of the cascade
type strategy struct {
	name string
	run  func(ctx context.Context, text string) (string, error)
}

// Extract returns the first title any provider produces. It never returns an
// error; failures are reported through ExtractionResult.Error.
func (e *Extractor) Extract(ctx context.Context, rawText string) models.ExtractionResult {
	text := strings.TrimSpace(rawText)
	if utf8.RuneCountInString(text) < minTextLength {
		return models.ExtractionResult{Error: ErrTextTooShort.Error()}
	}

	for _, s := range e.strategies() {
		if ctx.Err() != nil {
			e.logger.Debug("extraction cancelled", "provider", s.name, "err", ctx.Err())
			break
		}

		title, err := e.attempt(ctx, s, text)
		if err != nil {
			if errors.Is(err, providers.ErrUnconfigured) {
				e.logger.Debug("skipping provider", "provider", s.name, "err", err)
			} else {
				e.logger.Warn("provider failed", "provider", s.name, "err", err)
			}
			continue
		}

		confidence := ScoreConfidence(title)
		e.logger.Info("extracted title", "provider", s.name, "title", title, "confidence", confidence)
		return models.ExtractionResult{
			Title:      title,
			Confidence: confidence,
			Source:     models.Source(s.name),
		}
	}

	return models.ExtractionResult{Error: ErrAllProvidersFailed.Error()}
}

func (e *Extractor) strategies() []strategy {
	var out []strategy
	for _, p := range e.registry.Providers() {
		out = append(out, strategy{name: p.Name(), run: e.providerStrategy(p)})
	}
	return out
}

// attempt runs one strategy and turns a panic into that strategy's failure
func (e *Extractor) attempt(ctx context.Context, s strategy, text string) (title string, err error) {
	defer func() {
		if r := recover(); r != nil {
			title = ""
			err = fmt.Errorf("provider %s panicked: %v", s.name, r)
		}
	}()
	return s.run(ctx, text)
}

func (e *Extractor) providerStrategy(p providers.Provider) func(context.Context, string) (string, error) {
	return func(ctx context.Context, text string) (string, error) {
		if !p.Configured() {
			return "", providers.ErrUnconfigured
		}

		model, err := e.selectModel(ctx, p)
		if err != nil {
			return "", err
		}

		callCtx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()

		resp, err := p.Generate(callCtx, providers.Config{
			Model:       model,
			Temperature: e.temperature,
			MaxTokens:   e.maxTokens,
			System:      SystemPrompt,
			Prompt:      fmt.Sprintf(promptTemplate, text),
		})
		if err != nil {
			return "", fmt.Errorf("failed to generate with %s: %w", model, err)
		}

		title := strings.TrimSpace(resp)
		if title == "" || title == NoTitleSentinel {
			return "", ErrNoTitle
		}
		return title, nil
	}
}

// selectModel probes the provider's candidate models in order and returns
// the first one that answers.
func (e *Extractor) selectModel(ctx context.Context, p providers.Provider) (string, error) {
	listCtx, cancel := context.WithTimeout(ctx, e.timeout)
	candidates, err := p.ListModels(listCtx)
	cancel()
	if err != nil {
		return "", fmt.Errorf("failed to list models: %w", err)
	}

	for _, model := range candidates {
		probeCtx, cancel := context.WithTimeout(ctx, e.timeout)
		_, err := p.Generate(probeCtx, providers.Config{Model: model, Prompt: probePrompt})
		cancel()
		if err == nil {
			e.logger.Debug("selected model", "provider", p.Name(), "model", model)
			return model, nil
		}
		e.logger.Debug("model probe failed", "provider", p.Name(), "model", model, "err", err)
	}

	return "", ErrNoModel
}

// ScoreConfidence rates how much an extracted title can be trusted
func ScoreConfidence(title string) float64 {
	n := utf8.RuneCountInString(title)
	switch {
	case n < 3:
		return 0.4
	case n > 100:
		return 0.6
	case strings.Contains(title, " ") && n > 5:
		return 0.9
	default:
		return 0.8
	}
}
