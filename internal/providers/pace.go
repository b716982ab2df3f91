package providers

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// NewLimiter returns a limiter allowing perSecond calls with no burst, or
// nil when perSecond <= 0.
func NewLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

// Paced returns a provider that waits on limiter before every Generate call.
// A nil limiter returns p unchanged.
func Paced(p Provider, limiter *rate.Limiter) Provider {
	if p == nil || limiter == nil {
		return p
	}
	return &pacedProvider{Provider: p, limiter: limiter}
}

type pacedProvider struct {
	Provider
	limiter *rate.Limiter
}

func (p *pacedProvider) Generate(ctx context.Context, config Config) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait for %s: %w", p.Name(), err)
	}
	return p.Provider.Generate(ctx, config)
}

// Paced wraps every registered provider with one shared limiter
func (r *Registry) Paced(limiter *rate.Limiter) *Registry {
	if limiter == nil {
		return r
	}
	ps := r.Providers()
	for i, p := range ps {
		ps[i] = Paced(p, limiter)
	}
	return NewRegistry(ps...)
}
