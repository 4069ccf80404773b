package llm

import (
	"context"

	"golang.org/x/time/rate"
)

type limitedCompleter struct {
	limiter  *rate.Limiter
	provider Completer
}

// NewLimitedCompleter throttles calls to p. A nil limiter passes calls straight through.
func NewLimitedCompleter(l *rate.Limiter, p Completer) Completer {
	if l == nil {
		return p
	}
	return &limitedCompleter{
		limiter:  l,
		provider: p,
	}
}

// NewRateLimiter returns a limiter for perSecond requests, or nil when perSecond <= 0.
func NewRateLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

func (p *limitedCompleter) Complete(ctx context.Context, req ChatRequest) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return p.provider.Complete(ctx, req)
}
