package provider

import (
	"context"
	"fmt"

	"github.com/aretw0/boardgen/pkg/domain"
	"github.com/aretw0/boardgen/pkg/ports"
	"golang.org/x/time/rate"
)

// RateLimited throttles calls to the wrapped provider.
type RateLimited struct {
	next    ports.ContentProvider
	limiter *rate.Limiter
}

// NewRateLimited allows perMinute calls per minute with a burst of one.
// A non-positive perMinute disables limiting.
func NewRateLimited(next ports.ContentProvider, perMinute int) *RateLimited {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Limit(float64(perMinute) / 60.0)
	}
	return &RateLimited{next: next, limiter: rate.NewLimiter(limit, 1)}
}

// Generate waits for a token, then delegates.
func (p *RateLimited) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		// The wait would outlive the context deadline.
		return "", &domain.TransientProviderError{Err: fmt.Errorf("rate limit: %w", err)}
	}
	return p.next.Generate(ctx, req)
}
