// Package llm holds decorators shared by the summarization backends.
package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/kbrag/internal/core/domain"
	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
)

// Ensure RateLimited implements the interface.
var _ driven.LLMService = (*RateLimited)(nil)

// DefaultBurst is the number of calls allowed back to back before limiting starts.
const DefaultBurst = 1

// RateLimited throttles Generate calls of the wrapped service with a token bucket.
// Ping and Close pass through unthrottled.
type RateLimited struct {
	next    driven.LLMService
	limiter *rate.Limiter
}

// NewRateLimited wraps next so that Generate runs at most requestsPerSecond
// times per second. A burst below one is raised to DefaultBurst.
func NewRateLimited(next driven.LLMService, requestsPerSecond float64, burst int) *RateLimited {
	if burst < 1 {
		burst = DefaultBurst
	}
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Generate waits for a token and then delegates. A wait that cannot finish
// before ctx is done reports domain.ErrLLMUnavailable.
func (r *RateLimited) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: rate limited: %w", domain.ErrLLMUnavailable, err)
	}
	return r.next.Generate(ctx, prompt, opts)
}

// ModelName returns the wrapped model name.
func (r *RateLimited) ModelName() string {
	return r.next.ModelName()
}

// Ping delegates to the wrapped service.
func (r *RateLimited) Ping(ctx context.Context) error {
	return r.next.Ping(ctx)
}

// Close delegates to the wrapped service.
func (r *RateLimited) Close() error {
	return r.next.Close()
}
