// Package ratelimit wraps a CompletionService with a client-side token bucket
// so bursts of fragment prompts stay under the provider's request quota.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

// Ensure Service implements the interface.
var _ driven.CompletionService = (*Service)(nil)

// DefaultBurst lets the seven analysis fragments start together.
const DefaultBurst = 7

// Service limits the rate of Complete calls on the wrapped service.
type Service struct {
	next    driven.CompletionService
	limiter *rate.Limiter
}

// New wraps next with a limiter allowing requestsPerMinute calls. A
// non-positive rate disables limiting.
func New(next driven.CompletionService, requestsPerMinute int) *Service {
	limit := rate.Inf
	if requestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(requestsPerMinute))
	}
	return &Service{
		next:    next,
		limiter: rate.NewLimiter(limit, DefaultBurst),
	}
}

// Complete waits for a token, then delegates. A wait that cannot finish
// before the context deadline is reported as ErrRateLimited.
func (s *Service) Complete(ctx context.Context, prompt string, opts driven.CompletionOptions) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
	}
	return s.next.Complete(ctx, prompt, opts)
}

// ModelName returns the wrapped service's model name.
func (s *Service) ModelName() string {
	return s.next.ModelName()
}

// Ping delegates without consuming a token.
func (s *Service) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

// Close closes the wrapped service.
func (s *Service) Close() error {
	return s.next.Close()
}
