package services

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
	"github.com/custodia-labs/lexis/internal/core/ports/driving"
)

// Ensure HealthService implements the interface.
var _ driving.HealthService = (*HealthService)(nil)

// Health statuses.
const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)

var errNotConfigured = errors.New("not configured")

// pingTimeout bounds each liveness check.
const pingTimeout = 5 * time.Second

// HealthService pings the embedding and completion collaborators.
type HealthService struct {
	embedding  driven.EmbeddingService
	completion driven.CompletionService
}

// NewHealthService creates a new health service. Either service may be nil,
// which reports that component as down.
func NewHealthService(embedding driven.EmbeddingService, completion driven.CompletionService) *HealthService {
	return &HealthService{embedding: embedding, completion: completion}
}

// Check pings every collaborator concurrently.
func (s *HealthService) Check(ctx context.Context) domain.HealthReport {
	components := []struct {
		name string
		svc  pinger
	}{
		{domain.ComponentEmbedding, s.embedding},
		{domain.ComponentCompletion, s.completion},
	}

	errs := make([]error, len(components))
	var g errgroup.Group
	for i, c := range components {
		g.Go(func() error {
			errs[i] = ping(ctx, c.svc)
			return nil
		})
	}
	_ = g.Wait()

	report := domain.HealthReport{
		Components: make(map[string]bool, len(components)),
		Details:    make(map[string]string),
	}
	for i, c := range components {
		report.Components[c.name] = errs[i] == nil
		if errs[i] != nil {
			report.Details[c.name] = errs[i].Error()
		}
	}

	report.Status = StatusDegraded
	if report.Healthy() {
		report.Status = StatusHealthy
	}
	return report
}

type pinger interface {
	Ping(ctx context.Context) error
}

func ping(ctx context.Context, svc pinger) error {
	if svc == nil {
		return errNotConfigured
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return svc.Ping(pingCtx)
}
