package reconciliation

import (
	"context"
	"errors"
	"fmt"

	"collection-reconciler/core/reconcile"

	"go.uber.org/zap"
)

// ErrUnknownCollection is returned for a collection that is not configured.
var ErrUnknownCollection = errors.New("unknown collection")

// Service runs reconciliations for the HTTP API.
type Service struct {
	engine *reconcile.Engine
	specs  []reconcile.CollectionSpec
	index  map[string]reconcile.CollectionSpec
	logger *zap.Logger
}

// NewService creates a new reconciliation service.
func NewService(engine *reconcile.Engine, specs []reconcile.CollectionSpec, logger *zap.Logger) *Service {
	index := make(map[string]reconcile.CollectionSpec, len(specs))
	for _, spec := range specs {
		index[spec.Name] = spec
	}
	return &Service{engine: engine, specs: specs, index: index, logger: logger}
}

// Collections returns the configured collections in order.
func (s *Service) Collections() []reconcile.CollectionSpec {
	return s.specs
}

// Reconcile reconciles one collection. With refresh set, any cached
// snapshot is dropped first.
func (s *Service) Reconcile(ctx context.Context, name string, refresh bool) (*reconcile.Result, error) {
	spec, ok := s.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, name)
	}
	if refresh {
		s.engine.Invalidate(spec)
	}
	return s.engine.ReconcileCollection(ctx, spec)
}

// ReconcileMany reconciles the named collections, or all of them when names
// is empty. Results follow configuration order.
func (s *Service) ReconcileMany(ctx context.Context, names []string) ([]*reconcile.Result, error) {
	specs := s.specs
	if len(names) > 0 {
		wanted := make(map[string]struct{}, len(names))
		for _, n := range names {
			if _, ok := s.index[n]; !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, n)
			}
			wanted[n] = struct{}{}
		}
		specs = make([]reconcile.CollectionSpec, 0, len(wanted))
		for _, spec := range s.specs {
			if _, ok := wanted[spec.Name]; ok {
				specs = append(specs, spec)
			}
		}
	}
	return s.engine.ReconcileAll(ctx, specs)
}

// Health pings both databases.
func (s *Service) Health(ctx context.Context) error {
	return s.engine.Ping(ctx)
}
