package store

import (
	"context"

	"go.uber.org/zap"
	"socialmesh/backend/pkg/logger"
)

// HealthChecker reports whether the primary graph backend is reachable
type HealthChecker interface {
	IsHealthy(ctx context.Context) bool
}

// Selector routes each operation to the graph backend while it is healthy and
// to the fallback backend otherwise. It is stateless; every call re-evaluates.
type Selector struct {
	checker  HealthChecker
	graph    Store
	fallback Store
	logger   *zap.Logger
}

// NewSelector creates a new backend selector
func NewSelector(checker HealthChecker, graph, fallback Store) *Selector {
	return &Selector{
		checker:  checker,
		graph:    graph,
		fallback: fallback,
		logger:   logger.Get(),
	}
}

// Pick returns the backend to use for a single operation
func (s *Selector) Pick(ctx context.Context) Store {
	if s.checker.IsHealthy(ctx) {
		return s.graph
	}
	s.logger.Debug("graph backend unhealthy, routing to fallback store")
	return s.fallback
}

// Graph returns the primary graph adapter regardless of health
func (s *Selector) Graph() Store {
	return s.graph
}

// Fallback returns the fallback adapter regardless of health
func (s *Selector) Fallback() Store {
	return s.fallback
}

// Healthy reports the current health verdict for the graph backend
func (s *Selector) Healthy(ctx context.Context) bool {
	return s.checker.IsHealthy(ctx)
}
