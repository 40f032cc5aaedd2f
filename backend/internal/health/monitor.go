// Package health tracks reachability of the primary graph backend with a
// TTL-bounded cached verdict shared process-wide.
package health

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"socialmesh/backend/pkg/logger"
)

// Prober performs a single connectivity check against the primary backend
type Prober interface {
	Probe(ctx context.Context) error
}

// DriverProber probes a Neo4j driver's connectivity
type DriverProber struct {
	driver neo4j.DriverWithContext
}

// NewDriverProber creates a prober backed by the given Neo4j driver
func NewDriverProber(driver neo4j.DriverWithContext) *DriverProber {
	return &DriverProber{driver: driver}
}

// Probe verifies connectivity to the Neo4j backend
func (p *DriverProber) Probe(ctx context.Context) error {
	return p.driver.VerifyConnectivity(ctx)
}

// Monitor caches the backend health verdict for a TTL window. Concurrent
// callers during the same window observe the identical cached verdict, and
// concurrent re-probes collapse into a single probe.
type Monitor struct {
	prober       Prober
	ttl          time.Duration
	probeTimeout time.Duration
	logger       *zap.Logger

	now   func() time.Time
	group singleflight.Group

	mu          sync.Mutex
	verdict     bool
	lastChecked time.Time
}

// NewMonitor creates a health monitor. The verdict cache starts expired so the
// first IsHealthy call probes.
func NewMonitor(prober Prober, ttl, probeTimeout time.Duration) *Monitor {
	return &Monitor{
		prober:       prober,
		ttl:          ttl,
		probeTimeout: probeTimeout,
		logger:       logger.Get(),
		now:          time.Now,
	}
}

// IsHealthy returns the cached verdict if it is younger than the TTL,
// otherwise re-probes. It never returns an error; any probe failure is an
// unhealthy verdict.
func (m *Monitor) IsHealthy(ctx context.Context) bool {
	m.mu.Lock()
	if !m.lastChecked.IsZero() && m.now().Sub(m.lastChecked) < m.ttl {
		verdict := m.verdict
		m.mu.Unlock()
		return verdict
	}
	m.mu.Unlock()

	verdict, _, _ := m.group.Do("probe", func() (interface{}, error) {
		return m.probe(ctx), nil
	})
	return verdict.(bool)
}

// probe runs the connectivity check under the probe timeout and caches the
// outcome. Timeout and protocol errors are logged distinctly for operators.
func (m *Monitor) probe(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, m.probeTimeout)
	defer cancel()

	err := m.prober.Probe(probeCtx)
	healthy := err == nil

	switch {
	case err == nil:
		m.logger.Debug("graph backend probe succeeded")
	case errors.Is(err, context.DeadlineExceeded):
		m.logger.Warn("graph backend probe timed out",
			zap.Duration("timeout", m.probeTimeout),
		)
	default:
		m.logger.Warn("graph backend probe failed",
			zap.Error(err),
		)
	}

	m.mu.Lock()
	m.verdict = healthy
	m.lastChecked = m.now()
	m.mu.Unlock()

	return healthy
}
