package authkit

import (
	internalaudit "github.com/Hydrex75/authkit/internal/audit"
	"github.com/Hydrex75/authkit/password"
	"github.com/Hydrex75/authkit/token"
)

// Service defines a public type used by authkit APIs.
//
// Service instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Service struct {
	config  Config
	store   CredentialStore
	hasher  *password.Hasher
	tokens  *token.Manager
	audit   *internalaudit.Dispatcher
	metrics *Metrics
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Service) Close() {
	if s == nil {
		return
	}
	if s.audit != nil {
		s.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Service) AuditDropped() uint64 {
	if s == nil || s.audit == nil {
		return 0
	}
	return s.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Service) MetricsSnapshot() MetricsSnapshot {
	if s == nil || s.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return s.metrics.Snapshot()
}

// AccessTTLSeconds reports the configured access-token lifetime. Clients
// receive the same value as expires_in on every issued pair.
func (s *Service) AccessTTLSeconds() int {
	if s == nil {
		return 0
	}
	return s.config.Token.AccessTTLSeconds
}

// ProductionMode reports whether client-facing error detail should be
// suppressed.
func (s *Service) ProductionMode() bool {
	if s == nil {
		return false
	}
	return s.config.Security.ProductionMode
}

func (s *Service) metricInc(id MetricID) {
	if s == nil || s.metrics == nil {
		return
	}
	s.metrics.Inc(id)
}
