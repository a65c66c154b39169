package authkit

import (
	"context"
	"errors"
	"time"
)

// Authenticate describes the authenticate operation and its observable behavior.
//
// Authenticate may return an error when input validation, dependency calls, or security checks fail.
// Authenticate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*Principal, error) {
	if s == nil || s.tokens == nil {
		return nil, ErrServiceNotReady
	}

	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.Observe(MetricAuthenticateLatency, time.Since(start))
		}
	}()

	claims, err := s.tokens.ParseAccess(accessToken)
	if err != nil {
		s.metricInc(MetricTokenRejected)
		s.emitAudit(ctx, auditEventTokenRejected, false, "", ErrUnauthorized, nil)
		return nil, ErrUnauthorized
	}
	identity := claims.Identity()

	// Re-fetch so a deleted account invalidates outstanding access tokens
	// immediately instead of at expiry.
	record, err := s.store.GetByID(ctx, identity)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.metricInc(MetricTokenRejected)
			s.emitAudit(ctx, auditEventTokenRejected, false, identity, ErrUnauthorized, func() map[string]string {
				return map[string]string{
					"reason": "subject_gone",
				}
			})
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	s.emitAudit(ctx, auditEventAuthenticateSuccess, true, identity, nil, nil)

	return &Principal{
		ID:    record.ID,
		Email: record.Email,
		Name:  record.Name,
	}, nil
}
