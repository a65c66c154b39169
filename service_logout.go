package authkit

import (
	"context"
	"errors"
)

// Logout describes the logout operation and its observable behavior.
//
// Logout may return an error when input validation, dependency calls, or security checks fail.
// Logout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Service) Logout(ctx context.Context, identity string) error {
	if s == nil || s.store == nil {
		return ErrServiceNotReady
	}
	if identity == "" {
		return ErrUnauthorized
	}

	// Clearing an absent hash is a success: logout is idempotent and a
	// repeated call observes the same terminal state.
	if err := s.store.ClearRefreshHash(ctx, identity); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil
		}
		return err
	}

	s.metricInc(MetricLogout)
	s.metricInc(MetricSessionCleared)
	s.emitAudit(ctx, auditEventLogout, true, identity, nil, nil)

	return nil
}
