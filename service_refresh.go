package authkit

import (
	"context"
	"crypto/subtle"
	"errors"
)

// Refresh describes the refresh operation and its observable behavior.
//
// Refresh may return an error when input validation, dependency calls, or security checks fail.
// Refresh does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if s == nil || s.tokens == nil {
		return nil, ErrServiceNotReady
	}

	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		s.metricInc(MetricRefreshFailure)
		s.metricInc(MetricTokenRejected)
		s.emitAudit(ctx, auditEventRefreshInvalid, false, "", ErrUnauthorized, nil)
		return nil, ErrUnauthorized
	}
	identity := claims.Identity()

	record, err := s.store.GetByID(ctx, identity)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.metricInc(MetricRefreshFailure)
			s.emitAudit(ctx, auditEventRefreshInvalid, false, identity, ErrUnauthorized, func() map[string]string {
				return map[string]string{
					"reason": "subject_gone",
				}
			})
			return nil, ErrUnauthorized
		}
		s.metricInc(MetricRefreshFailure)
		return nil, err
	}

	presented := hashToken(refreshToken)
	if record.RefreshHash == "" || !hashEqual(presented, record.RefreshHash) {
		// Structurally valid token that is not the active session: either
		// it was rotated out already or logout cleared the session.
		s.metricInc(MetricRefreshFailure)
		s.metricInc(MetricRefreshReuseRejected)
		s.emitAudit(ctx, auditEventRefreshReuseDenied, false, identity, ErrAccessDenied, nil)
		return nil, ErrAccessDenied
	}

	access, err := s.tokens.IssueAccess(identity, record.Email)
	if err != nil {
		s.metricInc(MetricRefreshFailure)
		return nil, ErrConfiguration
	}
	next, err := s.tokens.IssueRefresh(identity, record.Email)
	if err != nil {
		s.metricInc(MetricRefreshFailure)
		return nil, ErrConfiguration
	}

	swapped, err := s.store.SwapRefreshHash(ctx, identity, presented, hashToken(next))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.metricInc(MetricRefreshFailure)
			return nil, ErrUnauthorized
		}
		s.metricInc(MetricRefreshFailure)
		return nil, err
	}
	if !swapped {
		// A concurrent rotation or logout won the race. Exactly one caller
		// per stored hash may rotate.
		s.metricInc(MetricRefreshFailure)
		s.metricInc(MetricRefreshReuseRejected)
		s.emitAudit(ctx, auditEventRefreshReuseDenied, false, identity, ErrAccessDenied, func() map[string]string {
			return map[string]string{
				"reason": "lost_swap_race",
			}
		})
		return nil, ErrAccessDenied
	}

	s.metricInc(MetricRefreshSuccess)
	s.emitAudit(ctx, auditEventRefreshSuccess, true, identity, nil, nil)

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: next,
		ExpiresIn:    s.config.Token.AccessTTLSeconds,
	}, nil
}

// CheckRefresh verifies a refresh token without rotating it: signature,
// expiry, type tag, and match against the stored session hash. Gate
// layers use it to separate malformed tokens (ErrUnauthorized) from
// rotated-out ones (ErrAccessDenied) before the service is invoked.
func (s *Service) CheckRefresh(ctx context.Context, refreshToken string) (string, error) {
	if s == nil || s.tokens == nil {
		return "", ErrServiceNotReady
	}

	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return "", ErrUnauthorized
	}
	identity := claims.Identity()

	record, err := s.store.GetByID(ctx, identity)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrUnauthorized
		}
		return "", err
	}

	if record.RefreshHash == "" || !hashEqual(hashToken(refreshToken), record.RefreshHash) {
		return "", ErrAccessDenied
	}

	return identity, nil
}

func hashEqual(a, b string) bool {
	return len(a) == len(b) && subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
