package authkit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

// ValidateCredentials describes the validatecredentials operation and its observable behavior.
//
// ValidateCredentials may return an error when input validation, dependency calls, or security checks fail.
// ValidateCredentials does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Service) ValidateCredentials(ctx context.Context, email, plaintext string) (*User, error) {
	if s == nil || s.hasher == nil {
		return nil, ErrServiceNotReady
	}
	if email == "" || plaintext == "" {
		return nil, ErrInvalidCredentials
	}

	record, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Unknown email collapses into the generic failure so callers
			// cannot probe for registered addresses.
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if record.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(plaintext, record.PasswordHash)
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}

	user := record.Stripped()
	return &user, nil
}

// Login describes the login operation and its observable behavior.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Service) Login(ctx context.Context, email, plaintext string) (*LoginResult, error) {
	if s == nil || s.tokens == nil {
		return nil, ErrServiceNotReady
	}

	user, err := s.ValidateCredentials(ctx, email, plaintext)
	if err != nil {
		s.metricInc(MetricLoginFailure)
		s.emitAudit(ctx, auditEventLoginFailure, false, "", err, func() map[string]string {
			return map[string]string{
				"identifier": email,
			}
		})
		return nil, err
	}

	pair, err := s.issueTokenPair(ctx, user.ID, user.Email)
	if err != nil {
		s.metricInc(MetricLoginFailure)
		s.emitAudit(ctx, auditEventLoginFailure, false, user.ID, err, nil)
		return nil, err
	}

	s.metricInc(MetricLoginSuccess)
	s.metricInc(MetricSessionStarted)
	s.emitAudit(ctx, auditEventLoginSuccess, true, user.ID, nil, nil)

	return &LoginResult{User: *user, TokenPair: *pair}, nil
}

// issueTokenPair signs a fresh access/refresh pair for the identity and
// persists the refresh-token hash, unconditionally replacing whatever
// session was active before.
func (s *Service) issueTokenPair(ctx context.Context, id, email string) (*TokenPair, error) {
	access, err := s.tokens.IssueAccess(id, email)
	if err != nil {
		return nil, fmt.Errorf("%w: access token signing failed", ErrConfiguration)
	}
	refresh, err := s.tokens.IssueRefresh(id, email)
	if err != nil {
		return nil, fmt.Errorf("%w: refresh token signing failed", ErrConfiguration)
	}

	if err := s.store.SetRefreshHash(ctx, id, hashToken(refresh)); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Record deleted between lookup and persist.
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    s.config.Token.AccessTTLSeconds,
	}, nil
}

// hashToken is the stored form of a refresh token. The plaintext token
// never touches the store.
func hashToken(tokenStr string) string {
	sum := sha256.Sum256([]byte(tokenStr))
	return hex.EncodeToString(sum[:])
}
