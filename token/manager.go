package token

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TypeRefresh is the token_type claim value carried by refresh tokens.
const TypeRefresh = "refresh"

// ErrInvalidToken is returned for any token that fails verification:
// bad signature, expired, malformed, or wrong token type.
var ErrInvalidToken = errors.New("invalid token")

// Config defines a public type used by authkit APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Leeway        time.Duration
}

// Claims is the decoded token payload. Identity travels in the registered
// Subject claim; Username carries the account email. TokenType is set only
// on refresh tokens.
type Claims struct {
	Username  string `json:"username,omitempty"`
	TokenType string `json:"token_type,omitempty"`
	jwt.RegisteredClaims
}

// Identity returns the subject claim.
func (c *Claims) Identity() string {
	return c.Subject
}

// Manager mints and verifies access and refresh tokens. The two token
// kinds are signed with independent secrets bound to independent TTLs, so
// a compromised access secret cannot forge long-lived refresh tokens and
// vice versa.
//
// Manager instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Manager struct {
	config Config
}

// NewManager validates cfg and returns a ready Manager.
//
// NewManager may return an error when input validation, dependency calls, or security checks fail.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.AccessSecret) == 0 {
		return nil, errors.New("access secret is required")
	}
	if len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("refresh secret is required")
	}
	if len(cfg.AccessSecret) == len(cfg.RefreshSecret) &&
		subtle.ConstantTimeCompare(cfg.AccessSecret, cfg.RefreshSecret) == 1 {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if cfg.AccessTTL < 10*time.Second {
		return nil, errors.New("access TTL must be >= 10s")
	}
	if cfg.RefreshTTL < time.Minute {
		return nil, errors.New("refresh TTL must be >= 60s")
	}
	if cfg.RefreshTTL <= cfg.AccessTTL {
		return nil, errors.New("refresh TTL must exceed access TTL")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}

	return &Manager{config: cfg}, nil
}

// AccessTTL returns the configured access-token lifetime.
func (m *Manager) AccessTTL() time.Duration {
	return m.config.AccessTTL
}

// IssueAccess mints a signed access token for the given identity/email.
func (m *Manager) IssueAccess(identity, email string) (string, error) {
	return m.issue(identity, email, "", m.config.AccessSecret, m.config.AccessTTL)
}

// IssueRefresh mints a signed refresh token, tagged with
// token_type=refresh and signed with the refresh secret.
func (m *Manager) IssueRefresh(identity, email string) (string, error) {
	return m.issue(identity, email, TypeRefresh, m.config.RefreshSecret, m.config.RefreshTTL)
}

func (m *Manager) issue(identity, email, kind string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Username:  email,
		TokenType: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.config.Issuer,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseAccess verifies signature and expiry against the access secret and
// returns the decoded claims. Any failure is reported as
// [ErrInvalidToken]; verification never panics.
func (m *Manager) ParseAccess(tokenStr string) (*Claims, error) {
	claims, err := m.parse(tokenStr, m.config.AccessSecret)
	if err != nil {
		return nil, err
	}
	// A refresh token must never pass as an access token even though it
	// carries a subject.
	if claims.TokenType != "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ParseRefresh verifies signature and expiry against the refresh secret
// and requires the refresh token_type tag.
func (m *Manager) ParseRefresh(tokenStr string) (*Claims, error) {
	claims, err := m.parse(tokenStr, m.config.RefreshSecret)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TypeRefresh {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (m *Manager) parse(tokenStr string, secret []byte) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	parsed, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
