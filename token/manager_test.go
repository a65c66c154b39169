package token

import (
	"errors"
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		AccessSecret:  []byte("access-secret-0123456789abcdef"),
		RefreshSecret: []byte("refresh-secret-0123456789abcdef"),
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
		Issuer:        "authkit-test",
	}
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(testConfig())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return m
}

func TestNewManagerValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing access secret", func(c *Config) { c.AccessSecret = nil }},
		{"missing refresh secret", func(c *Config) { c.RefreshSecret = nil }},
		{"equal secrets", func(c *Config) { c.RefreshSecret = append([]byte(nil), c.AccessSecret...) }},
		{"access ttl too short", func(c *Config) { c.AccessTTL = 5 * time.Second }},
		{"refresh ttl too short", func(c *Config) { c.RefreshTTL = 30 * time.Second }},
		{"refresh ttl not above access", func(c *Config) { c.AccessTTL = time.Hour; c.RefreshTTL = time.Hour }},
		{"negative leeway", func(c *Config) { c.Leeway = -time.Second }},
		{"excessive leeway", func(c *Config) { c.Leeway = 3 * time.Minute }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)
			if _, err := NewManager(cfg); err == nil {
				t.Fatal("expected config rejection")
			}
		})
	}
}

func TestAccessRoundTrip(t *testing.T) {
	m := newTestManager(t)

	tok, err := m.IssueAccess("user-1", "alice@example.com")
	if err != nil {
		t.Fatalf("IssueAccess failed: %v", err)
	}

	claims, err := m.ParseAccess(tok)
	if err != nil {
		t.Fatalf("ParseAccess failed: %v", err)
	}
	if claims.Identity() != "user-1" {
		t.Fatalf("expected identity user-1, got %q", claims.Identity())
	}
	if claims.Username != "alice@example.com" {
		t.Fatalf("expected username claim, got %q", claims.Username)
	}
	if claims.TokenType != "" {
		t.Fatalf("access token must not carry a type tag, got %q", claims.TokenType)
	}
}

func TestRefreshRoundTrip(t *testing.T) {
	m := newTestManager(t)

	tok, err := m.IssueRefresh("user-1", "alice@example.com")
	if err != nil {
		t.Fatalf("IssueRefresh failed: %v", err)
	}

	claims, err := m.ParseRefresh(tok)
	if err != nil {
		t.Fatalf("ParseRefresh failed: %v", err)
	}
	if claims.Identity() != "user-1" {
		t.Fatalf("expected identity user-1, got %q", claims.Identity())
	}
	if claims.TokenType != TypeRefresh {
		t.Fatalf("expected refresh type tag, got %q", claims.TokenType)
	}
}

func TestTypeConfusionRejected(t *testing.T) {
	m := newTestManager(t)

	access, err := m.IssueAccess("user-1", "alice@example.com")
	if err != nil {
		t.Fatalf("IssueAccess failed: %v", err)
	}
	refresh, err := m.IssueRefresh("user-1", "alice@example.com")
	if err != nil {
		t.Fatalf("IssueRefresh failed: %v", err)
	}

	if _, err := m.ParseRefresh(access); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("access token accepted on refresh path: %v", err)
	}
	if _, err := m.ParseAccess(refresh); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("refresh token accepted on access path: %v", err)
	}
}

func TestWrongSecretRejected(t *testing.T) {
	m := newTestManager(t)

	other := testConfig()
	other.AccessSecret = []byte("different-access-secret-value!!!")
	other.RefreshSecret = []byte("different-refresh-secret-value!!")
	m2, err := NewManager(other)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	tok, err := m.IssueAccess("user-1", "alice@example.com")
	if err != nil {
		t.Fatalf("IssueAccess failed: %v", err)
	}
	if _, err := m2.ParseAccess(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign secret, got %v", err)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	m := newTestManager(t)

	tok, err := m.issue("user-1", "alice@example.com", "", m.config.AccessSecret, -time.Minute)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := m.ParseAccess(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestGarbageRejected(t *testing.T) {
	m := newTestManager(t)

	for _, tok := range []string{"", "garbage", "a.b.c", "eyJhbGciOiJub25lIn0..e30"} {
		if _, err := m.ParseAccess(tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", tok, err)
		}
	}
}
