package authkit

import (
	"crypto/subtle"
	"errors"
	"time"
)

// Config defines a public type used by authkit APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Token    TokenConfig
	Password PasswordConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
	Security SecurityConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig carries the two independent signing secrets and their TTLs.
// Two secrets bound to two expiries mean a compromised access-token secret
// cannot forge long-lived refresh tokens, and vice versa.
type TokenConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	// AccessTTLSeconds is the access-token lifetime in whole seconds.
	// Must be >= 10.
	AccessTTLSeconds int
	// RefreshTTLSeconds is the refresh-token lifetime in whole seconds.
	// Must be >= 60 and greater than AccessTTLSeconds.
	RefreshTTLSeconds int
	Issuer            string
	LeewaySeconds     int
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig defines a public type used by authkit APIs.
//
// PasswordConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// AuditConfig defines a public type used by authkit APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by authkit APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// SecurityConfig defines a public type used by authkit APIs.
//
// SecurityConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SecurityConfig struct {
	// ProductionMode tightens validation and suppresses error detail in
	// client-facing responses.
	ProductionMode bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the baseline configuration. Signing secrets are
// deliberately absent: a Service cannot be built without them.
func DefaultConfig() Config {
	return Config{
		Token: TokenConfig{
			AccessTTLSeconds:  3600,
			RefreshTTLSeconds: 7 * 24 * 3600,
			LeewaySeconds:     0,
		},
		Password: PasswordConfig{
			Memory:      65536,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
		Security: SecurityConfig{
			ProductionMode: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.AccessSecret = cloneBytes(cfg.Token.AccessSecret)
	out.Token.RefreshSecret = cloneBytes(cfg.Token.RefreshSecret)
	return out
}

func secondsToDuration(s int) time.Duration {
	return time.Duration(s) * time.Second
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// Token
	if len(c.Token.AccessSecret) == 0 {
		return errors.New("Token AccessSecret is required")
	}
	if len(c.Token.RefreshSecret) == 0 {
		return errors.New("Token RefreshSecret is required")
	}
	if len(c.Token.AccessSecret) == len(c.Token.RefreshSecret) &&
		subtle.ConstantTimeCompare(c.Token.AccessSecret, c.Token.RefreshSecret) == 1 {
		return errors.New("Token AccessSecret and RefreshSecret must differ")
	}
	if c.Token.AccessTTLSeconds < 10 {
		return errors.New("Token AccessTTLSeconds must be >= 10")
	}
	if c.Token.RefreshTTLSeconds < 60 {
		return errors.New("Token RefreshTTLSeconds must be >= 60")
	}
	if c.Token.RefreshTTLSeconds <= c.Token.AccessTTLSeconds {
		return errors.New("Token RefreshTTLSeconds must exceed AccessTTLSeconds")
	}
	if c.Token.LeewaySeconds < 0 || c.Token.LeewaySeconds > 120 {
		return errors.New("Token LeewaySeconds must be between 0 and 120")
	}

	// Password
	if c.Password.Memory < 8*1024 {
		return errors.New("Password Memory must be >= 8192 KB")
	}
	if c.Password.Time < 1 {
		return errors.New("Password Time must be >= 1")
	}
	if c.Password.Parallelism < 1 {
		return errors.New("Password Parallelism must be >= 1")
	}
	if c.Password.SaltLength < 16 {
		return errors.New("Password SaltLength must be >= 16")
	}
	if c.Password.KeyLength < 16 {
		return errors.New("Password KeyLength must be >= 16")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	if c.Security.ProductionMode {
		if c.Token.AccessTTLSeconds > 3600 {
			return errors.New("ProductionMode requires Token AccessTTLSeconds <= 3600")
		}
		if c.Token.RefreshTTLSeconds > 30*24*3600 {
			return errors.New("ProductionMode requires Token RefreshTTLSeconds <= 30d")
		}
		if len(c.Token.AccessSecret) < 32 || len(c.Token.RefreshSecret) < 32 {
			return errors.New("ProductionMode requires signing secrets >= 256 bits")
		}
		if c.Password.Memory < 64*1024 {
			return errors.New("ProductionMode requires Password Memory >= 65536 KB")
		}
		if c.Password.Time < 2 {
			return errors.New("ProductionMode requires Password Time >= 2")
		}
		if c.Password.KeyLength < 32 {
			return errors.New("ProductionMode requires Password KeyLength >= 32")
		}
	}

	return nil
}
