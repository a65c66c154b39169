package authkit

import (
	"context"
	"io"
	"time"

	internalaudit "github.com/Hydrex75/authkit/internal/audit"
)

// Record is the full credential record exchanged with a [CredentialStore].
// It carries the password hash and the stored refresh-token hash; neither
// field ever leaves the authentication core.
type Record struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	// RefreshHash is the hex SHA-256 of the currently active refresh
	// token. Empty means no active session.
	RefreshHash string
	CreatedAt   time.Time
}

// User is the stripped, caller-safe view of a [Record]: hash fields
// removed.
type User struct {
	ID    string
	Email string
	Name  string
}

// Stripped returns the caller-safe view of the record.
func (r Record) Stripped() User {
	return User{ID: r.ID, Email: r.Email, Name: r.Name}
}

// Principal is the authenticated caller identity attached to a request
// context by the access-token guard.
type Principal struct {
	ID    string
	Email string
	Name  string
}

// TokenPair is an issued access/refresh token pair. ExpiresIn echoes the
// configured access-token TTL in seconds so clients know when to refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// LoginResult is returned by [Service.Login].
type LoginResult struct {
	User User
	TokenPair
}

// CredentialStore is the narrow contract this core holds against the
// external user-management collaborator. Lookups return the full record
// including hash fields; mutation is limited to the stored refresh-token
// hash.
//
// Implementations must map a missing record to [ErrUserNotFound] and
// backend faults to [ErrStoreUnavailable] (wrapped is fine).
type CredentialStore interface {
	// GetByEmail looks up a record by email, case-insensitively.
	GetByEmail(ctx context.Context, email string) (*Record, error)
	// GetByID looks up a record by identity.
	GetByID(ctx context.Context, id string) (*Record, error)
	// SetRefreshHash unconditionally overwrites the stored refresh-token
	// hash (login path).
	SetRefreshHash(ctx context.Context, id, hash string) error
	// SwapRefreshHash replaces the stored refresh-token hash with next
	// only if it still equals prev. It reports whether the swap was
	// applied; a false return means another writer rotated first.
	SwapRefreshHash(ctx context.Context, id, prev, next string) (bool, error)
	// ClearRefreshHash removes the stored refresh-token hash. Clearing an
	// already-cleared or unknown identity is a no-op success.
	ClearRefreshHash(ctx context.Context, id string) error
}

// AuditEvent is a structured audit record emitted by the service.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the service's audit
// dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer], one object per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
