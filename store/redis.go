package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	authkit "github.com/Hydrex75/authkit"
)

// ErrDuplicateEmail is returned by Create when the email is already
// registered.
var ErrDuplicateEmail = errors.New("email already registered")

const (
	swapStatusNotFound int64 = 0
	swapStatusMismatch int64 = 1
	swapStatusSwapped  int64 = 2
)

const (
	fieldEmail        = "email"
	fieldName         = "name"
	fieldPasswordHash = "password_hash"
	fieldRefreshHash  = "refresh_hash"
	fieldCreatedAt    = "created_at"
)

// createScript registers a record and its email index atomically. The
// email index is the uniqueness guard.
const createScript = `
if redis.call("EXISTS", KEYS[1]) == 1 then
  return 0
end
redis.call("SET", KEYS[1], ARGV[1])
redis.call("HSET", KEYS[2],
  "email", ARGV[2],
  "name", ARGV[3],
  "password_hash", ARGV[4],
  "refresh_hash", "",
  "created_at", ARGV[5])
return 1
`

var createLua = redis.NewScript(createScript)

// setRefreshScript overwrites the refresh hash only for an existing
// record; the core never creates records implicitly.
const setRefreshScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
redis.call("HSET", KEYS[1], "refresh_hash", ARGV[1])
return 1
`

var setRefreshLua = redis.NewScript(setRefreshScript)

// swapRefreshScript is the compare-and-swap at the heart of refresh
// rotation: the new hash is written only if the stored hash still equals
// the one the caller just verified against. Exactly one of any set of
// concurrent refreshes can win.
const swapRefreshScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
local current = redis.call("HGET", KEYS[1], "refresh_hash")
if current ~= ARGV[1] then
  return 1
end
redis.call("HSET", KEYS[1], "refresh_hash", ARGV[2])
return 2
`

var swapRefreshLua = redis.NewScript(swapRefreshScript)

// clearRefreshScript is a no-op for unknown identities so logout stays
// idempotent without creating stray keys.
const clearRefreshScript = `
if redis.call("EXISTS", KEYS[1]) == 1 then
  redis.call("HSET", KEYS[1], "refresh_hash", "")
end
return 1
`

var clearRefreshLua = redis.NewScript(clearRefreshScript)

// Redis is a [authkit.CredentialStore] backed by a Redis hash per record
// plus an email index key.
//
//	Key layout: <prefix>:user:<id> (HSET), <prefix>:email:<lower(email)> (SET -> id)
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis creates a Redis-backed credential store. prefix defaults to
// "ak" when empty.
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "ak"
	}
	return &Redis{client: client, prefix: prefix}
}

func (s *Redis) userKey(id string) string {
	return s.prefix + ":user:" + id
}

func (s *Redis) emailKey(email string) string {
	return s.prefix + ":email:" + strings.ToLower(email)
}

// CreateInput is the input for [Redis.Create].
type CreateInput struct {
	Email        string
	Name         string
	PasswordHash string
}

// Create registers a new credential record. It belongs to the external
// user-management collaborator's contract; the authentication service
// itself never calls it.
func (s *Redis) Create(ctx context.Context, in CreateInput) (*authkit.Record, error) {
	if strings.TrimSpace(in.Email) == "" {
		return nil, errors.New("email is required")
	}

	id := uuid.NewString()
	now := time.Now()
	res, err := createLua.Run(
		ctx,
		s.client,
		[]string{s.emailKey(in.Email), s.userKey(id)},
		id,
		in.Email,
		in.Name,
		in.PasswordHash,
		now.Unix(),
	).Int64()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", authkit.ErrStoreUnavailable, err)
	}
	if res == 0 {
		return nil, ErrDuplicateEmail
	}

	return &authkit.Record{
		ID:           id,
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: in.PasswordHash,
		CreatedAt:    now,
	}, nil
}

// GetByEmail implements [authkit.CredentialStore].
func (s *Redis) GetByEmail(ctx context.Context, email string) (*authkit.Record, error) {
	id, err := s.client.Get(ctx, s.emailKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, authkit.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", authkit.ErrStoreUnavailable, err)
	}
	return s.GetByID(ctx, id)
}

// GetByID implements [authkit.CredentialStore].
func (s *Redis) GetByID(ctx context.Context, id string) (*authkit.Record, error) {
	fields, err := s.client.HGetAll(ctx, s.userKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", authkit.ErrStoreUnavailable, err)
	}
	if len(fields) == 0 {
		return nil, authkit.ErrUserNotFound
	}

	record := &authkit.Record{
		ID:           id,
		Email:        fields[fieldEmail],
		Name:         fields[fieldName],
		PasswordHash: fields[fieldPasswordHash],
		RefreshHash:  fields[fieldRefreshHash],
	}
	if raw := fields[fieldCreatedAt]; raw != "" {
		if sec, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
			record.CreatedAt = time.Unix(sec, 0)
		}
	}
	return record, nil
}

// SetRefreshHash implements [authkit.CredentialStore].
func (s *Redis) SetRefreshHash(ctx context.Context, id, hash string) error {
	res, err := setRefreshLua.Run(ctx, s.client, []string{s.userKey(id)}, hash).Int64()
	if err != nil {
		return fmt.Errorf("%w: %v", authkit.ErrStoreUnavailable, err)
	}
	if res == 0 {
		return authkit.ErrUserNotFound
	}
	return nil
}

// SwapRefreshHash implements [authkit.CredentialStore]. It reports false
// when the stored hash no longer equals prev, which includes the
// record-deleted case.
func (s *Redis) SwapRefreshHash(ctx context.Context, id, prev, next string) (bool, error) {
	res, err := swapRefreshLua.Run(ctx, s.client, []string{s.userKey(id)}, prev, next).Int64()
	if err != nil {
		return false, fmt.Errorf("%w: %v", authkit.ErrStoreUnavailable, err)
	}
	switch res {
	case swapStatusSwapped:
		return true, nil
	case swapStatusNotFound, swapStatusMismatch:
		return false, nil
	default:
		return false, fmt.Errorf("%w: unexpected swap status %d", authkit.ErrStoreUnavailable, res)
	}
}

// ClearRefreshHash implements [authkit.CredentialStore]. Clearing an
// unknown or already-cleared identity is a no-op success.
func (s *Redis) ClearRefreshHash(ctx context.Context, id string) error {
	if err := clearRefreshLua.Run(ctx, s.client, []string{s.userKey(id)}).Err(); err != nil {
		return fmt.Errorf("%w: %v", authkit.ErrStoreUnavailable, err)
	}
	return nil
}
