package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	authkit "github.com/Hydrex75/authkit"
)

// Memory is an in-process [authkit.CredentialStore] for tests and
// examples. All operations are guarded by a single mutex, so the
// compare-and-swap semantics match the Redis implementation.
type Memory struct {
	mu      sync.Mutex
	byID    map[string]authkit.Record
	byEmail map[string]string
}

// NewMemory creates an empty in-memory credential store.
func NewMemory() *Memory {
	return &Memory{
		byID:    make(map[string]authkit.Record),
		byEmail: make(map[string]string),
	}
}

// Create registers a new credential record.
func (s *Memory) Create(_ context.Context, in CreateInput) (*authkit.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(in.Email)
	if _, exists := s.byEmail[key]; exists {
		return nil, ErrDuplicateEmail
	}

	record := authkit.Record{
		ID:           uuid.NewString(),
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: in.PasswordHash,
		CreatedAt:    time.Now(),
	}
	s.byID[record.ID] = record
	s.byEmail[key] = record.ID
	return &record, nil
}

// Put inserts or replaces a record verbatim, preserving its ID. Test
// seeding helper.
func (s *Memory) Put(record authkit.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[record.ID] = record
	s.byEmail[strings.ToLower(record.Email)] = record.ID
}

// GetByEmail implements [authkit.CredentialStore].
func (s *Memory) GetByEmail(_ context.Context, email string) (*authkit.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, authkit.ErrUserNotFound
	}
	record := s.byID[id]
	return &record, nil
}

// GetByID implements [authkit.CredentialStore].
func (s *Memory) GetByID(_ context.Context, id string) (*authkit.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.byID[id]
	if !ok {
		return nil, authkit.ErrUserNotFound
	}
	return &record, nil
}

// SetRefreshHash implements [authkit.CredentialStore].
func (s *Memory) SetRefreshHash(_ context.Context, id, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.byID[id]
	if !ok {
		return authkit.ErrUserNotFound
	}
	record.RefreshHash = hash
	s.byID[id] = record
	return nil
}

// SwapRefreshHash implements [authkit.CredentialStore].
func (s *Memory) SwapRefreshHash(_ context.Context, id, prev, next string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.byID[id]
	if !ok || record.RefreshHash != prev {
		return false, nil
	}
	record.RefreshHash = next
	s.byID[id] = record
	return true, nil
}

// ClearRefreshHash implements [authkit.CredentialStore].
func (s *Memory) ClearRefreshHash(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.byID[id]
	if !ok {
		return nil
	}
	record.RefreshHash = ""
	s.byID[id] = record
	return nil
}
