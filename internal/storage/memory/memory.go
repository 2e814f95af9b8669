package memory

import (
	"context"
	"sync"

	"fintrack/internal/storage"
)

// Store keeps blobs in a map. It is the default backend for tests and for
// throwaway sessions.
type Store struct {
	mu    sync.Mutex
	blobs map[string][]byte

	getErr error
	setErr error
	writes int
}

var _ storage.KV = (*Store)(nil)

func New() *Store {
	return &Store{blobs: map[string][]byte{}}
}

// NewWith returns a store pre-populated with the given blobs.
func NewWith(seed map[string][]byte) *Store {
	s := New()
	for k, v := range seed {
		s.blobs[k] = append([]byte(nil), v...)
	}
	return s
}

// Get returns a copy of the blob stored under key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	b, ok := s.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

// Set replaces the blob stored under key.
func (s *Store) Set(_ context.Context, key string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.blobs[key] = append([]byte(nil), blob...)
	s.writes++
	return nil
}

// FailGets makes every Get return err until called again with nil.
func (s *Store) FailGets(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getErr = err
}

// FailSets makes every Set return err until called again with nil.
func (s *Store) FailSets(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setErr = err
}

// Writes returns the number of successful Set calls.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
