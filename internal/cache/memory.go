package cache

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// MemoryStore is an in-process Store. It applies the same corruption policy
// and key sanitization as FileStore so both variants address the same entries.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string][]byte
	logger zerolog.Logger
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := newSettings(opts)
	return &MemoryStore{
		data:   make(map[string][]byte),
		logger: s.logger,
	}
}

// Read returns a copy of the bytes stored under key.
func (s *MemoryStore) Read(key string) ([]byte, error) {
	if key == "" {
		return nil, ErrInvalidCacheKey
	}

	s.mu.RLock()
	data, ok := s.data[SanitizeKey(key)]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrCacheNotFound
	}

	var raw json.RawMessage
	if err := decodeOrEvict(s, key, data, &raw, s.logger); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCacheNotFound, err)
	}

	return append([]byte(nil), data...), nil
}

// Write stores a copy of data under key.
func (s *MemoryStore) Write(key string, data []byte) error {
	if key == "" {
		return ErrInvalidCacheKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[SanitizeKey(key)] = append([]byte(nil), data...)
	return nil
}

// Delete removes key. Missing keys are not an error.
func (s *MemoryStore) Delete(key string) error {
	if key == "" {
		return ErrInvalidCacheKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, SanitizeKey(key))
	return nil
}

// Keys lists the stored keys in their sanitized form.
func (s *MemoryStore) Keys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}
