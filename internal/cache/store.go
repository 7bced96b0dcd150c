package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// cacheFileExtension is the file extension used for cache entries.
const cacheFileExtension = ".json"

// Common cache errors.
var (
	ErrCacheNotFound   = errors.New("cache entry not found")
	ErrCorruptEntry    = errors.New("corrupt cache entry")
	ErrInvalidCacheKey = errors.New("cache key cannot be empty")
)

// Store is the byte-oriented storage behind RateCache.
//
// Keys are addressed by their sanitized form (see SanitizeKey), so keys that
// differ only in path separators share one entry and Keys lists sanitized
// names. Read returns ErrCacheNotFound when no value is stored under key.
// Values that are not valid JSON are deleted and reported as an error
// matching both ErrCacheNotFound and ErrCorruptEntry.
type Store interface {
	Read(key string) ([]byte, error)
	Write(key string, data []byte) error
	Delete(key string) error
	Keys() ([]string, error)
}

// FileStore stores each key as <sanitized key>.json inside a directory.
// Writes go through a temporary file and a rename so readers never observe a
// partially written value.
type FileStore struct {
	// directory is the cache directory path.
	directory string

	logger zerolog.Logger

	// mu protects concurrent access to file operations.
	mu sync.RWMutex
}

// NewFileStore creates a file store rooted at directory.
// The directory will be created if it doesn't exist.
func NewFileStore(directory string, opts ...Option) (*FileStore, error) {
	if directory == "" {
		return nil, errors.New("cache directory cannot be empty")
	}

	if err := os.MkdirAll(directory, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	s := newSettings(opts)
	return &FileStore{
		directory: directory,
		logger:    s.logger,
	}, nil
}

// Read returns the bytes stored under key.
func (s *FileStore) Read(key string) ([]byte, error) {
	if key == "" {
		return nil, ErrInvalidCacheKey
	}

	s.mu.RLock()
	data, err := os.ReadFile(s.keyToFilePath(key))
	s.mu.RUnlock()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCacheNotFound
		}
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	var raw json.RawMessage
	if decodeErr := decodeOrEvict(s, key, data, &raw, s.logger); decodeErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrCacheNotFound, decodeErr)
	}

	return data, nil
}

// Write stores data under key, replacing any previous value.
func (s *FileStore) Write(key string, data []byte) error {
	if key == "" {
		return ErrInvalidCacheKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	filePath := s.keyToFilePath(key)

	// Write to temporary file first, then rename for atomicity
	tmp, err := os.CreateTemp(s.directory, filepath.Base(filePath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary cache file: %w", err)
	}
	tempPath := tmp.Name()

	if _, writeErr := tmp.Write(data); writeErr != nil {
		_ = tmp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to write cache file: %w", writeErr)
	}
	if closeErr := tmp.Close(); closeErr != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to write cache file: %w", closeErr)
	}

	if renameErr := os.Rename(tempPath, filePath); renameErr != nil {
		_ = os.Remove(tempPath) // Clean up temp file on error
		return fmt.Errorf("failed to rename cache file: %w", renameErr)
	}

	return nil
}

// Delete removes a cache entry by key.
// Returns nil if the entry doesn't exist (idempotent).
func (s *FileStore) Delete(key string) error {
	if key == "" {
		return ErrInvalidCacheKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.keyToFilePath(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cache file: %w", err)
	}

	return nil
}

// Keys lists the stored keys in their sanitized form.
// Temporary files from in-flight writes are not listed.
func (s *FileStore) Keys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != cacheFileExtension {
			continue
		}
		keys = append(keys, strings.TrimSuffix(entry.Name(), cacheFileExtension))
	}

	return keys, nil
}

// Directory returns the cache directory path.
func (s *FileStore) Directory() string {
	return s.directory
}

// Path returns the file that holds key.
func (s *FileStore) Path(key string) string {
	return s.keyToFilePath(key)
}

// keyToFilePath converts a cache key to a file path.
func (s *FileStore) keyToFilePath(key string) string {
	return filepath.Join(s.directory, SanitizeKey(key)+cacheFileExtension)
}

// SanitizeKey replaces path separators so key can be used as a file name.
func SanitizeKey(key string) string {
	safeKey := strings.ReplaceAll(key, "/", "_")
	return strings.ReplaceAll(safeKey, "\\", "_")
}
