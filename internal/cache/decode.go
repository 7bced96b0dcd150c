package cache

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
)

// validator is implemented by decoded values with required fields.
type validator interface {
	Validate() error
}

// deleter is the part of Store needed to evict an entry.
type deleter interface {
	Delete(key string) error
}

// decodeOrEvict unmarshals data into v and, when v is a validator, checks it.
// On failure the entry is deleted from d and an error wrapping ErrCorruptEntry
// is returned. Store reads, envelope reads and payload reads all recover from
// corruption through this function.
func decodeOrEvict(d deleter, key string, data []byte, v any, logger zerolog.Logger) error {
	err := json.Unmarshal(data, v)
	if err == nil {
		if val, ok := v.(validator); ok {
			err = val.Validate()
		}
	}
	if err == nil {
		return nil
	}

	logger.Warn().
		Str("component", "cache").
		Str("key", key).
		Err(err).
		Msg("evicting corrupt cache entry")

	if delErr := d.Delete(key); delErr != nil {
		logger.Warn().
			Str("component", "cache").
			Str("key", key).
			Err(delErr).
			Msg("failed to evict corrupt cache entry")
	}

	return fmt.Errorf("%w %q: %w", ErrCorruptEntry, key, err)
}
