package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"
)

// Envelope errors returned by Validate.
var (
	errMissingData   = errors.New("envelope is missing data")
	errMissingExpiry = errors.New("envelope is missing expiry_unix")
)

// Envelope pairs a cached payload with the instant it stops being valid.
// It is the exact JSON shape persisted for every key.
type Envelope struct {
	// Data is the cached value (JSON-serializable).
	Data json.RawMessage `json:"data"`

	// ExpiryUnix is the absolute expiry instant in seconds since the epoch.
	ExpiryUnix int64 `json:"expiry_unix"`
}

// NewEnvelope wraps data with an absolute expiry instant.
func NewEnvelope(data json.RawMessage, expiryUnix int64) *Envelope {
	return &Envelope{Data: data, ExpiryUnix: expiryUnix}
}

// Validate reports whether both envelope fields are present.
func (e *Envelope) Validate() error {
	trimmed := bytes.TrimSpace(e.Data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return errMissingData
	}
	if e.ExpiryUnix == 0 {
		return errMissingExpiry
	}
	return nil
}

// IsExpiredAt reports whether the envelope is expired at now. Expiry is
// inclusive: an envelope expiring at second T is already expired at T.
func (e *Envelope) IsExpiredAt(now time.Time) bool {
	return now.Unix() >= e.ExpiryUnix
}

// IsExpired checks the envelope against the current wall clock.
func (e *Envelope) IsExpired() bool {
	return e.IsExpiredAt(time.Now())
}

// ExpiresAt returns the expiry instant as a time.Time.
func (e *Envelope) ExpiresAt() time.Time {
	return time.Unix(e.ExpiryUnix, 0)
}

// TimeUntilExpiration returns the duration until the envelope expires at now.
// Returns 0 if already expired.
func (e *Envelope) TimeUntilExpiration(now time.Time) time.Duration {
	remaining := e.ExpiresAt().Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}
