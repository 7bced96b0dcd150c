package cache

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/curtools/cur/internal/metrics"
)

// Option configures stores and caches created by this package.
type Option func(*settings)

type settings struct {
	logger  zerolog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func newSettings(opts []Option) settings {
	s := settings{
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithLogger sets the logger used for eviction and hit/miss events.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithMetrics records cache lookups and evictions on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *settings) { s.metrics = m }
}

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}
