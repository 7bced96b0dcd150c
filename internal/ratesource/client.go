// Package ratesource fetches exchange rate snapshots from the remote source
// and serves them through a cache keyed by base currency.
package ratesource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/curtools/cur/internal/cache"
	"github.com/curtools/cur/internal/currency"
	"github.com/curtools/cur/internal/logging"
	"github.com/curtools/cur/internal/metrics"
)

// Default endpoints. The keyed endpoint is used whenever an API key is set.
const (
	KeyedBaseURL = "https://v6.exchangerate-api.com/v6"
	OpenBaseURL  = "https://open.er-api.com/v6"

	DefaultTimeout = 10 * time.Second

	// maxResponseBytes bounds how much of a response body is read.
	maxResponseBytes = 1 << 20
)

// SnapshotCache is the part of cache.RateCache the client needs.
type SnapshotCache interface {
	Load(key string, v any) error
	Set(key string, payload json.RawMessage, expiryUnix int64) error
	Delete(key string) error
}

// Config holds the remote source settings.
type Config struct {
	// BaseURL overrides the endpoint root. Empty selects KeyedBaseURL or
	// OpenBaseURL depending on APIKey.
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client built from Config.Timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMetrics records fetch counts and durations on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// Client answers rate lookups from the cache, fetching a fresh snapshot from
// the remote source at most once per base currency per cache lifetime.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cache      SnapshotCache
	metrics    *metrics.Metrics
}

// NewClient creates a Client that stores snapshots in snapshots.
func NewClient(cfg Config, snapshots SnapshotCache, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = OpenBaseURL
		if cfg.APIKey != "" {
			baseURL = KeyedBaseURL
		}
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		cache:      snapshots,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetRate returns how many units of target one unit of base buys.
func (c *Client) GetRate(ctx context.Context, base, target currency.Currency) (float64, error) {
	snap, err := c.Snapshot(ctx, base)
	if err != nil {
		return 0, err
	}
	return snap.Rate(target.Code())
}

// Snapshot returns the rates for base, from the cache when a live entry
// exists and from the remote source otherwise.
func (c *Client) Snapshot(ctx context.Context, base currency.Currency) (*Snapshot, error) {
	key := base.Code()
	logger := logging.FromContext(ctx).With().
		Str("component", "ratesource").
		Str("base", key).
		Logger()

	if snap, ok := c.cached(key, logger); ok {
		return snap, nil
	}

	snap, err := c.fetch(ctx, key, logger)
	if err != nil {
		return nil, err
	}

	c.store(key, snap, logger)
	return snap, nil
}

// cached returns the live snapshot stored under key, if any.
func (c *Client) cached(key string, logger zerolog.Logger) (*Snapshot, bool) {
	var snap Snapshot
	err := c.cache.Load(key, &snap)
	switch {
	case errors.Is(err, cache.ErrCacheNotFound):
		return nil, false
	case err != nil:
		logger.Warn().Err(err).Msg("cache read failed, fetching from source")
		return nil, false
	}

	if snap.BaseCode != key {
		logger.Warn().Str("base_code", snap.BaseCode).Msg("cached snapshot has wrong base, evicting")
		if delErr := c.cache.Delete(key); delErr != nil {
			logger.Warn().Err(delErr).Msg("failed to evict cached snapshot")
		}
		return nil, false
	}

	logger.Debug().Time("next_update", snap.NextUpdate()).Msg("using cached rates")
	return &snap, true
}

// store caches snap until the source's next update. A failed write is
// logged; the fetched snapshot is still returned to the caller.
func (c *Client) store(key string, snap *Snapshot, logger zerolog.Logger) {
	payload, err := json.Marshal(snap)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to encode snapshot for cache")
		return
	}
	if setErr := c.cache.Set(key, payload, snap.TimeNextUpdateUnix); setErr != nil {
		logger.Warn().Err(setErr).Msg("failed to cache snapshot")
	}
}

// fetch performs one GET against the remote source.
func (c *Client) fetch(ctx context.Context, key string, logger zerolog.Logger) (*Snapshot, error) {
	start := time.Now()
	snap, outcome, err := c.doFetch(ctx, key)
	c.metrics.FetchCompleted(key, outcome, time.Since(start))

	if err != nil {
		logger.Debug().Err(err).Str("outcome", outcome).Msg("fetch failed")
		return nil, err
	}

	logger.Debug().
		Dur("duration", time.Since(start)).
		Int("rates", len(snap.ConversionRates)).
		Time("next_update", snap.NextUpdate()).
		Msg("fetched rates")
	return snap, nil
}

func (c *Client) doFetch(ctx context.Context, key string) (*Snapshot, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.latestURL(key), nil)
	if err != nil {
		return nil, metrics.OutcomeTransportError, fmt.Errorf("%w: creating request for %s: %w", ErrTransport, key, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, metrics.OutcomeTransportError, fmt.Errorf("%w: %s: %w", ErrTransport, key, redact(err, c.apiKey))
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, metrics.OutcomeTransportError, fmt.Errorf("%w: %s: status %d", ErrTransport, key, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, metrics.OutcomeTransportError, fmt.Errorf("%w: reading %s response: %w", ErrTransport, key, err)
	}

	var snap Snapshot
	if decodeErr := json.Unmarshal(body, &snap); decodeErr != nil {
		return nil, metrics.OutcomeDecodeError, fmt.Errorf("%w: %s: %w", ErrDecode, key, decodeErr)
	}
	if snap.Failed() {
		return nil, metrics.OutcomeTransportError, fmt.Errorf("%w: %s: source reported %s", ErrTransport, key, errorType(&snap))
	}
	if validateErr := snap.Validate(); validateErr != nil {
		return nil, metrics.OutcomeDecodeError, fmt.Errorf("%w: %s: %w", ErrDecode, key, validateErr)
	}
	if snap.BaseCode != key {
		return nil, metrics.OutcomeDecodeError, fmt.Errorf("%w: requested %s, got base_code %s", ErrDecode, key, snap.BaseCode)
	}

	return &snap, metrics.OutcomeSuccess, nil
}

// latestURL builds the latest-rates URL for base.
func (c *Client) latestURL(base string) string {
	if c.apiKey != "" {
		return c.baseURL + "/" + c.apiKey + "/latest/" + base
	}
	return c.baseURL + "/latest/" + base
}

func errorType(s *Snapshot) string {
	if s.ErrorType == "" {
		return s.Result
	}
	return s.ErrorType
}

// redact hides the API key in err's message, since transport errors quote
// the URL. The original error stays reachable through Unwrap.
func redact(err error, apiKey string) error {
	if apiKey == "" || !strings.Contains(err.Error(), apiKey) {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(err.Error(), apiKey, "<redacted>"), err: err}
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }

func (e *redactedError) Unwrap() error { return e.err }
