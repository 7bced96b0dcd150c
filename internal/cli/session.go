package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/curtools/cur/internal/cache"
	"github.com/curtools/cur/internal/config"
	"github.com/curtools/cur/internal/logging"
	"github.com/curtools/cur/internal/metrics"
	"github.com/curtools/cur/internal/ratesource"
)

// session holds what one invocation builds from configuration: the cache,
// the rate client and the metrics they report to.
type session struct {
	opts options

	configDir string
	cfg       *config.Config
	cacheDir  string
	logResult logging.LogPathResult
	logger    zerolog.Logger

	metrics *metrics.Metrics
	store   cache.Store
	rates   *cache.RateCache
	client  *ratesource.Client
}

// open loads configuration, applies flag overrides and wires the cache and
// rate client.
func (s *session) open(cmd *cobra.Command) error {
	configDir, err := config.GetConfigDir()
	if err != nil {
		return err
	}
	cfg, err := config.Load(configDir)
	if err != nil {
		return err
	}

	applyLoggingFlags(cmd, cfg)
	if err = applyCacheFlags(cmd, cfg); err != nil {
		return err
	}
	if err = cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	s.configDir = configDir
	s.cfg = cfg
	s.logResult = setupLogging(cmd, cfg)
	s.logger = s.logResult.Logger
	s.metrics = metrics.New()

	if err = s.openCache(); err != nil {
		return err
	}

	clientOpts := []ratesource.Option{ratesource.WithMetrics(s.metrics)}
	if s.opts.httpClient != nil {
		clientOpts = append(clientOpts, ratesource.WithHTTPClient(s.opts.httpClient))
	}
	s.client = ratesource.NewClient(cfg.RateSource(), s.rates, clientOpts...)
	return nil
}

// openCache picks the file store, or a memory store when caching is off.
func (s *session) openCache() error {
	cacheLogger := logging.ComponentLogger(s.logger, "cache")
	cacheOpts := []cache.Option{cache.WithLogger(cacheLogger), cache.WithMetrics(s.metrics)}

	if !s.cfg.Cache.Enabled {
		s.store = cache.NewMemoryStore(cacheOpts...)
		s.rates = cache.NewRateCache(s.store, cacheOpts...)
		return nil
	}

	dir, err := s.cfg.CacheDir()
	if err != nil {
		return err
	}
	store, err := cache.NewFileStore(dir, cacheOpts...)
	if err != nil {
		return err
	}

	s.cacheDir = dir
	s.store = store
	s.rates = cache.NewRateCache(store, cacheOpts...)
	return nil
}

// close exports metrics when requested and releases the log file.
func (s *session) close(cmd *cobra.Command) error {
	if path, _ := cmd.Flags().GetString("metrics-file"); path != "" {
		if err := s.metrics.WriteTextfile(path); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	return s.logResult.Close()
}

// applyCacheFlags lets --cache-dir and --no-cache override the config.
func applyCacheFlags(cmd *cobra.Command, cfg *config.Config) error {
	if dir, _ := cmd.Flags().GetString("cache-dir"); dir != "" {
		cfg.Cache.Directory = dir
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return err
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	return nil
}
