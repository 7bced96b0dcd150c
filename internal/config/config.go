// Package config loads the CLI configuration from defaults, config.yaml, a
// .env file and CUR_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/curtools/cur/internal/clipboard"
	"github.com/curtools/cur/internal/logging"
	"github.com/curtools/cur/internal/ratesource"
)

// File names looked up in the config directory.
const (
	ConfigFileName = "config.yaml"
	EnvFileName    = ".env"
)

// defaultCacheDirName is the directory created under the user cache dir.
const defaultCacheDirName = "currency-translator"

// Config is the complete CLI configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Cache   CacheConfig   `yaml:"cache"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig configures the remote rate source.
type APIConfig struct {
	// URL overrides the endpoint root; empty picks the keyed or open endpoint.
	URL     string        `yaml:"url,omitempty"`
	Key     string        `yaml:"key,omitempty"`
	Timeout time.Duration `yaml:"timeout"`
}

// CacheConfig configures the on-disk rate cache.
type CacheConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Directory string `yaml:"directory,omitempty"`
}

// OutputConfig configures what the convert command prints and copies.
type OutputConfig struct {
	Copy       bool   `yaml:"copy"`
	CopyFormat string `yaml:"copy_format"`
}

// LoggingConfig configures diagnostic logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		API: APIConfig{
			Timeout: ratesource.DefaultTimeout,
		},
		Cache: CacheConfig{
			Enabled: true,
		},
		Output: OutputConfig{
			Copy:       true,
			CopyFormat: string(clipboard.FormatDefault),
		},
		Logging: LoggingConfig{
			Level:  logging.DefaultLevel,
			Format: logging.FormatConsole,
		},
	}
}

// Load builds the configuration for dir. Missing files are skipped; a file
// that exists but cannot be parsed is an error.
func Load(dir string) (*Config, error) {
	cfg := New()

	configPath := filepath.Join(dir, ConfigFileName)
	if fileExists(configPath) {
		if err := MergeYAML(cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := LoadDotEnv(filepath.Join(dir, EnvFileName)); err != nil {
		return nil, err
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the values that cannot be corrected silently.
func (c *Config) Validate() error {
	var errs []error

	if c.API.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout))
	}
	if _, err := clipboard.ParseFormat(c.Output.CopyFormat); err != nil {
		errs = append(errs, fmt.Errorf("output.copy_format: %w", err))
	}
	if c.Logging.Level != "" && !logging.ValidLevel(c.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level: unknown level %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "", logging.FormatConsole, logging.FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("logging.format: must be console or json, got %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}

// CacheDir returns the configured cache directory, or the platform default.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Directory != "" {
		return c.Cache.Directory, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user cache directory: %w", err)
	}
	return filepath.Join(base, defaultCacheDirName), nil
}

// RateSource returns the remote source settings.
func (c *Config) RateSource() ratesource.Config {
	return ratesource.Config{
		BaseURL: c.API.URL,
		APIKey:  c.API.Key,
		Timeout: c.API.Timeout,
	}
}

// ToLoggingConfig converts the logging section for the logging package.
// A configured file switches the output to that file; otherwise stderr.
func (lc LoggingConfig) ToLoggingConfig() logging.Config {
	output := logging.OutputStderr
	if lc.File != "" {
		output = logging.OutputFile
	}
	return logging.Config{
		Level:  lc.Level,
		Format: lc.Format,
		Output: output,
		File:   lc.File,
	}
}

// Redacted returns a copy safe to print, with the API key masked.
func (c *Config) Redacted() *Config {
	out := *c
	if out.API.Key != "" {
		out.API.Key = maskValue(out.API.Key)
	}
	return &out
}

func maskValue(v string) string {
	const visible = 4
	if len(v) <= visible*2 {
		return "****"
	}
	return v[:visible] + "****"
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
