package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// envOverrides lists the CUR_* variables. Tags carry the full variable name
// so envconfig does not fall back to unprefixed names. Pointer fields stay nil
// when the variable is unset so configured values survive.
type envOverrides struct {
	APIKey       string         `envconfig:"CUR_API_KEY"`
	APIURL       string         `envconfig:"CUR_API_URL"`
	APITimeout   *time.Duration `envconfig:"CUR_API_TIMEOUT"`
	CacheDir     string         `envconfig:"CUR_CACHE_DIR"`
	CacheEnabled *bool          `envconfig:"CUR_CACHE_ENABLED"`
	LogLevel     string         `envconfig:"CUR_LOG_LEVEL"`
	LogFormat    string         `envconfig:"CUR_LOG_FORMAT"`
	LogFile      string         `envconfig:"CUR_LOG_FILE"`
	CopyFormat   string         `envconfig:"CUR_COPY_FORMAT"`
}

// LoadDotEnv loads variables from path into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading %s: %w", path, err)
}

// ApplyEnv overlays the CUR_* environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}

	setString(&cfg.API.Key, env.APIKey)
	setString(&cfg.API.URL, env.APIURL)
	if env.APITimeout != nil {
		cfg.API.Timeout = *env.APITimeout
	}
	setString(&cfg.Cache.Directory, env.CacheDir)
	if env.CacheEnabled != nil {
		cfg.Cache.Enabled = *env.CacheEnabled
	}
	setString(&cfg.Logging.Level, env.LogLevel)
	setString(&cfg.Logging.Format, env.LogFormat)
	setString(&cfg.Logging.File, env.LogFile)
	setString(&cfg.Output.CopyFormat, env.CopyFormat)
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
