package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Top-level YAML config key names.
const (
	keyAPI     = "api"
	keyCache   = "cache"
	keyOutput  = "output"
	keyLogging = "logging"
)

// MergeYAML loads a YAML file and merges each known top-level section onto
// target. Keys absent from a section keep their current value; unknown
// top-level keys are ignored.
func MergeYAML(target *Config, path string) error {
	if target == nil {
		return errors.New("nil target *Config in MergeYAML")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	// Discover which top-level keys are present.
	var overlay map[string]yaml.Node
	if err = yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parsing config YAML from %s: %w", path, err)
	}

	// An empty or comment-only file leaves overlay nil.
	for key, node := range overlay {
		section := sectionFor(target, key)
		if section == nil {
			continue
		}
		if err = node.Decode(section); err != nil {
			return fmt.Errorf("applying config section %q from %s: %w", key, path, err)
		}
	}

	return nil
}

// sectionFor returns a pointer to the section of target named key, or nil.
func sectionFor(target *Config, key string) any {
	switch key {
	case keyAPI:
		return &target.API
	case keyCache:
		return &target.Cache
	case keyOutput:
		return &target.Output
	case keyLogging:
		return &target.Logging
	default:
		return nil
	}
}
