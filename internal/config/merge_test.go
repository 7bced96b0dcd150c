package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curtools/cur/internal/config"
)

// writeOverlay is a test helper that writes YAML content to a temp file
// and returns its path.
func writeOverlay(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "overlay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestMergeYAML_SingleSection(t *testing.T) {
	target := config.New()
	overlay := writeOverlay(t, `
api:
  key: abc123
  timeout: 3s
`)

	require.NoError(t, config.MergeYAML(target, overlay))

	assert.Equal(t, "abc123", target.API.Key)
	assert.Equal(t, 3*time.Second, target.API.Timeout)

	// Other sections are unchanged.
	assert.True(t, target.Cache.Enabled)
	assert.Equal(t, "default", target.Output.CopyFormat)
	assert.Equal(t, "warn", target.Logging.Level)
}

func TestMergeYAML_PartialSectionKeepsDefaults(t *testing.T) {
	target := config.New()
	overlay := writeOverlay(t, `
cache:
  directory: /tmp/rates
output:
  copy_format: short
`)

	require.NoError(t, config.MergeYAML(target, overlay))

	assert.Equal(t, "/tmp/rates", target.Cache.Directory)
	assert.True(t, target.Cache.Enabled)
	assert.Equal(t, "short", target.Output.CopyFormat)
	assert.True(t, target.Output.Copy)
}

func TestMergeYAML_AllSections(t *testing.T) {
	target := config.New()
	overlay := writeOverlay(t, `
api:
  url: http://localhost:8080/v6
cache:
  enabled: false
output:
  copy: false
logging:
  level: debug
  format: json
  file: /tmp/cur.log
`)

	require.NoError(t, config.MergeYAML(target, overlay))

	assert.Equal(t, "http://localhost:8080/v6", target.API.URL)
	assert.False(t, target.Cache.Enabled)
	assert.False(t, target.Output.Copy)
	assert.Equal(t, config.LoggingConfig{Level: "debug", Format: "json", File: "/tmp/cur.log"}, target.Logging)
}

func TestMergeYAML_EmptyAndUnknown(t *testing.T) {
	t.Run("empty file", func(t *testing.T) {
		target := config.New()
		require.NoError(t, config.MergeYAML(target, writeOverlay(t, "")))
		assert.Equal(t, config.New(), target)
	})

	t.Run("comments only", func(t *testing.T) {
		target := config.New()
		require.NoError(t, config.MergeYAML(target, writeOverlay(t, "# nothing here\n")))
		assert.Equal(t, config.New(), target)
	})

	t.Run("unknown keys ignored", func(t *testing.T) {
		target := config.New()
		require.NoError(t, config.MergeYAML(target, writeOverlay(t, "plugins:\n  foo: bar\n")))
		assert.Equal(t, config.New(), target)
	})
}

func TestMergeYAML_Errors(t *testing.T) {
	t.Run("nil target", func(t *testing.T) {
		err := config.MergeYAML(nil, "unused")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nil target")
	})

	t.Run("missing file", func(t *testing.T) {
		err := config.MergeYAML(config.New(), filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading config file")
	})

	t.Run("invalid YAML", func(t *testing.T) {
		err := config.MergeYAML(config.New(), writeOverlay(t, "api: [unclosed"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing config YAML")
	})

	t.Run("wrong type in section", func(t *testing.T) {
		err := config.MergeYAML(config.New(), writeOverlay(t, "cache:\n  enabled: sometimes\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"cache"`)
	})
}
