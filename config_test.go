package emitter

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "emitter.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
event_cache_ttl: 250ms
forward_prefix: "app."
`)

	config, err := LoadConfig(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, 250*time.Millisecond, config.EventCacheTTL)
	assert.Equal(t, "app.", config.ForwardPrefix)
}

func TestLoadConfigEmptyFile(t *testing.T) {
	config, err := LoadConfig(context.Background(), writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeConfig(t, "log_level: debug\n")
	t.Setenv("EMITTER_LOG_LEVEL", "warn")
	t.Setenv("EMITTER_EVENT_CACHE_TTL", "2s")

	config, err := LoadConfig(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "warn", config.LogLevel)
	assert.Equal(t, 2*time.Second, config.EventCacheTTL)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(context.Background(), filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)

	_, err = LoadConfig(context.Background(), writeConfig(t, "log_level: [oops"))
	assert.Error(t, err)

	_, err = LoadConfig(context.Background(), writeConfig(t, "log_level: loud\n"))
	assert.ErrorContains(t, err, "invalid log level")
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	config := DefaultConfig()
	config.EventCacheTTL = -time.Second
	assert.Error(t, config.Validate())
}
