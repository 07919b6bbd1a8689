package emitter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds emitter settings. It can be loaded from YAML and overridden
// by environment variables.
type Config struct {
	// LogLevel is a logrus level name used by the default logger.
	LogLevel string `yaml:"log_level" env:"EMITTER_LOG_LEVEL,overwrite"`
	// EventCacheTTL bounds how long CreateEvent keeps returning the same
	// envelope for identical arguments. Zero disables the cache.
	EventCacheTTL time.Duration `yaml:"event_cache_ttl" env:"EMITTER_EVENT_CACHE_TTL,overwrite"`
	// ForwardPrefix is prepended to event types when bridging to a bus.
	ForwardPrefix string `yaml:"forward_prefix" env:"EMITTER_FORWARD_PREFIX,overwrite"`
}

// DefaultConfig returns the configuration New uses when none is given.
func DefaultConfig() Config {
	return Config{
		LogLevel:      logrus.InfoLevel.String(),
		EventCacheTTL: time.Second,
	}
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	if c.EventCacheTTL < 0 {
		return fmt.Errorf("invalid event cache ttl %s: must not be negative", c.EventCacheTTL)
	}

	return nil
}

// LoadConfig reads the YAML file at path, if any, on top of DefaultConfig
// and then applies environment overrides.
func LoadConfig(ctx context.Context, path string) (Config, error) {
	config := DefaultConfig()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return Config{}, err
		}
		defer file.Close()

		if err := yaml.NewDecoder(file).Decode(&config); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	if err := envconfig.Process(ctx, &config); err != nil {
		return Config{}, err
	}

	return config, config.Validate()
}
