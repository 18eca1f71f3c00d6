// Package config loads the voicebridge service configuration from a
// YAML file.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/haivivi/voicebridge/pkg/callfsm"
	"github.com/haivivi/voicebridge/pkg/dialer"
)

// Config is the full service configuration.
type Config struct {
	// Listen is the media server bind address.
	Listen string `yaml:"listen"`

	// BridgeSecret authenticates telephony media connections. Empty
	// disables authentication.
	BridgeSecret string `yaml:"bridge_secret"`

	Log      LogConfig      `yaml:"log"`
	Realtime RealtimeConfig `yaml:"realtime"`
	Store    StoreConfig    `yaml:"store"`
	Dialer   dialer.Config  `yaml:"dialer"`
	Call     callfsm.Config `yaml:"call"`
}

// LogConfig selects log output.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// RealtimeConfig points at the AI service.
type RealtimeConfig struct {
	URL          string `yaml:"url"`
	APIKey       string `yaml:"api_key"`
	APIKeyEnv    string `yaml:"api_key_env"`
	Model        string `yaml:"model"`
	Voice        string `yaml:"voice"`
	Instructions string `yaml:"instructions"`

	// Audio format on the AI leg.
	Encoding     string `yaml:"encoding"`
	SampleRateHz int    `yaml:"sample_rate_hz"`
}

// Key resolves the API key, preferring the literal value over the
// environment indirection.
func (c RealtimeConfig) Key() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	if c.APIKeyEnv != "" {
		return os.Getenv(c.APIKeyEnv)
	}
	return os.Getenv("VOICEBRIDGE_REALTIME_KEY")
}

// StoreConfig selects the session store backend.
type StoreConfig struct {
	// Dir is the on-disk store location. Empty with InMemory false is
	// an error for commands that need the store.
	Dir      string `yaml:"dir"`
	InMemory bool   `yaml:"in_memory"`
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a configuration with every optional field filled.
func Default() *Config {
	return &Config{
		Listen: ":8080",
		Log:    LogConfig{Level: "info", Format: "text"},
		Realtime: RealtimeConfig{
			Encoding:     "pcm16",
			SampleRateHz: 24000,
		},
	}
}

func (c *Config) validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	if c.Realtime.SampleRateHz <= 0 {
		return errors.New("config: realtime.sample_rate_hz must be positive")
	}
	return nil
}
