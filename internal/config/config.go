package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/fwpublish/internal/foundation/errors"
)

// DefaultPath is the configuration file looked up when --config is not given.
const DefaultPath = "fwpublish.yaml"

const (
	DefaultNotifySubject = "fwpublish.published"
	DefaultWatchDebounce = 500 * time.Millisecond
)

// Config holds the optional settings around publishing. The destination
// layout (build/firmware_latest.bin) is fixed and is not configurable.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Manifest ManifestConfig `yaml:"manifest"`
	Notify   NotifyConfig   `yaml:"notify"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Watch    WatchConfig    `yaml:"watch"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level,omitempty"`
	Format LogFormat `yaml:"format,omitempty"`
}

// ManifestConfig controls the firmware_latest.json sidecar.
type ManifestConfig struct {
	Enabled *bool `yaml:"enabled,omitempty"`
}

// IsEnabled reports whether the manifest should be written; defaults to true.
func (m ManifestConfig) IsEnabled() bool {
	return m.Enabled == nil || *m.Enabled
}

// NotifyConfig configures the NATS publish notification. Empty URL disables it.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// Enabled reports whether a notification target is configured.
func (n NotifyConfig) Enabled() bool {
	return n.NATSURL != ""
}

// MetricsConfig configures the node-exporter textfile dump.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce,omitempty"`
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads configPath, expanding ${VAR} references after loading .env files.
// A missing file is not an error: defaults are returned.
func Load(configPath string) (*Config, error) {
	loadEnvFile()

	data, err := os.ReadFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, ferrors.ConfigError("failed to read config file").
			WithCause(err).
			WithContext("path", configPath).
			Build()
	}
	return Parse(data)
}

// Parse decodes YAML configuration, rejecting unknown keys.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, ferrors.ConfigError("failed to unmarshal config").WithCause(err).Build()
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
	if cfg.Notify.Subject == "" {
		cfg.Notify.Subject = DefaultNotifySubject
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = DefaultWatchDebounce
	}
}

// Validate checks values that defaults cannot repair.
func (c *Config) Validate() error {
	if c.Watch.Debounce < 0 {
		return ferrors.ValidationError("watch.debounce must not be negative").
			WithContext("debounce", c.Watch.Debounce.String()).
			Build()
	}
	return nil
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return ferrors.ValidationError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath)).Build()
	}

	enabled := true
	example := Config{
		Logging:  LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
		Manifest: ManifestConfig{Enabled: &enabled},
		Notify:   NotifyConfig{NATSURL: "${FWPUBLISH_NATS_URL}", Subject: DefaultNotifySubject},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return ferrors.InternalError("failed to marshal config").WithCause(err).Build()
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return ferrors.FileSystemError("failed to write config file").
			WithCause(err).
			WithContext("path", configPath).
			Build()
	}
	return nil
}
