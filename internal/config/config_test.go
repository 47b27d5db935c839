package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/fwpublish/internal/foundation/errors"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, LogLevelInfo, cfg.Logging.Level)
	assert.Equal(t, LogFormatText, cfg.Logging.Format)
	assert.True(t, cfg.Manifest.IsEnabled())
	assert.False(t, cfg.Notify.Enabled())
	assert.Equal(t, DefaultNotifySubject, cfg.Notify.Subject)
	assert.Equal(t, DefaultWatchDebounce, cfg.Watch.Debounce)
}

func TestParse_FullDocument(t *testing.T) {
	t.Setenv("TEST_NATS_URL", "nats://127.0.0.1:4222")

	cfg, err := Parse([]byte(`
logging:
  level: DEBUG
  format: json
manifest:
  enabled: false
notify:
  nats_url: ${TEST_NATS_URL}
  subject: firmware.ready
metrics:
  textfile: /var/lib/node_exporter/fwpublish.prom
watch:
  debounce: 2s
`))
	require.NoError(t, err)

	assert.Equal(t, LogLevelDebug, cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)
	assert.False(t, cfg.Manifest.IsEnabled())
	assert.True(t, cfg.Notify.Enabled())
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.Notify.NATSURL)
	assert.Equal(t, "firmware.ready", cfg.Notify.Subject)
	assert.Equal(t, "/var/lib/node_exporter/fwpublish.prom", cfg.Metrics.Textfile)
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce)
}

func TestParse_EmptyDocument(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_UnknownKeyRejected(t *testing.T) {
	_, err := Parse([]byte("destination: elsewhere.bin\n"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestParse_NegativeDebounce(t *testing.T) {
	_, err := Parse([]byte("watch:\n  debounce: -1s\n"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
}

func TestInit_WritesLoadableExample(t *testing.T) {
	t.Setenv("FWPUBLISH_NATS_URL", "")
	path := filepath.Join(t.TempDir(), DefaultPath)

	require.NoError(t, Init(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Manifest.IsEnabled())
	assert.False(t, cfg.Notify.Enabled())
}

func TestInit_RefusesOverwriteWithoutForce(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultPath)
	require.NoError(t, os.WriteFile(path, []byte("logging: {}\n"), 0o644))

	err := Init(path, false)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))

	require.NoError(t, Init(path, true))
}

func TestEffectiveLevel(t *testing.T) {
	lc := LoggingConfig{Level: LogLevelWarn}

	t.Setenv(LogLevelEnv, "")
	assert.Equal(t, slog.LevelWarn, lc.EffectiveLevel(false))
	assert.Equal(t, slog.LevelDebug, lc.EffectiveLevel(true))

	t.Setenv(LogLevelEnv, "error")
	assert.Equal(t, slog.LevelError, lc.EffectiveLevel(false))
}

func TestNormalizeLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LogLevelDebug},
		{"  INFO ", LogLevelInfo},
		{"warning", LogLevelWarn},
		{"error", LogLevelError},
		{"verbose", LogLevelInfo},
		{"", LogLevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeLogLevel(tt.in), tt.in)
	}
}

func TestLoadEnvFile_DoesNotOverrideProcessEnv(t *testing.T) {
	t.Chdir(t.TempDir())

	require.NoError(t, os.WriteFile(".env", []byte("FWPUBLISH_TEST_A=from-file\nFWPUBLISH_TEST_B=from-file\n"), 0o600))
	t.Setenv("FWPUBLISH_TEST_A", "from-process")
	t.Setenv("FWPUBLISH_TEST_B", "")
	require.NoError(t, os.Unsetenv("FWPUBLISH_TEST_B"))

	assert.True(t, loadEnvFile())
	assert.Equal(t, "from-process", os.Getenv("FWPUBLISH_TEST_A"))
	assert.Equal(t, "from-file", os.Getenv("FWPUBLISH_TEST_B"))
}
