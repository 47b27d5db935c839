package errors

import (
	"bytes"
	stderrors "errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, 0},
		{"validation", ValidationError("bad flag").Build(), 2},
		{"not found", NotFoundError("missing artifact").Build(), 3},
		{"config", ConfigError("bad config").Build(), 7},
		{"filesystem", FileSystemError("copy failed").Build(), 11},
		{"notify", NotifyError("nats down").Build(), 8},
		{"internal", InternalError("boom").Build(), 10},
		{"unclassified", stderrors.New("unknown error"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	err := FileSystemError("copy failed").WithCause(stderrors.New("disk full")).Build()

	quiet := NewCLIErrorAdapter(false, slog.Default())
	assert.Equal(t, "Error: copy failed", quiet.FormatError(err))

	verbose := NewCLIErrorAdapter(true, slog.Default())
	assert.Equal(t, "Error: copy failed: disk full", verbose.FormatError(err))

	assert.Empty(t, quiet.FormatError(nil))
	assert.Equal(t, "Error: plain", quiet.FormatError(stderrors.New("plain")))
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var out bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(io.Discard, nil)))
	adapter.out = &out
	code := -1
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(FileSystemError("copy failed").Build())

	assert.Equal(t, 11, code)
	assert.Equal(t, "Error: copy failed\n", out.String())

	code = -1
	adapter.HandleError(nil)
	assert.Equal(t, -1, code)
}
