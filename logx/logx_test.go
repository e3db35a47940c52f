package logx

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerDefaultsToSilent(t *testing.T) {
	SetLogger(nil)

	l := Logger()
	require.NotNil(t, l)
	assert.False(t, l.Enabled(t.Context(), slog.LevelError))
}

func TestSetLoggerInstallsHandler(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { SetLogger(nil) })

	Logger().Info("surface configured", "width", 800, "height", 600)

	out := buf.String()
	assert.Contains(t, out, "surface configured")
	assert.Contains(t, out, "width=800")
}

func TestSetLoggerNilRestoresSilent(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	SetLogger(nil)

	Logger().Error("should not appear")
	assert.Empty(t, buf.String())
}
