package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tttsvm/pkg/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), "level %q", tt.in)
	}
}

func TestInit_WritesToFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "server.log")

	cleanup, err := Init(&config.LogConfig{
		Server: config.LogSettings{Path: logPath, Level: "INFO"},
		TTS:    config.LogSettings{Path: filepath.Join(dir, "tts.log"), Level: "INFO"},
	})
	require.NoError(t, err)
	defer cleanup()

	slog.Info("hello from test", "key", "value")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from test")
	assert.Contains(t, string(data), "key=value")
}

func TestInit_RotatesPreviousLog(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "server.log")
	require.NoError(t, os.WriteFile(logPath, []byte("previous run\n"), 0o644))

	cleanup, err := Init(&config.LogConfig{
		Server: config.LogSettings{Path: logPath, Level: "INFO"},
	})
	require.NoError(t, err)
	defer cleanup()

	old, err := os.ReadFile(logPath + ".old")
	require.NoError(t, err)
	assert.Equal(t, "previous run\n", string(old))
}
