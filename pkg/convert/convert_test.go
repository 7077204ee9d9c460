package convert

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToWAV_FallbackCopiesVerbatim(t *testing.T) {
	// Point at a binary that does not exist so Available() is false.
	orig := ffmpegPath
	ffmpegPath = filepath.Join(t.TempDir(), "no-such-ffmpeg")
	defer func() { ffmpegPath = orig }()

	dir := t.TempDir()
	src := filepath.Join(dir, "audio.opus")
	dst := filepath.Join(dir, "audio.wav")
	payload := []byte("opus-encoded-bytes")
	require.NoError(t, os.WriteFile(src, payload, 0o644))

	degraded, err := ToWAV(context.Background(), src, dst)
	require.NoError(t, err)
	assert.True(t, degraded, "copy path must be reported as degraded")

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, payload, got, "bytes must be copied verbatim, not transcoded")
}

func TestToWAV_FallbackMissingSource(t *testing.T) {
	orig := ffmpegPath
	ffmpegPath = filepath.Join(t.TempDir(), "no-such-ffmpeg")
	defer func() { ffmpegPath = orig }()

	dir := t.TempDir()
	_, err := ToWAV(context.Background(), filepath.Join(dir, "missing.opus"), filepath.Join(dir, "out.wav"))
	assert.Error(t, err)
}

func TestAvailable_FalseForMissingBinary(t *testing.T) {
	orig := ffmpegPath
	ffmpegPath = filepath.Join(t.TempDir(), "no-such-ffmpeg")
	defer func() { ffmpegPath = orig }()

	assert.False(t, Available())
}
