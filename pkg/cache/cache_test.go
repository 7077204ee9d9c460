package cache

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tttsvm/pkg/audio"
	"tttsvm/pkg/tts"
)

// countingBackend writes payload to the output path and counts invocations.
type countingBackend struct {
	calls   atomic.Int32
	payload []byte
	delay   time.Duration
}

func (b *countingBackend) Synthesize(_ context.Context, _ string, outputPath string) error {
	b.calls.Add(1)
	if b.delay > 0 {
		time.Sleep(b.delay)
	}
	return os.WriteFile(outputPath, b.payload, 0o644)
}

func newResolver(t *testing.T, bypass bool, backend tts.Backend) (*Resolver, string, string) {
	t.Helper()
	localDir := t.TempDir()
	tempDir := t.TempDir()
	return NewResolver(localDir, tempDir, bypass, backend), localDir, tempDir
}

func TestKey(t *testing.T) {
	assert.Equal(t, "7eca689f0d3389d9dea66ae112e5cfd7", Key("你好"))
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", Key("hello"))
}

func TestResolve_MissThenHit(t *testing.T) {
	backend := &countingBackend{payload: []byte("wav-bytes")}
	r, _, tempDir := newResolver(t, false, backend)

	path, cached, err := r.Resolve(context.Background(), "你好")
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, filepath.Join(tempDir, "7eca689f0d3389d9dea66ae112e5cfd7.wav"), path)

	path2, cached, err := r.Resolve(context.Background(), "你好")
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, path, path2)
	assert.Equal(t, int32(1), backend.calls.Load())
}

func TestResolve_LocalOverride(t *testing.T) {
	backend := &countingBackend{payload: []byte("synthesized")}
	r, localDir, _ := newResolver(t, true, backend)

	local := filepath.Join(localDir, "greeting.wav")
	require.NoError(t, os.WriteFile(local, []byte("recorded"), 0o644))

	// The override wins even with bypass enabled; the backend is never asked.
	path, cached, err := r.Resolve(context.Background(), "greeting")
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, local, path)
	assert.Equal(t, int32(0), backend.calls.Load())
}

func TestResolve_BypassEvicts(t *testing.T) {
	backend := &countingBackend{payload: []byte("fresh")}
	r, _, tempDir := newResolver(t, true, backend)

	stale := filepath.Join(tempDir, Key("text")+".wav")
	require.NoError(t, os.WriteFile(stale, []byte("stale"), 0o644))

	path, cached, err := r.Resolve(context.Background(), "text")
	require.NoError(t, err)
	assert.False(t, cached)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(data))
	assert.Equal(t, int32(1), backend.calls.Load())
}

func TestResolve_EmptyArtifactRejected(t *testing.T) {
	backend := &countingBackend{payload: nil}
	r, _, _ := newResolver(t, false, backend)

	_, _, err := r.Resolve(context.Background(), "text")
	assert.Error(t, err)
}

func TestResolve_EmptyText(t *testing.T) {
	r, _, _ := newResolver(t, false, &countingBackend{})
	_, _, err := r.Resolve(context.Background(), "")
	assert.Error(t, err)
}

func TestResolve_ConcurrentSameKeySynthesizesOnce(t *testing.T) {
	backend := &countingBackend{payload: []byte("wav-bytes"), delay: 50 * time.Millisecond}
	r, _, _ := newResolver(t, false, backend)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := r.Resolve(context.Background(), "same text")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), backend.calls.Load(), "losers of the per-key lock reuse the winner's artifact")
}

// wavPayload builds a minimal mono RIFF/WAVE stream.
func wavPayload(samples []int16) []byte {
	var pcm bytes.Buffer
	for _, s := range samples {
		binary.Write(&pcm, binary.LittleEndian, s)
	}

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+pcm.Len()))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint32(44100))
	binary.Write(&buf, binary.LittleEndian, uint32(44100*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(pcm.Len()))
	buf.Write(pcm.Bytes())
	return buf.Bytes()
}

func TestResolve_ProducesPlayableArtifact(t *testing.T) {
	samples := []int16{0, 1000, -1000, 32767}
	backend := &countingBackend{payload: wavPayload(samples)}
	r, _, tempDir := newResolver(t, false, backend)

	path, cached, err := r.Resolve(context.Background(), "你好")
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, filepath.Join(tempDir, "7eca689f0d3389d9dea66ae112e5cfd7.wav"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(44), "artifact holds audio beyond the header")

	clip, err := audio.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 44100, clip.SampleRate)
	assert.Equal(t, samples, clip.Samples)
}
