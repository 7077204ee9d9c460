package audio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// framesPerBuffer is the output chunk size in frames.
const framesPerBuffer = 1024

// outputStream is one open output channel to a device. Write consumes the
// buffer the stream was opened with and blocks for its playback duration.
type outputStream interface {
	Start() error
	Write() error
	Stop() error
	Close() error
}

// streamOpener opens an output stream on dev that plays buf on each Write.
type streamOpener func(dev Device, channels int, sampleRate float64, buf *[]int16) (outputStream, error)

// Controller plays decoded clips on an output device. A process-wide lock
// serializes playback so overlapping triggers queue instead of mixing.
type Controller struct {
	mu     sync.Mutex
	volume float64
	open   streamOpener
}

// NewController creates a Controller with a playback volume factor. Volume
// 1.0 passes samples through unchanged.
func NewController(volume float64) *Controller {
	return &Controller{volume: volume, open: openPortAudioStream}
}

// PlayFile decodes and plays the WAV file at path on dev.
func (c *Controller) PlayFile(ctx context.Context, path string, dev Device) error {
	clip, err := ReadFile(path)
	if err != nil {
		return err
	}
	return c.Play(ctx, clip, dev)
}

// Play plays clip on dev, blocking until the clip finishes or ctx is
// cancelled.
func (c *Controller) Play(ctx context.Context, clip *Clip, dev Device) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	samples := ScaleVolume(clip.Samples, c.volume)
	channels := clip.Channels
	if channels > 2 {
		samples = firstTwoChannels(samples, channels)
		channels = 2
	}

	buf := make([]int16, framesPerBuffer*channels)
	stream, err := c.open(dev, channels, float64(clip.SampleRate), &buf)
	if err != nil {
		return fmt.Errorf("failed to open output stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("failed to start output stream: %w", err)
	}
	defer stream.Stop()

	slog.Debug("Audio: playing clip",
		"device", dev.Name, "seconds", clip.Duration(), "channels", channels)

	for pos := 0; pos < len(samples); pos += len(buf) {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := copy(buf, samples[pos:])
		for i := n; i < len(buf); i++ {
			buf[i] = 0
		}
		if err := stream.Write(); err != nil {
			return fmt.Errorf("failed to write to output stream: %w", err)
		}
	}
	return nil
}

// playBurst plays one buffer of silence on dev. It takes the playback lock,
// so bursts queue behind utterances instead of mixing with them, and the lock
// is released between bursts.
func (c *Controller) playBurst(dev Device, buf *[]int16) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	stream, err := c.open(dev, resetChannels, resetSampleRate, buf)
	if err != nil {
		return err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return err
	}
	defer stream.Stop()

	return stream.Write()
}

// ScaleVolume multiplies samples by volume with int16 truncation. Scaling a
// sample past full amplitude wraps around rather than clipping, matching the
// historic behavior users tuned their volume settings against.
func ScaleVolume(samples []int16, volume float64) []int16 {
	if volume == 1.0 {
		return samples
	}
	out := make([]int16, len(samples))
	for i, s := range samples {
		out[i] = int16(int32(float64(s) * volume))
	}
	return out
}

// firstTwoChannels reduces interleaved multichannel audio to stereo by
// keeping the first two samples of every frame.
func firstTwoChannels(samples []int16, channels int) []int16 {
	frames := len(samples) / channels
	out := make([]int16, 0, frames*2)
	for f := 0; f < frames; f++ {
		out = append(out, samples[f*channels], samples[f*channels+1])
	}
	return out
}
