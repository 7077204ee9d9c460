// Package convert transcodes vendor-native audio to WAV via an external
// ffmpeg binary, degrading to a verbatim byte copy when ffmpeg is absent.
package convert

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"
)

const (
	probeTimeout   = 5 * time.Second
	convertTimeout = 30 * time.Second
)

// ffmpegPath allows tests to point at a stub binary. Empty means $PATH lookup.
var ffmpegPath = "ffmpeg"

// Available reports whether ffmpeg can be executed.
func Available() bool {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	return exec.CommandContext(ctx, ffmpegPath, "-version").Run() == nil
}

// ToWAV converts src (opus or another vendor format) into a PCM WAV at dst.
//
// When ffmpeg is unavailable the source bytes are copied verbatim to dst.
// The resulting file then carries a .wav name without being a decodeable WAV;
// this is a documented limitation, reported via degraded=true rather than
// silently fixed.
func ToWAV(ctx context.Context, src, dst string) (degraded bool, err error) {
	if Available() {
		if err := runFFmpeg(ctx, src, dst); err != nil {
			return false, err
		}
		return false, nil
	}

	slog.Warn("Convert: ffmpeg unavailable, copying bytes verbatim",
		"src", src, "dst", dst)
	if err := copyFile(src, dst); err != nil {
		return false, err
	}
	return true, nil
}

func runFFmpeg(ctx context.Context, src, dst string) error {
	ctx, cancel := context.WithTimeout(ctx, convertTimeout)
	defer cancel()

	// PCM 16-bit, 44.1kHz, mono.
	cmd := exec.CommandContext(ctx, ffmpegPath,
		"-i", src,
		"-acodec", "pcm_s16le",
		"-ar", "44100",
		"-ac", "1",
		"-y",
		dst,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg conversion failed: %w: %s", err, string(out))
	}
	if _, err := os.Stat(dst); err != nil {
		return fmt.Errorf("ffmpeg reported success but wrote no file: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy audio bytes: %w", err)
	}
	return nil
}
