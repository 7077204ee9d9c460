package fishaudio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"tttsvm/pkg/convert"
	"tttsvm/pkg/tts"
)

// Service turns vendor sessions into audio files on disk, transcoding to the
// requested format when possible.
type Service struct {
	client *Client
}

// NewService creates a Service around a vendor session client.
func NewService(client *Client) *Service {
	return &Service{client: client}
}

// GenerateToFile synthesizes text into outputPath.
//
// The vendor streams its native format (typically opus). When fileType is
// "wav" the artifact is transcoded; if the external converter is unavailable
// the native bytes are copied verbatim under the requested name and degraded
// is true (documented limitation: the file is then not a decodeable WAV).
func (s *Service) GenerateToFile(ctx context.Context, text, outputPath, fileType string) (resultPath string, degraded bool, err error) {
	result, err := s.client.Synthesize(ctx, text)
	if err != nil {
		tts.Log("FISH", text, 0, err)
		return "", false, err
	}
	if len(result.Audio) == 0 {
		err := fmt.Errorf("no audio received from vendor (state %s)", result.State)
		tts.Log("FISH", text, 0, err)
		return "", false, err
	}
	if result.State == StateTimedOut {
		slog.Warn("FishAudio: writing partial audio from timed-out session",
			"bytes", len(result.Audio))
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create output directory: %w", err)
	}

	nativePath := nativeArtifactPath(outputPath)
	if err := os.WriteFile(nativePath, result.Audio, 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write vendor audio: %w", err)
	}

	// Requested format matches the native artifact: nothing to transcode.
	if fileType != "wav" || strings.HasSuffix(strings.ToLower(outputPath), ".opus") {
		tts.Log("FISH", text, 200, nil)
		return nativePath, false, nil
	}

	degraded, err = convert.ToWAV(ctx, nativePath, outputPath)
	if err != nil {
		return "", false, err
	}
	_ = os.Remove(nativePath)

	tts.Log("FISH", text, 200, nil)
	return outputPath, degraded, nil
}

// nativeArtifactPath derives the intermediate vendor-format filename from the
// requested output path.
func nativeArtifactPath(outputPath string) string {
	if strings.HasSuffix(strings.ToLower(outputPath), ".opus") {
		return outputPath
	}
	ext := filepath.Ext(outputPath)
	if ext == "" {
		return outputPath + ".opus"
	}
	return strings.TrimSuffix(outputPath, ext) + ".opus"
}
