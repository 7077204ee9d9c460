// Package httpapi synthesizes speech through a local HTTP TTS service that
// accepts form-encoded requests and writes the audio file itself.
package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"tttsvm/pkg/tts"
)

// Backend implements tts.Backend against the plain local HTTP synthesis API.
type Backend struct {
	address  string
	language string
	client   *http.Client
}

// New creates an HTTP API backend posting to address (e.g. "http://127.0.0.1:10086/").
func New(address, language string) *Backend {
	if language == "" {
		language = "ZH"
	}
	return &Backend{
		address:  address,
		language: language,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Synthesize requests synthesis of text into outputPath. Any transport error
// or non-success status is reported as tts.ErrRemoteSynthesis.
func (b *Backend) Synthesize(ctx context.Context, text, outputPath string) error {
	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("failed to resolve output path: %w", err)
	}

	form := url.Values{}
	form.Set("text", text)
	form.Set("language", b.language)
	form.Set("file_path", absPath)
	form.Set("file_type", "wav")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.address,
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := b.client.Do(req)
	if err != nil {
		tts.Log("HTTPAPI", text, 0, err)
		return fmt.Errorf("%w: %v", tts.ErrRemoteSynthesis, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		tts.Log("HTTPAPI", text, resp.StatusCode, nil)
		return fmt.Errorf("%w: status %d: %s", tts.ErrRemoteSynthesis, resp.StatusCode, string(body))
	}

	tts.Log("HTTPAPI", text, resp.StatusCode, nil)
	return nil
}
