// Package bridge synthesizes speech through the local Fish Audio protocol
// bridge, which shares its request shape with the plain HTTP API backend.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"tttsvm/pkg/tts"
)

// Request is the bridge request body.
type Request struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	FilePath string `json:"file_path"`
	FileType string `json:"file_type"`
}

// Response is the bridge response body.
type Response struct {
	Success  bool   `json:"success"`
	FilePath string `json:"file_path,omitempty"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Backend implements tts.Backend against the local protocol bridge.
type Backend struct {
	address  string
	language string
	client   *http.Client
}

// New creates a bridge backend posting to address (e.g. "http://127.0.0.1:10087/").
// The timeout covers the bridge's full vendor session including its own
// 30-second receive deadline.
func New(address, language string) *Backend {
	if language == "" {
		language = "ZH"
	}
	return &Backend{
		address:  address,
		language: language,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

// Synthesize requests synthesis of text into outputPath. Connection failures,
// non-success statuses and error responses all map to tts.ErrRemoteSynthesis
// so the adapter can apply its local fallback.
func (b *Backend) Synthesize(ctx context.Context, text, outputPath string) error {
	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("failed to resolve output path: %w", err)
	}

	payload, err := json.Marshal(Request{
		Text:     text,
		Language: b.language,
		FilePath: absPath,
		FileType: "wav",
	})
	if err != nil {
		return fmt.Errorf("failed to marshal bridge request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.address, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		tts.Log("FISHBRIDGE", text, 0, err)
		return fmt.Errorf("%w: %v", tts.ErrRemoteSynthesis, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var parsed Response
	if err := json.Unmarshal(body, &parsed); err != nil {
		tts.Log("FISHBRIDGE", text, resp.StatusCode, err)
		return fmt.Errorf("%w: unreadable bridge response (status %d)", tts.ErrRemoteSynthesis, resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK || !parsed.Success {
		tts.Log("FISHBRIDGE", text, resp.StatusCode, nil)
		msg := parsed.Error
		if msg == "" {
			msg = parsed.Message
		}
		return fmt.Errorf("%w: %s (status %d)", tts.ErrRemoteSynthesis, msg, resp.StatusCode)
	}

	tts.Log("FISHBRIDGE", text, resp.StatusCode, nil)
	return nil
}
