package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"tttsvm/pkg/cache"
	"tttsvm/pkg/config"
	"tttsvm/pkg/version"
)

// Generator produces an audio file for text. Implemented by
// fishaudio.Service.
type Generator interface {
	GenerateToFile(ctx context.Context, text, outputPath, fileType string) (resultPath string, degraded bool, err error)
}

// SynthesisHandler serves the bridge endpoints.
type SynthesisHandler struct {
	gen     Generator
	fishCfg config.FishConfig
	tempDir string
}

// NewSynthesisHandler creates a SynthesisHandler writing unnamed artifacts
// into tempDir.
func NewSynthesisHandler(gen Generator, fishCfg config.FishConfig, tempDir string) *SynthesisHandler {
	return &SynthesisHandler{gen: gen, fishCfg: fishCfg, tempDir: tempDir}
}

// SynthesisRequest is the POST / payload, accepted as JSON or form fields.
type SynthesisRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	FilePath string `json:"file_path"`
	FileType string `json:"file_type"`
}

// SynthesisResponse is the POST / reply.
type SynthesisResponse struct {
	Success  bool   `json:"success"`
	FilePath string `json:"file_path,omitempty"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// HandleSynthesize translates one synchronous POST into a full vendor
// session and replies when the artifact is on disk.
func (h *SynthesisHandler) HandleSynthesize(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.NewString()[:8]

	req, err := decodeSynthesisRequest(r)
	if err != nil {
		slog.Warn("Bridge: bad request", "id", reqID, "error", err)
		writeJSON(w, http.StatusBadRequest, SynthesisResponse{Success: false, Error: err.Error()})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, SynthesisResponse{Success: false, Error: "text is required"})
		return
	}
	if req.Language == "" {
		req.Language = "ZH"
	}
	if req.FileType == "" {
		req.FileType = "wav"
	}
	if req.FilePath == "" {
		req.FilePath = filepath.Join(h.tempDir, cache.Key(req.Text)+"."+req.FileType)
	}

	slog.Info("Bridge: synthesis request",
		"id", reqID, "chars", len(req.Text), "language", req.Language, "file_type", req.FileType)

	path, degraded, err := h.gen.GenerateToFile(r.Context(), req.Text, req.FilePath, req.FileType)
	if err != nil {
		slog.Error("Bridge: synthesis failed", "id", reqID, "error", err)
		writeJSON(w, http.StatusInternalServerError, SynthesisResponse{Success: false, Error: err.Error()})
		return
	}

	msg := "synthesis complete"
	if degraded {
		msg = "synthesis complete (conversion unavailable, native format delivered)"
	}
	slog.Info("Bridge: synthesis done", "id", reqID, "path", path, "degraded", degraded)
	writeJSON(w, http.StatusOK, SynthesisResponse{Success: true, FilePath: path, Message: msg})
}

// HandleHealth reports liveness.
func (h *SynthesisHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"service":   "fish-bridge",
		"version":   version.Version,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// HandleConfig exposes the active vendor settings with the reference id
// truncated so logs and screenshots cannot leak a full voice identity.
func (h *SynthesisHandler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"reference_id": truncateReference(h.fishCfg.ReferenceID),
		"model":        h.fishCfg.Model,
		"format":       h.fishCfg.Format,
		"latency":      h.fishCfg.Latency,
	})
}

func decodeSynthesisRequest(r *http.Request) (*SynthesisRequest, error) {
	var req SynthesisRequest
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, err
		}
		return &req, nil
	}
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	req.Text = r.FormValue("text")
	req.Language = r.FormValue("language")
	req.FilePath = r.FormValue("file_path")
	req.FileType = r.FormValue("file_type")
	return &req, nil
}

func truncateReference(ref string) string {
	if len(ref) <= 8 {
		return ref
	}
	return ref[:8] + "..."
}
