// Package api exposes the bridge HTTP surface: a synchronous synthesis
// endpoint in front of the vendor's streaming session protocol.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// NewServer creates and configures the bridge HTTP server.
func NewServer(addr string, h *SynthesisHandler) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.HandleHealth)
	mux.HandleFunc("GET /config", h.HandleConfig)
	mux.HandleFunc("POST /", h.HandleSynthesize)

	return &http.Server{
		Addr:        addr,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
		// Synthesis holds the request open for the whole vendor session.
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Bridge: failed to write response", "error", err)
	}
}
