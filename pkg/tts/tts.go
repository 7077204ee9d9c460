// Package tts defines the synthesis engine taxonomy and the adapter that
// dispatches requests to a concrete backend.
package tts

import (
	"context"
	"errors"
	"fmt"
	"os"
)

const (
	// MinAudioSize is the minimum size of a synthesized audio file. Backends
	// report their own failures, so a zero-byte artifact is the only shape a
	// silent failure leaves behind.
	MinAudioSize = 1
)

// Engine identifies a synthesis backend. The set is closed: adding a variant
// without extending the Adapter dispatch is caught by ErrUnknownEngine in tests.
type Engine int

const (
	// EngineSAPI is the offline Windows SAPI voice.
	EngineSAPI Engine = iota
	// EngineHTTPAPI is the plain local HTTP synthesis API.
	EngineHTTPAPI
	// EngineFishBridge is the local Fish Audio protocol bridge.
	EngineFishBridge
)

// String returns the config-file name of the engine.
func (e Engine) String() string {
	switch e {
	case EngineSAPI:
		return "windows-sapi"
	case EngineHTTPAPI:
		return "http-api"
	case EngineFishBridge:
		return "fish-bridge"
	default:
		return fmt.Sprintf("engine(%d)", int(e))
	}
}

// ParseEngine maps a config engine name to its Engine variant.
func ParseEngine(s string) (Engine, error) {
	switch s {
	case "windows-sapi":
		return EngineSAPI, nil
	case "http-api":
		return EngineHTTPAPI, nil
	case "fish-bridge":
		return EngineFishBridge, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownEngine, s)
	}
}

var (
	// ErrEngineUnavailable means no local synthesis backend could be initialized.
	ErrEngineUnavailable = errors.New("tts: engine unavailable")
	// ErrRemoteSynthesis means a network or vendor-side synthesis failure.
	ErrRemoteSynthesis = errors.New("tts: remote synthesis failed")
	// ErrUnknownEngine means the engine name is not part of the closed set.
	ErrUnknownEngine = errors.New("tts: unknown engine")
)

// Backend synthesizes text to a playable waveform file at outputPath.
type Backend interface {
	Synthesize(ctx context.Context, text, outputPath string) error
}

// BackendFunc adapts a function to the Backend interface.
type BackendFunc func(ctx context.Context, text, outputPath string) error

// Synthesize implements Backend.
func (f BackendFunc) Synthesize(ctx context.Context, text, outputPath string) error {
	return f(ctx, text, outputPath)
}

// VerifyArtifact checks that the synthesized file exists and is non-empty.
// Audio content itself is not validated; callers may independently verify.
func VerifyArtifact(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("synthesis produced no file at %s: %w", path, err)
	}
	if info.Size() < MinAudioSize {
		return fmt.Errorf("synthesis produced an empty file at %s", path)
	}
	return nil
}
