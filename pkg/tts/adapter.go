package tts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Adapter dispatches synthesis requests to the configured engine.
type Adapter struct {
	engine   Engine
	sapi     Backend
	httpAPI  Backend
	bridge   Backend
	fallback bool // fish-bridge failures retry once on the SAPI backend
}

// NewAdapter creates an Adapter for the given engine. The SAPI backend doubles
// as the automatic fallback for vendor bridge failures.
func NewAdapter(engine Engine, sapi, httpAPI, bridge Backend) *Adapter {
	return &Adapter{
		engine:   engine,
		sapi:     sapi,
		httpAPI:  httpAPI,
		bridge:   bridge,
		fallback: true,
	}
}

// Engine returns the engine this adapter dispatches to.
func (a *Adapter) Engine() Engine { return a.engine }

// Synthesize produces a playable waveform file at outputPath.
//
// The vendor bridge recovers from ErrRemoteSynthesis with exactly one retry on
// the local SAPI backend. The voice change is deliberate product behavior and
// is logged at Warn so it is never silent.
func (a *Adapter) Synthesize(ctx context.Context, text, outputPath string) error {
	var err error
	switch a.engine {
	case EngineSAPI:
		err = a.sapi.Synthesize(ctx, text, outputPath)
	case EngineHTTPAPI:
		err = a.httpAPI.Synthesize(ctx, text, outputPath)
	case EngineFishBridge:
		err = a.bridge.Synthesize(ctx, text, outputPath)
		if err != nil && a.fallback && errors.Is(err, ErrRemoteSynthesis) {
			slog.Warn("TTS: Fish bridge failed, falling back to local SAPI voice",
				"error", err)
			err = a.sapi.Synthesize(ctx, text, outputPath)
		}
	default:
		return fmt.Errorf("%w: %v", ErrUnknownEngine, a.engine)
	}
	if err != nil {
		return err
	}
	return VerifyArtifact(outputPath)
}
