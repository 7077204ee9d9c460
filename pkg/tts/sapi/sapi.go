// Package sapi synthesizes speech offline through Windows SAPI5 via OLE.
package sapi

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"

	"tttsvm/pkg/tts"
)

// Speech stream file mode SSFMCreateForWrite: creates the file for writing.
const streamModeCreateForWrite = 3

// progIDs is the ordered list of voice automation objects to try before
// giving up. SAPI registers both forms depending on the installed runtime.
var progIDs = []string{"SAPI.SpVoice", "SAPI.SpVoice.1"}

// Backend implements tts.Backend using the local SAPI5 voice.
type Backend struct {
	mu      sync.Mutex
	voiceID string
}

// New creates a SAPI backend. voiceID selects a specific installed voice
// token; empty uses the system default.
func New(voiceID string) *Backend {
	return &Backend{voiceID: voiceID}
}

// Synthesize writes a .wav file at outputPath. It returns
// tts.ErrEngineUnavailable when no local voice backend can be initialized.
func (b *Backend) Synthesize(ctx context.Context, text, outputPath string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	// CoInitialize fails when the thread is already initialized; that state
	// is fine to speak from, it just must not be uninitialized by us.
	if err := ole.CoInitialize(0); err == nil {
		defer ole.CoUninitialize()
	}

	voice, err := createVoice()
	if err != nil {
		return fmt.Errorf("%w: %v", tts.ErrEngineUnavailable, err)
	}
	defer voice.Release()

	if b.voiceID != "" {
		setVoiceByID(voice, b.voiceID)
	}

	unknownStream, err := oleutil.CreateObject("SAPI.SpFileStream")
	if err != nil {
		return fmt.Errorf("%w: SpFileStream: %v", tts.ErrEngineUnavailable, err)
	}
	stream, err := unknownStream.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		unknownStream.Release()
		return fmt.Errorf("QueryInterface SpFileStream failed: %w", err)
	}
	defer stream.Release()

	fullPath := outputPath
	if !strings.HasSuffix(strings.ToLower(fullPath), ".wav") {
		fullPath += ".wav"
	}
	if _, err = oleutil.CallMethod(stream, "Open", fullPath, streamModeCreateForWrite, false); err != nil {
		return fmt.Errorf("stream Open failed: %w", err)
	}
	defer func() {
		_, _ = oleutil.CallMethod(stream, "Close")
	}()

	if _, err = oleutil.PutPropertyRef(voice, "AudioOutputStream", stream); err != nil {
		return fmt.Errorf("failed to set AudioOutputStream: %w", err)
	}

	if _, err = oleutil.CallMethod(voice, "Speak", text, 0); err != nil {
		tts.Log("SAPI", text, 0, err)
		return fmt.Errorf("Speak failed: %w", err)
	}

	tts.Log("SAPI", text, 200, nil)
	return nil
}

// createVoice tries each known ProgID in order and returns the first voice
// object that initializes.
func createVoice() (*ole.IDispatch, error) {
	var lastErr error
	for _, progID := range progIDs {
		unknown, err := oleutil.CreateObject(progID)
		if err != nil {
			lastErr = err
			continue
		}
		voice, err := unknown.QueryInterface(ole.IID_IDispatch)
		if err != nil {
			unknown.Release()
			lastErr = err
			continue
		}
		return voice, nil
	}
	return nil, fmt.Errorf("no SAPI voice object available: %w", lastErr)
}

func setVoiceByID(voice *ole.IDispatch, voiceID string) {
	tokensVar, err := oleutil.CallMethod(voice, "GetVoices", "", "")
	if err != nil {
		return
	}
	tokens := tokensVar.ToIDispatch()
	if tokens == nil {
		return
	}
	defer tokens.Release()

	_ = oleutil.ForEach(tokens, func(v *ole.VARIANT) error {
		item := v.ToIDispatch()
		if item == nil {
			return nil
		}
		defer item.Release()
		idVar, _ := oleutil.CallMethod(item, "GetId")
		if idVar != nil && idVar.ToString() == voiceID {
			_, _ = oleutil.PutPropertyRef(voice, "Voice", item)
		}
		return nil
	})
}
