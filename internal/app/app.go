// Package app wires hotkeys, clipboard, cache, speech backends and playback
// into the running application.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/atotto/clipboard"

	"tttsvm/internal/api"
	"tttsvm/pkg/audio"
	"tttsvm/pkg/cache"
	"tttsvm/pkg/config"
	"tttsvm/pkg/fishaudio"
	"tttsvm/pkg/floatinput"
	"tttsvm/pkg/hotkey"
	"tttsvm/pkg/tts"
	"tttsvm/pkg/tts/bridge"
	"tttsvm/pkg/tts/httpapi"
	"tttsvm/pkg/tts/sapi"
)

// clipboardSettleDelay is applied before reading the clipboard when the
// activation chord itself performs a cut or copy, giving the foreground
// application time to publish the new clipboard content.
const clipboardSettleDelay = 300 * time.Millisecond

// Seams for tests.
var (
	readClipboard = clipboard.ReadAll
	sleep         = time.Sleep
)

type resolver interface {
	Resolve(ctx context.Context, text string) (path string, cached bool, err error)
}

type player interface {
	PlayFile(ctx context.Context, path string, dev audio.Device) error
}

type resetter interface {
	Start(dev audio.Device)
	Stop(deviceID int)
	StopAll()
}

// App owns the runtime pieces of the desktop utility.
type App struct {
	cfg    *config.Config
	engine tts.Engine
	device audio.Device

	resolver   resolver
	player     player
	resetter   resetter
	pool       *hotkey.Pool
	dispatcher *hotkey.Dispatcher
	input      *floatinput.Window
	bridgeSrv  *http.Server

	settle bool

	ctx    context.Context
	cancel context.CancelFunc
}

// New builds the App from config. A missing output device is fatal; an
// embedded bridge that cannot start demotes the engine to windows-sapi.
func New(cfg *config.Config) (*App, error) {
	engine, err := tts.ParseEngine(cfg.TTS.Engine)
	if err != nil {
		return nil, err
	}

	device, err := audio.FindOutput(cfg.Audio.Device)
	if err != nil {
		return nil, fmt.Errorf("cannot start without an output device: %w", err)
	}
	slog.Info("App: output device selected", "device", device.Name, "id", device.ID)

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		cfg:    cfg,
		device: device,
		ctx:    ctx,
		cancel: cancel,
	}

	if engine == tts.EngineFishBridge {
		if err := a.startBridge(); err != nil {
			slog.Error("App: embedded bridge failed, falling back to windows-sapi", "error", err)
			engine = tts.EngineSAPI
		}
	}
	a.engine = engine

	bridgeAddr := fmt.Sprintf("http://%s/", net.JoinHostPort(cfg.Fish.Server.Host, fmt.Sprint(cfg.Fish.Server.Port)))
	adapter := tts.NewAdapter(engine,
		sapi.New(cfg.TTS.Voice),
		httpapi.New(cfg.TTS.HTTPAPI.Address, cfg.TTS.HTTPAPI.Language),
		bridge.New(bridgeAddr, cfg.TTS.HTTPAPI.Language),
	)

	a.resolver = cache.NewResolver(cfg.TTS.LocalDir, cfg.TTS.TempDir, cfg.TTS.BypassCache, adapter)
	controller := audio.NewController(cfg.Audio.Volume)
	a.player = controller
	a.resetter = audio.NewResetter(controller)
	a.pool = hotkey.NewPool(2, 8)
	a.dispatcher = hotkey.NewDispatcher(cfg.Hotkeys.Separator, a.pool)
	a.input = floatinput.New(a.Speak, a.onInputVisibility)
	a.settle = chordTouchesClipboard(cfg.Hotkeys.Activation, cfg.Hotkeys.Separator)

	return a, nil
}

// RegisterHotkeys installs the configured chords. A conflict is not fatal;
// the tray and floating input still work without global hotkeys.
func (a *App) RegisterHotkeys() error {
	if err := a.dispatcher.Add(a.cfg.Hotkeys.Activation, a.SpeakClipboard); err != nil {
		return err
	}
	if err := a.dispatcher.Add(a.cfg.Hotkeys.FloatingInput, a.ShowInput); err != nil {
		return err
	}
	return a.dispatcher.Start()
}

// Engine returns the engine actually in use after any startup demotion.
func (a *App) Engine() tts.Engine {
	return a.engine
}

// SpeakClipboard reads the clipboard and speaks its content. Empty or
// unreadable clipboards are skipped quietly.
func (a *App) SpeakClipboard() {
	if a.settle {
		sleep(clipboardSettleDelay)
	}
	text, err := readClipboard()
	if err != nil {
		slog.Warn("App: clipboard read failed", "error", err)
		return
	}
	text = strings.TrimSpace(text)
	if text == "" {
		slog.Debug("App: clipboard empty, nothing to speak")
		return
	}
	a.Speak(text)
}

// Speak resolves text to an artifact and plays it on the selected device.
// The device's silence task is suspended for the duration of playback and
// only rescheduled after the device has actually been driven; a failed
// synthesis leaves it stopped.
func (a *App) Speak(text string) {
	a.resetter.Stop(a.device.ID)

	path, cached, err := a.resolver.Resolve(a.ctx, text)
	if err != nil {
		slog.Error("App: synthesis failed", "error", err)
		return
	}
	slog.Debug("App: speaking", "chars", len(text), "cached", cached)

	defer a.resetter.Start(a.device)
	if err := a.player.PlayFile(a.ctx, path, a.device); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("App: playback failed", "error", err)
	}
}

// ShowInput opens the floating input prompt.
func (a *App) ShowInput() {
	a.input.Show()
}

// onInputVisibility pauses global chords while the user is typing in the
// prompt so keystrokes are not swallowed.
func (a *App) onInputVisibility(visible bool) {
	if visible {
		a.dispatcher.Pause()
		return
	}
	if err := a.dispatcher.Resume(); err != nil {
		slog.Warn("App: hotkey resume failed", "error", err)
	}
}

// Shutdown tears the runtime down in dependency order.
func (a *App) Shutdown() {
	a.cancel()
	a.dispatcher.Stop()
	a.pool.Close()
	a.resetter.StopAll()
	if a.bridgeSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := a.bridgeSrv.Shutdown(ctx); err != nil {
			slog.Warn("App: bridge shutdown failed", "error", err)
		}
	}
	slog.Info("App: shutdown complete")
}

// startBridge runs the fish bridge in-process and reports whether its
// listener came up.
func (a *App) startBridge() error {
	svc := fishaudio.NewService(fishaudio.NewClient(fishaudio.SessionConfig(a.cfg.Fish)))

	handler := api.NewSynthesisHandler(svc, a.cfg.Fish, a.cfg.TTS.TempDir)
	addr := net.JoinHostPort(a.cfg.Fish.Server.Host, fmt.Sprint(a.cfg.Fish.Server.Port))
	srv := api.NewServer(addr, handler)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("bridge listen on %s: %w", addr, err)
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("App: bridge server stopped", "error", err)
		}
	}()
	a.bridgeSrv = srv
	slog.Info("App: embedded bridge listening", "addr", addr)
	return nil
}

// chordTouchesClipboard reports whether triggering the chord also performs a
// cut or copy in the foreground application.
func chordTouchesClipboard(spec, sep string) bool {
	chord, err := hotkey.Normalize(spec, sep)
	if err != nil {
		return false
	}
	hasCtrl := false
	for _, m := range chord.Mods {
		if m == "ctrl" {
			hasCtrl = true
		}
	}
	if !hasCtrl || len(chord.Mods) != 1 {
		return false
	}
	for _, k := range chord.Keys {
		if k == "x" || k == "c" {
			return true
		}
	}
	return false
}
