// Package tray puts the application in the system tray.
package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"log/slog"

	"fyne.io/systray"
)

// App is the tray menu. Run must be called on the main thread and blocks
// until Quit.
type App struct {
	engine  string
	onSpeak func()
	onQuit  func()

	menuSpeak *systray.MenuItem
	menuQuit  *systray.MenuItem
}

// New creates the tray App. onSpeak fires for the "Speak clipboard" menu
// entry, onQuit when the user exits; both may be nil.
func New(engine string, onSpeak, onQuit func()) *App {
	return &App{engine: engine, onSpeak: onSpeak, onQuit: onQuit}
}

// Run shows the tray icon and blocks servicing the menu.
func (a *App) Run() {
	systray.Run(a.onReady, a.onExit)
}

// Quit tears down the tray and unblocks Run.
func (a *App) Quit() {
	systray.Quit()
}

func (a *App) onReady() {
	systray.SetIcon(iconBytes())
	systray.SetTitle("")
	systray.SetTooltip("Tttsvm")

	status := systray.AddMenuItem("Engine: "+a.engine, "Active speech engine")
	status.Disable()
	systray.AddSeparator()
	a.menuSpeak = systray.AddMenuItem("Speak clipboard", "Read the current clipboard aloud")
	systray.AddSeparator()
	a.menuQuit = systray.AddMenuItem("Exit", "Quit Tttsvm")

	go a.handleClicks()
	slog.Debug("Tray: ready")
}

func (a *App) onExit() {
	if a.onQuit != nil {
		a.onQuit()
	}
}

func (a *App) handleClicks() {
	for {
		select {
		case <-a.menuSpeak.ClickedCh:
			if a.onSpeak != nil {
				a.onSpeak()
			}
		case <-a.menuQuit.ClickedCh:
			systray.Quit()
			return
		}
	}
}

// iconBytes renders the tray icon at runtime so no asset file has to ship
// with the binary.
func iconBytes() []byte {
	const size = 22
	fg := color.RGBA{R: 0x2e, G: 0x8b, B: 0x57, A: 0xff}

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	// A speaker-ish glyph: a solid block with a triangular flare.
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			inBody := x >= 3 && x <= 9 && y >= 7 && y <= 14
			inFlare := x > 9 && x <= 17 && y >= 11-(x-9) && y <= 10+(x-9) && y >= 2 && y <= 19
			if inBody || inFlare {
				img.SetRGBA(x, y, fg)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		slog.Warn("Tray: icon encode failed", "error", err)
		return nil
	}
	return buf.Bytes()
}
