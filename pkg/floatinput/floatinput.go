// Package floatinput shows a small always-on-top prompt for ad-hoc speech.
package floatinput

import (
	"log/slog"
	"runtime"
	"strings"
	"sync"

	webview "github.com/webview/webview_go"
)

const inputHTML = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><style>
	html, body { margin: 0; padding: 0; background: #202020; }
	input {
		box-sizing: border-box; width: 100%; height: 100vh;
		border: none; outline: none; padding: 0 14px;
		background: #202020; color: #e8e8e8;
		font: 20px/1.4 system-ui, sans-serif;
	}
</style></head>
<body>
<input id="t" autofocus placeholder="Speak...">
<script>
	const t = document.getElementById('t');
	t.addEventListener('keydown', (e) => {
		if (e.key === 'Enter') { submitText(t.value); }
		else if (e.key === 'Escape') { dismiss(); }
	});
	window.addEventListener('contextmenu', (e) => e.preventDefault(), true);
</script>
</body>
</html>`

// Window is the floating input prompt. At most one instance is visible; Show
// while visible is a no-op.
type Window struct {
	onSubmit     func(text string)
	onVisibility func(visible bool)

	mu      sync.Mutex
	visible bool
}

// New creates a Window. onSubmit receives the entered text after trimming.
// onVisibility fires around the window's lifetime so the caller can pause
// global hotkeys while the user is typing; either callback may be nil.
func New(onSubmit func(string), onVisibility func(bool)) *Window {
	return &Window{onSubmit: onSubmit, onVisibility: onVisibility}
}

// Visible reports whether the prompt is currently on screen.
func (w *Window) Visible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible
}

// Show opens the prompt on its own locked OS thread and returns immediately.
func (w *Window) Show() {
	w.mu.Lock()
	if w.visible {
		w.mu.Unlock()
		return
	}
	w.visible = true
	w.mu.Unlock()

	if w.onVisibility != nil {
		w.onVisibility(true)
	}
	go w.run()
}

func (w *Window) run() {
	// The webview event loop must own its OS thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	defer func() {
		w.mu.Lock()
		w.visible = false
		w.mu.Unlock()
		if w.onVisibility != nil {
			w.onVisibility(false)
		}
	}()

	view := webview.New(false)
	defer view.Destroy()

	view.SetTitle("Tttsvm")
	view.SetSize(420, 64, webview.HintFixed)

	if err := view.Bind("submitText", func(text string) {
		if cleaned, ok := normalizeSubmission(text); ok && w.onSubmit != nil {
			go w.onSubmit(cleaned)
		}
		view.Dispatch(view.Terminate)
	}); err != nil {
		slog.Warn("FloatInput: bind failed", "error", err)
		return
	}
	if err := view.Bind("dismiss", func() {
		view.Dispatch(view.Terminate)
	}); err != nil {
		slog.Warn("FloatInput: bind failed", "error", err)
		return
	}

	view.SetHtml(inputHTML)
	raiseAboveAll(view.Window())
	view.Run()
}

// normalizeSubmission trims the entered text and reports whether anything
// speakable remains.
func normalizeSubmission(text string) (string, bool) {
	cleaned := strings.TrimSpace(text)
	return cleaned, cleaned != ""
}
