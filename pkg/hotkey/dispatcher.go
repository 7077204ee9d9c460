package hotkey

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.design/x/hotkey"
)

// ErrHotkeyConflict means the OS rejected a chord registration, usually
// because another process already owns it.
var ErrHotkeyConflict = errors.New("hotkey: chord already taken")

// registration is one installed OS hook. The real implementation is
// *hotkey.Hotkey; Keydown's channel closes on Unregister.
type registration interface {
	Register() error
	Unregister() error
	Keydown() <-chan hotkey.Event
}

// registrar creates an uninstalled registration for a chord.
type registrar func(mods []hotkey.Modifier, key hotkey.Key) registration

func osRegistrar(mods []hotkey.Modifier, key hotkey.Key) registration {
	return hotkey.New(mods, key)
}

type binding struct {
	chord  Chord
	action func()
	reg    registration
}

// Dispatcher owns the chord table and the OS hooks. Bindings are added while
// stopped, then Start installs them all or none. Pause removes the OS hooks
// without forgetting the table so Resume can reinstall it.
type Dispatcher struct {
	mu       sync.Mutex
	sep      string
	newReg   registrar
	bindings map[string]*binding
	pool     *Pool
	running  bool
	wg       sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. sep is the token separator used in
// chord specs. pool receives triggered actions; the Dispatcher does not own
// it.
func NewDispatcher(sep string, pool *Pool) *Dispatcher {
	return &Dispatcher{
		sep:      sep,
		newReg:   osRegistrar,
		bindings: make(map[string]*binding),
		pool:     pool,
	}
}

// Add binds a chord spec to an action. Specs that normalize to the same
// chord replace each other. The chord must contain exactly one
// non-modifier key.
func (d *Dispatcher) Add(spec string, action func()) error {
	chord, err := Normalize(spec, d.sep)
	if err != nil {
		return err
	}
	if len(chord.Keys) != 1 {
		return fmt.Errorf("chord %q must have exactly one key, got %d", spec, len(chord.Keys))
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return fmt.Errorf("cannot add chord %q while running", spec)
	}
	d.bindings[chord.Canonical(d.sep)] = &binding{chord: chord, action: action}
	return nil
}

// Delete removes the binding for spec, unregistering its hook if installed.
func (d *Dispatcher) Delete(spec string) error {
	chord, err := Normalize(spec, d.sep)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	canonical := chord.Canonical(d.sep)
	b, ok := d.bindings[canonical]
	if !ok {
		return nil
	}
	if b.reg != nil {
		if err := b.reg.Unregister(); err != nil {
			slog.Warn("Hotkey: unregister failed", "chord", canonical, "error", err)
		}
		b.reg = nil
	}
	delete(d.bindings, canonical)
	return nil
}

// Start installs every binding. Installation is all-or-nothing: if any chord
// is rejected the already-installed hooks are rolled back and
// ErrHotkeyConflict is returned.
func (d *Dispatcher) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.installLocked()
}

// Pause removes all OS hooks but keeps the chord table.
func (d *Dispatcher) Pause() {
	d.mu.Lock()
	d.uninstallLocked()
	d.mu.Unlock()
	d.wg.Wait()
}

// Resume reinstalls the chord table after a Pause.
func (d *Dispatcher) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.installLocked()
}

// Stop removes all hooks and waits for listener goroutines to exit.
func (d *Dispatcher) Stop() {
	d.Pause()
}

func (d *Dispatcher) installLocked() error {
	if d.running {
		return nil
	}
	installed := make([]*binding, 0, len(d.bindings))
	for canonical, b := range d.bindings {
		mods, key := b.chord.codes()
		reg := d.newReg(mods, key)
		if err := reg.Register(); err != nil {
			for _, prev := range installed {
				_ = prev.reg.Unregister()
				prev.reg = nil
			}
			return fmt.Errorf("%w: %s: %v", ErrHotkeyConflict, canonical, err)
		}
		b.reg = reg
		installed = append(installed, b)
	}
	for canonical, b := range d.bindings {
		d.wg.Add(1)
		go d.listen(canonical, b.reg, b.action)
	}
	d.running = true
	slog.Info("Hotkey: chords installed", "count", len(d.bindings))
	return nil
}

func (d *Dispatcher) uninstallLocked() {
	if !d.running {
		return
	}
	for canonical, b := range d.bindings {
		if b.reg == nil {
			continue
		}
		if err := b.reg.Unregister(); err != nil {
			slog.Warn("Hotkey: unregister failed", "chord", canonical, "error", err)
		}
		b.reg = nil
	}
	d.running = false
}

// listen forwards keydown events to the pool until the hook is unregistered.
func (d *Dispatcher) listen(canonical string, reg registration, action func()) {
	defer d.wg.Done()
	for range reg.Keydown() {
		slog.Debug("Hotkey: triggered", "chord", canonical)
		d.pool.Submit(action)
	}
}

// codes resolves the chord to OS modifier and key codes. Valid by
// construction: Add checked the key exists and the chord has exactly one.
func (c Chord) codes() ([]hotkey.Modifier, hotkey.Key) {
	mods := make([]hotkey.Modifier, 0, len(c.Mods))
	for _, m := range c.Mods {
		if code, ok := modifierCodes[m]; ok {
			mods = append(mods, code)
		}
	}
	return mods, keyCodes[c.Keys[0]]
}
