package audio

import (
	"log/slog"
	"sync"
)

const (
	// resetBursts * the burst buffer length gives roughly ten seconds of
	// silence, enough to keep sleepy USB speakers from clicking awake at the
	// start of the next utterance.
	resetBursts     = 100
	resetSampleRate = 44100
	resetChannels   = 2
)

type resetTask struct {
	stop chan struct{}
	done chan struct{}
}

// Resetter streams silence bursts to output devices between utterances. At
// most one task runs per device; starting an already-covered device is a
// no-op and stopping blocks until the task has released the device. Every
// burst goes through the Controller's playback lock, so a burst in flight
// finishes before an utterance starts and vice versa.
type Resetter struct {
	mu     sync.Mutex
	player *Controller
	tasks  map[int]*resetTask
}

// NewResetter creates a Resetter whose bursts share player's playback lock.
func NewResetter(player *Controller) *Resetter {
	return &Resetter{
		player: player,
		tasks:  make(map[int]*resetTask),
	}
}

// Start begins a silence task for dev unless one is already running.
func (r *Resetter) Start(dev Device) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, running := r.tasks[dev.ID]; running {
		return
	}
	task := &resetTask{stop: make(chan struct{}), done: make(chan struct{})}
	r.tasks[dev.ID] = task
	go r.run(dev, task)
}

// Stop cancels the silence task for the device and waits for it to finish.
func (r *Resetter) Stop(deviceID int) {
	r.mu.Lock()
	task, running := r.tasks[deviceID]
	if running {
		delete(r.tasks, deviceID)
	}
	r.mu.Unlock()
	if !running {
		return
	}
	close(task.stop)
	<-task.done
}

// StopAll cancels every running silence task.
func (r *Resetter) StopAll() {
	r.mu.Lock()
	tasks := r.tasks
	r.tasks = make(map[int]*resetTask)
	r.mu.Unlock()
	for _, task := range tasks {
		close(task.stop)
		<-task.done
	}
}

// Active reports whether a silence task is running for the device.
func (r *Resetter) Active(deviceID int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, running := r.tasks[deviceID]
	return running
}

func (r *Resetter) run(dev Device, task *resetTask) {
	defer close(task.done)
	defer r.forget(dev.ID, task)

	// One burst is 0.1s of silence.
	buf := make([]int16, resetSampleRate/10*resetChannels)
	for i := 0; i < resetBursts; i++ {
		select {
		case <-task.stop:
			return
		default:
		}
		if err := r.player.playBurst(dev, &buf); err != nil {
			slog.Warn("Audio: reset task burst failed", "device", dev.Name, "error", err)
			return
		}
	}
}

// forget drops the task from the registry if it is still the registered one.
func (r *Resetter) forget(deviceID int, task *resetTask) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tasks[deviceID] == task {
		delete(r.tasks, deviceID)
	}
}
