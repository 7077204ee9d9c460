package hotkey

import (
	"log/slog"
	"sync"
)

// Pool runs hotkey actions on a fixed set of workers with a bounded queue.
// When the queue is full further triggers are dropped, so a user hammering a
// chord cannot build an unbounded backlog of speech.
type Pool struct {
	tasks chan func()
	wg    sync.WaitGroup

	closeOnce sync.Once
}

// NewPool starts workers goroutines consuming a queue of queueSize tasks.
func NewPool(workers, queueSize int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	p := &Pool{tasks: make(chan func(), queueSize)}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for task := range p.tasks {
				task()
			}
		}()
	}
	return p
}

// Submit enqueues task, reporting false when the queue is full and the task
// was dropped.
func (p *Pool) Submit(task func()) bool {
	select {
	case p.tasks <- task:
		return true
	default:
		slog.Warn("Hotkey: action queue full, dropping trigger")
		return false
	}
}

// Close stops accepting tasks and waits for in-flight actions to finish.
func (p *Pool) Close() {
	p.closeOnce.Do(func() { close(p.tasks) })
	p.wg.Wait()
}
