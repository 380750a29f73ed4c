// Package dispatch runs listener notifications off the caller's goroutine.
//
// A Dispatcher owns a bounded queue drained by a fixed set of workers. Submit
// never blocks: when the queue is full the task is dropped, logged and
// counted. With one worker (the default) tasks run in submission order.
package dispatch

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Defaults.
const (
	DefaultWorkers   = 1
	DefaultQueueSize = 256
)

// ErrClosed is returned by Submit after Close.
var ErrClosed = errors.New("dispatcher closed")

// ErrQueueFull is returned by Submit when the task was dropped.
var ErrQueueFull = errors.New("dispatch queue full")

// Config configures a Dispatcher.
type Config struct {
	// Workers is the number of goroutines draining the queue.
	Workers int

	// QueueSize bounds the number of pending tasks.
	QueueSize int

	Logger *slog.Logger
}

// DefaultConfig returns the default dispatcher configuration.
func DefaultConfig() Config {
	return Config{
		Workers:   DefaultWorkers,
		QueueSize: DefaultQueueSize,
	}
}

type task struct {
	name string
	fn   func()
}

// Dispatcher is a bounded asynchronous task queue.
type Dispatcher struct {
	logger *slog.Logger

	// mu orders Submit against Close so no send hits a closed channel.
	mu     sync.RWMutex
	closed bool
	queue  chan task

	group     errgroup.Group
	closeOnce sync.Once

	dropped   atomic.Uint64
	completed atomic.Uint64
	panics    atomic.Uint64
}

// New starts a dispatcher. Zero config fields fall back to defaults.
func New(config Config) *Dispatcher {
	if config.Workers <= 0 {
		config.Workers = DefaultWorkers
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultQueueSize
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	d := &Dispatcher{
		logger: logger.With("component", "dispatch"),
		queue:  make(chan task, config.QueueSize),
	}
	for range config.Workers {
		d.group.Go(d.work)
	}
	return d
}

func (d *Dispatcher) work() error {
	for t := range d.queue {
		d.run(t)
	}
	return nil
}

func (d *Dispatcher) run(t task) {
	defer func() {
		if r := recover(); r != nil {
			d.panics.Add(1)
			d.logger.Error("listener panicked", "task", t.name, "panic", r)
		}
	}()
	t.fn()
	d.completed.Add(1)
}

// Submit queues fn for asynchronous execution. name identifies the task in
// logs. It returns ErrQueueFull if the task was dropped.
func (d *Dispatcher) Submit(name string, fn func()) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrClosed
	}
	select {
	case d.queue <- task{name: name, fn: fn}:
		return nil
	default:
		d.dropped.Add(1)
		d.logger.Error("dispatch queue full, dropping notification", "task", name, "capacity", cap(d.queue))
		return ErrQueueFull
	}
}

// Close stops accepting tasks, runs every queued task and waits for the
// workers to exit. It is safe to call more than once.
func (d *Dispatcher) Close() error {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()
	})
	return d.group.Wait()
}

// Pending returns the number of queued tasks.
func (d *Dispatcher) Pending() int { return len(d.queue) }

// Dropped returns the number of tasks dropped on a full queue.
func (d *Dispatcher) Dropped() uint64 { return d.dropped.Load() }

// Completed returns the number of tasks that returned normally.
func (d *Dispatcher) Completed() uint64 { return d.completed.Load() }

// Panics returns the number of tasks that panicked.
func (d *Dispatcher) Panics() uint64 { return d.panics.Load() }
