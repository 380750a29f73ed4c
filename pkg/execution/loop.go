// Package execution drives the federate's per-cycle work: wait for the
// pending time grant, run the application callback, honor suspension and
// request the next advance.
package execution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/internal/poll"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/rti"
)

// ErrAlreadyRunning is returned when Run is called a second time.
var ErrAlreadyRunning = errors.New("execution loop already started")

// State is the loop state.
type State uint8

const (
	StateRunning State = iota
	StateSuspended
	StateShuttingDown
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "RUNNING"
	case StateSuspended:
		return "SUSPENDED"
	case StateShuttingDown:
		return "SHUTTING_DOWN"
	default:
		return "UNKNOWN"
	}
}

// Clock is the time state the loop consults each cycle. *timing.Manager
// implements it.
type Clock interface {
	IsAdvancing() bool
	FederateTime() rti.Time
	RequestAdvance(target rti.Time) error
	IncrementCycles() uint64
}

// Callback is the per-cycle application hook. now is the granted logical
// time. Returning an error stops the loop.
type Callback func(ctx context.Context, cycle uint64, now rti.Time) error

// Config configures a Loop.
type Config struct {
	Clock Clock

	// Step is the logical time added on every cycle.
	Step rti.Time

	Callback Callback

	// Resign runs once when Run returns.
	Resign func() error

	// MaxCycles stops the loop after that many cycles; zero runs until
	// shutdown.
	MaxCycles uint64

	PollInterval time.Duration
	Logger       *slog.Logger
}

// Loop is the execution loop. Suspend, Resume and Shutdown may be called
// from any goroutine.
type Loop struct {
	cfg    Config
	logger *slog.Logger

	mu        sync.Mutex
	cond      *sync.Cond
	suspended bool

	shuttingDown atomic.Bool
	started      atomic.Bool
	done         chan struct{}

	resignOnce sync.Once
	resignErr  error
}

// New creates a loop. It does not start it.
func New(cfg Config) *Loop {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = poll.DefaultInterval
	}
	l := &Loop{
		cfg:    cfg,
		logger: logger.With("component", "execution"),
		done:   make(chan struct{}),
	}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// Run executes cycles until Shutdown, ctx cancellation, MaxCycles or a
// callback error, then resigns. Cancellation is a normal shutdown and
// returns nil.
func (l *Loop) Run(ctx context.Context) (err error) {
	if !l.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(l.done)

	stop := context.AfterFunc(ctx, l.Shutdown)
	defer stop()

	defer func() {
		if rerr := l.resign(); rerr != nil {
			err = errors.Join(err, rerr)
		}
	}()

	l.logger.Info("execution loop started", "step", l.cfg.Step)
	for !l.shuttingDown.Load() {
		if err := l.cycle(ctx); err != nil {
			l.logger.Error("execution loop stopped", "error", err)
			l.Shutdown()
			return err
		}
	}
	l.logger.Info("execution loop finished", "time", l.cfg.Clock.FederateTime())
	return nil
}

func (l *Loop) cycle(ctx context.Context) error {
	clock := l.cfg.Clock
	n := clock.IncrementCycles()

	poll.Until(ctx, l.cfg.PollInterval, 0, func() bool {
		return !clock.IsAdvancing() || l.shuttingDown.Load()
	})
	if ctx.Err() != nil {
		l.Shutdown()
	}
	if l.shuttingDown.Load() {
		return nil
	}

	now := clock.FederateTime()
	if l.cfg.Callback != nil {
		if err := l.cfg.Callback(ctx, n, now); err != nil {
			return fmt.Errorf("cycle %d at %s: %w", n, now, err)
		}
	}

	l.waitWhileSuspended()

	if l.cfg.MaxCycles > 0 && n >= l.cfg.MaxCycles {
		l.logger.Info("cycle limit reached", "cycles", n)
		l.Shutdown()
	}
	// No advance may be requested once shutdown began.
	if l.shuttingDown.Load() {
		return nil
	}
	if err := clock.RequestAdvance(now + l.cfg.Step); err != nil {
		return fmt.Errorf("cycle %d: %w", n, err)
	}
	return nil
}

func (l *Loop) waitWhileSuspended() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.suspended {
		l.logger.Info("execution suspended")
	}
	for l.suspended && !l.shuttingDown.Load() {
		l.cond.Wait()
	}
}

func (l *Loop) resign() error {
	l.resignOnce.Do(func() {
		if l.cfg.Resign == nil {
			return
		}
		if err := l.cfg.Resign(); err != nil {
			l.resignErr = fmt.Errorf("resign: %w", err)
		}
	})
	return l.resignErr
}

// Suspend pauses the loop after the current cycle's callback.
func (l *Loop) Suspend() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.suspended = true
}

// Resume releases a suspended loop.
func (l *Loop) Resume() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.suspended {
		l.logger.Info("execution resumed")
	}
	l.suspended = false
	l.cond.Broadcast()
}

// Shutdown stops the loop after the current cycle. A suspended loop is
// released.
func (l *Loop) Shutdown() {
	if l.shuttingDown.Swap(true) {
		return
	}
	l.logger.Info("execution shutdown requested")
	l.mu.Lock()
	l.cond.Broadcast()
	l.mu.Unlock()
}

// State returns the current loop state.
func (l *Loop) State() State {
	if l.shuttingDown.Load() {
		return StateShuttingDown
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.suspended {
		return StateSuspended
	}
	return StateRunning
}

// Done is closed when Run has returned.
func (l *Loop) Done() <-chan struct{} { return l.done }
