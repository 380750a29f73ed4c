package federate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/declaration"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/dispatch"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/execution"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/instance"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/log"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/rti"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/syncpoint"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/timing"
)

// Federate is the context object of one federate: it owns the runtime
// connection and every coordination component for the lifetime of one
// federation membership.
type Federate struct {
	config Config
	logger *slog.Logger
	tracer *log.Tracer

	amb        rti.Ambassador
	dispatcher *dispatch.Dispatcher
	classes    *declaration.Cache
	registry   *instance.Registry
	points     *syncpoint.Manager
	timing     *timing.Manager

	mu       sync.RWMutex
	state    State
	name     string
	handle   rti.FederateHandle
	loop     *execution.Loop
	received []ReceivedHandler

	resignOnce sync.Once
	resignErr  error
}

// New creates a federate that talks to the runtime through amb. It does
// not join.
func New(amb rti.Ambassador, config Config) (*Federate, error) {
	if amb == nil {
		return nil, fmt.Errorf("%w: ambassador is required", ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.MaxJoinAttempts <= 0 {
		config.MaxJoinAttempts = DefaultMaxJoinAttempts
	}
	if config.AwaitTimeout <= 0 {
		config.AwaitTimeout = DefaultAwaitTimeout
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("federate", config.FederateName)

	f := &Federate{
		config: config,
		logger: logger,
	}

	if config.Trace != nil {
		f.tracer = log.NewTracer(config.Trace)
		amb = &tracingAmbassador{Ambassador: amb, tracer: f.tracer}
	}
	f.amb = amb

	dcfg := config.Dispatch
	if dcfg.Logger == nil {
		dcfg.Logger = logger
	}
	f.dispatcher = dispatch.New(dcfg)
	f.classes = declaration.NewCache(amb, logger)
	f.registry = instance.NewRegistry(instance.Config{
		Ambassador:         amb,
		Classes:            f.classes,
		Dispatcher:         f.dispatcher,
		Logger:             logger,
		PollInterval:       config.PollInterval,
		ReservationTimeout: config.ReservationTimeout,
	})
	f.points = syncpoint.NewManager(syncpoint.Config{
		Ambassador:   amb,
		Logger:       logger,
		PollInterval: config.PollInterval,
	})
	f.timing = timing.NewManager(timing.Config{
		Ambassador:    amb,
		Logger:        logger,
		Lookahead:     config.Lookahead,
		PollInterval:  config.PollInterval,
		EnableTimeout: config.AwaitTimeout,
	})

	f.points.OnAnnounced(f.handleAnnounced)
	f.points.OnSynchronized(f.handleSynchronized)
	f.registry.OnAdded(func(e *instance.Entity) {
		f.tracer.State(log.StateEntityInstance, e.Name(), instance.Discovered.String(), instance.Populated.String(), "")
	})
	return f, nil
}

// Join joins the configured federation execution. If the federate name is
// taken, the join is retried with "-2", "-3", ... appended until
// MaxJoinAttempts is reached.
func (f *Federate) Join(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case StateJoined, StateRunning:
		return ErrAlreadyJoined
	case StateResigned:
		return ErrResigned
	}

	var lastErr error
	for attempt := 1; attempt <= f.config.MaxJoinAttempts; attempt++ {
		name := f.config.FederateName
		if attempt > 1 {
			name = fmt.Sprintf("%s-%d", f.config.FederateName, attempt)
		}

		h, err := f.amb.Join(ctx, name, f.config.FederateType, f.config.FederationName, f)
		if err == nil {
			f.name, f.handle = name, h
			f.setStateLocked(StateJoined)
			f.tracer.SetIdentity(name, f.config.FederationName)
			f.logger.Info("joined federation", "federation", f.config.FederationName, "name", name, "handle", h)
			return nil
		}
		if !errors.Is(err, rti.ErrFederateNameInUse) {
			return fmt.Errorf("join %s: %w", f.config.FederationName, err)
		}
		f.logger.Warn("federate name in use, retrying", "name", name)
		lastErr = err
	}
	return fmt.Errorf("join %s after %d attempts: %w", f.config.FederationName, f.config.MaxJoinAttempts, lastErr)
}

func (f *Federate) setStateLocked(s State) {
	if f.state == s {
		return
	}
	f.tracer.State(log.StateEntityFederate, f.name, f.state.String(), s.String(), "")
	f.state = s
}

func (f *Federate) setState(s State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setStateLocked(s)
}

// Run prepares time management, waits for the start point and runs the
// execution loop until shutdown. It resigns before returning.
func (f *Federate) Run(ctx context.Context, callback execution.Callback) error {
	f.mu.Lock()
	switch f.state {
	case StateIdle:
		f.mu.Unlock()
		return ErrNotJoined
	case StateRunning:
		f.mu.Unlock()
		return execution.ErrAlreadyRunning
	case StateResigned:
		f.mu.Unlock()
		return ErrResigned
	}
	loop := execution.New(execution.Config{
		Clock:        f.timing,
		Step:         f.config.Step,
		Callback:     callback,
		Resign:       f.Resign,
		MaxCycles:    f.config.MaxCycles,
		PollInterval: f.config.PollInterval,
		Logger:       f.logger,
	})
	f.loop = loop
	f.setStateLocked(StateRunning)
	f.mu.Unlock()

	if err := f.prepare(ctx); err != nil {
		return errors.Join(err, f.Resign())
	}
	return loop.Run(ctx)
}

func (f *Federate) prepare(ctx context.Context) error {
	if f.config.Regulating {
		if err := f.timing.EnableRegulation(ctx); err != nil {
			return err
		}
	}
	if f.config.Constrained {
		if err := f.timing.EnableConstraint(ctx); err != nil {
			return err
		}
	}
	if f.config.LateJoiner {
		if _, err := f.timing.JoinLate(ctx, f.config.LeastCommonTimeStep, f.config.AwaitTimeout); err != nil {
			return err
		}
	}
	if f.config.StartPoint != "" {
		if err := f.awaitStart(ctx); err != nil {
			return err
		}
	}
	return nil
}

// awaitStart passes the start point: register it when configured, wait for
// the announcement, achieve it and wait for the federation to synchronize.
func (f *Federate) awaitStart(ctx context.Context) error {
	label, timeout := f.config.StartPoint, f.config.AwaitTimeout

	if f.config.RegisterStartPoint && !f.points.IsAnnounced(label) {
		if err := f.points.Register(label, nil); err != nil {
			return err
		}
	}
	if !f.points.AwaitAnnouncement(ctx, label, timeout) {
		return fmt.Errorf("%w: %s not announced", ErrStartPoint, label)
	}
	if err := f.points.Achieve(label); err != nil {
		return err
	}
	if !f.points.AwaitSynchronization(ctx, label, timeout) {
		return fmt.Errorf("%w: %s not synchronized", ErrStartPoint, label)
	}
	f.logger.Info("start point synchronized", "label", label)
	return nil
}

func (f *Federate) handleAnnounced(label string, _ []byte) {
	loop := f.Loop()
	switch label {
	case "":
		return
	case f.config.FreezePoint:
		if loop != nil {
			loop.Suspend()
		}
		f.achieve(label)
		f.tracer.State(log.StateEntityExecution, f.Name(), "RUNNING", "FROZEN", label)
	case f.config.RunPoint:
		f.achieve(label)
	case f.config.ShutdownPoint:
		f.achieve(label)
		if loop != nil {
			loop.Shutdown()
		}
		f.tracer.State(log.StateEntityExecution, f.Name(), "RUNNING", "SHUTTING_DOWN", label)
	}
}

func (f *Federate) handleSynchronized(label string) {
	f.tracer.State(log.StateEntitySyncPoint, label, "ANNOUNCED", "SYNCHRONIZED", "")
	if label == "" || label != f.config.RunPoint {
		return
	}
	if loop := f.Loop(); loop != nil {
		loop.Resume()
	}
	// Freeze and run may be announced again by the next mode transition.
	f.points.Reset(f.config.FreezePoint)
	f.points.Reset(f.config.RunPoint)
	f.tracer.State(log.StateEntityExecution, f.Name(), "FROZEN", "RUNNING", label)
}

func (f *Federate) achieve(label string) {
	if err := f.points.Achieve(label); err != nil {
		f.logger.Warn("achieve synchronization point failed", "label", label, "error", err)
		f.tracer.Error("SynchronizationPointAchieved", err)
	}
}

// Resign leaves the federation execution; the runtime deletes the owned
// instances. It runs at most once and later calls return the first result.
func (f *Federate) Resign() error {
	f.resignOnce.Do(func() {
		f.mu.RLock()
		joined := f.state == StateJoined || f.state == StateRunning
		f.mu.RUnlock()

		if joined {
			if err := f.amb.Resign(); err != nil {
				f.resignErr = fmt.Errorf("resign: %w", err)
			}
		}
		f.setState(StateResigned)
		if err := f.dispatcher.Close(); err != nil {
			f.resignErr = errors.Join(f.resignErr, err)
		}
		f.logger.Info("resigned from federation", "error", f.resignErr)
	})
	return f.resignErr
}

// Suspend pauses the execution loop after the current cycle.
func (f *Federate) Suspend() {
	if loop := f.Loop(); loop != nil {
		loop.Suspend()
	}
}

// Resume continues a suspended execution loop.
func (f *Federate) Resume() {
	if loop := f.Loop(); loop != nil {
		loop.Resume()
	}
}

// Shutdown stops the execution loop; Run returns after resigning.
func (f *Federate) Shutdown() {
	if loop := f.Loop(); loop != nil {
		loop.Shutdown()
	}
}

// State returns the lifecycle state.
func (f *Federate) State() State {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state
}

// Name returns the name the federate joined with, which may carry a
// collision suffix.
func (f *Federate) Name() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.name
}

// Handle returns the federate handle assigned on join.
func (f *Federate) Handle() rti.FederateHandle {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.handle
}

// Loop returns the execution loop once Run has started.
func (f *Federate) Loop() *execution.Loop {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.loop
}

// Config returns the configuration.
func (f *Federate) Config() Config { return f.config }

// Classes returns the class model cache.
func (f *Federate) Classes() *declaration.Cache { return f.classes }

// Registry returns the entity registry.
func (f *Federate) Registry() *instance.Registry { return f.registry }

// SyncPoints returns the synchronization point manager.
func (f *Federate) SyncPoints() *syncpoint.Manager { return f.points }

// Time returns the time manager.
func (f *Federate) Time() *timing.Manager { return f.timing }

// Dispatcher returns the notification dispatcher.
func (f *Federate) Dispatcher() *dispatch.Dispatcher { return f.dispatcher }

// SessionID returns the trace session ID, or "" without tracing.
func (f *Federate) SessionID() string { return f.tracer.SessionID() }
