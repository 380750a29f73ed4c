// Package timing implements the federate's logical time state machine.
//
// A federate is regulating, constrained and advancing independently. The
// advancing flag is set exactly between a time advance request and its
// grant; a grant for a time earlier than the requested one is stale and
// leaves it set. Federation time only moves forward.
package timing

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

// DefaultEnableTimeout bounds the wait for regulation/constrained callbacks.
const DefaultEnableTimeout = 30 * time.Second

// Timing errors.
var (
	ErrTimeout     = errors.New("time management wait timed out")
	ErrTimeInPast  = errors.New("advance target before federate time")
	ErrNoTimeStep  = errors.New("least common time step must be positive")
	ErrNotAdvanced = errors.New("late join advance not granted")
)

// Config configures a Manager.
type Config struct {
	Ambassador rti.Ambassador
	Logger     *slog.Logger

	// Lookahead used when enabling regulation.
	Lookahead rti.Time

	PollInterval time.Duration

	// EnableTimeout bounds EnableRegulation and EnableConstraint.
	EnableTimeout time.Duration
}

// State is a point-in-time copy of the time state.
type State struct {
	FederateTime   rti.Time
	FederationTime rti.Time
	Lookahead      rti.Time
	Requested      rti.Time
	Advancing      bool
	Regulating     bool
	Constrained    bool
	Cycles         uint64
}

// Manager holds the time state. Each flag has a single writer at a time:
// the requesting goroutine sets it, the callback goroutine clears it.
type Manager struct {
	amb           rti.Ambassador
	logger        *slog.Logger
	pollInterval  time.Duration
	enableTimeout time.Duration

	federateTime   atomic.Int64
	federationTime atomic.Int64
	lookahead      atomic.Int64
	requested      atomic.Int64

	advancing   atomic.Bool
	regulating  atomic.Bool
	constrained atomic.Bool

	cycles atomic.Uint64

	// reqMu serializes outgoing requests.
	reqMu sync.Mutex
}

// NewManager creates a manager at logical time zero.
func NewManager(cfg Config) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		amb:           cfg.Ambassador,
		logger:        logger.With("component", "timing"),
		pollInterval:  cfg.PollInterval,
		enableTimeout: cfg.EnableTimeout,
	}
	if m.pollInterval <= 0 {
		m.pollInterval = poll.DefaultInterval
	}
	if m.enableTimeout <= 0 {
		m.enableTimeout = DefaultEnableTimeout
	}
	m.lookahead.Store(int64(cfg.Lookahead))
	return m
}

// EnableRegulation requests time regulation and waits for the callback.
// It is meant for setup, not for the cycle loop.
func (m *Manager) EnableRegulation(ctx context.Context) error {
	m.reqMu.Lock()
	defer m.reqMu.Unlock()

	if m.regulating.Load() {
		m.logger.Warn("time regulation already enabled")
		return nil
	}
	if err := m.amb.EnableTimeRegulation(m.Lookahead()); err != nil {
		return fmt.Errorf("enable time regulation: %w", err)
	}
	if !poll.Until(ctx, m.pollInterval, m.enableTimeout, m.regulating.Load) {
		return fmt.Errorf("%w: regulation enabled callback", ErrTimeout)
	}
	return nil
}

// EnableConstraint requests time constrained mode and waits for the
// callback.
func (m *Manager) EnableConstraint(ctx context.Context) error {
	m.reqMu.Lock()
	defer m.reqMu.Unlock()

	if m.constrained.Load() {
		m.logger.Warn("time constrained already enabled")
		return nil
	}
	if err := m.amb.EnableTimeConstrained(); err != nil {
		return fmt.Errorf("enable time constrained: %w", err)
	}
	if !poll.Until(ctx, m.pollInterval, m.enableTimeout, m.constrained.Load) {
		return fmt.Errorf("%w: constrained enabled callback", ErrTimeout)
	}
	return nil
}

// DisableRegulation turns time regulation off.
func (m *Manager) DisableRegulation() error {
	m.reqMu.Lock()
	defer m.reqMu.Unlock()

	if !m.regulating.Load() {
		m.logger.Warn("time regulation not enabled")
		return nil
	}
	if err := m.amb.DisableTimeRegulation(); err != nil {
		return fmt.Errorf("disable time regulation: %w", err)
	}
	m.regulating.Store(false)
	m.logger.Info("time regulation disabled")
	return nil
}

// DisableConstraint turns time constrained mode off.
func (m *Manager) DisableConstraint() error {
	m.reqMu.Lock()
	defer m.reqMu.Unlock()

	if !m.constrained.Load() {
		m.logger.Warn("time constrained not enabled")
		return nil
	}
	if err := m.amb.DisableTimeConstrained(); err != nil {
		return fmt.Errorf("disable time constrained: %w", err)
	}
	m.constrained.Store(false)
	m.logger.Info("time constrained disabled")
	return nil
}

// RequestAdvance asks the runtime to advance to target. A request while an
// advance is pending is logged and ignored.
func (m *Manager) RequestAdvance(target rti.Time) error {
	m.reqMu.Lock()
	defer m.reqMu.Unlock()

	if m.advancing.Load() {
		m.logger.Warn("time advance already pending", "requested", m.Requested(), "target", target)
		return nil
	}
	if now := m.FederateTime(); target < now {
		return fmt.Errorf("%w: %s < %s", ErrTimeInPast, target, now)
	}

	m.requested.Store(int64(target))
	m.advancing.Store(true)
	if err := m.amb.TimeAdvanceRequest(target); err != nil {
		m.advancing.Store(false)
		return fmt.Errorf("time advance request to %s: %w", target, err)
	}
	m.logger.Debug("time advance requested", "target", target)
	return nil
}

// AwaitGrant waits for the pending advance to be granted.
func (m *Manager) AwaitGrant(ctx context.Context, timeout time.Duration) bool {
	return poll.Until(ctx, m.pollInterval, timeout, func() bool { return !m.advancing.Load() })
}

// RegulationEnabled handles the regulation enabled callback.
func (m *Manager) RegulationEnabled(t rti.Time) {
	m.setFederateTime(t)
	m.regulating.Store(true)
	m.logger.Info("time regulation enabled", "time", t)
}

// ConstrainedEnabled handles the constrained enabled callback.
func (m *Manager) ConstrainedEnabled(t rti.Time) {
	m.setFederateTime(t)
	m.constrained.Store(true)
	m.logger.Info("time constrained enabled", "time", t)
}

// AdvanceGranted handles a time advance grant. Grants without a pending
// request, or earlier than the requested time, are ignored.
func (m *Manager) AdvanceGranted(t rti.Time) {
	if !m.advancing.Load() {
		m.logger.Warn("grant without pending advance ignored", "time", t)
		return
	}
	if requested := m.Requested(); t < requested {
		m.logger.Warn("stale time advance grant ignored", "time", t, "requested", requested)
		return
	}
	m.setFederateTime(t)
	m.advancing.Store(false)
	m.logger.Debug("time advance granted", "time", t)
}

// QueryGALT asks the runtime for the greatest available logical time and
// folds it into the federation time. ok is false when no regulating
// federate constrains this one.
func (m *Manager) QueryGALT() (galt rti.Time, ok bool, err error) {
	galt, ok, err = m.amb.QueryGALT()
	if err != nil {
		return 0, false, fmt.Errorf("query GALT: %w", err)
	}
	if ok {
		m.raiseFederationTime(galt)
	}
	return galt, ok, nil
}

// LateJoinerBoundary returns the first multiple of lcts strictly after
// galt. A GALT already on a boundary maps to the next one.
func LateJoinerBoundary(galt, lcts rti.Time) (rti.Time, error) {
	if lcts <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrNoTimeStep, lcts)
	}
	return (galt/lcts + 1) * lcts, nil
}

// JoinLate aligns a federate joining a running execution: it queries GALT,
// advances to the next least-common-time-step boundary and waits for the
// grant. It returns the time the federate now stands at.
func (m *Manager) JoinLate(ctx context.Context, lcts rti.Time, timeout time.Duration) (rti.Time, error) {
	galt, ok, err := m.QueryGALT()
	if err != nil {
		return 0, err
	}
	if !ok {
		m.logger.Info("no GALT available, late join alignment skipped")
		return m.FederateTime(), nil
	}

	boundary, err := LateJoinerBoundary(galt, lcts)
	if err != nil {
		return 0, err
	}
	if boundary <= m.FederateTime() {
		return m.FederateTime(), nil
	}

	m.logger.Info("late joiner advancing to boundary", "galt", galt, "boundary", boundary)
	if err := m.RequestAdvance(boundary); err != nil {
		return 0, err
	}
	if !m.AwaitGrant(ctx, timeout) {
		return 0, fmt.Errorf("%w: boundary %s", ErrNotAdvanced, boundary)
	}
	return m.FederateTime(), nil
}

// IncrementCycles counts one execution cycle and returns the new count.
func (m *Manager) IncrementCycles() uint64 { return m.cycles.Add(1) }

// Cycles returns the executed cycle count.
func (m *Manager) Cycles() uint64 { return m.cycles.Load() }

// FederateTime returns the federate's granted logical time.
func (m *Manager) FederateTime() rti.Time { return rti.Time(m.federateTime.Load()) }

// FederationTime returns the highest logical time seen in the federation.
func (m *Manager) FederationTime() rti.Time { return rti.Time(m.federationTime.Load()) }

// Lookahead returns the regulation lookahead.
func (m *Manager) Lookahead() rti.Time { return rti.Time(m.lookahead.Load()) }

// Requested returns the target of the last advance request.
func (m *Manager) Requested() rti.Time { return rti.Time(m.requested.Load()) }

// IsAdvancing reports whether an advance request awaits its grant.
func (m *Manager) IsAdvancing() bool { return m.advancing.Load() }

// IsRegulating reports whether time regulation is enabled.
func (m *Manager) IsRegulating() bool { return m.regulating.Load() }

// IsConstrained reports whether time constrained mode is enabled.
func (m *Manager) IsConstrained() bool { return m.constrained.Load() }

// Snapshot returns a copy of the time state. Fields are read one at a time,
// so the copy is not atomic as a whole.
func (m *Manager) Snapshot() State {
	return State{
		FederateTime:   m.FederateTime(),
		FederationTime: m.FederationTime(),
		Lookahead:      m.Lookahead(),
		Requested:      m.Requested(),
		Advancing:      m.IsAdvancing(),
		Regulating:     m.IsRegulating(),
		Constrained:    m.IsConstrained(),
		Cycles:         m.Cycles(),
	}
}

func (m *Manager) setFederateTime(t rti.Time) {
	m.federateTime.Store(int64(t))
	m.raiseFederationTime(t)
}

func (m *Manager) raiseFederationTime(t rti.Time) {
	for {
		cur := m.federationTime.Load()
		if int64(t) <= cur || m.federationTime.CompareAndSwap(cur, int64(t)) {
			return
		}
	}
}
