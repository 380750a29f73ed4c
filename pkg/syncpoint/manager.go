package syncpoint

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/internal/poll"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/rti"
)

// Config configures a Manager.
type Config struct {
	Ambassador rti.Ambassador
	Logger     *slog.Logger

	// PollInterval is the await polling interval.
	PollInterval time.Duration
}

// Manager owns every synchronization point known to the federate. Points
// are created on first mention, whether by a local call or a callback.
type Manager struct {
	amb          rti.Ambassador
	logger       *slog.Logger
	pollInterval time.Duration

	mu     sync.RWMutex
	points map[string]*Point

	listenerMu     sync.RWMutex
	onAnnounced    []func(label string, tag []byte)
	onSynchronized []func(label string)
}

// NewManager creates a manager with no points.
func NewManager(cfg Config) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = poll.DefaultInterval
	}
	return &Manager{
		amb:          cfg.Ambassador,
		logger:       logger.With("component", "syncpoint"),
		pollInterval: interval,
		points:       make(map[string]*Point),
	}
}

// Point returns the point with the given label, creating it if needed.
func (m *Manager) Point(label string) *Point {
	m.mu.RLock()
	p, ok := m.points[label]
	m.mu.RUnlock()
	if ok {
		return p
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.points[label]; ok {
		return p
	}
	p = &Point{label: label}
	m.points[label] = p
	return p
}

// Labels returns the known point labels in sorted order.
func (m *Manager) Labels() []string {
	m.mu.RLock()
	out := make([]string, 0, len(m.points))
	for label := range m.points {
		out = append(out, label)
	}
	m.mu.RUnlock()
	slices.Sort(out)
	return out
}

// OnAnnounced registers a listener called on the callback goroutine for
// every first announcement. Listeners must not block.
func (m *Manager) OnAnnounced(fn func(label string, tag []byte)) {
	m.listenerMu.Lock()
	defer m.listenerMu.Unlock()
	m.onAnnounced = append(m.onAnnounced, fn)
}

// OnSynchronized registers a listener called on the callback goroutine
// when the federation synchronizes on a point. Listeners must not block.
func (m *Manager) OnSynchronized(fn func(label string)) {
	m.listenerMu.Lock()
	defer m.listenerMu.Unlock()
	m.onSynchronized = append(m.onSynchronized, fn)
}

// Register asks the runtime to register label. The outcome arrives through
// RegistrationSucceeded or RegistrationFailed.
func (m *Manager) Register(label string, tag []byte) error {
	p := m.Point(label)
	p.succeeded.Store(false)
	p.failed.Store(false)
	p.requested.Store(true)

	if err := m.amb.RegisterSynchronizationPoint(label, tag); err != nil {
		p.requested.Store(false)
		return fmt.Errorf("register sync point %q: %w", label, err)
	}
	m.logger.Info("sync point registration requested", "label", label)
	return nil
}

// Achieve reports label achieved. Achieving a point that was not announced
// is logged and ignored, as is a repeated achievement.
func (m *Manager) Achieve(label string) error {
	p := m.Point(label)
	if !p.IsAnnounced() {
		m.logger.Warn("achieving sync point that was not announced", "label", label)
		return nil
	}
	if p.IsAchieved() {
		m.logger.Warn("sync point already achieved", "label", label)
		return nil
	}
	if err := m.amb.SynchronizationPointAchieved(label); err != nil {
		return fmt.Errorf("achieve sync point %q: %w", label, err)
	}
	p.achieved.Store(true)
	m.logger.Info("sync point achieved", "label", label)
	return nil
}

// RegistrationSucceeded handles the registration success callback.
func (m *Manager) RegistrationSucceeded(label string) {
	p := m.Point(label)
	p.failed.Store(false)
	if p.succeeded.Swap(true) {
		return
	}
	m.logger.Info("sync point registered", "label", label)
}

// RegistrationFailed handles the registration failure callback. A point
// that is already registered by another federate fails here too.
func (m *Manager) RegistrationFailed(label, reason string) {
	p := m.Point(label)
	p.mu.Lock()
	p.reason = reason
	p.mu.Unlock()
	p.succeeded.Store(false)
	if p.failed.Swap(true) {
		return
	}
	m.logger.Warn("sync point registration failed", "label", label, "reason", reason)
}

// Announced handles the announcement callback.
func (m *Manager) Announced(label string, tag []byte) {
	p := m.Point(label)
	p.mu.Lock()
	p.tag = tag
	p.mu.Unlock()
	if p.announced.Swap(true) {
		m.logger.Debug("repeated sync point announcement", "label", label)
		return
	}
	m.logger.Info("sync point announced", "label", label)

	m.listenerMu.RLock()
	listeners := slices.Clone(m.onAnnounced)
	m.listenerMu.RUnlock()
	for _, fn := range listeners {
		fn(label, tag)
	}
}

// Synchronized handles the federation-synchronized callback.
func (m *Manager) Synchronized(label string) {
	p := m.Point(label)
	if p.synchronized.Swap(true) {
		return
	}
	m.logger.Info("federation synchronized", "label", label)

	m.listenerMu.RLock()
	listeners := slices.Clone(m.onSynchronized)
	m.listenerMu.RUnlock()
	for _, fn := range listeners {
		fn(label)
	}
}

// IsAnnounced reports whether label was announced.
func (m *Manager) IsAnnounced(label string) bool { return m.Point(label).IsAnnounced() }

// IsRegistered reports whether this federate registered label.
func (m *Manager) IsRegistered(label string) bool { return m.Point(label).IsRegistered() }

// IsRegistrationFailed reports whether registering label failed.
func (m *Manager) IsRegistrationFailed(label string) bool {
	return m.Point(label).IsRegistrationFailed()
}

// IsSynchronized reports whether the federation synchronized on label.
func (m *Manager) IsSynchronized(label string) bool { return m.Point(label).IsSynchronized() }

// Reset restores label to its initial state so it can be reused.
func (m *Manager) Reset(label string) {
	m.Point(label).reset()
}

// ResetAll restores every known point.
func (m *Manager) ResetAll() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.points {
		p.reset()
	}
}

// AwaitAnnouncement waits until label is announced. It returns false on
// timeout or when ctx is done first.
func (m *Manager) AwaitAnnouncement(ctx context.Context, label string, timeout time.Duration) bool {
	p := m.Point(label)
	return poll.Until(ctx, m.pollInterval, timeout, p.IsAnnounced)
}

// AwaitSynchronization waits until the federation synchronizes on label.
func (m *Manager) AwaitSynchronization(ctx context.Context, label string, timeout time.Duration) bool {
	p := m.Point(label)
	return poll.Until(ctx, m.pollInterval, timeout, p.IsSynchronized)
}

// AwaitRegistration waits until registering label succeeded or failed and
// returns the resulting state.
func (m *Manager) AwaitRegistration(ctx context.Context, label string, timeout time.Duration) Registration {
	p := m.Point(label)
	poll.Until(ctx, m.pollInterval, timeout, func() bool {
		return p.Registration() != RegistrationPending
	})
	return p.Registration()
}
