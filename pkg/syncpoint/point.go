package syncpoint

import (
	"sync"
	"sync/atomic"
)

// Registration is the registration state of a point.
type Registration uint8

const (
	Unregistered Registration = iota
	RegistrationPending
	RegistrationSucceeded
	RegistrationFailed
)

// String returns the registration state name.
func (r Registration) String() string {
	switch r {
	case Unregistered:
		return "UNREGISTERED"
	case RegistrationPending:
		return "PENDING"
	case RegistrationSucceeded:
		return "SUCCEEDED"
	case RegistrationFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Point is one named synchronization point.
type Point struct {
	label string

	requested    atomic.Bool
	announced    atomic.Bool
	succeeded    atomic.Bool
	failed       atomic.Bool
	achieved     atomic.Bool
	synchronized atomic.Bool

	mu     sync.Mutex
	tag    []byte
	reason string
}

// Label returns the point name.
func (p *Point) Label() string { return p.label }

// IsAnnounced reports whether the federation announced the point.
func (p *Point) IsAnnounced() bool { return p.announced.Load() }

// IsRegistered reports whether this federate's registration succeeded.
func (p *Point) IsRegistered() bool { return p.succeeded.Load() }

// IsRegistrationFailed reports whether this federate's registration failed.
func (p *Point) IsRegistrationFailed() bool { return p.failed.Load() }

// IsAchieved reports whether this federate reported the point achieved.
func (p *Point) IsAchieved() bool { return p.achieved.Load() }

// IsSynchronized reports whether the whole federation reached the point.
func (p *Point) IsSynchronized() bool { return p.synchronized.Load() }

// Registration returns the registration state.
func (p *Point) Registration() Registration {
	switch {
	case p.succeeded.Load():
		return RegistrationSucceeded
	case p.failed.Load():
		return RegistrationFailed
	case p.requested.Load():
		return RegistrationPending
	default:
		return Unregistered
	}
}

// Tag returns the tag received with the announcement.
func (p *Point) Tag() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tag
}

// FailureReason returns the reason given for a failed registration.
func (p *Point) FailureReason() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reason
}

// reset restores the initial state.
func (p *Point) reset() {
	p.requested.Store(false)
	p.announced.Store(false)
	p.succeeded.Store(false)
	p.failed.Store(false)
	p.achieved.Store(false)
	p.synchronized.Store(false)

	p.mu.Lock()
	p.tag = nil
	p.reason = ""
	p.mu.Unlock()
}
