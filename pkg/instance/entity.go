package instance

import (
	"sync"
	"sync/atomic"

	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/declaration"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/rti"
)

// Origin tells whether an entity is owned by this federate.
type Origin uint8

const (
	// Local entities were registered by this federate.
	Local Origin = iota

	// Remote entities were discovered from other federates.
	Remote
)

// String returns the origin name.
func (o Origin) String() string {
	switch o {
	case Local:
		return "LOCAL"
	case Remote:
		return "REMOTE"
	default:
		return "UNKNOWN"
	}
}

// Maturity is the population state of a remote entity.
type Maturity uint8

const (
	// Discovered entities have not received any attribute values yet.
	Discovered Maturity = iota

	// Populated entities have been reflected at least once.
	Populated
)

// String returns the maturity name.
func (m Maturity) String() string {
	if m == Populated {
		return "POPULATED"
	}
	return "DISCOVERED"
}

// Entity is one object instance and the application element carrying its
// values.
type Entity struct {
	name    string
	handle  rti.ObjectInstanceHandle
	class   *declaration.ObjectClass
	element any
	origin  Origin

	// reserved is set when name was obtained through a reservation.
	reserved bool

	// mu serializes reads and writes of element by this package.
	mu sync.Mutex

	populated atomic.Bool
	removed   atomic.Bool
}

// Name returns the instance name.
func (e *Entity) Name() string { return e.name }

// Handle returns the instance handle.
func (e *Entity) Handle() rti.ObjectInstanceHandle { return e.handle }

// Class returns the owning class model.
func (e *Entity) Class() *declaration.ObjectClass { return e.class }

// Element returns the application element. Concurrent access must go
// through Do while reflects may be running.
func (e *Entity) Element() any { return e.element }

// Origin returns whether the entity is local or remote.
func (e *Entity) Origin() Origin { return e.origin }

// IsLocal reports whether this federate owns the entity.
func (e *Entity) IsLocal() bool { return e.origin == Local }

// Maturity returns the population state. Local entities are always
// Populated.
func (e *Entity) Maturity() Maturity {
	if e.origin == Local || e.populated.Load() {
		return Populated
	}
	return Discovered
}

// Removed reports whether the entity has left the registry.
func (e *Entity) Removed() bool { return e.removed.Load() }

// Do calls fn with the element while holding the entity lock. Use it to
// read or mutate an element that reflects or updates may touch concurrently.
func (e *Entity) Do(fn func(element any)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.element)
}
