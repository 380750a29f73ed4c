package log

import (
	"time"
)

// Event is one trace record: a call made to the runtime, a callback received
// from it, or a local state change. CBOR encoding uses integer keys for
// compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies one federate process run (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Direction tells calls (out) from callbacks (in).
	Direction Direction `cbor:"3,keyasint"`

	// Category classifies the event.
	Category Category `cbor:"4,keyasint"`

	// Federate is the federate name (populated after join).
	Federate string `cbor:"5,keyasint,omitempty"`

	// Federation is the federation execution name.
	Federation string `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Call        *CallEvent        `cbor:"10,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"11,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"12,keyasint,omitempty"`
}

// Direction indicates which side initiated the event.
type Direction uint8

const (
	// DirectionIn is a callback delivered by the runtime.
	DirectionIn Direction = 0
	// DirectionOut is a request made to the runtime.
	DirectionOut Direction = 1
	// DirectionLocal is a federate-internal event.
	DirectionLocal Direction = 2
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	case DirectionLocal:
		return "LOCAL"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event.
type Category uint8

const (
	CategoryFederation  Category = 0
	CategoryDeclaration Category = 1
	CategoryObject      Category = 2
	CategoryInteraction Category = 3
	CategoryTime        Category = 4
	CategorySync        Category = 5
	CategoryState       Category = 6
	CategoryError       Category = 7
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryFederation:
		return "FEDERATION"
	case CategoryDeclaration:
		return "DECLARATION"
	case CategoryObject:
		return "OBJECT"
	case CategoryInteraction:
		return "INTERACTION"
	case CategoryTime:
		return "TIME"
	case CategorySync:
		return "SYNC"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// CallEvent captures one runtime request or callback.
type CallEvent struct {
	// Name is the request or callback name, e.g. "UpdateAttributeValues".
	Name string `cbor:"1,keyasint"`

	// Class is the class handle involved, if any.
	Class uint64 `cbor:"2,keyasint,omitempty"`

	// Instance is the object instance handle involved, if any.
	Instance uint64 `cbor:"3,keyasint,omitempty"`

	// Label is an instance name or sync point label.
	Label string `cbor:"4,keyasint,omitempty"`

	// Time is the logical time in microseconds for time calls.
	Time *int64 `cbor:"5,keyasint,omitempty"`

	// Values maps field handles to encoded value sizes.
	Values map[uint64]int `cbor:"6,keyasint,omitempty"`

	// Tag is the user-supplied tag.
	Tag []byte `cbor:"7,keyasint,omitempty"`

	// Result is the error text of a failed request.
	Result string `cbor:"8,keyasint,omitempty"`

	// Duration is how long a request took. Stored as nanoseconds.
	Duration *time.Duration `cbor:"9,keyasint,omitempty"`
}

// StateChangeEvent captures federate lifecycle changes.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// Name identifies the changed item (point label, instance name).
	Name string `cbor:"2,keyasint,omitempty"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"3,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"4,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"5,keyasint,omitempty"`
}

// StateEntity indicates what changed state.
type StateEntity uint8

const (
	StateEntityFederate  StateEntity = 0
	StateEntityExecution StateEntity = 1
	StateEntitySyncPoint StateEntity = 2
	StateEntityInstance  StateEntity = 3
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityFederate:
		return "FEDERATE"
	case StateEntityExecution:
		return "EXECUTION"
	case StateEntitySyncPoint:
		return "SYNC_POINT"
	case StateEntityInstance:
		return "INSTANCE"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors.
type ErrorEventData struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"2,keyasint,omitempty"`
}
