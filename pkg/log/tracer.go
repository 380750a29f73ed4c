package log

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Tracer stamps events with the session and federate identity before
// handing them to a Logger. A nil *Tracer discards everything.
type Tracer struct {
	logger  Logger
	session string

	mu         sync.RWMutex
	federate   string
	federation string
}

// NewTracer creates a tracer with a fresh session ID. A nil logger yields
// a tracer that discards events.
func NewTracer(logger Logger) *Tracer {
	if logger == nil {
		logger = NoopLogger{}
	}
	return &Tracer{
		logger:  logger,
		session: uuid.NewString(),
	}
}

// SessionID returns the session ID stamped on every event.
func (t *Tracer) SessionID() string {
	if t == nil {
		return ""
	}
	return t.session
}

// SetIdentity records the federate and federation names once joined.
func (t *Tracer) SetIdentity(federate, federation string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.federate = federate
	t.federation = federation
}

func (t *Tracer) emit(ev Event) {
	ev.Timestamp = time.Now()
	ev.SessionID = t.session
	t.mu.RLock()
	ev.Federate = t.federate
	ev.Federation = t.federation
	t.mu.RUnlock()
	t.logger.Log(ev)
}

// Call records a runtime request (DirectionOut) or callback (DirectionIn).
func (t *Tracer) Call(dir Direction, cat Category, call CallEvent) {
	if t == nil {
		return
	}
	t.emit(Event{Direction: dir, Category: cat, Call: &call})
}

// State records a local state change.
func (t *Tracer) State(entity StateEntity, name, oldState, newState, reason string) {
	if t == nil {
		return
	}
	t.emit(Event{
		Direction: DirectionLocal,
		Category:  CategoryState,
		StateChange: &StateChangeEvent{
			Entity:   entity,
			Name:     name,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	})
}

// Error records an error raised while performing context.
func (t *Tracer) Error(context string, err error) {
	if t == nil || err == nil {
		return
	}
	t.emit(Event{
		Direction: DirectionLocal,
		Category:  CategoryError,
		Error:     &ErrorEventData{Message: err.Error(), Context: context},
	})
}
