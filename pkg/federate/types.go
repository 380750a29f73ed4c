package federate

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/dispatch"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/log"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/rti"
)

// Federate errors.
var (
	ErrInvalidConfig = errors.New("invalid federate configuration")
	ErrNotJoined     = errors.New("federate not joined")
	ErrAlreadyJoined = errors.New("federate already joined")
	ErrResigned      = errors.New("federate resigned")
	ErrStartPoint    = errors.New("start synchronization point not reached")
)

// State represents the federate lifecycle state.
type State uint8

const (
	// StateIdle - created, not joined.
	StateIdle State = iota

	// StateJoined - joined, execution loop not started.
	StateJoined

	// StateRunning - execution loop running.
	StateRunning

	// StateResigned - resigned; the federate cannot be reused.
	StateResigned
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateJoined:
		return "JOINED"
	case StateRunning:
		return "RUNNING"
	case StateResigned:
		return "RESIGNED"
	default:
		return "UNKNOWN"
	}
}

// Default configuration values.
const (
	DefaultMaxJoinAttempts = 5
	DefaultAwaitTimeout    = 30 * time.Second
)

// Config configures a Federate.
type Config struct {
	// FederationName is the federation execution to join.
	FederationName string

	// FederateName is the requested federate name. On a name collision
	// the join is retried as "<name>-2", "<name>-3", ...
	FederateName string

	// FederateType is reported to the runtime on join.
	FederateType string

	// MaxJoinAttempts bounds the name collision retries (default: 5).
	MaxJoinAttempts int

	// Step is the logical time advanced every cycle. Required.
	Step rti.Time

	// Lookahead is used when time regulation is enabled.
	Lookahead rti.Time

	// Regulating and Constrained enable the time management modes
	// before the first cycle.
	Regulating  bool
	Constrained bool

	// LateJoiner aligns federate time to the next LeastCommonTimeStep
	// boundary after GALT before the first cycle.
	LateJoiner          bool
	LeastCommonTimeStep rti.Time

	// StartPoint, if set, is awaited (announce, achieve, synchronize)
	// before the first cycle. With RegisterStartPoint the federate
	// registers it itself.
	StartPoint         string
	RegisterStartPoint bool

	// Execution-control points. A freeze announcement suspends the loop
	// until the run point synchronizes; a shutdown announcement stops it.
	FreezePoint   string
	RunPoint      string
	ShutdownPoint string

	// MaxCycles stops the loop after that many cycles (0 = unlimited).
	MaxCycles uint64

	// PollInterval is the interval of every polling wait.
	PollInterval time.Duration

	// AwaitTimeout bounds start point, time management and late join waits.
	AwaitTimeout time.Duration

	// ReservationTimeout bounds instance name reservations.
	ReservationTimeout time.Duration

	// Dispatch configures the notification dispatcher.
	Dispatch dispatch.Config

	// Trace receives a machine-readable record of every runtime call and
	// callback. If nil, no trace is written.
	Trace log.Logger

	// Logger is the operational logger. If nil, slog.Default is used.
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults. FederationName,
// FederateName and Step still need to be set.
func DefaultConfig() Config {
	return Config{
		FederateType:    "SEE",
		MaxJoinAttempts: DefaultMaxJoinAttempts,
		AwaitTimeout:    DefaultAwaitTimeout,
		Dispatch:        dispatch.DefaultConfig(),
	}
}

// Validate reports the first missing or inconsistent setting.
func (c Config) Validate() error {
	switch {
	case c.FederationName == "":
		return fmt.Errorf("%w: federation name is required", ErrInvalidConfig)
	case c.FederateName == "":
		return fmt.Errorf("%w: federate name is required", ErrInvalidConfig)
	case c.Step <= 0:
		return fmt.Errorf("%w: time step must be positive", ErrInvalidConfig)
	case c.Lookahead < 0:
		return fmt.Errorf("%w: lookahead must not be negative", ErrInvalidConfig)
	case c.LateJoiner && c.LeastCommonTimeStep <= 0:
		return fmt.Errorf("%w: late joiner needs a least common time step", ErrInvalidConfig)
	case c.RunPoint != "" && c.FreezePoint == "":
		return fmt.Errorf("%w: run point without freeze point", ErrInvalidConfig)
	}
	return nil
}

// ReceivedHandler is called for every received interaction after its
// parameters were decoded into element.
type ReceivedHandler func(class string, element any, tag []byte)
