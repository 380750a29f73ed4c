package examples

import (
	"fmt"

	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/codec"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/model"
)

// ExecutionMode is the federation-wide execution mode.
type ExecutionMode int32

const (
	ModeUninitialized ExecutionMode = iota
	ModeInitializing
	ModeRunning
	ModeFreeze
	ModeShutdown
)

// String returns the mode name.
func (m ExecutionMode) String() string {
	switch m {
	case ModeUninitialized:
		return "UNINITIALIZED"
	case ModeInitializing:
		return "INITIALIZING"
	case ModeRunning:
		return "RUNNING"
	case ModeFreeze:
		return "FREEZE"
	case ModeShutdown:
		return "SHUTDOWN"
	default:
		return fmt.Sprintf("ExecutionMode(%d)", int32(m))
	}
}

// MTRMode is the mode a ModeTransitionRequest asks for.
type MTRMode int32

const (
	MTRGotoRun      MTRMode = 2
	MTRGotoFreeze   MTRMode = 3
	MTRGotoShutdown MTRMode = 4
)

// String returns the request name.
func (m MTRMode) String() string {
	switch m {
	case MTRGotoRun:
		return "MTR_GOTO_RUN"
	case MTRGotoFreeze:
		return "MTR_GOTO_FREEZE"
	case MTRGotoShutdown:
		return "MTR_GOTO_SHUTDOWN"
	default:
		return fmt.Sprintf("MTRMode(%d)", int32(m))
	}
}

// Target returns the execution mode the request leads to.
func (m MTRMode) Target() (ExecutionMode, bool) {
	switch m {
	case MTRGotoRun:
		return ModeRunning, true
	case MTRGotoFreeze:
		return ModeFreeze, true
	case MTRGotoShutdown:
		return ModeShutdown, true
	default:
		return ModeUninitialized, false
	}
}

// ValidTransition reports whether a federation in mode from may honor
// request m. Shutdown is reachable from any initialized mode.
func (m MTRMode) ValidTransition(from ExecutionMode) bool {
	switch m {
	case MTRGotoRun:
		return from == ModeFreeze || from == ModeInitializing
	case MTRGotoFreeze:
		return from == ModeRunning
	case MTRGotoShutdown:
		return from != ModeUninitialized && from != ModeShutdown
	default:
		return false
	}
}

// ModeTransitionRequest asks the master federate to change mode.
type ModeTransitionRequest struct {
	Mode MTRMode
}

// ModeTransitionRequestClass binds ModeTransitionRequest.
var ModeTransitionRequestClass = model.Must(model.NewInteractionClass(ModeTransitionRequestClassName,
	model.Parameter("execution_mode", codec.KindEnum32,
		func(r *ModeTransitionRequest) MTRMode { return r.Mode },
		func(r *ModeTransitionRequest, v MTRMode) { r.Mode = v }),
))
