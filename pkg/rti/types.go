package rti

import (
	"errors"
	"fmt"
	"time"
)

// Time is a logical time in microseconds.
type Time int64

// TimeFromDuration converts a wall-clock style duration to logical time.
func TimeFromDuration(d time.Duration) Time {
	return Time(d / time.Microsecond)
}

// Duration returns the logical time as a time.Duration.
func (t Time) Duration() time.Duration {
	return time.Duration(t) * time.Microsecond
}

// Seconds returns the logical time in seconds.
func (t Time) Seconds() float64 {
	return float64(t) / 1e6
}

// String formats the time in seconds with microsecond precision.
func (t Time) String() string {
	return fmt.Sprintf("%.6fs", t.Seconds())
}

// Opaque runtime handles.
type (
	FederateHandle         uint64
	ObjectClassHandle      uint64
	AttributeHandle        uint64
	InteractionClassHandle uint64
	ParameterHandle        uint64
	ObjectInstanceHandle   uint64
)

// AttributeValues maps attribute handles to encoded values.
type AttributeValues map[AttributeHandle][]byte

// ParameterValues maps parameter handles to encoded values.
type ParameterValues map[ParameterHandle][]byte

// Runtime rejections.
var (
	ErrNotJoined             = errors.New("federate not joined")
	ErrAlreadyJoined         = errors.New("federate already joined")
	ErrFederationNotFound    = errors.New("federation execution does not exist")
	ErrFederateNameInUse     = errors.New("federate name already in use")
	ErrNameNotFound          = errors.New("name not found")
	ErrInvalidHandle         = errors.New("invalid handle")
	ErrNameNotReserved       = errors.New("object instance name not reserved")
	ErrNotPublished          = errors.New("class not published")
	ErrNotOwned              = errors.New("object instance not owned")
	ErrInvalidTime           = errors.New("invalid logical time")
	ErrAdvancePending        = errors.New("time advance already pending")
	ErrRegulationPending     = errors.New("time regulation already enabled or pending")
	ErrConstrainedPending    = errors.New("time constrained already enabled or pending")
	ErrSyncPointNotAnnounced = errors.New("synchronization point not announced")
)
