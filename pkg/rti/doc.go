// Package rti defines the boundary between a federate and the external
// simulation runtime.
//
// The runtime is a black-box network service. This package only describes
// what the federate consumes from it (Ambassador) and what the runtime
// delivers back (Callbacks). Callbacks arrive on goroutines owned by the
// runtime; implementations must return quickly and never block on work that
// itself waits for another callback.
//
// # Handles
//
// All runtime identifiers are opaque handles resolved by name:
//
//	class name              -> ObjectClassHandle / InteractionClassHandle
//	class handle + field    -> AttributeHandle / ParameterHandle
//	registration/discovery  -> ObjectInstanceHandle
//
// # Logical Time
//
// Time is an integer count of microseconds (HLAinteger64Time). Lookahead
// uses the same unit.
package rti
