// Package instance tracks the object instances a federate knows about.
//
// Local entities are registered and owned by this federate; only they may be
// updated or deleted. Remote entities are created by discovery callbacks and
// start out Discovered: their element holds default values until the first
// reflect populates it. The "added" notification for a remote entity fires
// exactly once, after that first successful reflect. Removal is
// authoritative: reflects that arrive for a removed handle are dropped.
//
// Listener notifications run on a dispatch.Dispatcher so that callback
// delivery from the runtime is never blocked by application code.
package instance
