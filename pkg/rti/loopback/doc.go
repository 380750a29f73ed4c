// Package loopback is an in-process runtime for a single federation
// execution.
//
// Every joined Ambassador shares one Federation. Handles are assigned on
// first lookup, so any class or field name resolves. Callbacks are queued
// per federate and delivered in order on a goroutine owned by that
// federate's Ambassador, never on the caller's goroutine.
//
// Time management follows the conservative rule: a constrained federate is
// granted a requested time t once t <= GALT, where GALT is the minimum over
// the other regulating federates of their pending request (or current
// time) plus lookahead.
package loopback
