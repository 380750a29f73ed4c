// Package syncpoint tracks named synchronization points.
//
// Each point carries independent flags that only runtime callbacks set:
// announced, registration succeeded, registration failed and federation
// synchronized. Callbacks are idempotent. Waiting for a flag polls at a fixed
// interval and reports a timeout as false.
package syncpoint
