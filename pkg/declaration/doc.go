// Package declaration keeps the runtime-side model of each class binding:
// resolved class and field handles, and the publish/subscribe status.
//
// A class model resolves its handles once, on the first Publish or
// Subscribe. Encoding or unpacking values before that is a programming
// error and panics with ErrNotConnected.
package declaration
