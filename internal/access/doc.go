// Package access holds the credential and authorization model shared by the
// management API and the hub device endpoints.
//
// Everything here is a pure function over data the caller has already
// loaded: no I/O, no clocks, no shared state.  Callers pass "now"
// explicitly so that a single request sees one consistent instant.
package access
