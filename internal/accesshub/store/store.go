package store

import "errors"

var (
	// ErrNotFound is returned for missing rows and for rows owned by a
	// different customer; callers cannot tell the two apart.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a unique constraint would be violated.
	ErrConflict = errors.New("conflict")
)

// Stores bundles every store the services need so that wiring code can
// swap the memory and sqlite implementations in one place.
type Stores struct {
	Users       UserStore
	Hubs        HubStore
	Heartbeats  HeartbeatStore
	Points      PointStore
	AccessUsers AccessUserStore
	Events      AccessEventStore
}
