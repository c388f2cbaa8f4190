package access

import "time"

// Liveness is a hub's connection state derived from its last heartbeat.
type Liveness string

const (
	LivenessLive  Liveness = "Live"
	LivenessDying Liveness = "Dying"
	LivenessDead  Liveness = "Dead"
)

// Hubs are expected to heartbeat well inside LiveWithin.
const (
	LiveWithin  = 5 * time.Second
	DyingWithin = 10 * time.Second
)

// Classify maps the age of the last heartbeat onto Live (< 5s),
// Dying (5s..10s) or Dead (>= 10s, or never seen).
func Classify(lastHeartbeat *time.Time, now time.Time) Liveness {
	if lastHeartbeat == nil {
		return LivenessDead
	}
	delta := now.Sub(*lastHeartbeat)
	switch {
	case delta < LiveWithin:
		return LivenessLive
	case delta < DyingWithin:
		return LivenessDying
	default:
		return LivenessDead
	}
}
