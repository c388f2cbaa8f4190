package access

import "time"

// EventSample is the projection of an access event used for counting.
type EventSample struct {
	PointID string
	Access  Decision
	At      time.Time
}

type Counts struct {
	Grant int `json:"grant"`
	Deny  int `json:"deny"`
}

func (c Counts) Total() int { return c.Grant + c.Deny }

func (c *Counts) add(d Decision) {
	switch d {
	case DecisionGrant:
		c.Grant++
	case DecisionDeny:
		c.Deny++
	}
}

// Aggregate counts grants and denies per point for events at or after
// windowStart.  Samples with an unknown decision token are ignored.
func Aggregate(events []EventSample, windowStart time.Time) map[string]Counts {
	out := make(map[string]Counts)
	for _, ev := range events {
		if ev.At.Before(windowStart) || !ev.Access.Valid() {
			continue
		}
		c := out[ev.PointID]
		c.add(ev.Access)
		out[ev.PointID] = c
	}
	return out
}

// RollupByHub sums per-point counts into their hubs.  pointHub maps point
// id to hub id; points missing from it are dropped.
func RollupByHub(perPoint map[string]Counts, pointHub map[string]string) map[string]Counts {
	out := make(map[string]Counts)
	for pointID, c := range perPoint {
		hubID, ok := pointHub[pointID]
		if !ok {
			continue
		}
		h := out[hubID]
		h.Grant += c.Grant
		h.Deny += c.Deny
		out[hubID] = h
	}
	return out
}

type Summary struct {
	WindowStart time.Time
	PerPoint    map[string]Counts
	PerHub      map[string]Counts
}

func Summarize(events []EventSample, windowStart time.Time, pointHub map[string]string) Summary {
	perPoint := Aggregate(events, windowStart)
	return Summary{
		WindowStart: windowStart,
		PerPoint:    perPoint,
		PerHub:      RollupByHub(perPoint, pointHub),
	}
}
