package access

import "time"

// Status is the lifecycle state of an access user's code.  The string
// values are persisted and rendered as-is.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusActive  Status = "ACTIVE"
	StatusExpired Status = "EXPIRED"
)

// DisplayLayout renders instants the way the management UI has always shown
// them (en-US locale style, e.g. "1/1/2025, 12:00:00 AM").
const DisplayLayout = "1/2/2006, 3:04:05 PM"

// CodeWindow is the optional activation/expiration pair on a code.
// A nil bound is open.
type CodeWindow struct {
	ActivateAt *time.Time
	ExpireAt   *time.Time
}

type Evaluation struct {
	Status      Status `json:"status"`
	Description string `json:"description"`
}

// Evaluate is EvaluateIn with descriptions rendered in UTC.
func Evaluate(w CodeWindow, now time.Time) Evaluation {
	return EvaluateIn(w, now, time.UTC)
}

// EvaluateIn classifies the window at now, first match wins:
//
//  1. ExpireAt set and now > ExpireAt   -> EXPIRED
//  2. ActivateAt set and now < ActivateAt -> PENDING
//  3. otherwise                          -> ACTIVE
//
// Comparisons are strict, so the exact instant of either bound is ACTIVE.
// Windows with ExpireAt before ActivateAt are not rejected; they simply
// evaluate by the rules above.
func EvaluateIn(w CodeWindow, now time.Time, loc *time.Location) Evaluation {
	if loc == nil {
		loc = time.UTC
	}

	if w.ExpireAt != nil && now.After(*w.ExpireAt) {
		return Evaluation{Status: StatusExpired}
	}

	if w.ActivateAt != nil && now.Before(*w.ActivateAt) {
		desc := "Will activate at " + formatInstant(*w.ActivateAt, loc)
		if w.ExpireAt != nil {
			desc += " until " + formatInstant(*w.ExpireAt, loc) + "."
		}
		return Evaluation{Status: StatusPending, Description: desc}
	}

	if w.ExpireAt != nil {
		return Evaluation{
			Status:      StatusActive,
			Description: "Will expire at " + formatInstant(*w.ExpireAt, loc),
		}
	}
	return Evaluation{Status: StatusActive}
}

func formatInstant(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DisplayLayout)
}
