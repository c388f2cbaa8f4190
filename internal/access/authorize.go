package access

import "time"

// Decision is the outcome recorded on an access event.
type Decision string

const (
	DecisionGrant Decision = "grant"
	DecisionDeny  Decision = "deny"
)

// Valid reports whether d is one of the persisted tokens.
func (d Decision) Valid() bool {
	return d == DecisionGrant || d == DecisionDeny
}

// Credential is the slice of an access user the resolver needs.
type Credential struct {
	UserID string
	Code   string
	Window CodeWindow
}

type Authorization struct {
	Decision      Decision
	MatchedUserID *string
}

// Authorize decides whether code opens a point whose authorized set is
// authorized.  The first credential with an equal code that evaluates
// ACTIVE at now is granted.
//
// A deny never says why: an unknown code, a code on the wrong point and a
// pending or expired code all produce the same result.
func Authorize(code string, authorized []Credential, now time.Time) Authorization {
	if code == "" {
		return Authorization{Decision: DecisionDeny}
	}
	for _, c := range authorized {
		if c.Code != code {
			continue
		}
		if Evaluate(c.Window, now).Status != StatusActive {
			continue
		}
		id := c.UserID
		return Authorization{Decision: DecisionGrant, MatchedUserID: &id}
	}
	return Authorization{Decision: DecisionDeny}
}
