// Package service holds the customer, admin and device use cases.  Every
// call takes the caller's access.Principal explicitly; ownership is enforced
// by passing the principal's user id down to the owner-scoped stores.
package service

import (
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/BrandonDHaskell/accesshub/internal/access"
	"github.com/BrandonDHaskell/accesshub/internal/accesshub/store"
)

var (
	ErrForbidden         = errors.New("forbidden")
	ErrUnknownHub        = errors.New("unknown hub token")
	ErrInvalidCode       = errors.New("code is required")
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
)

// Deps is shared by every service constructor.
type Deps struct {
	Stores store.Stores

	// Now defaults to time.Now in UTC.
	Now func() time.Time

	// Location renders code status descriptions.  nil means UTC.
	Location *time.Location

	Logger *log.Logger
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

func (d Deps) location() *time.Location {
	if d.Location == nil {
		return time.UTC
	}
	return d.Location
}

func (d Deps) logger() *log.Logger {
	if d.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return d.Logger
}

func requireRole(p access.Principal, role access.Role) error {
	ok, err := p.Require(role)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

// ── Validation ──────────────────────────────────────────────────────────────

// ValidationError collects input problems by field, plus form-level
// problems that belong to no single field.
type ValidationError struct {
	FieldErrors map[string][]string `json:"fieldErrors,omitempty"`
	FormErrors  []string            `json:"formErrors,omitempty"`
}

func (e *ValidationError) Error() string {
	var parts []string
	for _, field := range slices.Sorted(maps.Keys(e.FieldErrors)) {
		parts = append(parts, field+": "+strings.Join(e.FieldErrors[field], ", "))
	}
	parts = append(parts, e.FormErrors...)
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Field(field, msg string) {
	if e.FieldErrors == nil {
		e.FieldErrors = make(map[string][]string)
	}
	e.FieldErrors[field] = append(e.FieldErrors[field], msg)
}

func (e *ValidationError) Form(msg string) {
	e.FormErrors = append(e.FormErrors, msg)
}

// Err returns e when anything was recorded, else nil.
func (e *ValidationError) Err() error {
	if len(e.FieldErrors) == 0 && len(e.FormErrors) == 0 {
		return nil
	}
	return e
}

// length checks a character count, not a byte count.
func (e *ValidationError) length(field, value string, lo, hi int) {
	n := len([]rune(value))
	if n < lo {
		e.Field(field, fmt.Sprintf("must contain at least %d character(s)", lo))
	}
	if n > hi {
		e.Field(field, fmt.Sprintf("must contain at most %d character(s)", hi))
	}
}

// instant parses an optional RFC 3339 value.
func (e *ValidationError) instant(field, value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		e.Field(field, "must be an RFC 3339 timestamp")
		return nil
	}
	t = t.UTC()
	return &t
}

// Name and description limits shared by hubs, points and access users.
const (
	maxNameLen        = 50
	maxDescriptionLen = 100
)

func validateNamed(v *ValidationError, name, description string) {
	v.length("name", name, 1, maxNameLen)
	v.length("description", description, 0, maxDescriptionLen)
}
