package types

import (
	"time"

	"github.com/BrandonDHaskell/accesshub/internal/access"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	UserID    string      `json:"userId"`
	Role      access.Role `json:"role"`
}

type ResetPasswordRequest struct {
	Password string `json:"password"`
}

// PasswordReset is what an admin hands to a customer out of band.
type PasswordReset struct {
	Href      string    `json:"href"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type HubInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type PointInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AccessUserInput carries the window bounds as RFC 3339 strings; empty
// means unbounded.
type AccessUserInput struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	Code           string `json:"code"`
	ActivateCodeAt string `json:"activateCodeAt,omitempty"`
	ExpireCodeAt   string `json:"expireCodeAt,omitempty"`
}

type IDsRequest struct {
	IDs []string `json:"ids"`
}
