package store

import (
	"context"
	"time"

	"github.com/BrandonDHaskell/accesshub/internal/access"
)

type UserRecord struct {
	ID           string
	Email        string
	Role         access.Role
	PasswordHash []byte

	// Reset state is set by an admin and cleared by a successful reset.
	ResetTokenHash []byte
	ResetExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

type UserStore interface {
	CreateUser(ctx context.Context, rec UserRecord) error
	GetUser(ctx context.Context, userID string) (UserRecord, error)
	GetUserByEmail(ctx context.Context, email string) (UserRecord, error)
	// ListUsersByRole orders by email.
	ListUsersByRole(ctx context.Context, role access.Role) ([]UserRecord, error)
	SetPasswordReset(ctx context.Context, userID string, tokenHash []byte, expiresAt time.Time) error
	// ResetPassword swaps the password hash only if tokenHash matches the
	// stored reset hash and the reset has not expired at now.  Otherwise it
	// returns ErrNotFound.
	ResetPassword(ctx context.Context, userID string, tokenHash, passwordHash []byte, now time.Time) error
}
