package store

import (
	"context"
	"time"

	"github.com/BrandonDHaskell/accesshub/internal/access"
)

// AccessUserRecord is a credential holder.  DeletedAt nil means the user is
// live; stores never return deleted users.
type AccessUserRecord struct {
	ID             string
	OwnerID        string
	Name           string
	Description    string
	Code           string
	ActivateCodeAt *time.Time
	ExpireCodeAt   *time.Time
	DeletedAt      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (r AccessUserRecord) Window() access.CodeWindow {
	return access.CodeWindow{ActivateAt: r.ActivateCodeAt, ExpireAt: r.ExpireCodeAt}
}

func (r AccessUserRecord) Credential() access.Credential {
	return access.Credential{UserID: r.ID, Code: r.Code, Window: r.Window()}
}

type AccessUserStore interface {
	CreateAccessUser(ctx context.Context, rec AccessUserRecord) error
	GetAccessUser(ctx context.Context, ownerID, accessUserID string) (AccessUserRecord, error)
	// ListAccessUsers orders by name.
	ListAccessUsers(ctx context.Context, ownerID string) ([]AccessUserRecord, error)
	// UpdateAccessUser writes name, description, code and the code window.
	UpdateAccessUser(ctx context.Context, ownerID string, rec AccessUserRecord) error
	MarkAccessUserDeleted(ctx context.Context, ownerID, accessUserID string, at time.Time) error
}
