package store

import (
	"context"
	"time"
)

type PointRecord struct {
	ID          string
	HubID       string
	HubName     string // filled on reads
	Name        string
	Description string
	Position    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type PointStore interface {
	CreatePoint(ctx context.Context, rec PointRecord) error
	GetPoint(ctx context.Context, ownerID, pointID string) (PointRecord, error)
	// ListPoints orders by hub name, then point name.
	ListPoints(ctx context.Context, ownerID string) ([]PointRecord, error)
	// ListHubPoints orders by position.  Ownership of hubID is the caller's
	// responsibility.
	ListHubPoints(ctx context.Context, hubID string) ([]PointRecord, error)
	UpdatePoint(ctx context.Context, ownerID, pointID, name, description string, at time.Time) error

	// Device lookups are scoped by hub, not owner.
	GetHubPoint(ctx context.Context, hubID, pointID string) (PointRecord, error)
	GetHubPointByPosition(ctx context.Context, hubID string, position int) (PointRecord, error)

	// ListPointAccessUsers returns the point's non-deleted access users by name.
	ListPointAccessUsers(ctx context.Context, pointID string) ([]AccessUserRecord, error)
	// ListAccessUserPoints orders by hub name, then point name.
	ListAccessUserPoints(ctx context.Context, accessUserID string) ([]PointRecord, error)

	// ConnectAccessUsers links every id to the point.  The point and all
	// access users must belong to ownerID; otherwise nothing is linked and
	// ErrNotFound is returned.
	ConnectAccessUsers(ctx context.Context, ownerID, pointID string, accessUserIDs []string) error
	// ConnectPoints links one access user to every point, with the same
	// all-or-nothing ownership rule as ConnectAccessUsers.
	ConnectPoints(ctx context.Context, ownerID, accessUserID string, pointIDs []string) error
	DisconnectAccessUser(ctx context.Context, ownerID, pointID, accessUserID string) error
}
