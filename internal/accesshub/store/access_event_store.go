package store

import (
	"context"
	"time"

	"github.com/BrandonDHaskell/accesshub/internal/access"
)

// AccessEventRecord is one grant or deny at a point.  Code is kept even on
// deny; AccessUserID is nil unless a credential matched.
type AccessEventRecord struct {
	ID           string
	PointID      string
	At           time.Time
	Access       access.Decision
	Code         string
	AccessUserID *string
	ReceivedAt   time.Time
}

// AccessEventView is an event joined with display names for activity lists.
type AccessEventView struct {
	AccessEventRecord
	PointName      string
	AccessUserName string
}

// AccessEventStore is an append-only log: there is no update or delete.
type AccessEventStore interface {
	RecordEvent(ctx context.Context, rec AccessEventRecord) error
	// ListHubEvents returns newest first.  limit <= 0 means no limit.
	ListHubEvents(ctx context.Context, hubID string, limit int) ([]AccessEventView, error)
	// ListOwnerEventSamples returns samples for all of ownerID's points with
	// at >= since.
	ListOwnerEventSamples(ctx context.Context, ownerID string, since time.Time) ([]access.EventSample, error)
}
