package store

import (
	"context"
	"time"
)

type HubRecord struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	HeartbeatAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type HubStore interface {
	// CreateHub stores the hub with the SHA-256 of its API token.
	CreateHub(ctx context.Context, rec HubRecord, tokenHash []byte) error
	GetHub(ctx context.Context, ownerID, hubID string) (HubRecord, error)
	// ListHubs orders by name.
	ListHubs(ctx context.Context, ownerID string) ([]HubRecord, error)
	UpdateHub(ctx context.Context, ownerID, hubID, name, description string, at time.Time) error
	GetHubByTokenHash(ctx context.Context, tokenHash []byte) (HubRecord, error)
}

// HeartbeatRecord is one heartbeat as received from a hub.
type HeartbeatRecord struct {
	HubID           string
	ReceivedAt      time.Time
	FirmwareVersion string
	UptimeSeconds   uint64
	IP              string
}

type HeartbeatStore interface {
	// RecordHeartbeat appends to the history and moves the hub's
	// heartbeat_at snapshot forward.
	RecordHeartbeat(ctx context.Context, rec HeartbeatRecord) error
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
