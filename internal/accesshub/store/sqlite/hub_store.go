package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/BrandonDHaskell/accesshub/internal/accesshub/store"
	dbpkg "github.com/BrandonDHaskell/accesshub/internal/db"
)

const hubColumns = `hub_id, user_id, name, description, heartbeat_at_ms, created_at_ms, updated_at_ms`

type HubStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewHubStore(db *sql.DB, writer *dbpkg.Worker) *HubStore {
	return &HubStore{db: db, writer: writer}
}

func scanHub(row scanner) (store.HubRecord, error) {
	var (
		h                  store.HubRecord
		heartbeat          sql.NullInt64
		createdMs, updated int64
	)
	if err := row.Scan(&h.ID, &h.OwnerID, &h.Name, &h.Description, &heartbeat, &createdMs, &updated); err != nil {
		return store.HubRecord{}, err
	}
	h.HeartbeatAt = fromNullMs(heartbeat)
	h.CreatedAt = fromMs(createdMs)
	h.UpdatedAt = fromMs(updated)
	return h, nil
}

func (s *HubStore) CreateHub(ctx context.Context, rec store.HubRecord, tokenHash []byte) error {
	created := toMs(rec.CreatedAt)
	var hash any
	if len(tokenHash) > 0 {
		hash = tokenHash
	}
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO access_hubs(hub_id, user_id, name, description, heartbeat_at_ms, api_token_hash, created_at_ms, updated_at_ms)
VALUES (?, ?, ?, ?, ?, ?, ?, ?);`,
			rec.ID, rec.OwnerID, rec.Name, rec.Description, optMs(rec.HeartbeatAt), hash, created, created,
		); err != nil {
			return fmt.Errorf("CreateHub: %w", mapConstraint(err))
		}
		return nil
	})
}

func (s *HubStore) GetHub(ctx context.Context, ownerID, hubID string) (store.HubRecord, error) {
	h, err := scanHub(s.db.QueryRowContext(ctx,
		`SELECT `+hubColumns+` FROM access_hubs WHERE hub_id = ? AND user_id = ?;`, hubID, ownerID))
	if err != nil {
		return store.HubRecord{}, fmt.Errorf("GetHub: %w", notFoundIfNoRows(err))
	}
	return h, nil
}

func (s *HubStore) ListHubs(ctx context.Context, ownerID string) ([]store.HubRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+hubColumns+` FROM access_hubs WHERE user_id = ? ORDER BY name, hub_id;`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("ListHubs: %w", err)
	}
	defer rows.Close()

	var out []store.HubRecord
	for rows.Next() {
		h, err := scanHub(rows)
		if err != nil {
			return nil, fmt.Errorf("ListHubs scan: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *HubStore) UpdateHub(ctx context.Context, ownerID, hubID, name, description string, at time.Time) error {
	atMs := toMs(at)
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE access_hubs
SET name = ?,
    description = ?,
    updated_at_ms = ?
WHERE hub_id = ? AND user_id = ?;`, name, description, atMs, hubID, ownerID)
		if err != nil {
			return fmt.Errorf("UpdateHub: %w", err)
		}
		return requireAffected(res)
	})
}

func (s *HubStore) GetHubByTokenHash(ctx context.Context, tokenHash []byte) (store.HubRecord, error) {
	if len(tokenHash) == 0 {
		return store.HubRecord{}, store.ErrNotFound
	}
	h, err := scanHub(s.db.QueryRowContext(ctx,
		`SELECT `+hubColumns+` FROM access_hubs WHERE api_token_hash = ?;`, tokenHash))
	if err != nil {
		return store.HubRecord{}, fmt.Errorf("GetHubByTokenHash: %w", notFoundIfNoRows(err))
	}
	return h, nil
}

type HeartbeatStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewHeartbeatStore(db *sql.DB, writer *dbpkg.Worker) *HeartbeatStore {
	return &HeartbeatStore{db: db, writer: writer}
}

const maxUptimeSeconds = math.MaxInt64 / 1000

func (s *HeartbeatStore) RecordHeartbeat(ctx context.Context, rec store.HeartbeatRecord) error {
	if rec.ReceivedAt.IsZero() {
		rec.ReceivedAt = time.Now().UTC()
	}
	recvMs := rec.ReceivedAt.UTC().UnixMilli()

	fw := strings.TrimSpace(rec.FirmwareVersion)
	ip := strings.TrimSpace(rec.IP)

	// UptimeSeconds -> uptime_ms, saturating instead of wrapping.
	uptimeMs := any(nil)
	if rec.UptimeSeconds != 0 {
		uptimeMs = int64(min(rec.UptimeSeconds, maxUptimeSeconds)) * 1000
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO hub_heartbeats(hub_id, received_at_ms, fw_version, uptime_ms, ip)
VALUES (?, ?, ?, ?, ?);
`, rec.HubID, recvMs, fw, uptimeMs, ip); err != nil {
			return fmt.Errorf("RecordHeartbeat insert heartbeat: %w", mapConstraint(err))
		}

		// Snapshot read by the liveness views.
		if _, err := tx.ExecContext(ctx, `
UPDATE access_hubs
SET heartbeat_at_ms = ?
WHERE hub_id = ?;
`, recvMs, rec.HubID); err != nil {
			return fmt.Errorf("RecordHeartbeat update hub snapshot: %w", err)
		}
		return nil
	})
}

// PruneOlderThan deletes heartbeat history rows received before cutoff and
// returns how many were removed.  The hub snapshot is left untouched.
func (s *HeartbeatStore) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	cutoffMs := cutoff.UTC().UnixMilli()

	var deleted int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
DELETE FROM hub_heartbeats
WHERE received_at_ms < ?;
`, cutoffMs)
		if err != nil {
			return fmt.Errorf("PruneOlderThan: %w", err)
		}
		deleted, _ = res.RowsAffected()
		return nil
	})
	return deleted, err
}
