package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/BrandonDHaskell/accesshub/internal/accesshub/store"
	dbpkg "github.com/BrandonDHaskell/accesshub/internal/db"
)

const pointSelect = `
SELECT p.point_id, p.hub_id, h.name, p.name, p.description, p.position, p.created_at_ms, p.updated_at_ms
FROM access_points p
JOIN access_hubs h ON h.hub_id = p.hub_id`

type PointStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewPointStore(db *sql.DB, writer *dbpkg.Worker) *PointStore {
	return &PointStore{db: db, writer: writer}
}

func scanPoint(row scanner) (store.PointRecord, error) {
	var (
		p                  store.PointRecord
		createdMs, updated int64
	)
	if err := row.Scan(&p.ID, &p.HubID, &p.HubName, &p.Name, &p.Description, &p.Position, &createdMs, &updated); err != nil {
		return store.PointRecord{}, err
	}
	p.CreatedAt = fromMs(createdMs)
	p.UpdatedAt = fromMs(updated)
	return p, nil
}

func (s *PointStore) queryPoints(ctx context.Context, op, query string, args ...any) ([]store.PointRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []store.PointRecord
	for rows.Next() {
		p, err := scanPoint(rows)
		if err != nil {
			return nil, fmt.Errorf("%s scan: %w", op, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PointStore) CreatePoint(ctx context.Context, rec store.PointRecord) error {
	created := toMs(rec.CreatedAt)
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO access_points(point_id, hub_id, name, description, position, created_at_ms, updated_at_ms)
VALUES (?, ?, ?, ?, ?, ?, ?);`,
			rec.ID, rec.HubID, rec.Name, rec.Description, rec.Position, created, created,
		); err != nil {
			return fmt.Errorf("CreatePoint: %w", mapConstraint(err))
		}
		return nil
	})
}

func (s *PointStore) GetPoint(ctx context.Context, ownerID, pointID string) (store.PointRecord, error) {
	p, err := scanPoint(s.db.QueryRowContext(ctx,
		pointSelect+` WHERE p.point_id = ? AND h.user_id = ?;`, pointID, ownerID))
	if err != nil {
		return store.PointRecord{}, fmt.Errorf("GetPoint: %w", notFoundIfNoRows(err))
	}
	return p, nil
}

func (s *PointStore) ListPoints(ctx context.Context, ownerID string) ([]store.PointRecord, error) {
	return s.queryPoints(ctx, "ListPoints",
		pointSelect+` WHERE h.user_id = ? ORDER BY h.name, p.name, p.point_id;`, ownerID)
}

func (s *PointStore) ListHubPoints(ctx context.Context, hubID string) ([]store.PointRecord, error) {
	return s.queryPoints(ctx, "ListHubPoints",
		pointSelect+` WHERE p.hub_id = ? ORDER BY p.position, p.point_id;`, hubID)
}

func (s *PointStore) UpdatePoint(ctx context.Context, ownerID, pointID, name, description string, at time.Time) error {
	atMs := toMs(at)
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE access_points
SET name = ?,
    description = ?,
    updated_at_ms = ?
WHERE point_id = ?
  AND hub_id IN (SELECT hub_id FROM access_hubs WHERE user_id = ?);`,
			name, description, atMs, pointID, ownerID)
		if err != nil {
			return fmt.Errorf("UpdatePoint: %w", err)
		}
		return requireAffected(res)
	})
}

func (s *PointStore) GetHubPoint(ctx context.Context, hubID, pointID string) (store.PointRecord, error) {
	p, err := scanPoint(s.db.QueryRowContext(ctx,
		pointSelect+` WHERE p.point_id = ? AND p.hub_id = ?;`, pointID, hubID))
	if err != nil {
		return store.PointRecord{}, fmt.Errorf("GetHubPoint: %w", notFoundIfNoRows(err))
	}
	return p, nil
}

func (s *PointStore) GetHubPointByPosition(ctx context.Context, hubID string, position int) (store.PointRecord, error) {
	p, err := scanPoint(s.db.QueryRowContext(ctx,
		pointSelect+` WHERE p.hub_id = ? AND p.position = ? ORDER BY p.point_id LIMIT 1;`, hubID, position))
	if err != nil {
		return store.PointRecord{}, fmt.Errorf("GetHubPointByPosition: %w", notFoundIfNoRows(err))
	}
	return p, nil
}

func (s *PointStore) ListPointAccessUsers(ctx context.Context, pointID string) ([]store.AccessUserRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT `+accessUserColumns+`
FROM access_users au
JOIN access_point_users pu ON pu.access_user_id = au.access_user_id
WHERE pu.point_id = ? AND au.deleted_at_ms IS NULL
ORDER BY au.name, au.access_user_id;`, pointID)
	if err != nil {
		return nil, fmt.Errorf("ListPointAccessUsers: %w", err)
	}
	out, err := scanAccessUsers(rows)
	if err != nil {
		return nil, fmt.Errorf("ListPointAccessUsers scan: %w", err)
	}
	return out, nil
}

func (s *PointStore) ListAccessUserPoints(ctx context.Context, accessUserID string) ([]store.PointRecord, error) {
	return s.queryPoints(ctx, "ListAccessUserPoints", pointSelect+`
JOIN access_point_users pu ON pu.point_id = p.point_id
WHERE pu.access_user_id = ?
ORDER BY h.name, p.name, p.point_id;`, accessUserID)
}

// ownedPointTx reports whether pointID sits on a hub owned by ownerID.
func ownedPointTx(ctx context.Context, tx *sql.Tx, ownerID, pointID string) error {
	var one int
	err := tx.QueryRowContext(ctx, `
SELECT 1
FROM access_points p
JOIN access_hubs h ON h.hub_id = p.hub_id
WHERE p.point_id = ? AND h.user_id = ?;`, pointID, ownerID).Scan(&one)
	return notFoundIfNoRows(err)
}

func (s *PointStore) ConnectAccessUsers(ctx context.Context, ownerID, pointID string, accessUserIDs []string) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := ownedPointTx(ctx, tx, ownerID, pointID); err != nil {
			return fmt.Errorf("ConnectAccessUsers point: %w", err)
		}
		if len(accessUserIDs) == 0 {
			return nil
		}

		// Every id must be a live access user of the same owner.
		args := make([]any, 0, len(accessUserIDs)+1)
		args = append(args, ownerID)
		distinct := make(map[string]struct{}, len(accessUserIDs))
		for _, id := range accessUserIDs {
			args = append(args, id)
			distinct[id] = struct{}{}
		}
		var n int
		if err := tx.QueryRowContext(ctx, `
SELECT COUNT(*)
FROM access_users
WHERE user_id = ? AND deleted_at_ms IS NULL
  AND access_user_id IN (`+placeholders(len(accessUserIDs))+`);`, args...).Scan(&n); err != nil {
			return fmt.Errorf("ConnectAccessUsers check: %w", err)
		}
		if n != len(distinct) {
			return store.ErrNotFound
		}

		for id := range distinct {
			if _, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO access_point_users(point_id, access_user_id) VALUES (?, ?);`, pointID, id); err != nil {
				return fmt.Errorf("ConnectAccessUsers insert: %w", err)
			}
		}
		return nil
	})
}

func (s *PointStore) ConnectPoints(ctx context.Context, ownerID, accessUserID string, pointIDs []string) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx, `
SELECT 1 FROM access_users
WHERE access_user_id = ? AND user_id = ? AND deleted_at_ms IS NULL;`, accessUserID, ownerID).Scan(&one)
		if err := notFoundIfNoRows(err); err != nil {
			return fmt.Errorf("ConnectPoints access user: %w", err)
		}
		if len(pointIDs) == 0 {
			return nil
		}

		args := make([]any, 0, len(pointIDs)+1)
		args = append(args, ownerID)
		distinct := make(map[string]struct{}, len(pointIDs))
		for _, id := range pointIDs {
			args = append(args, id)
			distinct[id] = struct{}{}
		}
		var n int
		if err := tx.QueryRowContext(ctx, `
SELECT COUNT(*)
FROM access_points p
JOIN access_hubs h ON h.hub_id = p.hub_id
WHERE h.user_id = ?
  AND p.point_id IN (`+placeholders(len(pointIDs))+`);`, args...).Scan(&n); err != nil {
			return fmt.Errorf("ConnectPoints check: %w", err)
		}
		if n != len(distinct) {
			return store.ErrNotFound
		}

		for id := range distinct {
			if _, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO access_point_users(point_id, access_user_id) VALUES (?, ?);`, id, accessUserID); err != nil {
				return fmt.Errorf("ConnectPoints insert: %w", err)
			}
		}
		return nil
	})
}

func (s *PointStore) DisconnectAccessUser(ctx context.Context, ownerID, pointID, accessUserID string) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := ownedPointTx(ctx, tx, ownerID, pointID); err != nil {
			return fmt.Errorf("DisconnectAccessUser point: %w", err)
		}
		var one int
		err := tx.QueryRowContext(ctx, `
SELECT 1 FROM access_users WHERE access_user_id = ? AND user_id = ?;`, accessUserID, ownerID).Scan(&one)
		if err != nil {
			return fmt.Errorf("DisconnectAccessUser access user: %w", notFoundIfNoRows(err))
		}
		if _, err := tx.ExecContext(ctx, `
DELETE FROM access_point_users WHERE point_id = ? AND access_user_id = ?;`, pointID, accessUserID); err != nil {
			return fmt.Errorf("DisconnectAccessUser delete: %w", err)
		}
		return nil
	})
}
