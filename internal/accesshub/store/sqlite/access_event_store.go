package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/BrandonDHaskell/accesshub/internal/access"
	"github.com/BrandonDHaskell/accesshub/internal/accesshub/store"
	dbpkg "github.com/BrandonDHaskell/accesshub/internal/db"
)

type AccessEventStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewAccessEventStore(db *sql.DB, writer *dbpkg.Worker) *AccessEventStore {
	return &AccessEventStore{db: db, writer: writer}
}

func (s *AccessEventStore) RecordEvent(ctx context.Context, rec store.AccessEventRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.ReceivedAt.IsZero() {
		rec.ReceivedAt = time.Now().UTC()
	}
	if rec.At.IsZero() {
		rec.At = rec.ReceivedAt
	}
	if !rec.Access.Valid() {
		return fmt.Errorf("RecordEvent: invalid access %q", rec.Access)
	}

	var accessUserID any
	if rec.AccessUserID != nil {
		accessUserID = *rec.AccessUserID
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO access_events(event_id, point_id, at_ms, access, code, access_user_id, received_at_ms)
VALUES (?, ?, ?, ?, ?, ?, ?);
`, rec.ID, rec.PointID, toMs(rec.At), string(rec.Access), rec.Code, accessUserID, toMs(rec.ReceivedAt)); err != nil {
			return fmt.Errorf("RecordEvent: %w", mapConstraint(err))
		}
		return nil
	})
}

func (s *AccessEventStore) ListHubEvents(ctx context.Context, hubID string, limit int) ([]store.AccessEventView, error) {
	if limit <= 0 {
		limit = -1 // sqlite: no limit
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT e.event_id, e.point_id, e.at_ms, e.access, e.code, e.access_user_id, e.received_at_ms,
       p.name, COALESCE(au.name, '')
FROM access_events e
JOIN access_points p ON p.point_id = e.point_id
LEFT JOIN access_users au ON au.access_user_id = e.access_user_id
WHERE p.hub_id = ?
ORDER BY e.at_ms DESC, e.received_at_ms DESC
LIMIT ?;`, hubID, limit)
	if err != nil {
		return nil, fmt.Errorf("ListHubEvents: %w", err)
	}
	defer rows.Close()

	var out []store.AccessEventView
	for rows.Next() {
		var (
			v            store.AccessEventView
			atMs, recvMs int64
			decision     string
			accessUserID sql.NullString
		)
		if err := rows.Scan(&v.ID, &v.PointID, &atMs, &decision, &v.Code, &accessUserID, &recvMs,
			&v.PointName, &v.AccessUserName); err != nil {
			return nil, fmt.Errorf("ListHubEvents scan: %w", err)
		}
		v.At = fromMs(atMs)
		v.ReceivedAt = fromMs(recvMs)
		v.Access = access.Decision(decision)
		if accessUserID.Valid {
			id := accessUserID.String
			v.AccessUserID = &id
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *AccessEventStore) ListOwnerEventSamples(ctx context.Context, ownerID string, since time.Time) ([]access.EventSample, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT e.point_id, e.access, e.at_ms
FROM access_events e
JOIN access_points p ON p.point_id = e.point_id
JOIN access_hubs h ON h.hub_id = p.hub_id
WHERE h.user_id = ? AND e.at_ms >= ?;`, ownerID, since.UTC().UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("ListOwnerEventSamples: %w", err)
	}
	defer rows.Close()

	var out []access.EventSample
	for rows.Next() {
		var (
			sample   access.EventSample
			decision string
			atMs     int64
		)
		if err := rows.Scan(&sample.PointID, &decision, &atMs); err != nil {
			return nil, fmt.Errorf("ListOwnerEventSamples scan: %w", err)
		}
		sample.Access = access.Decision(decision)
		sample.At = fromMs(atMs)
		out = append(out, sample)
	}
	return out, rows.Err()
}
