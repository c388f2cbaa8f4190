package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/BrandonDHaskell/accesshub/internal/accesshub/store"
	dbpkg "github.com/BrandonDHaskell/accesshub/internal/db"
)

const accessUserColumns = `au.access_user_id, au.user_id, au.name, au.description, au.code,
  au.activate_code_at_ms, au.expire_code_at_ms, au.deleted_at_ms, au.created_at_ms, au.updated_at_ms`

type AccessUserStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewAccessUserStore(db *sql.DB, writer *dbpkg.Worker) *AccessUserStore {
	return &AccessUserStore{db: db, writer: writer}
}

func scanAccessUser(row scanner) (store.AccessUserRecord, error) {
	var (
		u                         store.AccessUserRecord
		activate, expire, deleted sql.NullInt64
		createdMs, updated        int64
	)
	if err := row.Scan(&u.ID, &u.OwnerID, &u.Name, &u.Description, &u.Code,
		&activate, &expire, &deleted, &createdMs, &updated); err != nil {
		return store.AccessUserRecord{}, err
	}
	u.ActivateCodeAt = fromNullMs(activate)
	u.ExpireCodeAt = fromNullMs(expire)
	u.DeletedAt = fromNullMs(deleted)
	u.CreatedAt = fromMs(createdMs)
	u.UpdatedAt = fromMs(updated)
	return u, nil
}

func scanAccessUsers(rows *sql.Rows) ([]store.AccessUserRecord, error) {
	defer rows.Close()

	var out []store.AccessUserRecord
	for rows.Next() {
		u, err := scanAccessUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *AccessUserStore) CreateAccessUser(ctx context.Context, rec store.AccessUserRecord) error {
	created := toMs(rec.CreatedAt)
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO access_users(
  access_user_id, user_id, name, description, code,
  activate_code_at_ms, expire_code_at_ms, created_at_ms, updated_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`,
			rec.ID, rec.OwnerID, rec.Name, rec.Description, rec.Code,
			optMs(rec.ActivateCodeAt), optMs(rec.ExpireCodeAt), created, created,
		); err != nil {
			return fmt.Errorf("CreateAccessUser: %w", mapConstraint(err))
		}
		return nil
	})
}

func (s *AccessUserStore) GetAccessUser(ctx context.Context, ownerID, accessUserID string) (store.AccessUserRecord, error) {
	u, err := scanAccessUser(s.db.QueryRowContext(ctx, `
SELECT `+accessUserColumns+`
FROM access_users au
WHERE au.access_user_id = ? AND au.user_id = ? AND au.deleted_at_ms IS NULL;`, accessUserID, ownerID))
	if err != nil {
		return store.AccessUserRecord{}, fmt.Errorf("GetAccessUser: %w", notFoundIfNoRows(err))
	}
	return u, nil
}

func (s *AccessUserStore) ListAccessUsers(ctx context.Context, ownerID string) ([]store.AccessUserRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT `+accessUserColumns+`
FROM access_users au
WHERE au.user_id = ? AND au.deleted_at_ms IS NULL
ORDER BY au.name, au.access_user_id;`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("ListAccessUsers: %w", err)
	}
	out, err := scanAccessUsers(rows)
	if err != nil {
		return nil, fmt.Errorf("ListAccessUsers scan: %w", err)
	}
	return out, nil
}

func (s *AccessUserStore) UpdateAccessUser(ctx context.Context, ownerID string, rec store.AccessUserRecord) error {
	updated := toMs(rec.UpdatedAt)
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE access_users
SET name = ?,
    description = ?,
    code = ?,
    activate_code_at_ms = ?,
    expire_code_at_ms = ?,
    updated_at_ms = ?
WHERE access_user_id = ? AND user_id = ? AND deleted_at_ms IS NULL;`,
			rec.Name, rec.Description, rec.Code,
			optMs(rec.ActivateCodeAt), optMs(rec.ExpireCodeAt), updated,
			rec.ID, ownerID)
		if err != nil {
			return fmt.Errorf("UpdateAccessUser: %w", err)
		}
		return requireAffected(res)
	})
}

// MarkAccessUserDeleted soft-deletes the access user.  Point links and past
// events are kept; deleted users simply stop appearing anywhere.
func (s *AccessUserStore) MarkAccessUserDeleted(ctx context.Context, ownerID, accessUserID string, at time.Time) error {
	atMs := toMs(at)
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE access_users
SET deleted_at_ms = ?,
    updated_at_ms = ?
WHERE access_user_id = ? AND user_id = ? AND deleted_at_ms IS NULL;`, atMs, atMs, accessUserID, ownerID)
		if err != nil {
			return fmt.Errorf("MarkAccessUserDeleted: %w", err)
		}
		return requireAffected(res)
	})
}
