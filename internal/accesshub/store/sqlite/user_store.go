package sqlite

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"fmt"
	"time"

	"github.com/BrandonDHaskell/accesshub/internal/access"
	"github.com/BrandonDHaskell/accesshub/internal/accesshub/store"
	dbpkg "github.com/BrandonDHaskell/accesshub/internal/db"
)

const userColumns = `user_id, email, role, password_hash, reset_token_hash, reset_expires_at_ms, created_at_ms, updated_at_ms`

type UserStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewUserStore(db *sql.DB, writer *dbpkg.Worker) *UserStore {
	return &UserStore{db: db, writer: writer}
}

func scanUser(row scanner) (store.UserRecord, error) {
	var (
		u                  store.UserRecord
		role               string
		resetExp           sql.NullInt64
		createdMs, updated int64
	)
	if err := row.Scan(&u.ID, &u.Email, &role, &u.PasswordHash, &u.ResetTokenHash, &resetExp, &createdMs, &updated); err != nil {
		return store.UserRecord{}, err
	}
	u.Role = access.Role(role)
	u.ResetExpiresAt = fromNullMs(resetExp)
	u.CreatedAt = fromMs(createdMs)
	u.UpdatedAt = fromMs(updated)
	return u, nil
}

func (s *UserStore) CreateUser(ctx context.Context, rec store.UserRecord) error {
	created := toMs(rec.CreatedAt)
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO users(user_id, email, role, password_hash, created_at_ms, updated_at_ms)
VALUES (?, ?, ?, ?, ?, ?);`,
			rec.ID, rec.Email, string(rec.Role), rec.PasswordHash, created, created,
		); err != nil {
			return fmt.Errorf("CreateUser: %w", mapConstraint(err))
		}
		return nil
	})
}

func (s *UserStore) GetUser(ctx context.Context, userID string) (store.UserRecord, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE user_id = ?;`, userID))
	if err != nil {
		return store.UserRecord{}, fmt.Errorf("GetUser: %w", notFoundIfNoRows(err))
	}
	return u, nil
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (store.UserRecord, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?;`, email))
	if err != nil {
		return store.UserRecord{}, fmt.Errorf("GetUserByEmail: %w", notFoundIfNoRows(err))
	}
	return u, nil
}

func (s *UserStore) ListUsersByRole(ctx context.Context, role access.Role) ([]store.UserRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = ? ORDER BY email;`, string(role))
	if err != nil {
		return nil, fmt.Errorf("ListUsersByRole: %w", err)
	}
	defer rows.Close()

	var out []store.UserRecord
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("ListUsersByRole scan: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *UserStore) SetPasswordReset(ctx context.Context, userID string, tokenHash []byte, expiresAt time.Time) error {
	now := time.Now().UTC().UnixMilli()
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE users
SET reset_token_hash = ?,
    reset_expires_at_ms = ?,
    updated_at_ms = ?
WHERE user_id = ?;`, tokenHash, toMs(expiresAt), now, userID)
		if err != nil {
			return fmt.Errorf("SetPasswordReset: %w", err)
		}
		return requireAffected(res)
	})
}

func (s *UserStore) ResetPassword(ctx context.Context, userID string, tokenHash, passwordHash []byte, now time.Time) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var (
			stored []byte
			expMs  sql.NullInt64
		)
		err := tx.QueryRowContext(ctx, `
SELECT reset_token_hash, reset_expires_at_ms FROM users WHERE user_id = ?;`, userID,
		).Scan(&stored, &expMs)
		if err != nil {
			return fmt.Errorf("ResetPassword load: %w", notFoundIfNoRows(err))
		}
		if len(stored) == 0 || !expMs.Valid ||
			subtle.ConstantTimeCompare(stored, tokenHash) != 1 ||
			!now.Before(fromMs(expMs.Int64)) {
			return store.ErrNotFound
		}

		if _, err := tx.ExecContext(ctx, `
UPDATE users
SET password_hash = ?,
    reset_token_hash = NULL,
    reset_expires_at_ms = NULL,
    updated_at_ms = ?
WHERE user_id = ?;`, passwordHash, toMs(now), userID); err != nil {
			return fmt.Errorf("ResetPassword update: %w", err)
		}
		return nil
	})
}
