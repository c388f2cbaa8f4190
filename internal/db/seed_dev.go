package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/BrandonDHaskell/accesshub/internal/auth"
)

type SeedDevOptions struct {
	// Password for every seeded account.  Empty uses "accesshub-dev".
	Password string
}

// Dev fixtures.  Hub tokens are fixed so a hub simulator can be pointed at
// a fresh dev database without looking anything up.
const (
	DevAdminEmail    = "admin@accesshub.dev"
	DevCustomerEmail = "customer@accesshub.dev"
	DevHub1Token     = "dev-hub-brooklyn-0000000000000000000000000000000000000000000000000000"
	DevHub2Token     = "dev-hub-staten-island-000000000000000000000000000000000000000000000000"
)

type seedAccessUser struct {
	id, name, description, code string
}

type seedHub struct {
	id, name, token string
	// points in position order; each lists the access user ids it admits.
	points []seedPoint
}

type seedPoint struct {
	id, name string
	users    []string
}

// SeedDev creates an admin, a customer with five access users, and two hubs
// with four points each.  Safe to run on every dev start.
func SeedDev(ctx context.Context, db *sql.DB, opt SeedDevOptions) error {
	pw := strings.TrimSpace(opt.Password)
	if pw == "" {
		pw = "accesshub-dev"
	}
	hash, err := auth.HashPassword(pw)
	if err != nil {
		return fmt.Errorf("seed password: %w", err)
	}
	now := time.Now().UTC().UnixMilli()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, u := range []struct{ id, email, role string }{
		{"dev-admin", DevAdminEmail, "admin"},
		{"dev-customer", DevCustomerEmail, "customer"},
	} {
		if _, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO users(user_id, email, role, password_hash, created_at_ms, updated_at_ms)
VALUES (?, ?, ?, ?, ?, ?);`, u.id, u.email, u.role, hash, now, now); err != nil {
			return fmt.Errorf("seed user %s: %w", u.email, err)
		}
	}

	accessUsers := []seedAccessUser{
		{"dev-au-master", "Master", "Access to everything", "999"},
		{"dev-au-guest1", "Guest1", "Guest1 for Brooklyn BnB", "111"},
		{"dev-au-guest2", "Guest2", "Guest2 for Brooklyn BnB", "222"},
		{"dev-au-guest3", "Guest3", "Guest1 for Staten Island BnB", "333"},
		{"dev-au-guest4", "Guest4", "Guest2 for Staten Island BnB", "444"},
	}
	for _, au := range accessUsers {
		if _, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO access_users(
  access_user_id, user_id, name, description, code, created_at_ms, updated_at_ms
) VALUES (?, 'dev-customer', ?, ?, ?, ?, ?);`,
			au.id, au.name, au.description, au.code, now, now); err != nil {
			return fmt.Errorf("seed access user %s: %w", au.name, err)
		}
	}

	hubs := []seedHub{
		devHub("dev-hub-1", "Brooklyn BnB", DevHub1Token, "dev-au-guest1", "dev-au-guest2"),
		devHub("dev-hub-2", "Staten Island BnB", DevHub2Token, "dev-au-guest3", "dev-au-guest4"),
	}
	for _, h := range hubs {
		if _, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO access_hubs(
  hub_id, user_id, name, description, api_token_hash, created_at_ms, updated_at_ms
) VALUES (?, 'dev-customer', ?, '', ?, ?, ?);`,
			h.id, h.name, auth.HashSecret(h.token), now, now); err != nil {
			return fmt.Errorf("seed hub %s: %w", h.name, err)
		}

		for i, p := range h.points {
			if _, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO access_points(
  point_id, hub_id, name, description, position, created_at_ms, updated_at_ms
) VALUES (?, ?, ?, '', ?, ?, ?);`,
				p.id, h.id, p.name, i+1, now, now); err != nil {
				return fmt.Errorf("seed point %s/%s: %w", h.name, p.name, err)
			}
			for _, au := range p.users {
				if _, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO access_point_users(point_id, access_user_id) VALUES (?, ?);`,
					p.id, au); err != nil {
					return fmt.Errorf("seed point user %s: %w", p.name, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}
	return nil
}

func devHub(id, name, token, guestA, guestB string) seedHub {
	const master = "dev-au-master"
	return seedHub{
		id:    id,
		name:  name,
		token: token,
		points: []seedPoint{
			{id + "-front", "Front Door", []string{master, guestA, guestB}},
			{id + "-first", "First Floor", []string{master, guestA}},
			{id + "-second", "Second Floor", []string{master, guestA}},
			{id + "-basement", "Basement Door", []string{master}},
		},
	}
}
