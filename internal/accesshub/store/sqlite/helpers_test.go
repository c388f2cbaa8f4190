package sqlite_test

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/BrandonDHaskell/accesshub/internal/access"
	"github.com/BrandonDHaskell/accesshub/internal/accesshub/store"
	sqlitestore "github.com/BrandonDHaskell/accesshub/internal/accesshub/store/sqlite"
	"github.com/BrandonDHaskell/accesshub/internal/db"
)

// openTestDB returns a private in-memory database with the production
// PRAGMAs and schema.  It is closed when the test finishes.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	name := "test_" + strings.ReplaceAll(t.Name(), "/", "_")
	conn, err := db.OpenDSN(context.Background(), db.MemoryDSN(name))
	if err != nil {
		t.Fatalf("openTestDB: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// newTestStores wires every sqlite store to a fresh database and writer.
func newTestStores(t *testing.T) (*sql.DB, store.Stores) {
	t.Helper()

	conn := openTestDB(t)
	w := db.NewWorker(conn)
	t.Cleanup(func() { w.Close() })
	return conn, sqlitestore.NewStores(conn, w)
}

var t0 = time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)

// fixture is two customers, each with one hub, two points and one access
// user linked to the first point.
type fixture struct {
	stores store.Stores
}

func newFixture(t *testing.T) (*sql.DB, fixture) {
	t.Helper()
	ctx := context.Background()
	conn, s := newTestStores(t)

	for _, owner := range []string{"alice", "bob"} {
		must(t, s.Users.CreateUser(ctx, store.UserRecord{
			ID: owner, Email: owner + "@example.com", Role: access.RoleCustomer,
			PasswordHash: []byte("x"), CreatedAt: t0,
		}))
		hub := owner + "-hub"
		must(t, s.Hubs.CreateHub(ctx, store.HubRecord{
			ID: hub, OwnerID: owner, Name: strings.ToUpper(owner[:1]) + owner[1:] + " House", CreatedAt: t0,
		}, []byte(owner+"-token-hash")))
		must(t, s.Points.CreatePoint(ctx, store.PointRecord{
			ID: hub + "-front", HubID: hub, Name: "Front", Position: 1, CreatedAt: t0,
		}))
		must(t, s.Points.CreatePoint(ctx, store.PointRecord{
			ID: hub + "-back", HubID: hub, Name: "Back", Position: 2, CreatedAt: t0,
		}))
		must(t, s.AccessUsers.CreateAccessUser(ctx, store.AccessUserRecord{
			ID: owner + "-au", OwnerID: owner, Name: "Guest of " + owner, Code: "1234", CreatedAt: t0,
		}))
		must(t, s.Points.ConnectAccessUsers(ctx, owner, hub+"-front", []string{owner + "-au"}))
	}
	return conn, fixture{stores: s}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
