package service_test

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/BrandonDHaskell/accesshub/internal/access"
	"github.com/BrandonDHaskell/accesshub/internal/accesshub/service"
	"github.com/BrandonDHaskell/accesshub/internal/accesshub/store"
	"github.com/BrandonDHaskell/accesshub/internal/accesshub/store/memory"
	"github.com/BrandonDHaskell/accesshub/internal/auth"
)

func silentLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

var (
	t0       = time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)
	alice    = access.Principal{UserID: "alice", Role: access.RoleCustomer}
	bob      = access.Principal{UserID: "bob", Role: access.RoleCustomer}
	admin    = access.Principal{UserID: "root", Role: access.RoleAdmin}
	hubToken = map[string]string{"alice": "alice-hub-token", "bob": "bob-hub-token"}
)

// clock is a settable time source.
type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type env struct {
	mem   *memory.Store
	clock *clock
	deps  service.Deps
}

// newEnv builds an in-memory world:
//
//	alice: hub "alice-hub" with points alice-front (pos 1) and alice-back
//	       (pos 2); access users alice-au (code 1234, on alice-front) and
//	       alice-pending (code 5678, activates in 1h, on alice-front).
//	bob:   hub "bob-hub" with bob-front (pos 1); access user bob-au
//	       (code 1234, on bob-front).
//	root:  admin.
func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	mem := memory.New()
	c := &clock{t: t0}

	for _, u := range []store.UserRecord{
		{ID: "alice", Email: "alice@example.com", Role: access.RoleCustomer},
		{ID: "bob", Email: "bob@example.com", Role: access.RoleCustomer},
		{ID: "root", Email: "root@example.com", Role: access.RoleAdmin},
	} {
		u.PasswordHash = []byte("unused")
		u.CreatedAt = t0
		u.UpdatedAt = t0
		mustNoErr(t, mem.CreateUser(ctx, u))
	}

	for _, owner := range []string{"alice", "bob"} {
		mustNoErr(t, mem.CreateHub(ctx, store.HubRecord{
			ID: owner + "-hub", OwnerID: owner, Name: owner + " house", CreatedAt: t0, UpdatedAt: t0,
		}, auth.HashSecret(hubToken[owner])))
		mustNoErr(t, mem.CreatePoint(ctx, store.PointRecord{
			ID: owner + "-front", HubID: owner + "-hub", Name: "Front", Position: 1, CreatedAt: t0,
		}))
		mustNoErr(t, mem.CreateAccessUser(ctx, store.AccessUserRecord{
			ID: owner + "-au", OwnerID: owner, Name: "Guest", Code: "1234", CreatedAt: t0,
		}))
		mustNoErr(t, mem.ConnectAccessUsers(ctx, owner, owner+"-front", []string{owner + "-au"}))
	}

	mustNoErr(t, mem.CreatePoint(ctx, store.PointRecord{
		ID: "alice-back", HubID: "alice-hub", Name: "Back", Position: 2, CreatedAt: t0,
	}))
	activate := t0.Add(time.Hour)
	mustNoErr(t, mem.CreateAccessUser(ctx, store.AccessUserRecord{
		ID: "alice-pending", OwnerID: "alice", Name: "Arriving", Code: "5678",
		ActivateCodeAt: &activate, CreatedAt: t0,
	}))
	mustNoErr(t, mem.ConnectAccessUsers(ctx, "alice", "alice-front", []string{"alice-pending"}))

	return &env{
		mem:   mem,
		clock: c,
		deps: service.Deps{
			Stores: mem.Stores(),
			Now:    c.Now,
			Logger: silentLogger(),
		},
	}
}

func mustNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
