package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/BrandonDHaskell/accesshub/internal/access"
	"github.com/BrandonDHaskell/accesshub/internal/accesshub/store"
)

func TestUserStore_DuplicateEmailConflicts(t *testing.T) {
	_, s := newTestStores(t)
	ctx := context.Background()

	must(t, s.Users.CreateUser(ctx, store.UserRecord{
		ID: "u1", Email: "a@example.com", Role: access.RoleCustomer, PasswordHash: []byte("h"), CreatedAt: t0,
	}))
	err := s.Users.CreateUser(ctx, store.UserRecord{
		ID: "u2", Email: "a@example.com", Role: access.RoleCustomer, PasswordHash: []byte("h"), CreatedAt: t0,
	})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestUserStore_GetUserByEmail(t *testing.T) {
	_, s := newTestStores(t)
	ctx := context.Background()

	must(t, s.Users.CreateUser(ctx, store.UserRecord{
		ID: "u1", Email: "a@example.com", Role: access.RoleAdmin, PasswordHash: []byte("h"), CreatedAt: t0,
	}))

	u, err := s.Users.GetUserByEmail(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if u.ID != "u1" || u.Role != access.RoleAdmin || !u.CreatedAt.Equal(t0) {
		t.Errorf("unexpected user: %+v", u)
	}

	if _, err := s.Users.GetUserByEmail(ctx, "missing@example.com"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUserStore_ListUsersByRole_OrderedByEmail(t *testing.T) {
	_, s := newTestStores(t)
	ctx := context.Background()

	for _, u := range []store.UserRecord{
		{ID: "c2", Email: "zed@example.com", Role: access.RoleCustomer},
		{ID: "a1", Email: "root@example.com", Role: access.RoleAdmin},
		{ID: "c1", Email: "amy@example.com", Role: access.RoleCustomer},
	} {
		u.PasswordHash = []byte("h")
		u.CreatedAt = t0
		must(t, s.Users.CreateUser(ctx, u))
	}

	got, err := s.Users.ListUsersByRole(ctx, access.RoleCustomer)
	if err != nil {
		t.Fatalf("ListUsersByRole: %v", err)
	}
	if len(got) != 2 || got[0].ID != "c1" || got[1].ID != "c2" {
		t.Fatalf("unexpected customers: %+v", got)
	}
}

func TestUserStore_ResetPassword(t *testing.T) {
	_, s := newTestStores(t)
	ctx := context.Background()

	must(t, s.Users.CreateUser(ctx, store.UserRecord{
		ID: "u1", Email: "a@example.com", Role: access.RoleCustomer, PasswordHash: []byte("old"), CreatedAt: t0,
	}))
	must(t, s.Users.SetPasswordReset(ctx, "u1", []byte("token-hash"), t0.Add(6*time.Hour)))

	// Wrong token.
	if err := s.Users.ResetPassword(ctx, "u1", []byte("nope"), []byte("new"), t0); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("wrong token: expected ErrNotFound, got %v", err)
	}
	// Expired.
	if err := s.Users.ResetPassword(ctx, "u1", []byte("token-hash"), []byte("new"), t0.Add(6*time.Hour)); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expired: expected ErrNotFound, got %v", err)
	}

	must(t, s.Users.ResetPassword(ctx, "u1", []byte("token-hash"), []byte("new"), t0.Add(time.Hour)))

	u, err := s.Users.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if string(u.PasswordHash) != "new" {
		t.Errorf("password hash = %q, want new", u.PasswordHash)
	}
	if u.ResetTokenHash != nil || u.ResetExpiresAt != nil {
		t.Errorf("reset state not cleared: %+v", u)
	}

	// Single use.
	if err := s.Users.ResetPassword(ctx, "u1", []byte("token-hash"), []byte("again"), t0.Add(time.Hour)); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("reuse: expected ErrNotFound, got %v", err)
	}
}
