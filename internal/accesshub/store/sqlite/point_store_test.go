package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/BrandonDHaskell/accesshub/internal/accesshub/store"
)

func TestPointStore_ListPoints_OrderedByHubThenName(t *testing.T) {
	_, f := newFixture(t)
	ctx := context.Background()

	must(t, f.stores.Hubs.CreateHub(ctx, store.HubRecord{ID: "alice-hub-2", OwnerID: "alice", Name: "Aardvark Cabin", CreatedAt: t0}, nil))
	must(t, f.stores.Points.CreatePoint(ctx, store.PointRecord{ID: "cabin-door", HubID: "alice-hub-2", Name: "Door", Position: 1, CreatedAt: t0}))

	got, err := f.stores.Points.ListPoints(ctx, "alice")
	if err != nil {
		t.Fatalf("ListPoints: %v", err)
	}
	want := []string{"cabin-door", "alice-hub-back", "alice-hub-front"}
	if len(got) != len(want) {
		t.Fatalf("got %d points, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("point[%d] = %s, want %s", i, got[i].ID, id)
		}
	}
	if got[0].HubName != "Aardvark Cabin" {
		t.Errorf("HubName = %q", got[0].HubName)
	}
}

func TestPointStore_ListHubPoints_OrderedByPosition(t *testing.T) {
	_, f := newFixture(t)

	got, err := f.stores.Points.ListHubPoints(context.Background(), "alice-hub")
	if err != nil {
		t.Fatalf("ListHubPoints: %v", err)
	}
	if len(got) != 2 || got[0].Position != 1 || got[1].Position != 2 {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestPointStore_UpdatePoint_ForeignOwner(t *testing.T) {
	_, f := newFixture(t)
	ctx := context.Background()

	err := f.stores.Points.UpdatePoint(ctx, "bob", "alice-hub-front", "x", "", t0)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	must(t, f.stores.Points.UpdatePoint(ctx, "alice", "alice-hub-front", "Main Door", "blue", t0.Add(time.Minute)))
	p, err := f.stores.Points.GetPoint(ctx, "alice", "alice-hub-front")
	if err != nil {
		t.Fatalf("GetPoint: %v", err)
	}
	if p.Name != "Main Door" || p.Description != "blue" {
		t.Errorf("unexpected point: %+v", p)
	}
}

func TestPointStore_DeviceLookups(t *testing.T) {
	_, f := newFixture(t)
	ctx := context.Background()

	p, err := f.stores.Points.GetHubPointByPosition(ctx, "bob-hub", 2)
	if err != nil {
		t.Fatalf("GetHubPointByPosition: %v", err)
	}
	if p.ID != "bob-hub-back" {
		t.Errorf("got %s, want bob-hub-back", p.ID)
	}

	if _, err := f.stores.Points.GetHubPoint(ctx, "bob-hub", "alice-hub-front"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("cross-hub lookup: expected ErrNotFound, got %v", err)
	}
	if _, err := f.stores.Points.GetHubPointByPosition(ctx, "bob-hub", 9); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("unknown position: expected ErrNotFound, got %v", err)
	}
}

func TestPointStore_ConnectAccessUsers_AllOrNothing(t *testing.T) {
	_, f := newFixture(t)
	ctx := context.Background()

	must(t, f.stores.AccessUsers.CreateAccessUser(ctx, store.AccessUserRecord{
		ID: "alice-au2", OwnerID: "alice", Name: "Cleaner", Code: "5555", CreatedAt: t0,
	}))

	// bob-au belongs to another customer; nothing may be linked.
	err := f.stores.Points.ConnectAccessUsers(ctx, "alice", "alice-hub-back", []string{"alice-au2", "bob-au"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	users, _ := f.stores.Points.ListPointAccessUsers(ctx, "alice-hub-back")
	if len(users) != 0 {
		t.Fatalf("partial connect leaked %d links", len(users))
	}

	// Duplicates in the request and existing links are fine.
	must(t, f.stores.Points.ConnectAccessUsers(ctx, "alice", "alice-hub-back", []string{"alice-au2", "alice-au", "alice-au2"}))
	must(t, f.stores.Points.ConnectAccessUsers(ctx, "alice", "alice-hub-back", []string{"alice-au"}))

	users, err = f.stores.Points.ListPointAccessUsers(ctx, "alice-hub-back")
	if err != nil {
		t.Fatalf("ListPointAccessUsers: %v", err)
	}
	if len(users) != 2 || users[0].Name != "Cleaner" || users[1].Name != "Guest of alice" {
		t.Fatalf("unexpected users: %+v", users)
	}
}

func TestPointStore_ConnectAccessUsers_ForeignPoint(t *testing.T) {
	_, f := newFixture(t)

	err := f.stores.Points.ConnectAccessUsers(context.Background(), "alice", "bob-hub-front", []string{"alice-au"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPointStore_DisconnectAccessUser(t *testing.T) {
	_, f := newFixture(t)
	ctx := context.Background()

	if err := f.stores.Points.DisconnectAccessUser(ctx, "bob", "alice-hub-front", "alice-au"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("foreign disconnect: expected ErrNotFound, got %v", err)
	}

	must(t, f.stores.Points.DisconnectAccessUser(ctx, "alice", "alice-hub-front", "alice-au"))
	users, _ := f.stores.Points.ListPointAccessUsers(ctx, "alice-hub-front")
	if len(users) != 0 {
		t.Fatalf("expected no users, got %+v", users)
	}
	points, _ := f.stores.Points.ListAccessUserPoints(ctx, "alice-au")
	if len(points) != 0 {
		t.Fatalf("expected no points, got %+v", points)
	}
}

func TestPointStore_ConnectPoints_AllOrNothing(t *testing.T) {
	_, f := newFixture(t)
	ctx := context.Background()

	// bob-hub-back is foreign; alice-hub-back must not be linked either.
	err := f.stores.Points.ConnectPoints(ctx, "alice", "alice-au", []string{"alice-hub-back", "bob-hub-back"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	points, _ := f.stores.Points.ListAccessUserPoints(ctx, "alice-au")
	if len(points) != 1 || points[0].ID != "alice-hub-front" {
		t.Fatalf("partial connect leaked links: %+v", points)
	}

	must(t, f.stores.Points.ConnectPoints(ctx, "alice", "alice-au", []string{"alice-hub-back", "alice-hub-front", "alice-hub-back"}))
	points, err = f.stores.Points.ListAccessUserPoints(ctx, "alice-au")
	if err != nil {
		t.Fatalf("ListAccessUserPoints: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %+v", points)
	}
}

func TestPointStore_ConnectPoints_DeletedUser(t *testing.T) {
	_, f := newFixture(t)
	ctx := context.Background()

	must(t, f.stores.AccessUsers.MarkAccessUserDeleted(ctx, "alice", "alice-au", t0.Add(time.Minute)))

	err := f.stores.Points.ConnectPoints(ctx, "alice", "alice-au", []string{"alice-hub-back"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	users, _ := f.stores.Points.ListPointAccessUsers(ctx, "alice-hub-back")
	if len(users) != 0 {
		t.Fatalf("deleted user linked: %+v", users)
	}
}
