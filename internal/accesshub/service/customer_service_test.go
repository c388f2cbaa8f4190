package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/BrandonDHaskell/accesshub/internal/access"
	"github.com/BrandonDHaskell/accesshub/internal/accesshub/service"
	"github.com/BrandonDHaskell/accesshub/internal/accesshub/store"
	"github.com/BrandonDHaskell/accesshub/internal/accesshub/types"
)

// ── Roles ───────────────────────────────────────────────────────────────────

func TestCustomerServices_RequireCustomerRole(t *testing.T) {
	e := newEnv(t)
	hubs := service.NewHubService(e.deps)
	ctx := context.Background()

	if _, err := hubs.List(ctx, admin); !errors.Is(err, service.ErrForbidden) {
		t.Errorf("admin: got %v, want ErrForbidden", err)
	}
	if _, err := hubs.List(ctx, access.Principal{}); !errors.Is(err, access.ErrUnauthenticated) {
		t.Errorf("anonymous: got %v, want ErrUnauthenticated", err)
	}
}

// ── Ownership ───────────────────────────────────────────────────────────────

func TestOwnership_ForeignResourcesAreNotFound(t *testing.T) {
	e := newEnv(t)
	hubs := service.NewHubService(e.deps)
	points := service.NewPointService(e.deps)
	users := service.NewAccessUserService(e.deps)
	ctx := context.Background()

	checks := map[string]error{}
	_, checks["hub get"] = hubs.Get(ctx, bob, "alice-hub")
	_, checks["hub update"] = hubs.Update(ctx, bob, "alice-hub", types.HubInput{Name: "mine now"})
	_, checks["hub activity"] = hubs.Activity(ctx, bob, "alice-hub", 0)
	_, checks["point get"] = points.Get(ctx, bob, "alice-front")
	_, checks["point update"] = points.Update(ctx, bob, "alice-front", types.PointInput{Name: "x"})
	_, checks["point available"] = points.AvailableUsers(ctx, bob, "alice-front")
	checks["point remove user"] = points.RemoveUser(ctx, bob, "alice-front", "alice-au")
	_, checks["user get"] = users.Get(ctx, bob, "alice-au")
	_, checks["user update"] = users.Update(ctx, bob, "alice-au", types.AccessUserInput{Name: "x", Code: "9999"})
	checks["user delete"] = users.Delete(ctx, bob, "alice-au")
	checks["user add points"] = users.AddPoints(ctx, bob, "alice-au", []string{"bob-front"})

	for name, err := range checks {
		if !errors.Is(err, store.ErrNotFound) {
			t.Errorf("%s: got %v, want ErrNotFound", name, err)
		}
	}

	h, err := hubs.Get(ctx, alice, "alice-hub")
	mustNoErr(t, err)
	if h.Name != "alice house" {
		t.Errorf("hub renamed by another customer: %q", h.Name)
	}
}

func TestPointAddUsers_ForeignUserConnectsNothing(t *testing.T) {
	e := newEnv(t)
	points := service.NewPointService(e.deps)
	ctx := context.Background()

	err := points.AddUsers(ctx, alice, "alice-back", []string{"alice-au", "bob-au"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}

	pd, err := points.Get(ctx, alice, "alice-back")
	mustNoErr(t, err)
	if len(pd.AccessUsers) != 0 {
		t.Fatalf("partial connect: %+v", pd.AccessUsers)
	}

	mustNoErr(t, points.AddUsers(ctx, alice, "alice-back", []string{"alice-au", " alice-au "}))
	pd, err = points.Get(ctx, alice, "alice-back")
	mustNoErr(t, err)
	if len(pd.AccessUsers) != 1 || pd.AccessUsers[0].ID != "alice-au" {
		t.Fatalf("unexpected users: %+v", pd.AccessUsers)
	}
	if pd.Hub.ID != "alice-hub" {
		t.Errorf("hub = %+v", pd.Hub)
	}
}

func TestPointAvailableUsers(t *testing.T) {
	e := newEnv(t)
	points := service.NewPointService(e.deps)
	ctx := context.Background()

	free, err := points.AvailableUsers(ctx, alice, "alice-front")
	mustNoErr(t, err)
	if len(free) != 0 {
		t.Errorf("alice-front: expected none, got %+v", free)
	}

	free, err = points.AvailableUsers(ctx, alice, "alice-back")
	mustNoErr(t, err)
	if len(free) != 2 || free[0].Name != "Arriving" || free[1].Name != "Guest" {
		t.Errorf("alice-back: got %+v", free)
	}
}

// ── Access users ────────────────────────────────────────────────────────────

func TestAccessUserUpdate_ExpireMustFollowActivate(t *testing.T) {
	e := newEnv(t)
	users := service.NewAccessUserService(e.deps)

	_, err := users.Update(context.Background(), alice, "alice-au", types.AccessUserInput{
		Name:           "Guest",
		Code:           "1234",
		ActivateCodeAt: "2026-03-01T00:00:00Z",
		ExpireCodeAt:   "2026-03-01T00:00:00Z",
	})
	var ve *service.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.FieldErrors["expireCodeAt"]) == 0 {
		t.Errorf("expected field error on expireCodeAt, got %+v", ve.FieldErrors)
	}
}

func TestAccessUserUpdate_CodeLength(t *testing.T) {
	e := newEnv(t)
	users := service.NewAccessUserService(e.deps)

	_, err := users.Update(context.Background(), alice, "alice-au", types.AccessUserInput{Name: "Guest", Code: "12"})
	var ve *service.ValidationError
	if !errors.As(err, &ve) || len(ve.FieldErrors["code"]) == 0 {
		t.Fatalf("expected code field error, got %v", err)
	}

	// Create accepts a single character.
	_, err = users.Create(context.Background(), alice, types.AccessUserInput{Name: "Kid", Code: "7"})
	mustNoErr(t, err)
}

func TestAccessUserCreateAndUpdate_StatusDescription(t *testing.T) {
	e := newEnv(t)
	users := service.NewAccessUserService(e.deps)
	ctx := context.Background()

	created, err := users.Create(ctx, alice, types.AccessUserInput{Name: "  Cleaner ", Code: "4444"})
	mustNoErr(t, err)
	if created.Name != "Cleaner" || created.CodeStatus.Status != access.StatusActive {
		t.Fatalf("unexpected created user: %+v", created)
	}

	updated, err := users.Update(ctx, alice, created.ID, types.AccessUserInput{
		Name:         "Cleaner",
		Code:         "4444",
		ExpireCodeAt: "2026-03-01T00:00:00Z",
	})
	mustNoErr(t, err)
	if updated.CodeStatus.Status != access.StatusActive {
		t.Errorf("status = %s, want ACTIVE", updated.CodeStatus.Status)
	}
	if updated.CodeStatus.Description != "Will expire at 3/1/2026, 12:00:00 AM" {
		t.Errorf("description = %q", updated.CodeStatus.Description)
	}

	updated, err = users.Update(ctx, alice, created.ID, types.AccessUserInput{
		Name:         "Cleaner",
		Code:         "4444",
		ExpireCodeAt: "2025-01-01T00:00:00Z",
	})
	mustNoErr(t, err)
	if updated.CodeStatus.Status != access.StatusExpired {
		t.Errorf("status = %s, want EXPIRED", updated.CodeStatus.Status)
	}

	list, err := users.List(ctx, alice)
	mustNoErr(t, err)
	if len(list) != 3 || list[0].Name != "Arriving" || list[1].Name != "Cleaner" {
		t.Errorf("unexpected list: %+v", list)
	}
}

func TestAccessUserPoints(t *testing.T) {
	e := newEnv(t)
	users := service.NewAccessUserService(e.deps)
	ctx := context.Background()

	free, err := users.AvailablePoints(ctx, alice, "alice-au")
	mustNoErr(t, err)
	if len(free) != 1 || free[0].ID != "alice-back" {
		t.Fatalf("available = %+v", free)
	}

	// A foreign point anywhere in the list means nothing is linked.
	err = users.AddPoints(ctx, alice, "alice-au", []string{"alice-back", "bob-front"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	d, err := users.Get(ctx, alice, "alice-au")
	mustNoErr(t, err)
	if len(d.Points) != 1 {
		t.Fatalf("points = %+v", d.Points)
	}

	mustNoErr(t, users.AddPoints(ctx, alice, "alice-au", []string{"alice-back"}))
	mustNoErr(t, users.RemovePoint(ctx, alice, "alice-au", "alice-front"))

	d, err = users.Get(ctx, alice, "alice-au")
	mustNoErr(t, err)
	if len(d.Points) != 1 || d.Points[0].ID != "alice-back" {
		t.Fatalf("points = %+v", d.Points)
	}
}

func TestAccessUserDelete_HidesUser(t *testing.T) {
	e := newEnv(t)
	users := service.NewAccessUserService(e.deps)
	points := service.NewPointService(e.deps)
	ctx := context.Background()

	mustNoErr(t, users.Delete(ctx, alice, "alice-au"))

	if _, err := users.Get(ctx, alice, "alice-au"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("get after delete: %v", err)
	}
	pd, err := points.Get(ctx, alice, "alice-front")
	mustNoErr(t, err)
	for _, u := range pd.AccessUsers {
		if u.ID == "alice-au" {
			t.Error("deleted user still listed on point")
		}
	}
	if err := users.Delete(ctx, alice, "alice-au"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: %v", err)
	}
}

// ── Hubs and points ─────────────────────────────────────────────────────────

func TestHubUpdate_Validation(t *testing.T) {
	e := newEnv(t)
	hubs := service.NewHubService(e.deps)
	ctx := context.Background()

	_, err := hubs.Update(ctx, alice, "alice-hub", types.HubInput{
		Name:        "",
		Description: strings.Repeat("x", 101),
	})
	var ve *service.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.FieldErrors["name"]) == 0 || len(ve.FieldErrors["description"]) == 0 {
		t.Errorf("field errors = %+v", ve.FieldErrors)
	}

	e.clock.Advance(time.Minute)
	h, err := hubs.Update(ctx, alice, "alice-hub", types.HubInput{Name: "Beach House", Description: "sea view"})
	mustNoErr(t, err)
	if h.Name != "Beach House" || !h.UpdatedAt.Equal(t0.Add(time.Minute)) {
		t.Errorf("unexpected hub: %+v", h)
	}
}

func TestHubGet_PointsByPosition(t *testing.T) {
	e := newEnv(t)
	hubs := service.NewHubService(e.deps)

	h, err := hubs.Get(context.Background(), alice, "alice-hub")
	mustNoErr(t, err)
	if len(h.Points) != 2 || h.Points[0].ID != "alice-front" || h.Points[1].ID != "alice-back" {
		t.Fatalf("points = %+v", h.Points)
	}
}

func TestPointList_OrderedWithUsers(t *testing.T) {
	e := newEnv(t)
	points := service.NewPointService(e.deps)

	list, err := points.List(context.Background(), alice)
	mustNoErr(t, err)
	if len(list) != 2 || list[0].Name != "Back" || list[1].Name != "Front" {
		t.Fatalf("list = %+v", list)
	}
	front := list[1]
	if len(front.AccessUsers) != 2 || front.AccessUsers[0].Name != "Arriving" {
		t.Fatalf("users = %+v", front.AccessUsers)
	}
	if front.AccessUsers[0].CodeStatus.Status != access.StatusPending {
		t.Errorf("status = %s", front.AccessUsers[0].CodeStatus.Status)
	}
}

func TestHubActivity_NewestFirst(t *testing.T) {
	e := newEnv(t)
	device := service.NewDeviceService(e.deps)
	hubs := service.NewHubService(e.deps)
	ctx := context.Background()

	for _, code := range []string{"1234", "0000"} {
		_, err := device.SubmitAccessEvent(ctx, hubToken["alice"], types.AccessEventRequest{PointID: "alice-front", Code: code})
		mustNoErr(t, err)
		e.clock.Advance(time.Second)
	}

	entries, err := hubs.Activity(ctx, alice, "alice-hub", 0)
	mustNoErr(t, err)
	if len(entries) != 2 {
		t.Fatalf("got %d entries", len(entries))
	}
	if entries[0].Access != access.DecisionDeny || entries[1].AccessUserName != "Guest" {
		t.Errorf("entries = %+v", entries)
	}

	limited, err := hubs.Activity(ctx, alice, "alice-hub", 1)
	mustNoErr(t, err)
	if len(limited) != 1 {
		t.Errorf("limit ignored: %d", len(limited))
	}
}

// ── Dashboard ───────────────────────────────────────────────────────────────

func TestDashboard_CountsInsideWindow(t *testing.T) {
	e := newEnv(t)
	device := service.NewDeviceService(e.deps)
	dash := service.NewDashboardService(e.deps)
	ctx := context.Background()

	submit := func(point, code string) {
		t.Helper()
		_, err := device.SubmitAccessEvent(ctx, hubToken["alice"], types.AccessEventRequest{PointID: point, Code: code})
		mustNoErr(t, err)
	}

	submit("alice-front", "1234") // outside the 1h window below
	e.clock.Advance(2 * time.Hour)
	submit("alice-front", "1234")
	submit("alice-front", "5678") // active now
	submit("alice-front", "0000")
	submit("alice-back", "1234")

	d, err := dash.Dashboard(ctx, alice, time.Hour)
	mustNoErr(t, err)
	if len(d.Hubs) != 1 {
		t.Fatalf("hubs = %d", len(d.Hubs))
	}
	h := d.Hubs[0]
	if h.Totals != (types.Counts{Grant: 2, Deny: 2, Total: 4}) {
		t.Errorf("totals = %+v", h.Totals)
	}
	if h.Points[0].Counts != (types.Counts{Grant: 2, Deny: 1, Total: 3}) {
		t.Errorf("front = %+v", h.Points[0].Counts)
	}
	if h.Points[1].Counts != (types.Counts{Deny: 1, Total: 1}) {
		t.Errorf("back = %+v", h.Points[1].Counts)
	}
	if !d.WindowStart.Equal(t0.Add(time.Hour)) {
		t.Errorf("window start = %v", d.WindowStart)
	}

	d, err = dash.Dashboard(ctx, alice, 0)
	mustNoErr(t, err)
	if d.Hubs[0].Totals.Total != 5 || d.Window != "24h0m0s" {
		t.Errorf("default window: %+v", d)
	}

	var ve *service.ValidationError
	if _, err := dash.Dashboard(ctx, alice, time.Second); !errors.As(err, &ve) {
		t.Errorf("tiny window: got %v", err)
	}
}

func TestAccessUserAddPoints_DeletedUserLinksNothing(t *testing.T) {
	e := newEnv(t)
	users := service.NewAccessUserService(e.deps)
	ctx := context.Background()

	mustNoErr(t, e.mem.MarkAccessUserDeleted(ctx, "alice", "alice-au", t0))

	err := users.AddPoints(ctx, alice, "alice-au", []string{"alice-back"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	pts, err := e.mem.ListAccessUserPoints(ctx, "alice-au")
	mustNoErr(t, err)
	for _, pt := range pts {
		if pt.ID == "alice-back" {
			t.Fatal("deleted access user was linked")
		}
	}
}
