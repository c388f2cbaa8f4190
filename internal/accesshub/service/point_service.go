package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/BrandonDHaskell/accesshub/internal/access"
	"github.com/BrandonDHaskell/accesshub/internal/accesshub/store"
	"github.com/BrandonDHaskell/accesshub/internal/accesshub/types"
)

type PointService struct {
	d Deps
}

func NewPointService(d Deps) *PointService {
	return &PointService{d: d}
}

// List returns every point of the customer with its authorized users.
func (s *PointService) List(ctx context.Context, p access.Principal) ([]types.PointView, error) {
	if err := requireRole(p, access.RoleCustomer); err != nil {
		return nil, err
	}
	points, err := s.d.Stores.Points.ListPoints(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	out := make([]types.PointView, 0, len(points))
	for _, pt := range points {
		pv, err := loadPointView(ctx, s.d, pt)
		if err != nil {
			return nil, err
		}
		out = append(out, pv)
	}
	return out, nil
}

func (s *PointService) Get(ctx context.Context, p access.Principal, pointID string) (types.PointDetail, error) {
	if err := requireRole(p, access.RoleCustomer); err != nil {
		return types.PointDetail{}, err
	}
	return loadPointDetail(ctx, s.d, p.UserID, pointID)
}

func (s *PointService) Update(ctx context.Context, p access.Principal, pointID string, in types.PointInput) (types.PointSummary, error) {
	if err := requireRole(p, access.RoleCustomer); err != nil {
		return types.PointSummary{}, err
	}
	name := strings.TrimSpace(in.Name)
	description := strings.TrimSpace(in.Description)

	v := &ValidationError{}
	validateNamed(v, name, description)
	if err := v.Err(); err != nil {
		return types.PointSummary{}, err
	}

	if err := s.d.Stores.Points.UpdatePoint(ctx, p.UserID, pointID, name, description, s.d.now()); err != nil {
		return types.PointSummary{}, fmt.Errorf("update point: %w", err)
	}
	pt, err := s.d.Stores.Points.GetPoint(ctx, p.UserID, pointID)
	if err != nil {
		return types.PointSummary{}, err
	}
	return pointSummary(pt), nil
}

// AvailableUsers lists the customer's access users not yet on the point.
func (s *PointService) AvailableUsers(ctx context.Context, p access.Principal, pointID string) ([]types.AccessUserView, error) {
	if err := requireRole(p, access.RoleCustomer); err != nil {
		return nil, err
	}
	if _, err := s.d.Stores.Points.GetPoint(ctx, p.UserID, pointID); err != nil {
		return nil, err
	}
	all, err := s.d.Stores.AccessUsers.ListAccessUsers(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	linked, err := s.d.Stores.Points.ListPointAccessUsers(ctx, pointID)
	if err != nil {
		return nil, err
	}
	on := make(map[string]struct{}, len(linked))
	for _, u := range linked {
		on[u.ID] = struct{}{}
	}
	var free []store.AccessUserRecord
	for _, u := range all {
		if _, ok := on[u.ID]; !ok {
			free = append(free, u)
		}
	}
	return accessUserViews(free, s.d.now(), s.d.location()), nil
}

// AddUsers links the access users to the point.  Nothing is linked unless
// the point and every user belong to the caller.
func (s *PointService) AddUsers(ctx context.Context, p access.Principal, pointID string, accessUserIDs []string) error {
	if err := requireRole(p, access.RoleCustomer); err != nil {
		return err
	}
	ids := cleanIDs(accessUserIDs)
	if len(ids) == 0 {
		v := &ValidationError{}
		v.Field("ids", "select at least one access user")
		return v
	}
	if err := s.d.Stores.Points.ConnectAccessUsers(ctx, p.UserID, pointID, ids); err != nil {
		return fmt.Errorf("connect access users: %w", err)
	}
	return nil
}

func (s *PointService) RemoveUser(ctx context.Context, p access.Principal, pointID, accessUserID string) error {
	if err := requireRole(p, access.RoleCustomer); err != nil {
		return err
	}
	if err := s.d.Stores.Points.DisconnectAccessUser(ctx, p.UserID, pointID, accessUserID); err != nil {
		return fmt.Errorf("disconnect access user: %w", err)
	}
	return nil
}

func loadPointView(ctx context.Context, d Deps, pt store.PointRecord) (types.PointView, error) {
	users, err := d.Stores.Points.ListPointAccessUsers(ctx, pt.ID)
	if err != nil {
		return types.PointView{}, err
	}
	return types.PointView{
		PointSummary: pointSummary(pt),
		AccessUsers:  accessUserViews(users, d.now(), d.location()),
	}, nil
}

func loadPointDetail(ctx context.Context, d Deps, ownerID, pointID string) (types.PointDetail, error) {
	pt, err := d.Stores.Points.GetPoint(ctx, ownerID, pointID)
	if err != nil {
		return types.PointDetail{}, err
	}
	h, err := d.Stores.Hubs.GetHub(ctx, ownerID, pt.HubID)
	if err != nil {
		return types.PointDetail{}, err
	}
	pv, err := loadPointView(ctx, d, pt)
	if err != nil {
		return types.PointDetail{}, err
	}
	return types.PointDetail{PointView: pv, Hub: hubView(h, d.now())}, nil
}

// cleanIDs trims, drops blanks and de-duplicates, keeping first-seen order.
func cleanIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
