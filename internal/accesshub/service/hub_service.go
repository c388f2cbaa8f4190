package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/BrandonDHaskell/accesshub/internal/access"
	"github.com/BrandonDHaskell/accesshub/internal/accesshub/types"
)

// Activity lists are newest first and capped.
const (
	DefaultActivityLimit = 100
	MaxActivityLimit     = 1000
)

func activityLimit(n int) int {
	switch {
	case n <= 0:
		return DefaultActivityLimit
	case n > MaxActivityLimit:
		return MaxActivityLimit
	}
	return n
}

type HubService struct {
	d Deps
}

func NewHubService(d Deps) *HubService {
	return &HubService{d: d}
}

func (s *HubService) List(ctx context.Context, p access.Principal) ([]types.HubView, error) {
	if err := requireRole(p, access.RoleCustomer); err != nil {
		return nil, err
	}
	hubs, err := s.d.Stores.Hubs.ListHubs(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	now := s.d.now()
	out := make([]types.HubView, 0, len(hubs))
	for _, h := range hubs {
		out = append(out, hubView(h, now))
	}
	return out, nil
}

func (s *HubService) Get(ctx context.Context, p access.Principal, hubID string) (types.HubDetail, error) {
	if err := requireRole(p, access.RoleCustomer); err != nil {
		return types.HubDetail{}, err
	}
	return loadHubDetail(ctx, s.d, p.UserID, hubID)
}

func (s *HubService) Update(ctx context.Context, p access.Principal, hubID string, in types.HubInput) (types.HubView, error) {
	if err := requireRole(p, access.RoleCustomer); err != nil {
		return types.HubView{}, err
	}
	name := strings.TrimSpace(in.Name)
	description := strings.TrimSpace(in.Description)

	v := &ValidationError{}
	validateNamed(v, name, description)
	if err := v.Err(); err != nil {
		return types.HubView{}, err
	}

	now := s.d.now()
	if err := s.d.Stores.Hubs.UpdateHub(ctx, p.UserID, hubID, name, description, now); err != nil {
		return types.HubView{}, fmt.Errorf("update hub: %w", err)
	}
	h, err := s.d.Stores.Hubs.GetHub(ctx, p.UserID, hubID)
	if err != nil {
		return types.HubView{}, err
	}
	return hubView(h, now), nil
}

func (s *HubService) Activity(ctx context.Context, p access.Principal, hubID string, limit int) ([]types.ActivityEntry, error) {
	if err := requireRole(p, access.RoleCustomer); err != nil {
		return nil, err
	}
	return loadHubActivity(ctx, s.d, p.UserID, hubID, limit)
}

// loadHubDetail is shared by the customer and admin views; ownerID scopes
// the lookup.
func loadHubDetail(ctx context.Context, d Deps, ownerID, hubID string) (types.HubDetail, error) {
	h, err := d.Stores.Hubs.GetHub(ctx, ownerID, hubID)
	if err != nil {
		return types.HubDetail{}, err
	}
	points, err := d.Stores.Points.ListHubPoints(ctx, h.ID)
	if err != nil {
		return types.HubDetail{}, err
	}
	return types.HubDetail{
		HubView: hubView(h, d.now()),
		Points:  pointSummaries(points),
	}, nil
}

func loadHubActivity(ctx context.Context, d Deps, ownerID, hubID string, limit int) ([]types.ActivityEntry, error) {
	if _, err := d.Stores.Hubs.GetHub(ctx, ownerID, hubID); err != nil {
		return nil, err
	}
	evs, err := d.Stores.Events.ListHubEvents(ctx, hubID, activityLimit(limit))
	if err != nil {
		return nil, err
	}
	return activityEntries(evs), nil
}
