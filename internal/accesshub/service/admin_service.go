package service

import (
	"context"

	"github.com/BrandonDHaskell/accesshub/internal/access"
	"github.com/BrandonDHaskell/accesshub/internal/accesshub/store"
	"github.com/BrandonDHaskell/accesshub/internal/accesshub/types"
)

// AdminService is read-only inspection of any customer.  Lookups are
// scoped by the customer id from the request, so a hub that exists under
// another customer is still a miss.
type AdminService struct {
	d Deps
}

func NewAdminService(d Deps) *AdminService {
	return &AdminService{d: d}
}

func (s *AdminService) Customers(ctx context.Context, p access.Principal) ([]types.CustomerView, error) {
	if err := requireRole(p, access.RoleAdmin); err != nil {
		return nil, err
	}
	users, err := s.d.Stores.Users.ListUsersByRole(ctx, access.RoleCustomer)
	if err != nil {
		return nil, err
	}
	out := make([]types.CustomerView, 0, len(users))
	for _, u := range users {
		out = append(out, customerView(u))
	}
	return out, nil
}

func (s *AdminService) Customer(ctx context.Context, p access.Principal, customerID string) (types.CustomerDetail, error) {
	if err := requireRole(p, access.RoleAdmin); err != nil {
		return types.CustomerDetail{}, err
	}
	u, err := s.customer(ctx, customerID)
	if err != nil {
		return types.CustomerDetail{}, err
	}
	users, err := s.d.Stores.AccessUsers.ListAccessUsers(ctx, u.ID)
	if err != nil {
		return types.CustomerDetail{}, err
	}
	hubs, err := s.d.Stores.Hubs.ListHubs(ctx, u.ID)
	if err != nil {
		return types.CustomerDetail{}, err
	}

	now := s.d.now()
	out := types.CustomerDetail{
		CustomerView: customerView(u),
		AccessUsers:  accessUserViews(users, now, s.d.location()),
		Hubs:         make([]types.HubView, 0, len(hubs)),
	}
	for _, h := range hubs {
		out.Hubs = append(out.Hubs, hubView(h, now))
	}
	return out, nil
}

// Hub returns every point of the hub, by position, with its users.
func (s *AdminService) Hub(ctx context.Context, p access.Principal, customerID, hubID string) (types.HubRaw, error) {
	if err := requireRole(p, access.RoleAdmin); err != nil {
		return types.HubRaw{}, err
	}
	h, err := s.d.Stores.Hubs.GetHub(ctx, customerID, hubID)
	if err != nil {
		return types.HubRaw{}, err
	}
	points, err := s.d.Stores.Points.ListHubPoints(ctx, h.ID)
	if err != nil {
		return types.HubRaw{}, err
	}
	out := types.HubRaw{
		HubView: hubView(h, s.d.now()),
		Points:  make([]types.PointView, 0, len(points)),
	}
	for _, pt := range points {
		pv, err := loadPointView(ctx, s.d, pt)
		if err != nil {
			return types.HubRaw{}, err
		}
		out.Points = append(out.Points, pv)
	}
	return out, nil
}

func (s *AdminService) HubActivity(ctx context.Context, p access.Principal, customerID, hubID string, limit int) ([]types.ActivityEntry, error) {
	if err := requireRole(p, access.RoleAdmin); err != nil {
		return nil, err
	}
	return loadHubActivity(ctx, s.d, customerID, hubID, limit)
}

func (s *AdminService) Point(ctx context.Context, p access.Principal, customerID, hubID, pointID string) (types.PointDetail, error) {
	if err := requireRole(p, access.RoleAdmin); err != nil {
		return types.PointDetail{}, err
	}
	pd, err := loadPointDetail(ctx, s.d, customerID, pointID)
	if err != nil {
		return types.PointDetail{}, err
	}
	if pd.HubID != hubID {
		return types.PointDetail{}, store.ErrNotFound
	}
	return pd, nil
}

func (s *AdminService) AccessUser(ctx context.Context, p access.Principal, customerID, accessUserID string) (types.AccessUserDetail, error) {
	if err := requireRole(p, access.RoleAdmin); err != nil {
		return types.AccessUserDetail{}, err
	}
	return loadAccessUserDetail(ctx, s.d, customerID, accessUserID)
}

// customer loads a user and treats admins as missing.
func (s *AdminService) customer(ctx context.Context, customerID string) (store.UserRecord, error) {
	u, err := s.d.Stores.Users.GetUser(ctx, customerID)
	if err != nil {
		return store.UserRecord{}, err
	}
	if u.Role != access.RoleCustomer {
		return store.UserRecord{}, store.ErrNotFound
	}
	return u, nil
}

func customerView(u store.UserRecord) types.CustomerView {
	return types.CustomerView{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}
