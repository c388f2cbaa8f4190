package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/BrandonDHaskell/accesshub/internal/access"
	"github.com/BrandonDHaskell/accesshub/internal/accesshub/store"
	"github.com/BrandonDHaskell/accesshub/internal/accesshub/types"
)

// Code length limits.  New users may start with a short code; edits must
// use at least minEditCodeLen characters.
const (
	minCreateCodeLen = 1
	maxCreateCodeLen = 50
	minEditCodeLen   = 3
	maxEditCodeLen   = 100
)

type AccessUserService struct {
	d Deps
}

func NewAccessUserService(d Deps) *AccessUserService {
	return &AccessUserService{d: d}
}

func (s *AccessUserService) List(ctx context.Context, p access.Principal) ([]types.AccessUserView, error) {
	if err := requireRole(p, access.RoleCustomer); err != nil {
		return nil, err
	}
	users, err := s.d.Stores.AccessUsers.ListAccessUsers(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	return accessUserViews(users, s.d.now(), s.d.location()), nil
}

func (s *AccessUserService) Create(ctx context.Context, p access.Principal, in types.AccessUserInput) (types.AccessUserView, error) {
	if err := requireRole(p, access.RoleCustomer); err != nil {
		return types.AccessUserView{}, err
	}
	rec, err := parseAccessUserInput(in, minCreateCodeLen, maxCreateCodeLen)
	if err != nil {
		return types.AccessUserView{}, err
	}

	now := s.d.now()
	rec.ID = uuid.NewString()
	rec.OwnerID = p.UserID
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if err := s.d.Stores.AccessUsers.CreateAccessUser(ctx, rec); err != nil {
		return types.AccessUserView{}, fmt.Errorf("create access user: %w", err)
	}
	s.d.logger().Printf("access user created id=%s owner=%s", rec.ID, p.UserID)
	return accessUserView(rec, now, s.d.location()), nil
}

func (s *AccessUserService) Get(ctx context.Context, p access.Principal, accessUserID string) (types.AccessUserDetail, error) {
	if err := requireRole(p, access.RoleCustomer); err != nil {
		return types.AccessUserDetail{}, err
	}
	return loadAccessUserDetail(ctx, s.d, p.UserID, accessUserID)
}

func (s *AccessUserService) Update(ctx context.Context, p access.Principal, accessUserID string, in types.AccessUserInput) (types.AccessUserView, error) {
	if err := requireRole(p, access.RoleCustomer); err != nil {
		return types.AccessUserView{}, err
	}
	rec, err := parseAccessUserInput(in, minEditCodeLen, maxEditCodeLen)
	if err != nil {
		return types.AccessUserView{}, err
	}

	rec.ID = accessUserID
	rec.UpdatedAt = s.d.now()
	if err := s.d.Stores.AccessUsers.UpdateAccessUser(ctx, p.UserID, rec); err != nil {
		return types.AccessUserView{}, fmt.Errorf("update access user: %w", err)
	}
	updated, err := s.d.Stores.AccessUsers.GetAccessUser(ctx, p.UserID, accessUserID)
	if err != nil {
		return types.AccessUserView{}, err
	}
	return accessUserView(updated, s.d.now(), s.d.location()), nil
}

// Delete soft-deletes the access user.  Its code stops matching at once
// because deleted users drop out of every point's authorized set.
func (s *AccessUserService) Delete(ctx context.Context, p access.Principal, accessUserID string) error {
	if err := requireRole(p, access.RoleCustomer); err != nil {
		return err
	}
	if err := s.d.Stores.AccessUsers.MarkAccessUserDeleted(ctx, p.UserID, accessUserID, s.d.now()); err != nil {
		return fmt.Errorf("delete access user: %w", err)
	}
	s.d.logger().Printf("access user deleted id=%s owner=%s", accessUserID, p.UserID)
	return nil
}

// AvailablePoints lists the customer's points the access user is not on.
func (s *AccessUserService) AvailablePoints(ctx context.Context, p access.Principal, accessUserID string) ([]types.PointSummary, error) {
	if err := requireRole(p, access.RoleCustomer); err != nil {
		return nil, err
	}
	if _, err := s.d.Stores.AccessUsers.GetAccessUser(ctx, p.UserID, accessUserID); err != nil {
		return nil, err
	}
	all, err := s.d.Stores.Points.ListPoints(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	linked, err := s.d.Stores.Points.ListAccessUserPoints(ctx, accessUserID)
	if err != nil {
		return nil, err
	}
	on := make(map[string]struct{}, len(linked))
	for _, pt := range linked {
		on[pt.ID] = struct{}{}
	}
	var free []store.PointRecord
	for _, pt := range all {
		if _, ok := on[pt.ID]; !ok {
			free = append(free, pt)
		}
	}
	return pointSummaries(free), nil
}

// AddPoints puts the access user on each point in one write.  A foreign,
// unknown or deleted id links nothing.
func (s *AccessUserService) AddPoints(ctx context.Context, p access.Principal, accessUserID string, pointIDs []string) error {
	if err := requireRole(p, access.RoleCustomer); err != nil {
		return err
	}
	ids := cleanIDs(pointIDs)
	if len(ids) == 0 {
		v := &ValidationError{}
		v.Field("ids", "select at least one access point")
		return v
	}
	if err := s.d.Stores.Points.ConnectPoints(ctx, p.UserID, accessUserID, ids); err != nil {
		return fmt.Errorf("connect points: %w", err)
	}
	return nil
}

func (s *AccessUserService) RemovePoint(ctx context.Context, p access.Principal, accessUserID, pointID string) error {
	if err := requireRole(p, access.RoleCustomer); err != nil {
		return err
	}
	if err := s.d.Stores.Points.DisconnectAccessUser(ctx, p.UserID, pointID, accessUserID); err != nil {
		return fmt.Errorf("disconnect point: %w", err)
	}
	return nil
}

func loadAccessUserDetail(ctx context.Context, d Deps, ownerID, accessUserID string) (types.AccessUserDetail, error) {
	u, err := d.Stores.AccessUsers.GetAccessUser(ctx, ownerID, accessUserID)
	if err != nil {
		return types.AccessUserDetail{}, err
	}
	points, err := d.Stores.Points.ListAccessUserPoints(ctx, u.ID)
	if err != nil {
		return types.AccessUserDetail{}, err
	}
	return types.AccessUserDetail{
		AccessUserView: accessUserView(u, d.now(), d.location()),
		Points:         pointSummaries(points),
	}, nil
}

// parseAccessUserInput validates in and returns the writable fields.
func parseAccessUserInput(in types.AccessUserInput, minCode, maxCode int) (store.AccessUserRecord, error) {
	name := strings.TrimSpace(in.Name)
	description := strings.TrimSpace(in.Description)
	code := strings.TrimSpace(in.Code)

	v := &ValidationError{}
	validateNamed(v, name, description)
	v.length("code", code, minCode, maxCode)
	activate := v.instant("activateCodeAt", in.ActivateCodeAt)
	expire := v.instant("expireCodeAt", in.ExpireCodeAt)
	if activate != nil && expire != nil && !expire.After(*activate) {
		v.Field("expireCodeAt", "must be after activateCodeAt")
	}
	if err := v.Err(); err != nil {
		return store.AccessUserRecord{}, err
	}
	return store.AccessUserRecord{
		Name:           name,
		Description:    description,
		Code:           code,
		ActivateCodeAt: activate,
		ExpireCodeAt:   expire,
	}, nil
}
