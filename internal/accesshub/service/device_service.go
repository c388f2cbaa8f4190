package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BrandonDHaskell/accesshub/internal/access"
	"github.com/BrandonDHaskell/accesshub/internal/accesshub/store"
	"github.com/BrandonDHaskell/accesshub/internal/accesshub/types"
	"github.com/BrandonDHaskell/accesshub/internal/auth"
)

// DeviceService handles traffic from hubs.  A hub authenticates with its
// API token; only the token's SHA-256 is stored.
type DeviceService struct {
	d Deps
}

func NewDeviceService(d Deps) *DeviceService {
	return &DeviceService{d: d}
}

func (s *DeviceService) hub(ctx context.Context, token string) (store.HubRecord, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return store.HubRecord{}, ErrUnknownHub
	}
	h, err := s.d.Stores.Hubs.GetHubByTokenHash(ctx, auth.HashSecret(token))
	if errors.Is(err, store.ErrNotFound) {
		return store.HubRecord{}, ErrUnknownHub
	}
	if err != nil {
		return store.HubRecord{}, err
	}
	return h, nil
}

// Heartbeat moves the hub's heartbeatAt forward and appends to the
// heartbeat history.
func (s *DeviceService) Heartbeat(ctx context.Context, token string, req types.HeartbeatRequest) (types.HeartbeatResponse, error) {
	h, err := s.hub(ctx, token)
	if err != nil {
		return types.HeartbeatResponse{}, err
	}

	now := s.d.now()
	if err := s.d.Stores.Heartbeats.RecordHeartbeat(ctx, store.HeartbeatRecord{
		HubID:           h.ID,
		ReceivedAt:      now,
		FirmwareVersion: req.FirmwareVersion,
		UptimeSeconds:   req.UptimeSeconds,
		IP:              req.IP,
	}); err != nil {
		return types.HeartbeatResponse{}, fmt.Errorf("record heartbeat: %w", err)
	}

	return types.HeartbeatResponse{
		OK:         true,
		HubID:      h.ID,
		ServerTime: now.Format(time.RFC3339Nano),
	}, nil
}

// SubmitAccessEvent decides a code entered at one of the hub's points and
// records the outcome.  The code's status is evaluated at server receive
// time; the device timestamp, when given, is only what gets recorded.
func (s *DeviceService) SubmitAccessEvent(ctx context.Context, token string, req types.AccessEventRequest) (types.AccessEventResponse, error) {
	h, err := s.hub(ctx, token)
	if err != nil {
		return types.AccessEventResponse{}, err
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return types.AccessEventResponse{}, ErrInvalidCode
	}

	pt, err := s.point(ctx, h.ID, req)
	if err != nil {
		return types.AccessEventResponse{}, err
	}

	users, err := s.d.Stores.Points.ListPointAccessUsers(ctx, pt.ID)
	if err != nil {
		return types.AccessEventResponse{}, err
	}
	creds := make([]access.Credential, 0, len(users))
	for _, u := range users {
		creds = append(creds, u.Credential())
	}

	now := s.d.now()
	authz := access.Authorize(code, creds, now)

	// A device clock running ahead is clamped so the event cannot sit in
	// every future window.
	at := now
	if req.AtMs > 0 {
		at = time.UnixMilli(req.AtMs).UTC()
		if at.After(now) {
			at = now
		}
	}
	ev := store.AccessEventRecord{
		ID:           uuid.NewString(),
		PointID:      pt.ID,
		At:           at,
		Access:       authz.Decision,
		Code:         code,
		AccessUserID: authz.MatchedUserID,
		ReceivedAt:   now,
	}
	if err := s.d.Stores.Events.RecordEvent(ctx, ev); err != nil {
		return types.AccessEventResponse{}, fmt.Errorf("record access event: %w", err)
	}

	return types.AccessEventResponse{
		OK:         true,
		Access:     string(authz.Decision),
		Granted:    authz.Decision == access.DecisionGrant,
		PointID:    pt.ID,
		EventID:    ev.ID,
		ServerTime: now.Format(time.RFC3339Nano),
	}, nil
}

// point resolves the addressed point inside the hub: by id when given,
// otherwise by position.
func (s *DeviceService) point(ctx context.Context, hubID string, req types.AccessEventRequest) (store.PointRecord, error) {
	if id := strings.TrimSpace(req.PointID); id != "" {
		return s.d.Stores.Points.GetHubPoint(ctx, hubID, id)
	}
	if req.Position > 0 {
		return s.d.Stores.Points.GetHubPointByPosition(ctx, hubID, req.Position)
	}
	v := &ValidationError{}
	v.Field("point_id", "point_id or position is required")
	return store.PointRecord{}, v
}
