package service

import (
	"time"

	"github.com/BrandonDHaskell/accesshub/internal/access"
	"github.com/BrandonDHaskell/accesshub/internal/accesshub/store"
	"github.com/BrandonDHaskell/accesshub/internal/accesshub/types"
)

func hubView(h store.HubRecord, now time.Time) types.HubView {
	return types.HubView{
		ID:          h.ID,
		Name:        h.Name,
		Description: h.Description,
		HeartbeatAt: h.HeartbeatAt,
		Connection:  access.Classify(h.HeartbeatAt, now),
		CreatedAt:   h.CreatedAt,
		UpdatedAt:   h.UpdatedAt,
	}
}

func pointSummary(p store.PointRecord) types.PointSummary {
	return types.PointSummary{
		ID:          p.ID,
		HubID:       p.HubID,
		HubName:     p.HubName,
		Name:        p.Name,
		Description: p.Description,
		Position:    p.Position,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func pointSummaries(ps []store.PointRecord) []types.PointSummary {
	out := make([]types.PointSummary, 0, len(ps))
	for _, p := range ps {
		out = append(out, pointSummary(p))
	}
	return out
}

func accessUserView(u store.AccessUserRecord, now time.Time, loc *time.Location) types.AccessUserView {
	return types.AccessUserView{
		ID:             u.ID,
		Name:           u.Name,
		Description:    u.Description,
		Code:           u.Code,
		ActivateCodeAt: u.ActivateCodeAt,
		ExpireCodeAt:   u.ExpireCodeAt,
		CodeStatus:     access.EvaluateIn(u.Window(), now, loc),
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func accessUserViews(us []store.AccessUserRecord, now time.Time, loc *time.Location) []types.AccessUserView {
	out := make([]types.AccessUserView, 0, len(us))
	for _, u := range us {
		out = append(out, accessUserView(u, now, loc))
	}
	return out
}

func activityEntries(evs []store.AccessEventView) []types.ActivityEntry {
	out := make([]types.ActivityEntry, 0, len(evs))
	for _, ev := range evs {
		out = append(out, types.ActivityEntry{
			ID:             ev.ID,
			PointID:        ev.PointID,
			PointName:      ev.PointName,
			At:             ev.At,
			Access:         ev.Access,
			Code:           ev.Code,
			AccessUserID:   ev.AccessUserID,
			AccessUserName: ev.AccessUserName,
		})
	}
	return out
}
