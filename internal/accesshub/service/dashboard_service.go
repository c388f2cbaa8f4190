package service

import (
	"context"
	"time"

	"github.com/BrandonDHaskell/accesshub/internal/access"
	"github.com/BrandonDHaskell/accesshub/internal/accesshub/types"
)

// Dashboard window bounds.
const (
	DefaultDashboardWindow = 24 * time.Hour
	MinDashboardWindow     = time.Minute
	MaxDashboardWindow     = 30 * 24 * time.Hour
)

type DashboardService struct {
	d Deps
}

func NewDashboardService(d Deps) *DashboardService {
	return &DashboardService{d: d}
}

// Dashboard summarises every hub of the caller: connection status and
// grant/deny counts per point over the trailing window.  A zero window
// means DefaultDashboardWindow.
func (s *DashboardService) Dashboard(ctx context.Context, p access.Principal, window time.Duration) (types.Dashboard, error) {
	if err := requireRole(p, access.RoleCustomer); err != nil {
		return types.Dashboard{}, err
	}
	if window == 0 {
		window = DefaultDashboardWindow
	}
	if window < MinDashboardWindow || window > MaxDashboardWindow {
		v := &ValidationError{}
		v.Field("window", "must be between 1m and 720h")
		return types.Dashboard{}, v
	}

	now := s.d.now()
	windowStart := now.Add(-window)

	hubs, err := s.d.Stores.Hubs.ListHubs(ctx, p.UserID)
	if err != nil {
		return types.Dashboard{}, err
	}

	pointHub := make(map[string]string)
	hubPoints := make([][]types.PointSummary, len(hubs))
	for i, h := range hubs {
		points, err := s.d.Stores.Points.ListHubPoints(ctx, h.ID)
		if err != nil {
			return types.Dashboard{}, err
		}
		for _, pt := range points {
			pointHub[pt.ID] = h.ID
		}
		hubPoints[i] = pointSummaries(points)
	}

	samples, err := s.d.Stores.Events.ListOwnerEventSamples(ctx, p.UserID, windowStart)
	if err != nil {
		return types.Dashboard{}, err
	}
	summary := access.Summarize(samples, windowStart, pointHub)

	out := types.Dashboard{
		Window:      window.String(),
		WindowStart: windowStart,
		Hubs:        make([]types.DashboardHub, 0, len(hubs)),
	}
	for i, h := range hubs {
		dh := types.DashboardHub{
			HubView: hubView(h, now),
			Totals:  types.CountsOf(summary.PerHub[h.ID]),
			Points:  make([]types.DashboardPoint, 0, len(hubPoints[i])),
		}
		for _, pt := range hubPoints[i] {
			dh.Points = append(dh.Points, types.DashboardPoint{
				PointSummary: pt,
				Counts:       types.CountsOf(summary.PerPoint[pt.ID]),
			})
		}
		out.Hubs = append(out.Hubs, dh)
	}
	return out, nil
}
