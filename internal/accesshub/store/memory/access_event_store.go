package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/BrandonDHaskell/accesshub/internal/access"
	"github.com/BrandonDHaskell/accesshub/internal/accesshub/store"
)

func (s *Store) RecordEvent(_ context.Context, rec store.AccessEventRecord) error {
	if rec.ReceivedAt.IsZero() {
		rec.ReceivedAt = time.Now().UTC()
	}
	if rec.At.IsZero() {
		rec.At = rec.ReceivedAt
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.points[rec.PointID]; !ok {
		return store.ErrNotFound
	}
	if rec.AccessUserID != nil {
		if _, ok := s.accessUsers[*rec.AccessUserID]; !ok {
			return store.ErrNotFound
		}
	}
	s.events = append(s.events, rec)
	return nil
}

func (s *Store) ListHubEvents(_ context.Context, hubID string, limit int) ([]store.AccessEventView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.AccessEventView
	for _, ev := range s.events {
		p, ok := s.points[ev.PointID]
		if !ok || p.HubID != hubID {
			continue
		}
		v := store.AccessEventView{AccessEventRecord: ev, PointName: p.Name}
		if ev.AccessUserID != nil {
			v.AccessUserName = s.accessUsers[*ev.AccessUserID].Name
		}
		out = append(out, v)
	}
	slices.SortStableFunc(out, func(a, b store.AccessEventView) int { return cmp.Compare(b.At.UnixNano(), a.At.UnixNano()) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ListOwnerEventSamples(_ context.Context, ownerID string, since time.Time) ([]access.EventSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []access.EventSample
	for _, ev := range s.events {
		if ev.At.Before(since) {
			continue
		}
		p, ok := s.points[ev.PointID]
		if !ok || !s.ownsHub(ownerID, p.HubID) {
			continue
		}
		out = append(out, access.EventSample{PointID: ev.PointID, Access: ev.Access, At: ev.At})
	}
	return out, nil
}

// Events returns a copy of all recorded events.  Test-only helper.
func (s *Store) Events() []store.AccessEventRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events)
}
