package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/BrandonDHaskell/accesshub/internal/accesshub/store"
)

func comparePointsByHubThenName(a, b store.PointRecord) int {
	return cmp.Or(
		cmp.Compare(a.HubName, b.HubName),
		cmp.Compare(a.Name, b.Name),
		cmp.Compare(a.ID, b.ID),
	)
}

func comparePointsByPosition(a, b store.PointRecord) int {
	return cmp.Or(cmp.Compare(a.Position, b.Position), cmp.Compare(a.ID, b.ID))
}

func (s *Store) CreatePoint(_ context.Context, rec store.PointRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.hubs[rec.HubID]; !ok {
		return store.ErrNotFound
	}
	if _, ok := s.points[rec.ID]; ok {
		return store.ErrConflict
	}
	rec.HubName = ""
	s.points[rec.ID] = rec
	return nil
}

func (s *Store) GetPoint(_ context.Context, ownerID, pointID string) (store.PointRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.ownedPoint(ownerID, pointID)
	if !ok {
		return store.PointRecord{}, store.ErrNotFound
	}
	return p, nil
}

func (s *Store) ListPoints(_ context.Context, ownerID string) ([]store.PointRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.PointRecord
	for id := range s.points {
		if p, ok := s.ownedPoint(ownerID, id); ok {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, comparePointsByHubThenName)
	return out, nil
}

func (s *Store) ListHubPoints(_ context.Context, hubID string) ([]store.PointRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.hubs[hubID]
	if !ok {
		return nil, nil
	}
	var out []store.PointRecord
	for _, p := range s.points {
		if p.HubID == hubID {
			p.HubName = h.rec.Name
			out = append(out, p)
		}
	}
	slices.SortFunc(out, comparePointsByPosition)
	return out, nil
}

func (s *Store) UpdatePoint(_ context.Context, ownerID, pointID, name, description string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.points[pointID]
	if !ok || !s.ownsHub(ownerID, p.HubID) {
		return store.ErrNotFound
	}
	p.Name = name
	p.Description = description
	p.UpdatedAt = at.UTC()
	s.points[pointID] = p
	return nil
}

func (s *Store) GetHubPoint(_ context.Context, hubID, pointID string) (store.PointRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.points[pointID]
	if !ok || p.HubID != hubID {
		return store.PointRecord{}, store.ErrNotFound
	}
	p.HubName = s.hubs[hubID].rec.Name
	return p, nil
}

func (s *Store) GetHubPointByPosition(_ context.Context, hubID string, position int) (store.PointRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []store.PointRecord
	for _, p := range s.points {
		if p.HubID == hubID && p.Position == position {
			matches = append(matches, p)
		}
	}
	if len(matches) == 0 {
		return store.PointRecord{}, store.ErrNotFound
	}
	slices.SortFunc(matches, comparePointsByPosition)
	p := matches[0]
	p.HubName = s.hubs[hubID].rec.Name
	return p, nil
}

func (s *Store) ListPointAccessUsers(_ context.Context, pointID string) ([]store.AccessUserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.AccessUserRecord
	for id := range s.links[pointID] {
		u, ok := s.accessUsers[id]
		if !ok || u.DeletedAt != nil {
			continue
		}
		out = append(out, u)
	}
	slices.SortFunc(out, compareAccessUsersByName)
	return out, nil
}

func (s *Store) ListAccessUserPoints(_ context.Context, accessUserID string) ([]store.PointRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.PointRecord
	for pointID, members := range s.links {
		if _, ok := members[accessUserID]; !ok {
			continue
		}
		p, ok := s.points[pointID]
		if !ok {
			continue
		}
		p.HubName = s.hubs[p.HubID].rec.Name
		out = append(out, p)
	}
	slices.SortFunc(out, comparePointsByHubThenName)
	return out, nil
}

func (s *Store) ConnectAccessUsers(_ context.Context, ownerID, pointID string, accessUserIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ownedPoint(ownerID, pointID); !ok {
		return store.ErrNotFound
	}
	for _, id := range accessUserIDs {
		if _, ok := s.liveAccessUser(ownerID, id); !ok {
			return store.ErrNotFound
		}
	}

	members := s.links[pointID]
	if members == nil {
		members = make(map[string]struct{}, len(accessUserIDs))
		s.links[pointID] = members
	}
	for _, id := range accessUserIDs {
		members[id] = struct{}{}
	}
	return nil
}

func (s *Store) ConnectPoints(_ context.Context, ownerID, accessUserID string, pointIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.liveAccessUser(ownerID, accessUserID); !ok {
		return store.ErrNotFound
	}
	for _, id := range pointIDs {
		if _, ok := s.ownedPoint(ownerID, id); !ok {
			return store.ErrNotFound
		}
	}

	for _, id := range pointIDs {
		members := s.links[id]
		if members == nil {
			members = make(map[string]struct{})
			s.links[id] = members
		}
		members[accessUserID] = struct{}{}
	}
	return nil
}

func (s *Store) DisconnectAccessUser(_ context.Context, ownerID, pointID, accessUserID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ownedPoint(ownerID, pointID); !ok {
		return store.ErrNotFound
	}
	if u, ok := s.accessUsers[accessUserID]; !ok || u.OwnerID != ownerID {
		return store.ErrNotFound
	}
	delete(s.links[pointID], accessUserID)
	return nil
}
