// Package memory is an in-process implementation of every store interface.
// It backs the service and HTTP tests and ACCESSHUB_STORE=memory dev runs.
package memory

import (
	"sync"

	"github.com/BrandonDHaskell/accesshub/internal/accesshub/store"
)

type hubRow struct {
	rec       store.HubRecord
	tokenHash []byte
}

type Store struct {
	mu sync.RWMutex

	users       map[string]store.UserRecord
	hubs        map[string]hubRow
	heartbeats  []store.HeartbeatRecord
	points      map[string]store.PointRecord
	accessUsers map[string]store.AccessUserRecord
	links       map[string]map[string]struct{} // point id -> access user ids
	events      []store.AccessEventRecord
}

func New() *Store {
	return &Store{
		users:       make(map[string]store.UserRecord),
		hubs:        make(map[string]hubRow),
		points:      make(map[string]store.PointRecord),
		accessUsers: make(map[string]store.AccessUserRecord),
		links:       make(map[string]map[string]struct{}),
	}
}

// Stores returns s in every slot.
func (s *Store) Stores() store.Stores {
	return store.Stores{
		Users:       s,
		Hubs:        s,
		Heartbeats:  s,
		Points:      s,
		AccessUsers: s,
		Events:      s,
	}
}

// ownsHub must be called with mu held.
func (s *Store) ownsHub(ownerID, hubID string) bool {
	h, ok := s.hubs[hubID]
	return ok && h.rec.OwnerID == ownerID
}

// ownedPoint must be called with mu held.
func (s *Store) ownedPoint(ownerID, pointID string) (store.PointRecord, bool) {
	p, ok := s.points[pointID]
	if !ok || !s.ownsHub(ownerID, p.HubID) {
		return store.PointRecord{}, false
	}
	p.HubName = s.hubs[p.HubID].rec.Name
	return p, true
}

// liveAccessUser must be called with mu held.
func (s *Store) liveAccessUser(ownerID, id string) (store.AccessUserRecord, bool) {
	u, ok := s.accessUsers[id]
	if !ok || u.DeletedAt != nil || u.OwnerID != ownerID {
		return store.AccessUserRecord{}, false
	}
	return u, true
}
