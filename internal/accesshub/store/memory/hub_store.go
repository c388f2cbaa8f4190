package memory

import (
	"bytes"
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/BrandonDHaskell/accesshub/internal/accesshub/store"
)

func (s *Store) CreateHub(_ context.Context, rec store.HubRecord, tokenHash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[rec.OwnerID]; !ok {
		return store.ErrNotFound
	}
	if _, ok := s.hubs[rec.ID]; ok {
		return store.ErrConflict
	}
	for _, h := range s.hubs {
		if len(tokenHash) > 0 && bytes.Equal(h.tokenHash, tokenHash) {
			return store.ErrConflict
		}
	}
	s.hubs[rec.ID] = hubRow{rec: rec, tokenHash: slices.Clone(tokenHash)}
	return nil
}

func (s *Store) GetHub(_ context.Context, ownerID, hubID string) (store.HubRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.ownsHub(ownerID, hubID) {
		return store.HubRecord{}, store.ErrNotFound
	}
	return s.hubs[hubID].rec, nil
}

func (s *Store) ListHubs(_ context.Context, ownerID string) ([]store.HubRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.HubRecord
	for _, h := range s.hubs {
		if h.rec.OwnerID == ownerID {
			out = append(out, h.rec)
		}
	}
	slices.SortFunc(out, func(a, b store.HubRecord) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (s *Store) UpdateHub(_ context.Context, ownerID, hubID, name, description string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ownsHub(ownerID, hubID) {
		return store.ErrNotFound
	}
	h := s.hubs[hubID]
	h.rec.Name = name
	h.rec.Description = description
	h.rec.UpdatedAt = at.UTC()
	s.hubs[hubID] = h
	return nil
}

func (s *Store) GetHubByTokenHash(_ context.Context, tokenHash []byte) (store.HubRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(tokenHash) == 0 {
		return store.HubRecord{}, store.ErrNotFound
	}
	for _, h := range s.hubs {
		if bytes.Equal(h.tokenHash, tokenHash) {
			return h.rec, nil
		}
	}
	return store.HubRecord{}, store.ErrNotFound
}

func (s *Store) RecordHeartbeat(_ context.Context, rec store.HeartbeatRecord) error {
	if rec.ReceivedAt.IsZero() {
		rec.ReceivedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.hubs[rec.HubID]
	if !ok {
		return store.ErrNotFound
	}
	s.heartbeats = append(s.heartbeats, rec)

	t := rec.ReceivedAt.UTC()
	h.rec.HeartbeatAt = &t
	s.hubs[rec.HubID] = h
	return nil
}

func (s *Store) PruneOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.heartbeats[:0]
	var deleted int64
	for _, hb := range s.heartbeats {
		if hb.ReceivedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, hb)
	}
	s.heartbeats = kept
	return deleted, nil
}

// Heartbeats returns a copy of the heartbeat history.  Test-only helper.
func (s *Store) Heartbeats() []store.HeartbeatRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.heartbeats)
}
