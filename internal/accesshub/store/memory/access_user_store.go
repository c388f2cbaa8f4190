package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/BrandonDHaskell/accesshub/internal/accesshub/store"
)

func compareAccessUsersByName(a, b store.AccessUserRecord) int {
	return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
}

func (s *Store) CreateAccessUser(_ context.Context, rec store.AccessUserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[rec.OwnerID]; !ok {
		return store.ErrNotFound
	}
	if _, ok := s.accessUsers[rec.ID]; ok {
		return store.ErrConflict
	}
	s.accessUsers[rec.ID] = rec
	return nil
}

func (s *Store) GetAccessUser(_ context.Context, ownerID, accessUserID string) (store.AccessUserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.liveAccessUser(ownerID, accessUserID)
	if !ok {
		return store.AccessUserRecord{}, store.ErrNotFound
	}
	return u, nil
}

func (s *Store) ListAccessUsers(_ context.Context, ownerID string) ([]store.AccessUserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.AccessUserRecord
	for _, u := range s.accessUsers {
		if u.OwnerID == ownerID && u.DeletedAt == nil {
			out = append(out, u)
		}
	}
	slices.SortFunc(out, compareAccessUsersByName)
	return out, nil
}

func (s *Store) UpdateAccessUser(_ context.Context, ownerID string, rec store.AccessUserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.liveAccessUser(ownerID, rec.ID)
	if !ok {
		return store.ErrNotFound
	}
	u.Name = rec.Name
	u.Description = rec.Description
	u.Code = rec.Code
	u.ActivateCodeAt = rec.ActivateCodeAt
	u.ExpireCodeAt = rec.ExpireCodeAt
	u.UpdatedAt = rec.UpdatedAt
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = time.Now().UTC()
	}
	s.accessUsers[rec.ID] = u
	return nil
}

func (s *Store) MarkAccessUserDeleted(_ context.Context, ownerID, accessUserID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.liveAccessUser(ownerID, accessUserID)
	if !ok {
		return store.ErrNotFound
	}
	t := at.UTC()
	u.DeletedAt = &t
	u.UpdatedAt = t
	s.accessUsers[accessUserID] = u
	return nil
}
