package memory

import (
	"cmp"
	"context"
	"crypto/subtle"
	"slices"
	"time"

	"github.com/BrandonDHaskell/accesshub/internal/access"
	"github.com/BrandonDHaskell/accesshub/internal/accesshub/store"
)

func (s *Store) CreateUser(_ context.Context, rec store.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[rec.ID]; ok {
		return store.ErrConflict
	}
	for _, u := range s.users {
		if u.Email == rec.Email {
			return store.ErrConflict
		}
	}
	s.users[rec.ID] = rec
	return nil
}

func (s *Store) GetUser(_ context.Context, userID string) (store.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return store.UserRecord{}, store.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (store.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return store.UserRecord{}, store.ErrNotFound
}

func (s *Store) ListUsersByRole(_ context.Context, role access.Role) ([]store.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.UserRecord
	for _, u := range s.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	slices.SortFunc(out, func(a, b store.UserRecord) int { return cmp.Compare(a.Email, b.Email) })
	return out, nil
}

func (s *Store) SetPasswordReset(_ context.Context, userID string, tokenHash []byte, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	exp := expiresAt.UTC()
	u.ResetTokenHash = slices.Clone(tokenHash)
	u.ResetExpiresAt = &exp
	u.UpdatedAt = time.Now().UTC()
	s.users[userID] = u
	return nil
}

func (s *Store) ResetPassword(_ context.Context, userID string, tokenHash, passwordHash []byte, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok || u.ResetExpiresAt == nil || len(u.ResetTokenHash) == 0 {
		return store.ErrNotFound
	}
	if subtle.ConstantTimeCompare(u.ResetTokenHash, tokenHash) != 1 || !now.Before(*u.ResetExpiresAt) {
		return store.ErrNotFound
	}
	u.PasswordHash = slices.Clone(passwordHash)
	u.ResetTokenHash = nil
	u.ResetExpiresAt = nil
	u.UpdatedAt = now.UTC()
	s.users[userID] = u
	return nil
}
