// Package user maintains account records derived from verified identities.
package user

import (
	"context"
	"errors"
	"time"

	"taskspace/internal/apperr"
	"taskspace/internal/auth"
	"taskspace/internal/model"
	"taskspace/internal/store"
)

// Service wraps the store with the account upsert rules.
type Service struct {
	store store.Store
	now   func() time.Time
}

// NewService returns a user service backed by st.
func NewService(st store.Store) *Service {
	return &Service{store: st, now: time.Now}
}

// Register upserts the account record for a verified identity: created on
// the first call, refreshed (email, name, avatar, last login) afterwards.
// The returned bool reports whether the record was created.
func (s *Service) Register(ctx context.Context, id auth.Identity) (*model.User, bool, error) {
	now := s.now().UTC()

	existing, err := s.store.GetUser(ctx, id.UID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}

	if existing != nil {
		existing.Email = id.Email
		if id.Name != "" {
			existing.DisplayName = id.Name
		}
		if id.Picture != "" {
			existing.AvatarURL = id.Picture
		}
		existing.LastLoginAt = now
		if err := s.store.UpdateUser(ctx, *existing); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	u := model.User{
		ID:          id.UID,
		Email:       id.Email,
		DisplayName: id.Name,
		AvatarURL:   id.Picture,
		Active:      true,
		CreatedAt:   now,
		LastLoginAt: now,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, false, err
	}
	return &u, true, nil
}

// Get returns the account record for uid.
func (s *Service) Get(ctx context.Context, uid string) (*model.User, error) {
	u, err := s.store.GetUser(ctx, uid)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	return u, err
}

// UpdateProfile applies the supplied display name and avatar fields.
func (s *Service) UpdateProfile(ctx context.Context, uid string, displayName, avatarURL *string) (*model.User, error) {
	u, err := s.store.GetUser(ctx, uid)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}

	if displayName != nil {
		u.DisplayName = *displayName
	}
	if avatarURL != nil {
		u.AvatarURL = *avatarURL
	}

	if err := s.store.UpdateUser(ctx, *u); err != nil {
		return nil, err
	}
	return u, nil
}
