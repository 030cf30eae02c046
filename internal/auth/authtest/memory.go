// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jokester Contributors

// Package authtest provides in-memory and mock implementations of the auth
// repositories for tests.
package authtest

import (
	"context"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/jokester/jokester/internal/auth"
)

// MemoryUserRepository is an auth.UserRepository backed by a map.
// It enforces username uniqueness the same way the database does.
type MemoryUserRepository struct {
	mu    sync.Mutex
	users map[ulid.ULID]auth.User
	order []ulid.ULID
}

var _ auth.UserRepository = (*MemoryUserRepository)(nil)

// NewMemoryUserRepository creates an empty repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[ulid.ULID]auth.User)}
}

// Create stores a copy of user.
func (r *MemoryUserRepository) Create(_ context.Context, user *auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Username == user.Username {
			return oops.Code("USER_USERNAME_TAKEN").
				With("username", user.Username).
				Wrap(auth.ErrUsernameTaken)
		}
	}
	r.users[user.ID] = *user
	r.order = append(r.order, user.ID)
	return nil
}

// GetByUsername returns a copy of the user with username.
func (r *MemoryUserRepository) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	return r.FindFirst(ctx, auth.UserFilter{Username: username})
}

// FindFirst returns the earliest created user matching filter.
func (r *MemoryUserRepository) FindFirst(_ context.Context, filter auth.UserFilter) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.order {
		u := r.users[id]
		if u.Username == filter.Username {
			return &u, nil
		}
	}
	return nil, oops.Code("USER_NOT_FOUND").
		With("username", filter.Username).
		Wrap(auth.ErrNotFound)
}

// GetProfile returns the profile for id.
func (r *MemoryUserRepository) GetProfile(_ context.Context, id ulid.ULID) (*auth.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, oops.Code("USER_NOT_FOUND").
			With("user_id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return u.Profile(), nil
}

// Len returns the number of stored users.
func (r *MemoryUserRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}
