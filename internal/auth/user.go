// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jokester Contributors

package auth

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// User is a registered account. PasswordHash never leaves the auth layer.
type User struct {
	ID           ulid.ULID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile is the public projection of a User.
type Profile struct {
	ID       ulid.ULID
	Username string
}

// Profile returns the public projection of the user.
func (u *User) Profile() *Profile {
	return &Profile{ID: u.ID, Username: u.Username}
}

// NewUser creates a User with a fresh ID after validating its fields.
// Length rules for user input are enforced by the forms package; NewUser
// only rejects values no repository should ever store.
func NewUser(username, passwordHash string) (*User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, oops.Code("USER_INVALID").Errorf("username cannot be empty")
	}
	if passwordHash == "" {
		return nil, oops.Code("USER_INVALID").
			With("username", username).
			Errorf("password hash cannot be empty")
	}

	now := time.Now().UTC()
	return &User{
		ID:           ulid.Make(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// UserFilter narrows FindFirst. Username is matched exactly.
type UserFilter struct {
	Username string
}

// UserRepository manages user persistence.
type UserRepository interface {
	// Create stores a new user. Returns ErrUsernameTaken if the username exists.
	Create(ctx context.Context, user *User) error

	// GetByUsername returns the user with the exact username, or ErrNotFound.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// FindFirst returns the first user matching filter, or ErrNotFound.
	FindFirst(ctx context.Context, filter UserFilter) (*User, error)

	// GetProfile returns the public profile for id, or ErrNotFound.
	GetProfile(ctx context.Context, id ulid.ULID) (*Profile, error)
}
