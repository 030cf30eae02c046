// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jokester Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/jokester/jokester/internal/auth"
)

// UserRepository implements auth.UserRepository using PostgreSQL.
type UserRepository struct {
	pool poolIface
}

var _ auth.UserRepository = (*UserRepository)(nil)

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool poolIface) *UserRepository {
	return &UserRepository{pool: pool}
}

const selectUser = `
		SELECT id, username, password_hash, created_at, updated_at
		FROM users`

// Create stores a new user. The unique constraint on username decides
// concurrent registrations; the loser gets auth.ErrUsernameTaken.
func (r *UserRepository) Create(ctx context.Context, user *auth.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, username, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`,
		user.ID.String(),
		user.Username,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("USER_USERNAME_TAKEN").
				With("username", user.Username).
				Wrap(auth.ErrUsernameTaken)
		}
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			With("username", user.Username).
			Wrap(err)
	}
	return nil
}

// GetByUsername retrieves a user by exact username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	row := r.pool.QueryRow(ctx, selectUser+`
		WHERE username = $1
	`, username)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("username", username).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_USERNAME_FAILED").
			With("operation", "get user by username").
			With("username", username).
			Wrap(err)
	}
	return user, nil
}

// FindFirst returns the oldest user matching filter.
func (r *UserRepository) FindFirst(ctx context.Context, filter auth.UserFilter) (*auth.User, error) {
	if filter.Username == "" {
		return nil, oops.Code("USER_FILTER_INVALID").Errorf("filter must name a username")
	}

	row := r.pool.QueryRow(ctx, selectUser+`
		WHERE username = $1
		ORDER BY created_at, id
		LIMIT 1
	`, filter.Username)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("username", filter.Username).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_FIND_FIRST_FAILED").
			With("operation", "find first user").
			With("username", filter.Username).
			Wrap(err)
	}
	return user, nil
}

// GetProfile retrieves the id and username of a user.
func (r *UserRepository) GetProfile(ctx context.Context, id ulid.ULID) (*auth.Profile, error) {
	var (
		idStr   string
		profile auth.Profile
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, username FROM users WHERE id = $1
	`, id.String()).Scan(&idStr, &profile.Username)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_PROFILE_FAILED").
			With("operation", "get user profile").
			With("id", id.String()).
			Wrap(err)
	}

	profile.ID, err = ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("USER_GET_PROFILE_FAILED").
			With("operation", "parse user id").
			With("id", idStr).
			Wrap(err)
	}
	return &profile, nil
}

func scanUser(row pgx.Row) (*auth.User, error) {
	var (
		idStr string
		user  auth.User
	)
	if err := row.Scan(&idStr, &user.Username, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, err
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.With("operation", "parse user id").With("id", idStr).Wrap(err)
	}
	user.ID = id
	return &user, nil
}
