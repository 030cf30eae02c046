// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jokester Contributors

// Package postgres provides the PostgreSQL jokes.Repository.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/jokester/jokester/internal/jokes"
)

type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// JokeRepository implements jokes.Repository using PostgreSQL.
type JokeRepository struct {
	pool poolIface
}

var _ jokes.Repository = (*JokeRepository)(nil)

// NewJokeRepository creates a new JokeRepository.
func NewJokeRepository(pool poolIface) *JokeRepository {
	return &JokeRepository{pool: pool}
}

// Count returns the number of jokes.
func (r *JokeRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM jokes`).Scan(&n); err != nil {
		return 0, oops.Code("JOKE_COUNT_FAILED").With("operation", "count jokes").Wrap(err)
	}
	return n, nil
}

// List returns jokes in creation order.
func (r *JokeRepository) List(ctx context.Context, page jokes.Page) ([]*jokes.Joke, error) {
	var limit any // NULL means no limit
	if page.Take > 0 {
		limit = page.Take
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, jokester_id, name, content, created_at, updated_at
		FROM jokes
		ORDER BY created_at, id
		LIMIT $1 OFFSET $2
	`, limit, max(page.Skip, 0))
	if err != nil {
		return nil, oops.Code("JOKE_LIST_FAILED").With("operation", "list jokes").Wrap(err)
	}
	defer rows.Close()

	var out []*jokes.Joke
	for rows.Next() {
		joke, err := scanJoke(rows)
		if err != nil {
			return nil, oops.Code("JOKE_LIST_FAILED").With("operation", "scan joke row").Wrap(err)
		}
		out = append(out, joke)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("JOKE_LIST_FAILED").With("operation", "iterate jokes").Wrap(err)
	}
	return out, nil
}

// Create stores a new joke.
func (r *JokeRepository) Create(ctx context.Context, joke *jokes.Joke) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO jokes (id, jokester_id, name, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		joke.ID.String(),
		joke.JokesterID.String(),
		joke.Name,
		joke.Content,
		joke.CreatedAt,
		joke.UpdatedAt,
	)
	if err != nil {
		return oops.Code("JOKE_CREATE_FAILED").
			With("operation", "insert joke").
			With("jokester_id", joke.JokesterID.String()).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves a joke by ID.
func (r *JokeRepository) GetByID(ctx context.Context, id ulid.ULID) (*jokes.Joke, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, jokester_id, name, content, created_at, updated_at
		FROM jokes
		WHERE id = $1
	`, id.String())

	joke, err := scanJoke(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("JOKE_NOT_FOUND").
			With("joke_id", id.String()).
			Wrap(jokes.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("JOKE_GET_FAILED").
			With("operation", "get joke by id").
			With("joke_id", id.String()).
			Wrap(err)
	}
	return joke, nil
}

func scanJoke(row pgx.Row) (*jokes.Joke, error) {
	var (
		idStr, jokesterStr string
		joke               jokes.Joke
	)
	if err := row.Scan(&idStr, &jokesterStr, &joke.Name, &joke.Content, &joke.CreatedAt, &joke.UpdatedAt); err != nil {
		return nil, err
	}

	var err error
	if joke.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.With("operation", "parse joke id").With("id", idStr).Wrap(err)
	}
	if joke.JokesterID, err = ulid.Parse(jokesterStr); err != nil {
		return nil, oops.With("operation", "parse jokester id").With("id", jokesterStr).Wrap(err)
	}
	return &joke, nil
}
