// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jokester Contributors

// Package jokestest provides an in-memory jokes.Repository for tests.
package jokestest

import (
	"context"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/jokester/jokester/internal/jokes"
)

// MemoryRepository keeps jokes in insertion order.
type MemoryRepository struct {
	mu    sync.Mutex
	jokes []jokes.Joke

	// Err, when set, is returned by every method.
	Err error
}

var _ jokes.Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates a repository holding seed.
func NewMemoryRepository(seed ...*jokes.Joke) *MemoryRepository {
	r := &MemoryRepository{}
	for _, j := range seed {
		r.jokes = append(r.jokes, *j)
	}
	return r
}

func (r *MemoryRepository) Count(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	return len(r.jokes), nil
}

func (r *MemoryRepository) List(_ context.Context, page jokes.Page) ([]*jokes.Joke, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	start := min(max(page.Skip, 0), len(r.jokes))
	end := len(r.jokes)
	if page.Take > 0 {
		end = min(start+page.Take, end)
	}
	out := make([]*jokes.Joke, 0, end-start)
	for _, j := range r.jokes[start:end] {
		out = append(out, &j)
	}
	return out, nil
}

func (r *MemoryRepository) Create(_ context.Context, joke *jokes.Joke) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.jokes = append(r.jokes, *joke)
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id ulid.ULID) (*jokes.Joke, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, j := range r.jokes {
		if j.ID == id {
			return &j, nil
		}
	}
	return nil, oops.Code("JOKE_NOT_FOUND").With("joke_id", id.String()).Wrap(jokes.ErrNotFound)
}
