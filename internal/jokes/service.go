// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jokester Contributors

package jokes

import (
	"context"
	"math/rand/v2"
	"slices"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Service implements the joke use cases on top of a Repository.
type Service struct {
	repo  Repository
	intN  func(n int) int
	limit int
}

// Option configures a Service.
type Option func(*Service)

// WithRandom replaces the source used by Random. intN must return a value
// in [0, n).
func WithRandom(intN func(n int) int) Option {
	return func(s *Service) { s.intN = intN }
}

// WithListLimit caps the number of jokes returned by Latest.
func WithListLimit(n int) Option {
	return func(s *Service) { s.limit = n }
}

// NewService creates a Service.
func NewService(repo Repository, opts ...Option) (*Service, error) {
	if repo == nil {
		return nil, oops.Code("JOKES_INVALID_CONFIG").Errorf("jokes repository is required")
	}
	s := &Service{repo: repo, intN: rand.IntN, limit: 5}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Random returns a uniformly chosen joke, or ErrNoJokes.
func (s *Service) Random(ctx context.Context) (*Joke, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, oops.Code("JOKES_RANDOM_FAILED").With("operation", "count jokes").Wrap(err)
	}
	if count == 0 {
		return nil, oops.Code("JOKES_EMPTY").Wrap(ErrNoJokes)
	}

	skip := s.intN(count)
	list, err := s.repo.List(ctx, Page{Skip: skip, Take: 1})
	if err != nil {
		return nil, oops.Code("JOKES_RANDOM_FAILED").
			With("operation", "list jokes").
			With("skip", skip).
			Wrap(err)
	}
	// A joke deleted between Count and List leaves the window empty.
	if len(list) == 0 {
		return nil, oops.Code("JOKES_EMPTY").With("skip", skip).Wrap(ErrNoJokes)
	}
	return list[0], nil
}

// Latest returns the newest jokes, newest first.
func (s *Service) Latest(ctx context.Context) ([]*Joke, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, oops.Code("JOKES_LIST_FAILED").With("operation", "count jokes").Wrap(err)
	}
	skip := max(count-s.limit, 0)
	list, err := s.repo.List(ctx, Page{Skip: skip, Take: s.limit})
	if err != nil {
		return nil, oops.Code("JOKES_LIST_FAILED").With("operation", "list jokes").Wrap(err)
	}
	slices.Reverse(list)
	return list, nil
}

// Get returns the joke with id.
func (s *Service) Get(ctx context.Context, id ulid.ULID) (*Joke, error) {
	joke, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, oops.With("operation", "get joke").With("joke_id", id.String()).Wrap(err)
	}
	return joke, nil
}

// Create stores a joke submitted by jokesterID. Inputs are expected to have
// passed the form validators already.
func (s *Service) Create(ctx context.Context, jokesterID ulid.ULID, name, content string) (*Joke, error) {
	joke, err := NewJoke(jokesterID, name, content)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, joke); err != nil {
		return nil, oops.Code("JOKES_CREATE_FAILED").
			With("operation", "create joke").
			With("jokester_id", jokesterID.String()).
			Wrap(err)
	}
	return joke, nil
}
