// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jokester Contributors

// Package jokes holds the joke catalogue.
package jokes

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// ErrNotFound is returned when a joke does not exist.
var ErrNotFound = errors.New("joke not found")

// ErrNoJokes is returned by Random when the catalogue is empty.
var ErrNoJokes = errors.New("there are no jokes to display")

// Joke is a named joke owned by the user who submitted it.
type Joke struct {
	ID         ulid.ULID
	JokesterID ulid.ULID
	Name       string
	Content    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewJoke creates a Joke with a fresh ID.
func NewJoke(jokesterID ulid.ULID, name, content string) (*Joke, error) {
	if jokesterID.IsZero() {
		return nil, oops.Code("JOKE_INVALID").Errorf("jokester id is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, oops.Code("JOKE_INVALID").Errorf("name cannot be empty")
	}
	if strings.TrimSpace(content) == "" {
		return nil, oops.Code("JOKE_INVALID").Errorf("content cannot be empty")
	}

	now := time.Now().UTC()
	return &Joke{
		ID:         ulid.Make(),
		JokesterID: jokesterID,
		Name:       name,
		Content:    content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Page selects a window of a listing.
type Page struct {
	Skip int
	Take int
}

// Repository manages joke persistence.
type Repository interface {
	// Count returns the number of jokes.
	Count(ctx context.Context) (int, error)

	// List returns jokes oldest first, windowed by page.
	List(ctx context.Context, page Page) ([]*Joke, error)

	// Create stores a new joke.
	Create(ctx context.Context, joke *Joke) error

	// GetByID returns the joke with id, or ErrNotFound.
	GetByID(ctx context.Context, id ulid.ULID) (*Joke, error)
}
