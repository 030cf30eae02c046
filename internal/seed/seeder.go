// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jokester Contributors

package seed

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"

	"github.com/jokester/jokester/internal/auth"
	"github.com/jokester/jokester/internal/jokes"
)

// Report summarises a seeding run.
type Report struct {
	UsersCreated int
	UsersSkipped int
	JokesCreated int
}

// Seeder writes a seed File through the repositories.
type Seeder struct {
	users  auth.UserRepository
	jokes  jokes.Repository
	logger *slog.Logger
}

// NewSeeder creates a Seeder.
func NewSeeder(users auth.UserRepository, jokeRepo jokes.Repository, logger *slog.Logger) (*Seeder, error) {
	if users == nil {
		return nil, oops.Code("SEED_INVALID_CONFIG").Errorf("users repository is required")
	}
	if jokeRepo == nil {
		return nil, oops.Code("SEED_INVALID_CONFIG").Errorf("jokes repository is required")
	}
	if logger == nil {
		return nil, oops.Code("SEED_INVALID_CONFIG").Errorf("logger is required")
	}
	return &Seeder{users: users, jokes: jokeRepo, logger: logger}, nil
}

// Run creates every user in f along with their jokes. A user that already
// exists is skipped together with its jokes, so running the same file twice
// changes nothing.
func (s *Seeder) Run(ctx context.Context, f *File) (Report, error) {
	var report Report
	for _, su := range f.Users {
		user, err := auth.NewUser(su.Username, su.PasswordHash)
		if err != nil {
			return report, oops.Code("SEED_FAILED").With("username", su.Username).Wrap(err)
		}

		if err := s.users.Create(ctx, user); err != nil {
			if errors.Is(err, auth.ErrUsernameTaken) {
				report.UsersSkipped++
				s.checkExisting(ctx, su)
				continue
			}
			return report, oops.Code("SEED_FAILED").
				With("operation", "create user").
				With("username", su.Username).
				Wrap(err)
		}
		report.UsersCreated++
		s.logger.InfoContext(ctx, "seeded user", "user_id", user.ID.String(), "username", user.Username)

		for _, sj := range su.Jokes {
			joke, err := jokes.NewJoke(user.ID, sj.Name, sj.Content)
			if err != nil {
				return report, oops.Code("SEED_FAILED").With("joke", sj.Name).Wrap(err)
			}
			if err := s.jokes.Create(ctx, joke); err != nil {
				return report, oops.Code("SEED_FAILED").
					With("operation", "create joke").
					With("joke", sj.Name).
					Wrap(err)
			}
			report.JokesCreated++
		}
	}
	return report, nil
}

// checkExisting warns when a skipped user differs from the seed file.
func (s *Seeder) checkExisting(ctx context.Context, su User) {
	existing, err := s.users.GetByUsername(ctx, su.Username)
	if err != nil {
		s.logger.WarnContext(ctx, "could not verify existing seed user", "username", su.Username, "error", err)
		return
	}
	if existing.PasswordHash != su.PasswordHash {
		s.logger.WarnContext(ctx, "seed user password differs from seed file", "username", su.Username)
	}
	s.logger.InfoContext(ctx, "seed user already exists, skipping", "username", su.Username)
}
