// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jokester Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/jokester/jokester/internal/auth"
	authpg "github.com/jokester/jokester/internal/auth/postgres"
	"github.com/jokester/jokester/internal/jokes"
	jokespg "github.com/jokester/jokester/internal/jokes/postgres"
	"github.com/jokester/jokester/internal/seed"
)

// Default timeout for the seed command.
const defaultSeedTimeout = 30 * time.Second

// seedConfig holds configuration for the seed command.
type seedConfig struct {
	file    string
	timeout time.Duration
}

// seedRepos opens the repositories the seeder writes to. The returned
// function releases them.
type seedRepos func(ctx context.Context, dsn string, logger *slog.Logger) (auth.UserRepository, jokes.Repository, func(), error)

func postgresSeedRepos(ctx context.Context, dsn string, logger *slog.Logger) (auth.UserRepository, jokes.Repository, func(), error) {
	pool, err := openPool(ctx, dsn, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return authpg.NewUserRepository(pool), jokespg.NewJokeRepository(pool), pool.Close, nil
}

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd(opts *globalOptions) *cobra.Command {
	return newSeedCmd(opts, postgresSeedRepos)
}

func newSeedCmd(opts *globalOptions, repos seedRepos) *cobra.Command {
	cfg := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load users and jokes from a seed file",
		Long: `Creates the users and jokes in a seed file, the built-in one by default.
This command is idempotent - a user that already exists is skipped along
with its jokes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd, opts, cfg, repos)
		},
	}
	cmd.PersistentFlags().StringVar(&cfg.file, "file", "", "seed file (default: built-in data)")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultSeedTimeout, "timeout for database operations (e.g., 30s, 1m)")

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate a seed file without touching the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := loadSeedFile(cfg.file)
			if err != nil {
				return err
			}
			cmd.Printf("Seed file valid: %d user(s), %d joke(s)\n", len(f.Users), f.JokeCount())
			return reportCostMismatches(cmd, opts, f)
		},
	})

	return cmd
}

func runSeed(cmd *cobra.Command, opts *globalOptions, cfg *seedConfig, repos seedRepos) error {
	appCfg, err := opts.loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := appCfg.ValidateDatabase(); err != nil {
		return err
	}
	logger := newLogger(appCfg)

	f, err := loadSeedFile(cfg.file)
	if err != nil {
		return err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, cfg.timeout)
	defer cancel()

	users, jokeRepo, release, err := repos(ctx, appCfg.DatabaseURL, logger)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer release()

	seeder, err := seed.NewSeeder(users, jokeRepo, logger)
	if err != nil {
		return err
	}
	report, err := seeder.Run(ctx, f)
	if err != nil {
		return err
	}

	cmd.Printf("Seeding complete: %d user(s) created, %d skipped, %d joke(s) created\n",
		report.UsersCreated, report.UsersSkipped, report.JokesCreated)
	return nil
}

// reportCostMismatches notes seeded hashes whose bcrypt cost differs from
// the configured one. They still verify; new passwords use the configured cost.
func reportCostMismatches(cmd *cobra.Command, opts *globalOptions, f *seed.File) error {
	appCfg, err := opts.loadConfig(cmd)
	if err != nil {
		return err
	}
	hasher, err := auth.NewBcryptHasher(appCfg.BcryptCost)
	if err != nil {
		return err
	}
	if users := f.CostMismatches(hasher.Cost()); len(users) > 0 {
		cmd.Printf("Note: %d user(s) hashed at a cost other than %d: %s\n",
			len(users), hasher.Cost(), strings.Join(users, ", "))
	}
	return nil
}

func loadSeedFile(path string) (*seed.File, error) {
	if path == "" {
		return seed.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.Code("SEED_READ_FAILED").With("path", path).Wrap(err)
	}
	f, err := seed.Parse(data)
	if err != nil {
		return nil, oops.With("path", path).Wrap(err)
	}
	return f, nil
}
