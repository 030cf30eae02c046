// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jokester Contributors

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jokester/jokester/internal/config"
	"github.com/jokester/jokester/internal/logging"
	"github.com/jokester/jokester/internal/xdg"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configFile string
	envFile    string
}

// NewRootCmd creates the root command for the Jokester CLI.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "jokester",
		Short: "Jokester - share and read jokes",
		Long: `Jokester is a small web application for reading and submitting jokes.
Visitors register or log in with a username and password; sessions live in a
signed cookie and jokes are stored in PostgreSQL.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file path (default: $XDG_CONFIG_HOME/jokester/config.yaml if present)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before the environment")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewServeCmd(opts))
	cmd.AddCommand(NewMigrateCmd(opts))
	cmd.AddCommand(NewSeedCmd(opts))

	return cmd
}

// loadConfig resolves configuration for cmd. Validation is left to the
// caller since each subcommand needs a different subset.
func (o *globalOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := o.configFile
	if path == "" {
		path, _ = xdg.ConfigFile()
	}
	return config.Loader{ConfigFile: path, DotEnvFile: o.envFile}.Load(cmd.Flags())
}

// newLogger installs the process logger described by cfg.
func newLogger(cfg *config.Config) *slog.Logger {
	return logging.SetDefault(logging.Options{
		Service: "jokester",
		Version: version,
		Format:  cfg.LogFormat,
		Level:   cfg.LogLevel,
	})
}
