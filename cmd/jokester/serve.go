// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jokester Contributors

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/jokester/jokester/internal/auth"
	authpg "github.com/jokester/jokester/internal/auth/postgres"
	"github.com/jokester/jokester/internal/config"
	"github.com/jokester/jokester/internal/jokes"
	jokespg "github.com/jokester/jokester/internal/jokes/postgres"
	"github.com/jokester/jokester/internal/observability"
	"github.com/jokester/jokester/internal/session"
	"github.com/jokester/jokester/internal/store"
	"github.com/jokester/jokester/internal/web"
	"github.com/jokester/jokester/pkg/errutil"
)

const (
	shutdownTimeout  = 10 * time.Second
	readinessTimeout = time.Second
)

// Pool is the subset of *pgxpool.Pool the commands use.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// AutoMigrator applies pending migrations at startup.
type AutoMigrator interface {
	Up() error
	Close() error
}

// Server is implemented by web.Server and observability.Server.
type Server interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
}

// ServeDeps contains injectable dependencies for the serve command.
// Nil fields use their default implementations.
type ServeDeps struct {
	// PoolOpener connects to the database.
	// Default: store.Open
	PoolOpener func(ctx context.Context, dsn string, logger *slog.Logger) (Pool, error)

	// MigratorFactory creates the migrator used by --auto-migrate.
	// Default: store.NewMigrator
	MigratorFactory func(dsn string) (AutoMigrator, error)

	// WebServerFactory creates the site server.
	// Default: web.NewServer
	WebServerFactory func(addr string, handler http.Handler, logger *slog.Logger) Server

	// ObservabilityServerFactory creates the metrics and probe server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, gatherer prometheus.Gatherer, ready observability.ReadinessChecker, logger *slog.Logger) Server
}

func (d *ServeDeps) withDefaults() *ServeDeps {
	out := ServeDeps{}
	if d != nil {
		out = *d
	}
	if out.PoolOpener == nil {
		out.PoolOpener = openPool
	}
	if out.MigratorFactory == nil {
		out.MigratorFactory = func(dsn string) (AutoMigrator, error) {
			return store.NewMigrator(dsn)
		}
	}
	if out.WebServerFactory == nil {
		out.WebServerFactory = func(addr string, handler http.Handler, logger *slog.Logger) Server {
			return web.NewServer(addr, handler, logger)
		}
	}
	if out.ObservabilityServerFactory == nil {
		out.ObservabilityServerFactory = func(addr string, gatherer prometheus.Gatherer, ready observability.ReadinessChecker, logger *slog.Logger) Server {
			return observability.NewServer(addr, gatherer, ready, logger)
		}
	}
	return &out
}

func openPool(ctx context.Context, dsn string, logger *slog.Logger) (Pool, error) {
	opts := store.DefaultConnectOptions()
	opts.Logger = logger
	return store.Open(ctx, dsn, opts)
}

// NewServeCmd creates the serve subcommand.
func NewServeCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long: `Start the Jokester web server and, unless metrics-addr is empty, the
metrics and health probe server. SIGINT or SIGTERM drains in-flight
requests and exits.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cmd, cfg, nil)
		},
	}
}

func runServe(ctx context.Context, cmd *cobra.Command, cfg *config.Config, deps *ServeDeps) error {
	if ctx == nil {
		ctx = context.Background()
	}
	deps = deps.withDefaults()

	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := newLogger(cfg)

	pool, err := deps.PoolOpener(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return oops.With("operation", "connect to database").Wrap(err)
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if err := autoMigrate(deps, cfg.DatabaseURL, logger); err != nil {
			return err
		}
	}

	handler, reg, err := buildHandler(cfg, pool, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	webServer := deps.WebServerFactory(cfg.HTTPAddr, handler, logger)
	webErrCh, err := webServer.Start()
	if err != nil {
		return oops.With("operation", "start web server").Wrap(err)
	}
	go monitorServerErrors(ctx, cancel, webErrCh, "web", logger)

	var obsServer Server
	if cfg.MetricsAddr != "" {
		ready := func(ctx context.Context) error {
			return store.Ping(ctx, pool, readinessTimeout)
		}
		obsServer = deps.ObservabilityServerFactory(cfg.MetricsAddr, reg, ready, logger)
		obsErrCh, err := obsServer.Start()
		if err != nil {
			stopServer(webServer, "web", logger)
			return oops.With("operation", "start observability server").Wrap(err)
		}
		go monitorServerErrors(ctx, cancel, obsErrCh, "observability", logger)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Printf("Jokester listening on %s\n", webServer.Addr())
	logger.Info("jokester ready", "http_addr", webServer.Addr(), "env", cfg.Env)

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	stopServer(webServer, "web", logger)
	if obsServer != nil {
		stopServer(obsServer, "observability", logger)
	}
	logger.Info("shutdown complete")
	return nil
}

// buildHandler wires the services behind the web handler.
func buildHandler(cfg *config.Config, pool Pool, logger *slog.Logger) (http.Handler, *prometheus.Registry, error) {
	sessions, err := session.NewStore(session.Config{
		Name:    cfg.CookieName,
		Secrets: cfg.SessionSecrets(),
		Secure:  cfg.IsProduction(),
		MaxAge:  cfg.SessionMaxAge,
	})
	if err != nil {
		return nil, nil, err
	}

	hasher, err := auth.NewBcryptHasher(cfg.BcryptCost)
	if err != nil {
		return nil, nil, err
	}

	logger.Debug("auth configured", "cookie", sessions.CookieName(), "bcrypt_cost", hasher.Cost())

	authSvc, err := auth.NewService(authpg.NewUserRepository(pool), sessions, hasher, logger)
	if err != nil {
		return nil, nil, err
	}
	jokesSvc, err := jokes.NewService(jokespg.NewJokeRepository(pool))
	if err != nil {
		return nil, nil, err
	}

	reg := observability.NewRegistry()
	handler, err := web.NewHandler(web.Deps{
		Auth:           authSvc,
		Jokes:          jokesSvc,
		Redirects:      cfg.RedirectPolicy(),
		Metrics:        observability.NewMetrics(reg),
		Logger:         logger,
		RequestTimeout: cfg.RequestTimeout,
	})
	if err != nil {
		return nil, nil, err
	}
	return handler, reg, nil
}

func autoMigrate(deps *ServeDeps, dsn string, logger *slog.Logger) error {
	migrator, err := deps.MigratorFactory(dsn)
	if err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "create migrator").Wrap(err)
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			errutil.LogError(logger, "failed to close migrator", closeErr)
		}
	}()

	if err := migrator.Up(); err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "auto-migrate").Wrap(err)
	}
	logger.Info("database migrations applied")
	return nil
}

func stopServer(s Server, name string, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		logger.Warn("error stopping server", "server", name, "error", err)
	}
}

// monitorServerErrors cancels ctx when a server fails. It exits when the
// error channel closes or ctx is done.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, name string, logger *slog.Logger) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			errutil.LogError(logger, "server error, triggering shutdown", oops.With("server", name).Wrap(err))
			cancel()
		}
	case <-ctx.Done():
	}
}
