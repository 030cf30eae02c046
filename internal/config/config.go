// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jokester Contributors

// Package config loads Jokester settings.
//
// Sources, lowest precedence first: flag defaults, an optional YAML file,
// a .env file, the process environment, and flags set on the command line.
package config

import (
	"errors"
	"io/fs"
	"net/url"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"

	"github.com/jokester/jokester/internal/forms"
	"github.com/jokester/jokester/internal/session"
)

// EnvPrefix prefixes environment variables that map onto config keys,
// e.g. JOKESTER_HTTP_ADDR sets http-addr.
const EnvPrefix = "JOKESTER_"

// Deployment environments. Production enables secure cookies.
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// Config is the resolved application configuration.
type Config struct {
	Env                    string        `koanf:"env"`
	HTTPAddr               string        `koanf:"http-addr"`
	MetricsAddr            string        `koanf:"metrics-addr"`
	DatabaseURL            string        `koanf:"database-url"`
	SessionSecret          string        `koanf:"session-secret"`
	SessionPreviousSecrets []string      `koanf:"session-previous-secrets"`
	CookieName             string        `koanf:"cookie-name"`
	SessionMaxAge          time.Duration `koanf:"session-max-age"`
	BcryptCost             int           `koanf:"bcrypt-cost"`
	RequestTimeout         time.Duration `koanf:"request-timeout"`
	RedirectAllowList      []string      `koanf:"redirect-allow-list"`
	RedirectDefault        string        `koanf:"redirect-default"`
	LogFormat              string        `koanf:"log-format"`
	LogLevel               string        `koanf:"log-level"`
	AutoMigrate            bool          `koanf:"auto-migrate"`
}

// aliases maps conventional unprefixed variables onto config keys.
var aliases = map[string]string{
	"SESSION_SECRET": "session-secret",
	"DATABASE_URL":   "database-url",
}

// listKeys hold comma-separated values when set from the environment.
var listKeys = []string{"session-previous-secrets", "redirect-allow-list"}

// RegisterFlags declares every config key as a flag with its default.
func RegisterFlags(f *pflag.FlagSet) {
	f.String("env", Development, "deployment environment (production enables secure cookies)")
	f.String("http-addr", ":3000", "address for the web server")
	f.String("metrics-addr", "127.0.0.1:9100", "address for metrics and health probes (empty to disable)")
	f.String("database-url", "", "PostgreSQL connection URL")
	f.String("session-secret", "", "secret used to sign session cookies")
	f.StringSlice("session-previous-secrets", nil, "retired secrets still accepted when reading cookies")
	f.String("cookie-name", session.DefaultCookieName, "name of the session cookie")
	f.Duration("session-max-age", session.DefaultMaxAge, "session cookie lifetime")
	f.Int("bcrypt-cost", 6, "bcrypt work factor for new passwords")
	f.Duration("request-timeout", 10*time.Second, "per-request deadline")
	f.StringSlice("redirect-allow-list", forms.DefaultAllowedRedirects, "post-login redirect targets")
	f.String("redirect-default", forms.DefaultRedirect, "post-login target when the requested one is not allowed")
	f.String("log-format", "json", "log format (json or text)")
	f.String("log-level", "info", "log level (debug, info, warn, error)")
	f.Bool("auto-migrate", false, "apply database migrations on startup")
}

// Loader resolves a Config. The zero value reads the real environment.
type Loader struct {
	// ConfigFile is an optional YAML file.
	ConfigFile string
	// DotEnvFile is read if it exists. Variables already set in the
	// environment win over it.
	DotEnvFile string
	// Environ replaces os.Environ.
	Environ func() []string
}

// Load resolves the configuration from all sources. f must have been
// populated by RegisterFlags.
func (l Loader) Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if l.ConfigFile != "" {
		if err := k.Load(file.Provider(l.ConfigFile), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").
				With("operation", "read config file").
				With("path", l.ConfigFile).
				Wrap(err)
		}
	}

	environ, err := l.environ()
	if err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider(".", env.Opt{EnvironFunc: environ, TransformFunc: envKey}), nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("operation", "read environment").Wrap(err)
	}

	if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("operation", "read flags").Wrap(err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("operation", "decode config").Wrap(err)
	}
	return &cfg, nil
}

func (l Loader) environ() (func() []string, error) {
	base := l.Environ
	if base == nil {
		base = os.Environ
	}
	if l.DotEnvFile == "" {
		return base, nil
	}

	dotenv, err := godotenv.Read(l.DotEnvFile)
	if errors.Is(err, fs.ErrNotExist) {
		return base, nil
	}
	if err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").
			With("operation", "read dotenv").
			With("path", l.DotEnvFile).
			Wrap(err)
	}

	return func() []string {
		vars := make([]string, 0, len(dotenv))
		for k, v := range dotenv {
			vars = append(vars, k+"="+v)
		}
		// later entries overwrite earlier ones in the provider's map
		return append(vars, base()...)
	}, nil
}

// envKey maps JOKESTER_HTTP_ADDR to http-addr and known aliases to their
// keys. Anything else is dropped.
func envKey(name, value string) (string, any) {
	key, ok := aliases[name]
	if !ok {
		rest, found := strings.CutPrefix(name, EnvPrefix)
		if !found || rest == "" {
			return "", nil
		}
		key = strings.ReplaceAll(strings.ToLower(rest), "_", "-")
	}
	if slices.Contains(listKeys, key) {
		return key, splitList(value)
	}
	return key, value
}

func splitList(value string) []string {
	var out []string
	for part := range strings.SplitSeq(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction reports whether the app runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == Production
}

// SessionSecrets returns the signing secret followed by retired secrets.
func (c *Config) SessionSecrets() []string {
	return append([]string{c.SessionSecret}, c.SessionPreviousSecrets...)
}

// RedirectPolicy returns the post-login redirect policy.
func (c *Config) RedirectPolicy() forms.RedirectPolicy {
	return forms.RedirectPolicy{
		Allowed: slices.Clone(c.RedirectAllowList),
		Default: c.RedirectDefault,
	}
}

// ValidateDatabase checks the settings every database command needs.
func (c *Config) ValidateDatabase() error {
	if c.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").
			With("key", "database-url").
			Errorf("DATABASE_URL is required")
	}
	u, err := url.Parse(c.DatabaseURL)
	if err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
		return oops.Code("CONFIG_INVALID").
			With("key", "database-url").
			Errorf("DATABASE_URL must be a postgres:// URL")
	}
	return nil
}

// Validate checks everything the web server needs.
func (c *Config) Validate() error {
	switch c.Env {
	case Development, Production, Test:
	default:
		return oops.Code("CONFIG_INVALID").
			With("key", "env").
			Errorf("env must be development, production or test, got %q", c.Env)
	}
	if c.SessionSecret == "" {
		return oops.Code("CONFIG_INVALID").
			With("key", "session-secret").
			Errorf("SESSION_SECRET must be set")
	}
	if err := c.ValidateDatabase(); err != nil {
		return err
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return oops.Code("CONFIG_INVALID").
			With("key", "bcrypt-cost").
			Errorf("bcrypt-cost must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	}
	if c.SessionMaxAge <= 0 {
		return oops.Code("CONFIG_INVALID").With("key", "session-max-age").Errorf("session-max-age must be positive")
	}
	if c.RequestTimeout <= 0 {
		return oops.Code("CONFIG_INVALID").With("key", "request-timeout").Errorf("request-timeout must be positive")
	}
	if c.HTTPAddr == "" {
		return oops.Code("CONFIG_INVALID").With("key", "http-addr").Errorf("http-addr is required")
	}
	if c.RedirectDefault == "" {
		return oops.Code("CONFIG_INVALID").With("key", "redirect-default").Errorf("redirect-default is required")
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return oops.Code("CONFIG_INVALID").
			With("key", "log-format").
			Errorf("log-format must be json or text, got %q", c.LogFormat)
	}
	return nil
}
