// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jokester Contributors

// Package session implements a cookie-backed session store.
//
// Session data lives entirely in the cookie as an HS256-signed token. The
// first configured secret signs new cookies; every configured secret is
// accepted when reading, which allows secrets to be rotated without logging
// everybody out. A cookie that is missing, expired, or fails verification
// loads as an empty session.
package session

import (
	"maps"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// Defaults applied by NewStore when the Config leaves a field empty.
const (
	DefaultCookieName = "JOKE__session"
	DefaultPath       = "/"
	DefaultMaxAge     = 30 * 24 * time.Hour
)

// ErrSecretRequired is returned by NewStore when no signing secret is configured.
var ErrSecretRequired = oops.Code("SESSION_SECRET_REQUIRED").Errorf("SESSION_SECRET must be set")

// Config describes the session cookie.
type Config struct {
	// Name of the cookie.
	Name string
	// Secrets used to verify cookies. Secrets[0] signs new cookies.
	Secrets []string
	// Secure restricts the cookie to HTTPS. Enabled in production.
	Secure bool
	// Path scope of the cookie.
	Path string
	// MaxAge is the cookie lifetime.
	MaxAge time.Duration
	// Now overrides the clock. Defaults to time.Now.
	Now func() time.Time
}

// Store issues and reads session cookies. It holds no per-session state and
// is safe for concurrent use.
type Store struct {
	cfg  Config
	keys [][]byte
}

// NewStore creates a Store from cfg.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Secrets) == 0 || cfg.Secrets[0] == "" {
		return nil, ErrSecretRequired
	}
	if cfg.Name == "" {
		cfg.Name = DefaultCookieName
	}
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = DefaultMaxAge
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	keys := make([][]byte, 0, len(cfg.Secrets))
	for _, secret := range cfg.Secrets {
		if secret == "" {
			continue
		}
		keys = append(keys, []byte(secret))
	}

	return &Store{cfg: cfg, keys: keys}, nil
}

// CookieName returns the name of the session cookie.
func (st *Store) CookieName() string {
	return st.cfg.Name
}

// New returns an empty session.
func (st *Store) New() *Session {
	return &Session{data: make(map[string]any)}
}

// Load reads the session from a raw Cookie request header. It never fails:
// anything unreadable yields an empty session.
func (st *Store) Load(cookieHeader string) *Session {
	if cookieHeader == "" {
		return st.New()
	}
	cookies, err := http.ParseCookie(cookieHeader)
	if err != nil {
		return st.New()
	}
	for _, c := range cookies {
		if c.Name == st.cfg.Name {
			return st.decode(c.Value)
		}
	}
	return st.New()
}

// LoadRequest reads the session carried by r.
func (st *Store) LoadRequest(r *http.Request) *Session {
	c, err := r.Cookie(st.cfg.Name)
	if err != nil {
		return st.New()
	}
	return st.decode(c.Value)
}

// Commit signs the session and returns the cookie that carries it.
func (st *Store) Commit(s *Session) (*http.Cookie, error) {
	now := st.cfg.Now()
	expires := now.Add(st.cfg.MaxAge)

	c := claims{
		Data: maps.Clone(s.data),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	value, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(st.keys[0])
	if err != nil {
		return nil, oops.Code("SESSION_COMMIT_FAILED").
			With("cookie", st.cfg.Name).
			Wrap(err)
	}

	cookie := st.cookie(value)
	cookie.MaxAge = int(st.cfg.MaxAge / time.Second)
	cookie.Expires = expires.UTC()
	return cookie, nil
}

// Destroy returns a cookie that clears the session in the browser. The
// result only depends on the store configuration, so destroying twice is
// the same as destroying once.
func (st *Store) Destroy(_ *Session) *http.Cookie {
	cookie := st.cookie("")
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0).UTC()
	return cookie
}

func (st *Store) cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     st.cfg.Name,
		Value:    value,
		Path:     st.cfg.Path,
		HttpOnly: true,
		Secure:   st.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

type claims struct {
	Data map[string]any `json:"data"`
	jwt.RegisteredClaims
}

func (st *Store) decode(value string) *Session {
	if value == "" {
		return st.New()
	}
	for _, key := range st.keys {
		var c claims
		_, err := jwt.ParseWithClaims(value, &c,
			func(*jwt.Token) (any, error) { return key, nil },
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(st.cfg.Now),
		)
		if err != nil {
			continue
		}
		if c.Data == nil {
			c.Data = make(map[string]any)
		}
		return &Session{data: c.Data}
	}
	return st.New()
}
