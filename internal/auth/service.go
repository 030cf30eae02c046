// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jokester Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jokester/jokester/internal/session"
	"github.com/jokester/jokester/pkg/errutil"
)

// UserIDKey is the session key holding the logged-in user's ID.
const UserIDKey = "userId"

var tracer = otel.Tracer("github.com/jokester/jokester/internal/auth")

// Service provides authentication operations.
type Service struct {
	users    UserRepository
	sessions *session.Store
	hasher   PasswordHasher
	logger   *slog.Logger

	// dummyHash is compared against when a username does not exist so that
	// a miss costs the same as a wrong password.
	dummyHash string
}

// NewService creates a new Service.
func NewService(users UserRepository, sessions *session.Store, hasher PasswordHasher, logger *slog.Logger) (*Service, error) {
	if users == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("users repository is required")
	}
	if sessions == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("session store is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("password hasher is required")
	}
	if logger == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("logger is required")
	}

	dummy, err := hasher.Hash(ulid.Make().String())
	if err != nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").
			With("operation", "prepare dummy hash").
			Wrap(err)
	}

	return &Service{
		users:     users,
		sessions:  sessions,
		hasher:    hasher,
		logger:    logger,
		dummyHash: dummy,
	}, nil
}

// Login verifies a username and password.
// Returns (nil, nil) when the user does not exist or the password does not
// match; the two cases are indistinguishable to the caller. An error means
// the lookup itself failed.
func (s *Service) Login(ctx context.Context, username, password string) (*User, error) {
	ctx, span := tracer.Start(ctx, "auth.Login")
	defer span.End()

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.hasher.Compare(password, s.dummyHash)
			span.SetAttributes(attribute.String("auth.outcome", "invalid"))
			return nil, nil
		}
		span.SetStatus(codes.Error, "user lookup failed")
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "get user by username").
			Wrap(err)
	}

	if !s.hasher.Compare(password, user.PasswordHash) {
		span.SetAttributes(attribute.String("auth.outcome", "invalid"))
		return nil, nil
	}

	span.SetAttributes(attribute.String("auth.outcome", "success"))
	return &User{
		ID:        user.ID,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}, nil
}

// Register creates a user with a freshly hashed password.
// Returns an error wrapping ErrUsernameTaken when the username exists.
func (s *Service) Register(ctx context.Context, username, password string) (*Profile, error) {
	ctx, span := tracer.Start(ctx, "auth.Register")
	defer span.End()

	hash, err := s.hasher.Hash(password)
	if err != nil {
		span.SetStatus(codes.Error, "hash failed")
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	user, err := NewUser(username, hash)
	if err != nil {
		span.SetStatus(codes.Error, "invalid user")
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "build user").
			Wrap(err)
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			span.SetAttributes(attribute.String("auth.outcome", "taken"))
			return nil, oops.Code("AUTH_USERNAME_TAKEN").
				With("username", username).
				Wrap(err)
		}
		span.SetStatus(codes.Error, "create failed")
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "create user").
			Wrap(err)
	}

	span.SetAttributes(attribute.String("auth.outcome", "success"))
	return user.Profile(), nil
}

// UsernameTaken reports whether a user with username already exists.
// Register does not depend on this check; the repository's uniqueness
// guarantee is what rejects a duplicate.
func (s *Service) UsernameTaken(ctx context.Context, username string) (bool, error) {
	_, err := s.users.FindFirst(ctx, UserFilter{Username: username})
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return false, oops.Code("AUTH_LOOKUP_FAILED").
		With("operation", "find user by username").
		Wrap(err)
}

// CreateUserSession starts a session for userID and redirects to redirectTo.
// Callers are responsible for checking redirectTo against the allow-list.
func (s *Service) CreateUserSession(userID, redirectTo string) (*Redirect, error) {
	sess := s.sessions.New()
	sess.Set(UserIDKey, userID)

	cookie, err := s.sessions.Commit(sess)
	if err != nil {
		return nil, oops.Code("AUTH_SESSION_CREATE_FAILED").
			With("user_id", userID).
			Wrap(err)
	}
	return &Redirect{Location: redirectTo, Cookie: cookie}, nil
}

// Logout destroys the session carried by r and redirects to the login page.
func (s *Service) Logout(r *http.Request) *Redirect {
	return &Redirect{
		Location: LoginPath,
		Cookie:   s.sessions.Destroy(s.sessions.LoadRequest(r)),
	}
}

// GetUserID returns the user ID stored in the request's session.
func (s *Service) GetUserID(r *http.Request) (string, bool) {
	id, ok := s.sessions.LoadRequest(r).GetString(UserIDKey)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// RequireUserID returns the session's user ID, or a redirect to the login
// page that returns to redirectTo. An empty redirectTo means the current
// path, kept in its escaped form so it still names the same resource.
func (s *Service) RequireUserID(r *http.Request, redirectTo string) (string, *Redirect) {
	if id, ok := s.GetUserID(r); ok {
		return id, nil
	}
	if redirectTo == "" {
		redirectTo = r.URL.EscapedPath()
	}
	return "", &Redirect{Location: LoginRedirectPath(redirectTo)}
}

// GetUser resolves the request's session to a profile.
// Returns (nil, nil) for anonymous visitors and for sessions whose user no
// longer exists. If the lookup fails the session is treated as unusable and
// the logout redirect is returned instead.
func (s *Service) GetUser(r *http.Request) (*Profile, *Redirect) {
	ctx, span := tracer.Start(r.Context(), "auth.GetUser")
	defer span.End()

	raw, ok := s.GetUserID(r)
	if !ok {
		return nil, nil
	}

	id, err := ulid.Parse(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "session carries malformed user id, ending session", "user_id", raw)
		return nil, s.Logout(r)
	}

	profile, err := s.users.GetProfile(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		span.SetStatus(codes.Error, "profile lookup failed")
		errutil.LogErrorContext(ctx, s.logger, "user lookup failed, ending session", err)
		return nil, s.Logout(r)
	}
	return profile, nil
}
