// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jokester Contributors

package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/samber/oops"

	"github.com/jokester/jokester/internal/auth"
	"github.com/jokester/jokester/internal/forms"
	"github.com/jokester/jokester/internal/jokes"
	"github.com/jokester/jokester/internal/observability"
)

// DefaultRequestTimeout bounds each request when Deps.RequestTimeout is zero.
const DefaultRequestTimeout = 10 * time.Second

// Deps are the collaborators of a Handler.
type Deps struct {
	Auth           *auth.Service
	Jokes          *jokes.Service
	Redirects      forms.RedirectPolicy
	Metrics        *observability.Metrics
	Logger         *slog.Logger
	RequestTimeout time.Duration
}

// Handler serves the Jokester pages.
type Handler struct {
	auth      *auth.Service
	jokes     *jokes.Service
	redirects forms.RedirectPolicy
	metrics   *observability.Metrics
	logger    *slog.Logger
	renderer  *Renderer
	handler   http.Handler
}

// NewHandler builds the routes and middleware.
func NewHandler(deps Deps) (*Handler, error) {
	if deps.Auth == nil {
		return nil, oops.Code("WEB_INVALID_CONFIG").Errorf("auth service is required")
	}
	if deps.Jokes == nil {
		return nil, oops.Code("WEB_INVALID_CONFIG").Errorf("jokes service is required")
	}
	if deps.Metrics == nil {
		return nil, oops.Code("WEB_INVALID_CONFIG").Errorf("metrics are required")
	}
	if deps.Logger == nil {
		return nil, oops.Code("WEB_INVALID_CONFIG").Errorf("logger is required")
	}
	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = DefaultRequestTimeout
	}
	if deps.Redirects.Default == "" && len(deps.Redirects.Allowed) == 0 {
		deps.Redirects = forms.DefaultRedirectPolicy()
	}

	renderer, err := NewRenderer(deps.Logger)
	if err != nil {
		return nil, err
	}

	h := &Handler{
		auth:      deps.Auth,
		jokes:     deps.Jokes,
		redirects: deps.Redirects,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		renderer:  renderer,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.serve(h.index))
	mux.HandleFunc("GET /jokes", h.serve(h.randomJoke))
	mux.HandleFunc("GET /jokes/new", h.serve(h.newJokeForm))
	mux.HandleFunc("POST /jokes/new", h.serve(h.createJoke))
	mux.HandleFunc("GET /jokes/{id}", h.serve(h.showJoke))
	mux.HandleFunc("GET /login", h.serve(h.loginForm))
	mux.HandleFunc("POST /login", h.serve(h.login))
	mux.HandleFunc("POST /logout", h.serve(h.logout))
	mux.HandleFunc("GET /logout", h.serve(h.logoutGet))

	h.handler = chain(mux,
		recoverPanics(deps.Logger),
		requestID,
		timeout(deps.RequestTimeout),
		instrument(deps.Metrics, deps.Logger),
	)
	return h, nil
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}
