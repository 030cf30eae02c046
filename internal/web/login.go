// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jokester Contributors

package web

import (
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/jokester/jokester/internal/auth"
	"github.com/jokester/jokester/internal/forms"
	"github.com/jokester/jokester/internal/observability"
)

// Form-level messages on the login page.
const (
	msgBadCredentials  = "Username/Password combination is incorrect"
	msgLoginTypeBad    = "Login type invalid"
	msgRegisterFailed  = "Something went wrong trying to create a new user."
	msgUsernameTakenFn = "User with username %s already exists"
)

func (h *Handler) loginForm(r *http.Request) actionResult {
	return render(pageLogin, &pageData{
		Title: "Login",
		Form: formState{
			LoginType:  string(forms.LoginTypeLogin),
			RedirectTo: r.URL.Query().Get("redirectTo"),
		},
	})
}

func (h *Handler) login(r *http.Request) actionResult {
	data := &pageData{Title: "Login"}
	if err := r.ParseForm(); err != nil {
		return malformedLogin(r, data)
	}
	form, err := forms.ParseLoginForm(r.PostForm)
	if err != nil {
		return malformedLogin(r, data)
	}

	// The password is never echoed back.
	data.Form = formState{
		Fields:     map[string]string{"username": form.Username},
		LoginType:  string(form.LoginType),
		RedirectTo: form.RedirectTo,
	}
	if fe := form.Validate(); fe.Any() {
		data.Form.FieldErrors = fe
		return invalid(pageLogin, data)
	}

	redirectTo := h.redirects.Validate(form.RedirectTo)
	ctx := r.Context()

	switch form.LoginType {
	case forms.LoginTypeLogin:
		user, err := h.auth.Login(ctx, form.Username, form.Password)
		if err != nil {
			h.metrics.LoginAttemptsTotal.WithLabelValues(observability.OutcomeError).Inc()
			return failure(err)
		}
		if user == nil {
			h.metrics.LoginAttemptsTotal.WithLabelValues(observability.OutcomeInvalidCredentials).Inc()
			data.Form.FormError = msgBadCredentials
			return invalid(pageLogin, data)
		}
		h.metrics.LoginAttemptsTotal.WithLabelValues(observability.OutcomeSuccess).Inc()
		return h.startSession(user.ID.String(), redirectTo)

	case forms.LoginTypeRegister:
		taken, err := h.auth.UsernameTaken(ctx, form.Username)
		if err != nil {
			h.metrics.RegistrationsTotal.WithLabelValues(observability.OutcomeError).Inc()
			return failure(err)
		}
		if !taken {
			profile, err := h.auth.Register(ctx, form.Username, form.Password)
			switch {
			case err == nil:
				h.metrics.RegistrationsTotal.WithLabelValues(observability.OutcomeSuccess).Inc()
				return h.startSession(profile.ID.String(), redirectTo)
			case errors.Is(err, auth.ErrUsernameTaken):
				// Lost a race with a concurrent registration.
			default:
				h.metrics.RegistrationsTotal.WithLabelValues(observability.OutcomeError).Inc()
				h.logFailure(r, "register failed", err)
				data.Form.FormError = msgRegisterFailed
				return invalid(pageLogin, data)
			}
		}
		h.metrics.RegistrationsTotal.WithLabelValues(observability.OutcomeUsernameTaken).Inc()
		data.Form.FormError = fmt.Sprintf(msgUsernameTakenFn, form.Username)
		return invalid(pageLogin, data)

	default:
		data.Form.FormError = msgLoginTypeBad
		return invalid(pageLogin, data)
	}
}

// malformedLogin re-renders the login page keeping whatever return path the
// request still carries.
func malformedLogin(r *http.Request, data *pageData) actionResult {
	redirectTo := r.URL.Query().Get("redirectTo")
	if v := r.PostForm["redirectTo"]; len(v) == 1 && utf8.ValidString(v[0]) {
		redirectTo = v[0]
	}
	data.Form = formState{
		FormError:  forms.MalformedMessage,
		LoginType:  string(forms.LoginTypeLogin),
		RedirectTo: redirectTo,
	}
	return invalid(pageLogin, data)
}

func (h *Handler) startSession(userID, redirectTo string) actionResult {
	rd, err := h.auth.CreateUserSession(userID, redirectTo)
	if err != nil {
		return failure(err)
	}
	return redirect(rd)
}

func (h *Handler) logout(r *http.Request) actionResult {
	h.metrics.SessionsDestroyedTotal.Inc()
	return redirect(h.auth.Logout(r))
}

func (h *Handler) logoutGet(*http.Request) actionResult {
	return redirectPath("/")
}
