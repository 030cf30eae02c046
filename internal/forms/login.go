// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jokester Contributors

package forms

import (
	"net/url"

	"github.com/samber/oops"
)

// LoginType selects between signing in and creating an account.
type LoginType string

// Login types accepted by the login form.
const (
	LoginTypeLogin    LoginType = "login"
	LoginTypeRegister LoginType = "register"
)

// Valid reports whether t is a known login type.
func (t LoginType) Valid() bool {
	return t == LoginTypeLogin || t == LoginTypeRegister
}

// LoginForm is the submitted login or registration form.
type LoginForm struct {
	LoginType  LoginType
	Username   string
	Password   string
	RedirectTo string
}

// ParseLoginForm extracts the login form from submitted values. username and
// password must each appear exactly once. loginType and redirectTo are
// optional but may not repeat; an unknown loginType is reported by the
// caller, not here.
func ParseLoginForm(values url.Values) (LoginForm, error) {
	username, okUser := single(values, "username")
	password, okPass := single(values, "password")
	loginType, okType := optional(values, "loginType")
	redirectTo, okRedirect := optional(values, "redirectTo")
	if !okUser || !okPass || !okType || !okRedirect {
		return LoginForm{}, oops.Code("FORM_MALFORMED").With("form", "login").Wrap(ErrMalformed)
	}
	return LoginForm{
		LoginType:  LoginType(loginType),
		Username:   username,
		Password:   password,
		RedirectTo: redirectTo,
	}, nil
}

// Validate checks field lengths.
func (f LoginForm) Validate() FieldErrors {
	fe := FieldErrors{}
	fe.add("username", ValidateUsername(f.Username))
	fe.add("password", ValidatePassword(f.Password))
	return fe
}
