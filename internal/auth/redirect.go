// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jokester Contributors

package auth

import (
	"net/http"
	"net/url"
)

// LoginPath is where unauthenticated visitors are sent.
const LoginPath = "/login"

// Redirect is a navigation outcome produced by the auth layer. It replaces
// the request with a 302 to Location and optionally sets a cookie.
type Redirect struct {
	Location string
	Cookie   *http.Cookie
}

// Write sends the redirect.
func (rd *Redirect) Write(w http.ResponseWriter, r *http.Request) {
	if rd.Cookie != nil {
		http.SetCookie(w, rd.Cookie)
	}
	http.Redirect(w, r, rd.Location, http.StatusFound)
}

// LoginRedirectPath returns the login page URL that returns to target after
// a successful login.
func LoginRedirectPath(target string) string {
	return LoginPath + "?" + url.Values{"redirectTo": {target}}.Encode()
}
