// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jokester Contributors

package forms

import "slices"

// DefaultRedirect is where a login lands when no acceptable target was given.
const DefaultRedirect = "/jokes"

// DefaultAllowedRedirects are the post-login destinations accepted out of the box.
var DefaultAllowedRedirects = []string{"/jokes", "/", "https://remix.run"}

// RedirectPolicy decides where a post-login redirect may go. Only exact
// matches are allowed so the login form cannot be turned into an open
// redirect.
type RedirectPolicy struct {
	Allowed []string
	Default string
}

// DefaultRedirectPolicy returns the stock allow-list.
func DefaultRedirectPolicy() RedirectPolicy {
	return RedirectPolicy{
		Allowed: slices.Clone(DefaultAllowedRedirects),
		Default: DefaultRedirect,
	}
}

// Validate returns candidate if it is allowed, and the default otherwise.
func (p RedirectPolicy) Validate(candidate string) string {
	if slices.Contains(p.Allowed, candidate) {
		return candidate
	}
	if p.Default == "" {
		return DefaultRedirect
	}
	return p.Default
}

// ValidateRedirectTarget applies the default policy to candidate.
func ValidateRedirectTarget(candidate string) string {
	return DefaultRedirectPolicy().Validate(candidate)
}
