// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jokester Contributors

// Package auth provides authentication and session identity for Jokester.
//
// # Domain Types
//
// Users should be created with NewUser, which validates the username and
// password hash before a repository ever sees them. Profile is the public
// projection of a User and never carries the password hash.
//
// # Services
//
// Service coordinates the user repository, the signed cookie session store
// and the password hasher:
//   - Login and Register verify or create credentials
//   - CreateUserSession and Logout issue and destroy session cookies
//   - GetUserID, RequireUserID and GetUser resolve the caller of a request
//
// Operations that end a request with a navigation return a *Redirect
// instead of writing to the response, so handlers decide how to answer.
package auth
