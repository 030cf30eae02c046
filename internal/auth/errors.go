// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jokester Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrUsernameTaken is returned when a user with the same username already exists.
var ErrUsernameTaken = errors.New("username already taken")
