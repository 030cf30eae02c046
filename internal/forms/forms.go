// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jokester Contributors

// Package forms parses and validates user-submitted forms.
//
// Parsing and validation are separate steps. Parse* fails closed with
// ErrMalformed when a required field is missing or repeated, or when a value
// is not valid UTF-8 or contains a NUL byte; the caller
// answers that with a form-level error. Validate returns field-level
// messages that are shown next to the inputs.
package forms

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// Minimum lengths, counted in characters. Leading and trailing whitespace
// does not count.
const (
	MinUsernameLength    = 3
	MinPasswordLength    = 6
	MinJokeNameLength    = 3
	MinJokeContentLength = 10
)

// MaxPasswordBytes is the longest password bcrypt accepts; longer ones fail
// with bcrypt.ErrPasswordTooLong.
const MaxPasswordBytes = 72

// MalformedMessage is the form-level error shown for a malformed submission.
const MalformedMessage = "Form not submitted correctly."

// ErrMalformed is returned when a form does not carry the expected fields.
var ErrMalformed = errors.New("form not submitted correctly")

// FieldErrors maps a field name to its error message.
type FieldErrors map[string]string

// Any reports whether at least one field failed validation.
func (fe FieldErrors) Any() bool {
	return len(fe) > 0
}

func (fe FieldErrors) add(field, msg string) {
	if msg != "" {
		fe[field] = msg
	}
}

// ValidateUsername returns an error message, or "" if username is acceptable.
func ValidateUsername(username string) string {
	if trimmedLen(username) < MinUsernameLength {
		return fmt.Sprintf("Usernames must be at least %d characters long", MinUsernameLength)
	}
	return ""
}

// ValidatePassword returns an error message, or "" if password is acceptable.
func ValidatePassword(password string) string {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return fmt.Sprintf("Passwords must be at least %d characters long", MinPasswordLength)
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Sprintf("Passwords must be at most %d bytes long", MaxPasswordBytes)
	}
	return ""
}

// ValidateJokeName returns an error message, or "" if name is acceptable.
func ValidateJokeName(name string) string {
	if trimmedLen(name) < MinJokeNameLength {
		return "That joke's name is too short"
	}
	return ""
}

// ValidateJokeContent returns an error message, or "" if content is acceptable.
func ValidateJokeContent(content string) string {
	if trimmedLen(content) < MinJokeContentLength {
		return "That joke is too short"
	}
	return ""
}

func trimmedLen(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}

// wellFormed reports whether v can be stored as text.
func wellFormed(v string) bool {
	return utf8.ValidString(v) && !strings.ContainsRune(v, 0)
}

// single returns the only value of key. Missing and repeated keys both fail.
func single(values url.Values, key string) (string, bool) {
	v, ok := values[key]
	if !ok || len(v) != 1 || !wellFormed(v[0]) {
		return "", false
	}
	return v[0], true
}

// optional returns the value of key, or "" when absent. Repeated keys fail.
func optional(values url.Values, key string) (string, bool) {
	v := values[key]
	switch len(v) {
	case 0:
		return "", true
	case 1:
		return v[0], wellFormed(v[0])
	default:
		return "", false
	}
}
