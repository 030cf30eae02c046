// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jokester Contributors

package forms

import (
	"net/url"

	"github.com/samber/oops"
)

// JokeForm is the submitted new-joke form.
type JokeForm struct {
	Name    string
	Content string
}

// ParseJokeForm extracts the joke form. Both fields must appear exactly once.
func ParseJokeForm(values url.Values) (JokeForm, error) {
	name, okName := single(values, "name")
	content, okContent := single(values, "content")
	if !okName || !okContent {
		return JokeForm{}, oops.Code("FORM_MALFORMED").With("form", "joke").Wrap(ErrMalformed)
	}
	return JokeForm{Name: name, Content: content}, nil
}

// Validate checks field lengths.
func (f JokeForm) Validate() FieldErrors {
	fe := FieldErrors{}
	fe.add("name", ValidateJokeName(f.Name))
	fe.add("content", ValidateJokeContent(f.Content))
	return fe
}
