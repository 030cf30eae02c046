// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jokester Contributors

// Package seed loads users and jokes from a YAML seed file.
package seed

import (
	"bytes"
	_ "embed"
	"errors"
	"io"

	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/jokester/jokester/internal/forms"
)

//go:embed data/seed.yaml
var defaultData []byte

// File is a seed file.
type File struct {
	Users []User `json:"users" yaml:"users" jsonschema:"minItems=1"`
}

// User is a seeded account. PasswordHash is stored as given, so seed files
// never contain plaintext passwords.
type User struct {
	Username     string `json:"username" yaml:"username" jsonschema:"minLength=3"`
	PasswordHash string `json:"passwordHash" yaml:"passwordHash" jsonschema:"minLength=60,maxLength=60"`
	Jokes        []Joke `json:"jokes,omitempty" yaml:"jokes,omitempty"`
}

// Joke is a seeded joke owned by the enclosing User.
type Joke struct {
	Name    string `json:"name" yaml:"name" jsonschema:"minLength=3"`
	Content string `json:"content" yaml:"content" jsonschema:"minLength=10"`
}

// DefaultData returns the embedded seed file.
func DefaultData() []byte {
	return bytes.Clone(defaultData)
}

// Default parses the embedded seed file.
func Default() (*File, error) {
	return Parse(defaultData)
}

// Parse validates data against the seed schema and decodes it.
func Parse(data []byte) (*File, error) {
	if err := ValidateSchema(data); err != nil {
		return nil, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, oops.Code("SEED_INVALID").With("operation", "decode").Wrap(err)
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks the rules the schema cannot express.
func (f *File) Validate() error {
	seen := make(map[string]bool, len(f.Users))
	for i, u := range f.Users {
		if msg := forms.ValidateUsername(u.Username); msg != "" {
			return oops.Code("SEED_INVALID").With("user", i).Errorf("%s", msg)
		}
		if seen[u.Username] {
			return oops.Code("SEED_INVALID").With("user", i).Errorf("duplicate username %q", u.Username)
		}
		seen[u.Username] = true

		if _, err := bcrypt.Cost([]byte(u.PasswordHash)); err != nil {
			return oops.Code("SEED_INVALID").
				With("user", i).
				With("username", u.Username).
				Wrapf(err, "passwordHash is not a bcrypt hash")
		}

		for j, joke := range u.Jokes {
			msg := forms.ValidateJokeName(joke.Name)
			if msg == "" {
				msg = forms.ValidateJokeContent(joke.Content)
			}
			if msg != "" {
				return oops.Code("SEED_INVALID").
					With("user", i).
					With("joke", j).
					Errorf("%s", msg)
			}
		}
	}
	return nil
}

// CostMismatches returns the usernames whose password hash was made with a
// bcrypt cost other than cost. Call it on a validated File.
func (f *File) CostMismatches(cost int) []string {
	var out []string
	for _, u := range f.Users {
		if c, err := bcrypt.Cost([]byte(u.PasswordHash)); err == nil && c != cost {
			out = append(out, u.Username)
		}
	}
	return out
}

// JokeCount returns the number of jokes across all users.
func (f *File) JokeCount() int {
	n := 0
	for _, u := range f.Users {
		n += len(u.Jokes)
	}
	return n
}
