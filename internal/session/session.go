// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jokester Contributors

package session

// Session is a small key/value map carried in the session cookie. Values must
// survive a JSON round trip; strings are the only type Jokester stores.
type Session struct {
	data map[string]any
}

// Get returns the value stored under key.
func (s *Session) Get(key string) (any, bool) {
	v, ok := s.data[key]
	return v, ok
}

// GetString returns the value under key when it is a string.
func (s *Session) GetString(key string) (string, bool) {
	v, ok := s.data[key].(string)
	return v, ok
}

// Set stores value under key.
func (s *Session) Set(key string, value any) {
	s.data[key] = value
}

// Len returns the number of keys in the session.
func (s *Session) Len() int {
	return len(s.data)
}
