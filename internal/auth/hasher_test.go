// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jokester Contributors

package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jokester/jokester/internal/auth"
	"github.com/jokester/jokester/pkg/errutil"
)

// seedHash is the stored hash for the seeded "kobe" account.
const seedHash = "$2b$10$K7L1OJ45/4Y2nIvhRVpCe.FSmhDdWoXehVzJptJ/op0lSsvqNu/1u"

func newHasher(t *testing.T) *auth.BcryptHasher {
	t.Helper()
	h, err := auth.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func TestNewBcryptHasher(t *testing.T) {
	tests := []struct {
		name    string
		cost    int
		wantErr bool
	}{
		{name: "default cost", cost: auth.DefaultHashCost},
		{name: "minimum cost", cost: bcrypt.MinCost},
		{name: "maximum cost", cost: bcrypt.MaxCost},
		{name: "below minimum", cost: bcrypt.MinCost - 1, wantErr: true},
		{name: "above maximum", cost: bcrypt.MaxCost + 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := auth.NewBcryptHasher(tt.cost)
			if tt.wantErr {
				require.Error(t, err)
				errutil.AssertErrorCode(t, err, "AUTH_INVALID_HASH_COST")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.cost, h.Cost())
		})
	}
}

func TestBcryptHasher_Hash(t *testing.T) {
	hasher := newHasher(t)

	t.Run("produces bcrypt hash with configured cost", func(t *testing.T) {
		hash, err := hasher.Hash("password123")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$2a$04$"))
	})

	t.Run("same password produces different hashes (salt)", func(t *testing.T) {
		hash1, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		hash2, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		assert.NotEqual(t, hash1, hash2)
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, err := hasher.Hash("")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_EMPTY_PASSWORD")
	})
}

func TestBcryptHasher_Compare(t *testing.T) {
	hasher := newHasher(t)
	hash, err := hasher.Hash("correctpassword")
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
	}{
		{name: "correct password", password: "correctpassword", hash: hash, want: true},
		{name: "wrong password", password: "wrongpassword", hash: hash, want: false},
		{name: "empty password", password: "", hash: hash, want: false},
		{name: "malformed hash", password: "correctpassword", hash: "not-a-hash", want: false},
		{name: "empty hash", password: "correctpassword", hash: "", want: false},
		{name: "hash from another cost and variant", password: "twixrox", hash: seedHash, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hasher.Compare(tt.password, tt.hash))
		})
	}
}
