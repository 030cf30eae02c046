// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jokester Contributors

//go:build integration

package integration_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/jokester/jokester/internal/auth"
	authpg "github.com/jokester/jokester/internal/auth/postgres"
	"github.com/jokester/jokester/internal/session"
)

func newAuthService() *auth.Service {
	sessions, err := session.NewStore(session.Config{
		Secrets: []string{"integration-secret"},
		MaxAge:  time.Hour,
	})
	Expect(err).NotTo(HaveOccurred())
	hasher, err := auth.NewBcryptHasher(4)
	Expect(err).NotTo(HaveOccurred())
	svc, err := auth.NewService(authpg.NewUserRepository(env.pool), sessions, hasher, slog.New(slog.DiscardHandler))
	Expect(err).NotTo(HaveOccurred())
	return svc
}

// requestWith builds a request carrying the cookie set by rd.
func requestWith(rd *auth.Redirect) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/jokes", nil)
	if rd != nil && rd.Cookie != nil {
		req.AddCookie(rd.Cookie)
	}
	return req
}

var _ = Describe("Auth service", func() {
	var (
		ctx context.Context
		svc *auth.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		truncateAll(ctx)
		svc = newAuthService()
	})

	Describe("Register and Login", func() {
		It("logs in with the password given at registration", func() {
			profile, err := svc.Register(ctx, "kody", "twixrox")
			Expect(err).NotTo(HaveOccurred())
			Expect(profile.Username).To(Equal("kody"))

			user, err := svc.Login(ctx, "kody", "twixrox")
			Expect(err).NotTo(HaveOccurred())
			Expect(user).NotTo(BeNil())
			Expect(user.ID).To(Equal(profile.ID))
		})

		It("stores a bcrypt hash, never the password", func() {
			_, err := svc.Register(ctx, "kody", "twixrox")
			Expect(err).NotTo(HaveOccurred())

			var hash string
			err = env.pool.QueryRow(ctx, "SELECT password_hash FROM users WHERE username = $1", "kody").Scan(&hash)
			Expect(err).NotTo(HaveOccurred())
			Expect(hash).To(HavePrefix("$2a$04$"))
			Expect(hash).NotTo(ContainSubstring("twixrox"))
		})

		It("rejects a wrong password without an error", func() {
			_, err := svc.Register(ctx, "kody", "twixrox")
			Expect(err).NotTo(HaveOccurred())

			user, err := svc.Login(ctx, "kody", "wrong")
			Expect(err).NotTo(HaveOccurred())
			Expect(user).To(BeNil())
		})

		It("rejects an unknown username without an error", func() {
			user, err := svc.Login(ctx, "nobody", "twixrox")
			Expect(err).NotTo(HaveOccurred())
			Expect(user).To(BeNil())
		})

		It("refuses a second user with the same username", func() {
			_, err := svc.Register(ctx, "kody", "twixrox")
			Expect(err).NotTo(HaveOccurred())

			taken, err := svc.UsernameTaken(ctx, "kody")
			Expect(err).NotTo(HaveOccurred())
			Expect(taken).To(BeTrue())

			_, err = svc.Register(ctx, "kody", "other-password")
			Expect(err).To(MatchError(auth.ErrUsernameTaken))
		})

		It("treats usernames as case-sensitive", func() {
			_, err := svc.Register(ctx, "kody", "twixrox")
			Expect(err).NotTo(HaveOccurred())

			taken, err := svc.UsernameTaken(ctx, "Kody")
			Expect(err).NotTo(HaveOccurred())
			Expect(taken).To(BeFalse())
		})
	})

	Describe("Sessions", func() {
		It("resolves the session cookie to the stored user", func() {
			profile, err := svc.Register(ctx, "kody", "twixrox")
			Expect(err).NotTo(HaveOccurred())

			rd, err := svc.CreateUserSession(profile.ID.String(), "/jokes")
			Expect(err).NotTo(HaveOccurred())
			Expect(rd.Location).To(Equal("/jokes"))

			got, logout := svc.GetUser(requestWith(rd))
			Expect(logout).To(BeNil())
			Expect(got).NotTo(BeNil())
			Expect(got.Username).To(Equal("kody"))
		})

		It("returns no user once the account is gone", func() {
			profile, err := svc.Register(ctx, "kody", "twixrox")
			Expect(err).NotTo(HaveOccurred())
			rd, err := svc.CreateUserSession(profile.ID.String(), "/jokes")
			Expect(err).NotTo(HaveOccurred())

			truncateAll(ctx)

			got, logout := svc.GetUser(requestWith(rd))
			Expect(got).To(BeNil())
			Expect(logout).To(BeNil())
		})
	})
})
