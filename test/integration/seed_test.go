// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jokester Contributors

//go:build integration

package integration_test

import (
	"context"
	"log/slog"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	authpg "github.com/jokester/jokester/internal/auth/postgres"
	jokespg "github.com/jokester/jokester/internal/jokes/postgres"
	"github.com/jokester/jokester/internal/seed"
)

var _ = Describe("Seeder", func() {
	var (
		ctx    context.Context
		seeder *seed.Seeder
		data   *seed.File
	)

	BeforeEach(func() {
		ctx = context.Background()
		truncateAll(ctx)

		var err error
		seeder, err = seed.NewSeeder(
			authpg.NewUserRepository(env.pool),
			jokespg.NewJokeRepository(env.pool),
			slog.New(slog.DiscardHandler),
		)
		Expect(err).NotTo(HaveOccurred())

		data, err = seed.Default()
		Expect(err).NotTo(HaveOccurred())
	})

	It("loads the default user and jokes", func() {
		report, err := seeder.Run(ctx, data)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.UsersCreated).To(Equal(1))
		Expect(report.JokesCreated).To(Equal(data.JokeCount()))

		var count int
		err = env.pool.QueryRow(ctx,
			"SELECT COUNT(*) FROM jokes j JOIN users u ON u.id = j.jokester_id WHERE u.username = $1",
			"kobe",
		).Scan(&count)
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(Equal(data.JokeCount()))
	})

	It("lets the seeded user log in with the documented password", func() {
		_, err := seeder.Run(ctx, data)
		Expect(err).NotTo(HaveOccurred())

		user, err := newAuthService().Login(ctx, "kobe", "twixrox")
		Expect(err).NotTo(HaveOccurred())
		Expect(user).NotTo(BeNil())
	})

	It("is idempotent", func() {
		_, err := seeder.Run(ctx, data)
		Expect(err).NotTo(HaveOccurred())

		report, err := seeder.Run(ctx, data)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.UsersCreated).To(Equal(0))
		Expect(report.UsersSkipped).To(Equal(1))
		Expect(report.JokesCreated).To(Equal(0))

		var count int
		err = env.pool.QueryRow(ctx, "SELECT COUNT(*) FROM jokes").Scan(&count)
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(Equal(data.JokeCount()))
	})
})
