// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jokester Contributors

//go:build integration

package integration_test

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/jokester/jokester/internal/jokes"
	jokespg "github.com/jokester/jokester/internal/jokes/postgres"
)

var _ = Describe("Jokes service", func() {
	var (
		ctx      context.Context
		jokester ulid.ULID
		svc      *jokes.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		truncateAll(ctx)

		profile, err := newAuthService().Register(ctx, "kody", "twixrox")
		Expect(err).NotTo(HaveOccurred())
		jokester = profile.ID

		svc, err = jokes.NewService(jokespg.NewJokeRepository(env.pool), jokes.WithListLimit(3))
		Expect(err).NotTo(HaveOccurred())
	})

	create := func(n int) []*jokes.Joke {
		out := make([]*jokes.Joke, 0, n)
		for i := range n {
			joke, err := svc.Create(ctx, jokester, fmt.Sprintf("Joke %d", i), fmt.Sprintf("Punchline number %d", i))
			Expect(err).NotTo(HaveOccurred())
			out = append(out, joke)
		}
		return out
	}

	It("reports an empty catalogue", func() {
		_, err := svc.Random(ctx)
		Expect(err).To(MatchError(jokes.ErrNoJokes))

		latest, err := svc.Latest(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(latest).To(BeEmpty())
	})

	It("round-trips a created joke", func() {
		created := create(1)[0]

		got, err := svc.Get(ctx, created.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Name).To(Equal("Joke 0"))
		Expect(got.Content).To(Equal("Punchline number 0"))
		Expect(got.JokesterID).To(Equal(jokester))
	})

	It("returns ErrNotFound for an unknown id", func() {
		_, err := svc.Get(ctx, ulid.Make())
		Expect(err).To(MatchError(jokes.ErrNotFound))
	})

	It("lists the newest jokes first, up to the limit", func() {
		created := create(5)

		latest, err := svc.Latest(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(latest).To(HaveLen(3))
		Expect(latest[0].ID).To(Equal(created[4].ID))
		Expect(latest[2].ID).To(Equal(created[2].ID))
	})

	It("picks random jokes from the stored set", func() {
		created := create(4)
		ids := make([]ulid.ULID, 0, len(created))
		for _, j := range created {
			ids = append(ids, j.ID)
		}

		for range 10 {
			joke, err := svc.Random(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(ContainElement(joke.ID))
		}
	})

	It("rejects a joke for an unknown jokester", func() {
		_, err := svc.Create(ctx, ulid.Make(), "Orphan", "Nobody owns this one")
		Expect(err).To(HaveOccurred())
	})
})
