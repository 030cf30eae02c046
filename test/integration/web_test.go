// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jokester Contributors

//go:build integration

package integration_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jokester/jokester/internal/forms"
	"github.com/jokester/jokester/internal/jokes"
	jokespg "github.com/jokester/jokester/internal/jokes/postgres"
	"github.com/jokester/jokester/internal/observability"
	"github.com/jokester/jokester/internal/web"
)

var _ = Describe("Web site", func() {
	var (
		ctx    context.Context
		server *httptest.Server
		client *http.Client
	)

	BeforeEach(func() {
		ctx = context.Background()
		truncateAll(ctx)

		jokesSvc, err := jokes.NewService(jokespg.NewJokeRepository(env.pool))
		Expect(err).NotTo(HaveOccurred())
		handler, err := web.NewHandler(web.Deps{
			Auth:      newAuthService(),
			Jokes:     jokesSvc,
			Redirects: forms.DefaultRedirectPolicy(),
			Metrics:   observability.NewMetrics(prometheus.NewRegistry()),
			Logger:    slog.New(slog.DiscardHandler),
		})
		Expect(err).NotTo(HaveOccurred())
		server = httptest.NewServer(handler)

		jar, err := cookiejar.New(nil)
		Expect(err).NotTo(HaveOccurred())
		client = &http.Client{Jar: jar}
	})

	AfterEach(func() {
		server.Close()
	})

	postForm := func(path string, form url.Values) (*http.Response, string) {
		resp, err := client.PostForm(server.URL+path, form)
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		return resp, string(body)
	}

	get := func(path string) (*http.Response, string) {
		resp, err := client.Get(server.URL + path)
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		return resp, string(body)
	}

	It("registers, posts a joke and logs out", func() {
		resp, body := postForm("/login", url.Values{
			"loginType":  {"register"},
			"username":   {"kody"},
			"password":   {"twixrox"},
			"redirectTo": {"/"},
		})
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(resp.Request.URL.Path).To(Equal("/"))
		Expect(body).To(ContainSubstring("Hi kody"))

		resp, body = postForm("/jokes/new", url.Values{
			"name":    {"Road worker"},
			"content": {"I never wanted to believe that my Dad was stealing from his job as a road worker."},
		})
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(resp.Request.URL.Path).To(HavePrefix("/jokes/"))
		Expect(body).To(ContainSubstring("Road worker"))

		resp, body = get("/jokes")
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring("Road worker"))

		resp, _ = postForm("/logout", url.Values{})
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(resp.Request.URL.Path).To(Equal("/login"))

		resp, body = get("/jokes/new")
		Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		Expect(body).To(ContainSubstring("You must be logged in to create a joke."))
	})

	It("refuses a duplicate registration", func() {
		form := url.Values{
			"loginType":  {"register"},
			"username":   {"kody"},
			"password":   {"twixrox"},
			"redirectTo": {"/"},
		}
		resp, _ := postForm("/login", form)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		resp, body := postForm("/login", form)
		Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		Expect(body).To(ContainSubstring("User with username kody already exists"))
	})

	It("rejects bad credentials", func() {
		resp, body := postForm("/login", url.Values{
			"loginType": {"login"},
			"username":  {"kody"},
			"password":  {"twixrox"},
		})
		Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		Expect(body).To(ContainSubstring("Username/Password combination is incorrect"))
		Expect(strings.Count(body, "twixrox")).To(BeZero())
	})
})
