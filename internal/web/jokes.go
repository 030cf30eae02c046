// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jokester Contributors

package web

import (
	"errors"
	"net/http"

	"github.com/oklog/ulid/v2"

	"github.com/jokester/jokester/internal/forms"
	"github.com/jokester/jokester/internal/jokes"
)

// Messages shown on joke pages.
const (
	msgNoJokes      = "There are no jokes to display."
	msgJokeNotFound = "What a joke! Not found."
	msgLoginToJoke  = "You must be logged in to create a joke."
)

func (h *Handler) index(r *http.Request) actionResult {
	user, rd := h.auth.GetUser(r)
	if rd != nil {
		return redirect(rd)
	}
	return render(pageIndex, &pageData{User: user})
}

// jokesPage loads the layout data every joke page shares.
func (h *Handler) jokesPage(r *http.Request, title string) (*pageData, *actionResult) {
	user, rd := h.auth.GetUser(r)
	if rd != nil {
		res := redirect(rd)
		return nil, &res
	}
	latest, err := h.jokes.Latest(r.Context())
	if err != nil {
		res := failure(err)
		return nil, &res
	}
	return &pageData{Title: title, User: user, Latest: latest}, nil
}

func (h *Handler) randomJoke(r *http.Request) actionResult {
	data, res := h.jokesPage(r, "Jokes")
	if res != nil {
		return *res
	}

	joke, err := h.jokes.Random(r.Context())
	if err != nil {
		if errors.Is(err, jokes.ErrNoJokes) {
			data.Message = msgNoJokes
			return renderStatus(http.StatusNotFound, pageJokes, data)
		}
		return failure(err)
	}
	data.Joke = joke
	return render(pageJokes, data)
}

func (h *Handler) showJoke(r *http.Request) actionResult {
	data, res := h.jokesPage(r, "Joke")
	if res != nil {
		return *res
	}

	id, err := ulid.Parse(r.PathValue("id"))
	if err != nil {
		data.Message = msgJokeNotFound
		return renderStatus(http.StatusNotFound, pageJoke, data)
	}
	joke, err := h.jokes.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, jokes.ErrNotFound) {
			data.Message = msgJokeNotFound
			return renderStatus(http.StatusNotFound, pageJoke, data)
		}
		return failure(err)
	}
	data.Title = joke.Name
	data.Joke = joke
	return render(pageJoke, data)
}

func (h *Handler) newJokeForm(r *http.Request) actionResult {
	if _, ok := h.auth.GetUserID(r); !ok {
		return renderStatus(http.StatusUnauthorized, pageError, &pageData{
			Title:     "Unauthorized",
			Message:   msgLoginToJoke,
			LoginLink: true,
		})
	}
	data, res := h.jokesPage(r, "New joke")
	if res != nil {
		return *res
	}
	return render(pageNewJoke, data)
}

func (h *Handler) createJoke(r *http.Request) actionResult {
	userID, rd := h.auth.RequireUserID(r, "")
	if rd != nil {
		return redirect(rd)
	}
	jokesterID, err := ulid.Parse(userID)
	if err != nil {
		return redirect(h.auth.Logout(r))
	}

	data := &pageData{Title: "New joke"}
	if err := r.ParseForm(); err != nil {
		data.Form.FormError = forms.MalformedMessage
		return invalid(pageNewJoke, data)
	}
	form, err := forms.ParseJokeForm(r.PostForm)
	if err != nil {
		data.Form.FormError = forms.MalformedMessage
		return invalid(pageNewJoke, data)
	}

	data.Form.Fields = map[string]string{"name": form.Name, "content": form.Content}
	if fe := form.Validate(); fe.Any() {
		data.Form.FieldErrors = fe
		return invalid(pageNewJoke, data)
	}

	joke, err := h.jokes.Create(r.Context(), jokesterID, form.Name, form.Content)
	if err != nil {
		return failure(err)
	}
	h.metrics.JokesCreatedTotal.Inc()
	return redirectPath("/jokes/" + joke.ID.String())
}
