// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jokester Contributors

package web

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/samber/oops"

	"github.com/jokester/jokester/internal/auth"
	"github.com/jokester/jokester/internal/forms"
	"github.com/jokester/jokester/internal/jokes"
	"github.com/jokester/jokester/pkg/errutil"
)

//go:embed templates/*.html templates/pages/*.html
var templateFS embed.FS

// Page names.
const (
	pageIndex   = "index"
	pageJokes   = "jokes"
	pageJoke    = "joke"
	pageNewJoke = "new_joke"
	pageLogin   = "login"
	pageError   = "error"
)

// pageData is the view model shared by every page.
type pageData struct {
	Title string
	User  *auth.Profile

	Joke   *jokes.Joke
	Latest []*jokes.Joke

	// Message is a page-level notice such as "There are no jokes to display."
	Message   string
	LoginLink bool

	Form formState
}

// formState carries submitted values and errors back to a form.
type formState struct {
	Fields      map[string]string
	FieldErrors forms.FieldErrors
	FormError   string
	LoginType   string
	RedirectTo  string
}

// Renderer executes the embedded page templates inside the shared layout.
type Renderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

// NewRenderer parses the embedded templates.
func NewRenderer(logger *slog.Logger) (*Renderer, error) {
	layout, err := template.ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, oops.Code("WEB_TEMPLATE_INVALID").With("template", "layout").Wrap(err)
	}

	files, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, oops.Code("WEB_TEMPLATE_INVALID").Wrap(err)
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(files)), logger: logger}
	for _, file := range files {
		name := strings.TrimSuffix(path.Base(file), ".html")
		t, err := layout.Clone()
		if err != nil {
			return nil, oops.Code("WEB_TEMPLATE_INVALID").With("template", name).Wrap(err)
		}
		if _, err := t.ParseFS(templateFS, file); err != nil {
			return nil, oops.Code("WEB_TEMPLATE_INVALID").With("template", name).Wrap(err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render writes page with status. The page is executed into a buffer first
// so a template failure never leaves a half-written response.
func (rn *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page string, data *pageData) {
	t, ok := rn.pages[page]
	if !ok {
		rn.logger.ErrorContext(r.Context(), "unknown page template", "page", page)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if data == nil {
		data = &pageData{}
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		errutil.LogErrorContext(r.Context(), rn.logger, "render page failed",
			oops.Code("WEB_RENDER_FAILED").With("page", page).Wrap(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	//nolint:errcheck // client may disconnect
	buf.WriteTo(w)
}
