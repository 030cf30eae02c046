// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jokester Contributors

package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/jokester/jokester/internal/auth"
	"github.com/jokester/jokester/pkg/errutil"
)

type resultKind int

const (
	resultRender resultKind = iota
	resultRedirect
	resultInvalid
	resultError
)

// actionResult is the outcome of a route action.
type actionResult struct {
	kind     resultKind
	status   int
	page     string
	data     *pageData
	redirect *auth.Redirect
	err      error
}

// action handles a request and reports what to send back.
type action func(r *http.Request) actionResult

func render(page string, data *pageData) actionResult {
	return actionResult{kind: resultRender, status: http.StatusOK, page: page, data: data}
}

// renderStatus renders page with a non-200 status, such as a 404 or 401
// page that is still a normal outcome.
func renderStatus(status int, page string, data *pageData) actionResult {
	return actionResult{kind: resultRender, status: status, page: page, data: data}
}

func redirect(rd *auth.Redirect) actionResult {
	return actionResult{kind: resultRedirect, redirect: rd}
}

func redirectPath(location string) actionResult {
	return redirect(&auth.Redirect{Location: location})
}

// invalid re-renders a form page with a 400.
func invalid(page string, data *pageData) actionResult {
	return actionResult{kind: resultInvalid, status: http.StatusBadRequest, page: page, data: data}
}

func failure(err error) actionResult {
	return actionResult{kind: resultError, err: err}
}

// serve adapts an action to an http.HandlerFunc.
func (h *Handler) serve(fn action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.write(w, r, fn(r))
	}
}

func (h *Handler) write(w http.ResponseWriter, r *http.Request, res actionResult) {
	switch res.kind {
	case resultRedirect:
		res.redirect.Write(w, r)
	case resultRender, resultInvalid:
		h.renderer.Render(w, r, res.status, res.page, res.data)
	case resultError:
		status := http.StatusInternalServerError
		msg := "Something unexpected went wrong. Sorry about that."
		if errors.Is(res.err, context.DeadlineExceeded) {
			status = http.StatusServiceUnavailable
			msg = "That took too long. Please try again."
		}
		attrs := append(errutil.Attrs(res.err), "method", r.Method, "path", r.URL.Path)
		h.logger.ErrorContext(r.Context(), "request failed", attrs...)
		h.renderer.Render(w, r, status, pageError, &pageData{Title: "Error", Message: msg})
	}
}

// logFailure logs err without turning the response into an error page.
func (h *Handler) logFailure(r *http.Request, msg string, err error) {
	errutil.LogErrorContext(r.Context(), h.logger, msg, err)
}
