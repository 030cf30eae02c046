// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jokester Contributors

// Package web is the HTTP boundary of Jokester.
//
// Route handlers are actions: they return an actionResult describing what
// to send (a rendered page, a redirect, a validation failure or an error)
// and a single adapter writes it. Handlers never write to the response
// directly.
package web
