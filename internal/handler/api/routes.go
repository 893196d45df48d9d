// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the API router, to be mounted at /api behind
// middleware.AccessGate.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	// Mutating requests go through CSRF; reads are left alone.
	r.Use(optional(h.csrf))

	r.Route("/auth", func(r chi.Router) {
		if h.login != nil {
			r.With(h.login.Middleware()).Post("/login", h.Login)
		} else {
			r.Post("/login", h.Login)
		}
		r.With(h.publicLimit).Post("/register", h.Register)
		r.Post("/logout", h.Logout)
		r.Get("/session", h.Session)
	})

	r.Route("/news", func(r chi.Router) {
		r.Get("/", h.ListNews)
		r.Post("/", h.CreateNews)
		r.Get("/{id}", h.GetNews)
		r.Put("/{id}", h.UpdateNews)
		r.Delete("/{id}", h.DeleteNews)
	})

	r.Route("/reports", func(r chi.Router) {
		r.Get("/", h.ListReports)
		r.Post("/", h.CreateReport)
		r.Get("/{id}", h.GetReport)
		r.Put("/{id}", h.UpdateReport)
		r.Delete("/{id}", h.DeleteReport)
	})

	r.Route("/gallery", func(r chi.Router) {
		r.Get("/", h.ListAlbums)
		r.Post("/", h.CreateAlbum)
		r.Get("/{id}", h.GetAlbum)
		r.Put("/{id}", h.UpdateAlbum)
		r.Delete("/{id}", h.DeleteAlbum)
	})

	r.Route("/board-members", func(r chi.Router) {
		r.Get("/", h.ListBoardMembers)
		r.Post("/", h.CreateBoardMember)
		r.Get("/{id}", h.GetBoardMember)
		r.Put("/{id}", h.UpdateBoardMember)
		r.Delete("/{id}", h.DeleteBoardMember)
	})

	r.Route("/bank-accounts", func(r chi.Router) {
		r.Get("/", h.ListBankAccounts)
		r.Post("/", h.CreateBankAccount)
		r.Get("/{id}", h.GetBankAccount)
		r.Put("/{id}", h.UpdateBankAccount)
		r.Delete("/{id}", h.DeleteBankAccount)
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.ListUsers)
		r.Post("/", h.CreateUser)
		r.Get("/{id}", h.GetUser)
		r.Put("/{id}", h.UpdateUser)
		r.Delete("/{id}", h.DeleteUser)
	})

	r.Get("/settings", h.GetSettings)
	r.Put("/settings", h.UpdateSettings)

	r.Route("/contact", func(r chi.Router) {
		r.Get("/", h.ListMessages)
		r.With(h.publicLimit).Post("/", h.SubmitMessage)
		r.Put("/", h.MarkMessagesRead)
		r.Delete("/", h.DeleteMessages)
	})

	r.Post("/upload", h.Upload)
	r.Get("/events", h.ListEvents)
	r.Get("/stats", h.Stats)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteNotFound(w, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
	})

	return r
}

// publicLimit applies the public POST rate limiter when one is configured.
func (h *Handler) publicLimit(next http.Handler) http.Handler {
	if h.limiter == nil {
		return next
	}
	return h.limiter.Middleware()(next)
}

func optional(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if mw == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return mw
}
