// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// alumnihub API. Reads are public, forum writes need a signed-in actor,
// and category administration needs the admin role.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"alumnihub/internal/handlers"
	"alumnihub/internal/middleware"
)

// Handlers bundles the handler groups the router mounts.
type Handlers struct {
	Categories *handlers.Categories
	Forum      *handlers.Forum
	Rankings   *handlers.Rankings
	Admin      *handlers.Admin
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. limiter throttles mutating routes.
func New(limiter *middleware.RateLimiter, h Handlers) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", healthHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.LoadActor)

		// Public reads.
		r.Get("/categories", h.Categories.List)
		r.Get("/categories/tree", h.Categories.Tree)
		r.Get("/categories/slug/{slug}", h.Categories.GetBySlug)
		r.Get("/categories/{id}", h.Categories.Get)
		r.Get("/categories/{id}/breadcrumb", h.Categories.Breadcrumb)
		r.Get("/topics/{id}", h.Forum.GetTopic)
		r.Get("/topics/{id}/posts", h.Forum.ListPosts)
		r.Get("/trending/topics", h.Rankings.TrendingTopics)
		r.Get("/tags/popular", h.Rankings.PopularTags)

		// Forum writes, any signed-in actor. Ownership is checked by the
		// discussion engine.
		r.Group(func(r chi.Router) {
			r.Use(limiter.Middleware)
			r.Use(middleware.RequireActor)

			r.Post("/topics", h.Forum.CreateTopic)
			r.Post("/topics/{id}/close", h.Forum.ToggleClosed)
			r.Post("/topics/{id}/pin", h.Forum.TogglePinned)
			r.Post("/topics/{id}/posts", h.Forum.CreatePost)
			r.Patch("/posts/{id}", h.Forum.UpdatePost)
			r.Delete("/posts/{id}", h.Forum.DeletePost)
			r.Post("/posts/{id}/comments", h.Forum.AddComment)
		})

		// Category administration and operator views, admin only.
		r.Group(func(r chi.Router) {
			r.Use(limiter.Middleware)
			r.Use(middleware.RequireAdmin)

			r.Post("/categories", h.Categories.Create)
			r.Patch("/categories/{id}", h.Categories.Update)
			r.Put("/categories/{id}/parent", h.Categories.Reparent)
			r.Delete("/categories/{id}", h.Categories.Delete)
			r.Get("/admin/cache-log", h.Admin.CacheLog)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
