// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"alumnihub/internal/apperr"
	"alumnihub/internal/models"
	"alumnihub/internal/response"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// ActorKey is the context key for the resolved models.Actor.
	ActorKey contextKey = "actor"

	// ActorIDHeader carries the authenticated user id set by the gateway.
	ActorIDHeader = "X-Actor-ID"

	// ActorRoleHeader carries the user's role; "admin" grants moderation.
	ActorRoleHeader = "X-Actor-Role"
)

// LoadActor resolves the caller from the gateway identity headers and
// stores it in the request context. A missing or malformed id leaves the
// request anonymous; it never blocks on its own.
func LoadActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var actor models.Actor

		if raw := strings.TrimSpace(r.Header.Get(ActorIDHeader)); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				slog.Warn("ignoring malformed actor id", "value", raw, "path", r.URL.Path)
			} else {
				actor.ID = id
				actor.IsAdmin = strings.EqualFold(strings.TrimSpace(r.Header.Get(ActorRoleHeader)), "admin")
			}
		}

		ctx := context.WithValue(r.Context(), ActorKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ActorFromCtx returns the actor stored by LoadActor, or the anonymous
// actor if none was loaded.
func ActorFromCtx(ctx context.Context) models.Actor {
	actor, _ := ctx.Value(ActorKey).(models.Actor)
	return actor
}

// RequireActor rejects anonymous callers with 403.
// Must be applied after LoadActor in the middleware chain.
func RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ActorFromCtx(r.Context()).ID == uuid.Nil {
			response.Error(w, r, apperr.Forbidden("sign in required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects callers without the admin role with 403.
// Must be applied after LoadActor in the middleware chain.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := ActorFromCtx(r.Context())
		if actor.ID == uuid.Nil || !actor.IsAdmin {
			response.Error(w, r, apperr.Forbidden("admin role required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
