// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"alumnihub/internal/apperr"
	"alumnihub/internal/response"
)

// Recoverer catches panics in downstream handlers, logs the stack trace,
// and answers with an INTERNAL error envelope.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				slog.Error("panic recovered",
					"error", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				response.Status(w, http.StatusInternalServerError, apperr.CodeInternal, "internal server error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
