// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package response writes the JSON envelopes shared by the API handlers
// and middleware.
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"alumnihub/internal/apperr"
	"alumnihub/internal/metrics"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool          `json:"success"`
	Data    any           `json:"data,omitempty"`
	Error   *apperr.Error `json:"error,omitempty"`
}

// JSON writes data wrapped in an Envelope with the given status.
func JSON(w http.ResponseWriter, status int, data any) {
	write(w, status, Envelope{Success: status < 400, Data: data})
}

// OK writes a 200 response.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Created writes a 201 response.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, data)
}

// NoContent writes a 204 response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error renders err. Coded domain errors keep their code and details and
// map to their kind's status; anything else is logged and reported as
// INTERNAL without leaking the cause.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	e, ok := apperr.As(err)
	if !ok {
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		e = apperr.New(apperr.CodeInternal, "internal server error")
	}

	metrics.DomainErrors.WithLabelValues(string(e.Code)).Inc()
	write(w, e.HTTPStatus(), Envelope{Error: e})
}

// Status writes an error envelope with an explicit status, for failures
// raised outside the engines (rate limiting, panics).
func Status(w http.ResponseWriter, status int, code apperr.Code, msg string) {
	write(w, status, Envelope{Error: apperr.New(code, msg)})
}

func write(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
