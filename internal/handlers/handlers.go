// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the JSON API handlers for the alumni portal.
// Handlers are grouped by concern (categories, forum, rankings, admin)
// and receive their dependencies through the handler struct.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"alumnihub/internal/apperr"
	"alumnihub/internal/cache"
)

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 1 << 20

// InvalidationLog records which write purged which cached views.
type InvalidationLog interface {
	Log(ctx context.Context, entityType string, entityID uuid.UUID, action string)
}

// invalidator purges cached views after a write and logs the event.
// Both fields may be nil.
type invalidator struct {
	views *cache.ViewCache
	log   InvalidationLog
}

func (inv invalidator) invalidate(ctx context.Context, entityType string, id uuid.UUID, action string, prefixes ...string) {
	for _, p := range prefixes {
		inv.views.InvalidatePrefix(ctx, p)
	}
	if inv.log != nil {
		inv.log.Log(ctx, entityType, id, action)
	}
}

// decodeJSON reads a single JSON object from the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperr.Validation("request body is required")
		case errors.As(err, &maxErr):
			return apperr.Validation("request body is too large")
		default:
			return apperr.Validation("invalid JSON body: " + err.Error())
		}
	}
	if dec.More() {
		return apperr.Validation("request body must contain a single JSON object")
	}
	return nil
}

// pathID parses the named URL parameter as a UUID.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.ValidationWithDetails("validation failed",
			map[string]string{name: "must be a valid UUID"})
	}
	return id, nil
}

// queryInt reads an integer query parameter, returning def when absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.ValidationWithDetails("validation failed",
			map[string]string{name: "must be an integer"})
	}
	return n, nil
}

// queryBool reads a boolean query parameter, returning false when absent.
func queryBool(r *http.Request, name string) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperr.ValidationWithDetails("validation failed",
			map[string]string{name: "must be a boolean"})
	}
	return b, nil
}

// optionalID distinguishes an absent JSON field from an explicit null.
type optionalID struct {
	Set bool
	ID  *uuid.UUID
}

// UnmarshalJSON implements json.Unmarshaler. It is only called when the
// field is present, so Set records presence.
func (o *optionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.ID = nil
		return nil
	}
	var id uuid.UUID
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	o.ID = &id
	return nil
}
