// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"

	"alumnihub/internal/apperr"
	"alumnihub/internal/response"
	"alumnihub/internal/store"
)

// Cache log listing bounds.
const (
	defaultCacheLogLimit = 50
	maxCacheLogLimit     = 500
)

// CacheLogReader lists recent view cache invalidations.
type CacheLogReader interface {
	RecentEntries(ctx context.Context, limit int) ([]store.CacheLogEntry, error)
}

// Admin groups the operator-only handlers.
type Admin struct {
	cacheLog CacheLogReader
}

// NewAdmin creates the admin handler group.
func NewAdmin(cacheLog CacheLogReader) *Admin {
	return &Admin{cacheLog: cacheLog}
}

// CacheLog handles GET /api/admin/cache-log?limit=.
func (a *Admin) CacheLog(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultCacheLogLimit)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	if limit < 1 || limit > maxCacheLogLimit {
		response.Error(w, r, apperr.ValidationWithDetails("validation failed",
			map[string]string{"limit": "must be between 1 and 500"}))
		return
	}

	entries, err := a.cacheLog.RecentEntries(r.Context(), limit)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, entries)
}
