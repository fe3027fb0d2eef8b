// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"

	"alumnihub/internal/cache"
	"alumnihub/internal/models"
	"alumnihub/internal/ranking"
	"alumnihub/internal/response"
)

// RankingService is the ranking surface the handlers call.
type RankingService interface {
	TrendingTopics(ctx context.Context, windowDays, limit int) ([]models.TrendingTopic, error)
	PopularTags(ctx context.Context, limit int) ([]models.PopularTag, error)
}

// Rankings serves the trending topic and popular tag listings. Both are
// read through the view cache.
type Rankings struct {
	svc   RankingService
	views *cache.ViewCache
}

// NewRankings creates the ranking handler group. views may be nil.
func NewRankings(svc RankingService, views *cache.ViewCache) *Rankings {
	return &Rankings{svc: svc, views: views}
}

// TrendingTopics handles GET /api/trending/topics?window_days=&limit=.
func (h *Rankings) TrendingTopics(w http.ResponseWriter, r *http.Request) {
	windowDays, err := queryInt(r, "window_days", ranking.DefaultWindowDays)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", ranking.DefaultLimit)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	ctx := r.Context()
	key := cache.TrendingKey(windowDays, limit)

	var topics []models.TrendingTopic
	if h.views.Get(ctx, key, &topics) {
		response.OK(w, topics)
		return
	}

	topics, err = h.svc.TrendingTopics(ctx, windowDays, limit)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	h.views.Set(ctx, key, topics)
	response.OK(w, topics)
}

// PopularTags handles GET /api/tags/popular?limit=.
func (h *Rankings) PopularTags(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", ranking.DefaultLimit)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	ctx := r.Context()
	key := cache.PopularTagsKey(limit)

	var tags []models.PopularTag
	if h.views.Get(ctx, key, &tags) {
		response.OK(w, tags)
		return
	}

	tags, err = h.svc.PopularTags(ctx, limit)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	h.views.Set(ctx, key, tags)
	response.OK(w, tags)
}
