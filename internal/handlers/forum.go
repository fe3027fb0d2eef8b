// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"alumnihub/internal/cache"
	"alumnihub/internal/discussion"
	"alumnihub/internal/middleware"
	"alumnihub/internal/models"
	"alumnihub/internal/response"
	"alumnihub/internal/validation"
)

// DiscussionService is the forum surface the handlers call.
type DiscussionService interface {
	CreateTopic(ctx context.Context, actor models.Actor, in discussion.CreateTopicInput) (*models.ForumTopic, error)
	GetTopic(ctx context.Context, id uuid.UUID) (*models.ForumTopic, error)
	ToggleClosed(ctx context.Context, id uuid.UUID, actor models.Actor) (*models.ForumTopic, error)
	TogglePinned(ctx context.Context, id uuid.UUID, actor models.Actor) (*models.ForumTopic, error)
	CreatePost(ctx context.Context, topicID uuid.UUID, actor models.Actor, content string, parentID *uuid.UUID) (*models.ForumPost, error)
	UpdatePost(ctx context.Context, postID uuid.UUID, actor models.Actor, content string) (*models.ForumPost, error)
	DeletePost(ctx context.Context, postID uuid.UUID, actor models.Actor) error
	AddComment(ctx context.Context, postID uuid.UUID, actor models.Actor, content string) (*models.ForumComment, error)
	ListPosts(ctx context.Context, topicID uuid.UUID, mode models.ListMode, page, pageSize int) (*models.PostPage, error)
}

// Forum groups the topic, post, and comment handlers.
type Forum struct {
	svc DiscussionService
	inv invalidator
}

// NewForum creates the forum handler group. views and log may be nil.
func NewForum(svc DiscussionService, views *cache.ViewCache, log InvalidationLog) *Forum {
	return &Forum{svc: svc, inv: invalidator{views: views, log: log}}
}

type createPostRequest struct {
	Content  string     `json:"content" validate:"notblank,max=20000"`
	ParentID *uuid.UUID `json:"parent_id"`
}

type contentRequest struct {
	Content string `json:"content" validate:"notblank,max=20000"`
}

type commentRequest struct {
	Content string `json:"content" validate:"notblank,max=2000"`
}

// CreateTopic handles POST /api/topics.
func (h *Forum) CreateTopic(w http.ResponseWriter, r *http.Request) {
	var in discussion.CreateTopicInput
	if err := decodeJSON(w, r, &in); err != nil {
		response.Error(w, r, err)
		return
	}
	if err := validation.Struct(in); err != nil {
		response.Error(w, r, err)
		return
	}

	t, err := h.svc.CreateTopic(r.Context(), middleware.ActorFromCtx(r.Context()), in)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	h.activity(r, "topic", t.ID, "create", cache.CategoriesPrefix)
	response.Created(w, t)
}

// GetTopic handles GET /api/topics/{id}.
func (h *Forum) GetTopic(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.Error(w, r, err)
		return
	}
	t, err := h.svc.GetTopic(r.Context(), id)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, t)
}

// ToggleClosed handles POST /api/topics/{id}/close.
func (h *Forum) ToggleClosed(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "close", h.svc.ToggleClosed)
}

// TogglePinned handles POST /api/topics/{id}/pin.
func (h *Forum) TogglePinned(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "pin", h.svc.TogglePinned)
}

func (h *Forum) toggle(w http.ResponseWriter, r *http.Request, action string,
	flip func(context.Context, uuid.UUID, models.Actor) (*models.ForumTopic, error),
) {
	id, err := pathID(r, "id")
	if err != nil {
		response.Error(w, r, err)
		return
	}

	t, err := flip(r.Context(), id, middleware.ActorFromCtx(r.Context()))
	if err != nil {
		response.Error(w, r, err)
		return
	}

	h.activity(r, "topic", id, action)
	response.OK(w, t)
}

// CreatePost handles POST /api/topics/{id}/posts.
func (h *Forum) CreatePost(w http.ResponseWriter, r *http.Request) {
	topicID, err := pathID(r, "id")
	if err != nil {
		response.Error(w, r, err)
		return
	}

	var req createPostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, r, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		response.Error(w, r, err)
		return
	}

	p, err := h.svc.CreatePost(r.Context(), topicID, middleware.ActorFromCtx(r.Context()), req.Content, req.ParentID)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	h.activity(r, "post", p.ID, "create")
	response.Created(w, p)
}

// ListPosts handles GET /api/topics/{id}/posts?mode=&page=&page_size=.
func (h *Forum) ListPosts(w http.ResponseWriter, r *http.Request) {
	topicID, err := pathID(r, "id")
	if err != nil {
		response.Error(w, r, err)
		return
	}
	page, err := queryInt(r, "page", 1)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	pageSize, err := queryInt(r, "page_size", discussion.DefaultPageSize)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	mode := models.ListMode(r.URL.Query().Get("mode"))

	result, err := h.svc.ListPosts(r.Context(), topicID, mode, page, pageSize)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, result)
}

// UpdatePost handles PATCH /api/posts/{id}.
func (h *Forum) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.Error(w, r, err)
		return
	}

	var req contentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, r, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		response.Error(w, r, err)
		return
	}

	p, err := h.svc.UpdatePost(r.Context(), id, middleware.ActorFromCtx(r.Context()), req.Content)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	h.activity(r, "post", id, "update")
	response.OK(w, p)
}

// DeletePost handles DELETE /api/posts/{id}.
func (h *Forum) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.Error(w, r, err)
		return
	}

	if err := h.svc.DeletePost(r.Context(), id, middleware.ActorFromCtx(r.Context())); err != nil {
		response.Error(w, r, err)
		return
	}

	h.activity(r, "post", id, "delete")
	response.NoContent(w)
}

// AddComment handles POST /api/posts/{id}/comments.
func (h *Forum) AddComment(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "id")
	if err != nil {
		response.Error(w, r, err)
		return
	}

	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, r, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		response.Error(w, r, err)
		return
	}

	c, err := h.svc.AddComment(r.Context(), postID, middleware.ActorFromCtx(r.Context()), req.Content)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	h.activity(r, "comment", c.ID, "create")
	response.Created(w, c)
}

// activity logs a forum write and purges the trending views plus any extra
// view prefixes it affects.
func (h *Forum) activity(r *http.Request, entityType string, id uuid.UUID, action string, extra ...string) {
	slog.Debug("forum activity",
		"entity_type", entityType,
		"entity_id", id,
		"action", action,
		"actor_id", middleware.ActorFromCtx(r.Context()).ID,
	)
	h.inv.invalidate(r.Context(), entityType, id, action, append([]string{cache.TrendingPrefix}, extra...)...)
}
