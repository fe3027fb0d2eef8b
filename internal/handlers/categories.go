// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"alumnihub/internal/cache"
	"alumnihub/internal/middleware"
	"alumnihub/internal/models"
	"alumnihub/internal/response"
	"alumnihub/internal/taxonomy"
	"alumnihub/internal/validation"
)

// CategoryService is the taxonomy surface the handlers call.
type CategoryService interface {
	CreateCategory(ctx context.Context, in taxonomy.CreateCategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, in taxonomy.UpdateCategoryInput) (*models.Category, error)
	ReparentCategory(ctx context.Context, id uuid.UUID, newParentID *uuid.UUID) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID, force bool) error
	Get(ctx context.Context, id uuid.UUID) (*models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	Tree(ctx context.Context) ([]models.Category, error)
	FlatTree(ctx context.Context) ([]models.Category, error)
	Breadcrumb(ctx context.Context, id uuid.UUID) ([]models.Crumb, error)
}

// Categories groups the category tree handlers.
type Categories struct {
	svc   CategoryService
	views *cache.ViewCache
	inv   invalidator
}

// NewCategories creates the category handler group. views and log may be
// nil.
func NewCategories(svc CategoryService, views *cache.ViewCache, log InvalidationLog) *Categories {
	return &Categories{svc: svc, views: views, inv: invalidator{views: views, log: log}}
}

type updateCategoryRequest struct {
	Name        *string    `json:"name" validate:"omitempty,notblank,max=100"`
	Description *string    `json:"description" validate:"omitempty,max=1000"`
	ParentID    optionalID `json:"parent_id"`
}

type reparentRequest struct {
	ParentID *uuid.UUID `json:"parent_id"`
}

// Create handles POST /api/categories.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	var in taxonomy.CreateCategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		response.Error(w, r, err)
		return
	}
	if err := validation.Struct(in); err != nil {
		response.Error(w, r, err)
		return
	}

	c, err := h.svc.CreateCategory(r.Context(), in)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	h.changed(r, c.ID, "create")
	response.Created(w, c)
}

// Update handles PATCH /api/categories/{id}. An explicit "parent_id": null
// moves the category to the root; an absent parent_id keeps it in place.
func (h *Categories) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.Error(w, r, err)
		return
	}

	var req updateCategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, r, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		response.Error(w, r, err)
		return
	}

	c, err := h.svc.UpdateCategory(r.Context(), id, taxonomy.UpdateCategoryInput{
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID.ID,
		SetParent:   req.ParentID.Set,
	})
	if err != nil {
		response.Error(w, r, err)
		return
	}

	h.changed(r, id, "update")
	response.OK(w, c)
}

// Reparent handles PUT /api/categories/{id}/parent.
func (h *Categories) Reparent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.Error(w, r, err)
		return
	}

	var req reparentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	c, err := h.svc.ReparentCategory(r.Context(), id, req.ParentID)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	h.changed(r, id, "reparent")
	response.OK(w, c)
}

// Delete handles DELETE /api/categories/{id}?force=.
func (h *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.Error(w, r, err)
		return
	}
	force, err := queryBool(r, "force")
	if err != nil {
		response.Error(w, r, err)
		return
	}

	if err := h.svc.DeleteCategory(r.Context(), id, force); err != nil {
		response.Error(w, r, err)
		return
	}

	// Topics lose their category on delete, which trending views embed.
	h.changed(r, id, "delete", cache.TrendingPrefix)
	response.NoContent(w)
}

// Get handles GET /api/categories/{id}.
func (h *Categories) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.Error(w, r, err)
		return
	}
	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, c)
}

// GetBySlug handles GET /api/categories/slug/{slug}.
func (h *Categories) GetBySlug(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, c)
}

// Tree handles GET /api/categories/tree.
func (h *Categories) Tree(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := cache.TreeKey()

	var forest []models.Category
	if h.views.Get(ctx, key, &forest) {
		response.OK(w, forest)
		return
	}

	forest, err := h.svc.Tree(ctx)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	h.views.Set(ctx, key, forest)
	response.OK(w, forest)
}

// List handles GET /api/categories, the depth-annotated flat tree.
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	flat, err := h.svc.FlatTree(r.Context())
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, flat)
}

// Breadcrumb handles GET /api/categories/{id}/breadcrumb.
func (h *Categories) Breadcrumb(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.Error(w, r, err)
		return
	}

	ctx := r.Context()
	key := cache.BreadcrumbKey(id)

	var crumbs []models.Crumb
	if h.views.Get(ctx, key, &crumbs) {
		response.OK(w, crumbs)
		return
	}

	crumbs, err = h.svc.Breadcrumb(ctx, id)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	h.views.Set(ctx, key, crumbs)
	response.OK(w, crumbs)
}

// changed logs a category write and purges the category views.
func (h *Categories) changed(r *http.Request, id uuid.UUID, action string, extra ...string) {
	slog.Info("category changed",
		"category_id", id,
		"action", action,
		"actor_id", middleware.ActorFromCtx(r.Context()).ID,
	)
	h.inv.invalidate(r.Context(), "category", id, action, append([]string{cache.CategoriesPrefix}, extra...)...)
}
