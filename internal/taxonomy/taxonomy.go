// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package taxonomy manages the category tree: creation with unique slugs,
// renames, cycle-checked reparenting, deletion with child promotion, and
// the read views (full forest and breadcrumbs).
//
// Every mutation re-reads the rows it depends on inside a single
// transaction supplied by the Store, so the engine keeps no tree shape
// between calls.
package taxonomy

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"alumnihub/internal/apperr"
	"alumnihub/internal/models"
	"alumnihub/internal/slug"
	"alumnihub/internal/tree"
	"alumnihub/internal/validation"
)

// Repository is the persistence surface the engine needs. FindByID and
// FindBySlug return (nil, nil) when nothing matches.
type Repository interface {
	tree.ChildLister

	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	// PromoteChildren moves every direct child of id under newParent and
	// returns how many rows moved.
	PromoteChildren(ctx context.Context, id uuid.UUID, newParent *uuid.UUID) (int64, error)
	Dependents(ctx context.Context, id uuid.UUID) (models.CategoryDependents, error)
}

// Store is a Repository that can also run a unit of work atomically. The
// Repository handed to fn must see and write through the same transaction.
type Store interface {
	Repository
	InTx(ctx context.Context, fn func(repo Repository) error) error
}

// CreateCategoryInput holds the fields for a new category.
type CreateCategoryInput struct {
	Name        string     `json:"name" validate:"notblank,max=100"`
	Description string     `json:"description" validate:"max=1000"`
	ParentID    *uuid.UUID `json:"parent_id"`
}

// UpdateCategoryInput holds a partial category update. Nil fields are left
// unchanged; SetParent distinguishes "move to root" from "keep parent".
type UpdateCategoryInput struct {
	Name        *string    `json:"name" validate:"omitempty,notblank,max=100"`
	Description *string    `json:"description" validate:"omitempty,max=1000"`
	ParentID    *uuid.UUID `json:"parent_id"`
	SetParent   bool       `json:"-"`
}

// Engine implements the category operations.
type Engine struct {
	store Store
}

// NewEngine returns an Engine backed by store.
func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// slugFor derives the slug for a category name, rejecting names that
// contain no letters or digits.
func slugFor(name string) (string, error) {
	s := slug.Generate(name)
	if s == "" {
		return "", apperr.ValidationWithDetails("validation failed",
			map[string]string{"name": "must contain at least one letter or digit"})
	}
	return s, nil
}

// CreateCategory inserts a category whose slug is derived from its name.
func (e *Engine) CreateCategory(ctx context.Context, in CreateCategoryInput) (*models.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	s, err := slugFor(in.Name)
	if err != nil {
		return nil, err
	}

	var created *models.Category
	err = e.store.InTx(ctx, func(repo Repository) error {
		if err := ensureSlugFree(ctx, repo, s, uuid.Nil); err != nil {
			return err
		}
		if in.ParentID != nil {
			if err := ensureParentExists(ctx, repo, *in.ParentID); err != nil {
				return err
			}
		}

		c, err := repo.Create(ctx, &models.Category{
			Name:        in.Name,
			Slug:        s,
			Description: in.Description,
			ParentID:    in.ParentID,
		})
		if err != nil {
			return err
		}
		created = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("category created", "id", created.ID, "slug", created.Slug)
	return created, nil
}

// UpdateCategory renames, re-describes, and/or reparents a category in one
// transaction. A rename regenerates the slug.
func (e *Engine) UpdateCategory(ctx context.Context, id uuid.UUID, in UpdateCategoryInput) (*models.Category, error) {
	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		in.Name = &trimmed
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	var updated *models.Category
	err := e.store.InTx(ctx, func(repo Repository) error {
		c, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return apperr.NotFoundf("category %s not found", id)
		}

		if in.Name != nil && *in.Name != c.Name {
			s, err := slugFor(*in.Name)
			if err != nil {
				return err
			}
			if s != c.Slug {
				if err := ensureSlugFree(ctx, repo, s, c.ID); err != nil {
					return err
				}
			}
			c.Name, c.Slug = *in.Name, s
		}
		if in.Description != nil {
			c.Description = *in.Description
		}
		if in.SetParent {
			if err := checkMove(ctx, repo, c.ID, in.ParentID); err != nil {
				return err
			}
			c.ParentID = in.ParentID
		}

		if err := repo.Update(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("category updated", "id", updated.ID, "slug", updated.Slug, "parent_id", updated.ParentID)
	return updated, nil
}

// ReparentCategory moves a category under newParentID, or to the root when
// newParentID is nil.
func (e *Engine) ReparentCategory(ctx context.Context, id uuid.UUID, newParentID *uuid.UUID) (*models.Category, error) {
	return e.UpdateCategory(ctx, id, UpdateCategoryInput{ParentID: newParentID, SetParent: true})
}

// DeleteCategory removes a category. Without force any child or attached
// content blocks the deletion and the blocking relations are reported.
// With force the direct children are promoted to the category's own
// parent before the row is removed; attached content is detached.
func (e *Engine) DeleteCategory(ctx context.Context, id uuid.UUID, force bool) error {
	var promoted int64
	err := e.store.InTx(ctx, func(repo Repository) error {
		c, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return apperr.NotFoundf("category %s not found", id)
		}

		deps, err := repo.Dependents(ctx, id)
		if err != nil {
			return err
		}
		if deps.Total() > 0 && !force {
			return apperr.ErrHasDependents.WithDetails(deps.Relations())
		}

		if deps.Children > 0 {
			promoted, err = repo.PromoteChildren(ctx, id, c.ParentID)
			if err != nil {
				return err
			}
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	slog.Info("category deleted", "id", id, "force", force, "promoted", promoted)
	return nil
}

// Get returns a single category.
func (e *Engine) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	c, err := e.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFoundf("category %s not found", id)
	}
	return c, nil
}

// GetBySlug returns a single category by slug.
func (e *Engine) GetBySlug(ctx context.Context, s string) (*models.Category, error) {
	c, err := e.store.FindBySlug(ctx, s)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFoundf("category %q not found", s)
	}
	return c, nil
}

// Tree returns the whole taxonomy as a forest with Children and Depth set.
func (e *Engine) Tree(ctx context.Context) ([]models.Category, error) {
	flat, err := e.store.List(ctx)
	if err != nil {
		return nil, err
	}

	forest := tree.BuildForest(flat,
		func(c models.Category) uuid.UUID { return c.ID },
		func(c models.Category) *uuid.UUID { return c.ParentID },
		func(c *models.Category, children []models.Category, depth int) {
			c.Children = children
			c.Depth = depth
		},
	)
	if forest == nil {
		forest = []models.Category{}
	}
	return forest, nil
}

// FlatTree returns the taxonomy in display order with Depth set, for
// indented pickers.
func (e *Engine) FlatTree(ctx context.Context) ([]models.Category, error) {
	forest, err := e.Tree(ctx)
	if err != nil {
		return nil, err
	}
	flat := tree.Flatten(forest, func(c models.Category) []models.Category { return c.Children })
	for i := range flat {
		flat[i].Children = nil
	}
	return flat, nil
}

// Breadcrumb returns the path from the root down to id. A parent pointer
// that no longer resolves ends the path early instead of failing.
func (e *Engine) Breadcrumb(ctx context.Context, id uuid.UUID) ([]models.Crumb, error) {
	load := func(ctx context.Context, id uuid.UUID) (*models.Category, bool, error) {
		c, err := e.store.FindByID(ctx, id)
		return c, c != nil, err
	}
	parentOf := func(c *models.Category) *uuid.UUID { return c.ParentID }

	path, err := tree.WalkUp(ctx, id, load, parentOf)
	if errors.Is(err, tree.ErrStartNotFound) {
		return nil, apperr.NotFoundf("category %s not found", id)
	}
	if err != nil {
		return nil, err
	}

	if len(path) > 0 && path[0].ParentID != nil {
		slog.Warn("breadcrumb truncated at dangling parent",
			"category_id", id, "dangling_parent_id", *path[0].ParentID)
	}

	crumbs := make([]models.Crumb, len(path))
	for i, c := range path {
		crumbs[i] = models.Crumb{ID: c.ID, Name: c.Name, Slug: c.Slug}
	}
	return crumbs, nil
}

// ensureSlugFree fails with DuplicateSlug if another category (any id other
// than self) already uses s.
func ensureSlugFree(ctx context.Context, repo Repository, s string, self uuid.UUID) error {
	existing, err := repo.FindBySlug(ctx, s)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != self {
		return apperr.Newf(apperr.CodeDuplicateSlug, "a category with slug %q already exists", s)
	}
	return nil
}

func ensureParentExists(ctx context.Context, repo Repository, parentID uuid.UUID) error {
	parent, err := repo.FindByID(ctx, parentID)
	if err != nil {
		return err
	}
	if parent == nil {
		return apperr.Newf(apperr.CodeParentNotFound, "parent category %s not found", parentID)
	}
	return nil
}

// checkMove validates moving id under newParent: the parent must exist and
// must not be id or one of its descendants.
func checkMove(ctx context.Context, repo Repository, id uuid.UUID, newParent *uuid.UUID) error {
	if newParent == nil {
		return nil
	}
	if *newParent != id {
		if err := ensureParentExists(ctx, repo, *newParent); err != nil {
			return err
		}
	}

	err := tree.CheckReparent(ctx, repo, id, newParent)
	if errors.Is(err, tree.ErrCycle) {
		return apperr.Newf(apperr.CodeCyclicReference,
			"category %s cannot be moved under %s: it is the category itself or one of its descendants", id, *newParent)
	}
	return err
}
