// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package taxonomy

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"alumnihub/internal/models"
	"alumnihub/internal/tree"
)

// memData is the in-memory table behind memStore.
type memData struct {
	cats    map[uuid.UUID]models.Category
	order   []uuid.UUID
	content map[uuid.UUID]models.CategoryDependents
	// failDelete makes Delete fail, to observe rollback.
	failDelete error
}

// memRepo implements Repository without locking; memStore serializes access.
type memRepo struct{ d *memData }

func (r memRepo) ChildEdges(_ context.Context, parentIDs []uuid.UUID) ([]tree.Edge, error) {
	var out []tree.Edge
	for _, id := range r.d.order {
		c := r.d.cats[id]
		if c.ParentID != nil && slices.Contains(parentIDs, *c.ParentID) {
			out = append(out, tree.Edge{ID: c.ID, ParentID: c.ParentID})
		}
	}
	return out, nil
}

func (r memRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	c, ok := r.d.cats[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r memRepo) FindBySlug(_ context.Context, s string) (*models.Category, error) {
	for _, c := range r.d.cats {
		if c.Slug == s {
			return &c, nil
		}
	}
	return nil, nil
}

func (r memRepo) List(context.Context) ([]models.Category, error) {
	out := make([]models.Category, 0, len(r.d.order))
	for _, id := range r.d.order {
		c := r.d.cats[id]
		c.TopicCount = r.d.content[id].Topics
		out = append(out, c)
	}
	return out, nil
}

func (r memRepo) Create(_ context.Context, c *models.Category) (*models.Category, error) {
	created := *c
	created.ID = uuid.New()
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	r.d.cats[created.ID] = created
	r.d.order = append(r.d.order, created.ID)
	return &created, nil
}

func (r memRepo) Update(_ context.Context, c *models.Category) error {
	stored := *c
	stored.Children = nil
	stored.UpdatedAt = time.Now()
	r.d.cats[c.ID] = stored
	return nil
}

func (r memRepo) Delete(_ context.Context, id uuid.UUID) error {
	if r.d.failDelete != nil {
		return r.d.failDelete
	}
	delete(r.d.cats, id)
	r.d.order = slices.DeleteFunc(r.d.order, func(x uuid.UUID) bool { return x == id })
	return nil
}

func (r memRepo) PromoteChildren(_ context.Context, id uuid.UUID, newParent *uuid.UUID) (int64, error) {
	var n int64
	for cid, c := range r.d.cats {
		if c.ParentID != nil && *c.ParentID == id {
			c.ParentID = newParent
			r.d.cats[cid] = c
			n++
		}
	}
	return n, nil
}

func (r memRepo) Dependents(_ context.Context, id uuid.UUID) (models.CategoryDependents, error) {
	deps := r.d.content[id]
	for _, c := range r.d.cats {
		if c.ParentID != nil && *c.ParentID == id {
			deps.Children++
		}
	}
	return deps, nil
}

// memStore is an in-memory Store. InTx holds the lock for the whole unit
// of work and restores the previous state when fn fails.
type memStore struct {
	mu sync.Mutex
	d  *memData
}

func newMemStore() *memStore {
	return &memStore{d: &memData{
		cats:    map[uuid.UUID]models.Category{},
		content: map[uuid.UUID]models.CategoryDependents{},
	}}
}

func (s *memStore) repo() memRepo { return memRepo{d: s.d} }

func (s *memStore) InTx(_ context.Context, fn func(Repository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cats := maps.Clone(s.d.cats)
	order := slices.Clone(s.d.order)
	if err := fn(s.repo()); err != nil {
		s.d.cats, s.d.order = cats, order
		return err
	}
	return nil
}

func (s *memStore) ChildEdges(ctx context.Context, ids []uuid.UUID) ([]tree.Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().ChildEdges(ctx, ids)
}

func (s *memStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().FindByID(ctx, id)
}

func (s *memStore) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().FindBySlug(ctx, slug)
}

func (s *memStore) List(ctx context.Context) ([]models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().List(ctx)
}

func (s *memStore) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().Create(ctx, c)
}

func (s *memStore) Update(ctx context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().Update(ctx, c)
}

func (s *memStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().Delete(ctx, id)
}

func (s *memStore) PromoteChildren(ctx context.Context, id uuid.UUID, p *uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().PromoteChildren(ctx, id, p)
}

func (s *memStore) Dependents(ctx context.Context, id uuid.UUID) (models.CategoryDependents, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().Dependents(ctx, id)
}

// parentOf returns the stored parent of id, for assertions.
func (s *memStore) parentOf(id uuid.UUID) *uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.cats[id].ParentID
}

func (s *memStore) exists(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.d.cats[id]
	return ok
}

// setParentRaw bypasses the engine to simulate a stale or corrupt pointer.
func (s *memStore) setParentRaw(id uuid.UUID, parent *uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.d.cats[id]
	c.ParentID = parent
	s.d.cats[id] = c
}

var _ Store = (*memStore)(nil)
