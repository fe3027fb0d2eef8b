// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package discussion

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"alumnihub/internal/models"
)

// memData holds the in-memory tables behind memStore. order keeps post
// insertion order, which doubles as creation order.
type memData struct {
	categories map[uuid.UUID]bool
	topics     map[uuid.UUID]models.ForumTopic
	posts      map[uuid.UUID]models.ForumPost
	order      []uuid.UUID
	comments   []models.ForumComment
}

func (d *memData) clone() *memData {
	return &memData{
		categories: maps.Clone(d.categories),
		topics:     maps.Clone(d.topics),
		posts:      maps.Clone(d.posts),
		order:      slices.Clone(d.order),
		comments:   slices.Clone(d.comments),
	}
}

type memRepo struct{ d *memData }

func (r memRepo) CategoryExists(_ context.Context, id uuid.UUID) (bool, error) {
	return r.d.categories[id], nil
}

func (r memRepo) FindTopic(_ context.Context, id uuid.UUID) (*models.ForumTopic, error) {
	t, ok := r.d.topics[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r memRepo) CreateTopic(_ context.Context, t *models.ForumTopic) (*models.ForumTopic, error) {
	created := *t
	created.ID = uuid.New()
	created.CreatedAt = t.LastActivityAt
	created.UpdatedAt = t.LastActivityAt
	r.d.topics[created.ID] = created
	return &created, nil
}

func (r memRepo) SetTopicFlags(_ context.Context, id uuid.UUID, closed, pinned bool, at time.Time) error {
	t := r.d.topics[id]
	t.IsClosed, t.IsPinned, t.LastActivityAt = closed, pinned, at
	r.d.topics[id] = t
	return nil
}

func (r memRepo) TouchTopic(_ context.Context, id uuid.UUID, at time.Time) error {
	t := r.d.topics[id]
	t.LastActivityAt = at
	r.d.topics[id] = t
	return nil
}

func (r memRepo) FindPost(_ context.Context, id uuid.UUID) (*models.ForumPost, error) {
	p, ok := r.d.posts[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r memRepo) CreatePost(_ context.Context, p *models.ForumPost) (*models.ForumPost, error) {
	created := *p
	created.ID = uuid.New()
	r.d.posts[created.ID] = created
	r.d.order = append(r.d.order, created.ID)
	return &created, nil
}

func (r memRepo) UpdatePostContent(_ context.Context, id uuid.UUID, content string, at time.Time) error {
	p := r.d.posts[id]
	p.Content, p.UpdatedAt = content, at
	r.d.posts[id] = p
	return nil
}

func (r memRepo) DeletePost(_ context.Context, id uuid.UUID) error {
	delete(r.d.posts, id)
	r.d.order = slices.DeleteFunc(r.d.order, func(x uuid.UUID) bool { return x == id })
	return nil
}

func (r memRepo) CountReplies(_ context.Context, postID uuid.UUID) (int, error) {
	n := 0
	for _, p := range r.d.posts {
		if p.ParentID != nil && *p.ParentID == postID {
			n++
		}
	}
	return n, nil
}

func (r memRepo) ReparentReplies(_ context.Context, postID uuid.UUID, newParent *uuid.UUID) (int64, error) {
	var n int64
	for id, p := range r.d.posts {
		if p.ParentID != nil && *p.ParentID == postID {
			p.ParentID = newParent
			r.d.posts[id] = p
			n++
		}
	}
	return n, nil
}

func (r memRepo) ListPosts(_ context.Context, topicID uuid.UUID) ([]models.ForumPost, error) {
	var out []models.ForumPost
	for _, id := range r.d.order {
		p := r.d.posts[id]
		if p.TopicID != topicID {
			continue
		}
		if p.ParentID != nil {
			if parent, ok := r.d.posts[*p.ParentID]; ok {
				p.Parent = &models.PostRef{ID: parent.ID, Content: parent.Content, AuthorID: parent.AuthorID}
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func (r memRepo) roots(topicID uuid.UUID) []models.ForumPost {
	var out []models.ForumPost
	for _, id := range r.d.order {
		p := r.d.posts[id]
		if p.TopicID == topicID && p.ParentID == nil {
			out = append(out, p)
		}
	}
	return out
}

func (r memRepo) CountRootPosts(_ context.Context, topicID uuid.UUID) (int, error) {
	return len(r.roots(topicID)), nil
}

func (r memRepo) ListRootPosts(_ context.Context, topicID uuid.UUID, limit, offset int) ([]models.ForumPost, error) {
	roots := r.roots(topicID)
	if offset >= len(roots) {
		return nil, nil
	}
	return roots[offset:min(offset+limit, len(roots))], nil
}

func (r memRepo) ListReplies(_ context.Context, parentIDs []uuid.UUID) ([]models.ForumPost, error) {
	var out []models.ForumPost
	for _, id := range r.d.order {
		p := r.d.posts[id]
		if p.ParentID != nil && slices.Contains(parentIDs, *p.ParentID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memRepo) CreateComment(_ context.Context, c *models.ForumComment) (*models.ForumComment, error) {
	created := *c
	created.ID = uuid.New()
	r.d.comments = append(r.d.comments, created)
	return &created, nil
}

// memStore is an in-memory Store. Reads outside InTx are unlocked; the
// tests drive it from a single goroutine.
type memStore struct {
	memRepo
	mu sync.Mutex
}

func newMemStore() *memStore {
	return &memStore{memRepo: memRepo{d: &memData{
		categories: map[uuid.UUID]bool{},
		topics:     map[uuid.UUID]models.ForumTopic{},
		posts:      map[uuid.UUID]models.ForumPost{},
	}}}
}

func (s *memStore) InTx(_ context.Context, fn func(Repository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.d.clone()
	if err := fn(s.memRepo); err != nil {
		*s.d = *snapshot
		return err
	}
	return nil
}

var _ Store = (*memStore)(nil)
