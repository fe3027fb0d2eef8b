// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package discussion manages forum topics and their post threads: posting
// under open topics, flat and two-level listings, reply promotion when an
// interior post is removed, and the closed/pinned topic flags.
package discussion

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"alumnihub/internal/apperr"
	"alumnihub/internal/models"
	"alumnihub/internal/validation"
)

// Pagination bounds for hierarchical listings.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Repository is the persistence surface the engine needs. Find* methods
// return (nil, nil) when nothing matches.
type Repository interface {
	CategoryExists(ctx context.Context, id uuid.UUID) (bool, error)

	FindTopic(ctx context.Context, id uuid.UUID) (*models.ForumTopic, error)
	CreateTopic(ctx context.Context, t *models.ForumTopic) (*models.ForumTopic, error)
	// SetTopicFlags writes both flags and the activity timestamp.
	SetTopicFlags(ctx context.Context, id uuid.UUID, closed, pinned bool, at time.Time) error
	TouchTopic(ctx context.Context, id uuid.UUID, at time.Time) error

	FindPost(ctx context.Context, id uuid.UUID) (*models.ForumPost, error)
	CreatePost(ctx context.Context, p *models.ForumPost) (*models.ForumPost, error)
	UpdatePostContent(ctx context.Context, id uuid.UUID, content string, at time.Time) error
	DeletePost(ctx context.Context, id uuid.UUID) error
	CountReplies(ctx context.Context, postID uuid.UUID) (int, error)
	// ReparentReplies moves every direct reply of postID under newParent
	// and returns how many rows moved.
	ReparentReplies(ctx context.Context, postID uuid.UUID, newParent *uuid.UUID) (int64, error)

	// ListPosts returns every post of a topic oldest first, each with its
	// shallow Parent reference filled in.
	ListPosts(ctx context.Context, topicID uuid.UUID) ([]models.ForumPost, error)
	CountRootPosts(ctx context.Context, topicID uuid.UUID) (int, error)
	ListRootPosts(ctx context.Context, topicID uuid.UUID, limit, offset int) ([]models.ForumPost, error)
	// ListReplies returns the direct replies of the given posts oldest first.
	ListReplies(ctx context.Context, parentIDs []uuid.UUID) ([]models.ForumPost, error)

	CreateComment(ctx context.Context, c *models.ForumComment) (*models.ForumComment, error)
}

// Store is a Repository that can also run a unit of work atomically.
type Store interface {
	Repository
	InTx(ctx context.Context, fn func(repo Repository) error) error
}

// CreateTopicInput holds the fields for a new topic.
type CreateTopicInput struct {
	CategoryID *uuid.UUID `json:"category_id"`
	Title      string     `json:"title" validate:"notblank,max=200"`
	Content    string     `json:"content" validate:"notblank,max=20000"`
}

type postContent struct {
	Content string `json:"content" validate:"notblank,max=20000"`
}

type commentContent struct {
	Content string `json:"content" validate:"notblank,max=2000"`
}

// Engine implements the forum operations.
type Engine struct {
	store Store
	now   func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source used for activity stamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine returns an Engine backed by store.
func NewEngine(store Store, opts ...Option) *Engine {
	e := &Engine{store: store, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func requireSignedIn(actor models.Actor) error {
	if actor.ID == uuid.Nil {
		return apperr.Forbidden("sign in to take part in discussions")
	}
	return nil
}

// loadTopic returns the topic or TopicNotFound.
func loadTopic(ctx context.Context, repo Repository, id uuid.UUID) (*models.ForumTopic, error) {
	t, err := repo.FindTopic(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.Newf(apperr.CodeTopicNotFound, "topic %s not found", id)
	}
	return t, nil
}

// loadPost returns the post or PostNotFound.
func loadPost(ctx context.Context, repo Repository, id uuid.UUID) (*models.ForumPost, error) {
	p, err := repo.FindPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.Newf(apperr.CodePostNotFound, "post %s not found", id)
	}
	return p, nil
}

// CreateTopic opens a new topic, optionally filed under a category.
func (e *Engine) CreateTopic(ctx context.Context, actor models.Actor, in CreateTopicInput) (*models.ForumTopic, error) {
	if err := requireSignedIn(actor); err != nil {
		return nil, err
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	var created *models.ForumTopic
	err := e.store.InTx(ctx, func(repo Repository) error {
		if in.CategoryID != nil {
			ok, err := repo.CategoryExists(ctx, *in.CategoryID)
			if err != nil {
				return err
			}
			if !ok {
				return apperr.NotFoundf("category %s not found", *in.CategoryID)
			}
		}

		t, err := repo.CreateTopic(ctx, &models.ForumTopic{
			CategoryID:     in.CategoryID,
			Title:          in.Title,
			Content:        in.Content,
			AuthorID:       actor.ID,
			LastActivityAt: e.now(),
		})
		if err != nil {
			return err
		}
		created = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("topic created", "id", created.ID, "author_id", actor.ID)
	return created, nil
}

// GetTopic returns a single topic.
func (e *Engine) GetTopic(ctx context.Context, id uuid.UUID) (*models.ForumTopic, error) {
	return loadTopic(ctx, e.store, id)
}

// ToggleClosed flips the topic's closed flag. Only the topic author or an
// admin may do this.
func (e *Engine) ToggleClosed(ctx context.Context, id uuid.UUID, actor models.Actor) (*models.ForumTopic, error) {
	return e.toggle(ctx, id, func(t *models.ForumTopic) error {
		if !actor.CanModerate(t.AuthorID) {
			return apperr.Forbidden("only the topic author or an admin can close or reopen a topic")
		}
		t.IsClosed = !t.IsClosed
		return nil
	})
}

// TogglePinned flips the topic's pinned flag. Admin only.
func (e *Engine) TogglePinned(ctx context.Context, id uuid.UUID, actor models.Actor) (*models.ForumTopic, error) {
	return e.toggle(ctx, id, func(t *models.ForumTopic) error {
		if !actor.IsAdmin {
			return apperr.Forbidden("only an admin can pin or unpin a topic")
		}
		t.IsPinned = !t.IsPinned
		return nil
	})
}

func (e *Engine) toggle(ctx context.Context, id uuid.UUID, flip func(*models.ForumTopic) error) (*models.ForumTopic, error) {
	var updated *models.ForumTopic
	err := e.store.InTx(ctx, func(repo Repository) error {
		t, err := loadTopic(ctx, repo, id)
		if err != nil {
			return err
		}
		if err := flip(t); err != nil {
			return err
		}

		t.LastActivityAt = e.now()
		if err := repo.SetTopicFlags(ctx, t.ID, t.IsClosed, t.IsPinned, t.LastActivityAt); err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("topic flags changed", "id", id, "closed", updated.IsClosed, "pinned", updated.IsPinned)
	return updated, nil
}

// CreatePost adds a post, or a reply when parentID is set, to an open
// topic. Admins are not exempt from the closed-topic block.
func (e *Engine) CreatePost(ctx context.Context, topicID uuid.UUID, actor models.Actor, content string, parentID *uuid.UUID) (*models.ForumPost, error) {
	if err := requireSignedIn(actor); err != nil {
		return nil, err
	}
	if err := validation.Struct(postContent{Content: content}); err != nil {
		return nil, err
	}

	var created *models.ForumPost
	err := e.store.InTx(ctx, func(repo Repository) error {
		t, err := loadTopic(ctx, repo, topicID)
		if err != nil {
			return err
		}
		if t.IsClosed {
			return apperr.Newf(apperr.CodeTopicClosed, "topic %s is closed to new posts", topicID)
		}

		if parentID != nil {
			parent, err := repo.FindPost(ctx, *parentID)
			if err != nil {
				return err
			}
			if parent == nil {
				return apperr.Newf(apperr.CodeParentPostNotFound, "parent post %s not found", *parentID)
			}
			if parent.TopicID != topicID {
				return apperr.Newf(apperr.CodeCrossTopicParent,
					"parent post %s belongs to topic %s, not %s", parent.ID, parent.TopicID, topicID)
			}
		}

		now := e.now()
		p, err := repo.CreatePost(ctx, &models.ForumPost{
			TopicID:   topicID,
			AuthorID:  actor.ID,
			Content:   content,
			ParentID:  parentID,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return err
		}
		created = p
		return repo.TouchTopic(ctx, topicID, now)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("post created", "id", created.ID, "topic_id", topicID, "reply", created.IsReply())
	return created, nil
}

// UpdatePost replaces a post's content. Edits are frozen once the topic is
// closed, for every actor; otherwise only the author or an admin may edit.
func (e *Engine) UpdatePost(ctx context.Context, postID uuid.UUID, actor models.Actor, content string) (*models.ForumPost, error) {
	if err := validation.Struct(postContent{Content: content}); err != nil {
		return nil, err
	}

	var updated *models.ForumPost
	err := e.store.InTx(ctx, func(repo Repository) error {
		p, err := loadPost(ctx, repo, postID)
		if err != nil {
			return err
		}
		t, err := loadTopic(ctx, repo, p.TopicID)
		if err != nil {
			return err
		}
		if t.IsClosed {
			return apperr.Newf(apperr.CodeTopicClosed, "topic %s is closed, posts can no longer be edited", t.ID)
		}
		if !actor.CanModerate(p.AuthorID) {
			return apperr.Forbidden("only the author or an admin can edit this post")
		}

		now := e.now()
		if err := repo.UpdatePostContent(ctx, p.ID, content, now); err != nil {
			return err
		}
		p.Content = content
		p.UpdatedAt = now
		updated = p
		return repo.TouchTopic(ctx, t.ID, now)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeletePost removes a post. A post with replies can only be removed by an
// admin; its direct replies then move up to the post's own parent.
func (e *Engine) DeletePost(ctx context.Context, postID uuid.UUID, actor models.Actor) error {
	var promoted int64
	err := e.store.InTx(ctx, func(repo Repository) error {
		p, err := loadPost(ctx, repo, postID)
		if err != nil {
			return err
		}
		if !actor.CanModerate(p.AuthorID) {
			return apperr.Forbidden("only the author or an admin can delete this post")
		}

		replies, err := repo.CountReplies(ctx, p.ID)
		if err != nil {
			return err
		}
		if replies > 0 {
			if !actor.IsAdmin {
				return apperr.ErrHasReplies.WithDetails(map[string]int{"replies": replies})
			}
			promoted, err = repo.ReparentReplies(ctx, p.ID, p.ParentID)
			if err != nil {
				return err
			}
		}

		if err := repo.DeletePost(ctx, p.ID); err != nil {
			return err
		}
		return repo.TouchTopic(ctx, p.TopicID, e.now())
	})
	if err != nil {
		return err
	}

	slog.Info("post deleted", "id", postID, "actor_id", actor.ID, "promoted_replies", promoted)
	return nil
}

// AddComment attaches a comment to a post of an open topic.
func (e *Engine) AddComment(ctx context.Context, postID uuid.UUID, actor models.Actor, content string) (*models.ForumComment, error) {
	if err := requireSignedIn(actor); err != nil {
		return nil, err
	}
	if err := validation.Struct(commentContent{Content: content}); err != nil {
		return nil, err
	}

	var created *models.ForumComment
	err := e.store.InTx(ctx, func(repo Repository) error {
		p, err := loadPost(ctx, repo, postID)
		if err != nil {
			return err
		}
		t, err := loadTopic(ctx, repo, p.TopicID)
		if err != nil {
			return err
		}
		if t.IsClosed {
			return apperr.Newf(apperr.CodeTopicClosed, "topic %s is closed to new comments", t.ID)
		}

		now := e.now()
		c, err := repo.CreateComment(ctx, &models.ForumComment{
			PostID:    p.ID,
			TopicID:   t.ID,
			AuthorID:  actor.ID,
			Content:   content,
			CreatedAt: now,
		})
		if err != nil {
			return err
		}
		created = c
		return repo.TouchTopic(ctx, t.ID, now)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ListPosts returns a topic's posts. Flat mode returns every post oldest
// first with a shallow parent reference and ignores pagination.
// Hierarchical mode paginates root posts and attaches each root's direct
// replies, oldest first; deeper replies are not expanded.
func (e *Engine) ListPosts(ctx context.Context, topicID uuid.UUID, mode models.ListMode, page, pageSize int) (*models.PostPage, error) {
	if mode == "" {
		mode = models.ListModeHierarchical
	}
	if !mode.Valid() {
		return nil, apperr.ValidationWithDetails("validation failed",
			map[string]string{"mode": "must be one of: flat hierarchical"})
	}
	page, pageSize = normalizePage(page, pageSize)

	if _, err := loadTopic(ctx, e.store, topicID); err != nil {
		return nil, err
	}

	if mode == models.ListModeFlat {
		posts, err := e.store.ListPosts(ctx, topicID)
		if err != nil {
			return nil, err
		}
		if posts == nil {
			posts = []models.ForumPost{}
		}
		return &models.PostPage{
			Mode:       mode,
			Posts:      posts,
			Page:       1,
			PageSize:   len(posts),
			Total:      len(posts),
			TotalPages: 1,
		}, nil
	}

	offset, err := pageOffset(page, pageSize)
	if err != nil {
		return nil, err
	}
	total, err := e.store.CountRootPosts(ctx, topicID)
	if err != nil {
		return nil, err
	}
	roots, err := e.store.ListRootPosts(ctx, topicID, pageSize, offset)
	if err != nil {
		return nil, err
	}
	if roots == nil {
		roots = []models.ForumPost{}
	}

	if len(roots) > 0 {
		ids := make([]uuid.UUID, len(roots))
		for i, r := range roots {
			ids[i] = r.ID
		}
		replies, err := e.store.ListReplies(ctx, ids)
		if err != nil {
			return nil, err
		}
		attachReplies(roots, replies)
	}

	return &models.PostPage{
		Mode:       mode,
		Posts:      roots,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

// attachReplies groups replies under their root, preserving reply order.
func attachReplies(roots []models.ForumPost, replies []models.ForumPost) {
	index := make(map[uuid.UUID]int, len(roots))
	for i, r := range roots {
		index[r.ID] = i
	}
	for _, reply := range replies {
		if reply.ParentID == nil {
			continue
		}
		if i, ok := index[*reply.ParentID]; ok {
			roots[i].Replies = append(roots[i].Replies, reply)
		}
	}
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// pageOffset returns the row offset of page. Pages whose offset would not
// fit in an int are rejected.
func pageOffset(page, pageSize int) (int, error) {
	if page > math.MaxInt/pageSize {
		return 0, apperr.ValidationWithDetails("validation failed",
			map[string]string{"page": fmt.Sprintf("must be at most %d", math.MaxInt/pageSize)})
	}
	return (page - 1) * pageSize, nil
}
