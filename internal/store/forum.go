// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"alumnihub/internal/apperr"
	"alumnihub/internal/discussion"
	"alumnihub/internal/models"
)

// ForumStore manages topics, posts, and comments in the database.
type ForumStore struct {
	db         *sql.DB
	q          DBTX
	maxRetries int
}

// NewForumStore returns a new ForumStore.
func NewForumStore(db *sql.DB, maxRetries int) *ForumStore {
	return &ForumStore{db: db, q: db, maxRetries: maxRetries}
}

// InTx runs fn against a copy of the store bound to a serializable
// transaction, retrying on serialization conflicts.
func (s *ForumStore) InTx(ctx context.Context, fn func(discussion.Repository) error) error {
	return RunSerializable(ctx, s.db, s.maxRetries, func(tx *sql.Tx) error {
		return fn(&ForumStore{db: s.db, q: tx, maxRetries: s.maxRetries})
	})
}

const topicColumns = `id, category_id, title, content, author_id, is_closed, is_pinned,
	last_activity_at, created_at, updated_at`

const postColumns = `id, topic_id, author_id, content, parent_id, created_at, updated_at`

func scanTopic(scanner rowScanner) (*models.ForumTopic, error) {
	var t models.ForumTopic
	err := scanner.Scan(
		&t.ID, &t.CategoryID, &t.Title, &t.Content, &t.AuthorID,
		&t.IsClosed, &t.IsPinned, &t.LastActivityAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func scanPost(scanner rowScanner) (*models.ForumPost, error) {
	var p models.ForumPost
	err := scanner.Scan(
		&p.ID, &p.TopicID, &p.AuthorID, &p.Content, &p.ParentID,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ForumStore) queryPosts(ctx context.Context, op, query string, args ...any) ([]models.ForumPost, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var posts []models.ForumPost
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// CategoryExists reports whether a category row exists.
func (s *ForumStore) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var ok bool
	err := s.q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, id).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check category: %w", err)
	}
	return ok, nil
}

// FindTopic retrieves a topic by ID. Returns nil if not found.
func (s *ForumStore) FindTopic(ctx context.Context, id uuid.UUID) (*models.ForumTopic, error) {
	t, err := scanTopic(s.q.QueryRowContext(ctx, `SELECT `+topicColumns+` FROM forum_topics WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find topic: %w", err)
	}
	return t, nil
}

// CreateTopic inserts a new topic and returns it.
func (s *ForumStore) CreateTopic(ctx context.Context, t *models.ForumTopic) (*models.ForumTopic, error) {
	row := s.q.QueryRowContext(ctx, `
		INSERT INTO forum_topics (category_id, title, content, author_id, last_activity_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5, $5)
		RETURNING `+topicColumns,
		t.CategoryID, t.Title, t.Content, t.AuthorID, t.LastActivityAt,
	)
	created, err := scanTopic(row)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return nil, apperr.NotFoundf("category %s not found", *t.CategoryID)
		}
		return nil, fmt.Errorf("create topic: %w", err)
	}
	return created, nil
}

// SetTopicFlags writes the closed and pinned flags and the activity time.
func (s *ForumStore) SetTopicFlags(ctx context.Context, id uuid.UUID, closed, pinned bool, at time.Time) error {
	_, err := s.q.ExecContext(ctx, `
		UPDATE forum_topics
		SET is_closed = $1, is_pinned = $2, last_activity_at = $3, updated_at = $3
		WHERE id = $4
	`, closed, pinned, at, id)
	if err != nil {
		return fmt.Errorf("set topic flags: %w", err)
	}
	return nil
}

// TouchTopic records activity on a topic.
func (s *ForumStore) TouchTopic(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := s.q.ExecContext(ctx, `UPDATE forum_topics SET last_activity_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("touch topic: %w", err)
	}
	return nil
}

// FindPost retrieves a post by ID. Returns nil if not found.
func (s *ForumStore) FindPost(ctx context.Context, id uuid.UUID) (*models.ForumPost, error) {
	p, err := scanPost(s.q.QueryRowContext(ctx, `SELECT `+postColumns+` FROM forum_posts WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	return p, nil
}

// CreatePost inserts a new post and returns it. The composite parent
// foreign key rejects a parent from another topic.
func (s *ForumStore) CreatePost(ctx context.Context, p *models.ForumPost) (*models.ForumPost, error) {
	row := s.q.QueryRowContext(ctx, `
		INSERT INTO forum_posts (topic_id, author_id, content, parent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+postColumns,
		p.TopicID, p.AuthorID, p.Content, p.ParentID, p.CreatedAt, p.UpdatedAt,
	)
	created, err := scanPost(row)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation && pgConstraint(err) == "forum_posts_parent_fkey" {
			return nil, apperr.ErrParentPostNotFound
		}
		return nil, fmt.Errorf("create post: %w", err)
	}
	return created, nil
}

// UpdatePostContent replaces the content of a post.
func (s *ForumStore) UpdatePostContent(ctx context.Context, id uuid.UUID, content string, at time.Time) error {
	_, err := s.q.ExecContext(ctx,
		`UPDATE forum_posts SET content = $1, updated_at = $2 WHERE id = $3`,
		content, at, id,
	)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// DeletePost removes a post and, by cascade, its comments. Replies must
// have been reparented first.
func (s *ForumStore) DeletePost(ctx context.Context, id uuid.UUID) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM forum_posts WHERE id = $1`, id)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return apperr.ErrHasReplies
		}
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// CountReplies counts the direct replies of a post.
func (s *ForumStore) CountReplies(ctx context.Context, postID uuid.UUID) (int, error) {
	var n int
	err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM forum_posts WHERE parent_id = $1`, postID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count replies: %w", err)
	}
	return n, nil
}

// ReparentReplies moves the direct replies of postID under newParent.
func (s *ForumStore) ReparentReplies(ctx context.Context, postID uuid.UUID, newParent *uuid.UUID) (int64, error) {
	res, err := s.q.ExecContext(ctx,
		`UPDATE forum_posts SET parent_id = $1 WHERE parent_id = $2`,
		newParent, postID,
	)
	if err != nil {
		return 0, fmt.Errorf("reparent replies: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reparent replies: %w", err)
	}
	return n, nil
}

// ListPosts returns every post of a topic oldest first, with a shallow
// reference to each reply's parent.
func (s *ForumStore) ListPosts(ctx context.Context, topicID uuid.UUID) ([]models.ForumPost, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT p.id, p.topic_id, p.author_id, p.content, p.parent_id, p.created_at, p.updated_at,
		       pp.id, pp.content, pp.author_id
		FROM forum_posts p
		LEFT JOIN forum_posts pp ON pp.id = p.parent_id
		WHERE p.topic_id = $1
		ORDER BY p.created_at, p.id
	`, topicID)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []models.ForumPost
	for rows.Next() {
		var (
			p          models.ForumPost
			parentID   *uuid.UUID
			parentBody sql.NullString
			parentBy   *uuid.UUID
		)
		err := rows.Scan(
			&p.ID, &p.TopicID, &p.AuthorID, &p.Content, &p.ParentID, &p.CreatedAt, &p.UpdatedAt,
			&parentID, &parentBody, &parentBy,
		)
		if err != nil {
			return nil, fmt.Errorf("list posts: scan: %w", err)
		}
		if parentID != nil {
			p.Parent = &models.PostRef{ID: *parentID, Content: parentBody.String}
			if parentBy != nil {
				p.Parent.AuthorID = *parentBy
			}
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// CountRootPosts counts the posts of a topic that are not replies.
func (s *ForumStore) CountRootPosts(ctx context.Context, topicID uuid.UUID) (int, error) {
	var n int
	err := s.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM forum_posts WHERE topic_id = $1 AND parent_id IS NULL`, topicID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count root posts: %w", err)
	}
	return n, nil
}

// ListRootPosts returns one page of a topic's root posts, oldest first.
func (s *ForumStore) ListRootPosts(ctx context.Context, topicID uuid.UUID, limit, offset int) ([]models.ForumPost, error) {
	return s.queryPosts(ctx, "list root posts", `
		SELECT `+postColumns+`
		FROM forum_posts
		WHERE topic_id = $1 AND parent_id IS NULL
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3
	`, topicID, limit, offset)
}

// ListReplies returns the direct replies of the given posts, oldest first.
func (s *ForumStore) ListReplies(ctx context.Context, parentIDs []uuid.UUID) ([]models.ForumPost, error) {
	return s.queryPosts(ctx, "list replies", `
		SELECT `+postColumns+`
		FROM forum_posts
		WHERE parent_id = ANY($1::uuid[])
		ORDER BY created_at, id
	`, uuidArray(parentIDs))
}

// CreateComment inserts a comment on a post.
func (s *ForumStore) CreateComment(ctx context.Context, c *models.ForumComment) (*models.ForumComment, error) {
	created := *c
	err := s.q.QueryRowContext(ctx, `
		INSERT INTO forum_comments (post_id, topic_id, author_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, c.PostID, c.TopicID, c.AuthorID, c.Content, c.CreatedAt).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return &created, nil
}
