// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"alumnihub/internal/models"
)

// RankingStore reads the aggregate counts the ranking engine orders.
type RankingStore struct {
	q DBTX
}

// NewRankingStore returns a new RankingStore.
func NewRankingStore(db *sql.DB) *RankingStore {
	return &RankingStore{q: db}
}

// tagJoinTables maps each tag relation to its join table.
var tagJoinTables = map[models.TagRelation]string{
	models.TagRelationNews:      "news_tags",
	models.TagRelationArticles:  "article_tags",
	models.TagRelationGalleries: "gallery_tags",
}

// TopicActivity returns topics active between since and until together
// with the posts and comments created in that range.
func (s *RankingStore) TopicActivity(ctx context.Context, since, until time.Time) ([]models.TopicActivity, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT t.id, t.category_id, t.title, t.content, t.author_id, t.is_closed, t.is_pinned,
		       t.last_activity_at, t.created_at, t.updated_at,
		       (SELECT COUNT(*) FROM forum_posts p
		         WHERE p.topic_id = t.id AND p.created_at BETWEEN $1 AND $2) AS post_count,
		       (SELECT COUNT(*) FROM forum_comments c
		         WHERE c.topic_id = t.id AND c.created_at BETWEEN $1 AND $2) AS comment_count
		FROM forum_topics t
		WHERE t.last_activity_at BETWEEN $1 AND $2
	`, since, until)
	if err != nil {
		return nil, fmt.Errorf("topic activity: %w", err)
	}
	defer rows.Close()

	var out []models.TopicActivity
	for rows.Next() {
		var a models.TopicActivity
		t := &a.Topic
		err := rows.Scan(
			&t.ID, &t.CategoryID, &t.Title, &t.Content, &t.AuthorID,
			&t.IsClosed, &t.IsPinned, &t.LastActivityAt, &t.CreatedAt, &t.UpdatedAt,
			&a.PostCount, &a.CommentCount,
		)
		if err != nil {
			return nil, fmt.Errorf("topic activity: scan: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// TagAssociationCounts counts, per tag, the rows of one join table.
func (s *RankingStore) TagAssociationCounts(ctx context.Context, rel models.TagRelation) (map[uuid.UUID]int, error) {
	table, ok := tagJoinTables[rel]
	if !ok {
		return nil, fmt.Errorf("unknown tag relation %q", rel)
	}

	rows, err := s.q.QueryContext(ctx, `SELECT tag_id, COUNT(*) FROM `+table+` GROUP BY tag_id`)
	if err != nil {
		return nil, fmt.Errorf("count %s: %w", table, err)
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int)
	for rows.Next() {
		var (
			id uuid.UUID
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("count %s: scan: %w", table, err)
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

// ListTags returns every tag ordered by name.
func (s *RankingStore) ListTags(ctx context.Context) ([]models.Tag, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT id, name, slug, created_at FROM tags ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("list tags: scan: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
