// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alumnihub/internal/models"
)

func TestRankingStoreTopicActivity(t *testing.T) {
	db, mock := mockDB(t)
	s := NewRankingStore(db)
	since := time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC)
	id, author := uuid.New(), uuid.New()
	until := since.AddDate(0, 0, 7)
	last := since.AddDate(0, 0, 5)

	mock.ExpectQuery(`(?s)created_at BETWEEN \$1 AND \$2\) AS post_count.*FROM forum_topics t\s+WHERE t.last_activity_at BETWEEN \$1 AND \$2`).
		WithArgs(since, until).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "category_id", "title", "content", "author_id", "is_closed", "is_pinned",
			"last_activity_at", "created_at", "updated_at", "post_count", "comment_count",
		}).AddRow(id.String(), nil, "T", "body", author.String(), false, true, last, since, since, 3, 1))

	rows, err := s.TopicActivity(context.Background(), since, until)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, id, rows[0].Topic.ID)
	assert.True(t, rows[0].Topic.IsPinned)
	assert.Nil(t, rows[0].Topic.CategoryID)
	assert.Equal(t, 3, rows[0].PostCount)
	assert.Equal(t, 1, rows[0].CommentCount)
}

func TestRankingStoreTagAssociationCounts(t *testing.T) {
	db, mock := mockDB(t)
	s := NewRankingStore(db)
	ai := uuid.New()

	mock.ExpectQuery(`SELECT tag_id, COUNT\(\*\) FROM news_tags GROUP BY tag_id`).
		WillReturnRows(sqlmock.NewRows([]string{"tag_id", "count"}).AddRow(ai.String(), 2))

	counts, err := s.TagAssociationCounts(context.Background(), models.TagRelationNews)
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]int{ai: 2}, counts)
}

func TestRankingStoreUnknownRelation(t *testing.T) {
	db, _ := mockDB(t)
	_, err := NewRankingStore(db).TagAssociationCounts(context.Background(), "videos")
	assert.Error(t, err)
}
