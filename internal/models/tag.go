// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Tag labels news, articles, and gallery items.
type Tag struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// TagRelation names one of the join tables that link tags to content.
type TagRelation string

const (
	TagRelationNews      TagRelation = "news"
	TagRelationArticles  TagRelation = "articles"
	TagRelationGalleries TagRelation = "galleries"
)

// TagRelations lists every relation that contributes to tag popularity.
var TagRelations = []TagRelation{TagRelationNews, TagRelationArticles, TagRelationGalleries}

// PopularTag is a tag with its all-time association count.
type PopularTag struct {
	Tag
	Score     int `json:"score"`
	News      int `json:"news"`
	Articles  int `json:"articles"`
	Galleries int `json:"galleries"`
}

// TopicActivity is a topic together with the posts and comments created
// inside a time window.
type TopicActivity struct {
	Topic        ForumTopic
	PostCount    int
	CommentCount int
}

// TrendingTopic is a topic ranked by in-window activity.
type TrendingTopic struct {
	ForumTopic
	Score        int `json:"score"`
	PostCount    int `json:"post_count"`
	CommentCount int `json:"comment_count"`
}
