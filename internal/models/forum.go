// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// ForumTopic is a discussion thread. IsClosed and IsPinned are independent
// flags: a closed topic accepts no new posts or edits, a pinned topic sorts
// ahead of its peers.
type ForumTopic struct {
	ID             uuid.UUID  `json:"id"`
	CategoryID     *uuid.UUID `json:"category_id"`
	Title          string     `json:"title"`
	Content        string     `json:"content"`
	AuthorID       uuid.UUID  `json:"author_id"`
	IsClosed       bool       `json:"is_closed"`
	IsPinned       bool       `json:"is_pinned"`
	LastActivityAt time.Time  `json:"last_activity_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ForumPost is a message inside a topic. Posts with a ParentID are replies;
// the parent always belongs to the same topic.
type ForumPost struct {
	ID        uuid.UUID  `json:"id"`
	TopicID   uuid.UUID  `json:"topic_id"`
	AuthorID  uuid.UUID  `json:"author_id"`
	Content   string     `json:"content"`
	ParentID  *uuid.UUID `json:"parent_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Virtual fields populated depending on the listing mode.
	Parent  *PostRef    `json:"parent,omitempty"`
	Replies []ForumPost `json:"replies,omitempty"`
}

// IsReply returns true if the post answers another post.
func (p *ForumPost) IsReply() bool {
	return p.ParentID != nil
}

// PostRef is the shallow view of a parent post shown next to a reply in
// flat listings.
type PostRef struct {
	ID       uuid.UUID `json:"id"`
	Content  string    `json:"content"`
	AuthorID uuid.UUID `json:"author_id"`
}

// ForumComment is a short remark attached to a post. Comments are counted
// as topic activity alongside posts.
type ForumComment struct {
	ID        uuid.UUID `json:"id"`
	PostID    uuid.UUID `json:"post_id"`
	TopicID   uuid.UUID `json:"topic_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ListMode selects how posts of a topic are returned.
type ListMode string

const (
	// ListModeFlat returns every post oldest first with a shallow parent reference.
	ListModeFlat ListMode = "flat"
	// ListModeHierarchical returns paginated root posts with their direct replies.
	ListModeHierarchical ListMode = "hierarchical"
)

// Valid returns true for a known listing mode.
func (m ListMode) Valid() bool {
	return m == ListModeFlat || m == ListModeHierarchical
}

// PostPage is one page of a topic's posts.
type PostPage struct {
	Mode       ListMode    `json:"mode"`
	Posts      []ForumPost `json:"posts"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	Total      int         `json:"total"`
	TotalPages int         `json:"total_pages"`
}
