// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Category represents a node in the portal's category taxonomy.
// Topics, news, articles, and events can be filed under a category.
type Category struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Virtual fields populated by store and engine methods.
	Children   []Category `json:"children,omitempty"`
	Depth      int        `json:"depth"`
	TopicCount int        `json:"topic_count"`
}

// IsRoot returns true if the category has no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// Crumb is one step of a breadcrumb path.
type Crumb struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// CategoryDependents counts the rows that keep a category from being
// deleted without force.
type CategoryDependents struct {
	Children int `json:"children"`
	Topics   int `json:"topics"`
	News     int `json:"news"`
	Articles int `json:"articles"`
	Events   int `json:"events"`
}

// Total returns the number of dependent rows across all relations.
func (d CategoryDependents) Total() int {
	return d.Children + d.Topics + d.News + d.Articles + d.Events
}

// Relations returns only the relations that have dependents, keyed by
// relation name.
func (d CategoryDependents) Relations() map[string]int {
	out := map[string]int{}
	for name, n := range map[string]int{
		"children": d.Children,
		"topics":   d.Topics,
		"news":     d.News,
		"articles": d.Articles,
		"events":   d.Events,
	} {
		if n > 0 {
			out[name] = n
		}
	}
	return out
}
