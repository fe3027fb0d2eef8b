// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "github.com/google/uuid"

// Actor identifies who is performing an operation and what they may do.
// It is resolved once by the HTTP layer and passed into every engine call.
type Actor struct {
	ID      uuid.UUID `json:"id"`
	IsAdmin bool      `json:"is_admin"`
}

// IsAuthor returns true if the actor wrote the resource owned by authorID.
func (a Actor) IsAuthor(authorID uuid.UUID) bool {
	return a.ID != uuid.Nil && a.ID == authorID
}

// CanModerate returns true if the actor is the author or an admin.
func (a Actor) CanModerate(authorID uuid.UUID) bool {
	return a.IsAdmin || a.IsAuthor(authorID)
}
