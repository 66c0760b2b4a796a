// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Post is a blog entry written by a single author.
type Post struct {
	ID         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	AuthorID   uuid.UUID  `json:"author_id"`
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// OwnerID returns the author, which is the owner for authorization checks.
func (p *Post) OwnerID() uuid.UUID {
	return p.AuthorID
}

// PostPatch carries the optional fields of a post update. Nil fields are
// left untouched.
type PostPatch struct {
	Title   *string
	Content *string
}

// IsEmpty reports whether the patch changes nothing.
func (p PostPatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil
}

// PostFilter is the predicate shared by a page query and its count.
// Empty fields are not part of the predicate.
type PostFilter struct {
	Title         string     `json:"title,omitempty"`
	Content       string     `json:"content,omitempty"`
	AuthorID      *uuid.UUID `json:"author_id,omitempty"`
	CategoryID    *uuid.UUID `json:"category_id,omitempty"`
	CaseSensitive bool       `json:"case_sensitive,omitempty"`
}

// IsEmpty reports whether the filter matches every post.
func (f PostFilter) IsEmpty() bool {
	return f.Title == "" && f.Content == "" && f.AuthorID == nil && f.CategoryID == nil
}
