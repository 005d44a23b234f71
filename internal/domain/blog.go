package domain

import (
	"time"

	"github.com/google/uuid"
)

// Category groups posts. Color is a display hex string assigned at creation.
type Category struct {
	ID    uuid.UUID
	Name  string
	Color string
}

// Post is a blog entry authored by a user.
type Post struct {
	ID         uuid.UUID
	Title      string
	Content    string
	AuthorID   uuid.UUID
	CategoryID *uuid.UUID
	Published  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Comment belongs to a post.
type Comment struct {
	ID        uuid.UUID
	PostID    uuid.UUID
	AuthorID  uuid.UUID
	Content   string
	CreatedAt time.Time
}
