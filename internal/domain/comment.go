package domain

import (
	"context"
	"time"
)

// RootParentID marks a comment that does not reply to another comment
const RootParentID int64 = 0

// Comment is a single persisted comment record
type Comment struct {
	ID        int64     `db:"id" json:"id"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UserID    int64     `db:"user_id" json:"user_id"`
	ParentID  int64     `db:"parent_id" json:"parent_id"`

	// Author is joined from the owning user on reads
	Author Profile `db:"author" json:"user"`
}

// IsRoot reports whether the comment sits at the top level of the forest
func (c *Comment) IsRoot() bool {
	return c.ParentID == RootParentID
}

// CommentNode is a comment with its replies, newest first.
// Children is never nil.
type CommentNode struct {
	Comment
	Children []CommentNode `json:"children"`
}

// CommentRepository defines data access for comments
type CommentRepository interface {
	// Create persists the comment and fills in ID.
	// CreatedAt is kept if set, otherwise assigned by the store.
	Create(ctx context.Context, comment *Comment) error
	// ListOrderedByCreatedDesc returns every comment, newest first.
	ListOrderedByCreatedDesc(ctx context.Context) ([]Comment, error)
	FindByID(ctx context.Context, id int64) (*Comment, error)
}
