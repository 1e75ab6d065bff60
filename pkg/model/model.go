package model

import (
	"time"

	"github.com/google/uuid"
)

// Post is the canonical representation of a Scribe blog post.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Author    string    `json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment is a reader comment attached to a post.
type Comment struct {
	ID        string    `json:"id,omitempty"`
	PostID    string    `json:"post_id"`
	Author    string    `json:"author,omitempty"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// PostDraft carries caller-supplied content for a new post.
type PostDraft struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	Author string `json:"author,omitempty"`
}

// CommentDraft carries caller-supplied content for a new comment.
type CommentDraft struct {
	Author string `json:"author,omitempty"`
	Body   string `json:"body"`
}

// Notification severity levels.
const (
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Notification is a user-facing message raised by the adapter, typically when
// a swallowed failure (e.g. login) still needs to surface somewhere.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	Level     string    `json:"level"` // "info" | "warn" | "error"
	Source    string    `json:"source"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNotification builds a Notification with a fresh ID and timestamp.
func NewNotification(level, source, message string) Notification {
	return Notification{
		ID:        uuid.New(),
		Level:     level,
		Source:    source,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
}
