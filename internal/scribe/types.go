package scribe

import (
	"context"

	"github.com/ericnishio/scribe-adapter/pkg/model"
)

//
// ────────────────────────────────────────────────
//   Collaborator Interfaces
// ────────────────────────────────────────────────
//

// Notifier delivers user-facing notices, for example when a login
// attempt is rejected.
type Notifier interface {
	Notify(ctx context.Context, n model.Notification)
}

// PostCreator publishes a new post. The live implementation calls the
// Scribe API; a stub implementation fakes the round trip for demos and
// offline development.
type PostCreator interface {
	CreatePost(ctx context.Context, draft model.PostDraft) (*model.Post, error)
}

// PostSource lists the posts available upstream.
type PostSource interface {
	ListPosts(ctx context.Context) ([]model.Post, error)
}

// PostSink persists synced posts locally.
type PostSink interface {
	UpsertPost(ctx context.Context, post model.Post) error
}

//
// ────────────────────────────────────────────────
//   Scribe API: Authentication
// ────────────────────────────────────────────────
//

// ScribeLoginRequest is the payload for POST /authenticate.
type ScribeLoginRequest struct {
	Identifier string `json:"identifier"`
	Secret     string `json:"secret"`
}

// ScribeLoginResponse is the response from POST /authenticate.
type ScribeLoginResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresAt   string `json:"expiresAt"` // RFC3339
}

//
// ────────────────────────────────────────────────
//   Scribe API: Posts
// ────────────────────────────────────────────────
//

// ScribePost is a blog post as the Scribe API serves it.
type ScribePost struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Author    string `json:"author,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// ScribePostListResponse is the response from GET /blog.
type ScribePostListResponse struct {
	Posts []ScribePost `json:"posts"`
	Total int          `json:"total,omitempty"`
}

// ScribeCreatePostRequest is the payload for POST /blog.
type ScribeCreatePostRequest struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	Author string `json:"author,omitempty"`
}

//
// ────────────────────────────────────────────────
//   Scribe API: Comments
// ────────────────────────────────────────────────
//

// ScribeCommentRequest is the payload for POST /blog/{id}/comments.
type ScribeCommentRequest struct {
	Author string `json:"author,omitempty"`
	Body   string `json:"body"`
}

//
// ────────────────────────────────────────────────
//   Scribe API: Error Response
// ────────────────────────────────────────────────
//

// ScribeErrorResponse represents an error response from the Scribe API.
type ScribeErrorResponse struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}
