package api

import (
	"time"

	"github.com/ericnishio/scribe-adapter/pkg/model"
)

// SessionResponse reports the session state after a login, logout or query.
type SessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	ExpiresAt     string `json:"expiresAt,omitempty"`
}

// PostResponse is a post as this API serves it.
type PostResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Author    string `json:"author,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// PostListResponse wraps a page of posts.
type PostListResponse struct {
	Posts []PostResponse `json:"posts"`
	Count int            `json:"count"`
}

// toPostResponse converts a canonical Post to the API shape.
func toPostResponse(p model.Post) PostResponse {
	resp := PostResponse{
		ID:     p.ID,
		Title:  p.Title,
		Body:   p.Body,
		Author: p.Author,
	}
	if !p.CreatedAt.IsZero() {
		resp.CreatedAt = p.CreatedAt.Format(time.RFC3339)
	}
	return resp
}

// toPostListResponse converts a slice of canonical Posts to the API shape.
func toPostListResponse(posts []model.Post) PostListResponse {
	out := PostListResponse{Posts: make([]PostResponse, 0, len(posts)), Count: len(posts)}
	for _, p := range posts {
		out.Posts = append(out.Posts, toPostResponse(p))
	}
	return out
}
