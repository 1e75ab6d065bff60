package scribe

import (
	"time"

	"github.com/ericnishio/scribe-adapter/pkg/model"
)

//
// ────────────────────────────────────────────────
//   Mapper – Converts between Scribe and Canonical
// ────────────────────────────────────────────────
//

// Mapper translates between Scribe API payloads and canonical domain models.
type Mapper struct{}

// NewMapper constructs a Mapper instance.
func NewMapper() *Mapper { return &Mapper{} }

// FromScribePost converts an API post to a canonical Post. Timestamps
// arrive as RFC3339 strings; an unparseable value maps to the zero time.
func (m *Mapper) FromScribePost(p ScribePost) model.Post {
	createdAt, _ := time.Parse(time.RFC3339, p.CreatedAt)

	return model.Post{
		ID:        p.ID,
		Title:     p.Title,
		Body:      p.Body,
		Author:    p.Author,
		CreatedAt: createdAt,
	}
}

// FromScribePosts converts a list response to canonical Posts.
func (m *Mapper) FromScribePosts(resp *ScribePostListResponse) []model.Post {
	posts := make([]model.Post, 0, len(resp.Posts))
	for _, p := range resp.Posts {
		posts = append(posts, m.FromScribePost(p))
	}
	return posts
}

// ToScribeCreateRequest converts a canonical draft to the API's create payload.
func (m *Mapper) ToScribeCreateRequest(d model.PostDraft) *ScribeCreatePostRequest {
	return &ScribeCreatePostRequest{
		Title:  d.Title,
		Body:   d.Body,
		Author: d.Author,
	}
}

// ToScribeCommentRequest converts a canonical comment draft to the API payload.
func (m *Mapper) ToScribeCommentRequest(d model.CommentDraft) *ScribeCommentRequest {
	return &ScribeCommentRequest{
		Author: d.Author,
		Body:   d.Body,
	}
}
