package scribe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericnishio/scribe-adapter/pkg/model"
)

func TestMapper_FromScribePost(t *testing.T) {
	m := NewMapper()

	post := m.FromScribePost(ScribePost{
		ID:        "42",
		Title:     "On Writing",
		Body:      "Plain words carry best.",
		Author:    "E. Nishio",
		CreatedAt: "2026-05-01T10:00:00Z",
	})

	assert.Equal(t, "42", post.ID)
	assert.Equal(t, "On Writing", post.Title)
	assert.Equal(t, "E. Nishio", post.Author)
	assert.Equal(t, time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC), post.CreatedAt)
}

func TestMapper_FromScribePost_BadTimestamp(t *testing.T) {
	m := NewMapper()

	post := m.FromScribePost(ScribePost{ID: "1", Title: "t", CreatedAt: "yesterday"})
	assert.True(t, post.CreatedAt.IsZero())
}

func TestMapper_FromScribePosts(t *testing.T) {
	m := NewMapper()

	posts := m.FromScribePosts(&ScribePostListResponse{
		Posts: []ScribePost{{ID: "1"}, {ID: "2"}},
	})
	require.Len(t, posts, 2)
	assert.Equal(t, "1", posts[0].ID)
	assert.Equal(t, "2", posts[1].ID)

	assert.Empty(t, m.FromScribePosts(&ScribePostListResponse{}))
}

func TestMapper_ToScribeCreateRequest(t *testing.T) {
	m := NewMapper()

	req := m.ToScribeCreateRequest(model.PostDraft{Title: "T", Body: "B", Author: "A"})
	assert.Equal(t, "T", req.Title)
	assert.Equal(t, "B", req.Body)
	assert.Equal(t, "A", req.Author)
}
