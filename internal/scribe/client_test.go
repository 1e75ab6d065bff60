package scribe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericnishio/scribe-adapter/internal/httpclient"
	"github.com/ericnishio/scribe-adapter/internal/session"
	"github.com/ericnishio/scribe-adapter/pkg/model"
)

func TestClient_Authenticate(t *testing.T) {
	server := newMockScribeServer(t, validLogin(), nil, nil)
	client, _ := newTestClient(t, server)

	resp, err := client.Authenticate(context.Background(), "writer@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok-from-server", resp.AccessToken)

	req := server.lastRequest(t)
	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, "/authenticate", req.Path)
	assert.Empty(t, req.Auth, "login itself must not carry a bearer token")
}

func TestClient_Authenticate_Rejected(t *testing.T) {
	server := newMockScribeServer(t, nil, nil, nil)
	client, _ := newTestClient(t, server)

	_, err := client.Authenticate(context.Background(), "writer@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, httpclient.IsUnauthorized(err))
}

func TestClient_FetchPost_NoAuthHeader(t *testing.T) {
	server := newMockScribeServer(t, nil, samplePost(), nil)
	client, sess := newTestClient(t, server)

	// Even with a valid session, public reads go out bare.
	sess.SetToken(session.AccessToken{Value: "tok-held", ExpiresAt: time.Now().Add(time.Hour)})

	post, err := client.FetchPost(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "42", post.ID)
	assert.Equal(t, "On Writing", post.Title)
	assert.Equal(t, 2026, post.CreatedAt.Year())

	req := server.lastRequest(t)
	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "/blog/42", req.Path)
	assert.Empty(t, req.Auth)
}

func TestClient_FetchPost_NotFound(t *testing.T) {
	server := newMockScribeServer(t, nil, nil, nil)
	client, _ := newTestClient(t, server)

	_, err := client.FetchPost(context.Background(), "999")
	require.Error(t, err)
	assert.True(t, httpclient.IsNotFound(err))
}

func TestClient_ListPosts(t *testing.T) {
	list := &ScribePostListResponse{
		Posts: []ScribePost{*samplePost(), {ID: "43", Title: "Second"}},
		Total: 2,
	}
	server := newMockScribeServer(t, nil, nil, list)
	client, _ := newTestClient(t, server)

	posts, err := client.ListPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "42", posts[0].ID)
	assert.Equal(t, "43", posts[1].ID)

	req := server.lastRequest(t)
	assert.Equal(t, "/blog", req.Path)
	assert.Empty(t, req.Auth)
}

func TestClient_CreatePost_SendsBearer(t *testing.T) {
	server := newMockScribeServer(t, nil, samplePost(), nil)
	client, sess := newTestClient(t, server)
	sess.SetToken(session.AccessToken{Value: "tok-held", ExpiresAt: time.Now().Add(time.Hour)})

	post, err := client.CreatePost(context.Background(), model.PostDraft{Title: "On Writing", Body: "Plain words carry best."})
	require.NoError(t, err)
	assert.Equal(t, "42", post.ID)

	req := server.lastRequest(t)
	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, "/blog", req.Path)
	require.Len(t, req.Auth, 1)
	assert.Equal(t, "Bearer tok-held", req.Auth[0])
}

func TestClient_CreatePost_NoSessionSendsNoHeader(t *testing.T) {
	server := newMockScribeServer(t, nil, samplePost(), nil)
	client, _ := newTestClient(t, server)

	// Default policy lets the call through without a token; the server
	// is the one who decides to reject it.
	_, err := client.CreatePost(context.Background(), model.PostDraft{Title: "t", Body: "b"})
	require.NoError(t, err)

	req := server.lastRequest(t)
	assert.Empty(t, req.Auth, "no valid token means no Authorization header at all")
}

func TestClient_PostComment_SendsBearerAndDiscardsBody(t *testing.T) {
	server := newMockScribeServer(t, nil, nil, nil)
	client, sess := newTestClient(t, server)
	sess.SetToken(session.AccessToken{Value: "tok-held", ExpiresAt: time.Now().Add(time.Hour)})

	err := client.PostComment(context.Background(), "42", model.CommentDraft{Author: "reader", Body: "Lovely."})
	require.NoError(t, err)

	req := server.lastRequest(t)
	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, "/blog/42/comments", req.Path)
	require.Len(t, req.Auth, 1)
	assert.Equal(t, "Bearer tok-held", req.Auth[0])
}

func TestClient_ExpiredTokenSendsNoHeader(t *testing.T) {
	server := newMockScribeServer(t, nil, nil, nil)
	client, sess := newTestClient(t, server)
	sess.SetToken(session.AccessToken{Value: "tok-stale", ExpiresAt: time.Now().Add(-time.Minute)})

	err := client.PostComment(context.Background(), "42", model.CommentDraft{Body: "late"})
	require.NoError(t, err)

	req := server.lastRequest(t)
	assert.Empty(t, req.Auth, "expired token must not be attached")
}
