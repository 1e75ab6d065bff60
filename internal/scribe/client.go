package scribe

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/ericnishio/scribe-adapter/internal/httpclient"
	"github.com/ericnishio/scribe-adapter/pkg/model"
)

// Rate limiter keys. Auth traffic and content traffic draw from
// separate buckets.
const (
	rateKeyAuth    = "auth"
	rateKeyContent = "content"
)

// Client wraps low-level HTTP communication with the Scribe API.
// Whether a call carries the bearer token is decided per endpoint; the
// dispatcher attaches it only when the descriptor asks and a valid
// token is held.
type Client struct {
	logger *zap.Logger
	disp   *httpclient.Dispatcher
	mapper *Mapper
}

// NewClient constructs a Scribe API client on top of a request dispatcher.
func NewClient(logger *zap.Logger, disp *httpclient.Dispatcher) *Client {
	return &Client{
		logger: logger,
		disp:   disp,
		mapper: NewMapper(),
	}
}

// Authenticate exchanges credentials for an access token.
// POST /authenticate
func (c *Client) Authenticate(ctx context.Context, identifier, secret string) (*ScribeLoginResponse, error) {
	var resp ScribeLoginResponse
	err := c.disp.DoJSON(ctx, httpclient.Descriptor{
		Op:       "authenticate",
		Method:   http.MethodPost,
		Endpoint: "/authenticate",
		Payload:  &ScribeLoginRequest{Identifier: identifier, Secret: secret},
		RateKey:  rateKeyAuth,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("authenticate: empty access token in response")
	}
	return &resp, nil
}

// FetchPost retrieves a single post. Public content, so no token is sent.
// GET /blog/{id}
func (c *Client) FetchPost(ctx context.Context, id string) (*model.Post, error) {
	var wire ScribePost
	err := c.disp.DoJSON(ctx, httpclient.Descriptor{
		Op:       "fetch_post",
		Method:   http.MethodGet,
		Endpoint: "/blog/" + id,
		RateKey:  rateKeyContent,
	}, &wire)
	if err != nil {
		return nil, err
	}
	post := c.mapper.FromScribePost(wire)
	return &post, nil
}

// ListPosts retrieves the post catalog. Public content, so no token is sent.
// GET /blog
func (c *Client) ListPosts(ctx context.Context) ([]model.Post, error) {
	var wire ScribePostListResponse
	err := c.disp.DoJSON(ctx, httpclient.Descriptor{
		Op:       "list_posts",
		Method:   http.MethodGet,
		Endpoint: "/blog",
		RateKey:  rateKeyContent,
	}, &wire)
	if err != nil {
		return nil, err
	}
	return c.mapper.FromScribePosts(&wire), nil
}

// CreatePost publishes a new post. Requires an authenticated session.
// POST /blog
func (c *Client) CreatePost(ctx context.Context, draft model.PostDraft) (*model.Post, error) {
	var wire ScribePost
	err := c.disp.DoJSON(ctx, httpclient.Descriptor{
		Op:           "create_post",
		Method:       http.MethodPost,
		Endpoint:     "/blog",
		Payload:      c.mapper.ToScribeCreateRequest(draft),
		RequiresAuth: true,
		RateKey:      rateKeyContent,
	}, &wire)
	if err != nil {
		return nil, err
	}
	post := c.mapper.FromScribePost(wire)
	return &post, nil
}

// PostComment submits a comment on a post. Requires an authenticated
// session; the response body is discarded.
// POST /blog/{id}/comments
func (c *Client) PostComment(ctx context.Context, postID string, draft model.CommentDraft) error {
	return c.disp.DoJSON(ctx, httpclient.Descriptor{
		Op:           "post_comment",
		Method:       http.MethodPost,
		Endpoint:     "/blog/" + postID + "/comments",
		Payload:      c.mapper.ToScribeCommentRequest(draft),
		RequiresAuth: true,
		RateKey:      rateKeyContent,
	}, nil)
}
