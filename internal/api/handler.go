package api

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ericnishio/scribe-adapter/internal/httpclient"
	"github.com/ericnishio/scribe-adapter/internal/store"
	"github.com/ericnishio/scribe-adapter/pkg/model"
)

// ContentService defines the session and content operations used by the handler.
type ContentService interface {
	Login(ctx context.Context, identifier, secret string) bool
	Logout()
	IsAuthenticated() bool
	SessionExpiry() (time.Time, bool)
	GetPost(ctx context.Context, id string) (*model.Post, error)
	CreatePost(ctx context.Context, draft model.PostDraft) (*model.Post, error)
	Comment(ctx context.Context, postID string, draft model.CommentDraft) error
}

// CatalogReader serves posts from the locally synced catalog.
type CatalogReader interface {
	ListPosts(ctx context.Context, limit int) ([]model.Post, error)
}

// ScribeHandler handles HTTP API requests for Scribe operations.
type ScribeHandler struct {
	logger  *zap.Logger
	service ContentService
	catalog CatalogReader
}

// NewScribeHandler creates a new ScribeHandler. A nil catalog disables
// the local listing endpoint.
func NewScribeHandler(logger *zap.Logger, service ContentService, catalog CatalogReader) *ScribeHandler {
	return &ScribeHandler{
		logger:  logger,
		service: service,
		catalog: catalog,
	}
}

// sessionResponse snapshots the current session state.
func (h *ScribeHandler) sessionResponse() SessionResponse {
	resp := SessionResponse{Authenticated: h.service.IsAuthenticated()}
	if exp, ok := h.service.SessionExpiry(); ok && resp.Authenticated {
		resp.ExpiresAt = exp.Format(time.RFC3339)
	}
	return resp
}

// LoginHandler starts a session. A rejected login is not an HTTP error:
// the response reports authenticated=false and the detail goes through
// the notifier.
func (h *ScribeHandler) LoginHandler(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	h.service.Login(c.Context(), req.Identifier, req.Secret)
	return c.Status(fiber.StatusOK).JSON(h.sessionResponse())
}

// LogoutHandler drops the session. Always succeeds.
func (h *ScribeHandler) LogoutHandler(c *fiber.Ctx) error {
	h.service.Logout()
	return c.SendStatus(fiber.StatusNoContent)
}

// SessionHandler reports the current session state.
func (h *ScribeHandler) SessionHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.sessionResponse())
}

// GetPostHandler fetches one post from the Scribe API.
func (h *ScribeHandler) GetPostHandler(c *fiber.Ctx) error {
	id := c.Params("id")

	post, err := h.service.GetPost(c.Context(), id)
	if err != nil {
		if httpclient.IsNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "post not found"})
		}
		h.logger.Error("api.get_post_failed",
			zap.String("post_id", id),
			zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(toPostResponse(*post))
}

// CreatePostHandler publishes a new post.
func (h *ScribeHandler) CreatePostHandler(c *fiber.Ctx) error {
	var req CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	post, err := h.service.CreatePost(c.Context(), model.PostDraft{
		Title:  req.Title,
		Body:   req.Body,
		Author: req.Author,
	})
	if err != nil {
		if httpclient.IsUnauthorized(err) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "session required"})
		}
		h.logger.Error("api.create_post_failed",
			zap.String("title", req.Title),
			zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(toPostResponse(*post))
}

// CommentHandler submits a comment on a post. The upstream response
// body is discarded, so success is a bare acceptance.
func (h *ScribeHandler) CommentHandler(c *fiber.Ctx) error {
	var req CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	postID := c.Params("id")
	err := h.service.Comment(c.Context(), postID, model.CommentDraft{
		Author: req.Author,
		Body:   req.Body,
	})
	if err != nil {
		if httpclient.IsUnauthorized(err) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "session required"})
		}
		h.logger.Error("api.comment_failed",
			zap.String("post_id", postID),
			zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "accepted"})
}

// ListPostsHandler serves the locally synced catalog.
func (h *ScribeHandler) ListPostsHandler(c *fiber.Ctx) error {
	if h.catalog == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "catalog disabled"})
	}

	limit := c.QueryInt("limit", 50)
	posts, err := h.catalog.ListPosts(c.Context(), limit)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusOK).JSON(toPostListResponse(nil))
		}
		h.logger.Error("api.list_posts_failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(toPostListResponse(posts))
}
