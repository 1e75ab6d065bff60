package scribe

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ericnishio/scribe-adapter/internal/httpclient"
	"github.com/ericnishio/scribe-adapter/internal/metrics"
	"github.com/ericnishio/scribe-adapter/internal/session"
	"github.com/ericnishio/scribe-adapter/pkg/model"
)

// Service orchestrates Scribe API operations: session lifecycle,
// content retrieval, post creation and commenting.
type Service struct {
	logger  *zap.Logger
	client  *Client
	session *session.Manager
	creator PostCreator
	notify  Notifier
}

// NewService constructs a fully wired Scribe service. The creator
// decides whether post creation hits the live API or the stub.
func NewService(
	logger *zap.Logger,
	client *Client,
	sess *session.Manager,
	creator PostCreator,
	notifier Notifier,
) *Service {
	return &Service{
		logger:  logger,
		client:  client,
		session: sess,
		creator: creator,
		notify:  notifier,
	}
}

// Login authenticates against the Scribe API and stores the resulting
// token. A rejected or failed attempt never surfaces as an error: it is
// reported through the notifier, the previously held session stays
// untouched, and the return value reflects whether the holder is
// authenticated after the attempt.
func (s *Service) Login(ctx context.Context, identifier, secret string) bool {
	s.logger.Info("scribe.login.start", zap.String("identifier", identifier))

	resp, err := s.client.Authenticate(ctx, identifier, secret)
	if err != nil {
		s.loginFailed(ctx, identifier, err)
		return s.session.IsAuthenticated()
	}

	expiresAt, err := time.Parse(time.RFC3339, resp.ExpiresAt)
	if err != nil {
		s.loginFailed(ctx, identifier, fmt.Errorf("parse token expiry %q: %w", resp.ExpiresAt, err))
		return s.session.IsAuthenticated()
	}

	s.session.SetToken(session.AccessToken{
		Value:     resp.AccessToken,
		ExpiresAt: expiresAt,
	})

	metrics.IncAuthEvent("login_success")
	s.logger.Info("scribe.login.success",
		zap.String("identifier", identifier),
		zap.Time("expires_at", expiresAt))
	return true
}

// loginFailed records a rejected attempt and raises a user-facing notice.
func (s *Service) loginFailed(ctx context.Context, identifier string, err error) {
	metrics.IncAuthEvent("login_failure")
	s.logger.Warn("scribe.login_failed",
		zap.String("identifier", identifier),
		zap.Error(err))

	if s.notify == nil {
		return
	}
	msg := "Login failed. Check your credentials and try again."
	if httpclient.IsUnauthorized(err) {
		msg = "Login rejected: invalid credentials."
	}
	s.notify.Notify(ctx, model.NewNotification(model.LevelWarn, "scribe.login", msg))
}

// Logout drops the current session immediately. Safe to call at any
// time, including when no session is held.
func (s *Service) Logout() {
	metrics.IncAuthEvent("logout")
	s.logger.Info("scribe.logout")
	s.session.Clear()
}

// IsAuthenticated reports whether a valid session token is held right now.
func (s *Service) IsAuthenticated() bool {
	return s.session.IsAuthenticated()
}

// SessionExpiry returns the held token's expiry, when one is held.
func (s *Service) SessionExpiry() (time.Time, bool) {
	return s.session.Expiry()
}

// GetPost fetches a single post. No session required.
func (s *Service) GetPost(ctx context.Context, id string) (*model.Post, error) {
	return s.client.FetchPost(ctx, id)
}

// CreatePost publishes a post through the configured creator.
func (s *Service) CreatePost(ctx context.Context, draft model.PostDraft) (*model.Post, error) {
	post, err := s.creator.CreatePost(ctx, draft)
	if err != nil {
		s.logger.Error("scribe.create_post_failed",
			zap.String("title", draft.Title),
			zap.Error(err))
		return nil, err
	}
	s.logger.Info("scribe.post_created",
		zap.String("post_id", post.ID),
		zap.String("title", post.Title))
	return post, nil
}

// Comment submits a comment on a post.
func (s *Service) Comment(ctx context.Context, postID string, draft model.CommentDraft) error {
	if err := s.client.PostComment(ctx, postID, draft); err != nil {
		s.logger.Error("scribe.comment_failed",
			zap.String("post_id", postID),
			zap.Error(err))
		return err
	}
	s.logger.Info("scribe.comment_posted", zap.String("post_id", postID))
	return nil
}
