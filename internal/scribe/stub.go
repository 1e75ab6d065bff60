package scribe

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ericnishio/scribe-adapter/pkg/model"
)

// StubPostID is the sentinel ID every stubbed create returns. Real
// posts never carry it, so downstream code can tell the two apart.
const StubPostID = "9999"

// DefaultStubDelay is the simulated round-trip time for stubbed
// creates. The stub never resolves faster than its configured delay.
const DefaultStubDelay = 2 * time.Second

// StubCreator fakes post creation without touching the network. It
// echoes the draft back under the sentinel ID after a fixed delay, so
// callers exercise the same latency they would see against the live API.
type StubCreator struct {
	logger *zap.Logger
	delay  time.Duration
}

// NewStubCreator builds a StubCreator. A non-positive delay falls back
// to DefaultStubDelay.
func NewStubCreator(logger *zap.Logger, delay time.Duration) *StubCreator {
	if delay <= 0 {
		delay = DefaultStubDelay
	}
	return &StubCreator{logger: logger, delay: delay}
}

// CreatePost resolves with the echoed draft after the configured delay,
// or earlier with the context's error when it is canceled.
func (s *StubCreator) CreatePost(ctx context.Context, draft model.PostDraft) (*model.Post, error) {
	s.logger.Info("scribe.stub_create.start",
		zap.String("title", draft.Title),
		zap.Duration("delay", s.delay))

	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	post := &model.Post{
		ID:        StubPostID,
		Title:     draft.Title,
		Body:      draft.Body,
		Author:    draft.Author,
		CreatedAt: time.Now().UTC(),
	}
	s.logger.Info("scribe.stub_create.done", zap.String("post_id", post.ID))
	return post, nil
}
