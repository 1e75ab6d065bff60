package scribe

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ericnishio/scribe-adapter/internal/metrics"
)

// CatalogSyncer periodically mirrors the upstream post catalog into the
// local store, so reads can be served without hitting the Scribe API.
type CatalogSyncer struct {
	logger   *zap.Logger
	source   PostSource
	sink     PostSink
	interval time.Duration
}

// NewCatalogSyncer builds a syncer pulling from source into sink every
// interval.
func NewCatalogSyncer(logger *zap.Logger, source PostSource, sink PostSink, interval time.Duration) *CatalogSyncer {
	return &CatalogSyncer{
		logger:   logger,
		source:   source,
		sink:     sink,
		interval: interval,
	}
}

// Start runs the sync loop until the context is canceled. The first
// sync happens immediately, then once per interval.
func (c *CatalogSyncer) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		if err := c.syncOnce(ctx); err != nil {
			c.logger.Warn("scribe.catalog_sync_failed", zap.Error(err))
			metrics.IncCatalogSync("failure")
		} else {
			metrics.IncCatalogSync("success")
			metrics.SetLastSync("catalog")
		}

		select {
		case <-ticker.C:
			continue
		case <-ctx.Done():
			c.logger.Info("scribe.catalog_sync_stopped")
			return
		}
	}
}

func (c *CatalogSyncer) syncOnce(ctx context.Context) error {
	posts, err := c.source.ListPosts(ctx)
	if err != nil {
		return err
	}

	stored := 0
	for _, post := range posts {
		if err := c.sink.UpsertPost(ctx, post); err != nil {
			c.logger.Warn("scribe.post_upsert_failed",
				zap.String("post_id", post.ID),
				zap.Error(err))
			continue
		}
		stored++
	}

	c.logger.Info("scribe.catalog_sync_complete",
		zap.Int("fetched", len(posts)),
		zap.Int("stored", stored))
	return nil
}
