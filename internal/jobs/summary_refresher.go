package jobs

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/ericnishio/scribe-adapter/internal/metrics"
)

// SummaryRefresher periodically triggers a Postgres recalculation of the
// catalog summary and emits a NATS event when the refresh completes.
type SummaryRefresher struct {
	logger    *zap.Logger
	db        DBExecutor // small interface wrapper over pgxpool.Pool
	publisher EventPublisher
	interval  time.Duration
	stopCh    chan struct{}
}

// DBExecutor defines the minimal subset of pgxpool.Pool needed for execution.
type DBExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// EventPublisher emits a JSON payload on a subject.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, payload any) error
}

// NewSummaryRefresher constructs a background job that runs periodically.
func NewSummaryRefresher(logger *zap.Logger, db DBExecutor, pub EventPublisher, interval time.Duration) *SummaryRefresher {
	return &SummaryRefresher{
		logger:    logger,
		db:        db,
		publisher: pub,
		interval:  interval,
		stopCh:    make(chan struct{}),
	}
}

// Start runs the summary refresh loop (typically every 24 h).
func (r *SummaryRefresher) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("summary_refresher.started", zap.Duration("interval", r.interval))

	for {
		select {
		case <-ticker.C:
			r.runOnce(ctx)
		case <-r.stopCh:
			r.logger.Info("summary_refresher.stopped (manual stop)")
			return
		case <-ctx.Done():
			r.logger.Info("summary_refresher.stopped (context canceled)")
			return
		}
	}
}

// Stop gracefully halts the refresher.
func (r *SummaryRefresher) Stop() {
	close(r.stopCh)
}

// runOnce executes one refresh cycle.
func (r *SummaryRefresher) runOnce(ctx context.Context) {
	start := time.Now()
	r.logger.Info("summary_refresher.running")

	_, err := r.db.Exec(ctx, `SELECT content.fn_refresh_post_summary()`)
	if err != nil {
		r.logger.Error("summary_refresher.refresh_failed", zap.Error(err))
		return
	}

	// Emit event for downstream analytics systems
	event := map[string]any{
		"event":       "evt.scribe.catalog.summary.refreshed.v1",
		"timestamp":   time.Now().UTC(),
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if err := r.publisher.Publish(ctx, "evt.scribe.catalog.summary.refreshed.v1", event); err != nil {
		r.logger.Warn("summary_refresher.nats_publish_failed", zap.Error(err))
	}

	metrics.SetLastSync("summary")
	r.logger.Info("summary_refresher.success",
		zap.Duration("duration", time.Since(start)))
}
