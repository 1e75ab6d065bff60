package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/ericnishio/scribe-adapter/internal/metrics"
	"github.com/ericnishio/scribe-adapter/pkg/eventbus"
	"github.com/ericnishio/scribe-adapter/pkg/model"
)

// Notifier delivers user-facing notices raised by the adapter.
type Notifier interface {
	Notify(ctx context.Context, n model.Notification)
}

// LogNotifier writes notices to the structured log at the notice's level.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Notify(_ context.Context, n model.Notification) {
	fields := []zap.Field{
		zap.String("notification_id", n.ID.String()),
		zap.String("source", n.Source),
		zap.String("message", n.Message),
	}
	switch n.Level {
	case model.LevelError:
		l.logger.Error("notify.user_notice", fields...)
	case model.LevelWarn:
		l.logger.Warn("notify.user_notice", fields...)
	default:
		l.logger.Info("notify.user_notice", fields...)
	}
}

// BusNotifier hands notices to the in-process event bus, where outbound
// bridges pick them up.
type BusNotifier struct {
	bus *eventbus.EventBus
}

func NewBusNotifier(bus *eventbus.EventBus) *BusNotifier {
	return &BusNotifier{bus: bus}
}

func (b *BusNotifier) Notify(_ context.Context, n model.Notification) {
	b.bus.Publish(n)
}

// MultiNotifier fans a notice out to every configured sink. The
// notifications counter ticks once per notice, not per sink.
type MultiNotifier struct {
	sinks []Notifier
}

func NewMultiNotifier(sinks ...Notifier) *MultiNotifier {
	return &MultiNotifier{sinks: sinks}
}

func (m *MultiNotifier) Notify(ctx context.Context, n model.Notification) {
	metrics.IncNotification(n.Level)
	for _, sink := range m.sinks {
		sink.Notify(ctx, n)
	}
}
