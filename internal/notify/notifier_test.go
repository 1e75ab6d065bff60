package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ericnishio/scribe-adapter/pkg/eventbus"
	"github.com/ericnishio/scribe-adapter/pkg/model"
)

type captureNotifier struct {
	mu    sync.Mutex
	notes []model.Notification
}

func (c *captureNotifier) Notify(_ context.Context, n model.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notes = append(c.notes, n)
}

func (c *captureNotifier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.notes)
}

func TestLogNotifier_AllLevels(t *testing.T) {
	n := NewLogNotifier(zap.NewNop())

	// Every level must map to a log call without panicking.
	for _, level := range []string{model.LevelInfo, model.LevelWarn, model.LevelError, "unknown"} {
		n.Notify(context.Background(), model.NewNotification(level, "test", "message"))
	}
}

func TestBusNotifier_PublishesToBus(t *testing.T) {
	bus := eventbus.New()
	got := make(chan model.Notification, 1)
	bus.Subscribe(model.Notification{}, func(event interface{}) {
		got <- event.(model.Notification)
	})

	n := NewBusNotifier(bus)
	sent := model.NewNotification(model.LevelWarn, "scribe.login", "Login failed.")
	n.Notify(context.Background(), sent)

	select {
	case received := <-got:
		assert.Equal(t, sent.ID, received.ID)
		assert.Equal(t, "Login failed.", received.Message)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for notification on bus")
	}
}

func TestMultiNotifier_FansOut(t *testing.T) {
	first := &captureNotifier{}
	second := &captureNotifier{}
	multi := NewMultiNotifier(first, second)

	multi.Notify(context.Background(), model.NewNotification(model.LevelInfo, "test", "hello"))

	require.Equal(t, 1, first.count())
	require.Equal(t, 1, second.count())
}

func TestMultiNotifier_Empty(t *testing.T) {
	multi := NewMultiNotifier()
	multi.Notify(context.Background(), model.NewNotification(model.LevelInfo, "test", "hello"))
}
