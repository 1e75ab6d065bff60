package notify

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/ericnishio/scribe-adapter/pkg/eventbus"
	"github.com/ericnishio/scribe-adapter/pkg/model"
)

const (
	// RouteSessionEvents is the routing key for session lifecycle events.
	RouteSessionEvents = "scribe.session.events"
	// RouteNotifications is the routing key for user-facing notices.
	RouteNotifications = "scribe.notifications"
)

// sessionMessage wraps a session event with its type discriminator for
// the wire.
type sessionMessage struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// RabbitBridge forwards in-process events to RabbitMQ for consumers
// that are not on NATS.
type RabbitBridge struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	bus     *eventbus.EventBus
	logger  *zap.Logger
}

// NewRabbitBridge connects to RabbitMQ and subscribes to the bus.
func NewRabbitBridge(url string, bus *eventbus.EventBus, logger *zap.Logger) (*RabbitBridge, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	b := &RabbitBridge{
		conn:    conn,
		channel: channel,
		bus:     bus,
		logger:  logger,
	}
	b.subscribeToEvents()
	return b, nil
}

func (b *RabbitBridge) subscribeToEvents() {
	b.bus.Subscribe(model.SessionStarted{}, func(event interface{}) {
		if ev, ok := event.(model.SessionStarted); ok {
			b.publish(RouteSessionEvents, sessionMessage{Event: "session.started", Data: ev}, 0)
		}
	})
	b.bus.Subscribe(model.SessionEnded{}, func(event interface{}) {
		if ev, ok := event.(model.SessionEnded); ok {
			b.publish(RouteSessionEvents, sessionMessage{Event: "session.ended", Data: ev}, 0)
		}
	})
	b.bus.Subscribe(model.SessionExpired{}, func(event interface{}) {
		if ev, ok := event.(model.SessionExpired); ok {
			b.publish(RouteSessionEvents, sessionMessage{Event: "session.expired", Data: ev}, 0)
		}
	})
	b.bus.Subscribe(model.Notification{}, func(event interface{}) {
		n, ok := event.(model.Notification)
		if !ok {
			return
		}
		var priority uint8
		if n.Level == model.LevelError {
			priority = 10 // error notices jump the queue
		}
		b.publish(RouteNotifications, n, priority)
	})
}

func (b *RabbitBridge) publish(routingKey string, payload any, priority uint8) {
	body, err := json.Marshal(payload)
	if err != nil {
		b.logger.Error("rabbit.marshal_failed",
			zap.String("routing_key", routingKey),
			zap.Error(err))
		return
	}

	err = b.channel.PublishWithContext(
		context.Background(),
		"",         // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
			Priority:    priority,
		},
	)
	if err != nil {
		b.logger.Error("rabbit.publish_failed",
			zap.String("routing_key", routingKey),
			zap.Error(err))
	}
}

// Close closes the channel and connection.
func (b *RabbitBridge) Close() error {
	if b.channel != nil {
		_ = b.channel.Close()
	}
	if b.conn != nil {
		return b.conn.Close()
	}
	return nil
}
