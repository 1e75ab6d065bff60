package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/ericnishio/scribe-adapter/internal/metrics"
	"github.com/ericnishio/scribe-adapter/pkg/eventbus"
	"github.com/ericnishio/scribe-adapter/pkg/logger"
	"github.com/ericnishio/scribe-adapter/pkg/model"
)

// Canonical subjects for session lifecycle events.
const (
	SubjectSessionStarted = "evt.scribe.session.started.v1"
	SubjectSessionEnded   = "evt.scribe.session.ended.v1"
	SubjectSessionExpired = "evt.scribe.session.expired.v1"
	SubjectNotification   = "evt.scribe.notification.v1"
)

// Publisher wraps a NATS connection and publishes canonical event envelopes.
type Publisher struct {
	nc      *nats.Conn
	js      nats.JetStreamContext
	subject string
	service string
	account string
}

// NewPublisher creates a Publisher with JetStream enabled if available.
func NewPublisher(nc *nats.Conn, subject, service, account string) (*Publisher, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, err
	}
	return &Publisher{
		nc:      nc,
		js:      js,
		subject: subject,
		service: service,
		account: account,
	}, nil
}

// PublishEnvelope serializes and publishes a canonical event envelope to NATS.
func (p *Publisher) PublishEnvelope(ctx context.Context, subject string, env *model.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		logger.S().Errorw("publisher.marshal_failed",
			"subject", subject,
			"event_type", env.EventType,
			"error", err,
		)
		metrics.IncError("publisher", "marshal_failed")
		return err
	}

	if subject == "" {
		subject = p.subject
	}

	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
		Header: nats.Header{
			"event_type":     []string{env.EventType},
			"correlation_id": []string{env.CorrelationID.String()},
			"service":        []string{p.service},
			"content_type":   []string{"application/json"},
			"account":        []string{env.Account},
		},
	}

	start := time.Now()
	_, err = p.js.PublishMsg(msg)
	metrics.ObserveDuration(metrics.NATSMessageLatency, start, subject)

	if err != nil {
		logger.S().Errorw("publisher.publish_failed",
			"subject", subject,
			"event_type", env.EventType,
			"error", err,
		)
		metrics.IncNATSMessage(subject, "error")
		return err
	}

	logger.S().Infow("publisher.publish_success",
		"subject", subject,
		"event_type", env.EventType,
	)

	metrics.IncNATSMessage(subject, "ok")
	return nil
}

// PublishSessionStarted emits canonical session.started events.
func (p *Publisher) PublishSessionStarted(ctx context.Context, ev model.SessionStarted) error {
	return p.PublishEnvelope(ctx, SubjectSessionStarted,
		p.newEnvelope("session.started", SubjectSessionStarted, ev))
}

// PublishSessionEnded emits canonical session.ended events.
func (p *Publisher) PublishSessionEnded(ctx context.Context, ev model.SessionEnded) error {
	return p.PublishEnvelope(ctx, SubjectSessionEnded,
		p.newEnvelope("session.ended", SubjectSessionEnded, ev))
}

// PublishSessionExpired emits canonical session.expired events.
func (p *Publisher) PublishSessionExpired(ctx context.Context, ev model.SessionExpired) error {
	return p.PublishEnvelope(ctx, SubjectSessionExpired,
		p.newEnvelope("session.expired", SubjectSessionExpired, ev))
}

// PublishNotification emits user-facing notices as canonical events.
func (p *Publisher) PublishNotification(ctx context.Context, n model.Notification) error {
	return p.PublishEnvelope(ctx, SubjectNotification,
		p.newEnvelope("notification.raised", SubjectNotification, n))
}

// Bind subscribes the publisher to the in-process bus, so every session
// event and notification raised anywhere in the adapter goes out to NATS.
func (p *Publisher) Bind(bus *eventbus.EventBus) {
	bus.Subscribe(model.SessionStarted{}, func(event interface{}) {
		if ev, ok := event.(model.SessionStarted); ok {
			_ = p.PublishSessionStarted(context.Background(), ev)
		}
	})
	bus.Subscribe(model.SessionEnded{}, func(event interface{}) {
		if ev, ok := event.(model.SessionEnded); ok {
			_ = p.PublishSessionEnded(context.Background(), ev)
		}
	})
	bus.Subscribe(model.SessionExpired{}, func(event interface{}) {
		if ev, ok := event.(model.SessionExpired); ok {
			_ = p.PublishSessionExpired(context.Background(), ev)
		}
	})
	bus.Subscribe(model.Notification{}, func(event interface{}) {
		if n, ok := event.(model.Notification); ok {
			_ = p.PublishNotification(context.Background(), n)
		}
	})
}

// Publish publishes raw JSON payloads (for non-canonical internal events).
func (p *Publisher) Publish(ctx context.Context, subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		metrics.IncError("publisher", "marshal_failed")
		return err
	}

	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
		Header:  nats.Header{"source": []string{p.service}},
	}

	start := time.Now()
	_, err = p.js.PublishMsg(msg)
	metrics.ObserveDuration(metrics.NATSMessageLatency, start, subject)

	if err != nil {
		metrics.IncNATSMessage(subject, "error")
		return err
	}

	metrics.IncNATSMessage(subject, "ok")
	return nil
}

func (p *Publisher) newEnvelope(eventType, topic string, payload any) *model.Envelope {
	env := &model.Envelope{
		ID:            uuid.New(),
		CorrelationID: uuid.New(),
		Account:       p.account,
		Topic:         topic,
		EventType:     eventType,
		Version:       "1.0.0",
		Timestamp:     time.Now().UTC(),
	}
	data, _ := json.Marshal(payload)
	env.Payload = data
	return env
}

func (p *Publisher) Close() {
	if p.nc != nil && p.nc.IsConnected() {
		p.nc.Close()
	}
}
