package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Envelope is the canonical event envelope.
// All messages published to NATS or RabbitMQ follow this format.
type Envelope struct {
	ID            uuid.UUID       `json:"id"`
	CorrelationID uuid.UUID       `json:"correlation_id"`
	Account       string          `json:"account,omitempty"`
	Topic         string          `json:"topic"`
	EventType     string          `json:"event_type"`
	Version       string          `json:"version"`
	Timestamp     time.Time       `json:"timestamp"`
	Payload       json.RawMessage `json:"payload"`
}

// SessionStarted is published after a login stores a new access token.
type SessionStarted struct {
	ExpiresAt time.Time `json:"expires_at"`
	StartedAt time.Time `json:"started_at"`
}

// SessionEnded is published when a logout clears an existing token.
// Logouts with no token to clear publish nothing.
type SessionEnded struct {
	EndedAt time.Time `json:"ended_at"`
}

// SessionExpired is published at most once per token, the first time a query
// observes that the token's expiry instant has passed.
type SessionExpired struct {
	ExpiredAt time.Time `json:"expired_at"`
	NoticedAt time.Time `json:"noticed_at"`
}
