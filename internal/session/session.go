package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ericnishio/scribe-adapter/internal/metrics"
	"github.com/ericnishio/scribe-adapter/pkg/eventbus"
	"github.com/ericnishio/scribe-adapter/pkg/model"
	"github.com/ericnishio/scribe-adapter/pkg/utils"
)

// AccessToken is a bearer credential with an absolute expiry.
type AccessToken struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ValidAt reports whether the token is usable at the given instant.
// A token expiring exactly at t is already invalid.
func (t AccessToken) ValidAt(now time.Time) bool {
	return t.Value != "" && t.ExpiresAt.After(now)
}

// persistTimeout bounds best-effort store writes so a slow backend
// cannot stall login or logout.
const persistTimeout = 2 * time.Second

// Manager holds the current access token and answers authentication
// queries against the wall clock. Expiry is observed lazily: nothing
// fires when a token lapses, the next query simply reports false.
type Manager struct {
	logger *zap.Logger
	bus    *eventbus.EventBus
	store  TokenStore

	mu             sync.RWMutex
	token          AccessToken
	hasToken       bool
	expiryNotified bool
}

// NewManager builds a Manager. A nil store falls back to in-memory
// persistence, a nil bus disables event publication.
func NewManager(logger *zap.Logger, bus *eventbus.EventBus, store TokenStore) *Manager {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Manager{
		logger: logger,
		bus:    bus,
		store:  store,
	}
}

// Restore loads a previously persisted token, discarding it when it has
// already expired. Returns true when a usable token was restored.
func (m *Manager) Restore(ctx context.Context) bool {
	tok, ok, err := m.store.Load(ctx)
	if err != nil {
		m.logger.Warn("session.restore_failed", zap.Error(err))
		metrics.IncError("session", "restore")
		return false
	}
	if !ok {
		return false
	}
	if !tok.ValidAt(time.Now()) {
		m.logger.Info("session.restore_skipped_expired",
			zap.Time("expired_at", tok.ExpiresAt))
		return false
	}

	m.mu.Lock()
	m.token = tok
	m.hasToken = true
	m.expiryNotified = false
	m.mu.Unlock()

	metrics.SetSessionAuthenticated(true)
	m.logger.Info("session.restored",
		zap.String("token", utils.MaskToken(tok.Value)),
		zap.Time("expires_at", tok.ExpiresAt))
	return true
}

// SetToken replaces the current token wholesale and persists it
// best-effort. Publishes a SessionStarted event.
func (m *Manager) SetToken(tok AccessToken) {
	m.mu.Lock()
	m.token = tok
	m.hasToken = true
	m.expiryNotified = false
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := m.store.Save(ctx, tok); err != nil {
		m.logger.Warn("session.persist_failed", zap.Error(err))
		metrics.IncError("session", "persist")
	}

	metrics.SetSessionAuthenticated(true)
	m.logger.Info("session.started",
		zap.String("token", utils.MaskToken(tok.Value)),
		zap.Time("expires_at", tok.ExpiresAt))

	if m.bus != nil {
		m.bus.Publish(model.SessionStarted{
			ExpiresAt: tok.ExpiresAt,
			StartedAt: time.Now().UTC(),
		})
	}
}

// Clear drops the current token. Idempotent: clearing an empty session
// is a no-op and publishes nothing.
func (m *Manager) Clear() {
	m.mu.Lock()
	had := m.hasToken
	m.token = AccessToken{}
	m.hasToken = false
	m.expiryNotified = false
	m.mu.Unlock()

	if !had {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn("session.clear_persist_failed", zap.Error(err))
		metrics.IncError("session", "persist")
	}

	metrics.SetSessionAuthenticated(false)
	m.logger.Info("session.ended")

	if m.bus != nil {
		m.bus.Publish(model.SessionEnded{EndedAt: time.Now().UTC()})
	}
}

// IsAuthenticated reports whether a currently valid token is held.
// The first query after a token lapses emits a SessionExpired event.
func (m *Manager) IsAuthenticated() bool {
	_, ok := m.CurrentToken()
	return ok
}

// CurrentToken returns the bearer value when a valid token is held.
// Expired or absent tokens yield ("", false).
func (m *Manager) CurrentToken() (string, bool) {
	now := time.Now()

	m.mu.RLock()
	tok, has := m.token, m.hasToken
	notified := m.expiryNotified
	m.mu.RUnlock()

	if !has {
		return "", false
	}
	if tok.ValidAt(now) {
		return tok.Value, true
	}

	if !notified {
		m.noteExpiry(tok)
	}
	return "", false
}

// Expiry returns the held token's expiry instant, valid or not.
func (m *Manager) Expiry() (time.Time, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.hasToken {
		return time.Time{}, false
	}
	return m.token.ExpiresAt, true
}

// noteExpiry records the lapse of a token at most once. The token
// itself stays in place so callers can still inspect its expiry.
func (m *Manager) noteExpiry(tok AccessToken) {
	m.mu.Lock()
	if m.expiryNotified || !m.hasToken || m.token.Value != tok.Value {
		m.mu.Unlock()
		return
	}
	m.expiryNotified = true
	m.mu.Unlock()

	metrics.SetSessionAuthenticated(false)
	metrics.IncAuthEvent("token_expired")
	m.logger.Info("session.expired",
		zap.Time("expired_at", tok.ExpiresAt))

	if m.bus != nil {
		m.bus.Publish(model.SessionExpired{
			ExpiredAt: tok.ExpiresAt,
			NoticedAt: time.Now().UTC(),
		})
	}
}
