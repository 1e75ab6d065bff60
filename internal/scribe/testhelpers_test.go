package scribe

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ericnishio/scribe-adapter/internal/httpclient"
	"github.com/ericnishio/scribe-adapter/internal/session"
	"github.com/ericnishio/scribe-adapter/pkg/model"
)

// writeJSON encodes v as JSON into w.
func writeJSON(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		panic("test helper writeJSON: " + err.Error())
	}
}

// mockNotifier collects notifications for inspection.
type mockNotifier struct {
	mu    sync.Mutex
	notes []model.Notification
}

func (m *mockNotifier) Notify(_ context.Context, n model.Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes = append(m.notes, n)
}

func (m *mockNotifier) all() []model.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Notification(nil), m.notes...)
}

// recordedRequest is one request as the mock server saw it.
type recordedRequest struct {
	Method string
	Path   string
	Auth   []string
}

// mockScribeServer routes Scribe API calls to canned responses and
// records every request for header and path assertions.
type mockScribeServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
}

// newMockScribeServer builds a mock API. Pass nil for a response to
// trigger an error status on that endpoint.
func newMockScribeServer(
	t *testing.T,
	loginResp *ScribeLoginResponse,
	post *ScribePost,
	list *ScribePostListResponse,
) *mockScribeServer {
	t.Helper()
	m := &mockScribeServer{}

	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.record(r)
		w.Header().Set("Content-Type", "application/json")
		path := r.URL.Path

		switch {
		case r.Method == http.MethodPost && path == "/authenticate":
			if loginResp == nil {
				w.WriteHeader(http.StatusUnauthorized)
				writeJSON(w, ScribeErrorResponse{Error: "invalid_credentials", Message: "unknown identifier or secret"})
				return
			}
			writeJSON(w, loginResp)

		case r.Method == http.MethodPost && strings.HasSuffix(path, "/comments"):
			w.WriteHeader(http.StatusCreated)
			writeJSON(w, map[string]any{"id": "c-1", "status": "accepted"})

		case r.Method == http.MethodPost && path == "/blog":
			if post == nil {
				w.WriteHeader(http.StatusBadRequest)
				writeJSON(w, ScribeErrorResponse{Message: "invalid post"})
				return
			}
			w.WriteHeader(http.StatusCreated)
			writeJSON(w, post)

		case r.Method == http.MethodGet && path == "/blog":
			if list == nil {
				w.WriteHeader(http.StatusInternalServerError)
				writeJSON(w, ScribeErrorResponse{Message: "catalog unavailable"})
				return
			}
			writeJSON(w, list)

		case r.Method == http.MethodGet && strings.HasPrefix(path, "/blog/"):
			if post == nil {
				w.WriteHeader(http.StatusNotFound)
				writeJSON(w, ScribeErrorResponse{Message: "post not found"})
				return
			}
			writeJSON(w, post)

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(m.Server.Close)
	return m
}

func (m *mockScribeServer) record(r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Auth:   r.Header.Values("Authorization"),
	})
}

func (m *mockScribeServer) lastRequest(t *testing.T) recordedRequest {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		t.Fatal("no requests recorded")
	}
	return m.requests[len(m.requests)-1]
}

func (m *mockScribeServer) requestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// newTestClient wires a Client against the mock server with a fresh
// session manager as its token source.
func newTestClient(t *testing.T, server *mockScribeServer) (*Client, *session.Manager) {
	t.Helper()
	logger := zap.NewNop()
	sess := session.NewManager(logger, nil, nil)
	disp := httpclient.New(logger, server.URL, &http.Client{}, sess, nil, 0, false)
	return NewClient(logger, disp), sess
}

// newTestService wires a full Service against the mock server. Post
// creation goes through the live client unless the test swaps the
// creator.
func newTestService(t *testing.T, server *mockScribeServer) (*Service, *session.Manager, *mockNotifier) {
	t.Helper()
	client, sess := newTestClient(t, server)
	notifier := &mockNotifier{}
	svc := NewService(zap.NewNop(), client, sess, client, notifier)
	return svc, sess, notifier
}

// validLogin is a canned successful login response expiring in an hour.
func validLogin() *ScribeLoginResponse {
	return &ScribeLoginResponse{
		AccessToken: "tok-from-server",
		ExpiresAt:   time.Now().Add(time.Hour).Format(time.RFC3339),
	}
}

// samplePost is a canned API post.
func samplePost() *ScribePost {
	return &ScribePost{
		ID:        "42",
		Title:     "On Writing",
		Body:      "Plain words carry best.",
		Author:    "E. Nishio",
		CreatedAt: "2026-05-01T10:00:00Z",
	}
}
