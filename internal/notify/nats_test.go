package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/ericnishio/scribe-adapter/pkg/eventbus"
	"github.com/ericnishio/scribe-adapter/pkg/model"
)

// --- mock types ---

// mockJetStream implements a minimal JetStreamContext for testing
type mockJetStream struct {
	published []*nats.Msg
	fail      bool
}

func (m *mockJetStream) PublishMsg(msg *nats.Msg, opts ...nats.PubOpt) (*nats.PubAck, error) {
	if m.fail {
		return nil, errors.New("mock publish error")
	}
	m.published = append(m.published, msg)
	return &nats.PubAck{Stream: "mock-stream"}, nil
}

// Implement remaining JetStreamContext interface methods as no-ops for testing
func (m *mockJetStream) Publish(subj string, data []byte, opts ...nats.PubOpt) (*nats.PubAck, error) {
	return nil, nil
}
func (m *mockJetStream) PublishAsync(subj string, data []byte, opts ...nats.PubOpt) (nats.PubAckFuture, error) {
	return nil, nil
}
func (m *mockJetStream) PublishMsgAsync(msg *nats.Msg, opts ...nats.PubOpt) (nats.PubAckFuture, error) {
	return nil, nil
}
func (m *mockJetStream) PublishAsyncPending() int { return 0 }
func (m *mockJetStream) PublishAsyncComplete() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (m *mockJetStream) CleanupPublisher() {}
func (m *mockJetStream) Subscribe(subj string, cb nats.MsgHandler, opts ...nats.SubOpt) (*nats.Subscription, error) {
	return nil, nil
}
func (m *mockJetStream) SubscribeSync(subj string, opts ...nats.SubOpt) (*nats.Subscription, error) {
	return nil, nil
}
func (m *mockJetStream) ChanSubscribe(subj string, ch chan *nats.Msg, opts ...nats.SubOpt) (*nats.Subscription, error) {
	return nil, nil
}
func (m *mockJetStream) ChanQueueSubscribe(subj, queue string, ch chan *nats.Msg, opts ...nats.SubOpt) (*nats.Subscription, error) {
	return nil, nil
}
func (m *mockJetStream) QueueSubscribe(subj, queue string, cb nats.MsgHandler, opts ...nats.SubOpt) (*nats.Subscription, error) {
	return nil, nil
}
func (m *mockJetStream) QueueSubscribeSync(subj, queue string, opts ...nats.SubOpt) (*nats.Subscription, error) {
	return nil, nil
}
func (m *mockJetStream) PullSubscribe(subj, durable string, opts ...nats.SubOpt) (*nats.Subscription, error) {
	return nil, nil
}
func (m *mockJetStream) AddStream(cfg *nats.StreamConfig, opts ...nats.JSOpt) (*nats.StreamInfo, error) {
	return nil, nil
}
func (m *mockJetStream) UpdateStream(cfg *nats.StreamConfig, opts ...nats.JSOpt) (*nats.StreamInfo, error) {
	return nil, nil
}
func (m *mockJetStream) DeleteStream(name string, opts ...nats.JSOpt) error { return nil }
func (m *mockJetStream) StreamInfo(stream string, opts ...nats.JSOpt) (*nats.StreamInfo, error) {
	return nil, nil
}
func (m *mockJetStream) Streams(opts ...nats.JSOpt) <-chan *nats.StreamInfo {
	ch := make(chan *nats.StreamInfo)
	close(ch)
	return ch
}
func (m *mockJetStream) PurgeStream(name string, opts ...nats.JSOpt) error { return nil }
func (m *mockJetStream) StreamsInfo(opts ...nats.JSOpt) <-chan *nats.StreamInfo {
	ch := make(chan *nats.StreamInfo)
	close(ch)
	return ch
}
func (m *mockJetStream) StreamNames(opts ...nats.JSOpt) <-chan string {
	ch := make(chan string)
	close(ch)
	return ch
}
func (m *mockJetStream) GetMsg(name string, seq uint64, opts ...nats.JSOpt) (*nats.RawStreamMsg, error) {
	return nil, nil
}
func (m *mockJetStream) GetLastMsg(name, subj string, opts ...nats.JSOpt) (*nats.RawStreamMsg, error) {
	return nil, nil
}
func (m *mockJetStream) DeleteMsg(name string, seq uint64, opts ...nats.JSOpt) error { return nil }
func (m *mockJetStream) SecureDeleteMsg(name string, seq uint64, opts ...nats.JSOpt) error {
	return nil
}
func (m *mockJetStream) AddConsumer(stream string, cfg *nats.ConsumerConfig, opts ...nats.JSOpt) (*nats.ConsumerInfo, error) {
	return nil, nil
}
func (m *mockJetStream) UpdateConsumer(stream string, cfg *nats.ConsumerConfig, opts ...nats.JSOpt) (*nats.ConsumerInfo, error) {
	return nil, nil
}
func (m *mockJetStream) DeleteConsumer(stream, consumer string, opts ...nats.JSOpt) error { return nil }
func (m *mockJetStream) ConsumerInfo(stream, name string, opts ...nats.JSOpt) (*nats.ConsumerInfo, error) {
	return nil, nil
}
func (m *mockJetStream) Consumers(stream string, opts ...nats.JSOpt) <-chan *nats.ConsumerInfo {
	ch := make(chan *nats.ConsumerInfo)
	close(ch)
	return ch
}
func (m *mockJetStream) ConsumersInfo(stream string, opts ...nats.JSOpt) <-chan *nats.ConsumerInfo {
	ch := make(chan *nats.ConsumerInfo)
	close(ch)
	return ch
}
func (m *mockJetStream) ConsumerNames(stream string, opts ...nats.JSOpt) <-chan string {
	ch := make(chan string)
	close(ch)
	return ch
}
func (m *mockJetStream) AccountInfo(opts ...nats.JSOpt) (*nats.AccountInfo, error) { return nil, nil }
func (m *mockJetStream) StreamNameBySubject(string, ...nats.JSOpt) (string, error) { return "", nil }
func (m *mockJetStream) KeyValue(bucket string) (nats.KeyValue, error)             { return nil, nil }
func (m *mockJetStream) CreateKeyValue(cfg *nats.KeyValueConfig) (nats.KeyValue, error) {
	return nil, nil
}
func (m *mockJetStream) DeleteKeyValue(bucket string) error { return nil }
func (m *mockJetStream) KeyValueStoreNames() <-chan string {
	ch := make(chan string)
	close(ch)
	return ch
}
func (m *mockJetStream) KeyValueStores() <-chan nats.KeyValueStatus {
	ch := make(chan nats.KeyValueStatus)
	close(ch)
	return ch
}
func (m *mockJetStream) ObjectStore(bucket string) (nats.ObjectStore, error) { return nil, nil }
func (m *mockJetStream) CreateObjectStore(cfg *nats.ObjectStoreConfig) (nats.ObjectStore, error) {
	return nil, nil
}
func (m *mockJetStream) DeleteObjectStore(bucket string) error { return nil }
func (m *mockJetStream) ObjectStoreNames(opts ...nats.ObjectOpt) <-chan string {
	ch := make(chan string)
	close(ch)
	return ch
}
func (m *mockJetStream) ObjectStores(opts ...nats.ObjectOpt) <-chan nats.ObjectStoreStatus {
	ch := make(chan nats.ObjectStoreStatus)
	close(ch)
	return ch
}

// --- helper ---

func newTestPublisher(fail bool) *Publisher {
	js := &mockJetStream{fail: fail}
	return &Publisher{
		nc:      nil,
		js:      js,
		subject: "evt.scribe.session.v1",
		service: "scribe-adapter",
		account: "demo",
	}
}

// --- tests ---

func TestPublishSessionStarted(t *testing.T) {
	pub := newTestPublisher(false)
	expiresAt := time.Now().Add(time.Hour).UTC()

	err := pub.PublishSessionStarted(context.Background(), model.SessionStarted{
		ExpiresAt: expiresAt,
		StartedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	js := pub.js.(*mockJetStream)
	if len(js.published) != 1 {
		t.Fatalf("expected 1 published message, got %d", len(js.published))
	}

	msg := js.published[0]
	if msg.Subject != SubjectSessionStarted {
		t.Errorf("unexpected subject: %s", msg.Subject)
	}

	// verify headers
	if msg.Header.Get("event_type") != "session.started" {
		t.Errorf("expected header event_type=session.started, got %s", msg.Header.Get("event_type"))
	}
	if msg.Header.Get("service") != "scribe-adapter" {
		t.Errorf("expected header service=scribe-adapter, got %s", msg.Header.Get("service"))
	}
	if msg.Header.Get("account") != "demo" {
		t.Errorf("expected header account=demo, got %s", msg.Header.Get("account"))
	}

	// verify envelope round-trip
	var env model.Envelope
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		t.Fatalf("failed to unmarshal envelope: %v", err)
	}
	if env.EventType != "session.started" {
		t.Errorf("expected event_type=session.started, got %s", env.EventType)
	}
	if env.Account != "demo" {
		t.Errorf("expected account=demo, got %s", env.Account)
	}

	var payload model.SessionStarted
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		t.Fatalf("failed to unmarshal payload: %v", err)
	}
	if !payload.ExpiresAt.Equal(expiresAt) {
		t.Errorf("expected expires_at=%v, got %v", expiresAt, payload.ExpiresAt)
	}
}

func TestPublishEnvelope_Failure(t *testing.T) {
	pub := newTestPublisher(true)

	err := pub.PublishSessionEnded(context.Background(), model.SessionEnded{EndedAt: time.Now()})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestPublishEnvelope_EmptySubjectDefaults(t *testing.T) {
	pub := newTestPublisher(false)

	err := pub.PublishEnvelope(context.Background(), "", pub.newEnvelope("session.ended", "", model.SessionEnded{}))
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	js := pub.js.(*mockJetStream)
	if js.published[0].Subject != "evt.scribe.session.v1" {
		t.Errorf("expected default subject, got %s", js.published[0].Subject)
	}
}

func TestPublishNotification(t *testing.T) {
	pub := newTestPublisher(false)

	n := model.NewNotification(model.LevelWarn, "scribe.login", "Login failed.")
	if err := pub.PublishNotification(context.Background(), n); err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	js := pub.js.(*mockJetStream)
	msg := js.published[0]
	if msg.Subject != SubjectNotification {
		t.Errorf("unexpected subject: %s", msg.Subject)
	}

	var env model.Envelope
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		t.Fatalf("failed to unmarshal envelope: %v", err)
	}
	var got model.Notification
	if err := json.Unmarshal(env.Payload, &got); err != nil {
		t.Fatalf("failed to unmarshal payload: %v", err)
	}
	if got.Message != "Login failed." {
		t.Errorf("expected message round-trip, got %q", got.Message)
	}
}

func TestBind_ForwardsBusEvents(t *testing.T) {
	pub := newTestPublisher(false)
	bus := eventbus.New()
	pub.Bind(bus)

	// PublishSync so the assertion runs after every handler completed.
	bus.PublishSync(model.SessionStarted{ExpiresAt: time.Now().Add(time.Hour)})
	bus.PublishSync(model.SessionEnded{EndedAt: time.Now()})
	bus.PublishSync(model.SessionExpired{ExpiredAt: time.Now(), NoticedAt: time.Now()})
	bus.PublishSync(model.NewNotification(model.LevelInfo, "test", "hello"))

	js := pub.js.(*mockJetStream)
	if len(js.published) != 4 {
		t.Fatalf("expected 4 published messages, got %d", len(js.published))
	}

	subjects := map[string]bool{}
	for _, msg := range js.published {
		subjects[msg.Subject] = true
	}
	for _, want := range []string{SubjectSessionStarted, SubjectSessionEnded, SubjectSessionExpired, SubjectNotification} {
		if !subjects[want] {
			t.Errorf("expected a message on %s", want)
		}
	}
}

func TestPublish_RawPayload(t *testing.T) {
	pub := newTestPublisher(false)

	err := pub.Publish(context.Background(), "internal.debug", map[string]any{"ok": true})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	js := pub.js.(*mockJetStream)
	if js.published[0].Header.Get("source") != "scribe-adapter" {
		t.Errorf("expected source header, got %s", js.published[0].Header.Get("source"))
	}
}
