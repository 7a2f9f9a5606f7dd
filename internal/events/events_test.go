package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/middleware"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

type fakeWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type fakeReader struct {
	msgs   chan kafka.Message
	closed chan struct{}
	once   sync.Once
}

func newFakeReader(msgs ...kafka.Message) *fakeReader {
	r := &fakeReader{msgs: make(chan kafka.Message, len(msgs)), closed: make(chan struct{})}
	for _, m := range msgs {
		r.msgs <- m
	}
	return r
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-r.msgs:
		return m, nil
	case <-r.closed:
		return kafka.Message{}, errors.New("reader closed")
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *fakeReader) Close() error {
	r.once.Do(func() { close(r.closed) })
	return nil
}

type fakeLogStore struct {
	mu      sync.Mutex
	entries []*models.LogEntry
}

func (s *fakeLogStore) Store(_ context.Context, entry *models.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *fakeLogStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func TestKafkaPublisher_OrderCreated(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w, topic: "pos.orders", logger: logging.NewNopLogger()}
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-1")

	order := &models.Order{ID: "o1", UserID: "u1", Total: 306.8, PaymentMethod: models.PaymentMethodUPI}
	require.NoError(t, p.PublishOrderCreated(ctx, order))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "o1", string(msg.Key))
	assert.Equal(t, kafka.Header{Key: "event_type", Value: []byte("order.created")}, msg.Headers[0])

	var event Event
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, EventTypeOrderCreated, event.Type)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "u1", event.UserID)
	assert.Equal(t, "req-1", event.CorrelationID)
	assert.Equal(t, "upi", event.Metadata["payment_method"])

	var got models.Order
	require.NoError(t, json.Unmarshal(event.Data, &got))
	assert.Equal(t, 306.8, got.Total)
}

func TestKafkaPublisher_MenuItemsDeleted(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w, topic: "pos.orders", logger: logging.NewNopLogger()}

	require.NoError(t, p.PublishMenuItemsDeleted(context.Background(), "u1", []string{"m1", "m2"}))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "u1", string(w.msgs[0].Key))

	var event Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &event))
	var payload MenuItemsDeleted
	require.NoError(t, json.Unmarshal(event.Data, &payload))
	assert.Equal(t, []string{"m1", "m2"}, payload.ItemIDs)
	assert.Empty(t, event.CorrelationID)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	p := &KafkaPublisher{writer: &fakeWriter{err: errors.New("no brokers")}, logger: logging.NewNopLogger()}
	assert.Error(t, p.PublishOrderCreated(context.Background(), &models.Order{ID: "o1"}))
}

func TestKafkaLogShipper(t *testing.T) {
	w := &fakeWriter{}
	s := &KafkaLogShipper{writer: w, logger: logging.NewNopLogger()}

	entry := &models.LogEntry{Level: models.LogLevelWarn, Message: "slow", UserID: "u1", Timestamp: time.Now().UTC()}
	require.NoError(t, s.ShipLog(context.Background(), entry))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "u1", string(w.msgs[0].Key))
	var got models.LogEntry
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, "slow", got.Message)
}

func TestLogConsumer_StoresValidEntries(t *testing.T) {
	valid, _ := json.Marshal(models.LogEntry{Level: models.LogLevelError, Message: "boom", UserID: "u1"})
	invalid, _ := json.Marshal(models.LogEntry{Level: "loud", Message: "x"})
	reader := newFakeReader(
		kafka.Message{Value: valid},
		kafka.Message{Value: []byte("not json")},
		kafka.Message{Value: invalid},
	)
	store := &fakeLogStore{}
	c := newLogConsumer(reader, store, logging.NewNopLogger())

	done := make(chan error, 1)
	go func() { done <- c.Start(context.Background()) }()

	assert.Eventually(t, func() bool { return store.count() == 1 }, time.Second, 5*time.Millisecond)
	c.Stop()
	c.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop")
	}
	assert.Equal(t, "boom", store.entries[0].Message)
}

func TestLogConsumer_StopsOnContext(t *testing.T) {
	c := newLogConsumer(newFakeReader(), &fakeLogStore{}, logging.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop")
	}
}

func TestMockEventPublisher(t *testing.T) {
	m := NewMockEventPublisher()
	require.NoError(t, m.PublishOrderCreated(context.Background(), &models.Order{ID: "o1"}))
	require.NoError(t, m.PublishMenuItemsDeleted(context.Background(), "u1", []string{"m1"}))
	assert.Len(t, m.Events, 2)
}
