package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/middleware"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/service"
)

var (
	_ service.EventPublisher = (*KafkaPublisher)(nil)
	_ service.EventPublisher = (*MockEventPublisher)(nil)
)

// EventType represents the type of a POS event.
type EventType string

const (
	EventTypeOrderCreated     EventType = "order.created"
	EventTypeMenuItemsDeleted EventType = "menu.items_deleted"
)

// Event is the envelope written to the orders topic.
type Event struct {
	ID            string            `json:"id"`
	Type          EventType         `json:"type"`
	UserID        string            `json:"user_id"`
	Data          json.RawMessage   `json:"data"`
	Metadata      map[string]string `json:"metadata"`
	Timestamp     time.Time         `json:"timestamp"`
	CorrelationID string            `json:"correlation_id,omitempty"`
}

// MenuItemsDeleted is the payload of a menu.items_deleted event.
type MenuItemsDeleted struct {
	ItemIDs []string `json:"item_ids"`
}

// messageWriter is the part of *kafka.Writer the publishers use.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}
}

// KafkaPublisher publishes order and menu events to Kafka.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	logger *logging.LoggerV2
}

// NewKafkaPublisher creates a publisher on the orders topic.
func NewKafkaPublisher(cfg config.KafkaConfig, logger *logging.LoggerV2) *KafkaPublisher {
	return &KafkaPublisher{
		writer: newWriter(cfg.Brokers, cfg.OrdersTopic),
		topic:  cfg.OrdersTopic,
		logger: logger,
	}
}

// PublishOrderCreated publishes an order created event keyed by the order id.
func (p *KafkaPublisher) PublishOrderCreated(ctx context.Context, order *models.Order) error {
	p.logger.Debug("Publishing order created event", logging.Fields{
		"order_id": order.ID,
	})

	data, err := json.Marshal(order)
	if err != nil {
		return err
	}

	event := newEvent(ctx, EventTypeOrderCreated, order.UserID, data)
	event.Metadata["order_id"] = order.ID
	event.Metadata["payment_method"] = string(order.PaymentMethod)
	return p.publish(ctx, order.ID, event)
}

// PublishMenuItemsDeleted publishes the ids of removed menu items keyed by
// the owner.
func (p *KafkaPublisher) PublishMenuItemsDeleted(ctx context.Context, userID string, ids []string) error {
	p.logger.Debug("Publishing menu items deleted event", logging.Fields{
		"user_id": userID,
		"count":   len(ids),
	})

	data, err := json.Marshal(MenuItemsDeleted{ItemIDs: ids})
	if err != nil {
		return err
	}

	return p.publish(ctx, userID, newEvent(ctx, EventTypeMenuItemsDeleted, userID, data))
}

func newEvent(ctx context.Context, eventType EventType, userID string, data []byte) *Event {
	return &Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		UserID:        userID,
		Data:          data,
		Metadata:      make(map[string]string),
		Timestamp:     time.Now().UTC(),
		CorrelationID: middleware.RequestIDFromContext(ctx),
	}
}

func (p *KafkaPublisher) publish(ctx context.Context, key string, event *Event) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: eventData,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish event", logging.Fields{
			"event_id":   event.ID,
			"event_type": event.Type,
			"topic":      p.topic,
			"error":      err.Error(),
		})
		return err
	}

	p.logger.Info("Event published", logging.Fields{
		"event_id":   event.ID,
		"event_type": event.Type,
		"key":        key,
	})
	return nil
}

// Close closes the Kafka writer.
func (p *KafkaPublisher) Close() error {
	p.logger.Info("Closing Kafka publisher")
	return p.writer.Close()
}

// MockEventPublisher records events instead of sending them. It is used when
// event publishing is disabled.
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []*Event
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{
		Events: make([]*Event, 0),
	}
}

func (m *MockEventPublisher) PublishOrderCreated(ctx context.Context, order *models.Order) error {
	m.record(&Event{Type: EventTypeOrderCreated, UserID: order.UserID, Metadata: map[string]string{"order_id": order.ID}})
	return nil
}

func (m *MockEventPublisher) PublishMenuItemsDeleted(ctx context.Context, userID string, ids []string) error {
	m.record(&Event{Type: EventTypeMenuItemsDeleted, UserID: userID})
	return nil
}

func (m *MockEventPublisher) record(e *Event) {
	m.mu.Lock()
	m.Events = append(m.Events, e)
	m.mu.Unlock()
}

// Close is a no-op.
func (m *MockEventPublisher) Close() error { return nil }
