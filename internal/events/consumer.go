package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

// LogStore persists consumed log entries.
type LogStore interface {
	Store(ctx context.Context, entry *models.LogEntry) error
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// LogConsumer consumes the logs topic and stores each entry.
type LogConsumer struct {
	reader   messageReader
	store    LogStore
	logger   *logging.LoggerV2
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewLogConsumer creates a consumer of the logs topic.
func NewLogConsumer(cfg config.KafkaConfig, store LogStore, logger *logging.LoggerV2) *LogConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.LogsTopic,
		GroupID:  cfg.ConsumerGroup,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})
	return newLogConsumer(reader, store, logger)
}

func newLogConsumer(reader messageReader, store LogStore, logger *logging.LoggerV2) *LogConsumer {
	return &LogConsumer{
		reader: reader,
		store:  store,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

// Start consumes until ctx is done or Stop is called.
func (c *LogConsumer) Start(ctx context.Context) error {
	c.logger.Info("Starting log consumer")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stopCh:
			c.logger.Info("Log consumer stopped")
			return nil
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				select {
				case <-c.stopCh:
					continue
				default:
				}
				c.logger.Error("Failed to read message", logging.Fields{"error": err.Error()})
				continue
			}

			c.handleMessage(ctx, msg)
		}
	}
}

// Stop stops the consumer and closes its reader.
func (c *LogConsumer) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		if err := c.reader.Close(); err != nil {
			c.logger.Warn("Failed to close log reader", logging.Fields{"error": err.Error()})
		}
	})
}

func (c *LogConsumer) handleMessage(ctx context.Context, msg kafka.Message) {
	c.logger.Debug("Received message", logging.Fields{
		"topic":     msg.Topic,
		"partition": msg.Partition,
		"offset":    msg.Offset,
	})

	var entry models.LogEntry
	if err := json.Unmarshal(msg.Value, &entry); err != nil {
		c.logger.Error("Failed to unmarshal log entry", logging.Fields{"error": err.Error()})
		return
	}
	if !entry.Level.Valid() || entry.Message == "" {
		c.logger.Warn("Dropping invalid log entry", logging.Fields{"offset": msg.Offset})
		return
	}

	if err := c.store.Store(ctx, &entry); err != nil {
		c.logger.Error("Failed to store log entry", logging.Fields{
			"user_id": entry.UserID,
			"error":   err.Error(),
		})
	}
}
