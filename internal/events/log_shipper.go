package events

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/service"
)

var _ service.LogShipper = (*KafkaLogShipper)(nil)

// KafkaLogShipper writes client log entries to the logs topic. LogConsumer
// stores them.
type KafkaLogShipper struct {
	writer messageWriter
	logger *logging.LoggerV2
}

func NewKafkaLogShipper(cfg config.KafkaConfig, logger *logging.LoggerV2) *KafkaLogShipper {
	return &KafkaLogShipper{
		writer: newWriter(cfg.Brokers, cfg.LogsTopic),
		logger: logger,
	}
}

// ShipLog writes one entry keyed by its user.
func (s *KafkaLogShipper) ShipLog(ctx context.Context, entry *models.LogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(entry.UserID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "level", Value: []byte(entry.Level)},
		},
	}
	return s.writer.WriteMessages(ctx, msg)
}

func (s *KafkaLogShipper) Close() error {
	s.logger.Info("Closing Kafka log shipper")
	return s.writer.Close()
}
