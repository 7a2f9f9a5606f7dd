package service

import (
	"context"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/clients"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

// EventPublisher publishes domain events for downstream consumers.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *models.Order) error
	PublishMenuItemsDeleted(ctx context.Context, userID string, itemIDs []string) error
}

// SMSSender delivers SMS receipts.
type SMSSender interface {
	SendSMS(ctx context.Context, req *clients.SMSRequest) error
}

// LogShipper forwards client log entries to the log stream.
type LogShipper interface {
	ShipLog(ctx context.Context, entry *models.LogEntry) error
}
