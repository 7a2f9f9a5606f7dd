package service

import (
	"context"
	"time"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/middleware"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/repository"
)

// LogService is the client log channel. With streaming enabled entries go
// through the log topic and are stored by the consumer.
type LogService struct {
	repo    repository.LogRepository
	shipper LogShipper
	config  *config.Config
	logger  *logging.LoggerV2
}

func NewLogService(repo repository.LogRepository, shipper LogShipper, cfg *config.Config) *LogService {
	return &LogService{
		repo:    repo,
		shipper: shipper,
		config:  cfg,
		logger:  logging.NewLoggerV2("log-service"),
	}
}

// Record validates and accepts a client log entry for the session user.
func (s *LogService) Record(ctx context.Context, session *models.Session, entry *models.LogEntry) error {
	if err := ValidateLogEntry(entry); err != nil {
		return err
	}
	entry.ID = ""
	entry.UserID = session.UserID
	entry.Timestamp = time.Now().UTC()

	if s.config.Features.EnableLogStreaming && s.shipper != nil {
		err := s.shipper.ShipLog(ctx, entry)
		if err == nil {
			return nil
		}
		s.logger.Warn("Log shipping failed, storing directly", logging.Fields{
			"user_id": session.UserID,
			"error":   err.Error(),
		})
	}
	return s.Store(ctx, entry)
}

// Store writes an entry to the log collection.
func (s *LogService) Store(ctx context.Context, entry *models.LogEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	return s.repo.Create(ctx, entry)
}

// ReportError records a server-side failure on the log channel. Failures to
// record are only logged.
func (s *LogService) ReportError(ctx context.Context, userID string, cause error) {
	entry := &models.LogEntry{
		Level:   models.LogLevelError,
		Message: cause.Error(),
		UserID:  userID,
		Meta: map[string]interface{}{
			"source": "server",
		},
	}
	if requestID := middleware.RequestIDFromContext(ctx); requestID != "" {
		entry.Meta["requestId"] = requestID
	}

	if err := s.Store(ctx, entry); err != nil {
		s.logger.Error("Failed to record error on log channel", logging.Fields{
			"cause": cause.Error(),
			"error": err.Error(),
		})
	}
}

func (s *LogService) List(ctx context.Context, filter models.LogFilter) ([]*models.LogEntry, error) {
	return s.repo.List(ctx, filter)
}
