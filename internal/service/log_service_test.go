package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/middleware"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

type fakeShipper struct {
	mu      sync.Mutex
	shipped []*models.LogEntry
	err     error
}

func (s *fakeShipper) ShipLog(_ context.Context, entry *models.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.shipped = append(s.shipped, entry)
	return nil
}

func TestLogService_RecordValidates(t *testing.T) {
	env := newTestEnv(t)
	session := &models.Session{UserID: "u1"}

	for name, entry := range map[string]*models.LogEntry{
		"bad level":     {Level: "fatal", Message: "x"},
		"empty message": {Level: models.LogLevelInfo, Message: "  "},
	} {
		t.Run(name, func(t *testing.T) {
			err := env.logs.Record(context.Background(), session, entry)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Contains(t, err.Error(), "Invalid log payload")
		})
	}
}

func TestLogService_RecordStampsSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	session := &models.Session{UserID: "u1"}

	entry := &models.LogEntry{Level: models.LogLevelWarn, Message: strings.Repeat("x", 3000), UserID: "spoofed"}
	require.NoError(t, env.logs.Record(ctx, session, entry))

	entries, err := env.logs.List(ctx, models.LogFilter{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "u1", entries[0].UserID)
	assert.Len(t, entries[0].Message, 2000)
	assert.False(t, entries[0].Timestamp.IsZero())
}

func TestLogService_StreamingShipsEntries(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Features.EnableLogStreaming = true
	shipper := &fakeShipper{}
	logs := NewLogService(env.store.Logs(), shipper, env.cfg)
	ctx := context.Background()

	require.NoError(t, logs.Record(ctx, &models.Session{UserID: "u1"}, &models.LogEntry{Level: models.LogLevelInfo, Message: "hi"}))
	assert.Len(t, shipper.shipped, 1)

	stored, err := logs.List(ctx, models.LogFilter{})
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestLogService_StreamingFallsBackToStore(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Features.EnableLogStreaming = true
	logs := NewLogService(env.store.Logs(), &fakeShipper{err: errors.New("broker down")}, env.cfg)
	ctx := context.Background()

	require.NoError(t, logs.Record(ctx, &models.Session{UserID: "u1"}, &models.LogEntry{Level: models.LogLevelError, Message: "boom"}))

	stored, err := logs.List(ctx, models.LogFilter{})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "boom", stored[0].Message)
}

func TestLogService_ReportError(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")

	env.logs.ReportError(ctx, "u1", errors.New("database is down"))

	stored, err := env.logs.List(context.Background(), models.LogFilter{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, models.LogLevelError, stored[0].Level)
	assert.Equal(t, "server", stored[0].Meta["source"])
	assert.Equal(t, "req-42", stored[0].Meta["requestId"])
}
