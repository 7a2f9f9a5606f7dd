package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Version is set at build time.
var Version = "dev"

const readinessTimeout = 2 * time.Second

var startTime = time.Now()

type readinessCheck struct {
	name  string
	check func(ctx context.Context) error
}

// AddReadinessCheck registers a dependency probed by /ready.
func (h *Handlers) AddReadinessCheck(name string, check func(ctx context.Context) error) {
	h.readiness = append(h.readiness, readinessCheck{name: name, check: check})
}

// Health handles GET /health
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "pos-service",
	})
}

// Ready handles GET /ready
func (h *Handlers) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	status := http.StatusOK
	checks := gin.H{}
	for _, rc := range h.readiness {
		if err := rc.check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			checks[rc.name] = err.Error()
			continue
		}
		checks[rc.name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	c.JSON(status, gin.H{
		"status":  state,
		"service": "pos-service",
		"checks":  checks,
	})
}

// Live handles GET /live
func (h *Handlers) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

// Metrics handles GET /metrics (Prometheus format)
func (h *Handlers) Metrics(c *gin.Context) {
	promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}).ServeHTTP(c.Writer, c.Request)
}

// Version handles GET /version
func (h *Handlers) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":    Version,
		"service":    "pos-service",
		"go_version": runtime.Version(),
		"started_at": startTime.Format(time.RFC3339),
	})
}

// Debug handles GET /debug. It is only routed when debug mode is on.
func (h *Handlers) Debug(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"features": gin.H{
			"enable_order_events":      h.config.Features.EnableOrderEvents,
			"enable_profile_caching":   h.config.Features.EnableProfileCaching,
			"enable_log_streaming":     h.config.Features.EnableLogStreaming,
			"enable_sms_receipts":      h.config.Features.EnableSMSReceipts,
			"require_customer_details": h.config.Features.RequireCustomerDetails,
		},
		"config": gin.H{
			"server_port":    h.config.Server.Port,
			"storage_driver": h.config.Storage.Driver,
			"database_host":  h.config.Database.Host,
			"redis_host":     h.config.Redis.Host,
			"kafka_brokers":  h.config.Kafka.Brokers,
		},
	})
}
