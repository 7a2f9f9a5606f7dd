package handlers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/middleware"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/service"
)

const (
	defaultMenuLimit  = 12
	defaultOrderLimit = 20

	// maxListOffset bounds (page-1)*limit.
	maxListOffset = math.MaxInt32

	reportErrorTimeout = 5 * time.Second
)

// Services are the business services the handlers call into.
type Services struct {
	Auth       *service.AuthService
	Menu       *service.MenuService
	Orders     *service.OrderService
	Checkout   *service.CheckoutService
	Profiles   *service.ProfileService
	Logs       *service.LogService
	Admin      *service.AdminService
	Currencies *service.CurrencyTable
}

// Handlers holds all HTTP handlers for the POS service.
type Handlers struct {
	auth       *service.AuthService
	menu       *service.MenuService
	orders     *service.OrderService
	checkout   *service.CheckoutService
	profiles   *service.ProfileService
	logs       *service.LogService
	admin      *service.AdminService
	currencies *service.CurrencyTable
	gatherer   prometheus.Gatherer
	readiness  []readinessCheck
	config     *config.Config
	logger     *logging.LoggerV2
}

// NewHandlers creates a new handlers instance.
func NewHandlers(svc Services, gatherer prometheus.Gatherer, cfg *config.Config) *Handlers {
	return &Handlers{
		auth:       svc.Auth,
		menu:       svc.Menu,
		orders:     svc.Orders,
		checkout:   svc.Checkout,
		profiles:   svc.Profiles,
		logs:       svc.Logs,
		admin:      svc.Admin,
		currencies: svc.Currencies,
		gatherer:   gatherer,
		config:     cfg,
		logger:     logging.NewLoggerV2("handlers"),
	}
}

// handleError writes err as a JSON response. Unexpected errors are reported
// on the log channel and their details are not exposed.
func (h *Handlers) handleError(c *gin.Context, err error) {
	status := apperrors.StatusCode(err)

	var validationErr *apperrors.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(status, gin.H{
			"message": validationErr.Message,
			"details": validationErr.Details,
		})
		return
	}

	if status < http.StatusInternalServerError {
		c.JSON(status, gin.H{"message": err.Error()})
		return
	}

	userID := ""
	if session := middleware.SessionFrom(c); session != nil {
		userID = session.UserID
	}
	h.logger.Error("Request failed", logging.Fields{
		"method":  c.Request.Method,
		"path":    c.FullPath(),
		"user_id": userID,
		"error":   err.Error(),
	})
	if h.logs != nil {
		ctx := context.WithoutCancel(c.Request.Context())
		go func() {
			ctx, cancel := context.WithTimeout(ctx, reportErrorTimeout)
			defer cancel()
			h.logs.ReportError(ctx, userID, err)
		}()
	}

	message := "Server Error"
	if status == http.StatusServiceUnavailable {
		message = "Service temporarily unavailable"
	}
	c.JSON(status, gin.H{"message": message})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": message})
}

// listParams reads page, limit, search, sortBy and sortOrder. A limit of 0
// means "all" unless zeroIsDefault is set, in which case it falls back to
// defaultLimit. Pages that start past maxListOffset are rejected.
func listParams(c *gin.Context, defaultLimit int, zeroIsDefault bool) (models.ListParams, error) {
	params := models.ListParams{
		Page:      1,
		Limit:     defaultLimit,
		Search:    strings.TrimSpace(c.Query("search")),
		SortBy:    c.Query("sortBy"),
		SortOrder: models.ParseSortOrder(c.Query("sortOrder")),
	}

	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		params.Page = page
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit >= 0 {
		if limit > 0 || !zeroIsDefault {
			params.Limit = limit
		}
	}
	if params.Limit > 0 && params.Page-1 > maxListOffset/params.Limit {
		return params, apperrors.NewValidationError("page", "Page is out of range.")
	}
	return params, nil
}

func session(c *gin.Context) *models.Session {
	return middleware.SessionFrom(c)
}
