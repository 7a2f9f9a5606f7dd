package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/service"
)

func orderQuery(c *gin.Context) (service.OrderQuery, error) {
	params, err := listParams(c, defaultOrderLimit, false)
	if err != nil {
		return service.OrderQuery{}, err
	}
	return service.OrderQuery{
		ListParams:    params,
		PaymentFilter: c.Query("paymentFilter"),
		FilterType:    models.DateFilterType(c.Query("filterType")),
		SingleDate:    c.Query("singleDate"),
		DateStart:     c.Query("dateStart"),
		DateEnd:       c.Query("dateEnd"),
	}, nil
}

// ListOrders handles GET /api/orders
func (h *Handlers) ListOrders(c *gin.Context) {
	q, err := orderQuery(c)
	if err != nil {
		h.handleError(c, err)
		return
	}
	page, err := h.orders.List(c.Request.Context(), session(c), q)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// CountOrders handles GET /api/orders/count
func (h *Handlers) CountOrders(c *gin.Context) {
	count, err := h.orders.Count(c.Request.Context(), session(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// GetOrder handles GET /api/orders/:id
func (h *Handlers) GetOrder(c *gin.Context) {
	order, err := h.orders.Get(c.Request.Context(), session(c), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// ExportOrders handles GET /api/orders/export
func (h *Handlers) ExportOrders(c *gin.Context) {
	q, err := orderQuery(c)
	if err != nil {
		h.handleError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.orders.Export(c.Request.Context(), session(c), q, &buf); err != nil {
		h.handleError(c, err)
		return
	}

	filename := fmt.Sprintf("orders-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// CreateOrder handles POST /api/orders
func (h *Handlers) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Failed to bind request", logging.Fields{"error": err.Error()})
		badRequest(c, "invalid request body")
		return
	}

	order, err := h.orders.Create(c.Request.Context(), session(c), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.NewOrderView(order))
}
