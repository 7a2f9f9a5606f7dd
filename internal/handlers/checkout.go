package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/service"
)

// GetTicket handles GET /api/checkout
func (h *Handlers) GetTicket(c *gin.Context) {
	h.respondTicket(c)(h.checkout.Get(c.Request.Context(), session(c)))
}

// AddLine handles POST /api/checkout/lines
func (h *Handlers) AddLine(c *gin.Context) {
	var req service.AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	h.respondTicket(c)(h.checkout.AddLine(c.Request.Context(), session(c), req))
}

// SetQuantity handles PUT /api/checkout/lines
func (h *Handlers) SetQuantity(c *gin.Context) {
	var req service.SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	h.respondTicket(c)(h.checkout.SetQuantity(c.Request.Context(), session(c), req))
}

// SetCustomer handles PUT /api/checkout/customer
func (h *Handlers) SetCustomer(c *gin.Context) {
	var customer models.Customer
	if err := c.ShouldBindJSON(&customer); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	h.respondTicket(c)(h.checkout.SetCustomer(c.Request.Context(), session(c), customer))
}

// SetTax handles PUT /api/checkout/tax
func (h *Handlers) SetTax(c *gin.Context) {
	var req struct {
		Included *bool `json:"included"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Included == nil {
		badRequest(c, "included is required")
		return
	}
	h.respondTicket(c)(h.checkout.SetTax(c.Request.Context(), session(c), *req.Included))
}

// SetCurrency handles PUT /api/checkout/currency
func (h *Handlers) SetCurrency(c *gin.Context) {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	h.respondTicket(c)(h.checkout.SetCurrency(c.Request.Context(), session(c), req.Code))
}

// ClearTicket handles DELETE /api/checkout
func (h *Handlers) ClearTicket(c *gin.Context) {
	h.respondTicket(c)(h.checkout.Clear(c.Request.Context(), session(c)))
}

// Proceed handles POST /api/checkout/proceed
func (h *Handlers) Proceed(c *gin.Context) {
	h.respondTicket(c)(h.checkout.Proceed(c.Request.Context(), session(c)))
}

// CancelPayment handles POST /api/checkout/cancel
func (h *Handlers) CancelPayment(c *gin.Context) {
	h.respondTicket(c)(h.checkout.Cancel(c.Request.Context(), session(c)))
}

// Pay handles POST /api/checkout/pay
func (h *Handlers) Pay(c *gin.Context) {
	var req struct {
		PaymentMethod models.PaymentMethod `json:"paymentMethod"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	order, ticket, err := h.checkout.Pay(c.Request.Context(), session(c), req.PaymentMethod)
	if err != nil {
		h.handleError(c, err)
		return
	}

	message := "Order saved successfully!"
	if h.config.Features.EnableSMSReceipts && order.Customer.Mobile != "" {
		message = "Order saved successfully! SMS notification sent."
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": message,
		"order":   models.NewOrderView(order),
		"ticket":  ticket,
	})
}

func (h *Handlers) respondTicket(c *gin.Context) func(*service.TicketView, error) {
	return func(view *service.TicketView, err error) {
		if err != nil {
			h.handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}
