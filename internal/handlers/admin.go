package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

// AdminStats handles GET /api/admin/stats
func (h *Handlers) AdminStats(c *gin.Context) {
	stats, err := h.admin.Stats(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// AdminListUsers handles GET /api/admin/users
func (h *Handlers) AdminListUsers(c *gin.Context) {
	users, err := h.admin.ListUsers(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// AdminCreateUser handles POST /api/admin/users
func (h *Handlers) AdminCreateUser(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Username and password are required")
		return
	}

	user, err := h.admin.CreateUser(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// AdminResetPassword handles PUT /api/admin/users/:id/reset-password
func (h *Handlers) AdminResetPassword(c *gin.Context) {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "New password is required")
		return
	}

	message, err := h.admin.ResetPassword(c.Request.Context(), c.Param("id"), req.Password)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

// AdminOrders handles GET /api/admin/orders
func (h *Handlers) AdminOrders(c *gin.Context) {
	orders, err := h.admin.Orders(c.Request.Context(), c.Query("userId"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, orders)
}

// AdminMenu handles GET /api/admin/menu
func (h *Handlers) AdminMenu(c *gin.Context) {
	items, err := h.admin.Menu(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

// AdminCreateMenuItem handles POST /api/admin/menu
func (h *Handlers) AdminCreateMenuItem(c *gin.Context) {
	var input models.MenuItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	item, err := h.admin.CreateMenuItem(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// AdminLogs handles GET /api/admin/logs
func (h *Handlers) AdminLogs(c *gin.Context) {
	entries, err := h.admin.Logs(c.Request.Context(), c.Query("userId"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}
