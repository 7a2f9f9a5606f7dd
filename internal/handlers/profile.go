package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

// GetProfile handles GET /api/profile
func (h *Handlers) GetProfile(c *gin.Context) {
	profile, err := h.profiles.Get(c.Request.Context(), session(c).UserID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateProfile handles PUT /api/profile
func (h *Handlers) UpdateProfile(c *gin.Context) {
	var update models.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	profile, err := h.profiles.Update(c.Request.Context(), session(c).UserID, update)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// ListCurrencies handles GET /api/currencies
func (h *Handlers) ListCurrencies(c *gin.Context) {
	c.JSON(http.StatusOK, h.currencies.List())
}

// CreateLog handles POST /api/logs
func (h *Handlers) CreateLog(c *gin.Context) {
	var entry models.LogEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid log payload"})
		return
	}

	if err := h.logs.Record(c.Request.Context(), session(c), &entry); err != nil {
		if status := apperrors.StatusCode(err); status == http.StatusBadRequest {
			c.JSON(status, gin.H{"success": false, "message": "Invalid log payload"})
			return
		}
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true})
}
