package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

// ListMenu handles GET /api/menu
func (h *Handlers) ListMenu(c *gin.Context) {
	params, err := listParams(c, defaultMenuLimit, true)
	if err != nil {
		h.handleError(c, err)
		return
	}
	page, err := h.menu.List(c.Request.Context(), session(c), params)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// CreateMenuItem handles POST /api/menu
func (h *Handlers) CreateMenuItem(c *gin.Context) {
	var input models.MenuItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	item, err := h.menu.Create(c.Request.Context(), session(c), input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// UpdateMenuItem handles PUT /api/menu/:id
func (h *Handlers) UpdateMenuItem(c *gin.Context) {
	var update models.MenuItemUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	item, err := h.menu.Update(c.Request.Context(), session(c), c.Param("id"), update)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// DeleteMenuItem handles DELETE /api/menu/:id
func (h *Handlers) DeleteMenuItem(c *gin.Context) {
	if err := h.menu.Delete(c.Request.Context(), session(c), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteMenuItems handles POST /api/menu/delete-many
func (h *Handlers) DeleteMenuItems(c *gin.Context) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Item IDs are required")
		return
	}

	if _, err := h.menu.DeleteMany(c.Request.Context(), session(c), req.IDs); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
