package handlers

import (
	"net/http"
	"strconv"

	"helperhive/internal/models"

	"github.com/gin-gonic/gin"
)

// ListServices - GET /api/services
func (h *Handlers) ListServices(c *gin.Context) {
	services, err := h.services.Catalog.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"services": services})
}

// ListCategories - GET /api/services/categories
func (h *Handlers) ListCategories(c *gin.Context) {
	categories, err := h.services.Catalog.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GetService - GET /api/services/:id
func (h *Handlers) GetService(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service id"})
		return
	}

	detail, err := h.services.Catalog.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// NearbyProviders - POST /api/services/nearby
func (h *Handlers) NearbyProviders(c *gin.Context) {
	var req models.NearbyProvidersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	providers, err := h.services.Catalog.Nearby(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"providers": providers})
}
