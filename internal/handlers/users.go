package handlers

import (
	"net/http"

	"helperhive/internal/models"

	"github.com/gin-gonic/gin"
)

// GetProfile - GET /api/users/me
func (h *Handlers) GetProfile(c *gin.Context) {
	profile, err := h.services.Users.GetProfile(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateProfile - PATCH /api/users/me
func (h *Handlers) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.services.Users.UpdateProfile(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateLocation - PUT /api/users/me/location
func (h *Handlers) UpdateLocation(c *gin.Context) {
	var req models.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.services.Users.UpdateLocation(c.Request.Context(), currentUserID(c), &req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "location updated"})
}

// UpdateProviderProfile - PATCH /api/users/me/provider
func (h *Handlers) UpdateProviderProfile(c *gin.Context) {
	var req models.UpdateProviderProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.services.Users.UpdateProviderProfile(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateAvailability - PUT /api/users/me/availability
func (h *Handlers) UpdateAvailability(c *gin.Context) {
	var req models.UpdateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.services.Users.UpdateAvailability(c.Request.Context(), currentUserID(c), &req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "availability updated"})
}
