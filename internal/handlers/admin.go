package handlers

import (
	"net/http"
	"strconv"

	"helperhive/internal/models"

	"github.com/gin-gonic/gin"
)

// Dashboard - GET /api/admin/dashboard
func (h *Handlers) Dashboard(c *gin.Context) {
	stats, err := h.services.Admin.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// AdminListUsers - GET /api/admin/users
func (h *Handlers) AdminListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	users, total, err := h.services.Admin.ListUsers(c.Request.Context(), c.Query("role"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users, "total": total, "page": page})
}

// AdminUpdateUserStatus - PUT /api/admin/users/:id/status
func (h *Handlers) AdminUpdateUserStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req models.UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.services.Admin.UpdateUserStatus(c.Request.Context(), id, &req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user status updated"})
}

// AdminUpdateVerification - PUT /api/admin/providers/:id/verification
func (h *Handlers) AdminUpdateVerification(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid provider id"})
		return
	}

	var req models.UpdateVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.services.Admin.UpdateVerification(c.Request.Context(), id, &req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "verification updated"})
}

// AdminListDisputes - GET /api/admin/disputes
func (h *Handlers) AdminListDisputes(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	bookings, total, err := h.services.Admin.ListDisputes(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"disputes": bookings, "total": total, "page": page})
}

// AdminOpenDispute - POST /api/admin/bookings/:id/dispute
func (h *Handlers) AdminOpenDispute(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	var req struct {
		Note string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.services.Admin.OpenDispute(c.Request.Context(), currentUserID(c), id, req.Note); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "dispute opened"})
}

// AdminResolveDispute - POST /api/admin/bookings/:id/resolve
func (h *Handlers) AdminResolveDispute(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	var req models.ResolveDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.services.Admin.ResolveDispute(c.Request.Context(), currentUserID(c), id, &req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "dispute resolved"})
}

// AdminCreateService - POST /api/admin/services
func (h *Handlers) AdminCreateService(c *gin.Context) {
	var req models.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc, err := h.services.Catalog.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, svc)
}

// AdminSetServiceActive - PUT /api/admin/services/:id/active
func (h *Handlers) AdminSetServiceActive(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service id"})
		return
	}

	var req struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.services.Catalog.SetActive(c.Request.Context(), id, *req.IsActive); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "service updated"})
}
