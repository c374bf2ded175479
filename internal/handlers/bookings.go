package handlers

import (
	"net/http"
	"strconv"

	"helperhive/internal/models"

	"github.com/gin-gonic/gin"
)

func bookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return 0, false
	}
	return id, true
}

// CreateBooking - POST /api/bookings
func (h *Handlers) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.services.Bookings.Create(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// ListBookings - GET /api/bookings
func (h *Handlers) ListBookings(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	resp, err := h.services.Bookings.List(c.Request.Context(),
		currentUserID(c), currentRole(c), c.Query("status"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetBooking - GET /api/bookings/:id
func (h *Handlers) GetBooking(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	detail, err := h.services.Bookings.Get(c.Request.Context(), currentUserID(c), currentRole(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// RespondBooking - POST /api/bookings/:id/respond
func (h *Handlers) RespondBooking(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	var req models.RespondBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.services.Bookings.Respond(c.Request.Context(), currentUserID(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// UpdateBookingStatus - PUT /api/bookings/:id/status
func (h *Handlers) UpdateBookingStatus(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.services.Bookings.UpdateStatus(c.Request.Context(), currentUserID(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// UpdateBookingLocation - PUT /api/bookings/:id/location
func (h *Handlers) UpdateBookingLocation(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	var req models.UpdateLocationPingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.services.Bookings.LocationPing(c.Request.Context(), currentUserID(c), id, &req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "location updated"})
}

// AddBookingMessage - POST /api/bookings/:id/messages
func (h *Handlers) AddBookingMessage(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	var req models.AddMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.services.Bookings.AddMessage(c.Request.Context(), currentUserID(c), currentRole(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// ListBookingMessages - GET /api/bookings/:id/messages
func (h *Handlers) ListBookingMessages(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	messages, err := h.services.Bookings.ListMessages(c.Request.Context(), currentUserID(c), currentRole(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// TriggerEmergency - POST /api/bookings/:id/emergency
func (h *Handlers) TriggerEmergency(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	var req models.EmergencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.services.Bookings.Emergency(c.Request.Context(), currentUserID(c), currentRole(c), id, &req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "emergency alert raised"})
}

// CancelBooking - POST /api/bookings/:id/cancel
func (h *Handlers) CancelBooking(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	var req models.CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.services.Bookings.Cancel(c.Request.Context(), currentUserID(c), currentRole(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
