package handlers

import (
	"net/http"
	"strconv"

	"helperhive/internal/models"

	"github.com/gin-gonic/gin"
)

// CreatePaymentIntent - POST /api/payments/intent
func (h *Handlers) CreatePaymentIntent(c *gin.Context) {
	var req models.CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.services.Payments.CreateIntent(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// ConfirmPayment - POST /api/payments/confirm
func (h *Handlers) ConfirmPayment(c *gin.Context) {
	var req models.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.services.Payments.Confirm(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// RequestRefund - POST /api/payments/refund
func (h *Handlers) RequestRefund(c *gin.Context) {
	var req models.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.services.Payments.Refund(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetPaymentHistory - GET /api/payments/history
func (h *Handlers) GetPaymentHistory(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	resp, err := h.services.Payments.History(c.Request.Context(),
		currentUserID(c), currentRole(c), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetEarnings - GET /api/payments/earnings
func (h *Handlers) GetEarnings(c *gin.Context) {
	resp, err := h.services.Payments.Earnings(c.Request.Context(), currentUserID(c), c.Query("period"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
