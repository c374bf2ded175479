package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"helperhive/internal/apperr"
	"helperhive/internal/service"
)

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandlers(&service.Services{})

	r := gin.New()
	api := r.Group("/api")
	{
		api.POST("/auth/register", h.Register)
		api.POST("/bookings", h.CreateBooking)
		api.GET("/bookings/:id", h.GetBooking)
	}
	return r
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("POST", path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	r := setupRouter()

	w := postJSON(r, "/api/auth/register", `{"email":"x@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateBookingRejectsMalformedJSON(t *testing.T) {
	r := setupRouter()

	w := postJSON(r, "/api/bookings", `{"service_id":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetBookingRejectsBadID(t *testing.T) {
	r := setupRouter()

	req, _ := http.NewRequest("GET", "/api/bookings/not-a-number", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid booking id")
}

func TestRespondErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err    error
		status int
	}{
		{apperr.Validation("bad input"), http.StatusBadRequest},
		{apperr.Unauthorized("no token"), http.StatusUnauthorized},
		{apperr.Forbidden("not yours"), http.StatusForbidden},
		{apperr.NotFound("gone"), http.StatusNotFound},
		{apperr.StateConflict("too late"), http.StatusConflict},
		{apperr.External("gateway down", errors.New("dial tcp")), http.StatusBadGateway},
		{apperr.Internal(errors.New("boom")), http.StatusInternalServerError},
		{errors.New("untyped"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		r := gin.New()
		r.GET("/fail", func(c *gin.Context) { respondError(c, tt.err) })

		req, _ := http.NewRequest("GET", "/fail", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, tt.status, w.Code, "error %v", tt.err)
	}
}

func TestRespondErrorHidesInternalCause(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/fail", func(c *gin.Context) {
		respondError(c, apperr.Internal(errors.New("pq: relation bookings does not exist")))
	})

	req, _ := http.NewRequest("GET", "/fail", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "pq:")
	assert.Contains(t, w.Body.String(), "internal error")
}
