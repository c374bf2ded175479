package handlers

import (
	"net/http"

	"helperhive/internal/apperr"
	"helperhive/internal/logger"
	"helperhive/internal/middleware"
	"helperhive/internal/service"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	services *service.Services
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{services: services}
}

var kindToStatus = map[apperr.Kind]int{
	apperr.KindValidation:    http.StatusBadRequest,
	apperr.KindUnauthorized:  http.StatusUnauthorized,
	apperr.KindForbidden:     http.StatusForbidden,
	apperr.KindNotFound:      http.StatusNotFound,
	apperr.KindStateConflict: http.StatusConflict,
	apperr.KindExternal:      http.StatusBadGateway,
	apperr.KindInternal:      http.StatusInternalServerError,
}

// respondError maps the error kind to a status code with a client-safe
// message. Internal causes go to the log, never to the response.
func respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status, ok := kindToStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	if status >= 500 || kind == apperr.KindExternal {
		logger.WithContext(c.Request.Context()).Error("Request failed",
			"error", err,
			"method", c.Request.Method,
			"path", c.Request.URL.Path)
	}

	c.JSON(status, gin.H{"error": apperr.ClientMessage(err)})
}

func currentUserID(c *gin.Context) int64 {
	id, _ := middleware.UserIDFromContext(c.Request.Context())
	return id
}

func currentRole(c *gin.Context) string {
	role, _ := middleware.RoleFromContext(c.Request.Context())
	return role
}
