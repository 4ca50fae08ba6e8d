// Package handlers provides HTTP request handlers.
package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"quarryflow/internal/core/apperror"
	"quarryflow/internal/core/id"
	"quarryflow/internal/infrastructure/http/v1/dto"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

// NewBaseHandler creates a new base handler.
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// BindJSON binds and validates JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// Error registers error on Gin context and aborts request.
// Actual JSON response is produced by middleware.ErrorHandler (single source of truth).
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ParseIntQuery parses integer query parameter with default value.
func (h *BaseHandler) ParseIntQuery(c *gin.Context, key string, defaultVal int) int {
	val := c.Query(key)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

// ParseDate parses a YYYY-MM-DD value, reporting a validation error on the
// context when it is malformed.
func (h *BaseHandler) ParseDate(c *gin.Context, name, value string) (time.Time, bool) {
	parsed, err := time.ParseInLocation(dto.DateFormat, value, time.UTC)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid "+name+" format, expected "+dto.DateFormat))
		return time.Time{}, false
	}
	return parsed, true
}

// ParseDateQuery parses an optional date query parameter, falling back to the
// given default when absent.
func (h *BaseHandler) ParseDateQuery(c *gin.Context, key string, defaultVal time.Time) (time.Time, bool) {
	val := c.Query(key)
	if val == "" {
		return defaultVal, true
	}
	return h.ParseDate(c, key, val)
}

// ParseID parses a UUID value, reporting a validation error when malformed.
func (h *BaseHandler) ParseID(c *gin.Context, name, value string) (id.ID, bool) {
	parsed, err := id.Parse(value)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid "+name+" format"))
		return id.ID{}, false
	}
	return parsed, true
}

// ParseIDQuery parses an optional UUID query parameter.
func (h *BaseHandler) ParseIDQuery(c *gin.Context, key string) (*id.ID, bool) {
	val := c.Query(key)
	if val == "" {
		return nil, true
	}
	parsed, ok := h.ParseID(c, key, val)
	if !ok {
		return nil, false
	}
	return &parsed, true
}
