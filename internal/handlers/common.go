package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/BIJODEV/BibleQZ/internal/errors"
	"github.com/BIJODEV/BibleQZ/internal/services"
	"github.com/BIJODEV/BibleQZ/internal/utils"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

// NewBaseHandler creates a new base handler with logging capability
func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{
		logger: logger,
	}
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"request_id", c.GetHeader("X-Request-ID"),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	fields = append(fields, additionalFields...)
	h.logger.LogError(err, message, fields...)
}

// LogInfo logs informational messages with context
func (h *BaseHandler) LogInfo(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"request_id", c.GetHeader("X-Request-ID"),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	fields = append(fields, additionalFields...)
	h.logger.Info(message, fields...)
}

// RespondWithError sends a consistent error response and logs it
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, message string, err error, details ...interface{}) {
	errorResp := ErrorResponse{
		Message: message,
	}
	if len(details) > 0 {
		errorResp.Details = details[0]
	}

	if err != nil {
		h.LogError(c, err, message, "status_code", statusCode)
	}
	c.JSON(statusCode, errorResp)
}

// RespondWithSuccess sends a consistent success response
func (h *BaseHandler) RespondWithSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, SuccessResponse{
		Message: message,
		Data:    data,
	})
}

// RespondWithServiceError maps a service-layer error onto the wire. Duplicate
// submissions never reach here; the submit handler absorbs them as success
// before mapping.
func (h *BaseHandler) RespondWithServiceError(c *gin.Context, err error) {
	switch {
	case services.IsNotFound(err):
		h.RespondWithError(c, http.StatusNotFound, "quiz not found", err)
	case services.IsValidation(err):
		h.respondWithValidation(c, err)
	case services.IsInvalidLink(err):
		h.RespondWithError(c, http.StatusBadRequest, "invalid link", err)
	case services.IsTransient(err):
		h.RespondWithError(c, http.StatusServiceUnavailable, "failed to reach the quiz backend - retry", err)
	default:
		h.RespondWithError(c, http.StatusInternalServerError, "internal server error", err)
	}
}

// ParseStringIDParam pulls a non-blank path parameter; it responds 400 itself
// when the segment is blank, so callers just return on "".
func ParseStringIDParam(c *gin.Context, param string) string {
	id := strings.TrimSpace(c.Param(param))
	if id == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "invalid " + param,
			Details: "path parameter must not be blank",
		})
		return ""
	}
	return id
}

func (h *BaseHandler) respondWithValidation(c *gin.Context, err error) {
	var ve *apperrors.ValidationError
	if errors.As(err, &ve) {
		h.RespondWithError(c, http.StatusBadRequest, ve.Message, err, gin.H{"field": ve.Field})
		return
	}
	if ves := apperrors.ToValidationErrors(err); ves != nil {
		h.RespondWithError(c, http.StatusBadRequest, "validation failed", err, ves)
		return
	}
	h.RespondWithError(c, http.StatusBadRequest, "validation failed", err)
}
