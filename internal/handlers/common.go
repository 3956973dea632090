package handlers

import (
	"errors"
	"net/http"

	apperrors "github.com/SAP-F-2025/interview-service/internal/errors"
	"github.com/SAP-F-2025/interview-service/internal/auth"
	"github.com/SAP-F-2025/interview-service/internal/services"
	"github.com/SAP-F-2025/interview-service/internal/utils"
	"github.com/gin-gonic/gin"
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

const (
	CodeNotFound        = "not_found"
	CodeUnauthenticated = "unauthenticated"
	CodeForbidden       = "forbidden"
	CodeValidation      = "validation_failed"
	CodeInvalidState    = "invalid_state"
	CodeConflict        = "conflict"
	CodeBadRequest      = "bad_request"
	CodeInternal        = "internal_error"
)

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging and error mapping for all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs an incoming request with the caller and request id.
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"request_id", requestID(c),
		"user_id", userIDOf(c),
	}
	fields = append(fields, additionalFields...)
	utils.GetLoggerFromContext(c, h.logger).Info(message, fields...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"request_id", requestID(c),
		"user_id", userIDOf(c),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	fields = append(fields, additionalFields...)
	h.logger.LogError(err, message, fields...)
}

// RespondWithError sends a consistent error response and logs server-side failures.
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, code, message string, err error, details ...interface{}) {
	resp := ErrorResponse{Message: message, Code: code}
	if len(details) > 0 {
		resp.Details = details[0]
	}
	if err != nil && statusCode >= http.StatusInternalServerError {
		h.LogError(c, err, message, "status_code", statusCode)
	}
	c.JSON(statusCode, resp)
}

func (h *BaseHandler) RespondWithSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, SuccessResponse{Message: message, Data: data})
}

// badRequest reports a malformed body or parameter, before any service call.
func (h *BaseHandler) badRequest(c *gin.Context, message string, err error) {
	var details interface{}
	if err != nil {
		details = err.Error()
	}
	h.RespondWithError(c, http.StatusBadRequest, CodeBadRequest, message, nil, details)
}

// handleServiceError maps service errors onto status codes:
// 404 not found, 401 unauthenticated, 403 forbidden, 400 validation, 409 state or conflict.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	if fieldErrs := apperrors.ToValidationErrors(err); len(fieldErrs) > 0 {
		h.RespondWithError(c, http.StatusBadRequest, CodeValidation, "Validation failed", err, fieldErrs)
		return
	}

	var stateErr *services.StateError
	if errors.As(err, &stateErr) {
		h.RespondWithError(c, http.StatusConflict, CodeInvalidState, stateErr.Error(), err, stateErr)
		return
	}

	var permErr *services.PermissionError
	if errors.As(err, &permErr) {
		if errors.Is(err, auth.ErrNotAuthenticated) {
			h.RespondWithError(c, http.StatusUnauthorized, CodeUnauthenticated, "Authentication required", err)
			return
		}
		h.RespondWithError(c, http.StatusForbidden, CodeForbidden, "Access denied", err, map[string]interface{}{
			"resource": permErr.Resource,
			"action":   permErr.Action,
		})
		return
	}

	switch {
	case services.IsNotFound(err):
		h.RespondWithError(c, http.StatusNotFound, CodeNotFound, notFoundMessage(err), err)
	case services.IsUnauthenticated(err):
		h.RespondWithError(c, http.StatusUnauthorized, CodeUnauthenticated, "Authentication required", err)
	case services.IsForbidden(err):
		h.RespondWithError(c, http.StatusForbidden, CodeForbidden, "Access denied", err)
	case services.IsValidation(err):
		h.RespondWithError(c, http.StatusBadRequest, CodeValidation, err.Error(), err)
	case errors.Is(err, services.ErrTemplateInUse):
		h.RespondWithError(c, http.StatusConflict, CodeConflict, "Template is used by interviews", err)
	case services.IsConflict(err):
		h.RespondWithError(c, http.StatusConflict, CodeConflict, "Conflict", err)
	default:
		h.RespondWithError(c, http.StatusInternalServerError, CodeInternal, "Internal server error", err)
	}
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrInterviewNotFound):
		return "Interview not found"
	case errors.Is(err, services.ErrTemplateNotFound):
		return "Template not found"
	case errors.Is(err, services.ErrQuestionNotFound):
		return "Question not found"
	case errors.Is(err, services.ErrAnswerNotFound):
		return "Answer not found"
	case errors.Is(err, services.ErrUserNotFound):
		return "User not found"
	}
	return "Not found"
}
