package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/interview-service/internal/auth"
	"github.com/gin-gonic/gin"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

func ParseStringIDParam(c *gin.Context, param string) string {
	idStr := strings.TrimSpace(c.Param(param))
	if idStr == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID cannot be empty",
			Code:    CodeBadRequest,
		})
		return ""
	}
	return idStr
}

// ParseUintParam writes a 400 and returns 0 when the path parameter is not a positive integer.
func ParseUintParam(c *gin.Context, param string) uint {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID must be a positive integer",
			Code:    CodeBadRequest,
		})
		return 0
	}
	return uint(id)
}

// parsePaging reads limit and offset with the defaults applied. ok is false after a 400 was written.
func parsePaging(c *gin.Context) (limit, offset int, ok bool) {
	limit, offset = defaultPageLimit, 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeQueryError(c, "limit", "must be a positive integer")
			return 0, 0, false
		}
		limit = min(n, maxPageLimit)
	}
	if raw := c.Query("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeQueryError(c, "offset", "must be a non-negative integer")
			return 0, 0, false
		}
		offset = n
	}
	return limit, offset, true
}

func writeQueryError(c *gin.Context, param, details string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Message: "Invalid " + param,
		Details: details,
		Code:    CodeBadRequest,
	})
}

// caller is the identity the authentication middleware stored, or nil.
func caller(c *gin.Context) *auth.Identity {
	return auth.FromContext(c.Request.Context())
}

func userIDOf(c *gin.Context) string {
	if id := caller(c); id != nil {
		return id.UserID
	}
	return ""
}

func requestID(c *gin.Context) string {
	if id := c.GetString(requestIDKey); id != "" {
		return id
	}
	return c.GetHeader(RequestIDHeader)
}
