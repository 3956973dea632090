package handlers

import (
	"net/http"
	"strings"

	"github.com/SAP-F-2025/interview-service/internal/auth"
	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/SAP-F-2025/interview-service/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestID reuses the caller's X-Request-ID or mints one, and carries it on the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
			c.Request.Header.Set(RequestIDHeader, id)
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Request = c.Request.WithContext(utils.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// Recovery turns a panic into a 500 with the usual error body.
func Recovery(logger utils.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("Recovered from panic", "panic", recovered, "path", c.Request.URL.Path, "request_id", requestID(c))
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
			Code:    CodeInternal,
		})
	})
}

// Authenticate resolves a bearer token when one is present. Requests without a token pass
// through anonymous; RequireIdentity decides whether that is acceptable. Browsers cannot set
// headers on websocket upgrades, so the token may also arrive as ?access_token=.
func Authenticate(resolver auth.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}
		id, err := resolver.Resolve(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "invalid token",
				Code:    CodeUnauthenticated,
			})
			return
		}
		c.Set("user_id", id.UserID)
		c.Set("role", string(id.Role))
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if caller(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "missing bearer token",
				Code:    CodeUnauthenticated,
			})
			return
		}
		c.Next()
	}
}

// RequireRole rejects callers outside roles. Services repeat the check; this only fails fast.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	gate := auth.HasRole(roles...)
	return func(c *gin.Context) {
		if err := gate(caller(c)); err != nil {
			status, code := http.StatusForbidden, CodeForbidden
			if caller(c) == nil {
				status, code = http.StatusUnauthorized, CodeUnauthenticated
			}
			c.AbortWithStatusJSON(status, ErrorResponse{Message: "forbidden", Code: code})
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return strings.TrimSpace(c.Query("access_token"))
}
