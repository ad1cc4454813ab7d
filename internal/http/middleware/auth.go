package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ridebooking/internal/domain"
	"ridebooking/internal/domain/models"
)

const (
	SessionCookie     = "zgr_session"
	requestContextKey = "request_context"
)

// Authenticator resolves an admin token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.RequestContext, models.User, error)
}

// TokenFromRequest reads the admin token from the session cookie, falling
// back to an Authorization: Bearer header.
func TokenFromRequest(c *gin.Context) string {
	if v, err := c.Cookie(SessionCookie); err == nil && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// RequireAdmin rejects anonymous callers with 401 and non-admins with 403.
func RequireAdmin(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, _, err := auth.Authenticate(c.Request.Context(), TokenFromRequest(c))
		if err != nil {
			status, code := http.StatusInternalServerError, "internal_error"
			msg := "internal server error"
			switch {
			case domain.IsForbidden(err):
				status, code, msg = http.StatusForbidden, "forbidden", err.Error()
			case domain.IsAuth(err):
				status, code, msg = http.StatusUnauthorized, "unauthorized", err.Error()
			}
			_ = c.Error(err)
			c.AbortWithStatusJSON(status, gin.H{
				"error":      msg,
				"code":       code,
				"message":    msg,
				"request_id": GetRequestID(c),
			})
			return
		}
		c.Set(requestContextKey, rc)
		c.Next()
	}
}

// GetRequestContext returns the admin set by RequireAdmin.
func GetRequestContext(c *gin.Context) (domain.RequestContext, bool) {
	v, ok := c.Get(requestContextKey)
	if !ok {
		return domain.RequestContext{}, false
	}
	rc, ok := v.(domain.RequestContext)
	return rc, ok
}
