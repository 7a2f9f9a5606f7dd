package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

const sessionKey = "session"

// Authenticator resolves a bearer token into a session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Session, error)
}

// Auth rejects requests without a valid, unrevoked bearer token and stores
// the session on the gin context.
func Auth(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authorization header is missing"})
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		session, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			status := apperrors.StatusCode(err)
			if status < http.StatusInternalServerError {
				status = http.StatusUnauthorized
			}
			c.AbortWithStatusJSON(status, gin.H{"message": "Invalid token"})
			return
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}

// RequireAdmin rejects sessions whose role may not use the admin endpoints.
func RequireAdmin() gin.HandlerFunc {
	return requireRole(models.Role.CanAdminister)
}

// RequireMenuManager rejects sessions whose role may not manage the menu.
func RequireMenuManager() gin.HandlerFunc {
	return requireRole(models.Role.CanManageMenu)
}

func requireRole(allowed func(models.Role) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := SessionFrom(c)
		if session == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
			return
		}
		if !allowed(session.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
			return
		}
		c.Next()
	}
}

// SessionFrom returns the session stored by Auth, or nil.
func SessionFrom(c *gin.Context) *models.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	session, _ := v.(*models.Session)
	return session
}

// SetSession stores a session on the context. Used by tests.
func SetSession(c *gin.Context, session *models.Session) {
	c.Set(sessionKey, session)
}
