package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/supplesafe-backend/internal/domain"
	"github.com/yungbote/supplesafe-backend/internal/pkg/logger"
)

const ctxKeySession = "session"

// SessionResolver turns a bearer token into a session; an empty token is anonymous.
type SessionResolver interface {
	SessionFromToken(ctx context.Context, tokenString string) (*domain.Session, error)
}

type AuthMiddleware struct {
	log      *logger.Logger
	resolver SessionResolver
}

func NewAuthMiddleware(log *logger.Logger, resolver SessionResolver) *AuthMiddleware {
	middlewareLogger := log.With("Middleware", "AuthMiddleware")
	return &AuthMiddleware{log: middlewareLogger, resolver: resolver}
}

// OptionalAuth attaches a session when a valid token is sent. A token that is sent but
// invalid is rejected rather than silently treated as anonymous.
func (am *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.Next()
			return
		}
		sess, err := am.resolver.SessionFromToken(c.Request.Context(), tokenString)
		if err != nil {
			am.log.Debug("token rejected", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "invalid or expired token", "code": "unauthorized"},
			})
			return
		}
		if sess != nil {
			c.Set(ctxKeySession, sess)
		}
		c.Next()
	}
}

// RequireAuth must run after OptionalAuth.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !SessionFrom(c).Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "missing or invalid token", "code": "unauthorized"},
			})
			return
		}
		c.Next()
	}
}

// SessionFrom returns the request's session, or nil when anonymous.
func SessionFrom(c *gin.Context) *domain.Session {
	v, ok := c.Get(ctxKeySession)
	if !ok {
		return nil
	}
	sess, _ := v.(*domain.Session)
	return sess
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
