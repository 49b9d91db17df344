package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/cart-backend/internal/http/response"
	"github.com/yungbote/cart-backend/internal/platform/logger"
	"github.com/yungbote/cart-backend/internal/services"
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	middlewareLogger := log.With("Middleware", "AuthMiddleware")
	return &AuthMiddleware{log: middlewareLogger, authService: authService}
}

// RequireAuth rejects the request before any handler runs unless the
// Authorization header resolves to an identity. Every rejection carries
// the same body.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, ok := am.authService.SetContextFromHeader(c.Request.Context(), c.GetHeader("Authorization"))
		if !ok {
			am.log.Debug("unauthorized request", "path", c.FullPath())
			response.AbortError(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
