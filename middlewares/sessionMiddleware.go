package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tallersur/presupuestos_backend/config"
	"github.com/tallersur/presupuestos_backend/models"
	"github.com/tallersur/presupuestos_backend/utils"
)

// SessionMiddleware resolves the token header against the redis session
// store and attaches the user to the request context. Requests without a
// token pass through; route groups enforce RequireUser where needed.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Request.Header.Get("token")
		if token == "" {
			c.Next()
			return
		}
		username, exists, err := config.GetRedisValue("Token:" + token)
		if err != nil || !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		ctx := utils.SetTokenInContext(c.Request.Context(), token)
		ctx = utils.SetUsernameInContext(ctx, username)
		if user, err := models.GetUserByUsername(ctx, username); err == nil {
			ctx = utils.SetUserIdInContext(ctx, user.ID)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireUser guards routes that need an authenticated session.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := utils.GetUsernameFromContext(c.Request.Context()); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}
