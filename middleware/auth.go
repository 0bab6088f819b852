package middleware

import (
	"strings"

	"newsroom-cms/helper"
	"newsroom-cms/models"
	"newsroom-cms/services"

	"github.com/gin-gonic/gin"
)

// TokenCookie carries the session token issued at login.
const TokenCookie = "x-access-token"

const userKey = "user"

// AuthMiddleware accepts the session cookie or a Bearer header and requires
// the token's user to still exist and be active.
func AuthMiddleware(authService services.AuthService, httpHelper *helper.HTTPHelper) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			httpHelper.SendUnauthorizedError(c, models.MsgNotAuthorized)
			c.Abort()
			return
		}

		user, err := authService.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			httpHelper.SendError(c, err)
			c.Abort()
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	if tokenString := strings.TrimPrefix(authHeader, "Bearer "); tokenString != authHeader {
		return strings.TrimSpace(tokenString)
	}
	return ""
}

// CurrentUser returns the user stored by AuthMiddleware.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}
