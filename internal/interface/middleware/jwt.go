package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-user-accounts/pkg/helpers"
	"github.com/oksasatya/go-user-accounts/pkg/response"
)

const CtxUserIDKey = "userID"

// bearerOrCookie returns the access token from the Authorization header,
// falling back to the access_token cookie.
func bearerOrCookie(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			return strings.TrimSpace(h[7:])
		}
	}
	if tok, err := c.Cookie(helpers.AccessCookie); err == nil {
		return tok
	}
	return ""
}

// authenticate parses the access token and stores the user ID in the Gin
// context. It writes a 401 and aborts on failure; it never calls c.Next.
func authenticate(c *gin.Context, jwt *helpers.JWTManager) bool {
	token := bearerOrCookie(c)
	if token == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
		c.Abort()
		return false
	}
	claims, err := jwt.ParseAccessToken(token)
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "invalid access token", nil)
		c.Abort()
		return false
	}
	c.Set(CtxUserIDKey, claims.UserID)
	return true
}

// JWTAuth validates the access token and injects the user ID into context
func JWTAuth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, jwt) {
			return
		}
		c.Next()
	}
}
