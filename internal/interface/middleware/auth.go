package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	userapp "github.com/oksasatya/go-user-accounts/internal/application"
	"github.com/oksasatya/go-user-accounts/internal/domain/entity"
	"github.com/oksasatya/go-user-accounts/pkg/helpers"
	"github.com/oksasatya/go-user-accounts/pkg/response"
)

// AccountLookup loads the account behind a token subject.
type AccountLookup interface {
	FindOne(ctx context.Context, id string) (*entity.User, error)
}

// Auth validates the access token and makes sure the account still exists
// and is active. It sets userID and userEmail in the Gin context on success.
func Auth(jwt *helpers.JWTManager, users AccountLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, jwt) {
			return
		}
		u, err := users.FindOne(c.Request.Context(), c.GetString(CtxUserIDKey))
		if err != nil {
			if errors.Is(err, userapp.ErrUserNotFound) || errors.Is(err, userapp.ErrInvalidIDFormat) {
				response.Error[any](c, http.StatusUnauthorized, "account not found", nil)
			} else {
				response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
			}
			c.Abort()
			return
		}
		if !u.IsActive {
			response.Error[any](c, http.StatusForbidden, "account is not active", nil)
			c.Abort()
			return
		}
		c.Set("userEmail", u.Email)
		c.Next()
	}
}
