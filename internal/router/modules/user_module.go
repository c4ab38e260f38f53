package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-user-accounts/internal/interface/http"
	"github.com/oksasatya/go-user-accounts/internal/interface/middleware"
	"github.com/oksasatya/go-user-accounts/pkg/helpers"
)

// UserModule wires the user resource. Every route requires an active account.
type UserModule struct {
	Handler  *handlers.UserHandler
	Accounts middleware.AccountLookup
	JWT      *helpers.JWTManager
	RDB      *redis.Client
}

func NewUserModule(h *handlers.UserHandler, accounts middleware.AccountLookup, jwt *helpers.JWTManager, rdb *redis.Client) *UserModule {
	return &UserModule{Handler: h, Accounts: accounts, JWT: jwt, RDB: rdb}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.Use(middleware.Auth(m.JWT, m.Accounts))
	// Apply a softer per-IP limiter to all protected routes
	users.Use(
		middleware.RateLimit(m.RDB, 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(m.RDB, 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		users.POST("", m.Handler.Create)
		users.GET("", m.Handler.FindAll)
		// Search users via Elasticsearch
		users.GET("/search", m.Handler.Search)
		users.GET("/:id", m.Handler.FindOne)
		users.PATCH("", m.Handler.Update)
		users.DELETE("/:id", m.Handler.Remove)
		users.POST("/:id/avatar", m.Handler.UploadAvatar)
	}
}
