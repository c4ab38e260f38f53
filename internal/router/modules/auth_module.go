package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-user-accounts/internal/interface/http"
	"github.com/oksasatya/go-user-accounts/internal/interface/middleware"
	"github.com/oksasatya/go-user-accounts/pkg/helpers"
)

// AuthModule wires registration, activation and login routes.
// Public: POST /api/auth/register, /login, /activate, /retry-active, /logout
// Protected: GET /api/auth/me
type AuthModule struct {
	Handler  *handlers.AuthHandler
	Accounts middleware.AccountLookup
	JWT      *helpers.JWTManager
	RDB      *redis.Client
}

func NewAuthModule(h *handlers.AuthHandler, accounts middleware.AccountLookup, jwt *helpers.JWTManager, rdb *redis.Client) *AuthModule {
	return &AuthModule{Handler: h, Accounts: accounts, JWT: jwt, RDB: rdb}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(m.RDB, 10, time.Minute, middleware.KeyByIP(), nil)        // 10 req/min per IP
	loginLimiter := middleware.RateLimit(m.RDB, 10, time.Minute, middleware.KeyByIP(), nil)           // 10 req/min per IP
	activateLimiter := middleware.RateLimit(m.RDB, 30, time.Minute, middleware.KeyByIPAndPath(), nil) // code guessing
	retryLimiter := middleware.RateLimit(m.RDB, 3, 10*time.Minute, middleware.KeyByIPAndPath(), nil)  // resend mail

	auth := rg.Group("/auth")
	{
		auth.POST("/register", registerLimiter, m.Handler.Register)
		auth.POST("/login", loginLimiter, m.Handler.Login)
		auth.POST("/activate", activateLimiter, m.Handler.Activate)
		auth.POST("/retry-active", retryLimiter, m.Handler.RetryActive)
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/me", middleware.Auth(m.JWT, m.Accounts), m.Handler.Me)
	}
}
