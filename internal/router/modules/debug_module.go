package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-user-accounts/internal/interface/middleware"
	"github.com/oksasatya/go-user-accounts/pkg/metrics"
)

type DebugModule struct {
	RDB *redis.Client
}

func NewDebugModule(rdb *redis.Client) *DebugModule { return &DebugModule{RDB: rdb} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	// Public metrics endpoints, rate-limited per IP; private networks bypass
	rl := middleware.RateLimit(m.RDB, 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
	rg.GET("/metrics", rl, gin.WrapH(metrics.Handler()))
}
