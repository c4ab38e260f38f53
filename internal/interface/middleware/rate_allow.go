package middleware

import (
	"net"

	"github.com/gin-gonic/gin"
)

// AllowPrivateIP bypasses the limiter for loopback and RFC 1918 clients.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		parsed := net.ParseIP(ipFromCtx(c))
		if parsed == nil {
			return false
		}
		return parsed.IsLoopback() || parsed.IsPrivate()
	}
}

// AllowAny bypasses the limiter when any of fns does.
func AllowAny(fns ...AllowFunc) AllowFunc {
	return func(c *gin.Context) bool {
		for _, fn := range fns {
			if fn != nil && fn(c) {
				return true
			}
		}
		return false
	}
}
