package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-user-accounts/pkg/response"
)

type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module
}

// NewRegistry mounts every module under /api. Unknown routes answer with the
// standard JSON envelope instead of gin's plain text.
func NewRegistry(engine *gin.Engine) *Registry {
	engine.HandleMethodNotAllowed = true
	engine.NoRoute(func(c *gin.Context) {
		response.Error[any](c, http.StatusNotFound, "route not found", nil)
	})
	engine.NoMethod(func(c *gin.Context) {
		response.Error[any](c, http.StatusMethodNotAllowed, "method not allowed", nil)
	})
	api := engine.Group("/api")
	return &Registry{Engine: engine, API: api}
}

func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		m.Register(r.API)
	}
}
