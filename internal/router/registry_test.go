package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	handlers "github.com/oksasatya/go-user-accounts/internal/interface/http"
	"github.com/oksasatya/go-user-accounts/internal/router/modules"
	"github.com/oksasatya/go-user-accounts/pkg/helpers"
)

func TestRegistryRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	reg := NewRegistry(r)

	jwt := helpers.NewJWTManager("secret", 0, "test")
	reg.Add(modules.NewAuthModule(&handlers.AuthHandler{}, nil, jwt, nil))
	reg.Add(modules.NewUserModule(&handlers.UserHandler{}, nil, jwt, nil))
	reg.Add(modules.NewDebugModule(nil))
	reg.Add(modules.NewHealthModule(nil))
	reg.RegisterAll()

	got := map[string]bool{}
	for _, ri := range r.Routes() {
		got[ri.Method+" "+ri.Path] = true
	}
	for _, want := range []string{
		"POST /api/auth/register",
		"POST /api/auth/login",
		"POST /api/auth/activate",
		"POST /api/auth/retry-active",
		"POST /api/auth/logout",
		"GET /api/auth/me",
		"POST /api/users",
		"GET /api/users",
		"GET /api/users/search",
		"GET /api/users/:id",
		"PATCH /api/users",
		"DELETE /api/users/:id",
		"POST /api/users/:id/avatar",
		"GET /api/metrics",
		"GET /api/debug/vars",
		"GET /api/health",
	} {
		assert.True(t, got[want], want)
	}
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	reg := NewRegistry(r)
	reg.Add(modules.NewUserModule(&handlers.UserHandler{}, nil, helpers.NewJWTManager("secret", 0, "test"), nil))
	reg.RegisterAll()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegistryMiddlewareRunsFirst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	reg := NewRegistry(r)
	reg.Use(func(c *gin.Context) { c.Header("X-Seen", "1"); c.Next() })
	reg.Add(modules.NewDebugModule(nil))
	reg.RegisterAll()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/debug/vars", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-Seen"))
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	reg := NewRegistry(r)
	reg.Add(modules.NewDebugModule(nil))
	reg.RegisterAll()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/metrics", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHealthModule(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	reg := NewRegistry(r)
	failing := false
	reg.Add(modules.NewHealthModule(map[string]modules.Check{
		"store": func(context.Context) error {
			if failing {
				return errors.New("down")
			}
			return nil
		},
	}))
	reg.RegisterAll()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"store":"ok"`)

	failing = true
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"store":"down"`)
}
