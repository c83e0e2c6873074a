package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func text(s string) gin.HandlerFunc {
	return func(c *gin.Context) { c.String(http.StatusOK, s) }
}

func serve(engine http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	orders := NewDomainGroup("orders", "/orders").GET("", text("orders"))
	clients := NewDomainGroup("clients", "/clients").GET("/:id", text("client"))

	NewRouter(engine).Register(orders, clients).Setup()

	w := serve(engine, http.MethodGet, "/api/v1/orders")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "orders", w.Body.String())
	assert.Equal(t, "client", serve(engine, http.MethodGet, "/api/v1/clients/c1").Body.String())
	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/orders").Code)
}

func TestRouterUse(t *testing.T) {
	engine := gin.New()
	deny := func(c *gin.Context) { c.AbortWithStatus(http.StatusUnauthorized) }

	NewRouter(engine).Use(deny).
		Register(NewDomainGroup("orders", "/orders").GET("", text("orders"))).
		Setup()

	assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodGet, "/api/v1/orders").Code)
}

func TestDomainGroup(t *testing.T) {
	t.Run("name and prefix", func(t *testing.T) {
		g := NewDomainGroup("dispatch", "/dispatch")
		assert.Equal(t, "dispatch", g.Name())
		assert.Equal(t, "/dispatch", g.Prefix())
	})

	t.Run("every method", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("plans", "/plans").
			GET("", text("list")).
			POST("", text("create")).
			PUT("/:id/status", text("status")).
			DELETE("/:id", text("delete"))
		g.RegisterRoutes(engine.Group("/api/v1"))

		tests := []struct{ method, path, body string }{
			{http.MethodGet, "/api/v1/plans", "list"},
			{http.MethodPost, "/api/v1/plans", "create"},
			{http.MethodPut, "/api/v1/plans/p1/status", "status"},
			{http.MethodDelete, "/api/v1/plans/p1", "delete"},
		}
		for _, tt := range tests {
			w := serve(engine, tt.method, tt.path)
			assert.Equal(t, http.StatusOK, w.Code, "%s %s", tt.method, tt.path)
			assert.Equal(t, tt.body, w.Body.String())
		}
	})

	t.Run("middleware applies to subgroups", func(t *testing.T) {
		engine := gin.New()
		var seen []string
		mark := func(name string) gin.HandlerFunc {
			return func(c *gin.Context) {
				seen = append(seen, name)
				c.Next()
			}
		}
		g := NewDomainGroup("auth", "/auth").Use(mark("outer")).POST("/login", text("login"))
		g.Group("session", "").Use(mark("inner")).GET("/me", text("me"))
		g.RegisterRoutes(engine.Group("/api/v1"))

		serve(engine, http.MethodPost, "/api/v1/auth/login")
		assert.Equal(t, []string{"outer"}, seen)

		seen = nil
		w := serve(engine, http.MethodGet, "/api/v1/auth/me")
		assert.Equal(t, "me", w.Body.String())
		assert.Equal(t, []string{"outer", "inner"}, seen)
	})
}
