package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestAreaOf(t *testing.T) {
	tests := map[string]string{
		"/api/v1/dispatch/:id/status": "dispatch",
		"/orders/:id":                 "orders",
		"/api/V2/reports/:name":       "reports",
		"/":                           "root",
		"/version/info":               "version",
	}
	for route, want := range tests {
		assert.Equal(t, want, areaOf(route), route)
	}
}

func TestProfiling_PassesThrough(t *testing.T) {
	for _, enabled := range []bool{false, true} {
		r := gin.New()
		r.Use(Profiling(enabled, "/health"))
		r.GET("/orders/:id", func(c *gin.Context) { c.String(http.StatusOK, c.Param("id")) })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/o-7", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "o-7", w.Body.String())
	}
}
