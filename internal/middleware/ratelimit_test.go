package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type fakeLimiter struct {
	keys  []string
	allow bool
}

func (f *fakeLimiter) CheckRateLimit(ctx context.Context, userID, action string, limit int, window time.Duration) (bool, error) {
	f.keys = append(f.keys, action)
	return f.allow, nil
}

func newRateLimitedRouter(limiter *fakeLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", "u1")
	})
	router.Use(RateLimitMiddleware(limiter))

	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	router.POST("/api/upgrade", ok)
	router.POST("/api/upgrade/:id/confirm", ok)
	router.POST("/api/hack/:tier", ok)
	return router
}

func perform(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimitKeyedOnRoutePattern(t *testing.T) {
	limiter := &fakeLimiter{allow: true}
	router := newRateLimitedRouter(limiter)

	perform(router, http.MethodPost, "/api/upgrade/abc/confirm")
	perform(router, http.MethodPost, "/api/upgrade/def/confirm")

	if len(limiter.keys) != 2 {
		t.Fatalf("limiter calls = %d, want 2", len(limiter.keys))
	}
	if limiter.keys[0] != limiter.keys[1] {
		t.Errorf("confirm requests hit different buckets: %q vs %q", limiter.keys[0], limiter.keys[1])
	}
	if limiter.keys[0] != "/api/upgrade/:id/confirm" {
		t.Errorf("bucket key = %q, want the route pattern", limiter.keys[0])
	}
}

func TestRateLimitSkipsHackRoutes(t *testing.T) {
	limiter := &fakeLimiter{allow: true}
	router := newRateLimitedRouter(limiter)

	// Hack attempts carry their own per-user counter in the engine.
	w := perform(router, http.MethodPost, "/api/hack/medium")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if len(limiter.keys) != 0 {
		t.Errorf("limiter calls = %d, want 0", len(limiter.keys))
	}
}

func TestRateLimitRejectsWhenExhausted(t *testing.T) {
	limiter := &fakeLimiter{allow: false}
	router := newRateLimitedRouter(limiter)

	w := perform(router, http.MethodPost, "/api/upgrade")

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
}
