package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
)

type countingLimiter struct {
	mu     sync.Mutex
	counts map[string]int
	fail   bool
}

func (l *countingLimiter) Allow(ctx context.Context, key string, limit int) (bool, error) {
	if l.fail {
		return false, errors.New("limiter unavailable")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.counts == nil {
		l.counts = make(map[string]int)
	}
	l.counts[key]++
	return l.counts[key] <= limit, nil
}

func rateLimitedRouter(limiter RateLimiter, limit int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimitMiddleware(limiter, limit, "test"))
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return router
}

func TestRateLimitMiddleware(t *testing.T) {
	router := rateLimitedRouter(&countingLimiter{}, 2)

	for i, want := range []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		router.ServeHTTP(w, req)
		if w.Code != want {
			t.Fatalf("request %d: status = %d, want %d", i+1, w.Code, want)
		}
	}
}

func TestRateLimitFailsOpen(t *testing.T) {
	router := rateLimitedRouter(&countingLimiter{fail: true}, 1)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d blocked while limiter is down: %d", i+1, w.Code)
		}
	}
}
