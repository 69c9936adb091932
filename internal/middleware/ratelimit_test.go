package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newTestLimiter(maxRequests int, window time.Duration) *RateLimiter {
	return NewRateLimiterWithConfig(nil, nil, RateLimitConfig{
		MaxRequests: maxRequests,
		Window:      window,
	})
}

func TestRateLimiterAllowsUpToLimit(t *testing.T) {
	limiter := newTestLimiter(10, time.Minute)
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		result := limiter.Allow(ctx, "203.0.113.5")
		if !result.Allowed {
			t.Fatalf("request %d rejected, limit is 10", i)
		}
		if result.Remaining != 10-i {
			t.Errorf("request %d: remaining = %d, want %d", i, result.Remaining, 10-i)
		}
	}

	result := limiter.Allow(ctx, "203.0.113.5")
	if result.Allowed {
		t.Error("request 11 allowed, should be rejected")
	}
	if result.RetryAfterSec <= 0 {
		t.Errorf("rejected result should carry a retry delay, got %d", result.RetryAfterSec)
	}
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	limiter := newTestLimiter(2, time.Minute)
	ctx := context.Background()

	limiter.Allow(ctx, "198.51.100.1")
	limiter.Allow(ctx, "198.51.100.1")
	if limiter.Allow(ctx, "198.51.100.1").Allowed {
		t.Error("first client should be exhausted")
	}

	if !limiter.Allow(ctx, "198.51.100.2").Allowed {
		t.Error("second client should not be affected by first client's counter")
	}
}

func TestRateLimiterWindowResets(t *testing.T) {
	limiter := newTestLimiter(1, 20*time.Millisecond)
	ctx := context.Background()

	if !limiter.Allow(ctx, "203.0.113.9").Allowed {
		t.Fatal("first request should pass")
	}
	if limiter.Allow(ctx, "203.0.113.9").Allowed {
		t.Fatal("second request inside window should be rejected")
	}

	time.Sleep(30 * time.Millisecond)

	if !limiter.Allow(ctx, "203.0.113.9").Allowed {
		t.Error("request after window expiry should pass")
	}
}

func TestRateLimitHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter := newTestLimiter(2, time.Minute)
	router := gin.New()
	router.Use(limiter.Handler())
	router.POST("/inquiries", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	doRequest := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/inquiries", nil)
		req.RemoteAddr = "192.0.2.1:51234"
		router.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 2; i++ {
		if w := doRequest(); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, w.Code)
		}
	}

	w := doRequest()
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("429 response should carry Retry-After header")
	}
}

func TestDefaultRateLimitConfig(t *testing.T) {
	cfg := DefaultRateLimitConfig()
	if cfg.MaxRequests != 10 {
		t.Errorf("MaxRequests = %d, want 10", cfg.MaxRequests)
	}
	if cfg.Window != 60*time.Second {
		t.Errorf("Window = %v, want 60s", cfg.Window)
	}
}
