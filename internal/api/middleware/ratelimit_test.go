package middleware

import (
	"bytes"
	"crm-engine/internal/config"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return NewRateLimiter(cfg, logger)
}

func TestRateLimiter(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("allows requests within the burst", func(t *testing.T) {
		rl := newTestRateLimiter(config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 2})
		handler := rl.Handler(okHandler)

		req := httptest.NewRequest(http.MethodGet, "/customers", nil)
		req.RemoteAddr = "127.0.0.1:12345"
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
	})

	t.Run("blocks once the burst is spent", func(t *testing.T) {
		rl := newTestRateLimiter(config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 2})
		handler := rl.Handler(okHandler)

		req := httptest.NewRequest(http.MethodGet, "/customers", nil)
		req.RemoteAddr = "10.1.2.3:12345"

		for i := 0; i < 2; i++ {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Fatalf("request %d: expected status %d, got %d", i, http.StatusOK, rec.Code)
			}
		}

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusTooManyRequests {
			t.Errorf("expected status %d, got %d", http.StatusTooManyRequests, rec.Code)
		}

		var response map[string]interface{}
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if response["error"].(map[string]interface{})["message"] != "Rate limit exceeded" {
			t.Errorf("unexpected error message: %v", response)
		}
	})

	t.Run("limits clients independently", func(t *testing.T) {
		rl := newTestRateLimiter(config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 1})
		handler := rl.Handler(okHandler)

		first := httptest.NewRequest(http.MethodGet, "/customers", nil)
		first.RemoteAddr = "10.0.0.1:1000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, first)
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, first)
		if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected first client to be limited, got %d", rec.Code)
		}

		second := httptest.NewRequest(http.MethodGet, "/customers", nil)
		second.RemoteAddr = "10.0.0.2:1000"
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, second)
		if rec.Code != http.StatusOK {
			t.Errorf("expected second client to pass, got %d", rec.Code)
		}
	})

	t.Run("disabled limiter passes everything through", func(t *testing.T) {
		rl := newTestRateLimiter(config.RateLimitConfig{Enabled: false})
		handler := rl.Handler(okHandler)

		req := httptest.NewRequest(http.MethodGet, "/customers", nil)
		req.RemoteAddr = "127.0.0.1:12345"
		for i := 0; i < 10; i++ {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Fatalf("request %d: expected status %d, got %d", i, http.StatusOK, rec.Code)
			}
		}
	})

	t.Run("evictIdle drops stale visitors and keeps fresh ones", func(t *testing.T) {
		rl := newTestRateLimiter(config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 1})
		rl.allow("10.0.0.8")
		rl.allow("10.0.0.9")

		rl.mu.Lock()
		rl.visitors["10.0.0.9"].lastSeen = time.Now().Add(-2 * visitorIdleTimeout)
		rl.mu.Unlock()

		rl.evictIdle()

		rl.mu.Lock()
		_, fresh := rl.visitors["10.0.0.8"]
		_, stale := rl.visitors["10.0.0.9"]
		rl.mu.Unlock()

		if !fresh {
			t.Error("expected fresh visitor to survive eviction")
		}
		if stale {
			t.Error("expected idle visitor to be evicted")
		}
	})

	t.Run("extractIP handles various headers", func(t *testing.T) {
		rl := newTestRateLimiter(config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 1})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", "192.168.1.1, 10.0.0.1")
		if ip := rl.extractIP(req); ip != "192.168.1.1" {
			t.Errorf("expected IP %s, got %s", "192.168.1.1", ip)
		}

		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Real-IP", "10.0.0.1")
		if ip := rl.extractIP(req); ip != "10.0.0.1" {
			t.Errorf("expected IP %s, got %s", "10.0.0.1", ip)
		}

		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "127.0.0.1:12345"
		if ip := rl.extractIP(req); ip != "127.0.0.1" {
			t.Errorf("expected IP %s, got %s", "127.0.0.1", ip)
		}
	})
}
