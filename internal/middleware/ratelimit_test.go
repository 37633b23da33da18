package middleware

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		remote   string
		expected string
	}{
		{
			name:     "X-Forwarded-For",
			headers:  map[string]string{"X-Forwarded-For": "10.0.0.1"},
			remote:   "192.168.1.1:1234",
			expected: "10.0.0.1",
		},
		{
			name:     "X-Real-IP",
			headers:  map[string]string{"X-Real-IP": "10.0.0.2"},
			remote:   "192.168.1.1:1234",
			expected: "10.0.0.2",
		},
		{
			name:     "XFF Preference over X-Real-IP",
			headers:  map[string]string{"X-Forwarded-For": "10.0.0.1", "X-Real-IP": "10.0.0.2"},
			remote:   "192.168.1.1:1234",
			expected: "10.0.0.1",
		},
		{
			name:     "No Headers",
			headers:  map[string]string{},
			remote:   "192.168.1.1:1234",
			expected: "192.168.1.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			req.RemoteAddr = tt.remote

			ip := getClientIP(req)
			if ip != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, ip)
			}
		})
	}
}

func TestNewAuthRateLimiterConfig(t *testing.T) {
	limiter := NewAuthRateLimiter(nil)

	if limiter.limit != 5 {
		t.Errorf("expected limit 5, got %d", limiter.limit)
	}
	if limiter.window != time.Minute {
		t.Errorf("expected one minute window, got %v", limiter.window)
	}
	if limiter.prefix != "ratelimit:auth" {
		t.Errorf("unexpected prefix %q", limiter.prefix)
	}
}

func TestNewAPIRateLimiterConfig(t *testing.T) {
	limiter := NewAPIRateLimiter(nil)

	if limiter.limit != 100 {
		t.Errorf("expected limit 100, got %d", limiter.limit)
	}
	if limiter.prefix != "ratelimit:api" {
		t.Errorf("unexpected prefix %q", limiter.prefix)
	}
}

// Note: exercising the full limiter requires a running Redis instance. The
// Redis-backed path is covered by integration testing against a live server.
