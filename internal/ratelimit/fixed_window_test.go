package ratelimit

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestFixedWindowLimiterBlocksOverQuota(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter, err := NewRedisFixedWindowLimiter(redis.Addr(), "", "lms:test:ratelimit", 2, time.Minute)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	if !limiter.Allow("login|198.51.100.10") {
		t.Fatal("first request should pass")
	}
	if !limiter.Allow("login|198.51.100.10") {
		t.Fatal("second request should pass")
	}
	if limiter.Allow("login|198.51.100.10") {
		t.Fatal("third request should be blocked")
	}
	// Other keys are unaffected.
	if !limiter.Allow("login|203.0.113.5") {
		t.Fatal("different key should pass")
	}
}

func TestFixedWindowLimiterFailsClosed(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter, err := NewRedisFixedWindowLimiter(redis.Addr(), "", "lms:test:ratelimit", 1, time.Minute)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	redis.Close()
	if limiter.Allow("login|198.51.100.10") {
		t.Fatal("limiter should fail closed on redis errors")
	}
}

func TestFixedWindowLimiterRequiresRedisAddr(t *testing.T) {
	if _, err := NewRedisFixedWindowLimiter("", "", "lms:test:ratelimit", 1, time.Minute); err == nil {
		t.Fatal("expected constructor error for empty redis addr")
	}
}
