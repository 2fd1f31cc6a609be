package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 1 {
		t.Errorf("expected default burst 1 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1) // 100 rps, burst 1
	ctx := context.Background()

	if err := limiter.Wait(ctx, "gpt-4o-mini"); err != nil {
		t.Errorf("wait failed: %v", err)
	}

	// Different model should also work
	if err := limiter.Wait(ctx, "codellama"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_WaitWithDelay(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	start := time.Now()
	err := limiter.WaitWithDelay(ctx, "gpt-4o-mini", 50*time.Millisecond)
	if err != nil {
		t.Fatalf("WaitWithDelay failed: %v", err)
	}

	duration := time.Since(start)
	if duration < 50*time.Millisecond {
		t.Errorf("expected delay >= 50ms, got %v", duration)
	}
}

func TestLimiter_RateLimit(t *testing.T) {
	// 1 rps, burst 1
	limiter := NewLimiter(1, 1)
	ctx := context.Background()
	model := "gpt-4o-mini"

	// First request ok
	if err := limiter.Wait(ctx, model); err != nil {
		t.Errorf("first wait failed: %v", err)
	}

	// Burst 1, token consumed. Wait() would block; Allow() must fail.
	if limiter.Allow(model) {
		t.Errorf("expected allow to fail (exhausted tokens)")
	}

	// Different model should be allowed
	if !limiter.Allow("codellama") {
		t.Errorf("expected allow for other model")
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	limiter := NewLimiter(0, 1)
	model := "gpt-4o-mini"

	for i := 0; i < 100; i++ {
		if !limiter.Allow(model) {
			t.Fatalf("request %d should pass when rate is unlimited", i)
		}
	}
}

func TestLimiter_SetModelRate(t *testing.T) {
	limiter := NewLimiter(10, 10) // fast default
	model := "metered-model"

	// Set strict limit for specific model
	limiter.SetModelRate(model, 0.1, 1) // very slow

	// First request passes (burst 1)
	if !limiter.Allow(model) {
		t.Errorf("first request should pass")
	}

	// Second request fails
	if limiter.Allow(model) {
		t.Errorf("second request should fail")
	}

	// Other model still fast
	if !limiter.Allow("fast-model") {
		t.Errorf("other model should pass")
	}
}
