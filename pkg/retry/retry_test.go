package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d, want 5", cfg.MaxAttempts)
	}

	if cfg.InitialDelay != 1*time.Second {
		t.Errorf("InitialDelay = %v, want 1s", cfg.InitialDelay)
	}

	if cfg.MaxDelay != 30*time.Second {
		t.Errorf("MaxDelay = %v, want 30s", cfg.MaxDelay)
	}

	if cfg.Multiplier != 2.0 {
		t.Errorf("Multiplier = %f, want 2.0", cfg.Multiplier)
	}
}

func TestDo_Success(t *testing.T) {
	cfg := Config{
		MaxAttempts:  3,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     100 * time.Millisecond,
		Multiplier:   2.0,
	}

	attempts := 0
	err := Do(context.Background(), cfg, func(ctx context.Context) error {
		attempts++
		return nil
	})

	if err != nil {
		t.Errorf("Do() = %v, want nil", err)
	}

	if attempts != 1 {
		t.Errorf("Operation called %d times, want 1", attempts)
	}
}

func TestDo_SuccessAfterRetries(t *testing.T) {
	cfg := Config{
		MaxAttempts:  5,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     100 * time.Millisecond,
		Multiplier:   2.0,
	}

	attempts := 0
	err := Do(context.Background(), cfg, func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	})

	if err != nil {
		t.Errorf("Do() = %v, want nil", err)
	}

	if attempts != 3 {
		t.Errorf("Operation called %d times, want 3", attempts)
	}
}

func TestDo_AttemptsExhausted(t *testing.T) {
	cfg := Config{
		MaxAttempts:  4,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     100 * time.Millisecond,
		Multiplier:   2.0,
	}

	attempts := 0
	expectedErr := errors.New("persistent error")
	err := Do(context.Background(), cfg, func(ctx context.Context) error {
		attempts++
		return expectedErr
	})

	if !errors.Is(err, expectedErr) {
		t.Errorf("Do() = %v, want %v", err, expectedErr)
	}

	if attempts != 4 {
		t.Errorf("Operation called %d times, want 4", attempts)
	}
}

func TestDo_PermanentError(t *testing.T) {
	cfg := Config{
		MaxAttempts:  5,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     100 * time.Millisecond,
		Multiplier:   2.0,
	}

	attempts := 0
	permErr := errors.New("permanent error")
	err := Do(context.Background(), cfg, func(ctx context.Context) error {
		attempts++
		return Permanent(permErr)
	})

	if !errors.Is(err, permErr) {
		t.Errorf("Do() = %v, want %v", err, permErr)
	}

	if attempts != 1 {
		t.Errorf("Operation called %d times, want 1", attempts)
	}
}

func TestDo_ContextCanceled(t *testing.T) {
	cfg := Config{
		MaxAttempts:  10,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     1 * time.Second,
		Multiplier:   2.0,
	}

	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	lastErr := errors.New("transient error")
	err := Do(ctx, cfg, func(ctx context.Context) error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return lastErr
	})

	if !errors.Is(err, lastErr) {
		t.Errorf("Do() = %v, want last operation error", err)
	}

	if attempts < 2 {
		t.Errorf("Operation called %d times, want >= 2", attempts)
	}
}

func TestDo_ContextCanceledBeforeFirstAttempt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := Do(ctx, DefaultConfig(), func(ctx context.Context) error {
		attempts++
		return errors.New("error")
	})

	if !errors.Is(err, ErrContextCanceled) {
		t.Errorf("Do() = %v, want ErrContextCanceled", err)
	}

	if attempts != 0 {
		t.Errorf("Operation called %d times, want 0", attempts)
	}
}

func TestDo_ZeroValueConfig(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), Config{}, func(ctx context.Context) error {
		attempts++
		return errors.New("error")
	})

	if err == nil {
		t.Error("Do() = nil, want error")
	}

	// MaxAttempts defaults to 1, so only the initial attempt runs
	if attempts != 1 {
		t.Errorf("Operation called %d times, want 1", attempts)
	}
}

func TestDelayFor_ExponentialBackoff(t *testing.T) {
	cfg := withDefaults(Config{
		MaxAttempts:  5,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	})

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second}, // 32s capped at 30s
		{6, 30 * time.Second},
	}

	for _, tt := range tests {
		got := delayFor(cfg, tt.attempt)
		if got != tt.expected {
			t.Errorf("delayFor(%d) = %v, want %v", tt.attempt, got, tt.expected)
		}
	}
}

func TestDelayFor_WithJitter(t *testing.T) {
	cfg := withDefaults(Config{
		MaxAttempts:  5,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.1,
	})

	minExpected := time.Duration(float64(time.Second) * 0.9)
	maxExpected := time.Duration(float64(time.Second) * 1.1)

	results := make(map[time.Duration]bool)
	for i := 0; i < 100; i++ {
		delay := delayFor(cfg, 0)
		results[delay] = true

		if delay < minExpected || delay > maxExpected {
			t.Errorf("delayFor(0) = %v, want between %v and %v", delay, minExpected, maxExpected)
		}
	}

	if len(results) < 3 {
		t.Errorf("Expected more variation with jitter, got %d unique values", len(results))
	}
}

func TestPermanent(t *testing.T) {
	err := errors.New("test error")
	permErr := Permanent(err)

	var pe *PermanentError
	if !errors.As(permErr, &pe) {
		t.Error("Permanent error should be PermanentError")
	}

	if pe.Error() != err.Error() {
		t.Errorf("PermanentError.Error() = %v, want %v", pe.Error(), err.Error())
	}

	if !errors.Is(pe.Unwrap(), err) {
		t.Error("PermanentError.Unwrap() should return original error")
	}

	if Permanent(nil) != nil {
		t.Error("Permanent(nil) should return nil")
	}
}
