package infra

import (
	"testing"
	"time"
)

func newTestBreaker() *CircuitBreaker {
	return NewCircuitBreaker(CircuitBreakerConfig{
		Name:             "test",
		FailureThreshold: 3,
		SuccessThreshold: 2,
		Cooldown:         50 * time.Millisecond,
	})
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := newTestBreaker()

	for i := 0; i < 3; i++ {
		if !cb.Allow() {
			t.Fatalf("call %d should be allowed while closed", i)
		}
		cb.RecordFailure()
	}

	if cb.State() != BreakerOpen {
		t.Errorf("state = %s, want OPEN after threshold failures", cb.State())
	}
	if cb.Allow() {
		t.Error("open breaker must reject calls")
	}
}

func TestCircuitBreaker_RecoversThroughHalfOpen(t *testing.T) {
	cb := newTestBreaker()
	for i := 0; i < 3; i++ {
		cb.RecordFailure()
	}

	time.Sleep(60 * time.Millisecond) // past cooldown

	if !cb.Allow() {
		t.Fatal("probe after cooldown should be allowed")
	}
	if cb.State() != BreakerHalfOpen {
		t.Fatalf("state = %s, want HALF_OPEN", cb.State())
	}

	cb.RecordSuccess()
	cb.RecordSuccess()
	if cb.State() != BreakerClosed {
		t.Errorf("state = %s, want CLOSED after successful probes", cb.State())
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := newTestBreaker()
	for i := 0; i < 3; i++ {
		cb.RecordFailure()
	}
	time.Sleep(60 * time.Millisecond)
	cb.Allow() // transitions to half-open

	cb.RecordFailure()
	if cb.State() != BreakerOpen {
		t.Errorf("state = %s, want OPEN after failed probe", cb.State())
	}
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := newTestBreaker()
	cb.RecordFailure()
	cb.RecordFailure()
	cb.RecordSuccess()
	cb.RecordFailure()
	cb.RecordFailure()

	if cb.State() != BreakerClosed {
		t.Error("non-consecutive failures should not open the breaker")
	}
}
