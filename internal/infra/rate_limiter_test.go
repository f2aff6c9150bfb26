package infra

import (
	"testing"
	"time"
)

func TestRateLimiter_Burst(t *testing.T) {
	rl := NewRateLimiter(3, 1)

	for i := 0; i < 3; i++ {
		if !rl.TryAcquire() {
			t.Fatalf("acquire %d should succeed within burst", i)
		}
	}
	if rl.TryAcquire() {
		t.Error("fourth acquire should fail, burst exhausted")
	}
}

func TestRateLimiter_Refill(t *testing.T) {
	rl := NewRateLimiter(1, 20) // refills fast enough for a short test

	if !rl.TryAcquire() {
		t.Fatal("first acquire should succeed")
	}
	if rl.TryAcquire() {
		t.Fatal("second immediate acquire should fail")
	}

	time.Sleep(100 * time.Millisecond) // 20/s -> 2 tokens worth

	if !rl.TryAcquire() {
		t.Error("acquire after refill window should succeed")
	}
}

func TestRateLimiter_WaitReturns(t *testing.T) {
	rl := NewRateLimiter(1, 50)
	rl.Wait() // consumes burst

	done := make(chan struct{})
	go func() {
		rl.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Error("Wait did not return after refill")
	}
}
