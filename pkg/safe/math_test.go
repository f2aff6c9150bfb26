package safe

import (
	"math"
	"testing"
)

func TestAdd(t *testing.T) {
	if got := Add(10, 20); got != 30 {
		t.Errorf("Add(10, 20) = %d, want 30", got)
	}
	if got := Add(math.MaxInt64-1, 1); got != math.MaxInt64 {
		t.Errorf("Add at boundary = %d, want MaxInt64", got)
	}

	t.Run("Overflow Panics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("should have panicked")
			}
		}()
		Add(math.MaxInt64, 1)
	})
}

func TestSub(t *testing.T) {
	if got := Sub(30, 10); got != 20 {
		t.Errorf("Sub(30, 10) = %d, want 20", got)
	}

	t.Run("Underflow Panics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("should have panicked")
			}
		}()
		Sub(math.MinInt64, 1)
	})
}

func TestMul(t *testing.T) {
	if got := Mul(5, 6); got != 30 {
		t.Errorf("Mul(5, 6) = %d, want 30", got)
	}
	if got := Mul(0, math.MaxInt64); got != 0 {
		t.Errorf("Mul(0, MaxInt64) = %d, want 0", got)
	}

	t.Run("Overflow Panics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("should have panicked")
			}
		}()
		Mul(math.MaxInt64, 2)
	})
}

func FuzzMul(f *testing.F) {
	f.Add(int64(0), int64(0))
	f.Add(int64(2), int64(3))
	f.Add(int64(-2), int64(3))
	f.Add(int64(1000000), int64(1000000))

	f.Fuzz(func(t *testing.T, a, b int64) {
		defer func() { recover() }() // Overflow panic is expected behavior
		_ = Mul(a, b)
	})
}
