package infra

import (
	"testing"
	"time"
)

func TestBackoff(t *testing.T) {
	tests := []struct {
		retries int
		want    time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{5, 30 * time.Second}, // capped
		{100, 30 * time.Second},
		{-1, 1 * time.Second},
	}

	for _, tt := range tests {
		if got := Backoff(tt.retries); got != tt.want {
			t.Errorf("Backoff(%d) = %s, want %s", tt.retries, got, tt.want)
		}
	}
}
