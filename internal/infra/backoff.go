package infra

import (
	"time"
)

const (
	backoffBase = 1 * time.Second
	backoffMax  = 30 * time.Second
)

// Backoff returns the capped exponential delay for a given consecutive
// failure count: base * 2^retries, never above the cap. Reconnect loops use
// this so a down endpoint is never hot-looped against.
func Backoff(retries int) time.Duration {
	if retries <= 0 {
		return backoffBase
	}
	// 2^retries overflows long before the cap matters.
	if retries > 20 {
		return backoffMax
	}
	d := backoffBase * time.Duration(1<<retries)
	if d > backoffMax {
		return backoffMax
	}
	return d
}
