package retry

import "time"

// Backoff computes the delay before the next attempt.
type Backoff interface {
	Next(attempt int) time.Duration
}

// ExponentialBackoff doubles the delay per attempt, capped at Max. It paces
// websocket reconnects, where the attempt counter keeps climbing through a
// long outage, so the doubling saturates at Max instead of overflowing.
type ExponentialBackoff struct {
	Base time.Duration
	Max  time.Duration
}

// Next returns the delay for the given attempt (1-based).
func (b ExponentialBackoff) Next(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	base := b.Base
	if base <= 0 {
		base = time.Second
	}
	max := b.Max
	if max <= 0 {
		max = 30 * time.Second
	}
	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= max || delay <= 0 {
			return max
		}
	}
	if delay > max {
		return max
	}
	return delay
}

// DefaultBackoff returns the reconnect pacing used when no bounds are
// configured: one second doubling up to thirty seconds.
func DefaultBackoff() Backoff {
	return ExponentialBackoff{Base: time.Second, Max: 30 * time.Second}
}
