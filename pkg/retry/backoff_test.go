package retry

import (
	"testing"
	"time"
)

func TestExponentialBackoffDoubles(t *testing.T) {
	b := ExponentialBackoff{Base: time.Second, Max: 30 * time.Second}
	if got := b.Next(1); got != time.Second {
		t.Fatalf("attempt 1: expected 1s, got %v", got)
	}
	if got := b.Next(3); got != 4*time.Second {
		t.Fatalf("attempt 3: expected 4s, got %v", got)
	}
	if got := b.Next(0); got != time.Second {
		t.Fatalf("attempt 0: expected 1s, got %v", got)
	}
}

func TestExponentialBackoffCapsAtMax(t *testing.T) {
	b := ExponentialBackoff{Base: time.Second, Max: 30 * time.Second}
	if got := b.Next(6); got != 30*time.Second {
		t.Fatalf("attempt 6: expected 30s cap, got %v", got)
	}
	// A long outage keeps incrementing the attempt counter; the delay must
	// stay pinned at Max rather than wrap around.
	if got := b.Next(500); got != 30*time.Second {
		t.Fatalf("attempt 500: expected 30s cap, got %v", got)
	}
}

func TestExponentialBackoffDefaults(t *testing.T) {
	var b ExponentialBackoff
	if got := b.Next(1); got != time.Second {
		t.Fatalf("expected default base 1s, got %v", got)
	}
	if got := b.Next(40); got != 30*time.Second {
		t.Fatalf("expected default max 30s, got %v", got)
	}
}
