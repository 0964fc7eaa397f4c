package backoff_test

import (
	"testing"
	"time"

	"github.com/djoldoshevv/Turniti/backoff"
)

func TestConstant(t *testing.T) {
	c := backoff.NewConstant(250 * time.Millisecond)
	for attempt := 1; attempt <= 5; attempt++ {
		if got := c.Delay(attempt); got != 250*time.Millisecond {
			t.Errorf("Delay(%d) = %v, want 250ms", attempt, got)
		}
	}
}

func TestExponentialWithJitterBounds(t *testing.T) {
	e := backoff.NewExponentialWithJitter(100*time.Millisecond, time.Second)

	for attempt := 1; attempt <= 10; attempt++ {
		ceil := 100 * time.Millisecond << (attempt - 1)
		if ceil > time.Second {
			ceil = time.Second
		}
		for range 50 {
			d := e.Delay(attempt)
			if d < 0 || d > ceil {
				t.Fatalf("Delay(%d) = %v, outside [0, %v]", attempt, d, ceil)
			}
		}
	}
}

func TestDefaultIsBounded(t *testing.T) {
	s := backoff.Default()
	for attempt := 1; attempt <= 20; attempt++ {
		if d := s.Delay(attempt); d > 30*time.Second {
			t.Errorf("Delay(%d) = %v, exceeds 30s cap", attempt, d)
		}
	}
}
