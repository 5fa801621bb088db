package game

import (
	"errors"
	"testing"
)

func TestOxygenConsumeAndClamp(t *testing.T) {
	track, err := NewOxygenTrack(5)
	if err != nil {
		t.Fatalf("NewOxygenTrack failed: %v", err)
	}

	if track.Consume(2) {
		t.Error("track should not be exhausted at 3 remaining")
	}
	if got := track.Remaining(); got != 3 {
		t.Errorf("Remaining = %d, want 3", got)
	}

	// Over-consumption clamps at zero instead of going negative.
	if !track.Consume(10) {
		t.Error("track should report exhaustion")
	}
	if got := track.Remaining(); got != 0 {
		t.Errorf("Remaining = %d, want 0", got)
	}
	if !track.Exhausted() {
		t.Error("Exhausted should be true at zero")
	}

	// Consuming from an empty track stays at zero.
	track.Consume(1)
	if got := track.Remaining(); got != 0 {
		t.Errorf("Remaining after extra consume = %d, want 0", got)
	}
}

func TestOxygenMonotonicNonIncreasing(t *testing.T) {
	track, err := NewOxygenTrack(100)
	if err != nil {
		t.Fatalf("NewOxygenTrack failed: %v", err)
	}

	prev := track.Remaining()
	for i := 0; i < 50; i++ {
		track.Consume(i % 4)
		cur := track.Remaining()
		if cur > prev {
			t.Fatalf("oxygen increased from %d to %d", prev, cur)
		}
		if cur < 0 {
			t.Fatalf("oxygen went negative: %d", cur)
		}
		prev = cur
	}
}

func TestOxygenRejectsNonPositiveMaximum(t *testing.T) {
	for _, max := range []int{0, -1, -25} {
		_, err := NewOxygenTrack(max)
		if err == nil {
			t.Errorf("max %d: expected an error", max)
			continue
		}
		var cfgErr ConfigurationError
		if !errors.As(err, &cfgErr) {
			t.Errorf("max %d: expected ConfigurationError, got %T", max, err)
		}
	}
}
