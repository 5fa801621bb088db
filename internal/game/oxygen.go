package game

import "fmt"

// OxygenTrack is the shared countdown resource for one dive. It is scoped
// to a single DiveEngine instance rather than any ambient state, so
// concurrent or repeated simulations can run independent dives safely.
type OxygenTrack struct {
	remaining int
}

// NewOxygenTrack creates a full track. The maximum must be positive.
func NewOxygenTrack(max int) (*OxygenTrack, error) {
	if max <= 0 {
		return nil, ConfigurationError{
			Reason: fmt.Sprintf("oxygen maximum must be positive, got %d", max),
		}
	}
	return &OxygenTrack{remaining: max}, nil
}

// Consume decreases the remaining oxygen by amount, clamped at zero, and
// reports whether the track is now exhausted.
func (o *OxygenTrack) Consume(amount int) bool {
	o.remaining -= amount
	if o.remaining < 0 {
		o.remaining = 0
	}
	return o.remaining == 0
}

// Remaining returns the oxygen left on the track.
func (o *OxygenTrack) Remaining() int {
	return o.remaining
}

// Exhausted reports whether the track has reached zero.
func (o *OxygenTrack) Exhausted() bool {
	return o.remaining == 0
}
