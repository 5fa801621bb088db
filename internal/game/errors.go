package game

import (
	"errors"
	"fmt"
)

// InvalidActionError reports a decision that violates a turn-legality
// invariant. It is recoverable: the engine state is unchanged and the
// caller must resubmit a corrected decision.
type InvalidActionError struct {
	Action Action
	Reason string
}

func (e InvalidActionError) Error() string {
	return fmt.Sprintf("invalid action %q: %s", e.Action, e.Reason)
}

// ConfigurationError reports a structural misconfiguration. It is fatal to
// construction: no partial state is created.
type ConfigurationError struct {
	Reason string
}

func (e ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// Sentinel errors for reading results before their phase has completed.
var (
	ErrDiveNotOver    = errors.New("dive is not over")
	ErrSessionNotOver = errors.New("session has rounds left to play")
	ErrNoActiveDive   = errors.New("no dive in progress")
)
