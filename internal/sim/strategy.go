package sim

import (
	"fmt"

	"github.com/mkarrio/deepsea-sim-go/internal/game"
)

// Strategy decides one turn for a diver from the dive snapshot. Strategies
// are used from a single worker goroutine at a time; they may keep state.
type Strategy interface {
	// Decide returns the decision for the diver whose turn it is.
	Decide(state game.Snapshot, diverID string) (game.Decision, error)
}

// PlayerSpec pairs a player name with the strategy that plays it.
// Strategy is "greedy", "cautious", or "script"; Script carries the source
// for script strategies.
type PlayerSpec struct {
	Name     string `json:"name"`
	Strategy string `json:"strategy"`
	Script   string `json:"script,omitempty"`
}

// NewStrategy builds a fresh strategy instance from a spec. Script
// strategies get their own VM, so every worker calls this independently.
func NewStrategy(spec PlayerSpec) (Strategy, error) {
	switch spec.Strategy {
	case "", "greedy":
		return &greedyStrategy{target: 3}, nil
	case "cautious":
		return &cautiousStrategy{}, nil
	case "script":
		return NewScriptStrategy(spec.Script)
	default:
		return nil, fmt.Errorf("unknown strategy %q", spec.Strategy)
	}
}

func diverState(state game.Snapshot, diverID string) (game.DiverSnapshot, error) {
	for _, d := range state.Divers {
		if d.ID == diverID {
			return d, nil
		}
	}
	return game.DiverSnapshot{}, fmt.Errorf("diver %s not in snapshot", diverID)
}

// greedyStrategy keeps grabbing tiles until it carries target tiles, then
// heads home.
type greedyStrategy struct {
	target int
}

func (g *greedyStrategy) Decide(state game.Snapshot, diverID string) (game.Decision, error) {
	me, err := diverState(state, diverID)
	if err != nil {
		return game.Decision{}, err
	}
	switch {
	case me.Returning:
		return game.Decision{Action: game.ActionAscend}, nil
	case len(me.Carried) >= g.target:
		return game.Decision{Action: game.ActionBeginReturn}, nil
	default:
		return game.Decision{Action: game.ActionDescend, TakeTile: true}, nil
	}
}

// cautiousStrategy turns back with the first tile it finds.
type cautiousStrategy struct{}

func (c *cautiousStrategy) Decide(state game.Snapshot, diverID string) (game.Decision, error) {
	me, err := diverState(state, diverID)
	if err != nil {
		return game.Decision{}, err
	}
	switch {
	case me.Returning:
		return game.Decision{Action: game.ActionAscend}, nil
	case len(me.Carried) >= 1:
		return game.Decision{Action: game.ActionBeginReturn}, nil
	default:
		return game.Decision{Action: game.ActionDescend, TakeTile: true}, nil
	}
}
