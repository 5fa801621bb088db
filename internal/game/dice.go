package game

import "math/rand/v2"

// dieFaces is the number of faces on a single movement die.
// Deep Sea Adventure uses two three-sided dice.
const dieFaces = 3

// Roller produces movement rolls. Die is the production implementation;
// deterministic sequences can be substituted in tests.
type Roller interface {
	RollMove() int
}

// Die produces movement rolls from an injected random source so tests and
// repeated simulations can supply deterministic sequences.
type Die struct {
	rng *rand.Rand
}

// NewDie creates a die backed by the given generator.
func NewDie(rng *rand.Rand) *Die {
	return &Die{rng: rng}
}

// Roll returns a single die outcome uniformly distributed in {1,2,3}.
func (d *Die) Roll() int {
	return d.rng.IntN(dieFaces) + 1
}

// RollMove returns a movement roll: the sum of two independent dice,
// yielding a value in {2..6}.
func (d *Die) RollMove() int {
	return d.Roll() + d.Roll()
}
