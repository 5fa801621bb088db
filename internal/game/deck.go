package game

import (
	"fmt"
	"math/rand/v2"
)

// defaultTierValues is the official treasure distribution: eight tiles per
// tier, values rising with depth.
var defaultTierValues = [TierCount][]int{
	{0, 0, 1, 1, 2, 2, 3, 3},
	{4, 4, 5, 5, 6, 6, 7, 7},
	{8, 8, 9, 9, 10, 10, 11, 11},
	{12, 12, 13, 13, 14, 14, 15, 15},
}

// Deck holds the undrawn treasure tiles for one dive, partitioned into
// depth tiers. The track is partitioned into contiguous tier zones: one
// position per tile, shallowest tier first, position 0 being the submarine.
type Deck struct {
	tiers     [TierCount][]Tile
	zoneSizes [TierCount]int
	trackLen  int
}

// NewDeck builds a deck with the default distribution. Draw order within
// each tier is shuffled with the supplied generator; tiers never mix.
func NewDeck(rng *rand.Rand) (*Deck, error) {
	return NewDeckWithValues(rng, defaultTierValues)
}

// NewDeckWithValues builds a deck from explicit per-tier value lists.
// Every tier must contribute at least one tile.
func NewDeckWithValues(rng *rand.Rand, tierValues [TierCount][]int) (*Deck, error) {
	d := &Deck{}
	for i, values := range tierValues {
		if len(values) == 0 {
			return nil, ConfigurationError{
				Reason: fmt.Sprintf("tier %d has no tiles; every tier needs at least one", i+1),
			}
		}
		tiles := make([]Tile, len(values))
		for j, v := range values {
			tiles[j] = Tile{Tier: i + 1, Value: v}
		}
		rng.Shuffle(len(tiles), func(a, b int) {
			tiles[a], tiles[b] = tiles[b], tiles[a]
		})
		d.tiers[i] = tiles
		d.zoneSizes[i] = len(tiles)
		d.trackLen += len(tiles)
	}
	return d, nil
}

// TrackLength returns the index of the deepest track position. Positions
// run 1..TrackLength; 0 is the submarine.
func (d *Deck) TrackLength() int {
	return d.trackLen
}

// TierForPosition maps a track position to its depth tier, or 0 for the
// submarine and out-of-range positions.
func (d *Deck) TierForPosition(pos int) int {
	if pos < 1 || pos > d.trackLen {
		return 0
	}
	for i, size := range d.zoneSizes {
		if pos <= size {
			return i + 1
		}
		pos -= size
	}
	return 0
}

// Draw removes and returns the next undrawn tile of the requested tier.
// An exhausted tier is not an error: the second return is false and the
// triggering position is simply treated as empty.
func (d *Deck) Draw(tier int) (Tile, bool) {
	if tier < 1 || tier > TierCount {
		return Tile{}, false
	}
	tiles := d.tiers[tier-1]
	if len(tiles) == 0 {
		return Tile{}, false
	}
	tile := tiles[len(tiles)-1]
	d.tiers[tier-1] = tiles[:len(tiles)-1]
	return tile, true
}

// Remaining reports how many undrawn tiles the tier has left.
func (d *Deck) Remaining(tier int) int {
	if tier < 1 || tier > TierCount {
		return 0
	}
	return len(d.tiers[tier-1])
}

// RemainingByTier returns undrawn tile counts indexed by tier-1.
func (d *Deck) RemainingByTier() [TierCount]int {
	var out [TierCount]int
	for i := range d.tiers {
		out[i] = len(d.tiers[i])
	}
	return out
}
