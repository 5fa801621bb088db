package game

// TierCount is the number of depth tiers on the track.
const TierCount = 4

// Tile is a single treasure tile. Deeper tiers carry higher values by
// design policy; once drawn from the deck a tile exists in exactly one
// place (a diver's hands, their banked haul, or lost).
type Tile struct {
	Tier  int `json:"tier"`
	Value int `json:"value"`
}

// TilesValue sums the point values of a set of tiles.
func TilesValue(tiles []Tile) int {
	total := 0
	for _, t := range tiles {
		total += t.Value
	}
	return total
}
