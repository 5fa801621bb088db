package game

import "github.com/google/uuid"

// Diver is the per-player mutable state: track position, carried tiles,
// one-shot return commitment, banked haul for the current dive, and the
// score accumulated across dives. Direction is a single flag rather than a
// diver-type hierarchy, which keeps the model flat and the guards in one
// place.
type Diver struct {
	ID   string
	Name string

	Position  int
	Returning bool

	carried  []Tile
	banked   []Tile
	isBanked bool
	active   bool

	TotalScore int
	tierCounts [TierCount]int
}

// NewDiver creates a diver with a fresh identity. The diver is inert until
// ResetForDive is called by the engine.
func NewDiver(name string) *Diver {
	return &Diver{ID: uuid.New().String(), Name: name}
}

// ResetForDive puts the diver back on the submarine for a new dive.
// Cumulative score and tier counts are preserved.
func (d *Diver) ResetForDive() {
	d.Position = 0
	d.Returning = false
	d.isBanked = false
	d.active = true
	d.carried = nil
	d.banked = nil
}

// Active reports whether the diver still takes turns this dive.
func (d *Diver) Active() bool {
	return d.active
}

// Banked reports whether the diver has returned and banked this dive.
func (d *Diver) Banked() bool {
	return d.isBanked
}

// Carried returns a copy of the carried tiles in pickup order.
func (d *Diver) Carried() []Tile {
	out := make([]Tile, len(d.carried))
	copy(out, d.carried)
	return out
}

// CarriedCount returns the number of tiles the diver is holding.
func (d *Diver) CarriedCount() int {
	return len(d.carried)
}

// MoveTo updates the diver's position. Bounds are the engine's
// responsibility.
func (d *Diver) MoveTo(pos int) {
	d.Position = pos
}

// PickUp appends a tile to the carried sequence. A diver may only carry
// while still active, not yet banked, and away from the submarine.
func (d *Diver) PickUp(t Tile) error {
	if !d.active || d.isBanked {
		return InvalidActionError{Action: ActionDescend, Reason: "diver is no longer diving"}
	}
	if d.Position == 0 {
		return InvalidActionError{Action: ActionDescend, Reason: "cannot pick up treasure at the submarine"}
	}
	d.carried = append(d.carried, t)
	return nil
}

// DropAll discards every carried tile. Idempotent; used when oxygen runs
// out before the diver returns.
func (d *Diver) DropAll() {
	d.carried = nil
}

// BeginReturn commits the diver to ascending. It may succeed at most once
// per dive and only while carrying at least one treasure; otherwise the
// diver is unchanged and the caller must re-prompt.
func (d *Diver) BeginReturn() error {
	if d.Returning {
		return InvalidActionError{Action: ActionBeginReturn, Reason: "return already declared this dive"}
	}
	if len(d.carried) == 0 {
		return InvalidActionError{Action: ActionBeginReturn, Reason: "cannot turn back with no treasure"}
	}
	d.Returning = true
	return nil
}

// BankTreasures moves the carried tiles into the dive's banked haul and
// marks the diver done for the dive. Invoked by the engine when a
// returning diver reaches the submarine.
func (d *Diver) BankTreasures() {
	d.banked = append(d.banked, d.carried...)
	d.carried = nil
	d.isBanked = true
	d.active = false
	d.Position = 0
}

// BankedThisDive returns a copy of the tiles banked in the current dive.
func (d *Diver) BankedThisDive() []Tile {
	out := make([]Tile, len(d.banked))
	copy(out, d.banked)
	return out
}

// SecureBanked folds the dive's banked tiles into the cumulative score and
// per-tier counts, returning the points gained. Called once per dive by
// the session when the dive ends.
func (d *Diver) SecureBanked() int {
	gained := 0
	for _, t := range d.banked {
		gained += t.Value
		if t.Tier >= 1 && t.Tier <= TierCount {
			d.tierCounts[t.Tier-1]++
		}
	}
	d.TotalScore += gained
	return gained
}

// BankedTierCounts returns how many tiles of each tier (indexed tier-1)
// the diver has banked across all dives. Used for the winner tie-break.
func (d *Diver) BankedTierCounts() [TierCount]int {
	return d.tierCounts
}

// deactivate ends the diver's dive without banking.
func (d *Diver) deactivate() {
	d.active = false
}
