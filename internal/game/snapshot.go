package game

// DiverSnapshot is a read-only projection of one diver.
type DiverSnapshot struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Position   int    `json:"position"`
	Carried    []Tile `json:"carried"`
	Returning  bool   `json:"returning"`
	Banked     bool   `json:"banked"`
	Active     bool   `json:"active"`
	TotalScore int    `json:"total_score"`
}

// Snapshot is a read-only projection of a dive that presentation layers
// consume. Mutating a snapshot never touches the engine.
type Snapshot struct {
	Round           int             `json:"round"`
	State           DiveState       `json:"state"`
	OxygenRemaining int             `json:"oxygen_remaining"`
	CurrentDiverID  string          `json:"current_diver_id,omitempty"`
	TilesRemaining  [TierCount]int  `json:"tiles_remaining"`
	Divers          []DiverSnapshot `json:"divers"`
}

// Snapshot captures the current dive state.
func (e *DiveEngine) Snapshot() Snapshot {
	snap := Snapshot{
		Round:           e.round,
		State:           e.state,
		OxygenRemaining: e.oxygen.Remaining(),
		TilesRemaining:  e.deck.RemainingByTier(),
		Divers:          make([]DiverSnapshot, 0, len(e.divers)),
	}
	if cur := e.CurrentDiver(); cur != nil {
		snap.CurrentDiverID = cur.ID
	}
	for _, idx := range e.order {
		d := e.divers[idx]
		snap.Divers = append(snap.Divers, DiverSnapshot{
			ID:         d.ID,
			Name:       d.Name,
			Position:   d.Position,
			Carried:    d.Carried(),
			Returning:  d.Returning,
			Banked:     d.Banked(),
			Active:     d.Active(),
			TotalScore: d.TotalScore,
		})
	}
	return snap
}
