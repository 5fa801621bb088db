package game

import "fmt"

// DiveState is the engine's lifecycle state.
type DiveState string

const (
	StateDiving DiveState = "diving"
	StateEnded  DiveState = "ended"
)

// Action is a decision the acting diver can take on their turn.
type Action string

const (
	// ActionDescend continues outward along the track.
	ActionDescend Action = "descend"
	// ActionAscend continues back toward the submarine; legal only after
	// the return has been declared.
	ActionAscend Action = "ascend"
	// ActionBeginReturn declares the one-way return and ascends this turn.
	ActionBeginReturn Action = "begin_return"
	// ActionPass is accepted in the vocabulary for collaborators that echo
	// turns for returned divers; divers with a live turn cannot pass.
	ActionPass Action = "pass"
)

// Decision is one submitted turn: the movement action plus whether to
// accept a treasure pickup if one is offered at the landing position.
type Decision struct {
	Action   Action `json:"action"`
	TakeTile bool   `json:"take_tile,omitempty"`
}

// DiveEngine runs a single dive: turn rotation, oxygen consumption,
// movement, treasure pickup and banking, and termination. It performs no
// scheduling of its own; callers submit one decision at a time and receive
// the new state or an InvalidActionError that left the state untouched.
type DiveEngine struct {
	round  int
	divers []*Diver
	deck   *Deck
	oxygen *OxygenTrack
	die    Roller

	// Explicit ordered rotation with a cursor; inactive divers are
	// skipped rather than removed, which keeps iteration order testable.
	order  []int
	cursor int

	state DiveState
	turns int
}

// NewDiveEngine assembles one dive and resets every diver onto the
// submarine. Rotation follows the order the divers are given in.
func NewDiveEngine(round int, divers []*Diver, deck *Deck, oxygen *OxygenTrack, die Roller) (*DiveEngine, error) {
	if len(divers) == 0 {
		return nil, ConfigurationError{Reason: "a dive needs at least one diver"}
	}
	if deck == nil || oxygen == nil || die == nil {
		return nil, ConfigurationError{Reason: "dive requires a deck, an oxygen track and a die"}
	}
	e := &DiveEngine{
		round:  round,
		divers: divers,
		deck:   deck,
		oxygen: oxygen,
		die:    die,
		order:  make([]int, len(divers)),
		state:  StateDiving,
	}
	for i, d := range divers {
		e.order[i] = i
		d.ResetForDive()
	}
	return e, nil
}

// State returns the current lifecycle state.
func (e *DiveEngine) State() DiveState {
	return e.state
}

// Round returns the dive's round number.
func (e *DiveEngine) Round() int {
	return e.round
}

// Turns returns how many turns have been resolved so far.
func (e *DiveEngine) Turns() int {
	return e.turns
}

// CurrentDiver returns the diver whose turn it is, or nil once the dive
// has ended.
func (e *DiveEngine) CurrentDiver() *Diver {
	if e.state == StateEnded {
		return nil
	}
	return e.divers[e.order[e.cursor]]
}

// SubmitDecision resolves one turn for the acting diver. Illegal decisions
// fail with InvalidActionError and leave every component unchanged.
func (e *DiveEngine) SubmitDecision(diverID string, dec Decision) (Snapshot, error) {
	if e.state == StateEnded {
		return Snapshot{}, InvalidActionError{Action: dec.Action, Reason: "dive already ended"}
	}

	cur := e.CurrentDiver()
	if diverID != cur.ID {
		return Snapshot{}, InvalidActionError{
			Action: dec.Action,
			Reason: fmt.Sprintf("it is %s's turn", cur.Name),
		}
	}

	// Legality checks happen before any mutation so a rejected decision
	// leaves the dive exactly as it was.
	switch dec.Action {
	case ActionDescend:
		if cur.Returning {
			return Snapshot{}, InvalidActionError{Action: dec.Action, Reason: "cannot descend after declaring return"}
		}
	case ActionAscend:
		if !cur.Returning {
			return Snapshot{}, InvalidActionError{Action: dec.Action, Reason: "diver has not declared a return"}
		}
	case ActionBeginReturn:
		if cur.Returning {
			return Snapshot{}, InvalidActionError{Action: dec.Action, Reason: "return already declared this dive"}
		}
		if cur.CarriedCount() == 0 {
			return Snapshot{}, InvalidActionError{Action: dec.Action, Reason: "cannot turn back with no treasure"}
		}
	case ActionPass:
		return Snapshot{}, InvalidActionError{Action: dec.Action, Reason: "a diver with a live turn cannot pass"}
	default:
		return Snapshot{}, InvalidActionError{Action: dec.Action, Reason: "unknown action"}
	}

	if dec.Action == ActionBeginReturn {
		// Guarded above; cannot fail here.
		if err := cur.BeginReturn(); err != nil {
			return Snapshot{}, err
		}
	}

	// Oxygen burns before movement: one unit minimum, plus the weight of
	// every carried treasure.
	cost := cur.CarriedCount()
	if cost < 1 {
		cost = 1
	}
	e.oxygen.Consume(cost)

	delta := e.die.RollMove()
	if cur.Returning {
		pos := cur.Position - delta
		if pos < 0 {
			pos = 0
		}
		cur.MoveTo(pos)
		if pos == 0 {
			cur.BankTreasures()
		}
	} else {
		pos := cur.Position + delta
		if last := e.deck.TrackLength(); pos > last {
			pos = last
		}
		cur.MoveTo(pos)

		// Pickup only on the exact landing position, at most one tile per
		// turn. An exhausted tier simply offers nothing.
		if dec.TakeTile && pos > 0 {
			if tile, ok := e.deck.Draw(e.deck.TierForPosition(pos)); ok {
				if err := cur.PickUp(tile); err != nil {
					return Snapshot{}, err
				}
			}
		}
	}

	e.turns++
	e.advance()
	return e.Snapshot(), nil
}

// advance moves the cursor to the next still-active diver, or ends the
// dive when oxygen is out or nobody remains.
func (e *DiveEngine) advance() {
	if e.oxygen.Exhausted() {
		e.end()
		return
	}
	n := len(e.order)
	for i := 1; i <= n; i++ {
		idx := (e.cursor + i) % n
		if e.divers[e.order[idx]].Active() {
			e.cursor = idx
			return
		}
	}
	e.end()
}

// end terminates the dive. Divers who have not banked lose everything they
// carry; banked divers keep their haul.
func (e *DiveEngine) end() {
	e.state = StateEnded
	for _, d := range e.divers {
		if !d.Banked() {
			d.DropAll()
			d.deactivate()
		}
	}
}

// DiverResult is one diver's outcome for a single dive.
type DiverResult struct {
	DiverID string `json:"diver_id"`
	Name    string `json:"name"`
	Banked  []Tile `json:"banked"`
	Value   int    `json:"value"`
}

// DiveResult is the outcome of a finished dive: the banked tiles per
// diver, in rotation order.
type DiveResult struct {
	Round      int           `json:"round"`
	Turns      int           `json:"turns"`
	OxygenLeft int           `json:"oxygen_left"`
	Divers     []DiverResult `json:"divers"`
}

// Result reports the dive outcome. Valid only once the dive has ended.
func (e *DiveEngine) Result() (DiveResult, error) {
	if e.state != StateEnded {
		return DiveResult{}, ErrDiveNotOver
	}
	res := DiveResult{
		Round:      e.round,
		Turns:      e.turns,
		OxygenLeft: e.oxygen.Remaining(),
		Divers:     make([]DiverResult, 0, len(e.divers)),
	}
	for _, idx := range e.order {
		d := e.divers[idx]
		banked := d.BankedThisDive()
		res.Divers = append(res.Divers, DiverResult{
			DiverID: d.ID,
			Name:    d.Name,
			Banked:  banked,
			Value:   TilesValue(banked),
		})
	}
	return res, nil
}
