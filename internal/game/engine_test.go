package game

import (
	"errors"
	"reflect"
	"testing"
)

// stubRoller cycles through a fixed sequence of movement rolls.
type stubRoller struct {
	rolls []int
	i     int
}

func (r *stubRoller) RollMove() int {
	v := r.rolls[r.i%len(r.rolls)]
	r.i++
	return v
}

func uniformValues(v int) []int {
	out := make([]int, 8)
	for i := range out {
		out[i] = v
	}
	return out
}

// uniformDeck gives every tile of a tier the same value so tests don't
// depend on shuffle order.
func uniformDeck(t *testing.T) *Deck {
	t.Helper()
	deck, err := NewDeckWithValues(testRNG(), [TierCount][]int{
		uniformValues(2), uniformValues(5), uniformValues(8), uniformValues(12),
	})
	if err != nil {
		t.Fatalf("NewDeckWithValues failed: %v", err)
	}
	return deck
}

func newTestEngine(t *testing.T, names []string, oxygenMax int, roller Roller) (*DiveEngine, []*Diver) {
	t.Helper()
	divers := make([]*Diver, 0, len(names))
	for _, n := range names {
		divers = append(divers, NewDiver(n))
	}
	oxygen, err := NewOxygenTrack(oxygenMax)
	if err != nil {
		t.Fatalf("NewOxygenTrack failed: %v", err)
	}
	engine, err := NewDiveEngine(1, divers, uniformDeck(t), oxygen, roller)
	if err != nil {
		t.Fatalf("NewDiveEngine failed: %v", err)
	}
	return engine, divers
}

// Single diver with oxygen 20: descend for 1/turn with no treasure, pick
// up a tier-1 tile worth 2, keep burning 1/turn with one treasure, then
// return and bank. Remaining oxygen must equal 20 minus the turns taken.
func TestEngineSingleDiverBankScenario(t *testing.T) {
	roller := &stubRoller{rolls: []int{2}}
	engine, divers := newTestEngine(t, []string{"solo"}, 20, roller)
	solo := divers[0]

	snap, err := engine.SubmitDecision(solo.ID, Decision{Action: ActionDescend, TakeTile: true})
	if err != nil {
		t.Fatalf("descend failed: %v", err)
	}
	if solo.Position != 2 {
		t.Fatalf("position = %d, want 2", solo.Position)
	}
	if got := solo.CarriedCount(); got != 1 {
		t.Fatalf("carried = %d, want 1 tier-1 tile", got)
	}
	if snap.OxygenRemaining != 19 {
		t.Errorf("oxygen after turn 1 = %d, want 19", snap.OxygenRemaining)
	}

	snap, err = engine.SubmitDecision(solo.ID, Decision{Action: ActionBeginReturn})
	if err != nil {
		t.Fatalf("begin_return failed: %v", err)
	}
	if snap.State != StateEnded {
		t.Fatalf("dive should end once the only diver banks, state = %s", snap.State)
	}
	if !solo.Banked() {
		t.Error("diver reaching the submarine while returning must bank")
	}

	res, err := engine.Result()
	if err != nil {
		t.Fatalf("Result failed: %v", err)
	}
	if res.OxygenLeft != 20-res.Turns {
		t.Errorf("oxygen left = %d, want 20 - %d turns", res.OxygenLeft, res.Turns)
	}
	if res.Divers[0].Value != 2 {
		t.Errorf("banked value = %d, want 2", res.Divers[0].Value)
	}

	if gained := solo.SecureBanked(); gained != 2 {
		t.Errorf("SecureBanked gained %d, want 2", gained)
	}
}

func TestEngineRejectsIllegalDecisions(t *testing.T) {
	roller := &stubRoller{rolls: []int{2}}
	engine, divers := newTestEngine(t, []string{"solo"}, 50, roller)
	solo := divers[0]

	reject := func(name string, diverID string, dec Decision) {
		t.Helper()
		before := engine.Snapshot()
		_, err := engine.SubmitDecision(diverID, dec)
		if err == nil {
			t.Fatalf("%s: expected an error", name)
		}
		var actionErr InvalidActionError
		if !errors.As(err, &actionErr) {
			t.Fatalf("%s: expected InvalidActionError, got %T: %v", name, err, err)
		}
		if after := engine.Snapshot(); !reflect.DeepEqual(before, after) {
			t.Fatalf("%s: rejected decision mutated the dive", name)
		}
	}

	reject("wrong diver", "not-a-diver", Decision{Action: ActionDescend})
	reject("ascend before returning", solo.ID, Decision{Action: ActionAscend})
	reject("return with no treasure", solo.ID, Decision{Action: ActionBeginReturn})
	reject("pass with a live turn", solo.ID, Decision{Action: ActionPass})
	reject("unknown action", solo.ID, Decision{Action: "swim_sideways"})

	// Descend twice (picking up once), then declare the return mid-track.
	mustSubmit(t, engine, solo.ID, Decision{Action: ActionDescend, TakeTile: true})
	mustSubmit(t, engine, solo.ID, Decision{Action: ActionDescend})
	mustSubmit(t, engine, solo.ID, Decision{Action: ActionBeginReturn})
	if !solo.Returning || solo.Position != 2 {
		t.Fatalf("setup: expected returning diver at position 2, got returning=%t position=%d",
			solo.Returning, solo.Position)
	}

	reject("descend after declaring return", solo.ID, Decision{Action: ActionDescend})
	reject("double return", solo.ID, Decision{Action: ActionBeginReturn})

	// Finish the dive, then verify decisions are rejected outright.
	snap := mustSubmit(t, engine, solo.ID, Decision{Action: ActionAscend})
	if snap.State != StateEnded {
		t.Fatalf("expected dive to end, state = %s", snap.State)
	}
	if _, err := engine.SubmitDecision(solo.ID, Decision{Action: ActionAscend}); err == nil {
		t.Error("expected an error submitting to an ended dive")
	}
}

func mustSubmit(t *testing.T, engine *DiveEngine, diverID string, dec Decision) Snapshot {
	t.Helper()
	snap, err := engine.SubmitDecision(diverID, dec)
	if err != nil {
		t.Fatalf("SubmitDecision(%s) failed: %v", dec.Action, err)
	}
	return snap
}

// Oxygen exhaustion ends the dive and strips every diver who has not
// banked, including divers who never declared a return.
func TestEngineOxygenExhaustionStripsSubmerged(t *testing.T) {
	roller := &stubRoller{rolls: []int{2}}
	engine, divers := newTestEngine(t, []string{"ada", "grace"}, 2, roller)
	ada, grace := divers[0], divers[1]

	mustSubmit(t, engine, ada.ID, Decision{Action: ActionDescend, TakeTile: true})
	if got := ada.CarriedCount(); got != 1 {
		t.Fatalf("setup: ada should carry one tile, has %d", got)
	}

	snap := mustSubmit(t, engine, grace.ID, Decision{Action: ActionDescend, TakeTile: true})
	if snap.State != StateEnded {
		t.Fatalf("dive should end on oxygen exhaustion, state = %s", snap.State)
	}
	if snap.OxygenRemaining != 0 {
		t.Errorf("oxygen remaining = %d, want 0", snap.OxygenRemaining)
	}

	for _, d := range divers {
		if got := d.CarriedCount(); got != 0 {
			t.Errorf("%s still carries %d tiles after drowning", d.Name, got)
		}
		if d.Active() {
			t.Errorf("%s should be inactive after the dive ends", d.Name)
		}
	}

	res, err := engine.Result()
	if err != nil {
		t.Fatalf("Result failed: %v", err)
	}
	for _, dr := range res.Divers {
		if dr.Value != 0 {
			t.Errorf("%s scored %d from a drowned dive, want 0", dr.Name, dr.Value)
		}
	}
}

func TestEngineRotationSkipsInactiveDivers(t *testing.T) {
	roller := &stubRoller{rolls: []int{2}}
	engine, divers := newTestEngine(t, []string{"ada", "grace", "mary"}, 50, roller)
	ada, grace, mary := divers[0], divers[1], divers[2]

	mustSubmit(t, engine, ada.ID, Decision{Action: ActionDescend, TakeTile: true})
	mustSubmit(t, engine, grace.ID, Decision{Action: ActionDescend})
	mustSubmit(t, engine, mary.ID, Decision{Action: ActionDescend})

	// Ada returns from position 2 and banks immediately.
	mustSubmit(t, engine, ada.ID, Decision{Action: ActionBeginReturn})
	if !ada.Banked() {
		t.Fatal("setup: ada should have banked")
	}

	// Rotation now alternates grace and mary, never ada.
	want := []*Diver{grace, mary, grace, mary}
	for i, expected := range want {
		cur := engine.CurrentDiver()
		if cur.ID != expected.ID {
			t.Fatalf("turn %d: current diver = %s, want %s", i, cur.Name, expected.Name)
		}
		if _, err := engine.SubmitDecision(ada.ID, Decision{Action: ActionDescend}); err == nil {
			t.Fatal("banked diver must not be allowed to act")
		}
		mustSubmit(t, engine, cur.ID, Decision{Action: ActionDescend})
	}
}

// Two tiles in tier 1: the third diver landing in the zone gets no offer,
// and no tile is ever held by two divers.
func TestEngineNoDoublePickup(t *testing.T) {
	deck, err := NewDeckWithValues(testRNG(), [TierCount][]int{
		{5, 5}, uniformValues(5), uniformValues(8), uniformValues(12),
	})
	if err != nil {
		t.Fatalf("NewDeckWithValues failed: %v", err)
	}
	oxygen, err := NewOxygenTrack(50)
	if err != nil {
		t.Fatalf("NewOxygenTrack failed: %v", err)
	}
	divers := []*Diver{NewDiver("ada"), NewDiver("grace"), NewDiver("mary")}
	engine, err := NewDiveEngine(1, divers, deck, oxygen, &stubRoller{rolls: []int{2}})
	if err != nil {
		t.Fatalf("NewDiveEngine failed: %v", err)
	}

	for _, d := range divers {
		mustSubmit(t, engine, d.ID, Decision{Action: ActionDescend, TakeTile: true})
	}

	if got := divers[0].CarriedCount() + divers[1].CarriedCount() + divers[2].CarriedCount(); got != 2 {
		t.Errorf("total tiles carried = %d, want the 2 that existed", got)
	}
	if got := divers[2].CarriedCount(); got != 0 {
		t.Errorf("third diver carried %d tiles from an exhausted tier, want 0", got)
	}
	if got := deck.Remaining(1); got != 0 {
		t.Errorf("tier 1 remaining = %d, want 0", got)
	}
}

func TestEngineResultBeforeEnd(t *testing.T) {
	engine, _ := newTestEngine(t, []string{"ada"}, 20, &stubRoller{rolls: []int{2}})
	if _, err := engine.Result(); !errors.Is(err, ErrDiveNotOver) {
		t.Errorf("expected ErrDiveNotOver, got %v", err)
	}
}
