package game

import (
	"errors"
	"testing"
)

func newTestDiver(name string) *Diver {
	d := NewDiver(name)
	d.ResetForDive()
	return d
}

func TestDiverPickUpGuards(t *testing.T) {
	d := newTestDiver("ada")

	// Invariant: carrying requires position > 0.
	if err := d.PickUp(Tile{Tier: 1, Value: 2}); err == nil {
		t.Error("expected error picking up at the submarine")
	}

	d.MoveTo(3)
	if err := d.PickUp(Tile{Tier: 1, Value: 2}); err != nil {
		t.Fatalf("PickUp failed: %v", err)
	}
	if got := d.CarriedCount(); got != 1 {
		t.Errorf("CarriedCount = %d, want 1", got)
	}

	d.BankTreasures()
	if err := d.PickUp(Tile{Tier: 1, Value: 2}); err == nil {
		t.Error("expected error picking up after banking")
	}
}

func TestDiverBeginReturnOneShot(t *testing.T) {
	d := newTestDiver("ada")

	// No treasure yet: refused, flag untouched.
	err := d.BeginReturn()
	if err == nil {
		t.Fatal("expected error returning with no treasure")
	}
	var actionErr InvalidActionError
	if !errors.As(err, &actionErr) {
		t.Fatalf("expected InvalidActionError, got %T", err)
	}
	if d.Returning {
		t.Error("failed BeginReturn must not set the returning flag")
	}

	d.MoveTo(4)
	if err := d.PickUp(Tile{Tier: 2, Value: 5}); err != nil {
		t.Fatalf("PickUp failed: %v", err)
	}
	if err := d.BeginReturn(); err != nil {
		t.Fatalf("BeginReturn failed: %v", err)
	}
	if !d.Returning {
		t.Error("BeginReturn should set the returning flag")
	}

	// Second invocation in the same dive always fails.
	if err := d.BeginReturn(); err == nil {
		t.Error("expected error on second BeginReturn")
	}

	// A fresh dive resets the one-shot.
	d.ResetForDive()
	if d.Returning {
		t.Error("ResetForDive should clear the returning flag")
	}
}

func TestDiverDropAllIdempotent(t *testing.T) {
	d := newTestDiver("ada")
	d.MoveTo(2)
	if err := d.PickUp(Tile{Tier: 1, Value: 3}); err != nil {
		t.Fatalf("PickUp failed: %v", err)
	}

	d.DropAll()
	if got := d.CarriedCount(); got != 0 {
		t.Errorf("CarriedCount after DropAll = %d, want 0", got)
	}
	d.DropAll()
	if got := d.CarriedCount(); got != 0 {
		t.Errorf("CarriedCount after second DropAll = %d, want 0", got)
	}
}

func TestDiverBankAndSecure(t *testing.T) {
	d := newTestDiver("ada")
	d.MoveTo(10)
	if err := d.PickUp(Tile{Tier: 2, Value: 5}); err != nil {
		t.Fatalf("PickUp failed: %v", err)
	}
	d.MoveTo(18)
	if err := d.PickUp(Tile{Tier: 3, Value: 8}); err != nil {
		t.Fatalf("PickUp failed: %v", err)
	}

	d.BankTreasures()
	if got := d.CarriedCount(); got != 0 {
		t.Errorf("carried must be empty after banking, got %d tiles", got)
	}
	if !d.Banked() || d.Active() {
		t.Error("banked diver should be inactive-but-successful")
	}
	if d.Position != 0 {
		t.Errorf("banked diver position = %d, want 0", d.Position)
	}

	// Banking tier2(5) + tier3(8) increases the total by exactly 13.
	if gained := d.SecureBanked(); gained != 13 {
		t.Errorf("SecureBanked gained %d, want 13", gained)
	}
	if d.TotalScore != 13 {
		t.Errorf("TotalScore = %d, want 13", d.TotalScore)
	}

	counts := d.BankedTierCounts()
	if counts[1] != 1 || counts[2] != 1 {
		t.Errorf("tier counts = %v, want one tier-2 and one tier-3", counts)
	}
}
