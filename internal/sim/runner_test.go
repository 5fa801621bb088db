package sim

import (
	"context"
	"testing"
)

func TestRunnerValidation(t *testing.T) {
	runner := NewRunner()

	cases := []struct {
		name string
		req  Request
	}{
		{"no sessions", Request{Players: []PlayerSpec{{Name: "a"}}}},
		{"no players", Request{Sessions: 1}},
		{"too many players", Request{Sessions: 1, Players: []PlayerSpec{
			{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}, {Name: "e"}, {Name: "f"}, {Name: "g"},
		}}},
		{"bad strategy", Request{Sessions: 1, Players: []PlayerSpec{{Name: "a", Strategy: "reckless"}}}},
		{"broken script", Request{Sessions: 1, Players: []PlayerSpec{{Name: "a", Strategy: "script", Script: "not js"}}}},
	}
	for _, c := range cases {
		if _, err := runner.Run(context.Background(), c.req); err == nil {
			t.Errorf("%s: expected an error", c.name)
		}
	}
}

func TestRunnerAggregates(t *testing.T) {
	runner := NewRunner()
	res, err := runner.Run(context.Background(), Request{
		Sessions: 10,
		Players: []PlayerSpec{
			{Name: "greta", Strategy: "greedy"},
			{Name: "carl", Strategy: "cautious"},
		},
		Seed:    1234,
		Workers: 3,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.Sessions != 10 {
		t.Errorf("Sessions = %d, want 10", res.Sessions)
	}
	if res.Seed != 1234 {
		t.Errorf("Seed = %d, want the request seed", res.Seed)
	}
	if len(res.Players) != 2 {
		t.Fatalf("got %d player stats, want 2", len(res.Players))
	}

	wins := 0
	for _, p := range res.Players {
		if p.Wins < 0 || p.Wins > 10 {
			t.Errorf("%s: wins = %d out of range", p.Name, p.Wins)
		}
		if p.TotalScore < 0 {
			t.Errorf("%s: negative total score %d", p.Name, p.TotalScore)
		}
		if p.BankedTiles == 0 && p.TotalScore != 0 {
			t.Errorf("%s: scored %d without banking a tile", p.Name, p.TotalScore)
		}
		wins += p.Wins
	}
	// Every session produces exactly one winner or a draw for everyone.
	if wins+res.Draws != 10 {
		t.Errorf("wins (%d) + draws (%d) != 10 sessions", wins, res.Draws)
	}
}

func TestRunnerDeterministicBySeed(t *testing.T) {
	req := Request{
		Sessions: 6,
		Players: []PlayerSpec{
			{Name: "greta", Strategy: "greedy"},
			{Name: "carl", Strategy: "cautious"},
		},
		Seed: 777,
	}

	run := func(workers int) *Result {
		r := req
		r.Workers = workers
		res, err := NewRunner().Run(context.Background(), r)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		return res
	}

	// Same seed, different worker counts: identical aggregates.
	a, b := run(1), run(4)
	if a.Draws != b.Draws {
		t.Errorf("draws diverged: %d vs %d", a.Draws, b.Draws)
	}
	for i := range a.Players {
		pa, pb := a.Players[i], b.Players[i]
		if pa.Wins != pb.Wins || pa.TotalScore != pb.TotalScore ||
			pa.BankedTiles != pb.BankedTiles || pa.DrownedDives != pb.DrownedDives {
			t.Errorf("player %s diverged: %+v vs %+v", pa.Name, pa, pb)
		}
		if !pa.MeanScore.Equal(pb.MeanScore) {
			t.Errorf("player %s mean diverged: %s vs %s", pa.Name, pa.MeanScore, pb.MeanScore)
		}
	}
}

func TestRunnerScriptPlayer(t *testing.T) {
	runner := NewRunner()
	res, err := runner.Run(context.Background(), Request{
		Sessions: 3,
		Players: []PlayerSpec{
			{Name: "scripted", Strategy: "script", Script: cautiousScript},
			{Name: "greta", Strategy: "greedy"},
		},
		Seed:    55,
		Workers: 2,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Players[0].Strategy != "script" {
		t.Errorf("strategy label = %q, want script", res.Players[0].Strategy)
	}
}

func TestRunnerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner().Run(ctx, Request{
		Sessions: 1000,
		Players:  []PlayerSpec{{Name: "a", Strategy: "cautious"}},
		Seed:     9,
	})
	if err == nil {
		t.Error("expected an error from a cancelled context")
	}
}
