package sim

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/mkarrio/deepsea-sim-go/internal/game"
)

// Request describes a Monte Carlo run: how many independent sessions to
// play and who plays them. A zero Seed picks a random one; every session
// derives its own seed from the request seed, so results are reproducible.
type Request struct {
	Sessions  int          `json:"sessions"`
	Players   []PlayerSpec `json:"players"`
	OxygenMax int          `json:"oxygen_max,omitempty"`
	Rounds    int          `json:"rounds,omitempty"`
	Seed      uint64       `json:"seed,omitempty"`
	Workers   int          `json:"workers,omitempty"`
}

// PlayerStats aggregates one player's outcomes across every session.
type PlayerStats struct {
	Name         string          `json:"name"`
	Strategy     string          `json:"strategy"`
	Wins         int             `json:"wins"`
	Draws        int             `json:"draws"`
	DrownedDives int             `json:"drowned_dives"`
	BankedTiles  int             `json:"banked_tiles"`
	TotalScore   int64           `json:"total_score"`
	MeanScore    decimal.Decimal `json:"mean_score"`
}

// Result is the aggregated outcome of a Monte Carlo run.
type Result struct {
	Sessions int           `json:"sessions"`
	Draws    int           `json:"draws"`
	Seed     uint64        `json:"seed"`
	Players  []PlayerStats `json:"players"`
}

// Runner plays sessions in parallel across a worker pool.
type Runner struct {
	workerCount int
}

// NewRunner creates a runner sized to the available CPUs.
func NewRunner() *Runner {
	return &Runner{workerCount: runtime.GOMAXPROCS(0)}
}

// playerOutcome is one player's result from a single session, in request
// player order.
type playerOutcome struct {
	score        int
	drownedDives int
	bankedTiles  int
}

// sessionOutcome is one finished session.
type sessionOutcome struct {
	players []playerOutcome
	winner  string
	draw    bool
	err     error
}

// Run plays req.Sessions independent sessions and aggregates the results.
// Aggregation is order-free, so the result is deterministic for a given
// seed regardless of worker scheduling.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	if req.Sessions <= 0 {
		return nil, fmt.Errorf("session count must be positive, got %d", req.Sessions)
	}
	if len(req.Players) == 0 || len(req.Players) > game.MaxDivers {
		return nil, fmt.Errorf("need between 1 and %d players, got %d", game.MaxDivers, len(req.Players))
	}
	if req.OxygenMax == 0 {
		req.OxygenMax = game.DefaultOxygen
	}
	if req.Rounds == 0 {
		req.Rounds = game.DefaultRounds
	}
	if req.Seed == 0 {
		req.Seed = rand.Uint64()
	}
	workers := req.Workers
	if workers <= 0 {
		workers = r.workerCount
	}
	if workers > req.Sessions {
		workers = req.Sessions
	}

	// Fail early on a bad strategy spec instead of inside every worker.
	for _, spec := range req.Players {
		if _, err := NewStrategy(spec); err != nil {
			return nil, fmt.Errorf("player %s: %w", spec.Name, err)
		}
	}

	jobs := make(chan int, workers*2)
	outcomes := make(chan sessionOutcome, workers*2)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.work(ctx, req, jobs, outcomes)
		}()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < req.Sessions; i++ {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	result := &Result{
		Sessions: req.Sessions,
		Seed:     req.Seed,
		Players:  make([]PlayerStats, len(req.Players)),
	}
	for i, spec := range req.Players {
		result.Players[i] = PlayerStats{Name: spec.Name, Strategy: spec.Strategy}
		if result.Players[i].Strategy == "" {
			result.Players[i].Strategy = "greedy"
		}
	}

	var firstErr error
	collected := 0
	for outcome := range outcomes {
		if outcome.err != nil {
			if firstErr == nil {
				firstErr = outcome.err
				cancel()
			}
			continue
		}
		collected++
		if outcome.draw {
			result.Draws++
		}
		for i, po := range outcome.players {
			stats := &result.Players[i]
			stats.TotalScore += int64(po.score)
			stats.DrownedDives += po.drownedDives
			stats.BankedTiles += po.bankedTiles
			if outcome.draw {
				stats.Draws++
			} else if result.Players[i].Name == outcome.winner {
				stats.Wins++
			}
		}
	}

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if collected != req.Sessions {
		return nil, fmt.Errorf("played %d of %d sessions", collected, req.Sessions)
	}

	sessions := decimal.NewFromInt(int64(req.Sessions))
	for i := range result.Players {
		total := decimal.NewFromInt(result.Players[i].TotalScore)
		result.Players[i].MeanScore = total.Div(sessions).Round(4)
	}
	return result, nil
}

// work plays sessions pulled from the jobs channel. Each worker builds its
// own strategy instances; script runtimes must not cross goroutines.
func (r *Runner) work(ctx context.Context, req Request, jobs <-chan int, outcomes chan<- sessionOutcome) {
	strategies := make([]Strategy, len(req.Players))
	for i, spec := range req.Players {
		s, err := NewStrategy(spec)
		if err != nil {
			select {
			case outcomes <- sessionOutcome{err: err}:
			case <-ctx.Done():
			}
			return
		}
		strategies[i] = s
	}

	for {
		select {
		case idx, ok := <-jobs:
			if !ok {
				return
			}
			outcome := r.playSession(req, strategies, sessionSeed(req.Seed, idx))
			select {
			case outcomes <- outcome:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// sessionSeed derives a per-session seed from the request seed. The mix
// keeps distinct indices on distinct streams and never yields zero.
func sessionSeed(base uint64, index int) uint64 {
	seed := base + uint64(index+1)*0x9e3779b97f4a7c15
	if seed == 0 {
		seed = 1
	}
	return seed
}

// playSession runs one full session to its standings.
func (r *Runner) playSession(req Request, strategies []Strategy, seed uint64) sessionOutcome {
	names := make([]string, len(req.Players))
	for i, spec := range req.Players {
		names[i] = spec.Name
	}

	session, err := game.NewSession(game.SessionConfig{
		Players:   names,
		OxygenMax: req.OxygenMax,
		Rounds:    req.Rounds,
		Seed:      seed,
	})
	if err != nil {
		return sessionOutcome{err: err}
	}

	// Divers come back in request order; map ids onto the strategies.
	divers := session.Divers()
	byID := make(map[string]int, len(divers))
	for i, d := range divers {
		byID[d.ID] = i
	}

	outcome := sessionOutcome{players: make([]playerOutcome, len(req.Players))}
	for round := 1; round <= req.Rounds; round++ {
		if _, err := session.StartDive(round); err != nil {
			return sessionOutcome{err: err}
		}

		// Every turn burns at least one oxygen, so the dive is bounded.
		for {
			snap, err := session.Snapshot()
			if err != nil {
				return sessionOutcome{err: err}
			}
			if snap.State == game.StateEnded {
				break
			}

			idx := byID[snap.CurrentDiverID]
			dec, err := strategies[idx].Decide(snap, snap.CurrentDiverID)
			if err != nil {
				return sessionOutcome{err: fmt.Errorf("player %s: %w", names[idx], err)}
			}
			if _, err := session.SubmitDecision(snap.CurrentDiverID, dec); err != nil {
				return sessionOutcome{err: fmt.Errorf("player %s: %w", names[idx], err)}
			}
		}

		res, err := session.DiveResult()
		if err != nil {
			return sessionOutcome{err: err}
		}
		endSnap, err := session.Snapshot()
		if err != nil {
			return sessionOutcome{err: err}
		}
		for _, dr := range res.Divers {
			outcome.players[byID[dr.DiverID]].bankedTiles += len(dr.Banked)
		}
		for _, d := range endSnap.Divers {
			if !d.Banked {
				outcome.players[byID[d.ID]].drownedDives++
			}
		}
	}

	standings, err := session.Standings()
	if err != nil {
		return sessionOutcome{err: err}
	}
	for _, entry := range standings.Entries {
		outcome.players[byID[entry.DiverID]].score = entry.TotalScore
	}
	outcome.draw = standings.Draw
	outcome.winner = standings.Winner
	return outcome
}
