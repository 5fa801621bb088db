package game

import (
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
)

// Defaults matching the physical game.
const (
	DefaultOxygen = 25
	DefaultRounds = 3
	MaxDivers     = 6
)

// SessionConfig describes one game session. OxygenMax and Rounds must be
// positive; callers that want the table defaults use DefaultOxygen and
// DefaultRounds. A zero Seed picks a random one.
type SessionConfig struct {
	Players   []string `json:"players"`
	OxygenMax int      `json:"oxygen_max"`
	Rounds    int      `json:"rounds"`
	Seed      uint64   `json:"seed"`
}

// GameSession runs the configured number of dives sequentially and
// aggregates per-dive outcomes into final scores. Each dive gets a fresh
// deck and a full oxygen track; diver scores carry across dives.
type GameSession struct {
	ID  string
	cfg SessionConfig

	divers []*Diver
	rng    *rand.Rand
	die    *Die

	round   int // last started round; 0 before the first dive
	engine  *DiveEngine
	settled bool
}

// NewSession validates the configuration and creates the divers. Fatal
// misconfiguration surfaces immediately as ConfigurationError; no partial
// session is created.
func NewSession(cfg SessionConfig) (*GameSession, error) {
	if len(cfg.Players) == 0 || len(cfg.Players) > MaxDivers {
		return nil, ConfigurationError{
			Reason: fmt.Sprintf("need between 1 and %d players, got %d", MaxDivers, len(cfg.Players)),
		}
	}
	if cfg.OxygenMax <= 0 {
		return nil, ConfigurationError{
			Reason: fmt.Sprintf("oxygen maximum must be positive, got %d", cfg.OxygenMax),
		}
	}
	if cfg.Rounds <= 0 {
		return nil, ConfigurationError{
			Reason: fmt.Sprintf("round count must be positive, got %d", cfg.Rounds),
		}
	}
	if cfg.Seed == 0 {
		cfg.Seed = rand.Uint64()
	}

	s := &GameSession{
		ID:     uuid.New().String(),
		cfg:    cfg,
		rng:    rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		divers: make([]*Diver, 0, len(cfg.Players)),
	}
	s.die = NewDie(s.rng)
	for _, name := range cfg.Players {
		s.divers = append(s.divers, NewDiver(name))
	}
	return s, nil
}

// Config returns the session configuration, including the effective seed.
func (s *GameSession) Config() SessionConfig {
	return s.cfg
}

// Divers returns the session's divers in rotation order.
func (s *GameSession) Divers() []*Diver {
	return s.divers
}

// Round returns the last started round, or 0 before the first dive.
func (s *GameSession) Round() int {
	return s.round
}

// StartDive begins the given round with a restocked deck and a full
// oxygen track. Rounds run strictly in order and only after the previous
// dive has ended.
func (s *GameSession) StartDive(round int) (Snapshot, error) {
	if s.Completed() {
		return Snapshot{}, InvalidActionError{Action: "start_dive", Reason: "session is over"}
	}
	if round != s.round+1 {
		return Snapshot{}, InvalidActionError{
			Action: "start_dive",
			Reason: fmt.Sprintf("expected round %d, got %d", s.round+1, round),
		}
	}
	if s.engine != nil && s.engine.State() != StateEnded {
		return Snapshot{}, InvalidActionError{Action: "start_dive", Reason: "previous dive still running"}
	}

	deck, err := NewDeck(s.rng)
	if err != nil {
		return Snapshot{}, err
	}
	oxygen, err := NewOxygenTrack(s.cfg.OxygenMax)
	if err != nil {
		return Snapshot{}, err
	}
	engine, err := NewDiveEngine(round, s.divers, deck, oxygen, s.die)
	if err != nil {
		return Snapshot{}, err
	}

	s.engine = engine
	s.round = round
	s.settled = false
	return engine.Snapshot(), nil
}

// SubmitDecision forwards one decision to the running dive. When the
// decision ends the dive, banked values are folded into the cumulative
// scores before the snapshot is returned.
func (s *GameSession) SubmitDecision(diverID string, dec Decision) (Snapshot, error) {
	if s.engine == nil {
		return Snapshot{}, ErrNoActiveDive
	}
	snap, err := s.engine.SubmitDecision(diverID, dec)
	if err != nil {
		return Snapshot{}, err
	}
	if s.engine.State() == StateEnded {
		s.settleDive()
	}
	return snap, nil
}

// settleDive applies dive scoring exactly once.
func (s *GameSession) settleDive() {
	if s.settled {
		return
	}
	for _, d := range s.divers {
		d.SecureBanked()
	}
	s.settled = true
}

// Snapshot returns the current dive's snapshot.
func (s *GameSession) Snapshot() (Snapshot, error) {
	if s.engine == nil {
		return Snapshot{}, ErrNoActiveDive
	}
	return s.engine.Snapshot(), nil
}

// DiveResult reports the most recent dive's outcome once it has ended.
func (s *GameSession) DiveResult() (DiveResult, error) {
	if s.engine == nil {
		return DiveResult{}, ErrNoActiveDive
	}
	return s.engine.Result()
}

// Completed reports whether every configured round has been played out.
func (s *GameSession) Completed() bool {
	return s.round == s.cfg.Rounds && s.engine != nil && s.engine.State() == StateEnded
}

// StandingEntry is one diver's final line in the standings.
type StandingEntry struct {
	DiverID    string         `json:"diver_id"`
	Name       string         `json:"name"`
	TotalScore int            `json:"total_score"`
	TierCounts [TierCount]int `json:"tier_counts"`
}

// Standings is the final session outcome: totals per diver and the winner,
// or a genuine draw when the tie survives every tier comparison.
type Standings struct {
	Entries  []StandingEntry `json:"entries"`
	WinnerID string          `json:"winner_id,omitempty"`
	Winner   string          `json:"winner,omitempty"`
	Draw     bool            `json:"draw"`
}

// Standings computes the final outcome. Valid only after the last round.
func (s *GameSession) Standings() (Standings, error) {
	if !s.Completed() {
		return Standings{}, ErrSessionNotOver
	}

	out := Standings{Entries: make([]StandingEntry, 0, len(s.divers))}
	for _, d := range s.divers {
		out.Entries = append(out.Entries, StandingEntry{
			DiverID:    d.ID,
			Name:       d.Name,
			TotalScore: d.TotalScore,
			TierCounts: d.BankedTierCounts(),
		})
	}

	best := bestScore(s.divers)
	tied := make([]*Diver, 0, len(s.divers))
	for _, d := range s.divers {
		if d.TotalScore == best {
			tied = append(tied, d)
		}
	}

	winner, draw := breakTie(tied)
	if draw {
		out.Draw = true
		return out, nil
	}
	out.WinnerID = winner.ID
	out.Winner = winner.Name
	return out, nil
}

func bestScore(divers []*Diver) int {
	best := divers[0].TotalScore
	for _, d := range divers[1:] {
		if d.TotalScore > best {
			best = d.TotalScore
		}
	}
	return best
}

// breakTie compares banked-tile counts tier by tier from the deepest down.
// The first tier where exactly one diver leads decides; a tie that
// survives every tier is a genuine draw.
func breakTie(tied []*Diver) (*Diver, bool) {
	if len(tied) == 1 {
		return tied[0], false
	}
	remaining := tied
	for tier := TierCount; tier >= 1; tier-- {
		bestCount := -1
		var leaders []*Diver
		for _, d := range remaining {
			c := d.BankedTierCounts()[tier-1]
			switch {
			case c > bestCount:
				bestCount = c
				leaders = []*Diver{d}
			case c == bestCount:
				leaders = append(leaders, d)
			}
		}
		if len(leaders) == 1 {
			return leaders[0], false
		}
		remaining = leaders
	}
	return nil, true
}
