package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"github.com/mkarrio/deepsea-sim-go/internal/game"
	"github.com/mkarrio/deepsea-sim-go/internal/sim"
	"github.com/mkarrio/deepsea-sim-go/internal/store"
)

func main() {
	var (
		sessions   = flag.Int("sessions", 1000, "number of sessions to simulate")
		players    = flag.String("players", "greta:greedy,carl:cautious", "comma-separated name:strategy pairs (greedy, cautious, script)")
		seed       = flag.Uint64("seed", 0, "request seed; 0 picks a random one")
		oxygen     = flag.Int("oxygen", game.DefaultOxygen, "oxygen per dive")
		rounds     = flag.Int("rounds", game.DefaultRounds, "dives per session")
		workers    = flag.Int("workers", 0, "worker count; 0 uses all CPUs")
		scriptPath = flag.String("script", "", "script file for players with the script strategy")
		dbPath     = flag.String("db", "", "record the run to this sqlite database")
	)
	flag.Parse()

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	specs, err := parsePlayers(*players, *scriptPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("bad_players_flag")
	}

	req := sim.Request{
		Sessions:  *sessions,
		Players:   specs,
		OxygenMax: *oxygen,
		Rounds:    *rounds,
		Seed:      *seed,
		Workers:   *workers,
	}
	result, err := sim.NewRunner().Run(context.Background(), req)
	if err != nil {
		logger.Fatal().Err(err).Msg("simulation_failed")
	}

	printSummary(result)

	if *dbPath != "" {
		if err := record(*dbPath, req, result); err != nil {
			logger.Fatal().Err(err).Msg("record_failed")
		}
		logger.Info().Str("db", *dbPath).Msg("run_recorded")
	}
}

// parsePlayers turns "name:strategy,..." into player specs. Script players
// all share the source loaded from the -script flag.
func parsePlayers(raw, scriptPath string) ([]sim.PlayerSpec, error) {
	var script string
	if scriptPath != "" {
		data, err := os.ReadFile(scriptPath)
		if err != nil {
			return nil, fmt.Errorf("read script: %w", err)
		}
		script = string(data)
	}

	var specs []sim.PlayerSpec
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, strategy, _ := strings.Cut(part, ":")
		if name == "" {
			return nil, fmt.Errorf("player %q is missing a name", part)
		}
		spec := sim.PlayerSpec{Name: name, Strategy: strategy}
		if strategy == "script" {
			if script == "" {
				return nil, fmt.Errorf("player %s uses the script strategy but no -script was given", name)
			}
			spec.Script = script
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func printSummary(result *sim.Result) {
	fmt.Printf("sessions: %d  seed: %d  draws: %d\n\n", result.Sessions, result.Seed, result.Draws)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PLAYER\tSTRATEGY\tWINS\tDRAWS\tDROWNED\tTILES\tTOTAL\tMEAN")
	for _, p := range result.Players {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
			p.Name, p.Strategy, p.Wins, p.Draws, p.DrownedDives,
			p.BankedTiles, p.TotalScore, p.MeanScore)
	}
	w.Flush()
}

// record saves the aggregated run for later analysis.
func record(path string, req sim.Request, result *sim.Result) error {
	db, err := store.NewSQLiteDB(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return err
	}

	names := make([]string, 0, len(req.Players))
	for _, spec := range req.Players {
		names = append(names, spec.Name)
	}
	playersJSON, err := json.Marshal(names)
	if err != nil {
		return err
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return err
	}

	// Most wins gets top billing; a fully tied run counts as a draw.
	var winner sim.PlayerStats
	draw := true
	for _, p := range result.Players {
		if p.Wins > winner.Wins {
			winner = p
			draw = false
		}
	}

	oxygenMax := req.OxygenMax
	if oxygenMax == 0 {
		oxygenMax = game.DefaultOxygen
	}
	rounds := req.Rounds
	if rounds == 0 {
		rounds = game.DefaultRounds
	}
	record := &store.SessionRecord{
		PlayersJSON:   string(playersJSON),
		OxygenMax:     oxygenMax,
		Rounds:        rounds,
		Seed:          result.Seed,
		WinnerName:    winner.Name,
		Draw:          draw,
		StandingsJSON: string(resultJSON),
	}
	return db.SaveSession(record)
}
