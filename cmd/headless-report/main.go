package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Garsondee/Cannonade/internal/game"
)

// A script drives one deterministic input timeline against the full
// core and returns the harness for reporting.
type script struct {
	name string
	desc string
	run  func(ticks int, logger zerolog.Logger) *game.TestSim
}

var scripts = []script{
	{
		name: "debounce-storm",
		desc: "hammers the pause key every tick; debounce should accept a small fraction",
		run: func(ticks int, logger zerolog.Logger) *game.TestSim {
			ts := game.NewTestSim(
				game.WithLogger(logger),
				game.WithStartStage(game.StageActiveGameplay),
			)
			for i := 0; i < ticks; i++ {
				ts.Pipeline.HandleDelayed(game.ActionPause, game.EventPause)
				ts.Step()
			}
			return ts
		},
	},
	{
		name: "reversal-jitter",
		desc: "alternates left/right every tick; the reversal window should suppress the flapping",
		run: func(ticks int, logger zerolog.Logger) *game.TestSim {
			ts := game.NewTestSim(
				game.WithLogger(logger),
				game.WithStartStage(game.StageActiveGameplay),
			)
			for i := 0; i < ticks; i++ {
				if i%2 == 0 {
					ts.Pipeline.HandleDirection(game.DirLeft)
				} else {
					ts.Pipeline.HandleDirection(game.DirRight)
				}
				ts.Step()
			}
			return ts
		},
	},
	{
		name: "full-charge",
		desc: "starts a charge and never releases; the hold ceiling should force exactly one max-power shot",
		run: func(ticks int, logger zerolog.Logger) *game.TestSim {
			ts := game.NewTestSim(
				game.WithLogger(logger),
				game.WithStartStage(game.StageActiveGameplay),
			)
			ts.Pipeline.HandleChargeStart()
			ts.StepN(ticks)
			return ts
		},
	},
	{
		name: "stage-tour",
		desc: "advances through every stage, attempting fire at each; only ActiveGameplay should allow it",
		run: func(ticks int, logger zerolog.Logger) *game.TestSim {
			ts := game.NewTestSim(game.WithLogger(logger))
			for {
				st := ts.Gate.CurrentStage()
				allowed := ts.Gate.IsActionAllowed(game.ActionFire)
				ts.SimLog.Add("gate", "fire-allowed", fmt.Sprintf("stage=%s allowed=%v", st.Name(), allowed), b2f(allowed))
				ts.StepN(5)
				if !ts.Gate.AdvanceStage() {
					break
				}
			}
			return ts
		},
	},
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func main() {
	var name string
	var ticks int
	var verbose bool

	flag.StringVar(&name, "script", "all", "script to run (all, "+scriptNames()+")")
	flag.IntVar(&ticks, "ticks", 300, "ticks per script (16ms of simulated time each)")
	flag.BoolVar(&verbose, "verbose", false, "print every captured entry, not just the summary")
	flag.Parse()

	if ticks <= 0 {
		fmt.Println("error: -ticks must be > 0")
		return
	}

	logger := zerolog.Nop()
	if verbose {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.DebugLevel)
	}

	fmt.Printf("=== Cannonade input-core report ===\n")
	fmt.Printf("script=%s ticks=%d\n\n", name, ticks)

	ran := 0
	for _, sc := range scripts {
		if name != "all" && name != sc.name {
			continue
		}
		ran++
		ts := sc.run(ticks, logger)
		printScript(sc, ts, verbose)
	}
	if ran == 0 {
		fmt.Printf("error: unknown script %q (supported: all, %s)\n", name, scriptNames())
	}
}

func scriptNames() string {
	names := make([]string, len(scripts))
	for i, sc := range scripts {
		names[i] = sc.name
	}
	return strings.Join(names, ", ")
}

func printScript(sc script, ts *game.TestSim, verbose bool) {
	fmt.Printf("--- %s ---\n", sc.name)
	fmt.Printf("%s\n", sc.desc)

	entries := ts.SimLog.Entries()
	fmt.Printf("ticks=%d captured=%d\n", ts.Tick, len(entries))

	counts := map[string]int{}
	order := []string{}
	for _, e := range entries {
		k := e.Category + "/" + e.Key
		if counts[k] == 0 {
			order = append(order, k)
		}
		counts[k]++
	}
	for _, k := range order {
		fmt.Printf("  %-40s %d\n", k, counts[k])
	}

	if shots := ts.SimLog.Filter("event", string(game.EventShotFired)); len(shots) > 0 {
		for _, s := range shots {
			fmt.Printf("  shot at T=%03d power=%.2f\n", s.Tick, s.NumVal)
		}
	}

	if verbose {
		for _, e := range entries {
			fmt.Println(e.String())
		}
	}
	fmt.Println()
}
