// Command simulate plays seeded games with a scripted policy and prints a
// balance report.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"deadgrid/server/config"
	"deadgrid/server/game"
)

type runResult struct {
	runIndex   int
	seed       int64
	final      game.FinalStats
	over       bool
	actions    int
	rejections map[game.Reason]int
	events     map[game.EventType]int
	spawned    int
	ammoLeft   int
	healthLeft int
}

// stepsPerDay caps the policy loop. Camp actions do not spend the budget,
// so a policy that keeps picking them must still reach the end of the day.
const stepsPerDay = 64

func main() {
	var runs int
	var days int
	var seedBase int64
	var seedStep int64

	flag.IntVar(&runs, "runs", 10, "number of simulated games")
	flag.IntVar(&days, "days", 30, "stop a surviving game after this many days")
	flag.Int64Var(&seedBase, "seed-base", 42, "seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.Parse()

	if runs <= 0 || days <= 0 {
		fmt.Fprintln(os.Stderr, "error: -runs and -days must be > 0")
		os.Exit(2)
	}

	// Rules come from the same DEADGRID_RULES_* variables as the server.
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("=== Survival Report ===\n")
	fmt.Printf("runs=%d days=%d seed_base=%d seed_step=%d\n\n", runs, days, seedBase, seedStep)

	all := make([]runResult, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		res := simulate(i+1, seed, cfg.Rules, days)
		all = append(all, res)
		printRun(os.Stdout, res)
	}
	printAggregate(os.Stdout, all)
}

// simulate plays one game until the player dies or maxDays have passed.
func simulate(runIndex int, seed int64, rules game.Rules, maxDays int) runResult {
	res := runResult{
		runIndex:   runIndex,
		seed:       seed,
		rejections: map[game.Reason]int{},
		events:     map[game.EventType]int{},
	}
	s := game.New(rules, game.WithSource(game.NewSource(seed)))

	steps := 0
	for !s.Over() && s.Turn.Day <= maxDays {
		action := chooseAction(s.Snapshot(), rules)
		steps++
		if steps > stepsPerDay {
			action = game.Action{Kind: game.ActionEndDay}
		}

		out, err := s.Apply(action)
		if err != nil {
			reason, ok := game.RejectionReason(err)
			if !ok {
				break
			}
			res.rejections[reason]++
			if out, err = s.EndDay(); err != nil {
				break
			}
			action = game.Action{Kind: game.ActionEndDay}
		}
		res.actions++
		for _, e := range out.Events {
			res.events[e.Type]++
		}
		if action.Kind == game.ActionEndDay {
			steps = 0
		}
	}

	res.final = s.FinalStats()
	res.over = s.Over()
	res.spawned = s.Stats.Spawned
	res.ammoLeft = s.Player.Ammo
	res.healthLeft = s.Player.Health
	return res
}

func printRun(w io.Writer, r runResult) {
	status := "survived"
	if r.over {
		status = "dead"
	}
	fmt.Fprintf(w, "--- Run %d (seed=%d) ---\n", r.runIndex, r.seed)
	fmt.Fprintf(w, "outcome=%s days=%d kills=%d camp_level=%d spawned=%d\n",
		status, r.final.DaysSurvived, r.final.Kills, r.final.CampLevel, r.spawned)
	fmt.Fprintf(w, "actions=%d health_left=%d ammo_left=%d\n", r.actions, r.healthLeft, r.ammoLeft)
	fmt.Fprintf(w, "events: %s\n", formatCounts(r.events))
	if len(r.rejections) > 0 {
		fmt.Fprintf(w, "rejections: %s\n", formatCounts(r.rejections))
	}
	fmt.Fprintln(w)
}

func printAggregate(w io.Writer, all []runResult) {
	deaths, days, kills, camps := 0, 0, 0, 0
	dayList := make([]int, 0, len(all))
	for _, r := range all {
		if r.over {
			deaths++
		}
		if r.final.CampLevel > 0 {
			camps++
		}
		days += r.final.DaysSurvived
		kills += r.final.Kills
		dayList = append(dayList, r.final.DaysSurvived)
	}
	sort.Ints(dayList)

	fmt.Fprintln(w, "=== Aggregate ===")
	fmt.Fprintf(w, "runs=%d deaths=%d camps_founded=%d\n", len(all), deaths, camps)
	fmt.Fprintf(w, "avg_days=%.1f median_days=%d avg_kills=%.1f\n",
		avg(days, len(all)), median(dayList), avg(kills, len(all)))
}

func formatCounts[K ~string](counts map[K]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[K(k)]))
	}
	return strings.Join(parts, " ")
}

func avg(total, n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(total) / float64(n)
}

func median(sorted []int) int {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[len(sorted)/2]
}
