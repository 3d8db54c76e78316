/*
colonyopt runs the colony/genetics optimizer against one of a handful of
demo black-box objectives and prints the generation-by-generation best
value as it converges. Optionally it also serves a websocket progress feed
so a browser can watch the run live (dashboard package).

This mirrors the teacher's own single-binary shape (tabular/main.go): an
init() that parses flags, a runApp() error that does the real work, and a
main() that just prints whatever runApp returns.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"runtime"

	"colonyopt/colony"
	"colonyopt/config"
	"colonyopt/dashboard"
	"colonyopt/evaluator"
	"colonyopt/genetics"
	"colonyopt/objective"
	"colonyopt/simplex"
)

var (
	configPath *string
	objName    *string
	dim        *int
	bound      *float64
	population *int
	maxGens    *int
	maxEvals   *int
	seed       *int64
	chunkSize  *int
	nworkers   *int
	dashAddr   *string
)

func init() {
	configPath = flag.String("config", "", "path to a YAML run config (overrides the other flags if set)")
	objName = flag.String("objective", "sphere", "demo objective: sphere | griewank | constant")
	dim = flag.Int("dim", 2, "parameter dimension, ignored when -config is set")
	bound = flag.Float64("bound", 10, "symmetric box bound [-bound, bound]^dim, ignored when -config is set")
	population = flag.Int("population", 8, "number of simplexes, ignored when -config is set")
	maxGens = flag.Int("maxGenerations", 10, "outer generation cap")
	maxEvals = flag.Int("maxEvaluations", 0, "inner evaluation cap across the whole run, 0 means unlimited")
	seed = flag.Int64("seed", 0, "RNG seed")
	chunkSize = flag.Int("chunkSize", 1, "target evaluation batch size")
	nworkers = flag.Int("nworkers", runtime.NumCPU(), "number of evaluator goroutines")
	dashAddr = flag.String("dashboard", "", "if set, serve a live progress dashboard on this address, e.g. :8090")
	flag.Parse()
}

func selectObjective(name string) (evaluator.Objective, error) {
	switch name {
	case "sphere":
		return objective.Sphere, nil
	case "griewank":
		return objective.Griewank, nil
	case "constant":
		return objective.Constant(7), nil
	default:
		return nil, fmt.Errorf("colonyopt: unrecognized objective %q", name)
	}
}

func buildRunConfig() (config.RunConfig, error) {
	if *configPath != "" {
		return config.FromYaml(*configPath)
	}
	cfg := config.DefaultRunConfig()
	cfg.Population = *population
	cfg.Upper = make([]float64, *dim)
	cfg.Lower = make([]float64, *dim)
	for i := 0; i < *dim; i++ {
		cfg.Upper[i] = *bound
		cfg.Lower[i] = -*bound
	}
	cfg.Genetics.Seed = *seed
	cfg.Genetics.MaxGenerations = *maxGens
	cfg.Genetics.MaxEvaluations = *maxEvals
	cfg.Genetics.EvaluationChunkSize = *chunkSize
	return cfg, nil
}

func runApp() error {
	runCfg, err := buildRunConfig()
	if err != nil {
		return err
	}
	obj, err := selectObjective(*objName)
	if err != nil {
		return err
	}

	g, err := genetics.New(runCfg.Genetics.Seed, runCfg.Population, runCfg.Upper, runCfg.Lower, runCfg.Simplex, runCfg.Genetics)
	if err != nil {
		return fmt.Errorf("colonyopt: %w", err)
	}

	var updates chan dashboard.ProgressFrame
	if *dashAddr != "" {
		updates = make(chan dashboard.ProgressFrame, 16)
		srv := dashboard.NewServer(*dashAddr, updates)
		go func() {
			if err := srv.Serve(); err != nil {
				log.Println("colonyopt: dashboard:", err)
			}
		}()
		log.Println("colonyopt: dashboard listening on", *dashAddr)
	}

	g.OnProgress(func(generation int, bestValue float64) {
		fmt.Printf("generation %d: best=%g total_evaluations=%d\n", generation, bestValue, g.TotalEvaluations())
		if updates != nil {
			select {
			case updates <- dashboard.ProgressFrame{Generation: generation, BestValue: bestValue, TotalEvaluations: g.TotalEvaluations()}:
			default:
			}
		}
	})

	var finalBest genetics.Best
	g.OnFinished(func(best genetics.Best) { finalBest = best })

	ev := evaluator.Pool{Objective: obj, Workers: *nworkers}
	ctx := context.Background()

	for {
		status, chunk := g.Colony().Run()
		switch status {
		case colony.NeedsEvaluation:
			if err := ev.Evaluate(ctx, chunk); err != nil {
				return fmt.Errorf("colonyopt: evaluation: %w", err)
			}
		case colony.Finished:
			g.OnColonyFinished()
			if g.IsFinished() {
				fmt.Printf("finished: best=%g params=%v worker=%s\n", finalBest.Value, finalBest.Params, finalBest.WorkerID)
				return nil
			}
		}
	}
}

func main() {
	if err := runApp(); err != nil {
		fmt.Println(err)
	}
}
