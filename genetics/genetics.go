// Package genetics is the outer generational controller (spec §4.3): it
// owns a colony, and after each colony run ranks the surviving simplexes by
// fitness, marries them off, and recombines their vertices into the next
// generation — optionally shrinking the search box around the fittest
// worker first.
package genetics

import (
	"fmt"

	"colonyopt/colony"
	"colonyopt/rng"
	"colonyopt/simplex"
	"colonyopt/vertex"
)

// Best is the global-best triple reported on termination (spec §4.3
// accessor group / "Finished notification").
type Best struct {
	Value    float64
	Params   []float64
	WorkerID string
}

// Genetics drives the colony across generations per spec §4.3.
type Genetics struct {
	cfg Config
	src *rng.Source
	col *colony.Colony

	dim          int
	upper, lower []float64

	generation       int
	totalEvaluations int

	current   map[string][]vertex.Vertex
	history   []map[string][]vertex.Vertex
	rankedIDs []string

	best     Best
	finished bool

	onFinished func(Best)
	onProgress func(generation int, bestValue float64)
}

// New constructs genetics owning a fresh colony of population simplexes of
// dimension len(upper) (spec §4.3 new(seed, population, upper, lower)). Each
// simplex receives its own RNG source drawn from genetics' master stream and
// an initial random population of vertices within the box.
func New(seed int64, population int, upper, lower []float64, simplexCfg simplex.Config, cfg Config) (*Genetics, error) {
	if err := cfg.validate(population); err != nil {
		return nil, err
	}
	if len(upper) != len(lower) {
		return nil, fmt.Errorf("%w: upper/lower dimension mismatch", ErrInvalidConfig)
	}
	dim := len(upper)
	bounds := vertex.Bounds{Lower: append([]float64(nil), lower...), Upper: append([]float64(nil), upper...)}

	master := rng.New(seed)
	workers := make([]*simplex.Simplex, population)
	for i := 0; i < population; i++ {
		workerSeed := int64(master.Uint64())
		w, err := simplex.New(fmt.Sprintf("worker_%d", i), dim, bounds, simplexCfg, rng.New(workerSeed))
		if err != nil {
			return nil, err
		}
		if err := w.InitRandom(); err != nil {
			return nil, err
		}
		workers[i] = w
	}

	col := colony.New(workers, cfg.EvaluationChunkSize, cfg.LazyWorkers)
	col.Restart()

	g := &Genetics{
		cfg:     cfg,
		src:     master,
		col:     col,
		dim:     dim,
		upper:   bounds.Upper,
		lower:   bounds.Lower,
		current:    make(map[string][]vertex.Vertex),
		generation: 1,
		best:       Best{Value: vertex.Unevaluated},
	}
	return g, nil
}

// Colony exposes the owned colony so the driving loop can call Run and feed
// chunks to an evaluator.
func (g *Genetics) Colony() *colony.Colony { return g.col }

// OnFinished registers a callback invoked once, carrying the global best,
// when the generational loop terminates (spec §6 "Finished notification").
func (g *Genetics) OnFinished(f func(Best)) { g.onFinished = f }

// OnProgress registers a callback invoked after each generation that does
// not end the run, once the next generation has been set up; it carries the
// new generation number and the king's best (vertex-0) value from the
// generation just finished. Used by the dashboard to stream progress frames.
func (g *Genetics) OnProgress(f func(generation int, bestValue float64)) { g.onProgress = f }

// Generation returns the current generation counter.
func (g *Genetics) Generation() int { return g.generation }

// TotalEvaluations returns the cumulative evaluation count across all
// generations so far.
func (g *Genetics) TotalEvaluations() int { return g.totalEvaluations }

// IsFinished reports whether the generational loop has terminated.
func (g *Genetics) IsFinished() bool { return g.finished }

// BestValue, BestParams, BestWorker expose the running best-so-far triple.
// They update after every generation's snapshot, so callers may poll them
// mid-run as well as after IsFinished returns true.
func (g *Genetics) BestValue() float64    { return g.best.Value }
func (g *Genetics) BestParams() []float64 { return g.best.Params }
func (g *Genetics) BestWorker() string    { return g.best.WorkerID }

// OnColonyFinished runs the full per-generation algorithm of spec §4.3 once
// the owned colony reports Finished. It snapshots, checks termination, ranks
// fitness, optionally shrinks the box, reproduces the next population, and
// restarts the colony — or, if termination criteria are met, reports the
// global best and leaves the colony stopped.
func (g *Genetics) OnColonyFinished() {
	g.snapshot()

	if g.terminated() {
		g.finish()
		return
	}

	king := g.rankByFitness()

	if g.shrinkCheck(king) {
		return
	}

	g.evolve(king)
}

// snapshot deep-copies every worker's current vertices into the
// current-generation map, appends the same copy to history, and accumulates
// total evaluations (spec §4.3 step 1).
func (g *Genetics) snapshot() {
	gen := make(map[string][]vertex.Vertex, len(g.col.Workers()))
	for _, w := range g.col.Workers() {
		gen[w.ID()] = w.Vertices()
		g.totalEvaluations += w.EvaluationCount()
	}
	g.current = gen
	g.history = append(g.history, gen)
	g.updateBest(gen)
}

// updateBest folds one generation's vertices into the running global best,
// keeping BestValue/BestParams/BestWorker live across the whole run instead
// of only at termination. Workers are visited in colony construction order,
// not map iteration order, so a tie between two workers' values (e.g. the
// constant objective, or several simplexes landing exactly on the same
// sticky corner) always resolves to the same worker — required by spec §8's
// determinism invariant (identical seed/evaluator must reproduce a
// bit-identical best_worker).
func (g *Genetics) updateBest(gen map[string][]vertex.Vertex) {
	for _, w := range g.col.Workers() {
		id := w.ID()
		vs, ok := gen[id]
		if !ok {
			continue
		}
		for _, v := range vs {
			if v.Value < g.best.Value {
				g.best = Best{Value: v.Value, Params: append([]float64(nil), v.Params...), WorkerID: id}
			}
		}
	}
}

// terminated implements spec §4.3 step 2.
func (g *Genetics) terminated() bool {
	if g.generation > g.cfg.MaxGenerations {
		return true
	}
	if g.cfg.MaxEvaluations > 0 && g.totalEvaluations >= g.cfg.MaxEvaluations {
		return true
	}
	return false
}

// rankByFitness implements spec §4.3 step 3: compute each worker's scalar
// fitness and sort ascending, returning the king's identity.
func (g *Genetics) rankByFitness() string {
	workers := g.col.Workers()
	ids := make([]string, 0, len(workers))
	for _, w := range workers {
		ids = append(ids, w.ID())
	}
	fitness := make(map[string]float64, len(ids))
	for _, id := range ids {
		fitness[id] = g.fitnessOf(id)
	}
	sortByFitness(ids, fitness)
	g.rankedIDs = ids
	return ids[0]
}

func (g *Genetics) fitnessOf(id string) float64 {
	switch g.cfg.Fitness {
	case Max:
		worst := g.current[id][len(g.current[id])-1].Value
		for _, gen := range g.history {
			if vs, ok := gen[id]; ok {
				if v := vs[len(vs)-1].Value; v > worst {
					worst = v
				}
			}
		}
		return worst
	case Average:
		vs := g.current[id]
		sum := 0.0
		for _, v := range vs {
			sum += v.Value
		}
		return sum / float64(len(vs))
	default: // Min
		return g.current[id][0].Value
	}
}

// shrinkCheck implements spec §4.3 step 4. Returns true if a reset-on-shrink
// occurred this call (reproduction is skipped entirely for this
// generation).
func (g *Genetics) shrinkCheck(kingID string) bool {
	if g.cfg.ShrinkPerGenerations <= 0 || g.generation%g.cfg.ShrinkPerGenerations != 0 {
		return false
	}
	kingParams := bestParamsOf(g.current[kingID])
	g.shrinkBoundaries(kingParams)

	if !g.cfg.ResetOnShrink {
		return false
	}

	g.generation++
	for _, w := range g.col.Workers() {
		w.SetBounds(vertex.Bounds{Lower: g.lower, Upper: g.upper})
		_ = w.InitRandom()
	}
	g.col.Restart()
	g.reportProgress(kingID)
	return true
}

// shrinkBoundaries re-centers the shared box on king (spec §4.3 step 4).
// ShrinkAround sets each half-width to range*ShrinkFactorBoundary, so the
// box only narrows for factors below 0.5.
func (g *Genetics) shrinkBoundaries(king []float64) {
	switch g.cfg.ShrinkMode {
	case ShrinkAround:
		for i := range king {
			r := g.upper[i] - g.lower[i]
			g.upper[i] = king[i] + r*g.cfg.ShrinkFactorBoundary
			g.lower[i] = king[i] - r*g.cfg.ShrinkFactorBoundary
		}
	case ChangeLowerIfNeg:
		for i := range king {
			if g.lower[i] < 0 {
				g.lower[i] = king[i]
			}
		}
	}
}

// evolve implements spec §4.3 steps 5-6: marry, reproduce, restart.
func (g *Genetics) evolve(kingID string) {
	g.generation++

	pairs := marriageList(g.cfg.Marriage, len(g.rankedIDs), g.src)
	workers := g.col.Workers()

	for k, pr := range pairs {
		parentA := g.current[g.rankedIDs[pr.a]]
		parentB := g.current[g.rankedIDs[pr.b]]
		childA, childB := reproduce(parentA, parentB, g.cfg.Reproduction, g.cfg.ReproductionPercent, g.src)

		slotA := 2 * k
		slotB := 2*k + 1
		if slotA < len(workers) {
			w := workers[slotA]
			w.SetBounds(vertex.Bounds{Lower: g.lower, Upper: g.upper})
			_ = w.SetVertices(childA)
			w.SetID(fmt.Sprintf("worker_%d_G%d", slotA, g.generation))
		}
		if slotB < len(workers) {
			w := workers[slotB]
			w.SetBounds(vertex.Bounds{Lower: g.lower, Upper: g.upper})
			_ = w.SetVertices(childB)
			w.SetID(fmt.Sprintf("worker_%d_G%d", slotB, g.generation))
		}
	}

	g.col.Restart()
	g.reportProgress(kingID)
}

func (g *Genetics) reportProgress(kingID string) {
	if g.onProgress != nil {
		g.onProgress(g.generation, g.current[kingID][0].Value)
	}
}

// finish implements spec §4.3 step 7. g.best has already been tracked
// incrementally by updateBest after every generation, so this only has to
// mark completion and invoke the Finished callback.
func (g *Genetics) finish() {
	g.finished = true
	if g.onFinished != nil {
		g.onFinished(g.best)
	}
}

func bestParamsOf(vs []vertex.Vertex) []float64 {
	return vs[0].Params
}
