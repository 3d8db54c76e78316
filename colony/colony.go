// Package colony multiplexes a population of simplex.Simplex workers
// against a single batched-evaluation pipeline (spec §4.2). It is the
// cooperative scheduler: it never evaluates anything itself, it only decides
// which worker runs next and how their emitted EvaluationRequests are
// packed into chunks for an external evaluator.
package colony

import (
	"colonyopt/simplex"
	"colonyopt/vertex"
)

// Status is returned by Run to tell the caller what to do next.
type Status int

const (
	// NeedsEvaluation means the returned chunk must be filled in (every
	// Vertex.Value written to a finite real, NaN, or +-Inf) before Run is
	// called again.
	NeedsEvaluation Status = iota
	// Finished means the colony has no further work; Run will return
	// (Finished, nil) on every subsequent call until Restart.
	Finished
)

// batch is one worker's complete, never-split set of pending evaluation
// requests (spec §4.2's "this worker's next op never executes before its
// own requested evals are filled").
type batch struct {
	workerID string
	reqs     []*vertex.EvaluationRequest
}

// Colony owns N simplexes and schedules their operations (spec §3's Colony
// data model: task queue, evaluation queue, current chunk).
type Colony struct {
	workers   []*simplex.Simplex
	byID      map[string]*simplex.Simplex
	started   map[string]bool
	finished  map[string]bool
	bestList  map[string][]float64

	taskQueue  []string
	batchQueue []batch
	inFlight   []string

	chunkSize     int
	lazyWorkers   bool
	finishedCount int
	lazyTriggered bool
}

// New allocates a colony of the given simplexes, already constructed by the
// caller (spec §4.2 create(population, D) — simplex construction itself
// lives in simplex.New so genetics can reuse the same objects across
// generations).
func New(workers []*simplex.Simplex, chunkSize int, lazyWorkers bool) *Colony {
	c := &Colony{
		workers:     workers,
		byID:        make(map[string]*simplex.Simplex, len(workers)),
		chunkSize:   chunkSize,
		lazyWorkers: lazyWorkers,
	}
	for _, w := range workers {
		c.byID[w.ID()] = w
	}
	return c
}

// Workers returns the colony's simplexes in construction order, for
// genetics to snapshot and recombine.
func (c *Colony) Workers() []*simplex.Simplex { return c.workers }

// SetEvaluationChunkSize changes the target batch size for future chunks.
func (c *Colony) SetEvaluationChunkSize(k int) {
	if k < 1 {
		k = 1
	}
	c.chunkSize = k
}

// SetLazyWorkers toggles the lazy-workers shutdown optimization.
func (c *Colony) SetLazyWorkers(on bool) { c.lazyWorkers = on }

// Restart enqueues each simplex's begin operation on the task queue (spec
// §4.2 restart()) and resets all per-run bookkeeping.
func (c *Colony) Restart() {
	c.byID = make(map[string]*simplex.Simplex, len(c.workers))
	for _, w := range c.workers {
		c.byID[w.ID()] = w
	}
	c.started = make(map[string]bool, len(c.workers))
	c.finished = make(map[string]bool, len(c.workers))
	c.bestList = make(map[string][]float64, len(c.workers))
	c.taskQueue = make([]string, 0, len(c.workers))
	c.batchQueue = nil
	c.inFlight = nil
	c.finishedCount = 0
	c.lazyTriggered = false
	for _, w := range c.workers {
		c.taskQueue = append(c.taskQueue, w.ID())
	}
}

// Run drains the task queue until either a chunk is ready for evaluation or
// the colony has finished (spec §4.2 run()). On every call after the first,
// Run first assumes the requests in the chunk it returned last time have
// been filled in place by the caller, and requeues the owning workers'
// next operations before continuing.
//
// Within one call, a given worker's next operation is never in the task
// queue until its own previous batch has been evaluated (it only gets
// requeued above, from the prior call's inFlight owners), so draining the
// task queue further can never run a worker whose own pending evaluations
// would block it — it only ever runs other, still-idle workers. That is
// exactly spec §4.2's "opportunistically top up from other workers'
// requests" rule: keep running tasks, accumulating their batches, until
// either the chunk target is reached or the task queue itself runs dry.
func (c *Colony) Run() (Status, []*vertex.EvaluationRequest) {
	for _, id := range c.inFlight {
		if !c.finished[id] {
			c.taskQueue = append(c.taskQueue, id)
		}
	}
	c.inFlight = nil

	for c.batchTotal() < c.chunkSize && len(c.taskQueue) > 0 {
		c.runNextTask()
	}

	if len(c.batchQueue) > 0 {
		return c.yieldChunk()
	}
	return c.finishUp()
}

// batchTotal is the number of evaluation requests currently accumulated
// across every batch in the queue, used to decide whether to keep topping
// up before yielding a chunk.
func (c *Colony) batchTotal() int {
	total := 0
	for _, b := range c.batchQueue {
		total += len(b.reqs)
	}
	return total
}

// runNextTask dequeues the head of the task queue and runs that worker's
// next operation (begin on first entry, advance thereafter), appending any
// emitted requests as a new batch.
func (c *Colony) runNextTask() {
	id := c.taskQueue[0]
	c.taskQueue = c.taskQueue[1:]
	w := c.byID[id]

	var reqs []*vertex.EvaluationRequest
	var finished bool
	if !c.started[id] {
		c.started[id] = true
		reqs = w.Begin()
	} else {
		reqs, finished = w.Advance()
	}

	if finished {
		c.recordFinished(id)
		return
	}
	c.bestList[id] = append(c.bestList[id], w.BestValue())
	if len(reqs) > 0 {
		c.batchQueue = append(c.batchQueue, batch{workerID: id, reqs: reqs})
	}
}

// recordFinished handles a single worker's Finished signal (spec §4.2
// "Completion"): count it, and if lazy_workers is set and there's more than
// one worker, force-finish everyone else and clear both queues.
func (c *Colony) recordFinished(id string) {
	if c.finished[id] {
		return
	}
	c.finished[id] = true
	c.finishedCount++

	if c.lazyWorkers && len(c.workers) > 1 && !c.lazyTriggered {
		c.lazyTriggered = true
		for _, w := range c.workers {
			if c.finished[w.ID()] {
				continue
			}
			w.ForceFinish()
			c.finished[w.ID()] = true
			c.finishedCount++
		}
		c.taskQueue = nil
		c.batchQueue = nil
		c.inFlight = nil
	}
}

// yieldChunk packs whole worker batches (never splitting one) off the front
// of the batch queue until the target chunk size is reached, or until the
// next batch would push a non-empty chunk past the target (only a first
// batch larger than the target exceeds it), mirroring spec §4.2's chunking
// protocol: a worker's batch is always drained in full, with opportunistic
// top-up from other workers' batches.
func (c *Colony) yieldChunk() (Status, []*vertex.EvaluationRequest) {
	var chunk []*vertex.EvaluationRequest
	var owners []string
	for len(c.batchQueue) > 0 {
		b := c.batchQueue[0]
		if len(chunk) > 0 && len(chunk)+len(b.reqs) > c.chunkSize {
			break
		}
		chunk = append(chunk, b.reqs...)
		owners = append(owners, b.workerID)
		c.batchQueue = c.batchQueue[1:]
		if len(chunk) >= c.chunkSize {
			break
		}
	}
	c.inFlight = owners
	return NeedsEvaluation, chunk
}

// finishUp is reached once both queues are empty: pad every worker's best
// list to equal length (spec §4.2) and report Finished.
func (c *Colony) finishUp() (Status, []*vertex.EvaluationRequest) {
	maxLen := 0
	for _, list := range c.bestList {
		if len(list) > maxLen {
			maxLen = len(list)
		}
	}
	for id, list := range c.bestList {
		if len(list) == 0 {
			continue
		}
		last := list[len(list)-1]
		for len(list) < maxLen {
			list = append(list, last)
		}
		c.bestList[id] = list
	}
	return Finished, nil
}

// BestList returns the per-step best-value history recorded for worker id
// during the most recent run.
func (c *Colony) BestList(id string) []float64 {
	return c.bestList[id]
}

// FinishedCount returns how many workers have signaled Finished in the
// current run.
func (c *Colony) FinishedCount() int { return c.finishedCount }
