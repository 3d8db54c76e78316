// Package evaluator supplies the external collaborator that scores the
// chunks emitted by the colony (spec §6, "Evaluator contract"). The core
// never calls an objective function directly; it hands a chunk of
// EvaluationRequests to an Evaluator and expects every Value filled with a
// finite real, NaN, or +-Inf before the call returns.
package evaluator

import (
	"context"
	"errors"
	"fmt"

	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"

	"colonyopt/vertex"
)

// ErrContractViolation is returned when an Evaluator returns without having
// filled in every request's Value (spec §7, EvaluatorContractViolation).
var ErrContractViolation = errors.New("evaluator: chunk returned with unfilled values")

// Objective is the black-box function under optimization: R^D -> R. It must
// be safe for concurrent use when run under Pool.
type Objective func(params []float64) float64

// Evaluator scores a chunk of requests in place.
type Evaluator interface {
	Evaluate(ctx context.Context, chunk []*vertex.EvaluationRequest) error
}

// Sequential evaluates a chunk one request at a time, in order. This is the
// reference implementation used by the deterministic test scenarios (spec
// §8): identical seed plus a pure Objective must reproduce bit-identical
// traces, which a sequential evaluator trivially guarantees.
type Sequential struct {
	Objective Objective
}

// Evaluate implements Evaluator.
func (s Sequential) Evaluate(ctx context.Context, chunk []*vertex.EvaluationRequest) error {
	for _, req := range chunk {
		if err := ctx.Err(); err != nil {
			return err
		}
		req.Vertex.Value = s.Objective(req.Vertex.Params)
	}
	return checkFilled(chunk)
}

// Pool evaluates a chunk's requests concurrently across a bounded worker
// pool, for objectives expensive enough that parallel evaluation pays for
// itself (spec §5: "parallelism lives strictly in the evaluator"). Built the
// way the teacher's Train loop does: a fixed set of worker goroutines fed
// from a shared job channel, each emitting a per-worker completion channel
// that channerics.Merge fans into one stream, all running under a single
// errgroup.WithContext (`tabular/reinforcement/learning.go`'s
// `channerics.Merge(ctx.Done(), workers...)` over per-agent episode
// channels).
type Pool struct {
	Objective Objective
	Workers   int
}

// Evaluate implements Evaluator.
func (p Pool) Evaluate(ctx context.Context, chunk []*vertex.EvaluationRequest) error {
	if len(chunk) == 0 {
		return nil
	}
	workers := p.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(chunk) {
		workers = len(chunk)
	}

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan *vertex.EvaluationRequest, len(chunk))
	for _, req := range chunk {
		jobs <- req
	}
	close(jobs)

	done := make(chan struct{})
	completions := make([]<-chan struct{}, workers)
	for w := 0; w < workers; w++ {
		completions[w] = p.runWorker(gctx, g, jobs)
	}
	merged := channerics.Merge(done, completions...)

	g.Go(func() error {
		count := 0
		for range merged {
			count++
			if count == len(chunk) {
				close(done)
				return nil
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return checkFilled(chunk)
}

// runWorker drains jobs until the channel is exhausted or ctx is canceled,
// scoring each request in place and signaling one completion per request on
// the returned channel (fanned in by channerics.Merge in Evaluate).
func (p Pool) runWorker(ctx context.Context, g *errgroup.Group, jobs <-chan *vertex.EvaluationRequest) <-chan struct{} {
	out := make(chan struct{}, 1)
	g.Go(func() error {
		defer close(out)
		for req := range jobs {
			if err := ctx.Err(); err != nil {
				return err
			}
			req.Vertex.Value = p.Objective(req.Vertex.Params)
			out <- struct{}{}
		}
		return nil
	})
	return out
}

func checkFilled(chunk []*vertex.EvaluationRequest) error {
	for _, req := range chunk {
		if req.Vertex.Value == vertex.Unevaluated {
			return fmt.Errorf("%w: worker %s", ErrContractViolation, req.WorkerID)
		}
	}
	return nil
}
