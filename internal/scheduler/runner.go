package scheduler

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/bobbuildtool/bob/internal/graph"
)

// Executor runs a single step's script. The caller (the engine) supplies
// it; the scheduler only sequences calls to it.
type Executor func(ctx context.Context, step *graph.Step) error

// Runner drives a bounded worker pool over a step DAG rooted at one or
// more packages' build/package steps.
type Runner struct {
	Concurrency int // 0 means runtime.NumCPU()
	KeepGoing   bool
	State       *StateIndex
	Execute     Executor
	JobServer   *JobServer // optional, nil disables job-server token gating

	mu       sync.Mutex
	visited  map[*graph.Step]*stepResult
	poisoned map[*graph.Step]bool
}

type stepResult struct {
	done chan struct{}
	err  error
}

func (r *Runner) concurrency() int64 {
	if r.Concurrency > 0 {
		return int64(r.Concurrency)
	}
	return int64(runtime.NumCPU())
}

// Run executes every step reachable (via Inputs) from roots, returning
// the first error encountered unless KeepGoing is set, in which case it
// runs everything not downstream of a failure and returns a combined
// error if any step failed.
func (r *Runner) Run(ctx context.Context, roots []*graph.Step) error {
	r.visited = make(map[*graph.Step]*stepResult)
	r.poisoned = make(map[*graph.Step]bool)

	sem := semaphore.NewWeighted(r.concurrency())
	g, gctx := errgroup.WithContext(ctx)

	var walk func(step *graph.Step) *stepResult
	walk = func(step *graph.Step) *stepResult {
		r.mu.Lock()
		if res, ok := r.visited[step]; ok {
			r.mu.Unlock()
			return res
		}
		res := &stepResult{done: make(chan struct{})}
		r.visited[step] = res
		r.mu.Unlock()

		g.Go(func() error {
			defer close(res.done)

			var inputFailed bool
			for _, in := range step.Inputs {
				inRes := walk(in)
				<-inRes.done
				if inRes.err != nil {
					inputFailed = true
				}
			}
			if inputFailed {
				res.err = fmt.Errorf("upstream step failed")
				r.markPoisoned(step)
				return nil
			}

			if r.State != nil && r.State.Get(step.VariantId) == Complete {
				return nil
			}

			if err := sem.Acquire(gctx, 1); err != nil {
				res.err = err
				return err
			}
			defer sem.Release(1)

			if r.JobServer != nil {
				tok, err := r.JobServer.Acquire(gctx)
				if err != nil {
					res.err = err
					return err
				}
				defer r.JobServer.Release(tok)
			}

			if r.State != nil {
				if err := r.State.Set(step.VariantId, Running); err != nil {
					res.err = err
					return err
				}
			}

			err := r.Execute(gctx, step)
			if err != nil {
				res.err = err
				if r.State != nil {
					_ = r.State.Set(step.VariantId, Failed)
				}
				if !r.KeepGoing {
					return err
				}
				return nil
			}
			if r.State != nil {
				if err := r.State.Set(step.VariantId, Complete); err != nil {
					res.err = err
					return err
				}
			}
			return nil
		})
		return res
	}

	for _, root := range roots {
		walk(root)
	}

	if err := g.Wait(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for step, res := range r.visited {
		if res.err != nil && !r.poisoned[step] {
			return res.err
		}
	}
	if len(r.poisoned) > 0 {
		return fmt.Errorf("%d step(s) skipped due to upstream failures", len(r.poisoned))
	}
	return nil
}

func (r *Runner) markPoisoned(step *graph.Step) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.poisoned[step] = true
}
