package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/bobbuildtool/bob/internal/graph"
	"github.com/bobbuildtool/bob/internal/hash"
)

func digestOf(b byte) hash.Digest {
	var d hash.Digest
	d[0] = b
	return d
}

func TestRunnerRunsInputsBeforeDependents(t *testing.T) {
	leaf := &graph.Step{VariantId: digestOf(1)}
	root := &graph.Step{VariantId: digestOf(2), Inputs: []*graph.Step{leaf}}

	var mu sync.Mutex
	var order []*graph.Step

	r := &Runner{
		Concurrency: 2,
		Execute: func(ctx context.Context, s *graph.Step) error {
			mu.Lock()
			order = append(order, s)
			mu.Unlock()
			return nil
		},
	}

	if err := r.Run(context.Background(), []*graph.Step{root}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(order) != 2 || order[0] != leaf || order[1] != root {
		t.Fatalf("expected leaf before root, got %v", order)
	}
}

func TestRunnerDedupsSharedStep(t *testing.T) {
	shared := &graph.Step{VariantId: digestOf(1)}
	a := &graph.Step{VariantId: digestOf(2), Inputs: []*graph.Step{shared}}
	b := &graph.Step{VariantId: digestOf(3), Inputs: []*graph.Step{shared}}

	var mu sync.Mutex
	count := 0

	r := &Runner{
		Execute: func(ctx context.Context, s *graph.Step) error {
			if s == shared {
				mu.Lock()
				count++
				mu.Unlock()
			}
			return nil
		},
	}

	if err := r.Run(context.Background(), []*graph.Step{a, b}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if count != 1 {
		t.Fatalf("shared step executed %d times, want 1", count)
	}
}

func TestRunnerKeepGoingPoisonsOnlyDownstream(t *testing.T) {
	failing := &graph.Step{VariantId: digestOf(1)}
	downstream := &graph.Step{VariantId: digestOf(2), Inputs: []*graph.Step{failing}}
	independent := &graph.Step{VariantId: digestOf(3)}

	var mu sync.Mutex
	ran := map[*graph.Step]bool{}

	r := &Runner{
		KeepGoing: true,
		Execute: func(ctx context.Context, s *graph.Step) error {
			mu.Lock()
			ran[s] = true
			mu.Unlock()
			if s == failing {
				return errors.New("boom")
			}
			return nil
		},
	}

	err := r.Run(context.Background(), []*graph.Step{downstream, independent})
	if err == nil {
		t.Fatal("expected an error summarizing the poisoned step")
	}
	if !ran[failing] {
		t.Fatal("failing step should have run")
	}
	if ran[downstream] {
		t.Fatal("downstream of a failed step must not run")
	}
	if !ran[independent] {
		t.Fatal("independent step must still run under --keep-going")
	}
}

func TestRunnerWithoutKeepGoingStopsOnFailure(t *testing.T) {
	failing := &graph.Step{VariantId: digestOf(1)}

	r := &Runner{
		Execute: func(ctx context.Context, s *graph.Step) error {
			return errors.New("boom")
		},
	}

	if err := r.Run(context.Background(), []*graph.Step{failing}); err == nil {
		t.Fatal("expected failure to propagate")
	}
}

func TestRunnerResumeSkipsCompleteSteps(t *testing.T) {
	dir := t.TempDir()
	idx, err := OpenStateIndex(filepath.Join(dir, ".bob-state.json"))
	if err != nil {
		t.Fatalf("OpenStateIndex: %v", err)
	}
	done := &graph.Step{VariantId: digestOf(1)}
	if err := idx.Set(done.VariantId, Complete); err != nil {
		t.Fatalf("Set: %v", err)
	}

	ran := false
	r := &Runner{
		State: idx,
		Execute: func(ctx context.Context, s *graph.Step) error {
			ran = true
			return nil
		},
	}

	if err := r.Run(context.Background(), []*graph.Step{done}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ran {
		t.Fatal("a step already COMPLETE in the state index must not re-run")
	}
}

func TestStateIndexPersistsAcrossOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".bob-state.json")

	idx1, err := OpenStateIndex(path)
	if err != nil {
		t.Fatalf("OpenStateIndex: %v", err)
	}
	d := digestOf(7)
	if err := idx1.Set(d, Failed); err != nil {
		t.Fatalf("Set: %v", err)
	}

	idx2, err := OpenStateIndex(path)
	if err != nil {
		t.Fatalf("OpenStateIndex (reload): %v", err)
	}
	if got := idx2.Get(d); got != Failed {
		t.Fatalf("Get after reload = %v, want %v", got, Failed)
	}
}
