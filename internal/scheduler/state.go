package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/bobbuildtool/bob/internal/hash"
)

// Status is one step's execution state in the build index (§4.4).
type Status string

const (
	NotStarted Status = "NOT_STARTED"
	Running    Status = "RUNNING"
	Complete   Status = "COMPLETE"
	Failed     Status = "FAILED"
)

// StateIndex persists per-step status keyed by Variant-Id to
// ".bob-state.json" under the build tree, guarded by the same
// flock-based single-writer discipline as the artifact cache index
// (§5).
type StateIndex struct {
	mu   sync.Mutex
	path string
	lock *flock.Flock

	Statuses map[string]Status
}

// OpenStateIndex loads (or initializes) the state index at path.
func OpenStateIndex(path string) (*StateIndex, error) {
	idx := &StateIndex{path: path, lock: flock.New(path + ".lock"), Statuses: map[string]Status{}}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return idx, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &idx.Statuses); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return idx, nil
}

// Get returns the recorded status of variant, defaulting to NotStarted.
func (idx *StateIndex) Get(variant hash.Digest) Status {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if s, ok := idx.Statuses[variant.String()]; ok {
		return s
	}
	return NotStarted
}

// Set records variant's status and persists the index immediately,
// holding the single-writer lock for the duration of the write.
func (idx *StateIndex) Set(variant hash.Digest, status Status) error {
	idx.mu.Lock()
	idx.Statuses[variant.String()] = status
	snapshot := make(map[string]Status, len(idx.Statuses))
	for k, v := range idx.Statuses {
		snapshot[k] = v
	}
	idx.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	locked, err := idx.lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil || !locked {
		return fmt.Errorf("acquiring state index lock: %w", err)
	}
	defer idx.lock.Unlock()

	if err := os.MkdirAll(filepath.Dir(idx.path), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return os.WriteFile(idx.path, data, 0o644)
}
