package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// Index is the local index cache the scan operation maintains: a flat
// list of known archive keys, refreshed under a single-writer file lock
// so concurrent Bob invocations never corrupt it (§5).
type Index struct {
	path string
	lock *flock.Flock
}

// OpenIndex opens (without yet locking) the index cache file at path.
func OpenIndex(path string) *Index {
	return &Index{path: path, lock: flock.New(path + ".lock")}
}

// Refresh rewrites the index with the union of keys returned by Scan on
// every backend that supports it, holding the single-writer lock for
// the duration.
func (idx *Index) Refresh(ctx context.Context, backends []Backend) ([]string, error) {
	locked, err := idx.lock.TryLockContext(ctx, 200*time.Millisecond)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, context.DeadlineExceeded
	}
	defer idx.lock.Unlock()

	seen := make(map[string]bool)
	var all []string
	for _, b := range backends {
		keys, err := b.Scan(ctx)
		if err != nil {
			continue // backends without scan support (e.g. http) are skipped
		}
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				all = append(all, k)
			}
		}
	}

	if err := idx.write(all); err != nil {
		return nil, err
	}
	return all, nil
}

func (idx *Index) write(keys []string) error {
	if err := os.MkdirAll(filepath.Dir(idx.path), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(keys)
	if err != nil {
		return err
	}
	return os.WriteFile(idx.path, data, 0o644)
}

// Read loads the last-written key list without refreshing it.
func (idx *Index) Read() ([]string, error) {
	data, err := os.ReadFile(idx.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var keys []string
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, err
	}
	return keys, nil
}
