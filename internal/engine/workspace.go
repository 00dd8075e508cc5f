package engine

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
	"github.com/bobbuildtool/bob/internal/paths"
	"github.com/bobbuildtool/bob/internal/scm"
)

// indexDoc is the on-disk shape of the build-index: the last-applied
// Variant-Id per package/stage, and the last-applied SCM state vector
// per individual checkout declaration.
type indexDoc struct {
	Workspaces map[string]string          `json:"workspaces"` // key -> Variant-Id
	ScmStates  map[string]scm.StateVector `json:"scmStates"`
}

// WorkspaceIndex persists the current Variant-Id per package/stage and
// the current SCM state vector per checkout declaration to the
// build-index, so a later invocation can tell whether a build/package
// workspace needs a clean wipe (§4.4) and whether a checkout workspace
// needs the attic-move protocol (§4.5).
type WorkspaceIndex struct {
	mu   sync.Mutex
	path string
	lock *flock.Flock
	doc  indexDoc
}

// OpenWorkspaceIndex loads (or initializes) the build-index at path.
func OpenWorkspaceIndex(path string) (*WorkspaceIndex, error) {
	idx := &WorkspaceIndex{
		path: path,
		lock: flock.New(path + ".lock"),
		doc:  indexDoc{Workspaces: map[string]string{}, ScmStates: map[string]scm.StateVector{}},
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return idx, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &idx.doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return idx, nil
}

func workspaceKey(packagePath string, stage paths.Stage) string {
	return packagePath + "#" + string(stage)
}

// Resolve returns the stable workspace directory for a package's stage.
// For build/package stages in release mode, a changed Variant-Id wipes
// the workspace clean before reuse; develop mode keeps the workspace
// for incremental reuse regardless of Variant-Id, per §4.4's
// release/develop distinction. Checkout stages are never wiped here —
// runCheckout applies the attic-move protocol against the SCM state
// vector instead, since checkout identity is governed by settled SCM
// state, not the step's Variant-Id.
func (idx *WorkspaceIndex) Resolve(layout *paths.Layout, packagePath string, stage paths.Stage, variant hash.Digest, mode paths.Mode) (workspace string, err error) {
	key := workspaceKey(packagePath, stage)
	workspace = layout.Workspace(packagePath, stage, 0)

	idx.mu.Lock()
	prior, ok := idx.doc.Workspaces[key]
	idx.mu.Unlock()

	variantStr := variant.String()
	changed := !ok || prior != variantStr

	if changed && stage != paths.StageSrc && mode == paths.Release {
		if err := os.RemoveAll(workspace); err != nil && !os.IsNotExist(err) {
			return "", fmt.Errorf("wiping %s: %w", workspace, err)
		}
	}

	if changed {
		if err := idx.setWorkspace(key, variantStr); err != nil {
			return "", err
		}
	}
	return workspace, nil
}

// PriorScmState returns the last-applied SCM state vector for key, if
// any was recorded.
func (idx *WorkspaceIndex) PriorScmState(key string) (scm.StateVector, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	v, ok := idx.doc.ScmStates[key]
	return v, ok
}

// RecordScmState persists the SCM state vector just applied to key.
func (idx *WorkspaceIndex) RecordScmState(key string, v scm.StateVector) error {
	idx.mu.Lock()
	idx.doc.ScmStates[key] = v
	idx.mu.Unlock()
	return idx.persist()
}

func (idx *WorkspaceIndex) setWorkspace(key, variantID string) error {
	idx.mu.Lock()
	idx.doc.Workspaces[key] = variantID
	idx.mu.Unlock()
	return idx.persist()
}

func (idx *WorkspaceIndex) persist() error {
	idx.mu.Lock()
	snapshot := idx.doc
	snapshot.Workspaces = make(map[string]string, len(idx.doc.Workspaces))
	for k, v := range idx.doc.Workspaces {
		snapshot.Workspaces[k] = v
	}
	snapshot.ScmStates = make(map[string]scm.StateVector, len(idx.doc.ScmStates))
	for k, v := range idx.doc.ScmStates {
		snapshot.ScmStates[k] = v
	}
	idx.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	locked, err := idx.lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil || !locked {
		return fmt.Errorf("acquiring build index lock: %w", err)
	}
	defer idx.lock.Unlock()

	if err := os.MkdirAll(filepath.Dir(idx.path), paths.DefaultDirMode); err != nil {
		return err
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return os.WriteFile(idx.path, data, paths.DefaultFileMode)
}
